package mapping

import "testing"

func TestKindOf(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"Table", KindTable},
		{"Subquery", KindTable},
		{"  table ", KindTable},
		{"JOIN", KindJoin},
		{"Filter", KindFilter},
		{"Target", KindTarget},
		{"Field Mapping", KindFieldMapping},
		{"field_mapping", KindFieldMapping},
		{"Comment", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.raw); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestClassifyGroupsAndRegistry(t *testing.T) {
	inactive := false
	records := []RawRecord{
		{Type: "Table", Alias: "O", Definition: "raw.orders"},
		{Type: "Subquery", Alias: "C", Definition: "select * from customers"},
		{Type: "Table", Definition: "raw.orphan"}, // no alias: kept, not registered
		{Type: "Join", JoinType: "inner", LeftAlias: "O", RightAlias: "C", JoinCondition: "O.cid = C.id"},
		{Type: "Filter", Alias: "O", Definition: "O.deleted = 0"},
		{Type: "Target", Alias: "DW", LoadStrategy: "merge"},
		{Type: "Field Mapping", TargetFieldName: "id", SourceAlias: "O", SourceField: "id", TargetPK: true},
		{Type: "Field Mapping", TargetFieldName: "old", IsActive: &inactive},
		{Type: "Comment", Definition: "ignore me"},
	}

	doc := Classify("orders", records)

	if doc.Name != "orders" {
		t.Errorf("document name = %q", doc.Name)
	}
	if len(doc.Tables) != 3 {
		t.Errorf("tables = %d, want 3", len(doc.Tables))
	}
	if !doc.Tables[1].Subquery {
		t.Error("subquery record should carry the subquery flag")
	}
	if doc.Tables[0].Subquery {
		t.Error("plain table must not carry the subquery flag")
	}
	if len(doc.Joins) != 1 || doc.Joins[0].Condition != "O.cid = C.id" {
		t.Errorf("joins = %+v", doc.Joins)
	}
	if len(doc.Filters) != 1 || doc.Filters[0].Condition != "O.deleted = 0" {
		t.Errorf("filters = %+v", doc.Filters)
	}
	if len(doc.Targets) != 1 || doc.Targets[0].LoadStrategy != "merge" {
		t.Errorf("targets = %+v", doc.Targets)
	}
	if len(doc.FieldMappings) != 2 {
		t.Fatalf("field mappings = %d, want 2", len(doc.FieldMappings))
	}
	if !doc.FieldMappings[0].Active || !doc.FieldMappings[0].PrimaryKey {
		t.Errorf("first field mapping = %+v", doc.FieldMappings[0])
	}
	if doc.FieldMappings[1].Active {
		t.Error("explicit is_active=false must deactivate the mapping")
	}

	// Registry: aliased tables only, empty alias skipped silently.
	if doc.Aliases.Len() != 2 {
		t.Errorf("registry size = %d, want 2", doc.Aliases.Len())
	}
	for _, alias := range []string{"O", "C"} {
		if !doc.Aliases.Defined(alias) {
			t.Errorf("alias %q should be defined", alias)
		}
	}
	if doc.Aliases.Defined("") {
		t.Error("empty alias must not be registered")
	}
	if doc.Aliases.Defined("DW") {
		t.Error("target aliases are references, not definitions")
	}
}

func TestClassifyToleratesMultipleTargets(t *testing.T) {
	doc := Classify("m", []RawRecord{
		{Type: "Target", Alias: "T1"},
		{Type: "Target", Alias: "T2"},
	})
	if len(doc.Targets) != 2 {
		t.Fatalf("classifier must pass through all targets, got %d", len(doc.Targets))
	}
}

func TestRegistryAliasesSorted(t *testing.T) {
	reg := NewRegistry([]TableRecord{{Alias: "zz"}, {Alias: "aa"}, {Alias: "mm"}})
	got := reg.Aliases()
	want := []string{"aa", "mm", "zz"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Aliases() = %v, want %v", got, want)
		}
	}
}

func TestActiveDefault(t *testing.T) {
	var rec RawRecord
	if !rec.Active() {
		t.Error("missing is_active must mean active")
	}
	truev, falsev := true, false
	rec.IsActive = &truev
	if !rec.Active() {
		t.Error("explicit true is active")
	}
	rec.IsActive = &falsev
	if rec.Active() {
		t.Error("explicit false is inactive")
	}
}
