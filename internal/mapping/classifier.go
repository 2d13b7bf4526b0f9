package mapping

import "strings"

// Document holds the classified record groups of one mapping document plus
// its alias registry. A Document is built fresh per validation call and is
// never mutated afterwards.
type Document struct {
	Name string

	Tables        []TableRecord
	Joins         []JoinRecord
	Filters       []FilterRecord
	Targets       []TargetRecord
	FieldMappings []FieldMapping

	Aliases Registry
}

// Classify partitions an ordered sequence of flat records into typed
// groups and builds the alias registry. Group order follows input order.
// Records with an unrecognized discriminant are dropped silently, and no
// structural problem aborts classification; malformed structure surfaces
// later as semantic issues. The classifier tolerates multiple target
// records and passes them all through for the target invariant check.
func Classify(name string, records []RawRecord) *Document {
	doc := &Document{Name: name}

	for _, rec := range records {
		switch rec.Kind() {
		case KindTable:
			doc.Tables = append(doc.Tables, TableRecord{
				Alias:      rec.Alias,
				Definition: rec.Definition,
				Subquery:   strings.EqualFold(strings.TrimSpace(rec.Type), "subquery"),
			})
		case KindJoin:
			doc.Joins = append(doc.Joins, JoinRecord{
				JoinType:   rec.JoinType,
				LeftAlias:  rec.LeftAlias,
				RightAlias: rec.RightAlias,
				Condition:  rec.JoinCondition,
			})
		case KindFilter:
			// Filter rows carry their predicate in the generic definition
			// column of the flat format.
			doc.Filters = append(doc.Filters, FilterRecord{
				Alias:     rec.Alias,
				Condition: rec.Definition,
			})
		case KindTarget:
			doc.Targets = append(doc.Targets, TargetRecord{
				Alias:        rec.Alias,
				LoadStrategy: rec.LoadStrategy,
			})
		case KindFieldMapping:
			doc.FieldMappings = append(doc.FieldMappings, FieldMapping{
				TargetField:  rec.TargetFieldName,
				Expression:   rec.TransformationLogic,
				SourceAlias:  rec.SourceAlias,
				SourceField:  rec.SourceField,
				DefaultValue: rec.DefaultValue,
				Active:       rec.Active(),
				PrimaryKey:   rec.TargetPK,
			})
		}
	}

	doc.Aliases = NewRegistry(doc.Tables)
	return doc
}
