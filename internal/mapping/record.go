// Package mapping models a flattened, spreadsheet-derived SQL mapping
// document: source tables and subqueries, joins, filters, a load target,
// and field-level transformations. Raw rows arrive as flat records with a
// string discriminant; the classifier decodes them once into a closed set
// of typed variants so downstream validation never branches on strings.
package mapping

import "strings"

// Kind identifies the variant of a mapping record.
type Kind int

const (
	// KindUnknown marks a record whose discriminant is not recognized.
	// The source document carries extra column metadata, so unknown
	// discriminants are ignored rather than rejected.
	KindUnknown Kind = iota

	// KindTable covers both physical tables and subqueries; either one
	// introduces an alias into the registry.
	KindTable

	// KindJoin links two aliases under a join condition.
	KindJoin

	// KindFilter restricts one alias with a predicate.
	KindFilter

	// KindTarget is the single output sink of the document.
	KindTarget

	// KindFieldMapping maps an expression onto one target field.
	KindFieldMapping
)

// String returns the discriminant name used in the source document.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "Table"
	case KindJoin:
		return "Join"
	case KindFilter:
		return "Filter"
	case KindTarget:
		return "Target"
	case KindFieldMapping:
		return "Field Mapping"
	default:
		return "Unknown"
	}
}

// KindOf decodes a raw type discriminant. Matching is case-insensitive and
// whitespace-tolerant because the rows come from hand-edited spreadsheets.
func KindOf(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "table", "subquery":
		return KindTable
	case "join":
		return KindJoin
	case "filter":
		return KindFilter
	case "target":
		return KindTarget
	case "field mapping", "field_mapping":
		return KindFieldMapping
	default:
		return KindUnknown
	}
}

// RawRecord is one flat row of the mapping document as delivered by a
// mapping source. Every field is optional on the wire; missing fields are
// absent, never errors. IsActive is a pointer because "not explicitly
// false" means active.
type RawRecord struct {
	Type                string `json:"type"`
	MappingName         string `json:"mapping_name,omitempty"`
	Alias               string `json:"alias,omitempty"`
	Definition          string `json:"definition,omitempty"`
	JoinType            string `json:"join_type,omitempty"`
	LeftAlias           string `json:"left_alias,omitempty"`
	RightAlias          string `json:"right_alias,omitempty"`
	JoinCondition       string `json:"join_condition,omitempty"`
	LoadStrategy        string `json:"load_strategy,omitempty"`
	TargetFieldName     string `json:"target_field_name,omitempty"`
	TransformationLogic string `json:"transformation_logic,omitempty"`
	SourceAlias         string `json:"source_alias,omitempty"`
	SourceField         string `json:"source_field,omitempty"`
	DefaultValue        string `json:"default_value,omitempty"`
	IsActive            *bool  `json:"is_active,omitempty"`
	TargetPK            bool   `json:"target_pk,omitempty"`
}

// Kind decodes the record's type discriminant.
func (r RawRecord) Kind() Kind { return KindOf(r.Type) }

// Active reports whether the record is active. Only an explicit false
// deactivates a record.
func (r RawRecord) Active() bool { return r.IsActive == nil || *r.IsActive }

// TableRecord is a source table or subquery. It introduces Alias into the
// alias registry.
type TableRecord struct {
	Alias      string
	Definition string
	Subquery   bool
}

// JoinRecord links two aliases.
type JoinRecord struct {
	JoinType   string
	LeftAlias  string
	RightAlias string
	Condition  string
}

// FilterRecord restricts one alias with a predicate.
type FilterRecord struct {
	Alias     string
	Condition string
}

// TargetRecord is the output sink. LoadStrategy is a free-text tag
// ("full_load", "merge", "update", ...) that determines whether primary
// key fields are mandatory.
type TargetRecord struct {
	Alias        string
	LoadStrategy string
}

// FieldMapping maps an expression onto one target field. Inactive mappings
// are excluded from uniqueness and primary-key checks.
type FieldMapping struct {
	TargetField  string
	Expression   string
	SourceAlias  string
	SourceField  string
	DefaultValue string
	Active       bool
	PrimaryKey   bool
}
