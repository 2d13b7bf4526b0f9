package mapping

import "sort"

// Registry is the alias symbol table for one mapping document. It is
// populated exclusively from table and subquery records, in one pass, and
// is read-only afterwards. Every other alias usage in the document is a
// reference that must resolve against this set.
type Registry struct {
	aliases map[string]struct{}
}

// NewRegistry builds the registry from classified table records. Records
// with an empty alias are skipped silently; the omission surfaces later as
// an unresolved reference, not as a classification error.
func NewRegistry(tables []TableRecord) Registry {
	aliases := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if t.Alias == "" {
			continue
		}
		aliases[t.Alias] = struct{}{}
	}
	return Registry{aliases: aliases}
}

// Defined reports whether alias was introduced by a table or subquery.
func (r Registry) Defined(alias string) bool {
	_, ok := r.aliases[alias]
	return ok
}

// Len returns the number of defined aliases.
func (r Registry) Len() int { return len(r.aliases) }

// Aliases returns the defined aliases in sorted order. Sorting keeps
// result summaries deterministic across runs.
func (r Registry) Aliases() []string {
	out := make([]string, 0, len(r.aliases))
	for a := range r.aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
