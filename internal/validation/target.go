package validation

import (
	"fmt"

	"mapcheck/internal/mapping"
)

// checkTarget enforces the exactly-one-target invariant and selects the
// effective target for the primary-key check.
//
// Zero targets is an ERROR and the check returns nil; validation still
// continues so the rest of the document can be diagnosed. With more than
// one target, every extra target gets its own ERROR naming both aliases
// and the first target seen stays authoritative. First-occurrence-wins is
// a documented contract, not an accident of iteration order: downstream
// consumers rely on the tie-break being stable under input order.
func checkTarget(doc *mapping.Document, acc *issueList) *mapping.TargetRecord {
	if len(doc.Targets) == 0 {
		acc.errorf(ComponentTarget, "No target definition found", map[string]any{
			"mapping": doc.Name,
		})
		return nil
	}

	target := doc.Targets[0]
	for _, extra := range doc.Targets[1:] {
		acc.errorf(ComponentTarget,
			fmt.Sprintf("Multiple target definitions: already have %q, ignoring %q", target.Alias, extra.Alias),
			map[string]any{
				"effective_alias": target.Alias,
				"ignored_alias":   extra.Alias,
			})
	}
	return &target
}
