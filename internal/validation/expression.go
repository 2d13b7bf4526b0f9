package validation

import (
	"fmt"
	"regexp"
	"strings"

	"mapcheck/internal/mapping"
)

// aliasDotPattern finds identifier-dot tokens in a transformation
// expression. This is a best-effort textual scan, not SQL parsing: a
// leading identifier character rules out numeric literals like 3.14, and
// anything fancier (quoted identifiers, dotted schema names) is out of
// scope for the heuristic.
var aliasDotPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\.`)

// scanExpressions walks the active field mappings and flags alias-dot
// tokens whose alias is not in the registry. Each distinct undefined alias
// is reported once per field mapping.
//
// The upstream implementation of this check iterated over the defined
// aliases and then tested each for non-membership in the same set, a dead
// branch that could never fire. legacy preserves that behavior verbatim
// for callers that need bug-for-bug output parity; the default is the
// evidently intended tokenize-and-check scan.
func scanExpressions(doc *mapping.Document, acc *issueList, legacy bool) {
	if legacy {
		scanExpressionsLegacy(doc, acc)
		return
	}

	for i, fm := range doc.FieldMappings {
		if !fm.Active || fm.Expression == "" {
			continue
		}

		reported := make(map[string]struct{})
		for _, match := range aliasDotPattern.FindAllStringSubmatch(fm.Expression, -1) {
			alias := match[1]
			if doc.Aliases.Defined(alias) {
				continue
			}
			if _, done := reported[alias]; done {
				continue
			}
			reported[alias] = struct{}{}
			acc.errorf(ComponentExpression,
				fmt.Sprintf("Expression references undefined alias: %s", alias),
				map[string]any{"mapping_index": i, "target_field": fm.TargetField, "alias": alias})
		}
	}
}

// scanExpressionsLegacy reproduces the original no-op: membership is
// tested against the very set being iterated, so nothing is ever emitted.
// Kept only so the behavioral choice is pinned by tests instead of silent.
func scanExpressionsLegacy(doc *mapping.Document, acc *issueList) {
	for i, fm := range doc.FieldMappings {
		if !fm.Active || fm.Expression == "" {
			continue
		}
		for _, alias := range doc.Aliases.Aliases() {
			if !strings.Contains(fm.Expression, alias+".") {
				continue
			}
			if doc.Aliases.Defined(alias) {
				continue
			}
			acc.errorf(ComponentExpression,
				fmt.Sprintf("Expression references undefined alias: %s", alias),
				map[string]any{"mapping_index": i, "target_field": fm.TargetField, "alias": alias})
		}
	}
}
