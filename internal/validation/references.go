package validation

import (
	"fmt"
	"strings"

	"mapcheck/internal/mapping"
)

// minFilterConditionLen is the heuristic floor below which a filter
// condition is flagged as a placeholder.
const minFilterConditionLen = 3

// checkJoins resolves both sides of every join against the alias registry.
// Each undefined side produces its own ERROR, so a join with both sides
// undefined yields two issues. The condition check is a heuristic, not a
// parser: any condition containing an equality operator anywhere passes.
func checkJoins(doc *mapping.Document, acc *issueList) {
	for i, join := range doc.Joins {
		if !doc.Aliases.Defined(join.LeftAlias) {
			acc.errorf(ComponentJoin,
				fmt.Sprintf("Join references undefined left alias: %s", join.LeftAlias),
				map[string]any{"join_index": i, "alias": join.LeftAlias})
		}
		if !doc.Aliases.Defined(join.RightAlias) {
			acc.errorf(ComponentJoin,
				fmt.Sprintf("Join references undefined right alias: %s", join.RightAlias),
				map[string]any{"join_index": i, "alias": join.RightAlias})
		}

		if strings.TrimSpace(join.Condition) == "" {
			acc.warnf(ComponentJoin,
				"Join condition is empty",
				map[string]any{"join_index": i, "left_alias": join.LeftAlias, "right_alias": join.RightAlias})
		} else if !strings.Contains(join.Condition, "=") {
			acc.warnf(ComponentJoin,
				fmt.Sprintf("Join condition has no equality operator: %s", join.Condition),
				map[string]any{"join_index": i, "condition": join.Condition})
		}
	}
}

// checkFilters resolves every filter's alias and flags empty or
// suspiciously short conditions. The length floor is a weak but
// intentional guard against placeholder filters left over from drafting.
func checkFilters(doc *mapping.Document, acc *issueList) {
	for i, filter := range doc.Filters {
		if !doc.Aliases.Defined(filter.Alias) {
			acc.errorf(ComponentFilter,
				fmt.Sprintf("Filter references undefined alias: %s", filter.Alias),
				map[string]any{"filter_index": i, "alias": filter.Alias})
		}

		if cond := strings.TrimSpace(filter.Condition); len(cond) < minFilterConditionLen {
			acc.warnf(ComponentFilter,
				fmt.Sprintf("Filter condition is empty or too short: %q", cond),
				map[string]any{"filter_index": i, "alias": filter.Alias, "condition": cond})
		}
	}
}
