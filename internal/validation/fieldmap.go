package validation

import (
	"fmt"
	"strings"

	"mapcheck/internal/mapping"
)

// fieldMappingStats carries what the field-mapping pass learned for the
// result summary.
type fieldMappingStats struct {
	hasPrimaryKey    bool
	targetFieldCount int
}

// checkFieldMappings enforces target-field uniqueness among active
// mappings, resolves source aliases, and applies the primary-key versus
// load-strategy rule.
//
// Inactive mappings are skipped entirely: they are not validated and do
// not count toward uniqueness or primary-key detection. Every duplicate
// occurrence of a target field after the first emits its own ERROR.
func checkFieldMappings(doc *mapping.Document, target *mapping.TargetRecord, acc *issueList) fieldMappingStats {
	var stats fieldMappingStats
	seen := make(map[string]struct{}, len(doc.FieldMappings))

	for i, fm := range doc.FieldMappings {
		if !fm.Active {
			continue
		}

		if fm.PrimaryKey {
			stats.hasPrimaryKey = true
		}

		if _, dup := seen[fm.TargetField]; dup {
			acc.errorf(ComponentFieldMapping,
				fmt.Sprintf("Duplicate target field mapping: %s", fm.TargetField),
				map[string]any{"mapping_index": i, "target_field": fm.TargetField})
		} else {
			seen[fm.TargetField] = struct{}{}
		}

		if fm.SourceAlias != "" && !doc.Aliases.Defined(fm.SourceAlias) {
			acc.errorf(ComponentFieldMapping,
				fmt.Sprintf("Field mapping references undefined source alias: %s", fm.SourceAlias),
				map[string]any{"mapping_index": i, "target_field": fm.TargetField, "alias": fm.SourceAlias})
		}
	}

	stats.targetFieldCount = len(seen)

	// The primary-key rule is tied to the effective target's load
	// strategy. With no target at all the missing-target ERROR already
	// covers the document, so the rule is skipped rather than doubled up.
	if !stats.hasPrimaryKey && target != nil {
		strategy := strings.ToLower(target.LoadStrategy)
		if strings.Contains(strategy, "update") || strings.Contains(strategy, "merge") {
			acc.errorf(ComponentFieldMapping,
				fmt.Sprintf("Load strategy %q requires primary key fields, but none defined", target.LoadStrategy),
				map[string]any{"load_strategy": target.LoadStrategy})
		} else {
			acc.warnf(ComponentFieldMapping,
				"No primary key fields defined",
				map[string]any{"load_strategy": target.LoadStrategy})
		}
	}

	return stats
}
