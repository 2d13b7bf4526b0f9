package validation

// Summary carries the tallies consumers display next to the issue list.
// The wire keys for the two counters are "errors" and "warnings" (not
// *_count); agents already parse that shape.
type Summary struct {
	TotalIssues      int      `json:"total_issues"`
	ErrorCount       int      `json:"errors"`
	WarningCount     int      `json:"warnings"`
	DefinedAliases   []string `json:"defined_aliases"`
	HasPrimaryKey    bool     `json:"has_primary_key"`
	TargetFieldCount int      `json:"target_field_count"`
}

// Result is the JSON-serializable outcome of one validation call.
//
// Success and Valid are distinct channels and callers must not conflate
// them: Success false means the document could not be validated at all
// (loader failure, absent mapping, unexpected panic) and Errors carries
// human-readable processing errors with Issues empty. Success true means
// the document was fully processed; Valid then reports whether any
// ERROR-severity issue was found.
type Result struct {
	Success  bool    `json:"success"`
	Valid    bool    `json:"valid"`
	Issues   []Issue `json:"issues"`
	Warnings []Issue `json:"warnings"`
	Errors   []Issue `json:"errors"`
	Summary  Summary `json:"summary"`
}

// ComponentEngine tags processing errors on the failure channel; it never
// appears among validation findings.
const ComponentEngine = "Engine"

// ProcessingError builds the failure-channel result: the validation never
// ran, so Issues stays empty and Errors carries the processing errors.
func ProcessingError(msgs ...string) Result {
	errs := make([]Issue, 0, len(msgs))
	for _, m := range msgs {
		errs = append(errs, Issue{
			Severity:  SeverityError,
			Message:   m,
			Component: ComponentEngine,
			Details:   map[string]any{},
		})
	}
	return Result{
		Success:  false,
		Valid:    false,
		Issues:   []Issue{},
		Warnings: []Issue{},
		Errors:   errs,
		Summary:  Summary{DefinedAliases: []string{}},
	}
}

// finalize splits the aggregate issue list into severity views, computes
// the tallies and derives overall validity.
func finalize(issues []Issue, summary Summary) Result {
	warnings := make([]Issue, 0, len(issues))
	errors := make([]Issue, 0, len(issues))
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			errors = append(errors, is)
		case SeverityWarning:
			warnings = append(warnings, is)
		}
	}

	summary.TotalIssues = len(issues)
	summary.ErrorCount = len(errors)
	summary.WarningCount = len(warnings)
	if summary.DefinedAliases == nil {
		summary.DefinedAliases = []string{}
	}

	return Result{
		Success:  true,
		Valid:    len(errors) == 0,
		Issues:   issues,
		Warnings: warnings,
		Errors:   errors,
		Summary:  summary,
	}
}
