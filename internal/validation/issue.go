// Package validation implements the semantic checker for mapping
// documents: alias reference resolution across joins, filters and field
// mappings, the exactly-one-target invariant, the primary-key versus
// load-strategy rule, and a best-effort scan of transformation
// expressions. Checks never raise; every finding is collected as a
// severity-tagged issue so a partial or malformed document can still be
// diagnosed completely in one pass.
package validation

// Severity classifies the impact of an issue. ERROR blocks validity,
// WARNING is informational.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Components tag where in the document an issue was found. Downstream
// consumers group and display issues by component, so these names are part
// of the output contract.
const (
	ComponentTarget       = "Target"
	ComponentJoin         = "Join"
	ComponentFilter       = "Filter"
	ComponentFieldMapping = "Field Mapping"
	ComponentExpression   = "Expression"
	ComponentSchema       = "Schema"
)

// Issue is a single validation finding.
type Issue struct {
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	Details   map[string]any `json:"details"`
}

// issueList accumulates findings in the order the checks emit them. The
// engine runs its checks in a fixed documented sequence and each check
// walks records in input order, so append-only accumulation is all that is
// needed to keep the final list deterministic.
type issueList struct {
	issues []Issue
}

func (l *issueList) errorf(component, message string, details map[string]any) {
	l.add(SeverityError, component, message, details)
}

func (l *issueList) warnf(component, message string, details map[string]any) {
	l.add(SeverityWarning, component, message, details)
}

func (l *issueList) add(sev Severity, component, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	l.issues = append(l.issues, Issue{
		Severity:  sev,
		Message:   message,
		Component: component,
		Details:   details,
	})
}
