package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mapcheck/internal/mapping"
)

// Source is the external loader collaborator: it yields the ordered flat
// record sequence of one mapping document. Loader failures (including a
// missing mapping) drive the Success=false channel of the result.
type Source interface {
	Load(ctx context.Context, mappingName string) ([]mapping.RawRecord, error)
}

// Validator runs the full check sequence over a mapping document. A
// Validator is stateless between calls: every invocation classifies its
// own records and builds its own registry, so independent validations can
// run concurrently without coordination.
type Validator struct {
	legacyExpressionScan bool
	log                  *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLegacyExpressionScan selects the bug-for-bug upstream expression
// scan, which can never emit an issue. Only useful for output parity with
// the upstream system; the intended tokenize-and-check scan is the default.
func WithLegacyExpressionScan() Option {
	return func(v *Validator) { v.legacyExpressionScan = true }
}

// WithLogger attaches a logger for debug tracing of check execution.
func WithLogger(log *zap.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

// New builds a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateSource loads the record sequence for mappingName and validates
// it. Loader failures come back on the Success=false channel with no
// partial issues; callers must treat that as "cannot assess", never as
// "the document is invalid".
func (v *Validator) ValidateSource(ctx context.Context, src Source, mappingName string) Result {
	records, err := src.Load(ctx, mappingName)
	if err != nil {
		v.log.Debug("mapping load failed",
			zap.String("mapping", mappingName), zap.Error(err))
		return ProcessingError(fmt.Sprintf("failed to load mapping %q: %v", mappingName, err))
	}
	return v.ValidateRecords(mappingName, records)
}

// ValidateRecords classifies and validates an already-loaded record
// sequence. The engine is non-throwing by design: an unexpected panic in
// classification or validation is converted into a processing error so
// the caller always gets a well-formed result.
func (v *Validator) ValidateRecords(mappingName string, records []mapping.RawRecord) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Error("validation panicked",
				zap.String("mapping", mappingName), zap.Any("panic", r))
			result = ProcessingError(fmt.Sprintf("unexpected error while validating %q: %v", mappingName, r))
		}
	}()

	doc := mapping.Classify(mappingName, records)
	return v.Validate(doc)
}

// Validate runs the check sequence over a classified document.
//
// Check order is a documented contract: Target, then Joins, then Filters,
// then Field Mappings, then the Expression Scan, each walking records in
// input order. Downstream consumers display issues in this order, so the
// sequence must stay stable and deterministic for identical input.
func (v *Validator) Validate(doc *mapping.Document) Result {
	acc := &issueList{}

	target := checkTarget(doc, acc)
	checkJoins(doc, acc)
	checkFilters(doc, acc)
	stats := checkFieldMappings(doc, target, acc)
	scanExpressions(doc, acc, v.legacyExpressionScan)

	if acc.issues == nil {
		acc.issues = []Issue{}
	}

	result := finalize(acc.issues, Summary{
		DefinedAliases:   doc.Aliases.Aliases(),
		HasPrimaryKey:    stats.hasPrimaryKey,
		TargetFieldCount: stats.targetFieldCount,
	})

	v.log.Debug("validation complete",
		zap.String("mapping", doc.Name),
		zap.Bool("valid", result.Valid),
		zap.Int("errors", result.Summary.ErrorCount),
		zap.Int("warnings", result.Summary.WarningCount))

	return result
}
