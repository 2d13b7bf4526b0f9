// Package builtin registers the standard mapcheck tool set: validating
// mapping documents, listing what a source holds, checking a physical
// schema, and recording agent feedback. The tools wrap the internal
// packages and serialize their results as JSON text, which is what RPC
// clients expect in tool content.
package builtin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mapcheck/internal/mapping"
	"mapcheck/internal/schema"
	"mapcheck/internal/store"
	"mapcheck/internal/tools"
	"mapcheck/internal/validation"
)

// Source is the record source the tools read mappings from. Both the CSV
// and SQLite loaders satisfy it.
type Source interface {
	validation.Source
	Mappings(ctx context.Context) ([]string, error)
}

// Deps carries the collaborators the builtin tools close over. Store and
// SchemaDB are optional; tools that need a missing dependency report a
// tool-level error instead of being registered as broken.
type Deps struct {
	Source    Source
	Validator *validation.Validator
	Store     *store.Store
	SchemaDB  *sql.DB
	Log       *zap.Logger
}

// Register adds the builtin tools to the registry.
func Register(reg *tools.Registry, deps Deps) error {
	if deps.Source == nil {
		return errors.New("builtin tools require a record source")
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	for _, tool := range []*tools.Tool{
		validateMappingTool(deps),
		listMappingsTool(deps),
		checkSchemaTool(deps),
		recordFeedbackTool(deps),
		listFeedbackTool(deps),
	} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func validateMappingTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "validate_mapping",
		Description: "Validate a mapping document: alias references, target invariants, primary key rules and expression aliases. Returns the full JSON report.",
		Category:    tools.CategoryValidate,
		Schema: tools.Schema{
			Required: []string{"mapping_name"},
			Properties: map[string]tools.Property{
				"mapping_name": {Type: "string", Description: "Name of the mapping document to validate"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			name, _ := args["mapping_name"].(string)

			result := deps.Validator.ValidateSource(ctx, deps.Source, name)

			if deps.Store != nil {
				if _, err := deps.Store.RecordRun(name, result); err != nil {
					deps.Log.Warn("failed to record validation run",
						zap.String("mapping", name), zap.Error(err))
				}
			}

			return marshalResult(result)
		},
	}
}

func listMappingsTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "list_mappings",
		Description: "List the mapping documents available in the configured source.",
		Category:    tools.CategoryValidate,
		Schema:      tools.Schema{Required: []string{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			names, err := deps.Source.Mappings(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to list mappings: %w", err)
			}
			return marshalResult(map[string]any{"mappings": names, "count": len(names)})
		},
	}
}

func checkSchemaTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "check_schema",
		Description: "Check a mapping's referenced tables and source columns against the configured physical database. Advisory: findings are warnings.",
		Category:    tools.CategorySchema,
		Schema: tools.Schema{
			Required: []string{"mapping_name"},
			Properties: map[string]tools.Property{
				"mapping_name": {Type: "string", Description: "Name of the mapping document to check"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			if deps.SchemaDB == nil {
				return "", errors.New("no schema database configured")
			}
			name, _ := args["mapping_name"].(string)

			records, err := deps.Source.Load(ctx, name)
			if err != nil {
				return "", fmt.Errorf("failed to load mapping %q: %w", name, err)
			}

			doc := mapping.Classify(name, records)
			issues, err := schema.NewChecker(deps.SchemaDB, deps.Log).Check(ctx, doc)
			if err != nil {
				return "", fmt.Errorf("schema check failed: %w", err)
			}
			if issues == nil {
				issues = []validation.Issue{}
			}
			return marshalResult(map[string]any{"mapping_name": name, "issues": issues})
		},
	}
}

func recordFeedbackTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "record_feedback",
		Description: "Record a thumbs up or down verdict on a validated mapping, with an optional comment.",
		Category:    tools.CategoryFeedback,
		Schema: tools.Schema{
			Required: []string{"mapping_name", "verdict"},
			Properties: map[string]tools.Property{
				"mapping_name": {Type: "string", Description: "Mapping the feedback applies to"},
				"verdict":      {Type: "string", Description: "up or down", Enum: []any{"up", "down"}},
				"comment":      {Type: "string", Description: "Optional free-text comment"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			if deps.Store == nil {
				return "", errors.New("no store configured")
			}
			name, _ := args["mapping_name"].(string)
			verdict, _ := args["verdict"].(string)
			comment, _ := args["comment"].(string)

			id, err := deps.Store.RecordFeedback(name, verdict, comment)
			if err != nil {
				return "", err
			}
			return marshalResult(map[string]any{"id": id, "recorded": true})
		},
	}
}

func listFeedbackTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "list_feedback",
		Description: "List recorded feedback, newest first, optionally scoped to one mapping.",
		Category:    tools.CategoryFeedback,
		Schema: tools.Schema{
			Required: []string{},
			Properties: map[string]tools.Property{
				"mapping_name": {Type: "string", Description: "Restrict to one mapping"},
				"limit":        {Type: "integer", Description: "Maximum entries to return", Default: 20},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			if deps.Store == nil {
				return "", errors.New("no store configured")
			}
			name, _ := args["mapping_name"].(string)
			limit := intArg(args, "limit", 20)

			entries, err := deps.Store.ListFeedback(name, limit)
			if err != nil {
				return "", err
			}
			if entries == nil {
				entries = []store.Feedback{}
			}
			return marshalResult(map[string]any{"feedback": entries, "count": len(entries)})
		},
	}
}

// intArg reads an integer argument. JSON decodes numbers as float64, so
// both representations are accepted.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func marshalResult(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize tool result: %w", err)
	}
	return string(data), nil
}
