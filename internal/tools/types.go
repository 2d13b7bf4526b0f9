// Package tools defines the tool surface an assistant calls to validate
// mapping documents: named, schema-described operations with a uniform
// execute signature. Tools are registered in a Registry and exposed over
// the stdio RPC server, which translates tools/list and tools/call into
// registry lookups.
package tools

import (
	"context"
)

// Category groups tools for listing and filtering.
type Category string

const (
	// CategoryValidate covers mapping validation and listing.
	CategoryValidate Category = "/validate"

	// CategorySchema covers checks against a physical database.
	CategorySchema Category = "/schema"

	// CategoryFeedback covers recording and reading agent feedback.
	CategoryFeedback Category = "/feedback"

	// CategoryGeneral is for tools usable in any session.
	CategoryGeneral Category = "/general"
)

// Property describes a single parameter in a tool's JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// Schema defines the expected arguments for a tool. It serializes to the
// JSON-schema shape RPC clients expect under inputSchema.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc runs a tool and returns its text result.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one callable operation.
type Tool struct {
	// Name is the unique identifier clients call the tool by.
	Name string

	// Description explains what the tool does, for client tool listings.
	Description string

	// Category groups the tool for filtered listings.
	Category Category

	// Execute runs the tool.
	Execute ExecuteFunc

	// Schema declares the expected arguments.
	Schema Schema
}

// Validate checks that the tool definition is usable.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Result wraps one tool execution with timing metadata.
type Result struct {
	ToolName   string
	Output     string
	Error      error
	DurationMs int64
}

// IsSuccess reports whether the tool executed without error.
func (r *Result) IsSuccess() bool {
	return r.Error == nil
}
