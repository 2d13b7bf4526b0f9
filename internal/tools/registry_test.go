package tools

import (
	"context"
	"errors"
	"testing"
)

func echoTool(name string, category Category) *Tool {
	return &Tool{
		Name:     name,
		Category: category,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return "echo: " + msg, nil
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(echoTool("echo", CategoryGeneral)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("echo")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "echo" {
		t.Errorf("got name %q, want %q", got.Name, "echo")
	}
	if !reg.Has("echo") {
		t.Error("Has returned false for registered tool")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(echoTool("dupe", CategoryGeneral)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := reg.Register(echoTool("dupe", CategoryGeneral))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{
			name:    "empty name",
			tool:    &Tool{Name: "", Execute: func(ctx context.Context, args map[string]any) (string, error) { return "", nil }},
			wantErr: ErrToolNameEmpty,
		},
		{
			name:    "nil execute",
			tool:    &Tool{Name: "test", Execute: nil},
			wantErr: ErrToolExecuteNil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestByCategorySortedByName(t *testing.T) {
	reg := NewRegistry(nil)

	reg.MustRegister(echoTool("validate_mapping", CategoryValidate))
	reg.MustRegister(echoTool("list_mappings", CategoryValidate))
	reg.MustRegister(echoTool("check_schema", CategorySchema))

	validate := reg.ByCategory(CategoryValidate)
	if len(validate) != 2 {
		t.Fatalf("expected 2 validate tools, got %d", len(validate))
	}
	if validate[0].Name != "list_mappings" || validate[1].Name != "validate_mapping" {
		t.Errorf("ByCategory not name-sorted: %s, %s", validate[0].Name, validate[1].Name)
	}
}

func TestAllAndNamesAreSorted(t *testing.T) {
	reg := NewRegistry(nil)

	reg.MustRegister(echoTool("zeta", CategoryGeneral))
	reg.MustRegister(echoTool("alpha", CategoryGeneral))

	names := reg.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Names not sorted: %v", names)
	}

	all := reg.All()
	if len(all) != 2 || all[0].Name != "alpha" {
		t.Errorf("All not sorted: %v", all)
	}
}

func TestExecute(t *testing.T) {
	reg := NewRegistry(nil)

	tool := echoTool("echo", CategoryGeneral)
	tool.Schema = Schema{
		Required:   []string{"message"},
		Properties: map[string]Property{"message": {Type: "string"}},
	}
	reg.MustRegister(tool)

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"message": "hello"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Output != "echo: hello" {
		t.Errorf("got output %q, want %q", result.Output, "echo: hello")
	}
	if !result.IsSuccess() {
		t.Error("expected IsSuccess to be true")
	}

	_, err = reg.Execute(context.Background(), "echo", map[string]any{})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Errorf("expected ErrMissingRequiredArg, got %v", err)
	}

	_, err = reg.Execute(context.Background(), "nonexistent", map[string]any{})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestExecuteToolError(t *testing.T) {
	reg := NewRegistry(nil)

	boom := errors.New("boom")
	reg.MustRegister(&Tool{
		Name:     "failing",
		Category: CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", boom
		},
	})

	result, err := reg.Execute(context.Background(), "failing", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if result.IsSuccess() {
		t.Error("expected IsSuccess to be false")
	}
	if result.ToolName != "failing" {
		t.Errorf("result should name the tool, got %q", result.ToolName)
	}
}
