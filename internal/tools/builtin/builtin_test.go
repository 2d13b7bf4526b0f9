package builtin

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"mapcheck/internal/loader"
	"mapcheck/internal/store"
	"mapcheck/internal/tools"
	"mapcheck/internal/validation"
)

const fixtureCSV = `mapping_name,type,alias,definition,load_strategy,target_field_name,source_alias,source_field,target_pk,is_active
orders,Table,O,raw_orders,,,,,,
orders,Target,T,,merge,,,,,
orders,Field Mapping,,,,order_id,O,id,true,true
orders,Field Mapping,,,,customer,X,customer_id,false,true
`

func newTestDeps(t *testing.T) Deps {
	t.Helper()

	csvPath := filepath.Join(t.TempDir(), "mappings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fixtureCSV), 0o644))

	st, err := store.Open(filepath.Join(t.TempDir(), "mapcheck.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE raw_orders (id INTEGER, customer_id INTEGER)`)
	require.NoError(t, err)

	return Deps{
		Source:    loader.NewCSVSource(csvPath),
		Validator: validation.New(),
		Store:     st,
		SchemaDB:  db,
		Log:       zap.NewNop(),
	}
}

func newTestRegistry(t *testing.T) (*tools.Registry, Deps) {
	t.Helper()
	reg := tools.NewRegistry(nil)
	deps := newTestDeps(t)
	require.NoError(t, Register(reg, deps))
	return reg, deps
}

func TestRegisterBuiltins(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.Equal(t, []string{
		"check_schema",
		"list_feedback",
		"list_mappings",
		"record_feedback",
		"validate_mapping",
	}, reg.Names())
}

func TestRegisterRequiresSource(t *testing.T) {
	err := Register(tools.NewRegistry(nil), Deps{})
	require.Error(t, err)
}

func TestValidateMappingTool(t *testing.T) {
	reg, deps := newTestRegistry(t)

	res, err := reg.Execute(context.Background(), "validate_mapping",
		map[string]any{"mapping_name": "orders"})
	require.NoError(t, err)

	var result validation.Result
	require.NoError(t, json.Unmarshal([]byte(res.Output), &result))
	require.True(t, result.Success)
	require.False(t, result.Valid, "mapping references the undefined alias X")

	runs, err := deps.Store.RecentRuns("orders", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1, "validation runs are audited")
}

func TestValidateMappingToolUnknownMapping(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res, err := reg.Execute(context.Background(), "validate_mapping",
		map[string]any{"mapping_name": "nope"})
	require.NoError(t, err, "a missing mapping is a failed result, not a tool error")

	var result validation.Result
	require.NoError(t, json.Unmarshal([]byte(res.Output), &result))
	require.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
}

func TestListMappingsTool(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res, err := reg.Execute(context.Background(), "list_mappings", nil)
	require.NoError(t, err)

	var out struct {
		Mappings []string `json:"mappings"`
		Count    int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
	require.Equal(t, []string{"orders"}, out.Mappings)
	require.Equal(t, 1, out.Count)
}

func TestCheckSchemaTool(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res, err := reg.Execute(context.Background(), "check_schema",
		map[string]any{"mapping_name": "orders"})
	require.NoError(t, err)

	var out struct {
		Issues []validation.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
	require.Empty(t, out.Issues, "raw_orders exists with both columns")
}

func TestCheckSchemaToolWithoutDatabase(t *testing.T) {
	reg := tools.NewRegistry(nil)
	deps := newTestDeps(t)
	deps.SchemaDB = nil
	require.NoError(t, Register(reg, deps))

	_, err := reg.Execute(context.Background(), "check_schema",
		map[string]any{"mapping_name": "orders"})
	require.Error(t, err)
}

func TestFeedbackTools(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Execute(context.Background(), "record_feedback",
		map[string]any{"mapping_name": "orders", "verdict": "up", "comment": "clean report"})
	require.NoError(t, err)

	_, err = reg.Execute(context.Background(), "record_feedback",
		map[string]any{"mapping_name": "orders", "verdict": "maybe"})
	require.Error(t, err)

	res, err := reg.Execute(context.Background(), "list_feedback",
		map[string]any{"mapping_name": "orders", "limit": float64(10)})
	require.NoError(t, err)

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
	require.Equal(t, 1, out.Count)
}
