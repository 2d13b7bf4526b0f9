package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mapcheck/internal/mapping"
)

func openTestSource(t *testing.T) *SQLiteSource {
	t.Helper()
	src, err := OpenSQLiteSource(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestSQLiteRoundTrip(t *testing.T) {
	src := openTestSource(t)
	ctx := context.Background()

	inactive := false
	in := []mapping.RawRecord{
		{Type: "Table", Alias: "A", Definition: "raw.a"},
		{Type: "Target", Alias: "T", LoadStrategy: "merge"},
		{Type: "Field Mapping", TargetFieldName: "id", SourceAlias: "A", TargetPK: true},
		{Type: "Field Mapping", TargetFieldName: "old", IsActive: &inactive},
	}
	require.NoError(t, src.Insert(ctx, "orders", in))

	out, err := src.Load(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, out, 4)

	require.Equal(t, "Table", out[0].Type)
	require.Equal(t, "orders", out[0].MappingName)
	require.Equal(t, "merge", out[1].LoadStrategy)
	require.True(t, out[2].TargetPK)
	require.Nil(t, out[0].IsActive, "unset is_active stays absent")
	require.NotNil(t, out[3].IsActive)
	require.False(t, *out[3].IsActive)
}

func TestSQLiteOrderIsStable(t *testing.T) {
	src := openTestSource(t)
	ctx := context.Background()

	first := []mapping.RawRecord{{Type: "Table", Alias: "A"}}
	second := []mapping.RawRecord{{Type: "Table", Alias: "B"}, {Type: "Target", Alias: "T"}}
	require.NoError(t, src.Insert(ctx, "m", first))
	require.NoError(t, src.Insert(ctx, "m", second))

	out, err := src.Load(ctx, "m")
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "A", out[0].Alias)
	require.Equal(t, "B", out[1].Alias)
	require.Equal(t, "T", out[2].Alias)
}

func TestSQLiteMappingNotFound(t *testing.T) {
	src := openTestSource(t)

	_, err := src.Load(context.Background(), "absent")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMappingNotFound))
}

func TestSQLiteMappings(t *testing.T) {
	src := openTestSource(t)
	ctx := context.Background()

	require.NoError(t, src.Insert(ctx, "zeta", []mapping.RawRecord{{Type: "Table", Alias: "Z"}}))
	require.NoError(t, src.Insert(ctx, "alpha", []mapping.RawRecord{{Type: "Table", Alias: "A"}}))

	names, err := src.Mappings(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta"}, names)
}
