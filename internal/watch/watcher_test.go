package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mapcheck/internal/loader"
	"mapcheck/internal/validation"
)

const validCSV = `mapping_name,type,alias,definition,load_strategy,target_field_name,source_alias,source_field,target_pk,is_active
orders,Table,O,raw_orders,,,,,,
orders,Target,T,,full,,,,,
orders,Field Mapping,,,,order_id,O,id,,true
`

const brokenCSV = `mapping_name,type,alias,definition,load_strategy,target_field_name,source_alias,source_field,target_pk,is_active
orders,Table,O,raw_orders,,,,,,
orders,Field Mapping,,,,order_id,O,id,,true
`

// resultSink collects handler calls so the test can wait on them.
type resultSink struct {
	mu      sync.Mutex
	results []validation.Result
	notify  chan struct{}
}

func newResultSink() *resultSink {
	return &resultSink{notify: make(chan struct{}, 16)}
}

func (s *resultSink) handler(name string, result validation.Result) {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	s.notify <- struct{}{}
}

func (s *resultSink) wait(t *testing.T, n int) []validation.Result {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		s.mu.Lock()
		if len(s.results) >= n {
			out := append([]validation.Result(nil), s.results...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d results", n)
		}
	}
}

func TestWatcherValidatesOnStartAndChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.csv")
	require.NoError(t, os.WriteFile(path, []byte(validCSV), 0o644))

	sink := newResultSink()
	w := New(path, []string{"orders"}, loader.NewCSVSource(path), validation.New(),
		50*time.Millisecond, sink.handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	first := sink.wait(t, 1)
	require.True(t, first[0].Valid, "initial file is valid")

	// Replace with a file missing its target; the watcher should pick
	// it up and report the regression.
	require.NoError(t, os.WriteFile(path, []byte(brokenCSV), 0o644))

	results := sink.wait(t, 2)
	last := results[len(results)-1]
	require.False(t, last.Valid)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.csv")
	require.NoError(t, os.WriteFile(path, []byte(validCSV), 0o644))

	sink := newResultSink()
	w := New(path, []string{"orders"}, loader.NewCSVSource(path), validation.New(),
		300*time.Millisecond, sink.handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	sink.wait(t, 1)

	// A burst of rapid writes should coalesce into one revalidation.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(validCSV), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	sink.wait(t, 2)
	time.Sleep(500 * time.Millisecond)

	sink.mu.Lock()
	count := len(sink.results)
	sink.mu.Unlock()
	require.LessOrEqual(t, count, 3, "burst of writes should not fan out into per-write validations")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.csv")
	require.NoError(t, os.WriteFile(path, []byte(validCSV), 0o644))

	sink := newResultSink()
	w := New(path, []string{"orders"}, loader.NewCSVSource(path), validation.New(),
		50*time.Millisecond, sink.handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	sink.wait(t, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x\n"), 0o644))
	time.Sleep(300 * time.Millisecond)

	sink.mu.Lock()
	count := len(sink.results)
	sink.mu.Unlock()
	require.Equal(t, 1, count, "sibling file writes are not our mapping")

	cancel()
	<-done
}
