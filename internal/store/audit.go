package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mapcheck/internal/validation"
)

// Run is one recorded validation outcome.
type Run struct {
	ID           string    `json:"id"`
	MappingName  string    `json:"mapping_name"`
	Valid        bool      `json:"valid"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordRun persists one validation result and returns the run id.
// Failed-channel results are recorded too: an agent retrying a broken
// loader is part of the history worth auditing.
func (s *Store) RecordRun(mappingName string, result validation.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize validation result: %w", err)
	}

	// Counts come from the severity views, not the summary: a failed run
	// carries processing errors in Errors while the summary tallies stay
	// zero, and the history must not read like a clean valid run.
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO validation_runs (id, mapping_name, valid, error_count, warning_count, result_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, mappingName, result.Valid, len(result.Errors), len(result.Warnings), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record validation run: %w", err)
	}

	return id, nil
}

// RecentRuns returns the latest runs for a mapping, newest first.
func (s *Store) RecentRuns(mappingName string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, mapping_name, valid, error_count, warning_count, created_at
		 FROM validation_runs
		 WHERE mapping_name = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		mappingName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.MappingName, &r.Valid, &r.ErrorCount, &r.WarningCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResult loads the full stored result for one run id.
func (s *Store) RunResult(id string) (validation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(`SELECT result_json FROM validation_runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		return validation.Result{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	var result validation.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return validation.Result{}, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return result, nil
}
