package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feedback verdicts. Free-text comments ride alongside; the verdict is
// what downstream sample curation filters on.
const (
	VerdictUp   = "up"
	VerdictDown = "down"
)

// Feedback is one user judgement on a mapping's validation or generated
// SQL.
type Feedback struct {
	ID          string    `json:"id"`
	MappingName string    `json:"mapping_name"`
	Verdict     string    `json:"verdict"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordFeedback stores one feedback row and returns its id.
func (s *Store) RecordFeedback(mappingName, verdict, comment string) (string, error) {
	if verdict != VerdictUp && verdict != VerdictDown {
		return "", fmt.Errorf("invalid verdict %q (want %q or %q)", verdict, VerdictUp, VerdictDown)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO feedback (id, mapping_name, verdict, comment) VALUES (?, ?, ?, ?)`,
		id, mappingName, verdict, comment,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record feedback: %w", err)
	}
	return id, nil
}

// ListFeedback returns feedback for a mapping, newest first. An empty
// mappingName lists across all mappings.
func (s *Store) ListFeedback(mappingName string, limit int) ([]Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, mapping_name, verdict, comment, created_at FROM feedback`
	args := []any{}
	if mappingName != "" {
		query += ` WHERE mapping_name = ?`
		args = append(args, mappingName)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.MappingName, &f.Verdict, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
