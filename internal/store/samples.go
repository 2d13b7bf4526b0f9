package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Sample is a curated example mapping used for retrieval when the agent
// drafts a new document. The embedding is produced by the caller; the
// store only persists and searches it.
type Sample struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score,omitempty"`
}

// AddSample stores or replaces a sample by name.
func (s *Store) AddSample(name, document string, embedding []float32, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embJSON any
	if len(embedding) > 0 {
		data, err := json.Marshal(embedding)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding: %w", err)
		}
		embJSON = string(data)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO samples (name, document, embedding, metadata) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET document=excluded.document,
		   embedding=excluded.embedding, metadata=excluded.metadata`,
		name, document, embJSON, string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store sample: %w", err)
	}
	return nil
}

// SimilarSamples returns the samples nearest to the query embedding,
// best first. With the sqlite-vec extension loaded the distance runs
// inside SQLite; otherwise cosine similarity is computed in-process over
// the stored JSON embeddings. Without embeddings stored (or without a
// query vector) it degrades to insertion order.
func (s *Store) SimilarSamples(query []float32, limit int) ([]Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	if s.vecExt && len(query) > 0 {
		return s.similarSamplesVec(query, limit)
	}

	rows, err := s.db.Query(`SELECT id, name, document, embedding, metadata FROM samples`)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			sample   Sample
			embJSON  *string
			metaJSON *string
		)
		if err := rows.Scan(&sample.ID, &sample.Name, &sample.Document, &embJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if metaJSON != nil && *metaJSON != "" && *metaJSON != "null" {
			_ = json.Unmarshal([]byte(*metaJSON), &sample.Metadata)
		}

		if len(query) > 0 && embJSON != nil {
			var emb []float32
			if err := json.Unmarshal([]byte(*embJSON), &emb); err == nil {
				sample.Score = cosineSimilarity(query, emb)
			}
		}
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(query) > 0 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// similarSamplesVec ranks samples by cosine distance inside SQLite.
// Embeddings are stored as JSON arrays, which vec_f32 accepts directly.
func (s *Store) similarSamplesVec(query []float32, limit int) ([]Sample, error) {
	qJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, name, document, metadata,
		        vec_distance_cosine(vec_f32(embedding), vec_f32(?)) AS dist
		 FROM samples
		 WHERE embedding IS NOT NULL
		 ORDER BY dist ASC
		 LIMIT ?`,
		string(qJSON), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run vec similarity query: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			sample   Sample
			metaJSON *string
			dist     float64
		)
		if err := rows.Scan(&sample.ID, &sample.Name, &sample.Document, &metaJSON, &dist); err != nil {
			return nil, fmt.Errorf("failed to scan vec sample: %w", err)
		}
		if metaJSON != nil && *metaJSON != "" && *metaJSON != "null" {
			_ = json.Unmarshal([]byte(*metaJSON), &sample.Metadata)
		}
		sample.Score = 1 - dist
		out = append(out, sample)
	}
	return out, rows.Err()
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Dimension mismatch or a zero vector scores 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
