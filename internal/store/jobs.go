package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// JobContext is the persisted form of a closed consistency context, kept for
// audit and for resuming failed jobs.
type JobContext struct {
	JobID     string            `json:"job_id"`
	DecoyID   string            `json:"decoy_id"`
	Slots     map[string]string `json:"slots"`
	TokenIDs  []string          `json:"token_ids"`
	CreatedAt time.Time         `json:"created_at"`
	ClosedAt  *time.Time        `json:"closed_at,omitempty"`
}

// SaveJobContext upserts the slot mapping and token list for a job. Called
// when a consistency context closes.
func (s *Store) SaveJobContext(ctx context.Context, jc JobContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := json.Marshal(jc.Slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}
	tokenIDs, err := json.Marshal(jc.TokenIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal token ids: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_contexts (job_id, decoy_id, slots, token_ids, closed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			slots = excluded.slots,
			token_ids = excluded.token_ids,
			closed_at = excluded.closed_at`,
		jc.JobID, jc.DecoyID, string(slots), string(tokenIDs), now)
	if err != nil {
		return fmt.Errorf("failed to save job context: %w", err)
	}
	return nil
}

// LoadJobContext fetches a persisted job context by job identifier.
func (s *Store) LoadJobContext(ctx context.Context, jobID string) (*JobContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, decoy_id, slots, token_ids, created_at, closed_at
		FROM job_contexts WHERE job_id = ?`, jobID)

	var jc JobContext
	var slots, tokenIDs string
	var closedAt sql.NullTime
	if err := row.Scan(&jc.JobID, &jc.DecoyID, &slots, &tokenIDs, &jc.CreatedAt, &closedAt); err != nil {
		return nil, fmt.Errorf("failed to load job context: %w", err)
	}
	if err := json.Unmarshal([]byte(slots), &jc.Slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slots: %w", err)
	}
	if err := json.Unmarshal([]byte(tokenIDs), &jc.TokenIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token ids: %w", err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		jc.ClosedAt = &t
	}
	return &jc, nil
}
