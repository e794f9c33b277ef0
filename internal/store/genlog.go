package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"decoyforge/internal/logging"
)

// GenerationLogEntry is one append-only audit record per generation attempt.
type GenerationLogEntry struct {
	GenerationID string
	ContentType  string
	FileType     string
	DecoyID      string
	JobID        string
	Attempt      int
	PromptHash   string
	Model        string
	Temperature  float64
	MinScore     float64
	Accepted     bool
	Rejections   []string
	Duration     time.Duration
	CreatedAt    time.Time
}

// AppendGenerationLog writes one audit entry. Entries are write-once and
// never updated or deleted.
func (s *Store) AppendGenerationLog(ctx context.Context, e GenerationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := 0
	if e.Accepted {
		accepted = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_log
			(generation_id, content_type, file_type, decoy_id, job_id, attempt,
			 prompt_hash, model, temperature, min_score, accepted, rejection_reasons, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.GenerationID, e.ContentType, e.FileType, e.DecoyID, e.JobID, e.Attempt,
		e.PromptHash, e.Model, e.Temperature, e.MinScore, accepted,
		strings.Join(e.Rejections, "; "), e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to append generation log: %w", err)
	}

	logging.StoreDebug("generation log: id=%s attempt=%d accepted=%v score=%.2f",
		e.GenerationID, e.Attempt, e.Accepted, e.MinScore)
	return nil
}

// GenerationAttempts returns every logged attempt for one generation,
// oldest first.
func (s *Store) GenerationAttempts(ctx context.Context, generationID string) ([]GenerationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT generation_id, content_type, file_type, decoy_id, job_id, attempt,
		       prompt_hash, model, temperature, min_score, accepted, rejection_reasons, duration_ms, created_at
		FROM generation_log WHERE generation_id = ? ORDER BY attempt ASC`, generationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation log: %w", err)
	}
	defer rows.Close()
	return scanGenerationLog(rows)
}

// GenerationHistory returns the most recent attempts for a decoy.
func (s *Store) GenerationHistory(ctx context.Context, decoyID string, limit int) ([]GenerationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT generation_id, content_type, file_type, decoy_id, job_id, attempt,
		       prompt_hash, model, temperature, min_score, accepted, rejection_reasons, duration_ms, created_at
		FROM generation_log WHERE decoy_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, decoyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()
	return scanGenerationLog(rows)
}

func scanGenerationLog(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]GenerationLogEntry, error) {
	var out []GenerationLogEntry
	for rows.Next() {
		var e GenerationLogEntry
		var accepted int
		var rejections string
		var durationMS int64
		if err := rows.Scan(&e.GenerationID, &e.ContentType, &e.FileType, &e.DecoyID, &e.JobID,
			&e.Attempt, &e.PromptHash, &e.Model, &e.Temperature, &e.MinScore,
			&accepted, &rejections, &durationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation log: %w", err)
		}
		e.Accepted = accepted != 0
		if rejections != "" {
			e.Rejections = strings.Split(rejections, "; ")
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
