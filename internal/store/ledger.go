package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"decoyforge/internal/logging"
	"decoyforge/internal/metrics"
	"decoyforge/internal/token"
)

// mintRetryBudget bounds collision retries. Collisions are vanishingly rare
// with crypto/rand values; hitting the budget means the randomness source is
// broken and the error surfaces as token.ErrUniqueness.
const mintRetryBudget = 5

// Mint generates a fresh token value for the given type, persists it in
// state active, and returns the record. The UNIQUE constraint on the value
// column is the uniqueness authority; insert collisions retry with a freshly
// drawn value.
func (s *Store) Mint(ctx context.Context, t token.Type, loc token.Location) (*token.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < mintRetryBudget; attempt++ {
		value, err := token.NewValue(t)
		if err != nil {
			return nil, fmt.Errorf("failed to draw token value: %w", err)
		}

		rec := token.Record{
			ID:        uuid.NewString(),
			Type:      t,
			Value:     value,
			DecoyID:   loc.DecoyID,
			Path:      loc.Path,
			JobID:     loc.JobID,
			State:     token.StateActive,
			CreatedAt: time.Now().UTC(),
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO honeytokens (id, token_type, token_value, decoy_id, file_path, job_id, state, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, string(rec.Type), rec.Value, rec.DecoyID, rec.Path, rec.JobID, string(rec.State), rec.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				logging.Ledger("mint collision on %s value, redrawing (attempt %d)", t, attempt+1)
				continue
			}
			return nil, fmt.Errorf("failed to persist honeytoken: %w", err)
		}

		metrics.TokensMinted.WithLabelValues(string(t)).Inc()
		logging.Ledger("minted %s token id=%s decoy=%s path=%s", t, rec.ID, loc.DecoyID, loc.Path)
		return &rec, nil
	}

	return nil, token.ErrUniqueness
}

// Lookup finds the record whose value exactly matches the observed
// credential and records the access.
func (s *Store) Lookup(ctx context.Context, value string) (*token.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupCache != nil {
		if rec, ok := s.lookupCache.Get(value); ok {
			if err := s.recordAccess(ctx, rec.ID, &rec); err != nil {
				return nil, err
			}
			s.lookupCache.Add(value, rec)
			return &rec, nil
		}
	}

	rec, err := s.queryOne(ctx, "token_value = ?", value)
	if err != nil {
		return nil, err
	}
	if err := s.recordAccess(ctx, rec.ID, rec); err != nil {
		return nil, err
	}
	if s.lookupCache != nil {
		s.lookupCache.Add(value, *rec)
	}
	return rec, nil
}

// Get fetches a record by its identifier without touching access tracking.
func (s *Store) Get(ctx context.Context, id string) (*token.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryOne(ctx, "id = ?", id)
}

// Deactivate transitions an active record to deactivated. Deactivating an
// already-deactivated record is a no-op; a triggered record stays triggered.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.queryOne(ctx, "id = ?", id)
	if err != nil {
		return err
	}
	switch rec.State {
	case token.StateDeactivated:
		return nil // idempotent
	case token.StateTriggered:
		return fmt.Errorf("cannot deactivate triggered token %s: %w", id, token.ErrInvalidTransition)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE honeytokens SET state = ? WHERE id = ? AND state = ?`,
		string(token.StateDeactivated), id, string(token.StateActive))
	if err != nil {
		return fmt.Errorf("failed to deactivate honeytoken: %w", err)
	}
	s.evict(rec.Value)
	logging.Ledger("deactivated token id=%s", id)
	return nil
}

// MarkTriggered transitions active to triggered, the terminal state that
// signals first observed external use. The conditional update is the state
// machine guard: zero rows means the record was not active.
func (s *Store) MarkTriggered(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE honeytokens
		SET state = ?, accessed_at = ?, access_count = access_count + 1
		WHERE id = ? AND state = ?`,
		string(token.StateTriggered), now, id, string(token.StateActive))
	if err != nil {
		return fmt.Errorf("failed to mark honeytoken triggered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check trigger result: %w", err)
	}
	if affected == 0 {
		rec, err := s.queryOne(ctx, "id = ?", id)
		if err != nil {
			return err
		}
		return fmt.Errorf("cannot trigger token %s in state %s: %w", id, rec.State, token.ErrInvalidTransition)
	}

	rec, err := s.queryOne(ctx, "id = ?", id)
	if err == nil {
		s.evict(rec.Value)
	}
	metrics.TokensTriggered.Inc()
	logging.Ledger("token TRIGGERED id=%s", id)
	return nil
}

// List returns records matching the filter, newest first.
func (s *Store) List(ctx context.Context, f token.Filter) ([]token.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, token_type, token_value, decoy_id, file_path, job_id, state, created_at, accessed_at, access_count
		FROM honeytokens WHERE 1=1`
	var args []any
	if f.Type != "" {
		query += " AND token_type = ?"
		args = append(args, string(f.Type))
	}
	if f.State != "" {
		query += " AND state = ?"
		args = append(args, string(f.State))
	}
	if f.DecoyID != "" {
		query += " AND decoy_id = ?"
		args = append(args, f.DecoyID)
	}
	if f.JobID != "" {
		query += " AND job_id = ?"
		args = append(args, f.JobID)
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list honeytokens: %w", err)
	}
	defer rows.Close()

	var out []token.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// ListByJob returns every record minted for a job regardless of state.
func (s *Store) ListByJob(ctx context.Context, jobID string) ([]token.Record, error) {
	return s.List(ctx, token.Filter{JobID: jobID})
}

func (s *Store) queryOne(ctx context.Context, where string, arg any) (*token.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, token_type, token_value, decoy_id, file_path, job_id, state, created_at, accessed_at, access_count
		FROM honeytokens WHERE `+where, arg)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, token.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query honeytoken: %w", err)
	}
	return rec, nil
}

// recordAccess bumps the access counter and mirrors the change into rec.
func (s *Store) recordAccess(ctx context.Context, id string, rec *token.Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE honeytokens SET accessed_at = ?, access_count = access_count + 1 WHERE id = ?`,
		now, id)
	if err != nil {
		return fmt.Errorf("failed to record honeytoken access: %w", err)
	}
	rec.AccessedAt = &now
	rec.AccessCount++
	return nil
}

func (s *Store) evict(value string) {
	if s.lookupCache != nil {
		s.lookupCache.Remove(value)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*token.Record, error) {
	var rec token.Record
	var typ, state string
	var accessedAt sql.NullTime
	err := row.Scan(&rec.ID, &typ, &rec.Value, &rec.DecoyID, &rec.Path, &rec.JobID,
		&state, &rec.CreatedAt, &accessedAt, &rec.AccessCount)
	if err != nil {
		return nil, err
	}
	rec.Type = token.Type(typ)
	rec.State = token.State(state)
	if accessedAt.Valid {
		t := accessedAt.Time
		rec.AccessedAt = &t
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
