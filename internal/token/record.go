package token

import (
	"errors"
	"time"
)

// State is the lifecycle state of a planted honeytoken.
// active -> deactivated (manual revocation, terminal)
// active -> triggered   (first observed external use, terminal)
// No transition ever returns to active.
type State string

const (
	StateActive      State = "active"
	StateDeactivated State = "deactivated"
	StateTriggered   State = "triggered"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateActive, StateDeactivated, StateTriggered:
		return true
	}
	return false
}

// Record is the durable registry entry for one planted fake credential.
// Records are never deleted; only State (and access tracking) mutate.
type Record struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Value       string     `json:"value"`
	DecoyID     string     `json:"decoy_id"`
	Path        string     `json:"path"`
	JobID       string     `json:"job_id"`
	State       State      `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	AccessedAt  *time.Time `json:"accessed_at,omitempty"`
	AccessCount int        `json:"access_count"`
}

// Location identifies where a token is planted.
type Location struct {
	DecoyID string
	Path    string
	JobID   string
}

// Filter narrows List queries. Zero-value fields match everything.
type Filter struct {
	Type    Type
	State   State
	DecoyID string
	JobID   string
	Limit   int
}

// Ledger errors shared by every implementation.
var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("honeytoken not found")

	// ErrInvalidTransition is returned for illegal state changes, such as
	// triggering a token that is no longer active.
	ErrInvalidTransition = errors.New("invalid honeytoken state transition")

	// ErrUniqueness is returned when minting cannot produce an unused value
	// within its retry budget. This indicates a randomness-source defect.
	ErrUniqueness = errors.New("could not mint unique honeytoken value")
)
