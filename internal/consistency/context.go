// Package consistency maintains the shared identity fabric for one
// decoy-population job: usernames, hostnames, domains, and the ordered list
// of honeytokens already embedded. Slot values are resolved lazily, cached,
// and immutable for the life of the job so every artifact in a decoy shows
// the same identity.
package consistency

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"decoyforge/internal/logging"
	"decoyforge/internal/store"
)

// Context is the job-scoped slot cache. Safe for concurrent Resolve calls.
type Context struct {
	JobID   string
	DecoyID string

	mu       sync.Mutex
	slots    map[string]string
	tokenIDs []string
	closed   bool
}

// Open starts a fresh context for a population job.
func Open(decoyID string) *Context {
	c := &Context{
		JobID:   uuid.NewString(),
		DecoyID: decoyID,
		slots:   make(map[string]string),
	}
	logging.Consistency("opened context job=%s decoy=%s", c.JobID, decoyID)
	return c
}

// Resolve returns the slot's value, deriving and caching it on first use.
// Repeated calls with the same name always return the same value.
func (c *Context) Resolve(slot string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(slot)
}

func (c *Context) resolveLocked(slot string) (string, error) {
	if v, ok := c.slots[slot]; ok {
		return v, nil
	}
	if c.closed {
		return "", fmt.Errorf("context %s is closed", c.JobID)
	}

	v, err := c.derive(slot)
	if err != nil {
		return "", err
	}
	c.slots[slot] = v
	logging.Consistency("resolved slot job=%s %s=%q", c.JobID, slot, v)
	return v, nil
}

// RecordToken appends a minted honeytoken identifier to the job's ordered
// list.
func (c *Context) RecordToken(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenIDs = append(c.tokenIDs, id)
}

// TokenIDs returns the honeytoken identifiers embedded so far, in mint order.
func (c *Context) TokenIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.tokenIDs))
	copy(out, c.tokenIDs)
	return out
}

// Slots returns a copy of the resolved slot mapping.
func (c *Context) Slots() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.slots))
	for k, v := range c.slots {
		out[k] = v
	}
	return out
}

// SlotNames returns the resolved slot names, sorted, for prompt assembly.
func (c *Context) SlotNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.slots))
	for k := range c.slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Close finalizes the context and persists the slot mapping and token list
// for audit. Further Resolve calls for unresolved slots fail.
func (c *Context) Close(ctx context.Context, s *store.Store) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	jc := store.JobContext{
		JobID:    c.JobID,
		DecoyID:  c.DecoyID,
		Slots:    make(map[string]string, len(c.slots)),
		TokenIDs: append([]string(nil), c.tokenIDs...),
	}
	for k, v := range c.slots {
		jc.Slots[k] = v
	}
	c.mu.Unlock()

	if s != nil {
		if err := s.SaveJobContext(ctx, jc); err != nil {
			return fmt.Errorf("failed to persist job context: %w", err)
		}
	}
	logging.Consistency("closed context job=%s slots=%d tokens=%d", c.JobID, len(jc.Slots), len(jc.TokenIDs))
	return nil
}
