// Package roster orchestrates the administrator's user list: loading it
// from the backend and reconciling it after edits and deletes.
package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/rainflow/accounts/internal/client/gateway"
	"github.com/rainflow/accounts/internal/models"
)

// ErrSubmitInFlight is returned when a mutation is requested while a
// previous one has not completed. The gate exists to keep duplicate
// mutation requests from racing against the same backend record.
var ErrSubmitInFlight = errors.New("another change is still being submitted")

// Gateway is the slice of the backend client the controller needs.
type Gateway interface {
	ListUsers(ctx context.Context) ([]models.RosterEntry, error)
	UpdateUser(ctx context.Context, in gateway.UpdateInput) (models.RosterEntry, error)
	DeleteUser(ctx context.Context, id string) error
}

// Controller owns the local roster collection. The collection is a cache
// of backend truth: it is replaced wholesale after every successful load
// and refreshed after every successful mutation, never patched in place.
type Controller struct {
	gw Gateway

	mu         sync.Mutex
	entries    []models.RosterEntry
	lastErr    string
	submitting bool
}

// NewController returns a Controller backed by gw.
func NewController(gw Gateway) *Controller {
	return &Controller{gw: gw}
}

// Load fetches the roster. On success the collection is replaced in the
// server's order; on failure the prior collection stays untouched and the
// error is recorded — stale-but-consistent over empty-on-error.
func (c *Controller) Load(ctx context.Context) error {
	entries, err := c.gw.ListUsers(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	c.entries = entries
	c.lastErr = ""
	return nil
}

// SubmitEdit updates one entry. On success the whole roster is reloaded so
// the visible collection reflects confirmed server state (the server may
// normalize fields) rather than an optimistic local patch. On failure the
// error is returned and the collection is left unchanged so the edit form
// can stay open.
func (c *Controller) SubmitEdit(ctx context.Context, in gateway.UpdateInput) error {
	if !c.begin() {
		return ErrSubmitInFlight
	}
	defer c.end()

	if _, err := c.gw.UpdateUser(ctx, in); err != nil {
		c.record(err)
		return err
	}
	return c.Load(ctx)
}

// SubmitDelete removes one entry, then reloads. Failure leaves the
// collection unchanged.
func (c *Controller) SubmitDelete(ctx context.Context, id string) error {
	if !c.begin() {
		return ErrSubmitInFlight
	}
	defer c.end()

	if err := c.gw.DeleteUser(ctx, id); err != nil {
		c.record(err)
		return err
	}
	return c.Load(ctx)
}

// Entries returns a copy of the current collection.
func (c *Controller) Entries() []models.RosterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.RosterEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// LastError returns the most recent failure message, or "" after a
// successful load.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submitting reports whether a mutation is currently in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// begin claims the submitting gate. It returns false if a mutation is
// already in flight.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return false
	}
	c.submitting = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
}

func (c *Controller) record(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}
