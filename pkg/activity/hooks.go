package activity

import (
	"context"
	"errors"
	"sync"
)

// Hook receives normalized dashboard activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify implements Hook.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every registered hook. Events without a verb
// are skipped; hook errors are joined so one failing sink does not hide
// another.
type Hooks []Hook

// Notify normalizes the event and delivers it to each hook in order.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(evt)
	if !normalized.Valid() {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records every event it sees. Useful in tests and for the
// in-memory activity feed.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify implements Hook.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}

// Snapshot returns a copy of the captured events.
func (c *CaptureHook) Snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.Events...)
}
