package activity

import (
	"context"
	"time"
)

// Config controls how the emitter stamps events.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter delivers dashboard events to its hooks. A nil or hook-less
// emitter is inert, so callers never need to guard Emit.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

// NewEmitter builds an emitter over the provided hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled,
		channel: channel,
	}
}

// Enabled reports whether emitted events reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit stamps channel and timestamp defaults and notifies the hooks.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return e.hooks.Notify(ctx, evt)
}
