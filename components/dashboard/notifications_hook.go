package dashboard

import (
	"context"
	"errors"
)

// DefaultNotificationsChannel receives dashboard events when a hook does
// not name its own channel.
const DefaultNotificationsChannel = "melodix.dashboard"

// NotificationsClient is the minimal publisher contract the dashboard
// needs from an external notifications service.
type NotificationsClient interface {
	Publish(ctx context.Context, channel string, payload map[string]any) error
}

// NotificationsHook mirrors widget events onto a notifications channel so
// companion apps (mobile, desktop mini player) can react to dashboard
// changes without holding a socket open.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
}

// WidgetUpdated publishes the event to the configured channel. A hook
// without a client is a no-op so it can stay wired in all environments.
func (h *NotificationsHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	channel := h.Channel
	if channel == "" {
		channel = DefaultNotificationsChannel
	}
	return h.Client.Publish(ctx, channel, map[string]any{
		"area_code":     event.AreaCode,
		"widget_id":     event.Instance.ID,
		"definition_id": event.Instance.DefinitionID,
		"reason":        event.Reason,
	})
}

// MultiHook fans one widget event out to several refresh hooks, e.g. the
// in-process broadcaster plus an external notifications channel. Every
// hook runs; failures are joined.
type MultiHook []RefreshHook

// WidgetUpdated delivers the event to each hook in order.
func (hooks MultiHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs []error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
