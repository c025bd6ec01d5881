package activity

import (
	"strings"
	"time"
)

// DefaultChannel tags events that do not declare their own channel.
const DefaultChannel = "dashboard"

// Event describes something a viewer did on the dashboard: changed the time
// range, played a preview, refreshed recommendations, toggled the sidebar.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// NormalizeEvent trims identifying fields and clones the mutable members so
// hooks can hold onto the event without sharing state with the caller.
func NormalizeEvent(evt Event) Event {
	out := evt
	out.Verb = strings.TrimSpace(evt.Verb)
	out.ObjectType = strings.TrimSpace(evt.ObjectType)
	out.ObjectID = strings.TrimSpace(evt.ObjectID)
	if evt.Metadata != nil {
		out.Metadata = make(map[string]any, len(evt.Metadata))
		for k, v := range evt.Metadata {
			out.Metadata[k] = v
		}
	}
	if evt.Recipients != nil {
		out.Recipients = append([]string(nil), evt.Recipients...)
	}
	return out
}

// Valid reports whether the event carries enough identity to be recorded.
func (e Event) Valid() bool {
	return strings.TrimSpace(e.Verb) != ""
}
