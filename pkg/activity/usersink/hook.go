package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/melodix/go-dashboard/pkg/activity"
)

// Sink persists activity records; go-users activity loggers satisfy it.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook bridges dashboard activity events into a go-users activity sink so
// listening history actions show up in the user's account timeline.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil || !evt.Valid() {
		return nil
	}
	record := types.ActivityRecord{
		ActorID:    parseUUID(evt.ActorID),
		UserID:     parseUUID(evt.UserID),
		TenantID:   parseUUID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		OccurredAt: evt.OccurredAt,
		Data:       map[string]any{},
	}
	for k, v := range evt.Metadata {
		record.Data[k] = v
	}
	if evt.DefinitionCode != "" {
		record.Data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		record.Data["recipients"] = append([]string(nil), evt.Recipients...)
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(v string) uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil
	}
	return id
}
