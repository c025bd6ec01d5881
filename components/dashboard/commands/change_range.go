package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// ChangeRangeInput selects the time window for the top lists.
type ChangeRangeInput struct {
	TimeRange string `json:"time_range"`
}

type rangeSession interface {
	ReloadRange(ctx context.Context, timeRange string) (dashboard.Snapshot, error)
}

// ChangeRangeCommand swaps the session's top lists and genre chart to a
// new time range. Unknown ranges are rejected by the session.
type ChangeRangeCommand struct {
	session   rangeSession
	telemetry Telemetry
}

// NewChangeRangeCommand creates the command.
func NewChangeRangeCommand(session rangeSession, telemetry Telemetry) *ChangeRangeCommand {
	return &ChangeRangeCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ChangeRangeInput] = (*ChangeRangeCommand)(nil)

// Execute reloads the session for the requested range.
func (c *ChangeRangeCommand) Execute(ctx context.Context, msg ChangeRangeInput) error {
	if c.session == nil {
		return errors.New("change range command requires session")
	}
	if _, err := c.session.ReloadRange(ctx, msg.TimeRange); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.range.change", map[string]any{
		"time_range": msg.TimeRange,
	})
	return nil
}
