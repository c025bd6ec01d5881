package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ToggleSidebarInput is empty; the session flips its current state.
type ToggleSidebarInput struct{}

type sidebarSession interface {
	ToggleSidebar(ctx context.Context) bool
}

// ToggleSidebarCommand collapses or expands the sidebar and lets the
// session persist the choice.
type ToggleSidebarCommand struct {
	session   sidebarSession
	telemetry Telemetry
}

// NewToggleSidebarCommand creates the command.
func NewToggleSidebarCommand(session sidebarSession, telemetry Telemetry) *ToggleSidebarCommand {
	return &ToggleSidebarCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleSidebarInput] = (*ToggleSidebarCommand)(nil)

// Execute flips the sidebar.
func (c *ToggleSidebarCommand) Execute(ctx context.Context, _ ToggleSidebarInput) error {
	if c.session == nil {
		return errors.New("sidebar command requires session")
	}
	collapsed := c.session.ToggleSidebar(ctx)
	c.telemetry.Record(ctx, "dashboard.sidebar.toggle", map[string]any{
		"collapsed": collapsed,
	})
	return nil
}
