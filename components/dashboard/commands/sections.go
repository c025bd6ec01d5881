package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReportSectionInput is one scroll-spy visibility event from the client.
type ReportSectionInput struct {
	Section string `json:"section"`
	Entered bool   `json:"entered"`
}

type sectionSession interface {
	ReportSection(section string, entered bool) string
}

// ReportSectionCommand folds a visibility event into the session's
// section tracker so the navigation highlight follows the viewport.
type ReportSectionCommand struct {
	session   sectionSession
	telemetry Telemetry
}

// NewReportSectionCommand creates the command.
func NewReportSectionCommand(session sectionSession, telemetry Telemetry) *ReportSectionCommand {
	return &ReportSectionCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReportSectionInput] = (*ReportSectionCommand)(nil)

// Execute applies the event.
func (c *ReportSectionCommand) Execute(ctx context.Context, msg ReportSectionInput) error {
	if c.session == nil {
		return errors.New("section command requires session")
	}
	active := c.session.ReportSection(msg.Section, msg.Entered)
	c.telemetry.Record(ctx, "dashboard.section.report", map[string]any{
		"section": msg.Section,
		"entered": msg.Entered,
		"active":  active,
	})
	return nil
}
