package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// TogglePreviewInput starts or stops the preview for one track.
type TogglePreviewInput struct {
	TrackID string `json:"track_id"`
}

type previewSession interface {
	PlayPreview(trackID string) dashboard.PreviewChange
	StopPreview() dashboard.PreviewChange
}

// TogglePreviewCommand flips preview playback for a track; pressing play
// on the playing track stops it.
type TogglePreviewCommand struct {
	session   previewSession
	telemetry Telemetry
}

// NewTogglePreviewCommand creates the command.
func NewTogglePreviewCommand(session previewSession, telemetry Telemetry) *TogglePreviewCommand {
	return &TogglePreviewCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TogglePreviewInput] = (*TogglePreviewCommand)(nil)

// Execute toggles the preview.
func (c *TogglePreviewCommand) Execute(ctx context.Context, msg TogglePreviewInput) error {
	if c.session == nil {
		return errors.New("preview command requires session")
	}
	change := c.session.PlayPreview(msg.TrackID)
	c.telemetry.Record(ctx, "dashboard.preview.toggle", map[string]any{
		"track_id": msg.TrackID,
		"playing":  change.Started != "",
	})
	return nil
}

// StopPreviewInput is empty; whatever preview is playing stops.
type StopPreviewInput struct{}

// StopPreviewCommand stops the active preview, if any.
type StopPreviewCommand struct {
	session   previewSession
	telemetry Telemetry
}

// NewStopPreviewCommand creates the command.
func NewStopPreviewCommand(session previewSession, telemetry Telemetry) *StopPreviewCommand {
	return &StopPreviewCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[StopPreviewInput] = (*StopPreviewCommand)(nil)

// Execute stops playback.
func (c *StopPreviewCommand) Execute(ctx context.Context, _ StopPreviewInput) error {
	if c.session == nil {
		return errors.New("preview command requires session")
	}
	change := c.session.StopPreview()
	c.telemetry.Record(ctx, "dashboard.preview.stop", map[string]any{
		"stopped": change.Stopped,
	})
	return nil
}
