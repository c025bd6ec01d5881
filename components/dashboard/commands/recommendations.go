package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// ChangeMoodInput switches the recommendations region to a mood. The
// artista and custom moods carry the free-text query along.
type ChangeMoodInput struct {
	Mood  string `json:"mood"`
	Query string `json:"query"`
}

type moodSession interface {
	SetMood(ctx context.Context, mood, query string) (dashboard.Snapshot, error)
}

// ChangeMoodCommand re-targets the recommendations region.
type ChangeMoodCommand struct {
	session   moodSession
	telemetry Telemetry
}

// NewChangeMoodCommand creates the command.
func NewChangeMoodCommand(session moodSession, telemetry Telemetry) *ChangeMoodCommand {
	return &ChangeMoodCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ChangeMoodInput] = (*ChangeMoodCommand)(nil)

// Execute applies the mood and fetches fresh recommendations.
func (c *ChangeMoodCommand) Execute(ctx context.Context, msg ChangeMoodInput) error {
	if c.session == nil {
		return errors.New("mood command requires session")
	}
	if _, err := c.session.SetMood(ctx, msg.Mood, msg.Query); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.mood.change", map[string]any{
		"mood":      msg.Mood,
		"has_query": msg.Query != "",
	})
	return nil
}

// RefreshRecommendationsInput is empty; the session refreshes whatever
// mood is active.
type RefreshRecommendationsInput struct{}

type recommendationsSession interface {
	RefreshRecommendations(ctx context.Context) (dashboard.Snapshot, error)
}

// RefreshRecommendationsCommand re-fetches the active mood. The session's
// cooldown error passes through untouched so transports can map it to a
// retry-later response.
type RefreshRecommendationsCommand struct {
	session   recommendationsSession
	telemetry Telemetry
}

// NewRefreshRecommendationsCommand creates the command.
func NewRefreshRecommendationsCommand(session recommendationsSession, telemetry Telemetry) *RefreshRecommendationsCommand {
	return &RefreshRecommendationsCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshRecommendationsInput] = (*RefreshRecommendationsCommand)(nil)

// Execute triggers the refresh.
func (c *RefreshRecommendationsCommand) Execute(ctx context.Context, _ RefreshRecommendationsInput) error {
	if c.session == nil {
		return errors.New("refresh recommendations command requires session")
	}
	if _, err := c.session.RefreshRecommendations(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.recommendations.refresh", map[string]any{})
	return nil
}
