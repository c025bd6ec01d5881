package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

// SaveLayoutPreferencesInput captures viewer overrides: widget order and
// visibility, row layouts, locale, preferred time range, and the sidebar
// state.
type SaveLayoutPreferencesInput struct {
	Viewer           dashboard.ViewerContext            `json:"viewer"`
	AreaOrder        map[string][]string                `json:"area_order"`
	AreaRows         map[string][]dashboard.LayoutRow   `json:"area_rows"`
	HiddenWidgets    []string                           `json:"hidden_widget_ids"`
	Locale           string                             `json:"locale"`
	TimeRange        string                             `json:"time_range"`
	SidebarCollapsed bool                               `json:"sidebar_collapsed"`
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// SaveLayoutPreferencesCommand persists per-viewer layout overrides.
type SaveLayoutPreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSaveLayoutPreferencesCommand creates the command.
func NewSaveLayoutPreferencesCommand(service preferenceService, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)

// Execute stores the provided overrides for the viewer.
func (c *SaveLayoutPreferencesCommand) Execute(ctx context.Context, msg SaveLayoutPreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	overrides := dashboard.LayoutOverrides{
		AreaOrder:        msg.AreaOrder,
		AreaRows:         msg.AreaRows,
		HiddenWidgets:    make(map[string]bool, len(msg.HiddenWidgets)),
		Locale:           msg.Locale,
		TimeRange:        msg.TimeRange,
		SidebarCollapsed: msg.SidebarCollapsed,
	}
	for _, id := range msg.HiddenWidgets {
		overrides.HiddenWidgets[id] = true
	}
	if err := c.service.SavePreferences(ctx, msg.Viewer, overrides); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.preferences.save", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"areas":      len(msg.AreaOrder),
		"hidden_cnt": len(msg.HiddenWidgets),
	})
	return nil
}
