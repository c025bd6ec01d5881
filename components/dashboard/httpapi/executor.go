package httpapi

import (
	"context"
	"errors"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
)

// Executor is the transport-neutral face of the dashboard mutations.
// Router adapters decode their own request shapes and call through it so
// every transport runs the same commands.
type Executor interface {
	Assign(ctx context.Context, req dashboard.AddWidgetRequest) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Update(ctx context.Context, input commands.UpdateWidgetInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error
	ChangeRange(ctx context.Context, input commands.ChangeRangeInput) error
	ChangeMood(ctx context.Context, input commands.ChangeMoodInput) error
	RefreshRecommendations(ctx context.Context) error
	TogglePreview(ctx context.Context, input commands.TogglePreviewInput) error
	StopPreview(ctx context.Context) error
	ToggleSidebar(ctx context.Context) error
	ReportSection(ctx context.Context, input commands.ReportSectionInput) error
}

// CommandExecutor adapts a Handlers bundle to the Executor interface.
type CommandExecutor struct {
	Handlers Handlers
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Assign(ctx context.Context, req dashboard.AddWidgetRequest) error {
	if e.Handlers.Assign == nil {
		return errors.New("httpapi: assign command not configured")
	}
	return e.Handlers.Assign.Execute(ctx, req)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	if e.Handlers.Remove == nil {
		return errors.New("httpapi: remove command not configured")
	}
	return e.Handlers.Remove.Execute(ctx, input)
}

func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	if e.Handlers.Reorder == nil {
		return errors.New("httpapi: reorder command not configured")
	}
	return e.Handlers.Reorder.Execute(ctx, input)
}

func (e *CommandExecutor) Update(ctx context.Context, input commands.UpdateWidgetInput) error {
	if e.Handlers.Update == nil {
		return errors.New("httpapi: update command not configured")
	}
	return e.Handlers.Update.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	if e.Handlers.Refresh == nil {
		return errors.New("httpapi: refresh command not configured")
	}
	return e.Handlers.Refresh.Execute(ctx, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error {
	if e.Handlers.Preferences == nil {
		return errors.New("httpapi: preferences command not configured")
	}
	return e.Handlers.Preferences.Execute(ctx, input)
}

func (e *CommandExecutor) ChangeRange(ctx context.Context, input commands.ChangeRangeInput) error {
	if e.Handlers.ChangeRange == nil {
		return errors.New("httpapi: change range command not configured")
	}
	return e.Handlers.ChangeRange.Execute(ctx, input)
}

func (e *CommandExecutor) ChangeMood(ctx context.Context, input commands.ChangeMoodInput) error {
	if e.Handlers.ChangeMood == nil {
		return errors.New("httpapi: change mood command not configured")
	}
	return e.Handlers.ChangeMood.Execute(ctx, input)
}

func (e *CommandExecutor) RefreshRecommendations(ctx context.Context) error {
	if e.Handlers.RefreshRecs == nil {
		return errors.New("httpapi: refresh recommendations command not configured")
	}
	return e.Handlers.RefreshRecs.Execute(ctx, commands.RefreshRecommendationsInput{})
}

func (e *CommandExecutor) TogglePreview(ctx context.Context, input commands.TogglePreviewInput) error {
	if e.Handlers.TogglePreview == nil {
		return errors.New("httpapi: toggle preview command not configured")
	}
	return e.Handlers.TogglePreview.Execute(ctx, input)
}

func (e *CommandExecutor) StopPreview(ctx context.Context) error {
	if e.Handlers.StopPreview == nil {
		return errors.New("httpapi: stop preview command not configured")
	}
	return e.Handlers.StopPreview.Execute(ctx, commands.StopPreviewInput{})
}

func (e *CommandExecutor) ToggleSidebar(ctx context.Context) error {
	if e.Handlers.ToggleSidebar == nil {
		return errors.New("httpapi: toggle sidebar command not configured")
	}
	return e.Handlers.ToggleSidebar.Execute(ctx, commands.ToggleSidebarInput{})
}

func (e *CommandExecutor) ReportSection(ctx context.Context, input commands.ReportSectionInput) error {
	if e.Handlers.ReportSection == nil {
		return errors.New("httpapi: report section command not configured")
	}
	return e.Handlers.ReportSection.Execute(ctx, input)
}
