package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	gocommand "github.com/goliatone/go-command"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
)

// Handlers exposes the dashboard mutations over plain HTTP, backed by the
// shared commands so every transport runs identical semantics.
type Handlers struct {
	Assign         gocommand.Commander[dashboard.AddWidgetRequest]
	Remove         gocommand.Commander[commands.RemoveWidgetInput]
	Reorder        gocommand.Commander[commands.ReorderWidgetsInput]
	Update         gocommand.Commander[commands.UpdateWidgetInput]
	Refresh        gocommand.Commander[commands.RefreshWidgetInput]
	Preferences    gocommand.Commander[commands.SaveLayoutPreferencesInput]
	ChangeRange    gocommand.Commander[commands.ChangeRangeInput]
	ChangeMood     gocommand.Commander[commands.ChangeMoodInput]
	RefreshRecs    gocommand.Commander[commands.RefreshRecommendationsInput]
	TogglePreview  gocommand.Commander[commands.TogglePreviewInput]
	StopPreview    gocommand.Commander[commands.StopPreviewInput]
	ToggleSidebar  gocommand.Commander[commands.ToggleSidebarInput]
	ReportSection  gocommand.Commander[commands.ReportSectionInput]
}

// writeCommandError maps domain errors onto HTTP statuses. The cooldown
// error carries a Retry-After so clients know when to try again.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrRefreshCooldown):
		w.Header().Set("Retry-After", strconv.Itoa(int(dashboard.DefaultRefreshCooldown/time.Second)))
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, dashboard.ErrInstanceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) HandleAssignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Assign.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RemoveWidgetInput{WidgetID: widgetID}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Reorder.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleUpdateWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var payload commands.UpdateWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.WidgetID = widgetID
	if err := h.Update.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRefreshWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveLayoutPreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Preferences.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleChangeRange(w http.ResponseWriter, r *http.Request) {
	var payload commands.ChangeRangeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ChangeRange.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleChangeMood(w http.ResponseWriter, r *http.Request) {
	var payload commands.ChangeMoodInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ChangeMood.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	if err := h.RefreshRecs.Execute(r.Context(), commands.RefreshRecommendationsInput{}); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleTogglePreview(w http.ResponseWriter, r *http.Request) {
	var payload commands.TogglePreviewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.TogglePreview.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleStopPreview(w http.ResponseWriter, r *http.Request) {
	if err := h.StopPreview.Execute(r.Context(), commands.StopPreviewInput{}); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleToggleSidebar(w http.ResponseWriter, r *http.Request) {
	if err := h.ToggleSidebar.Execute(r.Context(), commands.ToggleSidebarInput{}); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleReportSection accepts scroll-spy beacons. They are side effects
// with no body to return, so the handler answers 204.
func (h *Handlers) HandleReportSection(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReportSectionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ReportSection.Execute(r.Context(), payload); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
