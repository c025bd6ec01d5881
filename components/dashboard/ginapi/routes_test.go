package ginapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
	"github.com/melodix/go-dashboard/components/dashboard/queries"
)

func newTestController(layout dashboard.Layout) *dashboard.Controller {
	return dashboard.NewController(dashboard.ControllerOptions{
		Service:  &stubLayoutResolver{layout: layout},
		Renderer: &stubRenderer{},
	})
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.RegisterRoutes(router)
	return router
}

func TestRenderDashboard(t *testing.T) {
	layout := dashboard.Layout{
		Areas: map[string][]dashboard.WidgetInstance{
			dashboard.AreaMain: {{ID: "widget-1", DefinitionID: dashboard.WidgetStats}},
		},
	}
	h := NewHandler(Options{Controller: newTestController(layout)})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected page body")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestGetLayout(t *testing.T) {
	layout := dashboard.Layout{
		Areas: map[string][]dashboard.WidgetInstance{
			dashboard.AreaMain: {{ID: "widget-1", DefinitionID: dashboard.WidgetGenres}},
		},
	}
	h := NewHandler(Options{Controller: newTestController(layout)})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/layout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if _, ok := payload["main_area"]; !ok {
		t.Fatalf("expected main_area in payload, got %v", payload)
	}
}

func TestAssignWidget(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	payload, _ := json.Marshal(dashboard.AddWidgetRequest{
		DefinitionID: dashboard.WidgetTopArtists,
		AreaCode:     dashboard.AreaMain,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/widgets", bytes.NewReader(payload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if exec.assigned.DefinitionID != dashboard.WidgetTopArtists {
		t.Fatalf("unexpected assignment %+v", exec.assigned)
	}
}

func TestAssignWidgetBadJSON(t *testing.T) {
	h := NewHandler(Options{API: &recordingExecutor{}})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/widgets", strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRemoveWidget(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/widgets/widget-4", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if exec.removed.WidgetID != "widget-4" {
		t.Fatalf("unexpected removal %+v", exec.removed)
	}
}

func TestUpdateWidgetPathWins(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	body := strings.NewReader(`{"widget_id":"ignored","configuration":{"limite":10}}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/widgets/widget-9", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if exec.updated.WidgetID != "widget-9" {
		t.Fatalf("expected path id to win, got %+v", exec.updated)
	}
}

func TestSavePreferencesInjectsViewer(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{
		API: exec,
		ViewerResolver: func(*gin.Context) dashboard.ViewerContext {
			return dashboard.ViewerContext{UserID: "maria", Locale: "es"}
		},
	})
	router := newRouter(h)

	body := strings.NewReader(`{"time_range":"long_term","sidebar_collapsed":true}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/preferences", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if exec.prefs.Viewer.UserID != "maria" {
		t.Fatalf("expected resolver viewer, got %+v", exec.prefs.Viewer)
	}
	if exec.prefs.TimeRange != "long_term" || !exec.prefs.SidebarCollapsed {
		t.Fatalf("unexpected preferences %+v", exec.prefs)
	}
}

func TestChangeRange(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	body := strings.NewReader(`{"time_range":"short_term"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/range", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if exec.rangeInput.TimeRange != "short_term" {
		t.Fatalf("unexpected range %+v", exec.rangeInput)
	}
}

func TestRefreshRecommendationsCooldown(t *testing.T) {
	exec := &recordingExecutor{
		refreshRecsErr: fmt.Errorf("recomendaciones: %w", dashboard.ErrRefreshCooldown),
	}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/recommendations/refresh", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "15" {
		t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRemoveWidgetNotFound(t *testing.T) {
	exec := &recordingExecutor{
		removeErr: fmt.Errorf("widget-5: %w", dashboard.ErrInstanceNotFound),
	}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/widgets/widget-5", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPreviewRoutes(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/preview", strings.NewReader(`{"track_id":"track-3"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}
	if exec.preview.TrackID != "track-3" {
		t.Fatalf("unexpected preview %+v", exec.preview)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/session/preview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", rec.Code)
	}
	if !exec.stopped {
		t.Fatal("expected stop to reach executor")
	}
}

func TestReportSection(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewHandler(Options{API: exec})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/sections", strings.NewReader(`{"section":"generos","entered":true}`)))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if exec.section.Section != "generos" || !exec.section.Entered {
		t.Fatalf("unexpected section %+v", exec.section)
	}
}

func TestGetSnapshot(t *testing.T) {
	querier := &stubSnapshotQuerier{
		snap: dashboard.Snapshot{State: dashboard.StateReady, TimeRange: "medium_term"},
	}
	h := NewHandler(Options{Snapshot: querier})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session?reload=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !querier.last.Reload {
		t.Fatal("expected reload flag to pass through")
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.TimeRange != "medium_term" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestGetRecommendations(t *testing.T) {
	querier := &stubRecommendationsQuerier{
		region: dashboard.RecommendationsRegion{
			Status: dashboard.RecommendationsReady,
			View: dashboard.RecommendationsView{
				Cards: []dashboard.RecommendationCard{{TrackID: "track-1", Name: "Vete"}},
			},
		},
	}
	h := NewHandler(Options{Recommendations: querier})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session/recommendations", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var region dashboard.RecommendationsRegion
	if err := json.Unmarshal(rec.Body.Bytes(), &region); err != nil {
		t.Fatalf("decode region: %v", err)
	}
	if len(region.View.Cards) != 1 || region.View.Cards[0].Name != "Vete" {
		t.Fatalf("unexpected region %+v", region)
	}
}

func TestHealthRoute(t *testing.T) {
	h := NewHandler(Options{})
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected health body %s", rec.Body.String())
	}
}

func TestDefaultViewerResolver(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("user_id", "usuario-7")
	c.Set("roles", []string{"premium"})

	viewer := defaultViewerResolver(c)
	if viewer.UserID != "usuario-7" {
		t.Fatalf("unexpected user %q", viewer.UserID)
	}
	if len(viewer.Roles) != 1 || viewer.Roles[0] != "premium" {
		t.Fatalf("unexpected roles %v", viewer.Roles)
	}
	if viewer.Locale != "es" {
		t.Fatalf("expected Spanish default, got %q", viewer.Locale)
	}
}

func TestInferLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if got := inferLocale(c); got != "en-us" {
		t.Fatalf("expected header locale, got %q", got)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?locale=PT", nil)
	if got := inferLocale(c); got != "pt" {
		t.Fatalf("expected query locale, got %q", got)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("locale", "ca")
	if got := inferLocale(c); got != "ca" {
		t.Fatalf("expected context locale, got %q", got)
	}
}

type stubLayoutResolver struct {
	layout dashboard.Layout
	err    error
}

func (s *stubLayoutResolver) ConfigureLayout(context.Context, dashboard.ViewerContext) (dashboard.Layout, error) {
	return s.layout, s.err
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	page := "<html><body>" + name + "</body></html>"
	for _, w := range out {
		if _, err := w.Write([]byte(page)); err != nil {
			return "", err
		}
	}
	return page, nil
}

type stubSnapshotQuerier struct {
	snap dashboard.Snapshot
	err  error
	last queries.SnapshotInput
}

func (s *stubSnapshotQuerier) Query(_ context.Context, input queries.SnapshotInput) (dashboard.Snapshot, error) {
	s.last = input
	return s.snap, s.err
}

type stubRecommendationsQuerier struct {
	region dashboard.RecommendationsRegion
	err    error
}

func (s *stubRecommendationsQuerier) Query(context.Context, queries.RecommendationsViewInput) (dashboard.RecommendationsRegion, error) {
	return s.region, s.err
}

type recordingExecutor struct {
	assigned       dashboard.AddWidgetRequest
	removed        commands.RemoveWidgetInput
	removeErr      error
	updated        commands.UpdateWidgetInput
	reordered      commands.ReorderWidgetsInput
	refreshed      commands.RefreshWidgetInput
	prefs          commands.SaveLayoutPreferencesInput
	rangeInput     commands.ChangeRangeInput
	mood           commands.ChangeMoodInput
	recsRefreshed  bool
	refreshRecsErr error
	preview        commands.TogglePreviewInput
	stopped        bool
	sidebarToggled bool
	section        commands.ReportSectionInput
}

func (r *recordingExecutor) Assign(_ context.Context, req dashboard.AddWidgetRequest) error {
	r.assigned = req
	return nil
}

func (r *recordingExecutor) Remove(_ context.Context, input commands.RemoveWidgetInput) error {
	r.removed = input
	return r.removeErr
}

func (r *recordingExecutor) Update(_ context.Context, input commands.UpdateWidgetInput) error {
	r.updated = input
	return nil
}

func (r *recordingExecutor) Reorder(_ context.Context, input commands.ReorderWidgetsInput) error {
	r.reordered = input
	return nil
}

func (r *recordingExecutor) Refresh(_ context.Context, input commands.RefreshWidgetInput) error {
	r.refreshed = input
	return nil
}

func (r *recordingExecutor) Preferences(_ context.Context, input commands.SaveLayoutPreferencesInput) error {
	r.prefs = input
	return nil
}

func (r *recordingExecutor) ChangeRange(_ context.Context, input commands.ChangeRangeInput) error {
	r.rangeInput = input
	return nil
}

func (r *recordingExecutor) ChangeMood(_ context.Context, input commands.ChangeMoodInput) error {
	r.mood = input
	return nil
}

func (r *recordingExecutor) RefreshRecommendations(context.Context) error {
	r.recsRefreshed = true
	return r.refreshRecsErr
}

func (r *recordingExecutor) TogglePreview(_ context.Context, input commands.TogglePreviewInput) error {
	r.preview = input
	return nil
}

func (r *recordingExecutor) StopPreview(context.Context) error {
	r.stopped = true
	return nil
}

func (r *recordingExecutor) ToggleSidebar(context.Context) error {
	r.sidebarToggled = true
	return nil
}

func (r *recordingExecutor) ReportSection(_ context.Context, input commands.ReportSectionInput) error {
	r.section = input
	return nil
}
