package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

type recordedEvent struct {
	name    string
	payload map[string]any
}

type recordingTelemetry struct {
	events []recordedEvent
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func (r *recordingTelemetry) last(t *testing.T) recordedEvent {
	t.Helper()
	if len(r.events) == 0 {
		t.Fatal("expected a telemetry event")
	}
	return r.events[len(r.events)-1]
}

type stubWidgetService struct {
	addReq      dashboard.AddWidgetRequest
	removedID   string
	reorderArea string
	reorderIDs  []string
	updatedID   string
	updateReq   dashboard.UpdateWidgetRequest
	notified    dashboard.WidgetEvent
	prefsViewer dashboard.ViewerContext
	prefs       dashboard.LayoutOverrides
	err         error
}

func (s *stubWidgetService) AddWidget(_ context.Context, req dashboard.AddWidgetRequest) error {
	s.addReq = req
	return s.err
}

func (s *stubWidgetService) RemoveWidget(_ context.Context, widgetID string) error {
	s.removedID = widgetID
	return s.err
}

func (s *stubWidgetService) ReorderWidgets(_ context.Context, areaCode string, widgetIDs []string) error {
	s.reorderArea = areaCode
	s.reorderIDs = widgetIDs
	return s.err
}

func (s *stubWidgetService) UpdateWidget(_ context.Context, widgetID string, req dashboard.UpdateWidgetRequest) error {
	s.updatedID = widgetID
	s.updateReq = req
	return s.err
}

func (s *stubWidgetService) NotifyWidgetUpdated(_ context.Context, event dashboard.WidgetEvent) error {
	s.notified = event
	return s.err
}

func (s *stubWidgetService) SavePreferences(_ context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error {
	s.prefsViewer = viewer
	s.prefs = overrides
	return s.err
}

type stubSession struct {
	timeRange   string
	mood        string
	query       string
	refreshed   bool
	refreshErr  error
	playedTrack string
	playChange  dashboard.PreviewChange
	stopChange  dashboard.PreviewChange
	collapsed   bool
	section     string
	entered     bool
	active      string
	err         error
}

func (s *stubSession) ReloadRange(_ context.Context, timeRange string) (dashboard.Snapshot, error) {
	s.timeRange = timeRange
	return dashboard.Snapshot{TimeRange: timeRange}, s.err
}

func (s *stubSession) SetMood(_ context.Context, mood, query string) (dashboard.Snapshot, error) {
	s.mood = mood
	s.query = query
	return dashboard.Snapshot{}, s.err
}

func (s *stubSession) RefreshRecommendations(_ context.Context) (dashboard.Snapshot, error) {
	s.refreshed = true
	return dashboard.Snapshot{}, s.refreshErr
}

func (s *stubSession) PlayPreview(trackID string) dashboard.PreviewChange {
	s.playedTrack = trackID
	return s.playChange
}

func (s *stubSession) StopPreview() dashboard.PreviewChange {
	return s.stopChange
}

func (s *stubSession) ToggleSidebar(context.Context) bool {
	s.collapsed = !s.collapsed
	return s.collapsed
}

func (s *stubSession) ReportSection(section string, entered bool) string {
	s.section = section
	s.entered = entered
	return s.active
}

func TestAssignWidgetCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewAssignWidgetCommand(svc, tel)

	req := dashboard.AddWidgetRequest{
		DefinitionID: dashboard.WidgetStats,
		AreaCode:     dashboard.AreaMain,
		ActorID:      "ana",
		UserID:       "user-1",
	}
	if err := cmd.Execute(context.Background(), req); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.addReq.DefinitionID != dashboard.WidgetStats {
		t.Fatalf("expected request to reach service, got %+v", svc.addReq)
	}

	event := tel.last(t)
	if event.name != "dashboard.widget.assign" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["area_code"] != dashboard.AreaMain {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestAssignWidgetCommandServiceError(t *testing.T) {
	svc := &stubWidgetService{err: errors.New("store down")}
	tel := &recordingTelemetry{}
	cmd := NewAssignWidgetCommand(svc, tel)

	err := cmd.Execute(context.Background(), dashboard.AddWidgetRequest{DefinitionID: dashboard.WidgetStats})
	if err == nil {
		t.Fatal("expected service error to surface")
	}
	if len(tel.events) != 0 {
		t.Errorf("expected no telemetry on failure, got %v", tel.events)
	}
}

func TestRemoveWidgetCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewRemoveWidgetCommand(svc, tel)

	if err := cmd.Execute(context.Background(), RemoveWidgetInput{WidgetID: "widget-9", ActorID: "ana"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.removedID != "widget-9" {
		t.Errorf("expected widget-9 removed, got %q", svc.removedID)
	}

	event := tel.last(t)
	if event.name != "dashboard.widget.remove" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["widget_id"] != "widget-9" {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestReorderWidgetsCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewReorderWidgetsCommand(svc, tel)

	input := ReorderWidgetsInput{
		AreaCode:  dashboard.AreaMain,
		WidgetIDs: []string{"widget-2", "widget-1", "widget-3"},
	}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.reorderArea != dashboard.AreaMain {
		t.Errorf("unexpected area %q", svc.reorderArea)
	}
	if len(svc.reorderIDs) != 3 || svc.reorderIDs[0] != "widget-2" {
		t.Errorf("unexpected ordering %v", svc.reorderIDs)
	}

	event := tel.last(t)
	if event.name != "dashboard.widget.reorder" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["count"] != 3 {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestUpdateWidgetCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewUpdateWidgetCommand(svc, tel)

	input := UpdateWidgetInput{
		WidgetID:      "widget-4",
		Configuration: map[string]any{"limit": 10},
		UserID:        "user-1",
	}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.updatedID != "widget-4" {
		t.Errorf("unexpected widget id %q", svc.updatedID)
	}
	if svc.updateReq.Configuration["limit"] != 10 {
		t.Errorf("unexpected configuration %v", svc.updateReq.Configuration)
	}
	if tel.last(t).name != "dashboard.widget.update" {
		t.Errorf("unexpected event %q", tel.last(t).name)
	}
}

func TestUpdateWidgetCommandRequiresWidgetID(t *testing.T) {
	svc := &stubWidgetService{}
	cmd := NewUpdateWidgetCommand(svc, nil)

	if err := cmd.Execute(context.Background(), UpdateWidgetInput{}); err == nil {
		t.Fatal("expected error for missing widget id")
	}
	if svc.updatedID != "" {
		t.Errorf("service should not have been called, got %q", svc.updatedID)
	}
}

func TestSeedDashboardCommand(t *testing.T) {
	store := dashboard.NewInMemoryWidgetStore()
	registry := dashboard.NewRegistry()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store, Providers: registry})
	tel := &recordingTelemetry{}
	cmd := NewSeedDashboardCommand(store, registry, service, tel)

	if err := cmd.Execute(context.Background(), SeedDashboardInput{SeedLayout: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	resolved, err := store.ResolveArea(context.Background(), dashboard.ResolveAreaInput{AreaCode: dashboard.AreaMain})
	if err != nil {
		t.Fatalf("resolve area: %v", err)
	}
	if len(resolved.Widgets) == 0 {
		t.Fatal("expected seeded widgets in the main area")
	}
	if _, ok := registry.Definition(dashboard.WidgetStats); !ok {
		t.Errorf("expected %s registered", dashboard.WidgetStats)
	}
	if tel.last(t).name != "dashboard.seed" {
		t.Errorf("unexpected event %q", tel.last(t).name)
	}
}

func TestSeedDashboardCommandRequiresStore(t *testing.T) {
	cmd := NewSeedDashboardCommand(nil, nil, nil, nil)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{}); err == nil {
		t.Fatal("expected error without widget store")
	}
}

func TestSaveLayoutPreferencesCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewSaveLayoutPreferencesCommand(svc, tel)

	input := SaveLayoutPreferencesInput{
		Viewer:           dashboard.ViewerContext{UserID: "user-1"},
		AreaOrder:        map[string][]string{dashboard.AreaMain: {"widget-2", "widget-1"}},
		HiddenWidgets:    []string{"widget-3"},
		Locale:           "es",
		TimeRange:        "long_term",
		SidebarCollapsed: true,
	}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.prefsViewer.UserID != "user-1" {
		t.Errorf("unexpected viewer %+v", svc.prefsViewer)
	}
	if !svc.prefs.HiddenWidgets["widget-3"] {
		t.Errorf("expected widget-3 hidden, got %v", svc.prefs.HiddenWidgets)
	}
	if svc.prefs.TimeRange != "long_term" || !svc.prefs.SidebarCollapsed {
		t.Errorf("unexpected overrides %+v", svc.prefs)
	}
	if tel.last(t).name != "dashboard.preferences.save" {
		t.Errorf("unexpected event %q", tel.last(t).name)
	}
}

func TestSaveLayoutPreferencesCommandRequiresViewer(t *testing.T) {
	cmd := NewSaveLayoutPreferencesCommand(&stubWidgetService{}, nil)
	if err := cmd.Execute(context.Background(), SaveLayoutPreferencesInput{}); err == nil {
		t.Fatal("expected error for missing viewer user id")
	}
}

func TestRefreshWidgetCommand(t *testing.T) {
	svc := &stubWidgetService{}
	tel := &recordingTelemetry{}
	cmd := NewRefreshWidgetCommand(svc, tel)

	input := RefreshWidgetInput{Event: dashboard.WidgetEvent{
		AreaCode: dashboard.AreaSidebar,
		Instance: dashboard.WidgetInstance{ID: "widget-7", DefinitionID: dashboard.WidgetRecent},
		Reason:   "updated",
	}}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.notified.Instance.ID != "widget-7" {
		t.Errorf("unexpected event %+v", svc.notified)
	}

	event := tel.last(t)
	if event.name != "dashboard.widget.refresh" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["widget_id"] != "widget-7" {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestChangeRangeCommand(t *testing.T) {
	session := &stubSession{}
	tel := &recordingTelemetry{}
	cmd := NewChangeRangeCommand(session, tel)

	if err := cmd.Execute(context.Background(), ChangeRangeInput{TimeRange: "short_term"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if session.timeRange != "short_term" {
		t.Errorf("unexpected range %q", session.timeRange)
	}

	event := tel.last(t)
	if event.name != "dashboard.range.change" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["time_range"] != "short_term" {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestChangeRangeCommandSessionError(t *testing.T) {
	session := &stubSession{err: errors.New("rango de tiempo desconocido")}
	tel := &recordingTelemetry{}
	cmd := NewChangeRangeCommand(session, tel)

	if err := cmd.Execute(context.Background(), ChangeRangeInput{TimeRange: "bogus"}); err == nil {
		t.Fatal("expected session error to surface")
	}
	if len(tel.events) != 0 {
		t.Errorf("expected no telemetry on failure, got %v", tel.events)
	}
}

func TestChangeMoodCommand(t *testing.T) {
	session := &stubSession{}
	tel := &recordingTelemetry{}
	cmd := NewChangeMoodCommand(session, tel)

	if err := cmd.Execute(context.Background(), ChangeMoodInput{Mood: "artista", Query: "nathy peluso"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if session.mood != "artista" || session.query != "nathy peluso" {
		t.Errorf("unexpected session state mood=%q query=%q", session.mood, session.query)
	}

	event := tel.last(t)
	if event.name != "dashboard.mood.change" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["has_query"] != true {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestRefreshRecommendationsCommand(t *testing.T) {
	session := &stubSession{}
	tel := &recordingTelemetry{}
	cmd := NewRefreshRecommendationsCommand(session, tel)

	if err := cmd.Execute(context.Background(), RefreshRecommendationsInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !session.refreshed {
		t.Error("expected session refresh")
	}
	if tel.last(t).name != "dashboard.recommendations.refresh" {
		t.Errorf("unexpected event %q", tel.last(t).name)
	}
}

func TestRefreshRecommendationsCommandCooldownPassesThrough(t *testing.T) {
	session := &stubSession{refreshErr: dashboard.ErrRefreshCooldown}
	tel := &recordingTelemetry{}
	cmd := NewRefreshRecommendationsCommand(session, tel)

	err := cmd.Execute(context.Background(), RefreshRecommendationsInput{})
	if !errors.Is(err, dashboard.ErrRefreshCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	if len(tel.events) != 0 {
		t.Errorf("expected no telemetry on cooldown, got %v", tel.events)
	}
}

func TestTogglePreviewCommand(t *testing.T) {
	session := &stubSession{playChange: dashboard.PreviewChange{Started: "track-1", Volume: 0.5}}
	tel := &recordingTelemetry{}
	cmd := NewTogglePreviewCommand(session, tel)

	if err := cmd.Execute(context.Background(), TogglePreviewInput{TrackID: "track-1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if session.playedTrack != "track-1" {
		t.Errorf("unexpected track %q", session.playedTrack)
	}

	event := tel.last(t)
	if event.name != "dashboard.preview.toggle" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["playing"] != true {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestTogglePreviewCommandReportsStop(t *testing.T) {
	session := &stubSession{playChange: dashboard.PreviewChange{Stopped: "track-1"}}
	tel := &recordingTelemetry{}
	cmd := NewTogglePreviewCommand(session, tel)

	if err := cmd.Execute(context.Background(), TogglePreviewInput{TrackID: "track-1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if tel.last(t).payload["playing"] != false {
		t.Errorf("expected playing=false, got %v", tel.last(t).payload)
	}
}

func TestStopPreviewCommand(t *testing.T) {
	session := &stubSession{stopChange: dashboard.PreviewChange{Stopped: "track-2"}}
	tel := &recordingTelemetry{}
	cmd := NewStopPreviewCommand(session, tel)

	if err := cmd.Execute(context.Background(), StopPreviewInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	event := tel.last(t)
	if event.name != "dashboard.preview.stop" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["stopped"] != "track-2" {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestToggleSidebarCommand(t *testing.T) {
	session := &stubSession{}
	tel := &recordingTelemetry{}
	cmd := NewToggleSidebarCommand(session, tel)

	if err := cmd.Execute(context.Background(), ToggleSidebarInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := cmd.Execute(context.Background(), ToggleSidebarInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(tel.events) != 2 {
		t.Fatalf("expected two events, got %d", len(tel.events))
	}
	if tel.events[0].payload["collapsed"] != true || tel.events[1].payload["collapsed"] != false {
		t.Errorf("unexpected toggle sequence %v", tel.events)
	}
}

func TestReportSectionCommand(t *testing.T) {
	session := &stubSession{active: "generos"}
	tel := &recordingTelemetry{}
	cmd := NewReportSectionCommand(session, tel)

	if err := cmd.Execute(context.Background(), ReportSectionInput{Section: "generos", Entered: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if session.section != "generos" || !session.entered {
		t.Errorf("unexpected session state %+v", session)
	}

	event := tel.last(t)
	if event.name != "dashboard.section.report" {
		t.Errorf("unexpected event name %q", event.name)
	}
	if event.payload["active"] != "generos" {
		t.Errorf("unexpected payload %v", event.payload)
	}
}

func TestCommandsRequireCollaborators(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		run  func() error
	}{
		{"assign", func() error { return NewAssignWidgetCommand(nil, nil).Execute(ctx, dashboard.AddWidgetRequest{}) }},
		{"remove", func() error { return NewRemoveWidgetCommand(nil, nil).Execute(ctx, RemoveWidgetInput{}) }},
		{"reorder", func() error { return NewReorderWidgetsCommand(nil, nil).Execute(ctx, ReorderWidgetsInput{}) }},
		{"update", func() error {
			return NewUpdateWidgetCommand(nil, nil).Execute(ctx, UpdateWidgetInput{WidgetID: "widget-1"})
		}},
		{"preferences", func() error {
			return NewSaveLayoutPreferencesCommand(nil, nil).Execute(ctx, SaveLayoutPreferencesInput{})
		}},
		{"refresh", func() error { return NewRefreshWidgetCommand(nil, nil).Execute(ctx, RefreshWidgetInput{}) }},
		{"range", func() error { return NewChangeRangeCommand(nil, nil).Execute(ctx, ChangeRangeInput{}) }},
		{"mood", func() error { return NewChangeMoodCommand(nil, nil).Execute(ctx, ChangeMoodInput{}) }},
		{"recommendations", func() error {
			return NewRefreshRecommendationsCommand(nil, nil).Execute(ctx, RefreshRecommendationsInput{})
		}},
		{"preview", func() error { return NewTogglePreviewCommand(nil, nil).Execute(ctx, TogglePreviewInput{}) }},
		{"stop", func() error { return NewStopPreviewCommand(nil, nil).Execute(ctx, StopPreviewInput{}) }},
		{"sidebar", func() error { return NewToggleSidebarCommand(nil, nil).Execute(ctx, ToggleSidebarInput{}) }},
		{"section", func() error { return NewReportSectionCommand(nil, nil).Execute(ctx, ReportSectionInput{}) }},
	}
	for _, tc := range cases {
		if err := tc.run(); err == nil {
			t.Errorf("%s: expected error without collaborators", tc.name)
		}
	}
}
