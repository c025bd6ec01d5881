package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

func TestLoadBuildsFullSnapshot(t *testing.T) {
	lib := &fakeLibrary{}
	sess := newTestSession(t, lib, SessionOptions{Viewer: ViewerContext{UserID: "u1"}})

	snap, err := sess.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.State != StateReady {
		t.Fatalf("expected ready state, got %q", snap.State)
	}
	if snap.Profile.Name != "Lucía" || snap.Profile.ProductLabel != "Premium" {
		t.Fatalf("unexpected profile view: %+v", snap.Profile)
	}
	if len(snap.Artists.Artists) != 2 || snap.Artists.Artists[0].Rank != 1 {
		t.Fatalf("unexpected artists view: %+v", snap.Artists)
	}
	if snap.ChartHTML == "" {
		t.Fatalf("expected chart markup for non-empty genre distribution")
	}
	if snap.Error != nil {
		t.Fatalf("unexpected error view: %+v", snap.Error)
	}
	waitForCondition(t, func() bool {
		return sess.Snapshot().Recommendations.Status == RecommendationsReady
	})
}

func TestLoadSummaryFailureShowsErrorScreen(t *testing.T) {
	lib := &fakeLibrary{
		summaryFn: func(context.Context) (melodix.Summary, error) {
			return melodix.Summary{}, errors.New("backend down")
		},
	}
	sess := newTestSession(t, lib, SessionOptions{})

	snap, err := sess.Load(context.Background())
	if err == nil {
		t.Fatalf("expected load error")
	}
	if snap.Error == nil {
		t.Fatalf("expected error view in snapshot")
	}
	if snap.Error.Title != "Error cargando el dashboard" {
		t.Fatalf("unexpected error title %q", snap.Error.Title)
	}
}

func TestLoadAdoptsSavedTimeRange(t *testing.T) {
	lib := &fakeLibrary{}
	service := NewService(Options{WidgetStore: NewInMemoryWidgetStore()})
	viewer := ViewerContext{UserID: "u1"}
	if err := service.SavePreferences(context.Background(), viewer, LayoutOverrides{
		TimeRange: melodix.RangeShortTerm,
	}); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	sess := newTestSession(t, lib, SessionOptions{Service: service, Viewer: viewer})

	snap, err := sess.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.TimeRange != melodix.RangeShortTerm {
		t.Fatalf("expected saved range adopted, got %q", snap.TimeRange)
	}
}

func TestReloadRangeSwapsListsAndChart(t *testing.T) {
	lib := &fakeLibrary{}
	telemetry := &recordingTelemetry{}
	viewer := ViewerContext{UserID: "u1"}
	service := NewService(Options{WidgetStore: NewInMemoryWidgetStore()})
	sess := newTestSession(t, lib, SessionOptions{Service: service, Viewer: viewer, Telemetry: telemetry})

	if _, err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	before := sess.State().Chart().Live()

	snap, err := sess.ReloadRange(context.Background(), melodix.RangeShortTerm)
	if err != nil {
		t.Fatalf("ReloadRange returned error: %v", err)
	}
	if snap.TimeRange != melodix.RangeShortTerm || snap.State != StateReady {
		t.Fatalf("unexpected snapshot after reload: state=%q range=%q", snap.State, snap.TimeRange)
	}
	if len(snap.Artists.Artists) != 1 || snap.Artists.Artists[0].Name != "Rosalía" {
		t.Fatalf("expected short term artists, got %+v", snap.Artists)
	}
	if len(snap.Genres.Slices) == 0 || snap.Genres.Slices[0].Name != "flamenco pop" {
		t.Fatalf("expected genres derived from short term artists, got %+v", snap.Genres)
	}
	if !before.Disposed() {
		t.Fatalf("expected previous chart disposed after reload")
	}
	if snap.ChartHTML == "" {
		t.Fatalf("expected fresh chart markup after reload")
	}
	prefs, err := service.Preferences(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Preferences returned error: %v", err)
	}
	if prefs.TimeRange != melodix.RangeShortTerm {
		t.Fatalf("expected range persisted, got %q", prefs.TimeRange)
	}
}

func TestReloadRangeKeepsPreviousDataOnFailure(t *testing.T) {
	lib := &fakeLibrary{
		artistsFn: func(_ context.Context, timeRange string, _ int) ([]melodix.Artist, error) {
			if timeRange == melodix.RangeLongTerm {
				return nil, errors.New("timeout")
			}
			return sampleSummary().TopArtists, nil
		},
	}
	telemetry := &recordingTelemetry{}
	sess := newTestSession(t, lib, SessionOptions{Telemetry: telemetry})

	if _, err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	loaded := sess.Snapshot()

	snap, err := sess.ReloadRange(context.Background(), melodix.RangeLongTerm)
	if err == nil {
		t.Fatalf("expected reload error")
	}
	if snap.TimeRange != loaded.TimeRange {
		t.Fatalf("expected range unchanged, got %q", snap.TimeRange)
	}
	if len(snap.Artists.Artists) != len(loaded.Artists.Artists) {
		t.Fatalf("expected artists kept, got %+v", snap.Artists)
	}
	if snap.State != StateReady {
		t.Fatalf("expected state restored to ready, got %q", snap.State)
	}
	if !telemetry.has("dashboard.reload.failed") {
		t.Fatalf("expected reload failure telemetry, got %v", telemetry.snapshot())
	}
}

func TestReloadRangeLastRequestedWins(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	lib := &fakeLibrary{
		artistsFn: func(_ context.Context, timeRange string, _ int) ([]melodix.Artist, error) {
			if timeRange == melodix.RangeShortTerm {
				enteredOnce.Do(func() { close(entered) })
				<-gate
			}
			return shortTermArtists(), nil
		},
	}
	telemetry := &recordingTelemetry{}
	sess := newTestSession(t, lib, SessionOptions{Telemetry: telemetry})
	if _, err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sess.ReloadRange(context.Background(), melodix.RangeShortTerm)
		done <- err
	}()
	<-entered

	if _, err := sess.ReloadRange(context.Background(), melodix.RangeLongTerm); err != nil {
		t.Fatalf("second reload returned error: %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("superseded reload returned error: %v", err)
	}

	snap := sess.Snapshot()
	if snap.TimeRange != melodix.RangeLongTerm {
		t.Fatalf("expected newest request to win, got %q", snap.TimeRange)
	}
	if !telemetry.has("dashboard.reload.stale") {
		t.Fatalf("expected stale reload telemetry, got %v", telemetry.snapshot())
	}
}

func TestReloadRangeRejectsUnknownRange(t *testing.T) {
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{})
	if _, err := sess.ReloadRange(context.Background(), "ayer"); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}

func TestReloadSameRangeIsNoop(t *testing.T) {
	calls := 0
	lib := &fakeLibrary{
		artistsFn: func(_ context.Context, timeRange string, _ int) ([]melodix.Artist, error) {
			calls++
			return sampleSummary().TopArtists, nil
		},
	}
	sess := newTestSession(t, lib, SessionOptions{})
	if _, err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, err := sess.ReloadRange(context.Background(), melodix.RangeMediumTerm); err != nil {
		t.Fatalf("ReloadRange returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no fetches for the active range, got %d", calls)
	}
}

func TestSetMoodPassesQueryThrough(t *testing.T) {
	var gotMood, gotQuery string
	lib := &fakeLibrary{
		recsFn: func(_ context.Context, mood, query string) (melodix.RecommendationSet, error) {
			gotMood, gotQuery = mood, query
			return sampleRecommendations(), nil
		},
	}
	sess := newTestSession(t, lib, SessionOptions{})

	snap, err := sess.SetMood(context.Background(), "artista", "Bad Bunny")
	if err != nil {
		t.Fatalf("SetMood returned error: %v", err)
	}
	if gotMood != "artista" || gotQuery != "Bad Bunny" {
		t.Fatalf("expected mood and query forwarded, got %q %q", gotMood, gotQuery)
	}
	if snap.Recommendations.Status != RecommendationsReady {
		t.Fatalf("expected ready region, got %q", snap.Recommendations.Status)
	}
}

func TestSetMoodRejectsUnknownMood(t *testing.T) {
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{})
	if _, err := sess.SetMood(context.Background(), "nostalgia", ""); err == nil {
		t.Fatalf("expected error for unknown mood")
	}
}

func TestRefreshRecommendationsCooldown(t *testing.T) {
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{RefreshCooldown: time.Hour})

	if _, err := sess.RefreshRecommendations(context.Background()); err != nil {
		t.Fatalf("first refresh returned error: %v", err)
	}
	_, err := sess.RefreshRecommendations(context.Background())
	if !errors.Is(err, ErrRefreshCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
}

func TestRefreshRecommendationsShowsInlineError(t *testing.T) {
	lib := &fakeLibrary{
		recsFn: func(context.Context, string, string) (melodix.RecommendationSet, error) {
			return melodix.RecommendationSet{}, errors.New("recommender offline")
		},
	}
	sess := newTestSession(t, lib, SessionOptions{RefreshCooldown: -1})

	snap, err := sess.RefreshRecommendations(context.Background())
	if err != nil {
		t.Fatalf("refresh should not propagate fetch errors, got %v", err)
	}
	if snap.Recommendations.Status != RecommendationsError {
		t.Fatalf("expected error region, got %q", snap.Recommendations.Status)
	}
	if snap.Recommendations.Message != RecommendationsErrorMessage {
		t.Fatalf("unexpected inline message %q", snap.Recommendations.Message)
	}
	if snap.Error != nil {
		t.Fatalf("recommendations failure must not produce the error screen")
	}
}

func TestToggleSidebarPersists(t *testing.T) {
	service := NewService(Options{WidgetStore: NewInMemoryWidgetStore()})
	viewer := ViewerContext{UserID: "u1"}
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{Service: service, Viewer: viewer})

	if collapsed := sess.ToggleSidebar(context.Background()); !collapsed {
		t.Fatalf("expected sidebar collapsed after first toggle")
	}
	prefs, err := service.Preferences(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Preferences returned error: %v", err)
	}
	if !prefs.SidebarCollapsed {
		t.Fatalf("expected collapsed state persisted")
	}
	if collapsed := sess.ToggleSidebar(context.Background()); collapsed {
		t.Fatalf("expected sidebar expanded after second toggle")
	}
}

func TestPreviewLifecycleThroughSession(t *testing.T) {
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{})

	change := sess.PlayPreview("t1")
	if change.Started != "t1" || change.Volume != DefaultPreviewVolume {
		t.Fatalf("unexpected change %+v", change)
	}
	change = sess.PlayPreview("t2")
	if change.Stopped != "t1" || change.Started != "t2" {
		t.Fatalf("expected t1 stopped before t2, got %+v", change)
	}
	sess.PreviewEnded("t1")
	if got := sess.Snapshot().NowPlaying; got != "t2" {
		t.Fatalf("stale end event must not clear the player, got %q", got)
	}
	sess.PreviewEnded("t2")
	if got := sess.Snapshot().NowPlaying; got != "" {
		t.Fatalf("expected player cleared, got %q", got)
	}
}

func TestTrackSectionsDrivesActiveSection(t *testing.T) {
	sess := newTestSession(t, &fakeLibrary{}, SessionOptions{})
	events := make(ChannelSectionObserver)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.TrackSections(ctx, events)

	events <- SectionEvent{Section: "stats", Entered: true}
	events <- SectionEvent{Section: "artists", Entered: true}
	waitForCondition(t, func() bool { return sess.Snapshot().ActiveSection == "artists" })

	events <- SectionEvent{Section: "artists", Entered: false}
	waitForCondition(t, func() bool { return sess.Snapshot().ActiveSection == "stats" })
}

func newTestSession(t *testing.T, lib melodix.Library, opts SessionOptions) *Session {
	t.Helper()
	opts.Library = lib
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Charts == nil {
		opts.Charts = NewGenreChartBuilder(WithChartCache(NewChartCache(time.Minute)))
	}
	return NewSession(opts)
}

func waitForCondition(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

type fakeLibrary struct {
	summaryFn func(ctx context.Context) (melodix.Summary, error)
	artistsFn func(ctx context.Context, timeRange string, limit int) ([]melodix.Artist, error)
	tracksFn  func(ctx context.Context, timeRange string, limit int) ([]melodix.Track, error)
	recsFn    func(ctx context.Context, mood, query string) (melodix.RecommendationSet, error)
	profileFn func(ctx context.Context) (melodix.Profile, error)
	recentFn  func(ctx context.Context, limit int) ([]melodix.RecentTrack, error)
	genresFn  func(ctx context.Context) (melodix.GenreDistribution, error)
}

func (f *fakeLibrary) FetchSummary(ctx context.Context) (melodix.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx)
	}
	return sampleSummary(), nil
}

func (f *fakeLibrary) FetchTopArtists(ctx context.Context, timeRange string, limit int) ([]melodix.Artist, error) {
	if f.artistsFn != nil {
		return f.artistsFn(ctx, timeRange, limit)
	}
	if timeRange == melodix.RangeShortTerm {
		return shortTermArtists(), nil
	}
	return sampleSummary().TopArtists, nil
}

func (f *fakeLibrary) FetchTopTracks(ctx context.Context, timeRange string, limit int) ([]melodix.Track, error) {
	if f.tracksFn != nil {
		return f.tracksFn(ctx, timeRange, limit)
	}
	return sampleSummary().TopTracks, nil
}

func (f *fakeLibrary) FetchRecommendations(ctx context.Context, mood, query string) (melodix.RecommendationSet, error) {
	if f.recsFn != nil {
		return f.recsFn(ctx, mood, query)
	}
	return sampleRecommendations(), nil
}

func (f *fakeLibrary) FetchProfile(ctx context.Context) (melodix.Profile, error) {
	if f.profileFn != nil {
		return f.profileFn(ctx)
	}
	return sampleSummary().Profile, nil
}

func (f *fakeLibrary) FetchRecent(ctx context.Context, limit int) ([]melodix.RecentTrack, error) {
	if f.recentFn != nil {
		return f.recentFn(ctx, limit)
	}
	return sampleSummary().RecentTracks, nil
}

func (f *fakeLibrary) FetchGenres(ctx context.Context) (melodix.GenreDistribution, error) {
	if f.genresFn != nil {
		return f.genresFn(ctx)
	}
	return sampleSummary().GenreDistribution, nil
}

func sampleSummary() melodix.Summary {
	return melodix.Summary{
		Profile: melodix.Profile{
			ID:        "u1",
			Name:      "Lucía",
			Followers: 42,
			Product:   "premium",
		},
		TopArtists: []melodix.Artist{
			{ID: "a1", Name: "Nathy Peluso", Genres: []string{"latin pop", "neoperreo"}, Followers: 1200000},
			{ID: "a2", Name: "C. Tangana", Genres: []string{"latin pop", "urbano espanol"}, Followers: 2300000},
		},
		TopTracks: []melodix.Track{
			{ID: "t1", Name: "Ateo", Artist: "C. Tangana", DurationMS: 169000, Popularity: 80},
		},
		GenreDistribution: melodix.GenreDistribution{
			{Name: "latin pop", Count: 4},
			{Name: "neoperreo", Count: 2},
		},
		RecentTracks: []melodix.RecentTrack{
			{
				Track:    melodix.Track{ID: "t1", Name: "Ateo", Artist: "C. Tangana"},
				PlayedAt: time.Now().UTC().Add(-5 * time.Minute).Format(time.RFC3339),
			},
		},
	}
}

func shortTermArtists() []melodix.Artist {
	return []melodix.Artist{
		{ID: "a3", Name: "Rosalía", Genres: []string{"flamenco pop", "flamenco pop", "alt latin"}, Followers: 9000000},
	}
}

func sampleRecommendations() melodix.RecommendationSet {
	return melodix.RecommendationSet{
		Recommendations: []melodix.Recommendation{
			{Track: melodix.Track{ID: "r1", Name: "Saoko", Artist: "Rosalía"}, Reason: "Porque escuchas flamenco pop"},
		},
		ProfileDescription: "Tu mezcla favorece el pop latino",
		Moods:              append([]string{melodix.DefaultMood}, melodix.Moods...),
		ActiveMood:         melodix.DefaultMood,
	}
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.events {
		if name == event {
			return true
		}
	}
	return false
}

func (r *recordingTelemetry) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
