package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// DefaultRefreshCooldown is the minimum gap between manual
// recommendation refreshes.
const DefaultRefreshCooldown = 15 * time.Second

// RecommendationsErrorMessage is the inline text shown when the
// recommendations region fails while the rest of the page stays up.
const RecommendationsErrorMessage = "No se pudieron cargar las recomendaciones. Inténtalo de nuevo."

// ErrRefreshCooldown rejects a manual refresh that arrives before the
// cooldown expired. Transports map it to a retry-later response.
var ErrRefreshCooldown = errors.New("dashboard: recommendations refresh cooling down")

var errUnknownTimeRange = errors.New("dashboard: unknown time range")

// SessionOptions configures a dashboard session.
type SessionOptions struct {
	Library melodix.Library
	Service *Service
	Viewer  ViewerContext
	State   *UIState
	Charts  *GenreChartBuilder
	Logger  *slog.Logger

	// Telemetry defaults to the service's recorder when nil.
	Telemetry Telemetry

	// RefreshCooldown throttles manual recommendation refreshes.
	// Zero applies DefaultRefreshCooldown; negative disables the throttle.
	RefreshCooldown time.Duration
}

// Session drives the dashboard lifecycle for one viewer: the initial
// load, range reloads, the recommendations region, preview playback,
// the sidebar toggle, and the scroll-spy. Widget placement stays with
// the Service; the session owns the render state.
type Session struct {
	library   melodix.Library
	service   *Service
	viewer    ViewerContext
	state     *UIState
	charts    *GenreChartBuilder
	logger    *slog.Logger
	telemetry Telemetry
	limiter   *rate.Limiter

	mu    sync.Mutex
	mood  string
	query string
}

// NewSession builds a session with safe defaults. A nil library falls
// back to the bundled demo fixtures.
func NewSession(opts SessionOptions) *Session {
	if opts.Library == nil {
		opts.Library = melodix.DemoLibrary()
	}
	if opts.Service == nil {
		opts.Service = NewService(Options{WidgetStore: NewInMemoryWidgetStore()})
	}
	if opts.State == nil {
		opts.State = NewUIState("")
	}
	if opts.Charts == nil {
		opts.Charts = NewGenreChartBuilder()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cooldown := opts.RefreshCooldown
	if cooldown == 0 {
		cooldown = DefaultRefreshCooldown
	}
	// rate.Every treats a negative interval as unlimited.
	limiter := rate.NewLimiter(rate.Every(cooldown), 1)
	return &Session{
		library:   opts.Library,
		service:   opts.Service,
		viewer:    opts.Viewer,
		state:     opts.State,
		charts:    opts.Charts,
		logger:    opts.Logger,
		telemetry: normalizeTelemetry(opts.Telemetry),
		limiter:   limiter,
		mood:      melodix.DefaultMood,
	}
}

// Viewer returns the viewer this session belongs to.
func (s *Session) Viewer() ViewerContext {
	return s.viewer
}

// State exposes the render state, mainly for transports and tests.
func (s *Session) State() *UIState {
	return s.state
}

// Snapshot copies the current render state.
func (s *Session) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// Load performs the initial page load: one summary fetch feeds every
// widget, then the recommendations region fills in on its own without
// blocking the page. A summary failure is terminal and produces the
// error screen; nothing else on the page is.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	prefs, err := s.service.Preferences(ctx, s.viewer)
	if err != nil {
		s.logger.Warn("preferences unavailable, using defaults", "error", err)
		prefs = LayoutOverrides{}
	}
	if prefs.SidebarCollapsed {
		s.state.setSidebar(true)
	}

	summary, err := s.library.FetchSummary(ctx)
	if err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		s.telemetry.Record(ctx, "dashboard.load.failed", map[string]any{"error": err.Error()})
		s.state.setError(BuildErrorView(err))
		return s.state.Snapshot(), fmt.Errorf("dashboard: load: %w", err)
	}

	genres := BuildGenresView(summary.GenreDistribution)
	s.installChart(genres)
	s.state.applySummary(
		BuildProfileView(summary.Profile),
		BuildStatsView(summary),
		BuildArtistsView(summary.TopArtists),
		BuildTracksView(summary.TopTracks),
		genres,
		BuildRecentView(summary.RecentTracks),
	)
	s.telemetry.Record(ctx, "dashboard.load", map[string]any{
		"duration_seconds": time.Since(start).Seconds(),
	})

	if prefs.TimeRange != "" && prefs.TimeRange != s.state.TimeRange() {
		if _, err := s.ReloadRange(ctx, prefs.TimeRange); err != nil {
			s.logger.Warn("saved range unavailable, keeping default", "time_range", prefs.TimeRange, "error", err)
		}
	}

	s.state.setRecommendations(RecommendationsRegion{Status: RecommendationsLoading})
	mood, query := s.activeMood()
	go s.fetchRecommendations(context.WithoutCancel(ctx), mood, query)

	return s.state.Snapshot(), nil
}

// ReloadRange swaps the top artists, top tracks, and genre chart to a new
// time range. Both list fetches must succeed before anything is applied;
// on failure every widget keeps its previous data. When reloads overlap,
// only the most recently requested one may apply its result.
func (s *Session) ReloadRange(ctx context.Context, timeRange string) (Snapshot, error) {
	if !melodix.ValidRange(timeRange) {
		return s.state.Snapshot(), fmt.Errorf("%w: %q", errUnknownTimeRange, timeRange)
	}
	if timeRange == s.state.TimeRange() && s.state.State() == StateReady {
		return s.state.Snapshot(), nil
	}

	seq := s.state.beginReload()
	s.state.setState(StateReloadingRange)
	start := time.Now()

	var (
		artists []melodix.Artist
		tracks  []melodix.Track
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artists, err = s.library.FetchTopArtists(gctx, timeRange, defaultArtistLimit)
		return err
	})
	g.Go(func() error {
		var err error
		tracks, err = s.library.FetchTopTracks(gctx, timeRange, defaultTrackLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("range reload failed", "time_range", timeRange, "error", err)
		s.telemetry.Record(ctx, "dashboard.reload.failed", map[string]any{
			"time_range":       timeRange,
			"duration_seconds": time.Since(start).Seconds(),
		})
		if s.state.isCurrentReload(seq) {
			s.state.setState(StateReady)
		}
		return s.state.Snapshot(), fmt.Errorf("dashboard: reload %s: %w", timeRange, err)
	}
	if !s.state.isCurrentReload(seq) {
		s.logger.Debug("range reload superseded", "time_range", timeRange)
		s.telemetry.Record(ctx, "dashboard.reload.stale", map[string]any{"time_range": timeRange})
		return s.state.Snapshot(), nil
	}

	genres := BuildGenresView(melodix.DeriveGenreDistribution(artists, melodix.SummaryGenreCount))
	s.installChart(genres)
	s.state.applyRangeResults(timeRange, BuildArtistsView(artists), BuildTracksView(tracks), genres)
	s.persistTimeRange(ctx, timeRange)
	s.telemetry.Record(ctx, "dashboard.reload", map[string]any{
		"time_range":       timeRange,
		"duration_seconds": time.Since(start).Seconds(),
	})
	return s.state.Snapshot(), nil
}

// SetMood switches the recommendations region to a new mood and fetches
// it. The artista and custom moods carry the free-text query along.
func (s *Session) SetMood(ctx context.Context, mood, query string) (Snapshot, error) {
	if mood == "" {
		mood = melodix.DefaultMood
	}
	if !melodix.ValidMood(mood) {
		return s.state.Snapshot(), fmt.Errorf("dashboard: unknown mood %q", mood)
	}
	s.mu.Lock()
	s.mood = mood
	s.query = query
	s.mu.Unlock()

	s.state.setRecommendations(RecommendationsRegion{Status: RecommendationsLoading})
	s.fetchRecommendations(ctx, mood, query)
	return s.state.Snapshot(), nil
}

// RefreshRecommendations re-fetches the current mood, throttled so the
// refresh control cannot hammer the recommender.
func (s *Session) RefreshRecommendations(ctx context.Context) (Snapshot, error) {
	if !s.limiter.Allow() {
		return s.state.Snapshot(), ErrRefreshCooldown
	}
	s.state.setRecommendations(RecommendationsRegion{Status: RecommendationsLoading})
	mood, query := s.activeMood()
	s.fetchRecommendations(ctx, mood, query)
	return s.state.Snapshot(), nil
}

func (s *Session) activeMood() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mood, s.query
}

func (s *Session) fetchRecommendations(ctx context.Context, mood, query string) {
	set, err := s.library.FetchRecommendations(ctx, mood, query)
	if err != nil {
		s.logger.Warn("recommendations fetch failed", "mood", mood, "error", err)
		s.telemetry.Record(ctx, "dashboard.recommendations.failed", map[string]any{
			"mood":  mood,
			"error": err.Error(),
		})
		s.state.setRecommendations(RecommendationsRegion{
			Status:  RecommendationsError,
			Message: RecommendationsErrorMessage,
		})
		return
	}
	s.state.setRecommendations(RecommendationsRegion{
		Status: RecommendationsReady,
		View:   BuildRecommendationsView(set),
	})
}

// ToggleSidebar flips the sidebar and persists the choice when the
// viewer is identified.
func (s *Session) ToggleSidebar(ctx context.Context) bool {
	collapsed := s.state.toggleSidebar()
	if s.viewer.UserID == "" {
		return collapsed
	}
	prefs, err := s.service.Preferences(ctx, s.viewer)
	if err != nil {
		prefs = LayoutOverrides{}
	}
	prefs.SidebarCollapsed = collapsed
	if err := s.service.SavePreferences(ctx, s.viewer, prefs); err != nil {
		s.logger.Warn("persist sidebar failed", "error", err)
	}
	return collapsed
}

// PlayPreview toggles preview playback for the track.
func (s *Session) PlayPreview(trackID string) PreviewChange {
	return s.state.Player().Toggle(trackID)
}

// StopPreview stops whatever preview is playing.
func (s *Session) StopPreview() PreviewChange {
	return s.state.Player().Stop()
}

// PreviewEnded reports that the given preview finished on its own.
func (s *Session) PreviewEnded(trackID string) {
	s.state.Player().OnEnded(trackID)
}

// ReportSection folds one scroll-spy event and returns the section that
// is active afterwards.
func (s *Session) ReportSection(section string, entered bool) string {
	active := s.state.Sections().Apply(SectionEvent{Section: section, Entered: entered})
	s.state.setActiveSection(active)
	return active
}

// TrackSections consumes an observer's visibility events until the
// context ends or the stream closes.
func (s *Session) TrackSections(ctx context.Context, observer SectionObserver) {
	if observer == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-observer.Sections():
				if !ok {
					return
				}
				s.ReportSection(evt.Section, evt.Entered)
			}
		}
	}()
}

func (s *Session) installChart(genres GenresView) {
	if len(genres.Slices) == 0 {
		s.state.Chart().Clear()
		return
	}
	meta := WidgetContext{
		Instance: WidgetInstance{ID: s.viewer.UserID, DefinitionID: WidgetGenres},
		Viewer:   s.viewer,
	}
	chart, err := s.charts.Build(genres, meta)
	if err != nil {
		s.logger.Warn("genre chart build failed", "error", err)
		return
	}
	s.state.Chart().Replace(chart)
}

func (s *Session) persistTimeRange(ctx context.Context, timeRange string) {
	if s.viewer.UserID == "" {
		return
	}
	prefs, err := s.service.Preferences(ctx, s.viewer)
	if err != nil {
		prefs = LayoutOverrides{}
	}
	prefs.TimeRange = timeRange
	if err := s.service.SavePreferences(ctx, s.viewer, prefs); err != nil {
		s.logger.Warn("persist time range failed", "error", err)
	}
}
