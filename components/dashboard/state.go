package dashboard

import (
	"sync"
	"sync/atomic"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// Load states of the dashboard lifecycle. A session enters StateLoading
// once; range reloads go through StateReloadingRange and never revisit
// the full-page loading state.
const (
	StateLoading        = "loading"
	StateReady          = "ready"
	StateReloadingRange = "reloading_range"
)

// Render states of the recommendations region.
const (
	RecommendationsLoading = "loading"
	RecommendationsReady   = "ready"
	RecommendationsError   = "error"
)

// RecommendationsRegion is the widget-scoped state of the recommendations
// area: a spinner while fetching, cards or the empty state on success, an
// inline error otherwise. Failures here never touch the rest of the page.
type RecommendationsRegion struct {
	Status  string
	View    RecommendationsView
	Message string
}

// Snapshot is a copy of everything the page renders at one moment.
type Snapshot struct {
	State            string
	TimeRange        string
	ActiveSection    string
	SidebarCollapsed bool

	Profile         ProfileView
	Stats           StatsView
	Artists         ArtistsView
	Tracks          TracksView
	Genres          GenresView
	ChartHTML       string
	Recent          RecentView
	Recommendations RecommendationsRegion

	NowPlaying string
	Error      *ErrorView
}

// UIState holds the mutable render state of one dashboard session. All
// writes funnel through the service; readers take consistent snapshots
// through the RWMutex.
type UIState struct {
	mu sync.RWMutex

	state         string
	timeRange     string
	activeSection string
	sidebar       bool

	profile ProfileView
	stats   StatsView
	artists ArtistsView
	tracks  TracksView
	genres  GenresView
	recent  RecentView
	recs    RecommendationsRegion
	errView *ErrorView

	chart    ChartSlot
	player   PreviewPlayer
	sections SectionTracker

	reloadSeq atomic.Uint64
}

// NewUIState starts a session at the given time range in StateLoading.
func NewUIState(timeRange string) *UIState {
	if timeRange == "" {
		timeRange = melodix.RangeMediumTerm
	}
	return &UIState{
		state:     StateLoading,
		timeRange: timeRange,
	}
}

// State returns the lifecycle state.
func (s *UIState) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *UIState) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// TimeRange returns the currently selected top-list range.
func (s *UIState) TimeRange() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// ActiveSection returns the section the scroll-spy marked active.
func (s *UIState) ActiveSection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSection
}

func (s *UIState) setActiveSection(section string) {
	s.mu.Lock()
	s.activeSection = section
	s.mu.Unlock()
}

// SidebarCollapsed reports the sidebar toggle.
func (s *UIState) SidebarCollapsed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebar
}

func (s *UIState) setSidebar(collapsed bool) {
	s.mu.Lock()
	s.sidebar = collapsed
	s.mu.Unlock()
}

func (s *UIState) toggleSidebar() bool {
	s.mu.Lock()
	s.sidebar = !s.sidebar
	collapsed := s.sidebar
	s.mu.Unlock()
	return collapsed
}

// applySummary installs every initial-load view model in one step and
// flips the session to ready.
func (s *UIState) applySummary(profile ProfileView, stats StatsView, artists ArtistsView, tracks TracksView, genres GenresView, recent RecentView) {
	s.mu.Lock()
	s.profile = profile
	s.stats = stats
	s.artists = artists
	s.tracks = tracks
	s.genres = genres
	s.recent = recent
	s.errView = nil
	s.state = StateReady
	s.mu.Unlock()
}

// applyRangeResults replaces the two range-scoped widgets together. The
// caller only invokes this when both fetches succeeded.
func (s *UIState) applyRangeResults(timeRange string, artists ArtistsView, tracks TracksView, genres GenresView) {
	s.mu.Lock()
	s.timeRange = timeRange
	s.artists = artists
	s.tracks = tracks
	s.genres = genres
	s.state = StateReady
	s.mu.Unlock()
}

func (s *UIState) setRecommendations(region RecommendationsRegion) {
	s.mu.Lock()
	s.recs = region
	s.mu.Unlock()
}

func (s *UIState) setError(view ErrorView) {
	s.mu.Lock()
	s.errView = &view
	s.mu.Unlock()
}

// beginReload registers a new range reload and returns its sequence
// number. A reload may only apply its result while it is still the latest
// one; later requests win over slower earlier ones.
func (s *UIState) beginReload() uint64 {
	return s.reloadSeq.Add(1)
}

func (s *UIState) isCurrentReload(seq uint64) bool {
	return s.reloadSeq.Load() == seq
}

// Chart returns the slot owning the single live genre chart.
func (s *UIState) Chart() *ChartSlot {
	return &s.chart
}

// Player returns the preview player of this session.
func (s *UIState) Player() *PreviewPlayer {
	return &s.player
}

// Sections returns the scroll-spy tracker of this session.
func (s *UIState) Sections() *SectionTracker {
	return &s.sections
}

// Snapshot copies the full render state.
func (s *UIState) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		State:            s.state,
		TimeRange:        s.timeRange,
		ActiveSection:    s.activeSection,
		SidebarCollapsed: s.sidebar,
		Profile:          s.profile,
		Stats:            s.stats,
		Artists:          s.artists,
		Tracks:           s.tracks,
		Genres:           s.genres,
		Recent:           s.recent,
		Recommendations:  s.recs,
	}
	if s.errView != nil {
		errCopy := *s.errView
		snap.Error = &errCopy
	}
	s.mu.RUnlock()

	snap.ChartHTML = s.chart.Live().HTML()
	snap.NowPlaying = s.player.NowPlaying()
	return snap
}
