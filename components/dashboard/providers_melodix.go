package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// Configuration limits the stock widgets fall back to when the instance
// does not override them.
const (
	defaultArtistLimit = 10
	defaultTrackLimit  = 10
	defaultGenreLimit  = 10
	defaultRecentLimit = 20
)

// ProfileProvider renders the viewer's account card.
type ProfileProvider struct {
	repo melodix.ProfileRepository
}

// NewProfileProvider builds a provider backed by the given repository.
func NewProfileProvider(repo melodix.ProfileRepository) Provider {
	return &ProfileProvider{repo: repo}
}

// Fetch loads the profile and maps it onto its display form.
func (p *ProfileProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("profile provider: repository is required")
	}
	profile, err := p.repo.FetchProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile provider: %w", err)
	}
	return WidgetData{"profile": BuildProfileView(profile)}, nil
}

// StatsProvider renders the headline counters above the lists.
type StatsProvider struct {
	repo melodix.SummaryRepository
}

// NewStatsProvider builds a provider backed by the given repository.
func NewStatsProvider(repo melodix.SummaryRepository) Provider {
	return &StatsProvider{repo: repo}
}

// Fetch derives the counters from the summary payload.
func (p *StatsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("stats provider: repository is required")
	}
	summary, err := p.repo.FetchSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats provider: %w", err)
	}
	cfg := configurationOf(meta)
	columns := limitValue(cfg["columns"], 4)
	if columns > 4 {
		columns = 4
	}
	return WidgetData{
		"stats":   BuildStatsView(summary),
		"columns": columns,
	}, nil
}

// TopArtistsProvider renders the ranked artist list for the active range.
type TopArtistsProvider struct {
	repo melodix.TopListRepository
}

// NewTopArtistsProvider builds a provider backed by the given repository.
func NewTopArtistsProvider(repo melodix.TopListRepository) Provider {
	return &TopArtistsProvider{repo: repo}
}

// Fetch loads artists for the resolved range. A per-viewer range passed
// through the layout options wins over the instance configuration.
func (p *TopArtistsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("top artists provider: repository is required")
	}
	cfg := configurationOf(meta)
	timeRange := resolveTimeRange(meta, cfg)
	limit := limitValue(cfg["limit"], defaultArtistLimit)
	artists, err := p.repo.FetchTopArtists(ctx, timeRange, limit)
	if err != nil {
		return nil, fmt.Errorf("top artists provider: %w", err)
	}
	view := BuildArtistsView(artists)
	return WidgetData{
		"artists":    view.Artists,
		"time_range": timeRange,
	}, nil
}

// TopTracksProvider renders the ranked track list for the active range.
type TopTracksProvider struct {
	repo melodix.TopListRepository
}

// NewTopTracksProvider builds a provider backed by the given repository.
func NewTopTracksProvider(repo melodix.TopListRepository) Provider {
	return &TopTracksProvider{repo: repo}
}

// Fetch loads tracks for the resolved range. A per-viewer range passed
// through the layout options wins over the instance configuration.
func (p *TopTracksProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("top tracks provider: repository is required")
	}
	cfg := configurationOf(meta)
	timeRange := resolveTimeRange(meta, cfg)
	limit := limitValue(cfg["limit"], defaultTrackLimit)
	tracks, err := p.repo.FetchTopTracks(ctx, timeRange, limit)
	if err != nil {
		return nil, fmt.Errorf("top tracks provider: %w", err)
	}
	view := BuildTracksView(tracks)
	return WidgetData{
		"tracks":     view.Tracks,
		"time_range": timeRange,
	}, nil
}

// GenreChartProvider composes the genre distribution into a donut chart.
type GenreChartProvider struct {
	repo   melodix.GenreRepository
	charts *GenreChartBuilder
}

// NewGenreChartProvider builds a provider backed by the given repository.
// A nil builder falls back to the shared cache and default theme.
func NewGenreChartProvider(repo melodix.GenreRepository, charts *GenreChartBuilder) Provider {
	if charts == nil {
		charts = NewGenreChartBuilder()
	}
	return &GenreChartProvider{repo: repo, charts: charts}
}

// Fetch renders the genre chart widget. An empty distribution yields an
// empty payload instead of an error so the widget can show its empty state.
func (p *GenreChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("genre chart provider: repository is required")
	}
	distribution, err := p.repo.FetchGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("genre chart provider: %w", err)
	}
	cfg := configurationOf(meta)
	title := stringValue(cfg["title"], "Tus géneros")
	limit := limitValue(cfg["limit"], defaultGenreLimit)
	view := BuildGenresView(distribution.Top(limit))
	if len(view.Slices) == 0 {
		return WidgetData{
			"title": title,
			"empty": true,
		}, nil
	}
	chart, err := p.charts.Build(view, meta)
	if err != nil {
		return nil, fmt.Errorf("genre chart provider: %w", err)
	}
	// template.HTML keeps html/template from escaping the rendered chart;
	// it still marshals as a plain string on the JSON API.
	return WidgetData{
		"title":      title,
		"chart_html": template.HTML(chart.HTML()),
		"chart_type": "donut",
		"genres":     view.Slices,
	}, nil
}

// RecentProvider renders the recently played feed.
type RecentProvider struct {
	repo melodix.RecentRepository
}

// NewRecentProvider builds a provider backed by the given repository.
func NewRecentProvider(repo melodix.RecentRepository) Provider {
	return &RecentProvider{repo: repo}
}

// Fetch loads the most recent plays with relative timestamps.
func (p *RecentProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("recent provider: repository is required")
	}
	cfg := configurationOf(meta)
	limit := limitValue(cfg["limit"], defaultRecentLimit)
	plays, err := p.repo.FetchRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent provider: %w", err)
	}
	view := BuildRecentView(plays)
	return WidgetData{"tracks": view.Tracks}, nil
}

// RecommendationsProvider renders the mood-driven suggestion cards.
type RecommendationsProvider struct {
	repo melodix.RecommendationsRepository
}

// NewRecommendationsProvider builds a provider backed by the given repository.
func NewRecommendationsProvider(repo melodix.RecommendationsRepository) Provider {
	return &RecommendationsProvider{repo: repo}
}

// Fetch asks the recommender for the configured mood. The artista and
// custom moods forward the free-text query alongside.
func (p *RecommendationsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("recommendations provider: repository is required")
	}
	cfg := configurationOf(meta)
	mood := strings.ToLower(stringValue(cfg["mood"], melodix.DefaultMood))
	query := stringValue(cfg["query"], "")
	set, err := p.repo.FetchRecommendations(ctx, mood, query)
	if err != nil {
		return nil, fmt.Errorf("recommendations provider: %w", err)
	}
	return WidgetData{"recommendations": BuildRecommendationsView(set)}, nil
}

func configurationOf(meta WidgetContext) map[string]any {
	if meta.Instance.Configuration == nil {
		return map[string]any{}
	}
	return meta.Instance.Configuration
}

func resolveTimeRange(meta WidgetContext, cfg map[string]any) string {
	timeRange := stringValue(cfg["time_range"], melodix.RangeMediumTerm)
	if meta.Options != nil {
		timeRange = stringValue(meta.Options[timeRangeOptionKey], timeRange)
	}
	return timeRange
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// limitValue coerces a configuration value into a positive limit,
// falling back when the value is missing, malformed, or non-positive.
func limitValue(v any, fallback int) int {
	n := 0
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		n = int(val)
	case json.Number:
		if parsed, err := val.Int64(); err == nil {
			n = int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(val); err == nil {
			n = parsed
		}
	}
	if n <= 0 {
		return fallback
	}
	return n
}
