package dashboard

import "github.com/melodix/go-dashboard/pkg/melodix"

// defaultProviders serves every stock widget from the bundled demo
// library so a bare NewRegistry renders without backend credentials.
var defaultProviders = LibraryProviders(melodix.DemoLibrary(), nil)

// LibraryProviders wires the stock widget codes to providers backed by
// the given library. Passing a nil chart builder uses the shared render
// cache and default theme.
func LibraryProviders(library melodix.Library, charts *GenreChartBuilder) map[string]Provider {
	if charts == nil {
		charts = NewGenreChartBuilder()
	}
	return map[string]Provider{
		WidgetProfile:         NewProfileProvider(library),
		WidgetStats:           NewStatsProvider(library),
		WidgetTopArtists:      NewTopArtistsProvider(library),
		WidgetTopTracks:       NewTopTracksProvider(library),
		WidgetGenres:          NewGenreChartProvider(library, charts),
		WidgetRecent:          NewRecentProvider(library),
		WidgetRecommendations: NewRecommendationsProvider(library),
	}
}
