package melodix

import "context"

// SummaryClient fetches the aggregate dashboard snapshot.
type SummaryClient interface {
	Summary(ctx context.Context) (Summary, error)
}

// TopListClient fetches ranked artists and tracks.
type TopListClient interface {
	TopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error)
	TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error)
}

// RecommendationsClient fetches recommendation cards.
type RecommendationsClient interface {
	Recommendations(ctx context.Context, mood, query string) (RecommendationSet, error)
}

// ProfileClient fetches the viewer profile.
type ProfileClient interface {
	Me(ctx context.Context) (Profile, error)
}

// RecentClient fetches the recently played feed.
type RecentClient interface {
	Recent(ctx context.Context, limit int) ([]RecentTrack, error)
}

// GenreClient fetches the genre distribution.
type GenreClient interface {
	Genres(ctx context.Context) (GenreDistribution, error)
}

// API is a convenience union for callers that need every backend call.
type API interface {
	SummaryClient
	TopListClient
	RecommendationsClient
	ProfileClient
	RecentClient
	GenreClient
}

// SummaryRepository loads the snapshot that drives the initial page render.
type SummaryRepository interface {
	FetchSummary(ctx context.Context) (Summary, error)
}

// TopListRepository loads the two range-scoped widgets.
type TopListRepository interface {
	FetchTopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error)
	FetchTopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error)
}

// RecommendationsRepository loads the recommendations widget payload.
type RecommendationsRepository interface {
	FetchRecommendations(ctx context.Context, mood, query string) (RecommendationSet, error)
}

// ProfileRepository loads the profile widget payload.
type ProfileRepository interface {
	FetchProfile(ctx context.Context) (Profile, error)
}

// RecentRepository loads the recently played widget payload.
type RecentRepository interface {
	FetchRecent(ctx context.Context, limit int) ([]RecentTrack, error)
}

// GenreRepository loads the genre chart payload.
type GenreRepository interface {
	FetchGenres(ctx context.Context) (GenreDistribution, error)
}

// Library unions every repository the dashboard widgets consume.
type Library interface {
	SummaryRepository
	TopListRepository
	RecommendationsRepository
	ProfileRepository
	RecentRepository
	GenreRepository
}
