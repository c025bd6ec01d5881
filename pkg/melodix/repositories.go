package melodix

import "context"

// NewSummaryRepository adapts a backend client into the summary repository.
func NewSummaryRepository(client SummaryClient) SummaryRepository {
	return &summaryRepository{client: client}
}

type summaryRepository struct {
	client SummaryClient
}

func (r *summaryRepository) FetchSummary(ctx context.Context) (Summary, error) {
	return r.client.Summary(ctx)
}

// NewTopListRepository adapts the client for the ranked artist/track widgets.
func NewTopListRepository(client TopListClient) TopListRepository {
	return &topListRepository{client: client}
}

type topListRepository struct {
	client TopListClient
}

func (r *topListRepository) FetchTopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error) {
	return r.client.TopArtists(ctx, timeRange, limit)
}

func (r *topListRepository) FetchTopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	return r.client.TopTracks(ctx, timeRange, limit)
}

// NewRecommendationsRepository adapts the client for the recommendations widget.
func NewRecommendationsRepository(client RecommendationsClient) RecommendationsRepository {
	return &recommendationsRepository{client: client}
}

type recommendationsRepository struct {
	client RecommendationsClient
}

func (r *recommendationsRepository) FetchRecommendations(ctx context.Context, mood, query string) (RecommendationSet, error) {
	return r.client.Recommendations(ctx, mood, query)
}

// NewLibrary adapts a full backend client into the repository union the
// dashboard providers consume.
func NewLibrary(client API) Library {
	return &clientLibrary{client: client}
}

type clientLibrary struct {
	client API
}

func (l *clientLibrary) FetchSummary(ctx context.Context) (Summary, error) {
	return l.client.Summary(ctx)
}

func (l *clientLibrary) FetchTopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error) {
	return l.client.TopArtists(ctx, timeRange, limit)
}

func (l *clientLibrary) FetchTopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	return l.client.TopTracks(ctx, timeRange, limit)
}

func (l *clientLibrary) FetchRecommendations(ctx context.Context, mood, query string) (RecommendationSet, error) {
	return l.client.Recommendations(ctx, mood, query)
}

func (l *clientLibrary) FetchProfile(ctx context.Context) (Profile, error) {
	return l.client.Me(ctx)
}

func (l *clientLibrary) FetchRecent(ctx context.Context, limit int) ([]RecentTrack, error) {
	return l.client.Recent(ctx, limit)
}

func (l *clientLibrary) FetchGenres(ctx context.Context) (GenreDistribution, error) {
	return l.client.Genres(ctx)
}
