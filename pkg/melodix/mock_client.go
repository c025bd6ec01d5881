package melodix

import (
	"context"
	"sync"
	"time"
)

// MockData seeds deterministic backend responses for tests and local demos.
// Ranked lists can vary per time range; lookups fall back to the summary
// lists when a range has no dedicated fixture.
type MockData struct {
	Summary           Summary
	TopArtistsByRange map[string][]Artist
	TopTracksByRange  map[string][]Track
	Recommendations   RecommendationSet
}

// MockClient implements API using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock backend client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// Summary returns the configured snapshot.
func (c *MockClient) Summary(context.Context) (Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSummary(c.data.Summary), nil
}

// TopArtists returns the fixture for the range, or the summary list.
func (c *MockClient) TopArtists(_ context.Context, timeRange string, limit int) ([]Artist, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	artists, ok := c.data.TopArtistsByRange[timeRange]
	if !ok {
		artists = c.data.Summary.TopArtists
	}
	return capArtists(cloneArtists(artists), limit), nil
}

// TopTracks returns the fixture for the range, or the summary list.
func (c *MockClient) TopTracks(_ context.Context, timeRange string, limit int) ([]Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks, ok := c.data.TopTracksByRange[timeRange]
	if !ok {
		tracks = c.data.Summary.TopTracks
	}
	return capTracks(cloneTracks(tracks), limit), nil
}

// Recommendations returns the configured set with the requested mood echoed
// back, the way the backend reports the active mood.
func (c *MockClient) Recommendations(_ context.Context, mood, _ string) (RecommendationSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := cloneRecommendations(c.data.Recommendations)
	if mood != "" {
		out.ActiveMood = mood
	}
	return out, nil
}

// Me returns the configured profile.
func (c *MockClient) Me(context.Context) (Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Summary.Profile, nil
}

// Recent returns the configured recently played feed.
func (c *MockClient) Recent(_ context.Context, limit int) ([]RecentTrack, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recent := cloneRecent(c.data.Summary.RecentTracks)
	if limit > 0 && limit < len(recent) {
		recent = recent[:limit]
	}
	return recent, nil
}

// Genres returns the configured genre distribution.
func (c *MockClient) Genres(context.Context) (GenreDistribution, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(GenreDistribution(nil), c.data.Summary.GenreDistribution...), nil
}

var _ API = (*MockClient)(nil)

// DemoData returns the fixture set backing the runnable example and the
// default providers. Timestamps are anchored to now so the recently played
// feed renders sensible relative times.
func DemoData() MockData {
	now := time.Now().UTC()
	artists := []Artist{
		{ID: "art-1", Name: "Rosalía", Genres: []string{"flamenco pop", "urbano latino"}, Popularity: 92, Followers: 28400000, SpotifyURL: "https://open.spotify.com/artist/demo-rosalia"},
		{ID: "art-2", Name: "Bad Bunny", Genres: []string{"urbano latino", "reggaeton"}, Popularity: 98, Followers: 75300000, SpotifyURL: "https://open.spotify.com/artist/demo-badbunny"},
		{ID: "art-3", Name: "Quevedo", Genres: []string{"urbano latino", "trap latino"}, Popularity: 88, Followers: 9600000, SpotifyURL: "https://open.spotify.com/artist/demo-quevedo"},
		{ID: "art-4", Name: "Aitana", Genres: []string{"pop", "latin pop"}, Popularity: 84, Followers: 4500000, SpotifyURL: "https://open.spotify.com/artist/demo-aitana"},
		{ID: "art-5", Name: "C. Tangana", Genres: []string{"urbano español", "flamenco pop"}, Popularity: 81, Followers: 3800000, SpotifyURL: "https://open.spotify.com/artist/demo-tangana"},
	}
	tracks := []Track{
		{ID: "trk-1", Name: "Despechá", Artist: "Rosalía", Album: "Motomami +", Popularity: 90, DurationMS: 157000, DurationMin: "2:37", PreviewURL: "https://p.scdn.co/mp3-preview/demo-1", SpotifyURL: "https://open.spotify.com/track/demo-1", ReleaseDate: "2022-07-28"},
		{ID: "trk-2", Name: "Tití Me Preguntó", Artist: "Bad Bunny", Album: "Un Verano Sin Ti", Popularity: 95, DurationMS: 243000, DurationMin: "4:03", PreviewURL: "https://p.scdn.co/mp3-preview/demo-2", SpotifyURL: "https://open.spotify.com/track/demo-2", ReleaseDate: "2022-05-06"},
		{ID: "trk-3", Name: "Quédate", Artist: "Quevedo", Album: "BZRP Music Sessions", Popularity: 93, DurationMS: 202000, DurationMin: "3:22", SpotifyURL: "https://open.spotify.com/track/demo-3", ReleaseDate: "2022-07-06"},
		{ID: "trk-4", Name: "Formentera", Artist: "Aitana", Album: "Alpha", Popularity: 78, DurationMS: 184000, DurationMin: "3:04", PreviewURL: "https://p.scdn.co/mp3-preview/demo-4", SpotifyURL: "https://open.spotify.com/track/demo-4", ReleaseDate: "2023-06-22"},
	}
	recent := []RecentTrack{
		{Track: tracks[0], PlayedAt: now.Add(-12 * time.Minute).Format(time.RFC3339)},
		{Track: tracks[2], PlayedAt: now.Add(-3 * time.Hour).Format(time.RFC3339)},
		{Track: tracks[1], PlayedAt: now.Add(-26 * time.Hour).Format(time.RFC3339)},
	}
	return MockData{
		Summary: Summary{
			Profile: Profile{
				ID:         "melodix-demo",
				Name:       "Lucía",
				Email:      "lucia@example.com",
				Country:    "ES",
				Followers:  184,
				SpotifyURL: "https://open.spotify.com/user/demo-lucia",
				Product:    "premium",
			},
			TopArtists: artists,
			TopTracks:  tracks,
			GenreDistribution: GenreDistribution{
				{Name: "urbano latino", Count: 14},
				{Name: "reggaeton", Count: 9},
				{Name: "flamenco pop", Count: 6},
				{Name: "trap latino", Count: 5},
				{Name: "pop", Count: 4},
				{Name: "latin pop", Count: 3},
				{Name: "urbano español", Count: 2},
				{Name: "indie", Count: 1},
			},
			RecentTracks: recent,
		},
		TopArtistsByRange: map[string][]Artist{
			RangeShortTerm: {artists[2], artists[0], artists[3]},
			RangeLongTerm:  {artists[1], artists[0], artists[4], artists[2], artists[3]},
		},
		TopTracksByRange: map[string][]Track{
			RangeShortTerm: {tracks[3], tracks[0]},
			RangeLongTerm:  {tracks[1], tracks[0], tracks[2], tracks[3]},
		},
		Recommendations: RecommendationSet{
			Recommendations: []Recommendation{
				{Track: Track{ID: "rec-1", Name: "La Fama", Artist: "Rosalía", Album: "Motomami", Popularity: 86, DurationMS: 188000, DurationMin: "3:08", PreviewURL: "https://p.scdn.co/mp3-preview/demo-rec-1", SpotifyURL: "https://open.spotify.com/track/demo-rec-1"}, Reason: "Porque escuchas a Rosalía"},
				{Track: Track{ID: "rec-2", Name: "Ojitos Lindos", Artist: "Bad Bunny", Album: "Un Verano Sin Ti", Popularity: 91, DurationMS: 258000, DurationMin: "4:18", PreviewURL: "https://p.scdn.co/mp3-preview/demo-rec-2", SpotifyURL: "https://open.spotify.com/track/demo-rec-2"}, Reason: "Popular entre fans de urbano latino"},
				{Track: Track{ID: "rec-3", Name: "Playa del Inglés", Artist: "Quevedo", Album: "Donde Quiero Estar", Popularity: 85, DurationMS: 251000, DurationMin: "4:11", SpotifyURL: "https://open.spotify.com/track/demo-rec-3"}, Reason: "Similar a Quédate"},
			},
			ProfileDescription: "Fan de Rosalía, Bad Bunny · urbano latino · reggaeton",
			Moods:              append([]string(nil), Moods...),
			ActiveMood:         DefaultMood,
		},
	}
}

// DemoLibrary wires the demo fixtures into the repository union.
func DemoLibrary() Library {
	return NewLibrary(NewMockClient(DemoData()))
}

func cloneSummary(s Summary) Summary {
	out := s
	out.TopArtists = cloneArtists(s.TopArtists)
	out.TopTracks = cloneTracks(s.TopTracks)
	out.GenreDistribution = append(GenreDistribution(nil), s.GenreDistribution...)
	out.RecentTracks = cloneRecent(s.RecentTracks)
	return out
}

func cloneArtists(artists []Artist) []Artist {
	out := make([]Artist, len(artists))
	for i, artist := range artists {
		out[i] = artist
		out[i].Genres = append([]string(nil), artist.Genres...)
	}
	return out
}

func cloneTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}

func cloneRecent(recent []RecentTrack) []RecentTrack {
	out := make([]RecentTrack, len(recent))
	copy(out, recent)
	return out
}

func cloneRecommendations(set RecommendationSet) RecommendationSet {
	out := set
	out.Recommendations = append([]Recommendation(nil), set.Recommendations...)
	out.Moods = append([]string(nil), set.Moods...)
	return out
}

func capArtists(artists []Artist, limit int) []Artist {
	if limit > 0 && limit < len(artists) {
		return artists[:limit]
	}
	return artists
}

func capTracks(tracks []Track, limit int) []Track {
	if limit > 0 && limit < len(tracks) {
		return tracks[:limit]
	}
	return tracks
}
