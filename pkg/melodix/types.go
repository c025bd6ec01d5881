package melodix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Time ranges the backend accepts for top artist/track queries. Values pass
// through to the API untouched; the client never validates them.
const (
	RangeShortTerm  = "short_term"  // last 4 weeks
	RangeMediumTerm = "medium_term" // last 6 months
	RangeLongTerm   = "long_term"   // full listening history
)

// DefaultMood asks the recommender for its personalized mix.
const DefaultMood = "default"

// Moods lists the recommendation moods the backend accepts, in the order
// the UI offers them. The artista and custom moods expect a free-text
// query alongside.
var Moods = []string{
	"fiesta",
	"emocional",
	"bailar",
	"relajado",
	"amigos",
	"verano",
	"tendencias",
	"artista",
	"custom",
}

// Profile is the viewer's account summary as served by /api/me.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Country    string `json:"country"`
	Followers  int    `json:"followers"`
	Image      string `json:"image"`
	SpotifyURL string `json:"spotify_url"`
	Product    string `json:"product"`
}

// Artist is one ranked artist entry.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
	Image      string   `json:"image"`
	SpotifyURL string   `json:"spotify_url"`
}

// Track is one ranked track entry. DurationMin carries the backend's
// pre-formatted "m:ss" rendering of DurationMS.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Popularity  int    `json:"popularity"`
	DurationMS  int    `json:"duration_ms"`
	DurationMin string `json:"duration_min"`
	Image       string `json:"image"`
	PreviewURL  string `json:"preview_url"`
	SpotifyURL  string `json:"spotify_url"`
	ReleaseDate string `json:"release_date"`
}

// RecentTrack is a track with its play timestamp (RFC 3339).
type RecentTrack struct {
	Track
	PlayedAt string `json:"played_at"`
}

// Recommendation is a track with the explanation line the recommender
// attached to it.
type Recommendation struct {
	Track
	Reason string `json:"reason"`
}

// RecommendationSet is the full /api/recommendations payload.
type RecommendationSet struct {
	Recommendations    []Recommendation `json:"recommendations"`
	ProfileDescription string           `json:"profile_description"`
	Moods              []string         `json:"moods"`
	ActiveMood         string           `json:"active_mood"`
	Message            string           `json:"message,omitempty"`
}

// Summary is the aggregate /api/dashboard/summary payload that feeds the
// initial page load.
type Summary struct {
	Profile           Profile           `json:"profile"`
	TopArtists        []Artist          `json:"top_artists"`
	TopTracks         []Track           `json:"top_tracks"`
	GenreDistribution GenreDistribution `json:"genre_distribution"`
	RecentTracks      []RecentTrack     `json:"recent_tracks"`
}

// GenreCount is one bucket of the genre distribution.
type GenreCount struct {
	Name  string
	Count int
}

// GenreDistribution holds genre buckets in the order the backend emitted
// them. The dashboard treats document order as display order, so the
// distribution cannot round-trip through a Go map.
type GenreDistribution []GenreCount

// UnmarshalJSON decodes the backend's JSON object token by token so that
// key order survives.
func (g *GenreDistribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("melodix: genre distribution: %w", err)
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("melodix: genre distribution must be a JSON object, got %v", tok)
	}
	out := GenreDistribution{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("melodix: genre distribution key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("melodix: genre distribution key %v is not a string", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("melodix: genre %q count: %w", name, err)
		}
		out = append(out, GenreCount{Name: name, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("melodix: genre distribution close: %w", err)
	}
	*g = out
	return nil
}

// MarshalJSON writes the distribution back as a JSON object in stored order.
func (g GenreDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bucket.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(bucket.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Top returns at most n leading buckets without copying bucket values.
func (g GenreDistribution) Top(n int) GenreDistribution {
	if n < 0 || n >= len(g) {
		return g
	}
	return g[:n]
}
