package dashboard

import (
	"errors"
	"fmt"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// Placeholders used when the backend omits optional fields. The fallback
// image is a same-origin path so html/template's URL filter accepts it;
// the web app serves the actual SVG under /assets.
const (
	FallbackUserName   = "Usuario"
	FallbackArtistName = "Desconocido"
	FallbackImage      = "/assets/placeholder-cover.svg"
)

// EmptyRecommendationsMessage is shown when the recommender returns no
// tracks and the backend attached no explanation of its own.
const EmptyRecommendationsMessage = "No hay recomendaciones todavía. Escucha más música y vuelve."

// ProfileView renders the account card in the sidebar.
type ProfileView struct {
	Name         string
	Image        string
	Country      string
	Followers    string
	ProductLabel string
	SpotifyURL   string
}

// BuildProfileView maps the raw profile onto its display form.
func BuildProfileView(p melodix.Profile) ProfileView {
	view := ProfileView{
		Name:         p.Name,
		Image:        p.Image,
		Country:      p.Country,
		Followers:    FormatNumber(p.Followers),
		ProductLabel: "Free",
		SpotifyURL:   p.SpotifyURL,
	}
	if view.Name == "" {
		view.Name = FallbackUserName
	}
	if view.Image == "" {
		view.Image = FallbackImage
	}
	if p.Product == "premium" {
		view.ProductLabel = "Premium"
	}
	return view
}

// StatsView holds the four headline counters shown above the lists.
type StatsView struct {
	Followers  string
	TopArtists string
	TopTracks  string
	Genres     string
}

// BuildStatsView derives the counters from the summary payload.
func BuildStatsView(s melodix.Summary) StatsView {
	return StatsView{
		Followers:  FormatNumber(s.Profile.Followers),
		TopArtists: FormatNumber(len(s.TopArtists)),
		TopTracks:  FormatNumber(len(s.TopTracks)),
		Genres:     FormatNumber(len(s.GenreDistribution)),
	}
}

// ArtistRow is one entry of the ranked artist list.
type ArtistRow struct {
	Rank       int
	Name       string
	Image      string
	Followers  string
	SpotifyURL string
}

// ArtistsView renders the top artists widget.
type ArtistsView struct {
	Artists []ArtistRow
}

// BuildArtistsView ranks artists in backend order. Rendering the result
// replaces the previous list wholesale, so equal input produces equal
// output and repeated renders never stack rows.
func BuildArtistsView(artists []melodix.Artist) ArtistsView {
	rows := make([]ArtistRow, 0, len(artists))
	for i, artist := range artists {
		image := artist.Image
		if image == "" {
			image = FallbackImage
		}
		rows = append(rows, ArtistRow{
			Rank:       i + 1,
			Name:       artist.Name,
			Image:      image,
			Followers:  FormatNumber(artist.Followers) + " seguidores",
			SpotifyURL: artist.SpotifyURL,
		})
	}
	return ArtistsView{Artists: rows}
}

// TrackRow is one entry of the ranked track list.
type TrackRow struct {
	Rank            int
	Name            string
	Artist          string
	Image           string
	Duration        string
	Popularity      int
	PopularityLabel string
	PreviewURL      string
	SpotifyURL      string
}

// TracksView renders the top tracks widget.
type TracksView struct {
	Tracks []TrackRow
}

// BuildTracksView ranks tracks in backend order.
func BuildTracksView(tracks []melodix.Track) TracksView {
	rows := make([]TrackRow, 0, len(tracks))
	for i, track := range tracks {
		rows = append(rows, buildTrackRow(i+1, track))
	}
	return TracksView{Tracks: rows}
}

func buildTrackRow(rank int, track melodix.Track) TrackRow {
	row := TrackRow{
		Rank:            rank,
		Name:            track.Name,
		Artist:          track.Artist,
		Image:           track.Image,
		Duration:        track.DurationMin,
		Popularity:      track.Popularity,
		PopularityLabel: fmt.Sprintf("%d%%", track.Popularity),
		PreviewURL:      track.PreviewURL,
		SpotifyURL:      track.SpotifyURL,
	}
	if row.Artist == "" {
		row.Artist = FallbackArtistName
	}
	if row.Image == "" {
		row.Image = FallbackImage
	}
	if row.Duration == "" {
		row.Duration = FormatDuration(track.DurationMS)
	}
	return row
}

// GenreSlice is one colored bucket of the genre donut and its legend.
type GenreSlice struct {
	Name  string
	Count int
	Color string
}

// GenresView renders the genre distribution widget. Slices carry the data
// the chart adapter consumes, capped at the palette size.
type GenresView struct {
	Slices []GenreSlice
}

// BuildGenresView keeps the top buckets in backend order and assigns
// palette colors positionally. The palette has ten colors so at most ten
// genres are charted.
func BuildGenresView(genres []melodix.GenreCount) GenresView {
	limit := len(GenrePalette)
	if len(genres) < limit {
		limit = len(genres)
	}
	slices := make([]GenreSlice, 0, limit)
	for i := 0; i < limit; i++ {
		slices = append(slices, GenreSlice{
			Name:  genres[i].Name,
			Count: genres[i].Count,
			Color: GenrePalette[i%len(GenrePalette)],
		})
	}
	return GenresView{Slices: slices}
}

// RecentRow is one entry of the recently played list.
type RecentRow struct {
	Name   string
	Artist string
	Image  string
	Ago    string
}

// RecentView renders the recently played widget.
type RecentView struct {
	Tracks []RecentRow
}

// BuildRecentView maps plays onto display rows with relative timestamps.
func BuildRecentView(tracks []melodix.RecentTrack) RecentView {
	rows := make([]RecentRow, 0, len(tracks))
	for _, item := range tracks {
		row := RecentRow{
			Name:   item.Name,
			Artist: item.Artist,
			Image:  item.Image,
			Ago:    TimeAgo(item.PlayedAt),
		}
		if row.Artist == "" {
			row.Artist = FallbackArtistName
		}
		if row.Image == "" {
			row.Image = FallbackImage
		}
		rows = append(rows, row)
	}
	return RecentView{Tracks: rows}
}

// RecommendationCard is one suggested track with its explanation line.
// Cards without a PreviewURL render no preview control.
type RecommendationCard struct {
	TrackID    string
	Name       string
	Artist     string
	Image      string
	Reason     string
	PreviewURL string
	SpotifyURL string
}

// MoodChip is one selectable mood filter.
type MoodChip struct {
	Value  string
	Label  string
	Active bool
}

// RecommendationsView renders the recommendations widget.
type RecommendationsView struct {
	Empty        bool
	EmptyMessage string
	Cards        []RecommendationCard
	ProfileLine  string
	Moods        []MoodChip
}

var moodLabels = map[string]string{
	"default":    "Para ti",
	"fiesta":     "Fiesta",
	"emocional":  "Emocional",
	"bailar":     "Bailar",
	"relajado":   "Relajado",
	"amigos":     "Amigos",
	"verano":     "Verano",
	"tendencias": "Tendencias",
	"artista":    "Artista",
	"custom":     "A tu manera",
}

// BuildRecommendationsView maps the recommender payload onto cards and
// mood chips. An empty set flips Empty and carries the backend message
// when present, the fixed empty-state text otherwise.
func BuildRecommendationsView(set melodix.RecommendationSet) RecommendationsView {
	view := RecommendationsView{
		ProfileLine: set.ProfileDescription,
		Moods:       buildMoodChips(set.Moods, set.ActiveMood),
	}
	if len(set.Recommendations) == 0 {
		view.Empty = true
		view.EmptyMessage = set.Message
		if view.EmptyMessage == "" {
			view.EmptyMessage = EmptyRecommendationsMessage
		}
		return view
	}
	view.Cards = make([]RecommendationCard, 0, len(set.Recommendations))
	for _, rec := range set.Recommendations {
		card := RecommendationCard{
			TrackID:    rec.ID,
			Name:       rec.Name,
			Artist:     rec.Artist,
			Image:      rec.Image,
			Reason:     rec.Reason,
			PreviewURL: rec.PreviewURL,
			SpotifyURL: rec.SpotifyURL,
		}
		if card.Artist == "" {
			card.Artist = FallbackArtistName
		}
		if card.Image == "" {
			card.Image = FallbackImage
		}
		view.Cards = append(view.Cards, card)
	}
	return view
}

func buildMoodChips(moods []string, active string) []MoodChip {
	if active == "" {
		active = "default"
	}
	chips := make([]MoodChip, 0, len(moods))
	for _, mood := range moods {
		label, ok := moodLabels[mood]
		if !ok {
			label = mood
		}
		chips = append(chips, MoodChip{
			Value:  mood,
			Label:  label,
			Active: mood == active,
		})
	}
	return chips
}

// ErrorView renders the terminal failure screen for the initial load.
type ErrorView struct {
	Title       string
	Message     string
	Status      int
	ReturnLabel string
}

// BuildErrorView derives the failure screen from the load error. The HTTP
// status is surfaced when the error chain carries an API error.
func BuildErrorView(err error) ErrorView {
	view := ErrorView{
		Title:       "Error cargando el dashboard",
		ReturnLabel: "Volver al inicio",
	}
	if err == nil {
		return view
	}
	view.Message = err.Error()
	var apiErr *melodix.APIError
	if errors.As(err, &apiErr) {
		view.Status = apiErr.Status
	}
	return view
}
