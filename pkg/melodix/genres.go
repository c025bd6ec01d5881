package melodix

import "sort"

// Genre bucket caps the backend applies: the dashboard summary carries at
// most SummaryGenreCount buckets, the standalone genre endpoint TopGenreCount.
const (
	SummaryGenreCount = 12
	TopGenreCount     = 15
)

// DeriveGenreDistribution counts genre mentions across the given artists
// and returns the most common buckets, capped at limit. Ties keep
// first-seen order, matching the backend counter.
func DeriveGenreDistribution(artists []Artist, limit int) GenreDistribution {
	counts := map[string]int{}
	order := make([]string, 0, len(artists))
	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if genre == "" {
				continue
			}
			if _, seen := counts[genre]; !seen {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}
	out := make(GenreDistribution, 0, len(order))
	for _, name := range order {
		out = append(out, GenreCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out.Top(limit)
}

// ValidMood reports whether the recommender accepts the mood.
func ValidMood(mood string) bool {
	if mood == DefaultMood {
		return true
	}
	for _, m := range Moods {
		if m == mood {
			return true
		}
	}
	return false
}

// ValidRange reports whether the backend accepts the time range.
func ValidRange(timeRange string) bool {
	switch timeRange {
	case RangeShortTerm, RangeMediumTerm, RangeLongTerm:
		return true
	}
	return false
}
