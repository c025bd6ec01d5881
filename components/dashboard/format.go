package dashboard

import (
	"fmt"
	"strconv"
	"time"
)

// nowFunc supplies the reference time for TimeAgo; tests replace it.
var nowFunc = time.Now

// FormatNumber renders follower and play counts the compact way the
// dashboard shows them: 999 stays "999", 1500 becomes "1.5K", 2300000
// becomes "2.3M".
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.Itoa(n)
	}
}

// TimeAgo renders an RFC3339 timestamp as relative Spanish text ("hace
// 5m", "hace 3h", "hace 2d"). Empty or unparseable input yields "".
func TimeAgo(value string) string {
	return TimeAgoAt(value, nowFunc())
}

// TimeAgoAt is TimeAgo against an explicit reference time.
func TimeAgoAt(value string, now time.Time) string {
	if value == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}
	minutes := int(now.Sub(ts).Minutes())
	switch {
	case minutes < 60:
		return fmt.Sprintf("hace %dm", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("hace %dh", minutes/60)
	default:
		return fmt.Sprintf("hace %dd", minutes/(24*60))
	}
}

// FormatDuration renders a track length in milliseconds as "m:ss"
// (225000 becomes "3:45").
func FormatDuration(ms int) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
