package dashboard

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{2000, "2.0K"},
		{999_999, "1000.0K"},
		{1_000_000, "1.0M"},
		{2_300_000, "2.3M"},
		{28_400_000, "28.4M"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimeAgoAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"unparseable", "yesterday", ""},
		{"ninety seconds", now.Add(-90 * time.Second).Format(time.RFC3339), "hace 1m"},
		{"three hours", now.Add(-3 * time.Hour).Format(time.RFC3339), "hace 3h"},
		{"just under a day", now.Add(-23*time.Hour - 59*time.Minute).Format(time.RFC3339), "hace 23h"},
		{"two days", now.Add(-49 * time.Hour).Format(time.RFC3339), "hace 2d"},
		{"with millis", "2024-06-01T11:48:00.500Z", "hace 11m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeAgoAt(tc.in, now); got != tc.want {
				t.Errorf("TimeAgoAt(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTimeAgoUsesClock(t *testing.T) {
	restore := nowFunc
	nowFunc = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	defer func() { nowFunc = restore }()

	if got := TimeAgo("2024-06-01T09:00:00Z"); got != "hace 3h" {
		t.Fatalf("expected hace 3h, got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{59_000, "0:59"},
		{60_000, "1:00"},
		{225_000, "3:45"},
		{754_000, "12:34"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
