package domain

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day format used for dates and streak keys.
const DayLayout = "2006-01-02"

const (
	statsWindow    = 7 * 24 * time.Hour
	trendThreshold = 0.3
)

// Trend describes the direction of recent mood values.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// MoodStats aggregates a mood log. Window metrics cover the last 7 days.
type MoodStats struct {
	AverageMood    float64 `json:"averageMood"`
	TotalEntries   int     `json:"totalEntries"`
	Last7DaysCount int     `json:"last7DaysCount"`
	DominantMood   *string `json:"dominantMood"`
	Trend          Trend   `json:"trend"`
}

// ComputeStats reduces entries to aggregate metrics relative to now. It
// returns nil for an empty log.
func ComputeStats(entries []MoodEntry, now time.Time) *MoodStats {
	if len(entries) == 0 {
		return nil
	}
	week := LastWeek(entries, now)
	st := &MoodStats{
		TotalEntries:   len(entries),
		Last7DaysCount: len(week),
		Trend:          trendOf(week),
	}
	if len(week) > 0 {
		st.AverageMood = meanMood(week)
		name := dominantMood(week)
		st.DominantMood = &name
	}
	return st
}

// LastWeek returns the entries created within the 7 days before now, oldest first.
func LastWeek(entries []MoodEntry, now time.Time) []MoodEntry {
	cutoff := now.Add(-statsWindow)
	out := make([]MoodEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Time().Before(cutoff) {
			out = append(out, e)
		}
	}
	sortAscending(out)
	return out
}

// Streak counts consecutive local calendar days with at least one entry,
// walking backward from the day of now. A day without entries ends the walk,
// so a log with nothing today has a streak of 0.
func Streak(entries []MoodEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	loc := now.Location()
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.Time().In(loc).Format(DayLayout)] = struct{}{}
	}

	streak := 0
	for d := now; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d.Format(DayLayout)]; !ok {
			return streak
		}
		streak++
	}
}

// trendOf compares the newer half of the window against the older half,
// splitting by position rather than by calendar boundary.
func trendOf(window []MoodEntry) Trend {
	if len(window) < 2 {
		return TrendStable
	}
	sorted := sortedCopy(window)
	split := (len(sorted) + 1) / 2
	diff := meanMood(sorted[split:]) - meanMood(sorted[:split])
	switch {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// dominantMood returns the most frequent mood name. Ties go to the name seen
// most recently.
func dominantMood(window []MoodEntry) string {
	sorted := sortedCopy(window)
	counts := make(map[string]int, len(sorted))
	var order []string
	for i := len(sorted) - 1; i >= 0; i-- {
		name := sorted[i].MoodName
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	best := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}

func meanMood(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.MoodValue
	}
	return float64(sum) / float64(len(entries))
}

func sortedCopy(entries []MoodEntry) []MoodEntry {
	out := make([]MoodEntry, len(entries))
	copy(out, entries)
	sortAscending(out)
	return out
}

func sortAscending(entries []MoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TimestampMs < entries[j].TimestampMs
	})
}
