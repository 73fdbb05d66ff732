package domain

import "time"

const chartWindow = 30 * 24 * time.Hour

// ChartPoint is one plotted mood entry.
type ChartPoint struct {
	Date string `json:"date"`
	Mood int    `json:"mood"`
	Name string `json:"name"`
}

// Chart returns the entries of the last 30 days, oldest first, with dates
// formatted as local days in now's location.
func Chart(entries []MoodEntry, now time.Time) []ChartPoint {
	cutoff := now.Add(-chartWindow)
	points := make([]ChartPoint, 0)
	for _, e := range sortedCopy(entries) {
		t := e.Time()
		if t.Before(cutoff) {
			continue
		}
		points = append(points, ChartPoint{
			Date: t.In(now.Location()).Format(DayLayout),
			Mood: e.MoodValue,
			Name: e.MoodName,
		})
	}
	return points
}
