package domain

import (
	"strings"
	"time"
)

const (
	improvementMinEntries = 14
	improvementDelta      = 1.0
	weekMinEntries        = 7
	positiveMood          = 4
	earlyBirdHour         = 8
)

// ActivitySnapshot is the raw activity an evaluation pass reads. Now fixes
// both the reference instant and the local time zone.
type ActivitySnapshot struct {
	Moods             []MoodEntry
	BreathingSessions int
	UserChatMessages  int
	Now               time.Time
}

// MetricFunc computes an achievement's current progress from a snapshot.
type MetricFunc func(ActivitySnapshot) int

var metricTable = map[AchievementKind]MetricFunc{
	KindFirstEntry:      func(s ActivitySnapshot) int { return boolMetric(len(s.Moods) >= 1) },
	KindWeekStreak:      streakMetric,
	KindMonthStreak:     streakMetric,
	KindHundredEntries:  func(s ActivitySnapshot) int { return len(s.Moods) },
	KindMoodImprovement: moodImprovementMetric,
	KindPositiveWeek:    positiveWeekMetric,
	KindBreathingMaster: func(s ActivitySnapshot) int { return s.BreathingSessions },
	KindChatExplorer:    func(s ActivitySnapshot) int { return s.UserChatMessages },
	KindJournalWriter:   journalMetric,
	KindPerfectWeek:     perfectWeekMetric,
	KindEarlyBird:       earlyBirdMetric,
}

// Metric returns the progress function for kind.
func Metric(kind AchievementKind) (MetricFunc, bool) {
	fn, ok := metricTable[kind]
	return fn, ok
}

func streakMetric(s ActivitySnapshot) int {
	return Streak(s.Moods, s.Now)
}

func moodImprovementMetric(s ActivitySnapshot) int {
	if len(s.Moods) < improvementMinEntries {
		return 0
	}
	sorted := sortedCopy(s.Moods)
	half := len(sorted) / 2
	return boolMetric(meanMood(sorted[half:])-meanMood(sorted[:half]) > improvementDelta)
}

func positiveWeekMetric(s ActivitySnapshot) int {
	week := LastWeek(s.Moods, s.Now)
	if len(week) < weekMinEntries {
		return 0
	}
	return boolMetric(meanMood(week) >= positiveMood)
}

func perfectWeekMetric(s ActivitySnapshot) int {
	week := LastWeek(s.Moods, s.Now)
	if len(week) < weekMinEntries {
		return 0
	}
	for _, e := range week {
		if e.MoodValue < positiveMood {
			return 0
		}
	}
	return 1
}

func journalMetric(s ActivitySnapshot) int {
	n := 0
	for _, e := range s.Moods {
		if strings.TrimSpace(e.JournalText) != "" {
			n++
		}
	}
	return n
}

func earlyBirdMetric(s ActivitySnapshot) int {
	loc := s.Now.Location()
	n := 0
	for _, e := range s.Moods {
		if e.Time().In(loc).Hour() < earlyBirdHour {
			n++
		}
	}
	return n
}

func boolMetric(b bool) int {
	if b {
		return 1
	}
	return 0
}
