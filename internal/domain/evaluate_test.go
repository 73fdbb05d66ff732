package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armonia/internal/domain"
)

func stateOf(t *testing.T, states []domain.AchievementState, kind domain.AchievementKind) domain.AchievementState {
	t.Helper()
	for _, st := range states {
		if st.DefinitionID == kind {
			return st
		}
	}
	t.Fatalf("state %q not found", kind)
	return domain.AchievementState{}
}

func TestMetricTableCoversCatalog(t *testing.T) {
	for _, def := range domain.Catalog() {
		_, ok := domain.Metric(def.Kind)
		assert.True(t, ok, "no metric for %q", def.Kind)
	}
}

func TestEvaluate_EmptyLog(t *testing.T) {
	states, newly := domain.Evaluate(domain.DefaultStates(), domain.ActivitySnapshot{Now: refNow})
	assert.Empty(t, newly)
	first := stateOf(t, states, domain.KindFirstEntry)
	assert.Equal(t, 0, first.Current)
	assert.False(t, first.Unlocked)
	assert.Nil(t, first.UnlockedAt)
}

func TestEvaluate_FirstEntry(t *testing.T) {
	snap := domain.ActivitySnapshot{Moods: []domain.MoodEntry{moodAt(refNow, 3)}, Now: refNow}
	states, newly := domain.Evaluate(domain.DefaultStates(), snap)

	assert.Equal(t, []domain.AchievementKind{domain.KindFirstEntry}, newly)
	first := stateOf(t, states, domain.KindFirstEntry)
	assert.Equal(t, 1, first.Current)
	assert.True(t, first.Unlocked)
	require.NotNil(t, first.UnlockedAt)
	assert.True(t, first.UnlockedAt.Equal(refNow))
	assert.Equal(t, 1, stateOf(t, states, domain.KindWeekStreak).Current)
}

func TestEvaluate_PerfectWeek(t *testing.T) {
	snap := domain.ActivitySnapshot{Moods: daily(7, 5), Now: refNow}
	states, newly := domain.Evaluate(domain.DefaultStates(), snap)

	assert.Equal(t, []domain.AchievementKind{
		domain.KindFirstEntry,
		domain.KindWeekStreak,
		domain.KindPositiveWeek,
		domain.KindPerfectWeek,
	}, newly)
	month := stateOf(t, states, domain.KindMonthStreak)
	assert.Equal(t, 7, month.Current, "both streak achievements share one streak value")
	assert.False(t, month.Unlocked)
}

func TestEvaluate_PositiveButNotPerfectWeek(t *testing.T) {
	moods := daily(7, 5)
	moods[3] = moodAt(refNow.AddDate(0, 0, -3), 3)
	_, newly := domain.Evaluate(domain.DefaultStates(), domain.ActivitySnapshot{Moods: moods, Now: refNow})
	assert.Contains(t, newly, domain.KindPositiveWeek)
	assert.NotContains(t, newly, domain.KindPerfectWeek)
}

func TestEvaluate_HundredEntriesIgnoresDates(t *testing.T) {
	moods := make([]domain.MoodEntry, 0, 100)
	for i := 0; i < 100; i++ {
		moods = append(moods, moodAt(refNow.AddDate(0, 0, -30-3*i), 2))
	}
	states, newly := domain.Evaluate(domain.DefaultStates(), domain.ActivitySnapshot{Moods: moods, Now: refNow})

	hundred := stateOf(t, states, domain.KindHundredEntries)
	assert.Equal(t, 100, hundred.Current)
	assert.True(t, hundred.Unlocked)
	assert.Contains(t, newly, domain.KindHundredEntries)
	assert.Equal(t, 0, stateOf(t, states, domain.KindWeekStreak).Current)
}

func TestEvaluate_MoodImprovement(t *testing.T) {
	var moods []domain.MoodEntry
	for i := 0; i < 14; i++ {
		v := 1
		if i >= 7 {
			v = 5
		}
		moods = append(moods, moodAt(refNow.AddDate(0, 0, -40+i), v))
	}
	states, _ := domain.Evaluate(domain.DefaultStates(), domain.ActivitySnapshot{Moods: moods, Now: refNow})
	assert.True(t, stateOf(t, states, domain.KindMoodImprovement).Unlocked)

	states, _ = domain.Evaluate(domain.DefaultStates(), domain.ActivitySnapshot{Moods: moods[:13], Now: refNow})
	assert.Equal(t, 0, stateOf(t, states, domain.KindMoodImprovement).Current, "needs at least 14 entries")
}

func TestEvaluate_CountMetrics(t *testing.T) {
	var moods []domain.MoodEntry
	for i := 0; i < 5; i++ {
		day := refNow.AddDate(0, 0, -i)
		early := time.Date(day.Year(), day.Month(), day.Day(), 7, 15, 0, 0, time.UTC)
		e := moodAt(early, 3)
		if i < 2 {
			e.JournalText = "slept well"
		}
		moods = append(moods, e)
	}
	moods = append(moods, domain.MoodEntry{ID: "blank", MoodValue: 3, MoodName: "Peaceful", JournalText: "   ", TimestampMs: refNow.Add(-time.Hour).UnixMilli()})

	snap := domain.ActivitySnapshot{Moods: moods, BreathingSessions: 50, UserChatMessages: 12, Now: refNow}
	states, _ := domain.Evaluate(domain.DefaultStates(), snap)

	assert.Equal(t, 5, stateOf(t, states, domain.KindEarlyBird).Current)
	assert.True(t, stateOf(t, states, domain.KindEarlyBird).Unlocked)
	assert.Equal(t, 2, stateOf(t, states, domain.KindJournalWriter).Current)
	assert.True(t, stateOf(t, states, domain.KindBreathingMaster).Unlocked)
	assert.Equal(t, 12, stateOf(t, states, domain.KindChatExplorer).Current)
	assert.False(t, stateOf(t, states, domain.KindChatExplorer).Unlocked)
}

func TestEvaluate_UnlockedStatesAreFrozen(t *testing.T) {
	unlockedAt := refNow.AddDate(0, -1, 0)
	states := domain.DefaultStates()
	states[0] = domain.AchievementState{DefinitionID: domain.KindFirstEntry, Current: 1, Unlocked: true, UnlockedAt: &unlockedAt}
	states[1] = domain.AchievementState{DefinitionID: domain.KindWeekStreak, Current: 9, Unlocked: true, UnlockedAt: &unlockedAt}

	out, newly := domain.Evaluate(states, domain.ActivitySnapshot{Now: refNow})
	assert.Empty(t, newly)
	assert.Equal(t, states[0], out[0])
	week := stateOf(t, out, domain.KindWeekStreak)
	assert.True(t, week.Unlocked)
	assert.Equal(t, 9, week.Current)
	assert.True(t, week.UnlockedAt.Equal(unlockedAt))
}

func TestEvaluate_IdempotentAndDoesNotMutateInput(t *testing.T) {
	in := domain.DefaultStates()
	snap := domain.ActivitySnapshot{Moods: daily(7, 5), BreathingSessions: 3, Now: refNow}

	first, newly := domain.Evaluate(in, snap)
	require.NotEmpty(t, newly)
	assert.Equal(t, domain.DefaultStates(), in)

	second, newly := domain.Evaluate(first, domain.ActivitySnapshot{Moods: snap.Moods, BreathingSessions: 3, Now: refNow.Add(time.Minute)})
	assert.Empty(t, newly)
	assert.Equal(t, first, second)
}
