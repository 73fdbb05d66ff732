package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armonia/internal/adapter/kvrepo"
	"armonia/internal/adapter/memory"
)

type mockEvaluator struct {
	calls int
	fn    func(ctx context.Context, userID string) (*ProgressResult, error)
}

func (m *mockEvaluator) Evaluate(ctx context.Context, userID string) (*ProgressResult, error) {
	m.calls++
	if m.fn != nil {
		return m.fn(ctx, userID)
	}
	return &ProgressResult{}, nil
}

func newTestMoodService(ev Evaluator) (*MoodService, *kvrepo.Store) {
	store := kvrepo.New(memory.New())
	svc := NewMoodService(store, ev, nil, time.UTC)
	svc.now = fixedClock
	return svc, store
}

func TestMoodService_Record(t *testing.T) {
	ctx := context.Background()
	ev := &mockEvaluator{}
	svc, store := newTestMoodService(ev)

	res, err := svc.Record(ctx, "u1", " Happy ", "  a good day  ", "")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Entry.MoodValue)
	assert.Equal(t, "Happy", res.Entry.MoodName)
	assert.Equal(t, "a good day", res.Entry.JournalText)
	assert.Equal(t, "2026-03-15", res.Entry.Date)
	assert.Equal(t, testNow.UnixMilli(), res.Entry.TimestampMs)
	assert.NotNil(t, res.Progress)
	assert.Equal(t, 1, ev.calls)

	stored, err := store.ListMoodEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res.Entry, stored[0])
}

func TestMoodService_Record_Validation(t *testing.T) {
	ev := &mockEvaluator{}
	svc, _ := newTestMoodService(ev)

	tests := []struct {
		name    string
		mood    string
		journal string
		date    string
		want    error
	}{
		{"unknown mood", "ecstatic", "", "", ErrUnknownMood},
		{"bad date", "happy", "", "15/03/2026", ErrInvalidDate},
		{"journal too long", "happy", strings.Repeat("x", 5001), "", ErrJournalTooLong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), "u1", tc.mood, tc.journal, tc.date)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, ev.calls, "rejected input must not trigger evaluation")
}

func TestMoodService_Record_EvaluationFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	ev := &mockEvaluator{fn: func(ctx context.Context, userID string) (*ProgressResult, error) {
		return nil, errors.New("state store down")
	}}
	svc, store := newTestMoodService(ev)

	res, err := svc.Record(ctx, "u1", "down", "", "2026-03-14")
	require.NoError(t, err)
	assert.Nil(t, res.Progress)

	stored, err := store.ListMoodEntries(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMoodService_ListRecent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestMoodService(nil)

	empty, err := svc.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := 0; i < 4; i++ {
		addMood(t, store, "u1", testNow.AddDate(0, 0, -i), 3)
	}
	recent, err := svc.ListRecent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Greater(t, recent[0].TimestampMs, recent[1].TimestampMs)

	all, err := svc.ListRecent(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMoodService_StatsAndChart(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestMoodService(nil)

	summary, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, summary.Stats)
	assert.Zero(t, summary.Streak)

	for i := 0; i < 3; i++ {
		addMood(t, store, "u1", testNow.AddDate(0, 0, -i), 4)
	}
	addMood(t, store, "u1", testNow.AddDate(0, 0, -40), 1)

	summary, err = svc.Stats(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, summary.Stats)
	assert.Equal(t, 4, summary.Stats.TotalEntries)
	assert.Equal(t, 3, summary.Stats.Last7DaysCount)
	assert.Equal(t, 3, summary.Streak)

	points, err := svc.Chart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestBreathingService(t *testing.T) {
	ctx := context.Background()
	store := kvrepo.New(memory.New())
	ev := &mockEvaluator{}
	svc := NewBreathingService(store, ev, nil)

	_, err := svc.Record(ctx, "u1", 0, 3)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = svc.Record(ctx, "u1", 60, -1)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Zero(t, ev.calls)

	svc.now = func() time.Time { return testNow.Add(-time.Hour) }
	_, err = svc.Record(ctx, "u1", 280, 5)
	require.NoError(t, err)
	svc.now = fixedClock
	res, err := svc.Record(ctx, "u1", 168, 3)
	require.NoError(t, err)
	assert.Equal(t, 168, res.Session.DurationSeconds)
	assert.NotNil(t, res.Progress)
	assert.Equal(t, 2, ev.calls)

	sessions, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 168, sessions[0].DurationSeconds)

	none, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
