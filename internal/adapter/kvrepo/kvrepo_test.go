package kvrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armonia/internal/adapter/memory"
	"armonia/internal/domain"
)

func TestMoodLog_NewestFirstAndScoped(t *testing.T) {
	kv := memory.New()
	s := New(kv)
	ctx := context.Background()

	entries, err := s.ListMoodEntries(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.AddMoodEntry(ctx, "u1", domain.MoodEntry{ID: "a", MoodValue: 3, TimestampMs: 1}))
	require.NoError(t, s.AddMoodEntry(ctx, "u1", domain.MoodEntry{ID: "b", MoodValue: 4, TimestampMs: 2}))

	entries, err = s.ListMoodEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "a", entries[1].ID)

	other, err := s.ListMoodEntries(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	raw, err := kv.Get(ctx, "moods:u1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"moodValue":4`)
	assert.Contains(t, raw, `"timestampMs":2`)
}

func TestBreathingAndChat(t *testing.T) {
	s := New(memory.New())
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddBreathingSession(ctx, "u1", domain.BreathingSession{ID: "1", CompletedAt: at, DurationSeconds: 56, Cycles: 1}))
	require.NoError(t, s.AddBreathingSession(ctx, "u1", domain.BreathingSession{ID: "2", CompletedAt: at.Add(time.Hour), DurationSeconds: 112, Cycles: 2}))
	sessions, err := s.ListBreathingSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "2", sessions[0].ID)

	require.NoError(t, s.AppendChatMessages(ctx, "u1",
		domain.ChatMessage{ID: "m1", Content: "hi", Sender: domain.SenderUser, TimestampMs: 1},
		domain.ChatMessage{ID: "m2", Content: "hello", Sender: domain.SenderAI, TimestampMs: 2},
	))
	require.NoError(t, s.AppendChatMessages(ctx, "u1"))
	require.NoError(t, s.AppendChatMessages(ctx, "u1", domain.ChatMessage{ID: "m3", Sender: domain.SenderUser, TimestampMs: 3}))

	history, err := s.ListChatMessages(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "m1", history[0].ID)
	assert.Equal(t, "m3", history[2].ID)
	assert.Equal(t, 2, domain.CountUserMessages(history))
}

func TestGamification_RoundTrip(t *testing.T) {
	kv := memory.New()
	s := New(kv)
	ctx := context.Background()

	_, err := s.LoadGamification(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	states := domain.DefaultStates()
	states[0].Current = 1
	states[0].Unlocked = true
	states[0].UnlockedAt = &at
	rec := domain.GamificationRecord{
		Achievements:  states,
		UserLevel:     domain.LevelFor(states),
		RecentUnlocks: []domain.AchievementKind{domain.KindFirstEntry},
	}
	require.NoError(t, s.SaveGamification(ctx, "u1", rec))

	got, err := s.LoadGamification(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rec.UserLevel, got.UserLevel)
	assert.Equal(t, rec.RecentUnlocks, got.RecentUnlocks)
	require.NotNil(t, got.Achievements[0].UnlockedAt)
	assert.True(t, got.Achievements[0].UnlockedAt.Equal(at))

	raw, err := kv.Get(ctx, "gamification:u1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"definitionId":"first_entry"`)
	assert.Contains(t, raw, `"userLevel"`)
}

func TestGamification_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{oops"},
		{"wrong shape", `{"achievements":"x"}`},
		{"unlocked without timestamp", `{"achievements":[{"definitionId":"first_entry","current":1,"unlocked":true}]}`},
		{"duplicate ids", `{"achievements":[{"definitionId":"early_bird"},{"definitionId":"early_bird"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := memory.New()
			require.NoError(t, kv.Set(context.Background(), "gamification:u1", tc.raw))
			_, err := New(kv).LoadGamification(context.Background(), "u1")
			assert.True(t, errors.Is(err, domain.ErrMalformedState), "got %v", err)
		})
	}
}

func TestMalformedActivityLog(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), "moods:u1", "not json"))
	s := New(kv)

	_, err := s.ListMoodEntries(context.Background(), "u1")
	assert.True(t, errors.Is(err, domain.ErrMalformedState))

	require.NoError(t, s.AddMoodEntry(context.Background(), "u1", domain.MoodEntry{ID: "x"}))
	entries, err := s.ListMoodEntries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1, "writing replaces the undecodable log")
	assert.Equal(t, "x", entries[0].ID)
}

func TestMalformedActivityLog_AppendStartsOver(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, "breathing:u1", `[{"id":"a","durationSeconds":"long"}]`))
	require.NoError(t, kv.Set(ctx, "chat:u1", "{oops"))
	s := New(kv)

	require.NoError(t, s.AddBreathingSession(ctx, "u1", domain.BreathingSession{ID: "b", DurationSeconds: 60, Cycles: 1}))
	sessions, err := s.ListBreathingSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "b", sessions[0].ID)

	require.NoError(t, s.AppendChatMessages(ctx, "u1", domain.ChatMessage{ID: "m", Sender: domain.SenderUser}))
	msgs, err := s.ListChatMessages(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestUsers(t *testing.T) {
	users := NewUsers(memory.New())
	ctx := context.Background()

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	u, err := users.Create(ctx, " Ana@Example.com ", "Ana", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = users.Create(ctx, "ANA@example.com", "Other", "hash")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := users.GetByEmail(ctx, "ana@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	_, err = users.GetByID(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = users.GetByEmail(ctx, "nope@example.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	n, err = users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessions(t *testing.T) {
	sessions := NewSessions(memory.New())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, sessions.Create(ctx, "u1", "tok", "ua", "10.0.0.1", exp))
	s, err := sessions.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "ua", s.UserAgent)
	assert.True(t, s.ExpiresAt.Equal(exp))

	require.NoError(t, sessions.Delete(ctx, "tok"))
	_, err = sessions.GetByToken(ctx, "tok")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, sessions.Delete(ctx, "tok"))
}
