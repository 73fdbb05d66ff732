package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"armonia/internal/domain"
	"armonia/internal/logger"
)

// Demo account credentials.
const (
	DemoEmail    = "demo@armonia.com"
	DemoPassword = "demo123"
	DemoName     = "Demo User"
)

// DemoSeeder creates the demo account with a few days of activity.
type DemoSeeder struct {
	Users     domain.UserRepository
	Moods     domain.MoodRepository
	Breathing domain.BreathingRepository
	Chat      domain.ChatRepository
	Progress  Evaluator
	Log       *logger.Logger
	Now       func() time.Time
}

type demoMood struct {
	daysAgo int
	mood    string
	journal string
}

var demoMoods = []demoMood{
	{1, "happy", "Had a productive day at work and went for a walk in the park."},
	{2, "content", "A calm day. I read for a while before bed."},
	{3, "peaceful", "Meditated in the morning, felt centered all day."},
	{4, "down", "Tired and a bit overwhelmed by deadlines."},
	{5, "excited", "Started a new project I'm looking forward to."},
}

var demoBreathing = []struct {
	daysAgo         int
	durationSeconds int
	cycles          int
}{
	{1, 280, 5},
	{2, 168, 3},
	{4, 448, 8},
}

var demoChat = []struct {
	sender  domain.Sender
	content string
}{
	{domain.SenderUser, "Hi, I've been feeling a bit stressed this week."},
	{domain.SenderAI, keywordReply("stressed")},
	{domain.SenderUser, "Thanks, I'll try it tonight."},
	{domain.SenderAI, keywordReply("thanks")},
}

// Seed creates the demo account and fills each of its activity logs that is
// still empty, so a run that failed partway is completed by the next one. It
// reports whether anything was written.
func (d *DemoSeeder) Seed(ctx context.Context) (bool, error) {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	user, created, err := d.demoUser(ctx)
	if err != nil {
		return false, err
	}
	at := now()
	wrote := created

	moods, err := d.Moods.ListMoodEntries(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("read demo moods: %w", err)
	}
	if len(moods) == 0 {
		for _, m := range demoMoods {
			kind, _ := domain.LookupMood(m.mood)
			day := at.AddDate(0, 0, -m.daysAgo)
			entry := domain.MoodEntry{
				ID:          uuid.NewString(),
				MoodValue:   kind.Value,
				MoodName:    kind.Name,
				JournalText: m.journal,
				Date:        day.Format(domain.DayLayout),
				TimestampMs: day.UnixMilli(),
			}
			if err := d.Moods.AddMoodEntry(ctx, user.ID, entry); err != nil {
				return false, fmt.Errorf("seed mood: %w", err)
			}
		}
		wrote = true
	}

	sessions, err := d.Breathing.ListBreathingSessions(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("read demo breathing: %w", err)
	}
	if len(sessions) == 0 {
		for _, b := range demoBreathing {
			session := domain.BreathingSession{
				ID:              uuid.NewString(),
				CompletedAt:     at.AddDate(0, 0, -b.daysAgo).UTC(),
				DurationSeconds: b.durationSeconds,
				Cycles:          b.cycles,
			}
			if err := d.Breathing.AddBreathingSession(ctx, user.ID, session); err != nil {
				return false, fmt.Errorf("seed breathing: %w", err)
			}
		}
		wrote = true
	}

	history, err := d.Chat.ListChatMessages(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("read demo chat: %w", err)
	}
	if len(history) == 0 {
		msgs := make([]domain.ChatMessage, 0, len(demoChat))
		start := at.Add(-2 * time.Hour)
		for i, c := range demoChat {
			msgs = append(msgs, domain.ChatMessage{
				ID:          uuid.NewString(),
				Content:     c.content,
				Sender:      c.sender,
				TimestampMs: start.Add(time.Duration(i) * time.Minute).UnixMilli(),
			})
		}
		if err := d.Chat.AppendChatMessages(ctx, user.ID, msgs...); err != nil {
			return false, fmt.Errorf("seed chat: %w", err)
		}
		wrote = true
	}

	if !wrote {
		return false, nil
	}
	if d.Progress != nil {
		if _, err := d.Progress.Evaluate(ctx, user.ID); err != nil {
			return false, fmt.Errorf("evaluate demo progress: %w", err)
		}
	}
	log.Info("demo account seeded", "email", DemoEmail, "user_id", user.ID, "created", created)
	return true, nil
}

// demoUser returns the demo account, creating it when missing.
func (d *DemoSeeder) demoUser(ctx context.Context) (*domain.User, bool, error) {
	user, err := d.Users.GetByEmail(ctx, DemoEmail)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("look up demo user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	user, err = d.Users.Create(ctx, DemoEmail, DemoName, string(hash))
	if errors.Is(err, domain.ErrConflict) {
		user, err = d.Users.GetByEmail(ctx, DemoEmail)
		if err != nil {
			return nil, false, fmt.Errorf("look up demo user: %w", err)
		}
		return user, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create demo user: %w", err)
	}
	return user, true, nil
}
