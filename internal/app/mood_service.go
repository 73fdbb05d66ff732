package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"armonia/internal/domain"
	"armonia/internal/logger"
)

const maxJournalLength = 5000

var (
	// ErrUnknownMood indicates a mood id outside the five-step scale.
	ErrUnknownMood = errors.New("unknown mood")
	// ErrInvalidDate indicates a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	// ErrJournalTooLong indicates a journal text over the size limit.
	ErrJournalTooLong = errors.New("journal text too long")
)

// MoodRecordResult is the stored entry plus the evaluation it triggered.
type MoodRecordResult struct {
	Entry    domain.MoodEntry `json:"entry"`
	Progress *ProgressResult  `json:"progress,omitempty"`
}

// MoodSummary combines the weekly statistics with the current streak. Stats
// is nil when the log is empty.
type MoodSummary struct {
	Stats  *domain.MoodStats `json:"stats"`
	Streak int               `json:"streak"`
}

// MoodService encapsulates mood-logging use cases.
type MoodService struct {
	repo     domain.MoodRepository
	progress Evaluator
	log      *logger.Logger
	now      func() time.Time
	loc      *time.Location
}

// NewMoodService creates a MoodService. progress may be nil to skip evaluation.
func NewMoodService(repo domain.MoodRepository, progress Evaluator, log *logger.Logger, loc *time.Location) *MoodService {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &MoodService{repo: repo, progress: progress, log: log, now: time.Now, loc: loc}
}

// Record validates and stores a mood entry, then evaluates progress. An empty
// date means today in the service's location.
func (s *MoodService) Record(ctx context.Context, userID, moodID, journal, date string) (*MoodRecordResult, error) {
	kind, ok := domain.LookupMood(strings.ToLower(strings.TrimSpace(moodID)))
	if !ok {
		return nil, ErrUnknownMood
	}
	journal = strings.TrimSpace(journal)
	if utf8.RuneCountInString(journal) > maxJournalLength {
		return nil, ErrJournalTooLong
	}

	now := s.now().In(s.loc)
	if date == "" {
		date = now.Format(domain.DayLayout)
	} else if _, err := time.ParseInLocation(domain.DayLayout, date, s.loc); err != nil {
		return nil, ErrInvalidDate
	}

	entry := domain.MoodEntry{
		ID:          uuid.NewString(),
		MoodValue:   kind.Value,
		MoodName:    kind.Name,
		JournalText: journal,
		Date:        date,
		TimestampMs: now.UnixMilli(),
	}
	if err := s.repo.AddMoodEntry(ctx, userID, entry); err != nil {
		return nil, err
	}
	return &MoodRecordResult{Entry: entry, Progress: evaluateAfterWrite(ctx, s.progress, s.log, userID)}, nil
}

// ListRecent returns up to limit entries, newest first. limit <= 0 means all.
func (s *MoodService) ListRecent(ctx context.Context, userID string, limit int) ([]domain.MoodEntry, error) {
	entries, err := s.repo.ListMoodEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TimestampMs > entries[j].TimestampMs
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []domain.MoodEntry{}
	}
	return entries, nil
}

// Stats returns the weekly statistics and the current streak.
func (s *MoodService) Stats(ctx context.Context, userID string) (*MoodSummary, error) {
	entries, err := s.repo.ListMoodEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	return &MoodSummary{
		Stats:  domain.ComputeStats(entries, now),
		Streak: domain.Streak(entries, now),
	}, nil
}

// Chart returns the last 30 days of entries as chart points, oldest first.
func (s *MoodService) Chart(ctx context.Context, userID string) ([]domain.ChartPoint, error) {
	entries, err := s.repo.ListMoodEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.Chart(entries, s.now().In(s.loc)), nil
}
