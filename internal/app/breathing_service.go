package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"armonia/internal/domain"
	"armonia/internal/logger"
)

// ErrInvalidSession indicates a breathing session without positive duration or cycles.
var ErrInvalidSession = errors.New("duration and cycles must be > 0")

// BreathingRecordResult is the stored session plus the evaluation it triggered.
type BreathingRecordResult struct {
	Session  domain.BreathingSession `json:"session"`
	Progress *ProgressResult         `json:"progress,omitempty"`
}

// BreathingService encapsulates guided-breathing use cases.
type BreathingService struct {
	repo     domain.BreathingRepository
	progress Evaluator
	log      *logger.Logger
	now      func() time.Time
}

func NewBreathingService(repo domain.BreathingRepository, progress Evaluator, log *logger.Logger) *BreathingService {
	if log == nil {
		log = logger.Nop()
	}
	return &BreathingService{repo: repo, progress: progress, log: log, now: time.Now}
}

// Record stores a completed session and evaluates progress.
func (s *BreathingService) Record(ctx context.Context, userID string, durationSeconds, cycles int) (*BreathingRecordResult, error) {
	if durationSeconds <= 0 || cycles <= 0 {
		return nil, ErrInvalidSession
	}
	session := domain.BreathingSession{
		ID:              uuid.NewString(),
		CompletedAt:     s.now().UTC(),
		DurationSeconds: durationSeconds,
		Cycles:          cycles,
	}
	if err := s.repo.AddBreathingSession(ctx, userID, session); err != nil {
		return nil, err
	}
	return &BreathingRecordResult{Session: session, Progress: evaluateAfterWrite(ctx, s.progress, s.log, userID)}, nil
}

// List returns every session, newest first.
func (s *BreathingService) List(ctx context.Context, userID string) ([]domain.BreathingSession, error) {
	sessions, err := s.repo.ListBreathingSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CompletedAt.After(sessions[j].CompletedAt)
	})
	if sessions == nil {
		sessions = []domain.BreathingSession{}
	}
	return sessions, nil
}
