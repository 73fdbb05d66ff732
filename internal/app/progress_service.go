package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"armonia/internal/domain"
	"armonia/internal/logger"
)

// ProgressResult is what an evaluation pass, or a read of the current state,
// returns to the presentation layer.
type ProgressResult struct {
	Achievements  []domain.AchievementView `json:"achievements"`
	UserLevel     domain.UserLevel         `json:"userLevel"`
	NewlyUnlocked []domain.AchievementView `json:"newlyUnlocked"`
	RecentUnlocks []domain.AchievementView `json:"recentUnlocks"`
}

// Evaluator runs an evaluation pass. Activity services call it after every
// write so that achievements follow the log.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string) (*ProgressResult, error)
}

var _ Evaluator = (*ProgressService)(nil)

// ProgressService derives achievements and levels from a user's activity log
// and persists them as one gamification record per user.
type ProgressService struct {
	moods     domain.MoodRepository
	breathing domain.BreathingRepository
	chat      domain.ChatRepository
	state     domain.GamificationRepository
	log       *logger.Logger
	locks     *userLocks
	now       func() time.Time
	loc       *time.Location
}

// ProgressOption customizes a ProgressService.
type ProgressOption func(*ProgressService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProgressOption {
	return func(s *ProgressService) { s.now = now }
}

// WithLocation sets the zone whose calendar days drive streaks and the
// early-bird hour.
func WithLocation(loc *time.Location) ProgressOption {
	return func(s *ProgressService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewProgressService creates a ProgressService over the given repositories.
func NewProgressService(
	moods domain.MoodRepository,
	breathing domain.BreathingRepository,
	chat domain.ChatRepository,
	state domain.GamificationRepository,
	log *logger.Logger,
	opts ...ProgressOption,
) *ProgressService {
	if log == nil {
		log = logger.Nop()
	}
	s := &ProgressService{
		moods:     moods,
		breathing: breathing,
		chat:      chat,
		state:     state,
		log:       log.With("service", "ProgressService"),
		locks:     newUserLocks(),
		now:       time.Now,
		loc:       time.Local,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// loadedState is the reconciled gamification state plus how it was obtained.
type loadedState struct {
	states    []domain.AchievementState
	recent    []domain.AchievementKind
	recovered bool
	// persist is false when the stored record could not be read at all, so a
	// pass must not overwrite it.
	persist bool
}

// Evaluate runs one evaluation pass for userID. Passes for the same user are
// serialized; a caller waiting for its turn gives up when ctx is done.
func (s *ProgressService) Evaluate(ctx context.Context, userID string) (*ProgressResult, error) {
	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		EvaluationsTotal.WithLabelValues("canceled").Inc()
		return nil, err
	}
	defer release()

	start := time.Now()
	defer func() { EvaluationDuration.Observe(time.Since(start).Seconds()) }()

	loaded := s.load(ctx, userID)

	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		EvaluationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	states, newly := domain.Evaluate(loaded.states, snap)
	level := domain.LevelFor(states)

	if loaded.persist {
		recent := domain.PushRecent(loaded.recent, newly)
		rec := domain.GamificationRecord{Achievements: states, UserLevel: level, RecentUnlocks: recent}
		if err := s.state.SaveGamification(ctx, userID, rec); err != nil {
			EvaluationsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		loaded.recent = recent
	} else {
		// Without the stored record there is no telling which unlocks are new.
		newly = nil
	}

	for _, k := range newly {
		if def, ok := domain.Definition(k); ok {
			UnlocksTotal.WithLabelValues(string(def.Rarity)).Inc()
		}
	}
	if len(newly) > 0 {
		s.log.Info("achievements unlocked", "user_id", userID, "kinds", newly, "level", level.Level, "total_xp", level.TotalXP)
	}
	if loaded.recovered {
		EvaluationsTotal.WithLabelValues("recovered").Inc()
	} else {
		EvaluationsTotal.WithLabelValues("ok").Inc()
	}

	return &ProgressResult{
		Achievements:  domain.Views(states),
		UserLevel:     level,
		NewlyUnlocked: viewsOf(states, newly),
		RecentUnlocks: viewsOf(states, loaded.recent),
	}, nil
}

// Snapshot returns the stored state without evaluating. The level is
// recomputed from the states so it always matches their XP.
func (s *ProgressService) Snapshot(ctx context.Context, userID string) (*ProgressResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded := s.load(ctx, userID)
	return &ProgressResult{
		Achievements:  domain.Views(loaded.states),
		UserLevel:     domain.LevelFor(loaded.states),
		NewlyUnlocked: []domain.AchievementView{},
		RecentUnlocks: viewsOf(loaded.states, loaded.recent),
	}, nil
}

// Achievements returns the current achievement views.
func (s *ProgressService) Achievements(ctx context.Context, userID string) ([]domain.AchievementView, error) {
	res, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return res.Achievements, nil
}

// Level returns the current level.
func (s *ProgressService) Level(ctx context.Context, userID string) (domain.UserLevel, error) {
	res, err := s.Snapshot(ctx, userID)
	if err != nil {
		return domain.UserLevel{}, err
	}
	return res.UserLevel, nil
}

// load reads the stored record, falling back to the default catalog when it
// is missing, malformed or unreadable.
func (s *ProgressService) load(ctx context.Context, userID string) loadedState {
	rec, err := s.state.LoadGamification(ctx, userID)
	switch {
	case err == nil:
		states, dropped := domain.Reconcile(rec.Achievements)
		if len(dropped) > 0 {
			s.log.Debug("dropped unknown achievements", "user_id", userID, "ids", dropped)
		}
		return loadedState{states: states, recent: rec.RecentUnlocks, persist: true}
	case errors.Is(err, domain.ErrNotFound):
		return loadedState{states: domain.DefaultStates(), persist: true}
	case errors.Is(err, domain.ErrMalformedState):
		s.log.Warn("malformed gamification state, starting from defaults", "user_id", userID, "error", err)
		StateRecoveriesTotal.WithLabelValues("malformed").Inc()
		return loadedState{states: domain.DefaultStates(), recovered: true, persist: true}
	default:
		s.log.Warn("gamification state unreadable, evaluating from defaults without saving", "user_id", userID, "error", err)
		StateRecoveriesTotal.WithLabelValues("unreadable").Inc()
		return loadedState{states: domain.DefaultStates(), recovered: true}
	}
}

// snapshot reads the three activity logs concurrently. A log that does not
// decode counts as empty for this pass; any other read error fails it.
func (s *ProgressService) snapshot(ctx context.Context, userID string) (domain.ActivitySnapshot, error) {
	snap := domain.ActivitySnapshot{Now: s.now().In(s.loc)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		moods, err := s.moods.ListMoodEntries(gctx, userID)
		snap.Moods = moods
		return s.tolerateMalformed(userID, "moods", err)
	})
	g.Go(func() error {
		sessions, err := s.breathing.ListBreathingSessions(gctx, userID)
		snap.BreathingSessions = len(sessions)
		return s.tolerateMalformed(userID, "breathing", err)
	})
	g.Go(func() error {
		msgs, err := s.chat.ListChatMessages(gctx, userID)
		snap.UserChatMessages = domain.CountUserMessages(msgs)
		return s.tolerateMalformed(userID, "chat", err)
	})
	if err := g.Wait(); err != nil {
		return domain.ActivitySnapshot{}, err
	}
	return snap, nil
}

func (s *ProgressService) tolerateMalformed(userID, name string, err error) error {
	if !errors.Is(err, domain.ErrMalformedState) {
		return err
	}
	s.log.Warn("malformed activity log, counting it as empty", "user_id", userID, "log", name, "error", err)
	StateRecoveriesTotal.WithLabelValues("malformed_activity").Inc()
	return nil
}

// viewsOf returns views for kinds, in the order given.
func viewsOf(states []domain.AchievementState, kinds []domain.AchievementKind) []domain.AchievementView {
	byKind := make(map[domain.AchievementKind]domain.AchievementState, len(states))
	for _, st := range states {
		byKind[st.DefinitionID] = st
	}
	picked := make([]domain.AchievementState, 0, len(kinds))
	for _, k := range kinds {
		if st, ok := byKind[k]; ok {
			picked = append(picked, st)
		}
	}
	return domain.Views(picked)
}
