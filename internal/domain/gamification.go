package domain

import (
	"context"
	"fmt"
)

// MaxRecentUnlocks bounds the recent-unlocks view.
const MaxRecentUnlocks = 5

// GamificationRecord is the per-user gamification state, persisted as one unit.
type GamificationRecord struct {
	Achievements  []AchievementState `json:"achievements"`
	UserLevel     UserLevel          `json:"userLevel"`
	RecentUnlocks []AchievementKind  `json:"recentUnlocks,omitempty"`
}

// GamificationRepository is the port for gamification state. Load returns
// ErrNotFound when no record exists and wraps ErrMalformedState when the
// stored record cannot be decoded or fails Validate.
type GamificationRepository interface {
	LoadGamification(ctx context.Context, userID string) (*GamificationRecord, error)
	SaveGamification(ctx context.Context, userID string, rec GamificationRecord) error
}

// Validate checks the structural invariants of a stored record.
func (r *GamificationRecord) Validate() error {
	seen := make(map[AchievementKind]bool, len(r.Achievements))
	for _, st := range r.Achievements {
		if st.DefinitionID == "" {
			return fmt.Errorf("%w: achievement without id", ErrMalformedState)
		}
		if seen[st.DefinitionID] {
			return fmt.Errorf("%w: duplicate achievement %q", ErrMalformedState, st.DefinitionID)
		}
		seen[st.DefinitionID] = true
		if st.Current < 0 {
			return fmt.Errorf("%w: negative progress for %q", ErrMalformedState, st.DefinitionID)
		}
		if st.Unlocked && st.UnlockedAt == nil {
			return fmt.Errorf("%w: %q unlocked without timestamp", ErrMalformedState, st.DefinitionID)
		}
	}
	return nil
}

// Reconcile aligns stored states with the catalog: the result is in catalog
// order, catalog entries missing from stored start at zero progress, and
// stored ids no longer in the catalog are returned as dropped.
func Reconcile(stored []AchievementState) (states []AchievementState, dropped []AchievementKind) {
	byKind := make(map[AchievementKind]AchievementState, len(stored))
	for _, st := range stored {
		if _, ok := Definition(st.DefinitionID); !ok {
			dropped = append(dropped, st.DefinitionID)
			continue
		}
		byKind[st.DefinitionID] = st
	}

	states = make([]AchievementState, 0, len(catalog))
	for _, d := range catalog {
		if st, ok := byKind[d.Kind]; ok {
			states = append(states, st)
			continue
		}
		states = append(states, AchievementState{DefinitionID: d.Kind})
	}
	return states, dropped
}

// PushRecent prepends newly unlocked kinds to prev and truncates the result
// to MaxRecentUnlocks. Unknown kinds in prev are discarded.
func PushRecent(prev, newly []AchievementKind) []AchievementKind {
	out := make([]AchievementKind, 0, MaxRecentUnlocks)
	for _, k := range newly {
		if len(out) == MaxRecentUnlocks {
			return out
		}
		out = append(out, k)
	}
	for _, k := range prev {
		if len(out) == MaxRecentUnlocks {
			break
		}
		if _, ok := Definition(k); ok {
			out = append(out, k)
		}
	}
	return out
}
