package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"armonia/internal/domain"
)

func TestRarityXP(t *testing.T) {
	assert.Equal(t, 10, domain.RarityCommon.XP())
	assert.Equal(t, 25, domain.RarityRare.XP())
	assert.Equal(t, 50, domain.RarityEpic.XP())
	assert.Equal(t, 100, domain.RarityLegendary.XP())
	assert.Equal(t, 0, domain.Rarity("mythic").XP())
}

func TestComputeLevel(t *testing.T) {
	tests := []struct {
		name     string
		xp       int
		level    int
		progress float64
		toNext   int
	}{
		{"zero", 0, 1, 0, 100},
		{"three commons", 30, 1, 30, 70},
		{"exact threshold", 100, 2, 0, 150},
		{"mid level", 375, 3, 50, 125},
		{"just below top", 4999, 7, float64(4999-3500) / 1500 * 100, 1},
		{"top", 5000, 8, 100, 0},
		{"beyond top", 12000, 8, 100, 0},
		{"negative clamps to zero", -5, 1, 0, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lvl := domain.ComputeLevel(tc.xp)
			assert.Equal(t, tc.level, lvl.Level)
			assert.InDelta(t, tc.progress, lvl.ProgressPercent, 0.0001)
			assert.Equal(t, tc.toNext, lvl.XPToNext)
			assert.NotEmpty(t, lvl.Title)
			assert.NotEmpty(t, lvl.Color)
		})
	}
}

func TestTotalXP_CountsOnlyUnlocked(t *testing.T) {
	states := domain.DefaultStates()
	for i := range states {
		switch states[i].DefinitionID {
		case domain.KindFirstEntry, domain.KindChatExplorer, domain.KindPerfectWeek:
			states[i].Unlocked = true
			at := refNow
			states[i].UnlockedAt = &at
		case domain.KindWeekStreak:
			states[i].Current = 6
		}
	}
	assert.Equal(t, 10+10+100, domain.TotalXP(states))
	assert.Equal(t, 2, domain.LevelFor(states).Level)
}
