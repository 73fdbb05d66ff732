package domain

import "time"

// Category groups achievements for display.
type Category string

const (
	CategoryConsistency Category = "consistency"
	CategoryImprovement Category = "improvement"
	CategoryExploration Category = "exploration"
	CategoryMilestone   Category = "milestone"
)

// Rarity is the four-tier classification that determines an achievement's XP.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// XP returns the experience value of an unlocked achievement of this rarity.
func (r Rarity) XP() int {
	switch r {
	case RarityCommon:
		return 10
	case RarityRare:
		return 25
	case RarityEpic:
		return 50
	case RarityLegendary:
		return 100
	default:
		return 0
	}
}

// AchievementKind is the closed set of achievements. Its string value is the
// stable id used in persisted state.
type AchievementKind string

const (
	KindFirstEntry      AchievementKind = "first_entry"
	KindWeekStreak      AchievementKind = "week_streak"
	KindMonthStreak     AchievementKind = "month_streak"
	KindHundredEntries  AchievementKind = "hundred_entries"
	KindMoodImprovement AchievementKind = "mood_improvement"
	KindPositiveWeek    AchievementKind = "positive_week"
	KindBreathingMaster AchievementKind = "breathing_master"
	KindChatExplorer    AchievementKind = "chat_explorer"
	KindJournalWriter   AchievementKind = "journal_writer"
	KindPerfectWeek     AchievementKind = "perfect_week"
	KindEarlyBird       AchievementKind = "early_bird"
)

// AchievementDefinition is a static catalog entry.
type AchievementDefinition struct {
	Kind        AchievementKind `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Category    Category        `json:"category"`
	Requirement int             `json:"requirement"`
	Rarity      Rarity          `json:"rarity"`
}

var catalog = []AchievementDefinition{
	{KindFirstEntry, "First Step", "Log your first mood", "🌱", CategoryMilestone, 1, RarityCommon},
	{KindWeekStreak, "Weekly Consistency", "Log your mood 7 days in a row", "📅", CategoryConsistency, 7, RarityRare},
	{KindMonthStreak, "Consistency Master", "Log your mood 30 days in a row", "🏆", CategoryConsistency, 30, RarityEpic},
	{KindHundredEntries, "Centenarian", "Log 100 mood entries", "💯", CategoryMilestone, 100, RarityEpic},
	{KindMoodImprovement, "Emotional Rise", "Raise your average mood by one point", "📈", CategoryImprovement, 1, RarityRare},
	{KindPositiveWeek, "Positive Week", "Keep an average mood of 4 or more for a week", "☀️", CategoryImprovement, 1, RarityRare},
	{KindBreathingMaster, "Breathing Master", "Complete 50 breathing sessions", "🫁", CategoryExploration, 50, RarityEpic},
	{KindChatExplorer, "Conversationalist", "Send 50 messages to the assistant", "💬", CategoryExploration, 50, RarityCommon},
	{KindJournalWriter, "Emotional Writer", "Write 20 journal reflections", "📝", CategoryExploration, 20, RarityRare},
	{KindPerfectWeek, "Perfect Week", "Log every day of a week with a mood of 4 or more", "✨", CategoryMilestone, 1, RarityLegendary},
	{KindEarlyBird, "Early Bird", "Log your mood before 8 AM five times", "🌅", CategoryConsistency, 5, RarityRare},
}

// Catalog returns every achievement definition in display order.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Definition looks up the catalog entry for kind.
func Definition(kind AchievementKind) (AchievementDefinition, bool) {
	for _, d := range catalog {
		if d.Kind == kind {
			return d, true
		}
	}
	return AchievementDefinition{}, false
}

// AchievementState is one user's progress on one definition. Once Unlocked is
// true it never reverts, and UnlockedAt is set only on that transition.
type AchievementState struct {
	DefinitionID AchievementKind `json:"definitionId"`
	Current      int             `json:"current"`
	Unlocked     bool            `json:"unlocked"`
	UnlockedAt   *time.Time      `json:"unlockedAt,omitempty"`
}

// DefaultStates returns the full catalog at zero progress.
func DefaultStates() []AchievementState {
	out := make([]AchievementState, len(catalog))
	for i, d := range catalog {
		out[i] = AchievementState{DefinitionID: d.Kind}
	}
	return out
}

// AchievementView joins a definition with a user's state for presentation.
type AchievementView struct {
	AchievementDefinition
	Current    int        `json:"current"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// Views joins states with their definitions, skipping unknown ids.
func Views(states []AchievementState) []AchievementView {
	out := make([]AchievementView, 0, len(states))
	for _, st := range states {
		def, ok := Definition(st.DefinitionID)
		if !ok {
			continue
		}
		out = append(out, AchievementView{
			AchievementDefinition: def,
			Current:               st.Current,
			Unlocked:              st.Unlocked,
			UnlockedAt:            st.UnlockedAt,
		})
	}
	return out
}
