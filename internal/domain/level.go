package domain

import "math"

// levelThreshold is one row of the ascending level table.
type levelThreshold struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	MinXP int    `json:"minXp"`
	Color string `json:"color"`
}

var levelTable = []levelThreshold{
	{1, "Beginner", 0, "#6b7280"},
	{2, "Explorer", 100, "#22c55e"},
	{3, "Practitioner", 250, "#3b82f6"},
	{4, "Expert", 500, "#a855f7"},
	{5, "Master", 1000, "#eab308"},
	{6, "Wellness Guru", 2000, "#ec4899"},
	{7, "Spiritual Guide", 3500, "#6366f1"},
	{8, "Enlightened", 5000, "#f97316"},
}

// UserLevel is derived from the XP of unlocked achievements; it is never
// mutated independently.
type UserLevel struct {
	Level           int     `json:"level"`
	Title           string  `json:"title"`
	TotalXP         int     `json:"totalXp"`
	ProgressPercent float64 `json:"progressPercent"`
	XPToNext        int     `json:"xpToNext"`
	Color           string  `json:"color"`
}

// TotalXP sums the rarity XP of unlocked states.
func TotalXP(states []AchievementState) int {
	total := 0
	for _, st := range states {
		if !st.Unlocked {
			continue
		}
		if def, ok := Definition(st.DefinitionID); ok {
			total += def.Rarity.XP()
		}
	}
	return total
}

// ComputeLevel maps totalXP to the highest level whose threshold it reaches.
// The top level has no next threshold and always reports 100% progress.
func ComputeLevel(totalXP int) UserLevel {
	if totalXP < 0 {
		totalXP = 0
	}
	idx := 0
	for i, t := range levelTable {
		if t.MinXP <= totalXP {
			idx = i
		}
	}
	cur := levelTable[idx]
	lvl := UserLevel{Level: cur.Level, Title: cur.Title, TotalXP: totalXP, Color: cur.Color}

	if idx == len(levelTable)-1 {
		lvl.ProgressPercent = 100
		return lvl
	}
	next := levelTable[idx+1]
	pct := float64(totalXP-cur.MinXP) / float64(next.MinXP-cur.MinXP) * 100
	lvl.ProgressPercent = math.Min(math.Max(pct, 0), 100)
	lvl.XPToNext = next.MinXP - totalXP
	return lvl
}

// LevelFor computes the level for a set of states.
func LevelFor(states []AchievementState) UserLevel {
	return ComputeLevel(TotalXP(states))
}
