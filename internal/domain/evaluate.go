package domain

// Evaluate recomputes progress for every locked achievement and unlocks those
// that reach their requirement, stamping snap.Now as the unlock time.
// Unlocked states are copied through untouched. The input slice is not
// modified; the returned kinds are the achievements unlocked by this call, in
// the order of states.
func Evaluate(states []AchievementState, snap ActivitySnapshot) ([]AchievementState, []AchievementKind) {
	out := make([]AchievementState, len(states))
	var unlocked []AchievementKind

	for i, st := range states {
		out[i] = st
		if st.Unlocked {
			continue
		}
		def, ok := Definition(st.DefinitionID)
		if !ok {
			continue
		}
		metric, ok := Metric(def.Kind)
		if !ok {
			continue
		}

		current := metric(snap)
		out[i].Current = current
		if current >= def.Requirement {
			at := snap.Now
			out[i].Unlocked = true
			out[i].UnlockedAt = &at
			unlocked = append(unlocked, def.Kind)
		}
	}
	return out, unlocked
}
