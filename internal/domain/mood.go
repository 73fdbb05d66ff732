package domain

import (
	"context"
	"time"
)

// MoodKind is one of the selectable moods on the 1..5 scale.
type MoodKind struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Value int    `json:"value"`
}

var moodKinds = []MoodKind{
	{ID: "down", Name: "Down", Emoji: "😔", Value: 1},
	{ID: "content", Name: "Content", Emoji: "😊", Value: 2},
	{ID: "peaceful", Name: "Peaceful", Emoji: "😌", Value: 3},
	{ID: "happy", Name: "Happy", Emoji: "🤗", Value: 4},
	{ID: "excited", Name: "Excited", Emoji: "✨", Value: 5},
}

// MoodKinds returns the mood scale in ascending value order.
func MoodKinds() []MoodKind {
	out := make([]MoodKind, len(moodKinds))
	copy(out, moodKinds)
	return out
}

// LookupMood finds a mood kind by its id.
func LookupMood(id string) (MoodKind, bool) {
	for _, k := range moodKinds {
		if k.ID == id {
			return k, true
		}
	}
	return MoodKind{}, false
}

// MoodEntry is one immutable mood submission with an optional journal text.
type MoodEntry struct {
	ID          string `json:"id"`
	MoodValue   int    `json:"moodValue"`
	MoodName    string `json:"moodName"`
	JournalText string `json:"journalText"`
	Date        string `json:"date"`
	TimestampMs int64  `json:"timestampMs"`
}

// Time returns the entry's creation instant.
func (e MoodEntry) Time() time.Time {
	return time.UnixMilli(e.TimestampMs)
}

// MoodRepository is the port for the per-user mood log.
type MoodRepository interface {
	AddMoodEntry(ctx context.Context, userID string, entry MoodEntry) error
	ListMoodEntries(ctx context.Context, userID string) ([]MoodEntry, error)
}
