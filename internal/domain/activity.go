package domain

import (
	"context"
	"time"
)

// BreathingSession records one completed guided-breathing exercise.
type BreathingSession struct {
	ID              string    `json:"id"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationSeconds int       `json:"durationSeconds"`
	Cycles          int       `json:"cycles"`
}

// BreathingRepository is the port for the append-only breathing log.
type BreathingRepository interface {
	AddBreathingSession(ctx context.Context, userID string, session BreathingSession) error
	ListBreathingSessions(ctx context.Context, userID string) ([]BreathingSession, error)
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one message of a user's conversation with the assistant.
type ChatMessage struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Sender      Sender `json:"sender"`
	TimestampMs int64  `json:"timestampMs"`
}

// ChatRepository is the port for the append-only chat log.
type ChatRepository interface {
	AppendChatMessages(ctx context.Context, userID string, msgs ...ChatMessage) error
	ListChatMessages(ctx context.Context, userID string) ([]ChatMessage, error)
}

// CountUserMessages counts messages sent by the user, ignoring assistant replies.
func CountUserMessages(msgs []ChatMessage) int {
	n := 0
	for _, m := range msgs {
		if m.Sender == SenderUser {
			n++
		}
	}
	return n
}
