package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"armonia/internal/domain"
	"armonia/internal/logger"
)

const maxMessageLength = 2000

var (
	// ErrEmptyMessage indicates a blank chat message.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrMessageTooLong indicates a chat message over the size limit.
	ErrMessageTooLong = errors.New("message too long")
)

// Responder produces the assistant's reply to message given the prior history.
type Responder interface {
	Reply(ctx context.Context, history []domain.ChatMessage, message string) (string, error)
}

// Reply sources reported in ChatSendResult and metrics.
const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

// ChatSendResult holds both stored messages and the evaluation they triggered.
type ChatSendResult struct {
	UserMessage domain.ChatMessage `json:"userMessage"`
	Reply       domain.ChatMessage `json:"reply"`
	Source      string             `json:"source"`
	Progress    *ProgressResult    `json:"progress,omitempty"`
}

// ChatOptions bounds calls to the generative backend.
type ChatOptions struct {
	Timeout       time.Duration
	RatePerMinute float64
	Burst         int
}

// ChatService encapsulates the assistant conversation.
type ChatService struct {
	repo     domain.ChatRepository
	ai       Responder
	fallback Responder
	progress Evaluator
	log      *logger.Logger
	timeout  time.Duration
	limiters *userLimiters
	now      func() time.Time
}

// NewChatService creates a ChatService. A nil ai answers every message with
// the keyword fallback.
func NewChatService(repo domain.ChatRepository, ai Responder, progress Evaluator, log *logger.Logger, opts ChatOptions) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &ChatService{
		repo:     repo,
		ai:       ai,
		fallback: KeywordResponder{},
		progress: progress,
		log:      log.With("service", "ChatService"),
		timeout:  opts.Timeout,
		limiters: newUserLimiters(opts.RatePerMinute, opts.Burst),
		now:      time.Now,
	}
}

// Send stores the user's message and the assistant's reply, then evaluates progress.
func (s *ChatService) Send(ctx context.Context, userID, content string) (*ChatSendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	history, err := s.repo.ListChatMessages(ctx, userID)
	if errors.Is(err, domain.ErrMalformedState) {
		s.log.Warn("chat history unreadable, starting a new conversation", "user_id", userID, "error", err)
		history, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	userMsg := domain.ChatMessage{
		ID:          uuid.NewString(),
		Content:     content,
		Sender:      domain.SenderUser,
		TimestampMs: s.now().UnixMilli(),
	}
	text, source := s.reply(ctx, userID, history, content)
	replyMsg := domain.ChatMessage{
		ID:          uuid.NewString(),
		Content:     text,
		Sender:      domain.SenderAI,
		TimestampMs: max(s.now().UnixMilli(), userMsg.TimestampMs),
	}

	if err := s.repo.AppendChatMessages(ctx, userID, userMsg, replyMsg); err != nil {
		return nil, err
	}
	return &ChatSendResult{
		UserMessage: userMsg,
		Reply:       replyMsg,
		Source:      source,
		Progress:    evaluateAfterWrite(ctx, s.progress, s.log, userID),
	}, nil
}

// History returns the whole conversation in order.
func (s *ChatService) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	msgs, err := s.repo.ListChatMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return msgs, nil
}

func (s *ChatService) reply(ctx context.Context, userID string, history []domain.ChatMessage, content string) (string, string) {
	if s.ai != nil {
		if s.limiters.allow(userID) {
			actx, cancel := context.WithTimeout(ctx, s.timeout)
			text, err := s.ai.Reply(actx, history, content)
			cancel()
			if err == nil && strings.TrimSpace(text) != "" {
				ChatRepliesTotal.WithLabelValues(SourceGemini).Inc()
				return text, SourceGemini
			}
			s.log.Warn("assistant reply failed, using fallback", "user_id", userID, "error", err)
		} else {
			s.log.Info("assistant rate limited, using fallback", "user_id", userID)
		}
	}
	text, _ := s.fallback.Reply(ctx, history, content)
	ChatRepliesTotal.WithLabelValues(SourceFallback).Inc()
	return text, SourceFallback
}

// userLimiters keeps one token bucket per user. The map is reset hourly so
// idle users do not accumulate.
type userLimiters struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time
}

func newUserLimiters(perMinute float64, burst int) *userLimiters {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &userLimiters{limit: limit, burst: burst, limiters: make(map[string]*rate.Limiter), lastCleanup: time.Now()}
}

func (l *userLimiters) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) > time.Hour {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter.Allow()
}
