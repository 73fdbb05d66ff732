// Package kvrepo implements the typed repositories on top of any
// domain.KVStore. Each per-user collection is one JSON document under a
// scoped key, matching the layout the web client used in local storage.
package kvrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"armonia/internal/domain"
)

// Key builders for the per-user documents.
func GamificationKey(userID string) string { return "gamification:" + userID }
func MoodsKey(userID string) string        { return "moods:" + userID }
func BreathingKey(userID string) string    { return "breathing:" + userID }
func ChatKey(userID string) string         { return "chat:" + userID }

// Store implements the activity and gamification repositories. Appends are
// read-modify-write cycles and are serialized by mu.
type Store struct {
	kv domain.KVStore
	mu sync.Mutex
}

var (
	_ domain.MoodRepository         = (*Store)(nil)
	_ domain.BreathingRepository    = (*Store)(nil)
	_ domain.ChatRepository         = (*Store)(nil)
	_ domain.GamificationRepository = (*Store)(nil)
)

// New wraps kv.
func New(kv domain.KVStore) *Store {
	return &Store{kv: kv}
}

// --- MoodRepository ---

// AddMoodEntry prepends entry, keeping the log newest first.
func (s *Store) AddMoodEntry(ctx context.Context, userID string, entry domain.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadForAppend[domain.MoodEntry](ctx, s.kv, MoodsKey(userID))
	if err != nil {
		return err
	}
	return saveJSON(ctx, s.kv, MoodsKey(userID), append([]domain.MoodEntry{entry}, entries...))
}

// ListMoodEntries returns the stored log, newest first. A missing log is empty.
func (s *Store) ListMoodEntries(ctx context.Context, userID string) ([]domain.MoodEntry, error) {
	return loadList[domain.MoodEntry](ctx, s.kv, MoodsKey(userID))
}

// --- BreathingRepository ---

// AddBreathingSession prepends session, keeping the log newest first.
func (s *Store) AddBreathingSession(ctx context.Context, userID string, session domain.BreathingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := loadForAppend[domain.BreathingSession](ctx, s.kv, BreathingKey(userID))
	if err != nil {
		return err
	}
	return saveJSON(ctx, s.kv, BreathingKey(userID), append([]domain.BreathingSession{session}, sessions...))
}

func (s *Store) ListBreathingSessions(ctx context.Context, userID string) ([]domain.BreathingSession, error) {
	return loadList[domain.BreathingSession](ctx, s.kv, BreathingKey(userID))
}

// --- ChatRepository ---

// AppendChatMessages appends msgs in conversation order.
func (s *Store) AppendChatMessages(ctx context.Context, userID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := loadForAppend[domain.ChatMessage](ctx, s.kv, ChatKey(userID))
	if err != nil {
		return err
	}
	return saveJSON(ctx, s.kv, ChatKey(userID), append(history, msgs...))
}

func (s *Store) ListChatMessages(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	return loadList[domain.ChatMessage](ctx, s.kv, ChatKey(userID))
}

// --- GamificationRepository ---

// LoadGamification returns domain.ErrNotFound when nothing is stored and an
// error wrapping domain.ErrMalformedState when the record does not decode or
// validate.
func (s *Store) LoadGamification(ctx context.Context, userID string) (*domain.GamificationRecord, error) {
	raw, err := s.kv.Get(ctx, GamificationKey(userID))
	if err != nil {
		return nil, err
	}
	var rec domain.GamificationRecord
	if err := decode(raw, &rec); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveGamification writes the whole record in one Set.
func (s *Store) SaveGamification(ctx context.Context, userID string, rec domain.GamificationRecord) error {
	return saveJSON(ctx, s.kv, GamificationKey(userID), rec)
}

// loadList decodes the JSON array under key. A missing key is an empty list.
func loadList[T any](ctx context.Context, kv domain.KVStore, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var out []T
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

// loadForAppend is loadList for writers. A document that no longer decodes is
// started over so that new activity can still be recorded.
func loadForAppend[T any](ctx context.Context, kv domain.KVStore, key string) ([]T, error) {
	out, err := loadList[T](ctx, kv, key)
	if errors.Is(err, domain.ErrMalformedState) {
		return nil, nil
	}
	return out, err
}

// decode unmarshals raw into out, reporting failures as malformed state.
func decode(raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
	}
	return nil
}

func saveJSON(ctx context.Context, kv domain.KVStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
