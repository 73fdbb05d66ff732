package kvrepo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"armonia/internal/domain"
)

const usersKey = "users"

func sessionKey(token string) string { return "session:" + token }

// Users implements domain.UserRepository as a single JSON list of accounts.
type Users struct {
	kv  domain.KVStore
	mu  sync.Mutex
	now func() time.Time
}

var _ domain.UserRepository = (*Users)(nil)

func NewUsers(kv domain.KVStore) *Users {
	return &Users{kv: kv, now: time.Now}
}

func (u *Users) list(ctx context.Context) ([]domain.User, error) {
	return loadList[domain.User](ctx, u.kv, usersKey)
}

// GetByEmail retrieves a user by email, case-insensitively.
func (u *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := u.list(ctx)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (u *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := u.list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create adds a user with a fresh UUID.
func (u *Users) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := u.list(ctx)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	for _, existing := range users {
		if existing.Email == email {
			return nil, domain.ErrConflict
		}
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    u.now().UTC(),
	}
	if err := saveJSON(ctx, u.kv, usersKey, append(users, user)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) Count(ctx context.Context) (int, error) {
	users, err := u.list(ctx)
	return len(users), err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Sessions implements domain.SessionRepository with one key per token.
type Sessions struct {
	kv  domain.KVStore
	now func() time.Time
}

var _ domain.SessionRepository = (*Sessions)(nil)

func NewSessions(kv domain.KVStore) *Sessions {
	return &Sessions{kv: kv, now: time.Now}
}

func (s *Sessions) Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error {
	return saveJSON(ctx, s.kv, sessionKey(token), domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	})
}

// GetByToken returns the session, or domain.ErrNotFound.
func (s *Sessions) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var sess domain.Session
	raw, err := s.kv.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, err
	}
	if err := decode(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	err := s.kv.Delete(ctx, sessionKey(token))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
