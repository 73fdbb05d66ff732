// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"armonia/internal/domain"
)

const (
	sessionTTL        = 24 * time.Hour
	minPasswordLength = 6
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a signup for an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword indicates a password below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)

// AuthService handles authentication and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Signup creates an account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, email, password, name, userAgent, ip string) (string, *domain.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return "", nil, ErrWeakPassword
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(addr.Address, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	user, err := s.users.Create(ctx, addr.Address, name, string(hash))
	if errors.Is(err, domain.ErrConflict) {
		return "", nil, ErrEmailTaken
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.openSession(ctx, user.ID, userAgent, ip)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.openSession(ctx, user.ID, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if !ConstantTimeCompare(session.UserAgent, userAgent) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// ValidateForwardAuth validates a request from a forward-auth proxy. The
// Remote-User header carries the account email; unknown users are provisioned.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.findOrProvision(ctx, remoteUser, "")
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, email, name, userAgent, ip string) (string, error) {
	user, err := s.findOrProvision(ctx, email, name)
	if err != nil {
		return "", err
	}
	return s.openSession(ctx, user.ID, userAgent, ip)
}

// findOrProvision returns the user with email, creating it without a
// password when missing. Such accounts can only sign in through SSO.
func (s *AuthService) findOrProvision(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user, err = s.users.Create(ctx, email, name, "")
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent login for the same account.
		return s.users.GetByEmail(ctx, email)
	}
	return user, err
}

func (s *AuthService) openSession(ctx context.Context, userID, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(sessionTTL)
	if err := s.sessions.Create(ctx, userID, token, userAgent, ip, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
