package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armonia/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("ARMONIA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ARMONIA_TEST_DATABASE_URL not set")
	}
	db, err := Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestKV(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = db.Delete(ctx, key) })

	_, err := db.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, db.Set(ctx, key, `{"a":1}`))
	require.NoError(t, db.Set(ctx, key, `{"a":2}`))
	v, err := db.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, v)

	require.NoError(t, db.Delete(ctx, key))
	_, err = db.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	email := uuid.NewString() + "@Example.com"

	u, err := db.Create(ctx, email, "Ana", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = db.Create(ctx, email, "Other", "hash")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := db.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	sessions := NewSessionRepo(db)
	token := uuid.NewString()
	require.NoError(t, sessions.Create(ctx, u.ID, token, "ua", "127.0.0.1", time.Now().Add(time.Hour)))

	s, err := sessions.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)
	assert.Equal(t, "ua", s.UserAgent)

	require.NoError(t, sessions.Delete(ctx, token))
	_, err = sessions.GetByToken(ctx, token)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = db.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
