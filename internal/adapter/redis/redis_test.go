package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armonia/internal/domain"
)

func TestStore(t *testing.T) {
	addr := os.Getenv("ARMONIA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARMONIA_TEST_REDIS_ADDR not set")
	}
	s, err := Open(addr, "armonia-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, err = s.Get(ctx, "gamification:u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.Set(ctx, "gamification:u1", `{"achievements":[]}`))
	v, err := s.Get(ctx, "gamification:u1")
	require.NoError(t, err)
	assert.Equal(t, `{"achievements":[]}`, v)

	require.NoError(t, s.Delete(ctx, "gamification:u1"))
	_, err = s.Get(ctx, "gamification:u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOpen_RequiresAddr(t *testing.T) {
	_, err := Open("", "p:")
	assert.Error(t, err)
}
