package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	t.Run("url takes precedence", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://:hunter2@cache.internal:6380/3")
		t.Setenv("REDIS_ADDR", "ignored:6379")

		opts, err := redisOptions()
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "hunter2", opts.Password)
		assert.Equal(t, 3, opts.DB)
	})

	t.Run("individual variables", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		t.Setenv("REDIS_ADDR", "10.0.0.7:6379")
		t.Setenv("REDIS_PASSWORD", "s3cret")
		t.Setenv("REDIS_DB", "2")

		opts, err := redisOptions()
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.7:6379", opts.Addr)
		assert.Equal(t, "s3cret", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		t.Setenv("REDIS_ADDR", "")
		t.Setenv("REDIS_PASSWORD", "")
		t.Setenv("REDIS_DB", "")

		opts, err := redisOptions()
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 0, opts.DB)
	})

	t.Run("bad db number", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		t.Setenv("REDIS_DB", "two")

		_, err := redisOptions()
		assert.Error(t, err)
	})

	t.Run("bad url", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://[broken")

		_, err := redisOptions()
		assert.Error(t, err)
	})
}
