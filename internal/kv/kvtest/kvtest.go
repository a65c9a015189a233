// Package kvtest holds the behaviour every key/value driver must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samaajseva/pkg/types"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Run exercises s. It writes under keys prefixed with "kvtest_".
func Run(t *testing.T, s store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "kvtest_missing")
		assert.ErrorIs(t, err, types.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "kvtest_a", []byte(`{"v":1}`)))

		got, err := s.Get(ctx, "kvtest_a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(got))
	})

	t.Run("set overwrites whole value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "kvtest_b", []byte(`[1,2,3]`)))
		require.NoError(t, s.Set(ctx, "kvtest_b", []byte(`[4]`)))

		got, err := s.Get(ctx, "kvtest_b")
		require.NoError(t, err)
		assert.Equal(t, `[4]`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "kvtest_c", []byte(`"x"`)))
		require.NoError(t, s.Remove(ctx, "kvtest_c"))

		_, err := s.Get(ctx, "kvtest_c")
		assert.ErrorIs(t, err, types.ErrKeyNotFound)

		// removing again is not an error
		assert.NoError(t, s.Remove(ctx, "kvtest_c"))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "kvtest_d", []byte("abc")))

		got, err := s.Get(ctx, "kvtest_d")
		require.NoError(t, err)
		got[0] = 'z'

		again, err := s.Get(ctx, "kvtest_d")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})
}
