package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samaajseva/internal/kv/bolt"
	"samaajseva/internal/kv/kvtest"
)

func newTestStore(t *testing.T, path string) *bolt.Store {
	t.Helper()
	s, err := bolt.New(path)
	require.NoError(t, err, "failed to open test store")
	return s
}

func TestStore(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { s.Close() })

	kvtest.Run(t, s)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	s := newTestStore(t, path)
	require.NoError(t, s.Set(ctx, "samaajseva_needs", []byte(`[{"id":"n1"}]`)))
	require.NoError(t, s.Close())

	s = newTestStore(t, path)
	t.Cleanup(func() { s.Close() })

	got, err := s.Get(ctx, "samaajseva_needs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"n1"}]`, string(got))
}
