package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samaajseva/internal/kv/kvtest"
)

func TestStore(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "kv.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	kvtest.Run(t, s)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.sqlite")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "samaajseva_commitments", []byte(`{"d1":["n1"]}`)))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, "samaajseva_commitments")
	require.NoError(t, err)
	assert.JSONEq(t, `{"d1":["n1"]}`, string(got))
}
