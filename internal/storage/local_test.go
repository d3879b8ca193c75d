package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewLocalStorage(path)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	want := models.Session{Token: "tok", Record: map[string]any{"username": "bob"}}
	require.NoError(t, store.Save(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := NewLocalStorage(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := NewLocalStorage(path).Load(context.Background())
	assert.Error(t, err)
}

func TestOpenPicksLocalStorage(t *testing.T) {
	s, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = Open(context.Background(), Options{})
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := &MemoryStorage{}
	require.NoError(t, m.Save(ctx, models.Session{Token: "a"}))
	s, _ := m.Load(ctx)
	assert.Equal(t, "a", s.Token)
	require.NoError(t, m.Clear(ctx))
	s, _ = m.Load(ctx)
	assert.True(t, s.Empty())
}

func TestRedisStorageUnreachable(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "127.0.0.1:1", "", 0, "default")
	assert.Error(t, err)
}
