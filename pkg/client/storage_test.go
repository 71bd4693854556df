package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	store := NewFileStorage(path)

	_, ok, err := store.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(TokenKey, "abc"))
	require.NoError(t, store.Set("other", "x"))

	reopened := NewFileStorage(path)
	v, ok, err := reopened.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.Delete(TokenKey))
	_, ok, err = store.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, _ = store.Get("other")
	assert.Equal(t, "x", v)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStorage(path)
	_, _, err := store.Get(TokenKey)
	assert.ErrorIs(t, err, ErrCorruptStorage)

	require.NoError(t, store.Set(TokenKey, "abc"))
	v, ok, err := store.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestFileStorage_DeleteResetsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStorage(path)
	require.NoError(t, store.Delete(TokenKey))

	_, ok, err := store.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Set(TokenKey, "abc"))
	v, ok, _ := store.Get(TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	require.NoError(t, store.Delete(TokenKey))
	_, ok, _ = store.Get(TokenKey)
	assert.False(t, ok)
}
