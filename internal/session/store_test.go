package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/video-publisher/internal/browser"
)

func sampleState() *browser.StorageState {
	return &browser.StorageState{
		Cookies: []browser.Cookie{
			{Name: "sessionid", Value: "abc123", Domain: ".example.com", Path: "/"},
			{Name: "a1", Value: "token-a1", Domain: ".example.com", Path: "/"},
		},
		Origins: []browser.OriginState{
			{Origin: "https://example.com", LocalStorage: map[string]string{"uid": "42"}},
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("douyin", "creator-a", sampleState()))

	loaded, found, err := store.Load("douyin", "creator-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleState(), loaded)
	assert.Equal(t, "token-a1", loaded.CookieValue("a1"))
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	state, found, err := store.Load("douyin", "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, state)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("xhs", "creator-b", sampleState()))

	updated := sampleState()
	updated.Cookies[0].Value = "rotated"
	require.NoError(t, store.Save("xhs", "creator-b", updated))

	loaded, found, err := store.Load("xhs", "creator-b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "rotated", loaded.Cookies[0].Value)
}

func TestFileStore_SanitizesAccountNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("douyin", "../evil/name", sampleState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")

	_, found, err := store.Load("douyin", "../evil/name")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "douyin_creator.json"), []byte("not json"), 0o600))

	_, _, err = store.Load("douyin", "creator")
	assert.Error(t, err)
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	store, err := NewFileStore("")
	assert.Error(t, err)
	assert.Nil(t, store)
}
