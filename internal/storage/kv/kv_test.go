package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	type doc struct {
		Nome  string `json:"nome"`
		Preco float64
	}

	require.NoError(t, store.Set("produtos", []doc{{Nome: "CG 160", Preco: 14500}}))

	var got []doc
	found, err := store.Get("produtos", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "CG 160", got[0].Nome)

	found, err = store.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteOverwriteAndDelete(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("theme", "dark"))
	require.NoError(t, store.Set("theme", "light"))

	var theme string
	found, err := store.Get("theme", &theme)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "light", theme)

	require.NoError(t, store.Delete("theme"))
	found, err = store.Get("theme", &theme)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete("theme"))
}

func TestSQLiteKeys(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("users", []string{}))
	require.NoError(t, store.Set("initialized", true))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "initialized"}, keys)
}

func TestMemoryMatchesInterface(t *testing.T) {
	var _ Store = NewMemory()
	var _ Store = (*SQLite)(nil)

	m := NewMemory()
	require.NoError(t, m.Set("initialized", true))

	var flag bool
	found, err := m.Get("initialized", &flag)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, flag)
}
