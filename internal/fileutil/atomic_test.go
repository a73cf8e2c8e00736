package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, AtomicWrite(path, []byte(`{"max_attempts":4}`), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"max_attempts":4}`, string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	matches, err := filepath.Glob(path + ".tmp.*")
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not remain")
}

func TestAtomicWrite_OverwriteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paused.json")

	require.NoError(t, AtomicWrite(path, []byte("initial"), 0600))
	require.NoError(t, AtomicWrite(path, []byte("updated"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestAtomicWrite_DirectoryNotExist(t *testing.T) {
	err := AtomicWrite(filepath.Join(t.TempDir(), "missing", "x.json"), []byte("data"), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, WriteJSON(path, map[string]string{"reason": "logout"}, 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reason":"logout"}`, string(content))
}

func TestWriteJSON_Unmarshalable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	err := WriteJSON(path, make(chan int), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal state.json")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	require.NoError(t, RemoveIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, RemoveIfExists(path), "missing file is not an error")
}
