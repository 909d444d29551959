package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, 100, s.QueueWindow)
	assert.Equal(t, "library", s.LastSource)
	assert.True(t, s.LocalLogsEnabled)
	_, err = uuid.Parse(s.InstallationID)
	require.NoError(t, err)

	// The generated ID is saved right away and survives a reload.
	again, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, s.InstallationID, again.InstallationID)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := &Settings{InstallationID: "abc", PageSize: 20, QueueWindow: 30, LastSource: "folders"}
	require.NoError(t, s.Save(path))

	got, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installation_id":"x","page_size":-3}`), 0644))

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", s.InstallationID)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, 100, s.QueueWindow)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := Load(path, nil)
	assert.Error(t, err)
}
