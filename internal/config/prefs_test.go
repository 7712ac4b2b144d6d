package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefsFirstRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	prefs, err := LoadPrefs()
	require.NoError(t, err)
	assert.NotEmpty(t, prefs.PersistentID)
	assert.Equal(t, "localhost:1988", prefs.Server)
	assert.Empty(t, prefs.Name)
}

func TestPrefsRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	prefs, err := LoadPrefs()
	require.NoError(t, err)
	prefs.Name = "Alice"
	prefs.Server = "10.0.0.2:1988"
	require.NoError(t, SavePrefs(prefs))

	loaded, err := LoadPrefs()
	require.NoError(t, err)
	// the persistent identity survives restarts
	assert.Equal(t, prefs.PersistentID, loaded.PersistentID)
	assert.Equal(t, "Alice", loaded.Name)
	assert.Equal(t, "10.0.0.2:1988", loaded.Server)
}
