package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NineO1/solo-public-lobby/internal/hotkey"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRuleName, cfg.RuleName)
	assert.Equal(t, DefaultRemotePorts, cfg.RemotePorts)
	assert.True(t, cfg.UseNotifications)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, DefaultHotkeys, cfg.Hotkeys)

	// The default file was written to disk.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadMergesMissingHotkeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"rule_name": "Custom Rule",
		"remote_ports": "6672",
		"hotkeys": {"toggle": "Ctrl+Shift+G"}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Custom Rule", cfg.RuleName)
	assert.Equal(t, "Ctrl+Shift+G", cfg.Hotkeys["toggle"], "explicit entry wins")
	assert.Equal(t, DefaultHotkeys["create"], cfg.Hotkeys["create"], "missing entries filled in")
	assert.Equal(t, DefaultHotkeys["refresh"], cfg.Hotkeys["refresh"])
}

func TestLoadDefaultsMissingFlagsToTrue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"rule_name": "Custom Rule",
		"confirm_delete": false
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.UseNotifications, "absent flag keeps its default")
	assert.False(t, cfg.ConfirmDelete, "explicit false wins over the default")
}

func TestLoadRejectsBrokenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.UseNotifications = false
	cfg.SetBinding(hotkey.CmdToggle, hotkey.Combination{Mods: hotkey.ModCtrl | hotkey.ModShift, Key: "g"})
	require.NoError(t, cfg.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.False(t, again.UseNotifications)
	assert.Equal(t, "Ctrl+Shift+G", again.Hotkeys["toggle"])
}

func TestBindingsSkipInvalidEntries(t *testing.T) {
	cfg := defaultConfig()
	cfg.Hotkeys["delete"] = "Ctrl+Alt" // no primary key

	bindings, errs := cfg.Bindings()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], hotkey.ErrInvalidCombination)

	commands := make(map[hotkey.Command]bool)
	for _, b := range bindings {
		commands[b.Command] = true
	}
	assert.False(t, commands[hotkey.CmdDelete], "invalid entry is dropped")
	assert.True(t, commands[hotkey.CmdCreate])
	assert.True(t, commands[hotkey.CmdToggle])
	assert.True(t, commands[hotkey.CmdSuspendEnhanced])
	assert.True(t, commands[hotkey.CmdRefresh])
}
