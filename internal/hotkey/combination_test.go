package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombination(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Combination
	}{
		{"simple", "Ctrl+Alt+C", Combination{Mods: ModCtrl | ModAlt, Key: "c"}},
		{"case insensitive", "CTRL+alt+c", Combination{Mods: ModCtrl | ModAlt, Key: "c"}},
		{"control spelling", "Control+Shift+F5", Combination{Mods: ModCtrl | ModShift, Key: "f5"}},
		{"win spellings", "Super+Space", Combination{Mods: ModWin, Key: "space"}},
		{"return alias", "Ctrl+Return", Combination{Mods: ModCtrl, Key: "enter"}},
		{"esc alias", "Alt+Esc", Combination{Mods: ModAlt, Key: "escape"}},
		{"digit", "Ctrl+Alt+9", Combination{Mods: ModCtrl | ModAlt, Key: "9"}},
		{"bare key", "T", Combination{Key: "t"}},
		{"whitespace", " ctrl + alt + d ", Combination{Mods: ModCtrl | ModAlt, Key: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCombination(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCombinationErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"Ctrl+Alt",
		"Ctrl+C+D",
		"Ctrl+F13",
		"Ctrl+!",
		"Ctrl+pageup",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCombination(input)
			assert.ErrorIs(t, err, ErrInvalidCombination)
		})
	}
}

func TestCombinationString(t *testing.T) {
	tests := []struct {
		combo Combination
		want  string
	}{
		{Combination{Mods: ModCtrl | ModAlt, Key: "c"}, "Ctrl+Alt+C"},
		{Combination{Mods: ModWin | ModShift | ModCtrl, Key: "f12"}, "Ctrl+Shift+Win+F12"},
		{Combination{Mods: ModAlt, Key: "space"}, "Alt+Space"},
		{Combination{Key: "7"}, "7"},
		{Combination{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.combo.String())
	}
}

func TestCombinationStringRoundTrip(t *testing.T) {
	for _, s := range []string{"Ctrl+Alt+C", "Ctrl+Shift+F5", "Alt+Space", "Win+Enter"} {
		c, err := ParseCombination(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}
}

func TestParseCommand(t *testing.T) {
	for _, cmd := range Commands() {
		got, err := ParseCommand(cmd.String())
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
	}
	_, err := ParseCommand("reboot")
	assert.Error(t, err)
}
