package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCombination is returned when a combination string names an
// unsupported key or modifier.
var ErrInvalidCombination = errors.New("invalid key combination")

// ModMask is a bitmask of held modifier keys. The bit order matches the
// canonical display precedence: Ctrl, Alt, Shift, Win.
type ModMask uint8

const (
	ModCtrl ModMask = 1 << iota
	ModAlt
	ModShift
	ModWin
)

// Has reports whether all modifiers in m2 are set in m.
func (m ModMask) Has(m2 ModMask) bool { return m&m2 == m2 }

func (m ModMask) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModWin) {
		parts = append(parts, "Win")
	}
	return strings.Join(parts, "+")
}

// Combination is a canonicalized modifier set plus one primary key.
// The key is stored as a lower-case canonical name ("c", "f5", "space").
type Combination struct {
	Mods ModMask
	Key  string
}

// keyAliases maps accepted spellings to the canonical key name.
var keyAliases = map[string]string{
	"return": "enter",
	"esc":    "escape",
}

// namedKeys are the supported non-character keys.
var namedKeys = map[string]bool{
	"space":  true,
	"tab":    true,
	"enter":  true,
	"escape": true,
}

// canonicalKey normalizes a key name, returning "" when unsupported.
func canonicalKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := keyAliases[s]; ok {
		s = alias
	}
	if len(s) == 1 {
		c := s[0]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			return s
		}
		return ""
	}
	if strings.HasPrefix(s, "f") {
		n := 0
		if _, err := fmt.Sscanf(s, "f%d", &n); err == nil && n >= 1 && n <= 12 {
			return fmt.Sprintf("f%d", n)
		}
		return ""
	}
	if namedKeys[s] {
		return s
	}
	return ""
}

// ParseCombination parses a combination string such as "Ctrl+Alt+C".
// Modifier spellings are case-insensitive; exactly one primary key is
// required.
func ParseCombination(s string) (Combination, error) {
	var c Combination
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch strings.ToLower(part) {
		case "ctrl", "control":
			c.Mods |= ModCtrl
		case "alt":
			c.Mods |= ModAlt
		case "shift":
			c.Mods |= ModShift
		case "win", "windows", "super", "cmd":
			c.Mods |= ModWin
		default:
			if c.Key != "" {
				return Combination{}, fmt.Errorf("%w: more than one primary key in '%s'", ErrInvalidCombination, s)
			}
			key := canonicalKey(part)
			if key == "" {
				return Combination{}, fmt.Errorf("%w: unsupported key '%s'", ErrInvalidCombination, part)
			}
			c.Key = key
		}
	}
	if c.Key == "" {
		return Combination{}, fmt.Errorf("%w: no primary key in '%s'", ErrInvalidCombination, s)
	}
	return c, nil
}

// IsZero reports whether the combination is unset.
func (c Combination) IsZero() bool { return c.Key == "" && c.Mods == 0 }

// String renders the canonical form, modifiers in precedence order
// followed by the primary key, e.g. "Ctrl+Alt+C".
func (c Combination) String() string {
	if c.IsZero() {
		return ""
	}
	key := c.Key
	switch {
	case len(key) == 1:
		key = strings.ToUpper(key)
	case strings.HasPrefix(key, "f") && len(key) <= 3:
		key = strings.ToUpper(key)
	default:
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	if mods := c.Mods.String(); mods != "" {
		return mods + "+" + key
	}
	return key
}
