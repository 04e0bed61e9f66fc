//go:build linux

package hotkey

import "golang.design/x/hotkey"

// toNativeModifiers converts a ModMask into golang.design/x/hotkey
// modifiers for X11, where Alt is Mod1 and Super/Win is Mod4.
func toNativeModifiers(mods ModMask) []hotkey.Modifier {
	var out []hotkey.Modifier
	if mods.Has(ModCtrl) {
		out = append(out, hotkey.ModCtrl)
	}
	if mods.Has(ModAlt) {
		out = append(out, hotkey.Mod1)
	}
	if mods.Has(ModShift) {
		out = append(out, hotkey.ModShift)
	}
	if mods.Has(ModWin) {
		out = append(out, hotkey.Mod4)
	}
	return out
}
