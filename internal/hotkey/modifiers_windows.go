//go:build windows

package hotkey

import "golang.design/x/hotkey"

// toNativeModifiers converts a ModMask into golang.design/x/hotkey
// modifiers for Windows.
func toNativeModifiers(mods ModMask) []hotkey.Modifier {
	var out []hotkey.Modifier
	if mods.Has(ModCtrl) {
		out = append(out, hotkey.ModCtrl)
	}
	if mods.Has(ModAlt) {
		out = append(out, hotkey.ModAlt)
	}
	if mods.Has(ModShift) {
		out = append(out, hotkey.ModShift)
	}
	if mods.Has(ModWin) {
		out = append(out, hotkey.ModWin)
	}
	return out
}
