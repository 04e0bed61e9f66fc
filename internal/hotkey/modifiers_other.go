//go:build !windows && !linux

package hotkey

import "golang.design/x/hotkey"

// toNativeModifiers converts a ModMask into golang.design/x/hotkey
// modifiers. macOS maps Win to Cmd; the project primarily targets
// Windows and Linux.
func toNativeModifiers(mods ModMask) []hotkey.Modifier {
	var out []hotkey.Modifier
	if mods.Has(ModCtrl) {
		out = append(out, hotkey.ModCtrl)
	}
	if mods.Has(ModAlt) {
		out = append(out, hotkey.ModOption)
	}
	if mods.Has(ModShift) {
		out = append(out, hotkey.ModShift)
	}
	if mods.Has(ModWin) {
		out = append(out, hotkey.ModCmd)
	}
	return out
}
