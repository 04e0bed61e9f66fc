package hotkey

import (
	"os"
	"runtime"
)

// DisplayServer identifies the windowing system the process is running
// under, which decides whether global hotkey registration is possible.
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer determines the current display server. Safe to call
// on any platform.
func DetectDisplayServer() DisplayServer {
	if runtime.GOOS == "windows" {
		return DisplayServerWindows
	}
	// Wayland first; it is the more specific signal.
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}
	if os.Getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	// macOS has its own system that golang.design/x/hotkey drives the same
	// way as X11 from our point of view.
	if runtime.GOOS == "darwin" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}
