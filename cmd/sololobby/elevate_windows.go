//go:build windows

package main

import (
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// elevateIfNeeded relaunches the process with the "runas" verb when it is
// not running elevated. Returns true when a relaunch was started and this
// process should exit.
func elevateIfNeeded(log *diag.Logger) bool {
	var token windows.Token
	proc := windows.CurrentProcess()
	if err := windows.OpenProcessToken(proc, windows.TOKEN_QUERY, &token); err != nil {
		log.Printf("Warning: could not query process token: %v", err)
		return false
	}
	defer token.Close()

	if token.IsElevated() {
		log.Printf("Running elevated")
		return false
	}

	exe, err := os.Executable()
	if err != nil {
		log.Printf("Warning: could not locate executable for elevation: %v", err)
		return false
	}
	log.Printf("Not elevated, relaunching with administrator rights")

	verb, _ := syscall.UTF16PtrFromString("runas")
	file, _ := syscall.UTF16PtrFromString(exe)
	params, _ := syscall.UTF16PtrFromString(strings.Join(os.Args[1:], " "))
	err = windows.ShellExecute(0, verb, file, params, nil, windows.SW_SHOWNORMAL)
	if err != nil {
		// The user declined the UAC prompt; keep running without rights so
		// the tray can at least show state.
		log.Printf("Warning: elevation failed or was declined: %v", err)
		return false
	}
	return true
}
