//go:build windows

package ui

import (
	"fmt"
	"syscall"
	"unsafe"
)

const swShowNormal = 1

var (
	shell32           = syscall.NewLazyDLL("shell32.dll")
	procShellExecuteW = shell32.NewProc("ShellExecuteW")
)

// shellExecute wraps the ShellExecuteW API. Return values up to 32 signal
// failure; anything above is an instance handle.
func shellExecute(hwnd uintptr, verb, file, params, dir string, showCmd int32) error {
	lpVerb, err := syscall.UTF16PtrFromString(verb)
	if err != nil {
		return err
	}
	lpFile, err := syscall.UTF16PtrFromString(file)
	if err != nil {
		return err
	}
	lpParams, err := syscall.UTF16PtrFromString(params)
	if err != nil {
		return err
	}
	lpDir, err := syscall.UTF16PtrFromString(dir)
	if err != nil {
		return err
	}

	ret, _, _ := procShellExecuteW.Call(
		hwnd,
		uintptr(unsafe.Pointer(lpVerb)),
		uintptr(unsafe.Pointer(lpFile)),
		uintptr(unsafe.Pointer(lpParams)),
		uintptr(unsafe.Pointer(lpDir)),
		uintptr(showCmd),
	)
	if ret <= 32 {
		return fmt.Errorf("ShellExecuteW failed for '%s' (code %d)", file, ret)
	}
	return nil
}
