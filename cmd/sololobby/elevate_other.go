//go:build !windows

package main

import (
	"os"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// elevateIfNeeded only warns on non-Windows platforms; nftables access
// needs root but sudo relaunching is the user's call.
func elevateIfNeeded(log *diag.Logger) bool {
	if os.Geteuid() != 0 {
		log.Printf("Warning: not running as root; firewall commands will likely fail")
	}
	return false
}
