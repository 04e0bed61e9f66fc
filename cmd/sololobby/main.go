package main

import (
	"os"
	"path/filepath"

	"github.com/NineO1/solo-public-lobby/internal/app"
	"github.com/NineO1/solo-public-lobby/internal/config"
	"github.com/NineO1/solo-public-lobby/internal/diag"
)

const version = "v1.0.0"

// baseDir returns the directory the executable lives in, so the config
// and debug log sit next to the binary like the original tool's files.
func baseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func main() {
	dir := baseDir()
	log := diag.New(filepath.Join(dir, "debug_log.txt"))
	log.Printf("Solo Public Lobby %s starting...", version)

	// Firewall changes need administrator rights; relaunch elevated when
	// possible instead of failing on every command.
	if relaunched := elevateIfNeeded(log); relaunched {
		return
	}

	cfg, err := config.Load(filepath.Join(dir, "config.json"))
	if err != nil {
		log.Printf("Fatal: error loading config: %v", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, version, log)
	if err != nil {
		log.Printf("Fatal: %v", err)
		os.Exit(1)
	}

	defer func() {
		if log.Crash("main", recover()) {
			os.Exit(1)
		}
	}()

	application.Run()
}
