// Package suspend materializes the embedded suspend helper scripts and
// launches them. The helper freezes the game process briefly so the
// current session empties out; the firewall rule is not involved.
package suspend

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

//go:embed scripts
var scripts embed.FS

const helperDirName = "SPL_GTAVO"

// Variant selects which helper pair to run. Enhanced targets the
// GTA5_Enhanced process; Legacy targets the classic GTA5 process.
type Variant int

const (
	Enhanced Variant = iota
	Legacy
)

func (v Variant) String() string {
	if v == Legacy {
		return "legacy"
	}
	return "enhanced"
}

// helperPair returns the batch file and the PowerShell companion it
// expects next to itself.
func (v Variant) helperPair() (bat, ps1 string) {
	if v == Legacy {
		return "suspend_resume_GTA5.bat", "suspend_resume_GTA5.ps1"
	}
	return "suspend_resume_GTA5_Enhanced.bat", "suspend_resume_GTA5_Enhanced.ps1"
}

// ErrUnsupported is returned on platforms where the helper cannot run.
var ErrUnsupported = errors.New("suspend helper requires Windows")

// Launcher writes the helper pair to disk and starts it.
type Launcher struct {
	log *diag.Logger
}

func NewLauncher(log *diag.Logger) *Launcher {
	return &Launcher{log: log}
}

// ensureFile makes the named helper available on disk. A copy placed next
// to the executable wins, so users can customize the scripts; otherwise
// the embedded content is written to a per-app temp directory.
func (l *Launcher) ensureFile(name string) (string, error) {
	if exe, err := os.Executable(); err == nil {
		beside := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(beside); err == nil {
			return beside, nil
		}
	}

	dir := filepath.Join(os.TempDir(), helperDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create helper dir: %w", err)
	}
	content, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		return "", fmt.Errorf("no embedded helper '%s': %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write helper '%s': %w", name, err)
	}
	return path, nil
}

// Launch starts the suspend helper for the variant and returns once it is
// running. The helper does its suspend/resume cycle on its own; waiting
// for it here would hold the command mutex for the whole cycle.
func (l *Launcher) Launch(ctx context.Context, v Variant) error {
	if runtime.GOOS != "windows" {
		return ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batName, ps1Name := v.helperPair()
	bat, err := l.ensureFile(batName)
	if err != nil {
		return err
	}
	// The bat expects its PowerShell companion in the same directory.
	if _, err := l.ensureFile(ps1Name); err != nil {
		return err
	}

	cmd := exec.Command(bat)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch '%s': %w", bat, err)
	}
	l.log.Printf("Suspend helper (%s) launched: %s (pid %d)", v, bat, cmd.Process.Pid)
	go func() {
		// Reap the child so it never lingers as a zombie.
		_ = cmd.Wait()
	}()
	return nil
}
