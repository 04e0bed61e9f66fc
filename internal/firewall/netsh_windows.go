package firewall

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// NetshBackend manages the rule through the Windows Firewall via netsh
// advfirewall. Commands run hidden so no console window flashes over the
// tray application.
type NetshBackend struct {
	log *diag.Logger
}

func NewNetshBackend(log *diag.Logger) *NetshBackend {
	return &NetshBackend{log: log}
}

func (b *NetshBackend) Name() string { return "netsh" }

func (b *NetshBackend) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "netsh", args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	out, err := cmd.CombinedOutput()
	text := string(out)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		b.log.Printf("netsh %s aborted: deadline exceeded", strings.Join(args, " "))
		return text, fmt.Errorf("%w: netsh %s", ErrTimeout, strings.Join(args, " "))
	}
	if err != nil {
		if strings.Contains(text, "No rules match") {
			return text, fmt.Errorf("%w: %s", ErrRuleNotFound, strings.TrimSpace(text))
		}
		return text, fmt.Errorf("netsh %s: %w", strings.Join(args, " "), err)
	}
	return text, nil
}

func (b *NetshBackend) Create(ctx context.Context, rule Rule) error {
	_, err := b.run(ctx, "advfirewall", "firewall", "add", "rule",
		"name="+rule.Name,
		"dir=out",
		"action=block",
		"protocol=UDP",
		"remoteport="+rule.PortsString(),
		"enable=yes",
	)
	return err
}

func (b *NetshBackend) Enable(ctx context.Context, rule Rule) error {
	return b.setEnabled(ctx, rule, "yes")
}

func (b *NetshBackend) Disable(ctx context.Context, rule Rule) error {
	return b.setEnabled(ctx, rule, "no")
}

func (b *NetshBackend) setEnabled(ctx context.Context, rule Rule, value string) error {
	_, err := b.run(ctx, "advfirewall", "firewall", "set", "rule",
		"name="+rule.Name, "new", "enable="+value)
	return err
}

func (b *NetshBackend) Delete(ctx context.Context, rule Rule) error {
	_, err := b.run(ctx, "advfirewall", "firewall", "delete", "rule", "name="+rule.Name)
	if errors.Is(err, ErrRuleNotFound) {
		return nil
	}
	return err
}

func (b *NetshBackend) Status(ctx context.Context, rule Rule) (RuleState, string, error) {
	out, err := b.run(ctx, "advfirewall", "firewall", "show", "rule", "name="+rule.Name)
	if err != nil {
		// Absence arrives as a nonzero netsh exit, not a real failure.
		if errors.Is(err, ErrRuleNotFound) {
			return StateAbsent, strings.TrimSpace(out), nil
		}
		return StateUnknown, strings.TrimSpace(out), err
	}
	return parseShowRule(out), strings.TrimSpace(out), nil
}

// NewBackend returns the platform firewall backend.
func NewBackend(log *diag.Logger) (Backend, error) {
	return NewNetshBackend(log), nil
}
