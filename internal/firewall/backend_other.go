//go:build !windows && !linux

package firewall

import (
	"context"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// stubBackend stands in on platforms without a supported firewall. Every
// operation fails so the GUI can show an honest error instead of
// pretending the rule changed.
type stubBackend struct{}

func (stubBackend) Name() string { return "none" }

func (stubBackend) Create(context.Context, Rule) error  { return ErrBackendUnavailable }
func (stubBackend) Enable(context.Context, Rule) error  { return ErrBackendUnavailable }
func (stubBackend) Disable(context.Context, Rule) error { return ErrBackendUnavailable }
func (stubBackend) Delete(context.Context, Rule) error  { return ErrBackendUnavailable }

func (stubBackend) Status(context.Context, Rule) (RuleState, string, error) {
	return StateUnknown, "", ErrBackendUnavailable
}

// NewBackend returns the platform firewall backend.
func NewBackend(*diag.Logger) (Backend, error) {
	return stubBackend{}, ErrBackendUnavailable
}
