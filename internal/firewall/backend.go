// Package firewall defines the rule backend boundary: a small interface
// over the platform firewall plus the concrete implementations behind it.
package firewall

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrBackendUnavailable is returned by every operation on platforms
	// with no supported firewall backend.
	ErrBackendUnavailable = errors.New("no firewall backend available on this platform")

	// ErrTimeout wraps a backend operation that ran past its deadline; the
	// rule's real state is unknown afterwards.
	ErrTimeout = errors.New("firewall operation timed out")

	// ErrRuleNotFound is returned by operations that need an existing rule.
	ErrRuleNotFound = errors.New("rule not found")
)

// RuleState is the observed state of the managed rule.
type RuleState int

const (
	StateUnknown RuleState = iota
	StateAbsent
	StateEnabled
	StateDisabled
)

func (s RuleState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Rule describes the managed outbound UDP block rule.
type Rule struct {
	Name  string
	Ports []uint16
}

// PortsString renders the port list in the comma form the firewall tools
// and the GUI use.
func (r Rule) PortsString() string {
	parts := make([]string, len(r.Ports))
	for i, p := range r.Ports {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}

// ParsePorts parses a comma-separated port list such as "6672,61455".
func ParsePorts(s string) ([]uint16, error) {
	var ports []uint16
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid port '%s' in '%s'", part, s)
		}
		ports = append(ports, uint16(n))
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("no ports in '%s'", s)
	}
	return ports, nil
}

// Backend manipulates the managed rule in the platform firewall. Every
// operation is bound by its context; implementations must not outlive the
// deadline. Callers serialize access, so implementations need no locking.
type Backend interface {
	// Create adds the rule in the enabled state. The caller checks for an
	// existing rule first; Create on an existing rule is backend-defined.
	Create(ctx context.Context, rule Rule) error

	// Enable activates an existing rule.
	Enable(ctx context.Context, rule Rule) error

	// Disable deactivates an existing rule without removing it.
	Disable(ctx context.Context, rule Rule) error

	// Delete removes the rule entirely. Deleting an absent rule is not an
	// error.
	Delete(ctx context.Context, rule Rule) error

	// Status reports the rule's current state plus a human-readable detail
	// text describing the rule as the firewall sees it.
	Status(ctx context.Context, rule Rule) (RuleState, string, error)

	// Name identifies the backend for logging.
	Name() string
}
