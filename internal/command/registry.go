// Package command runs application commands against the firewall backend.
// Each trigger gets its own deadline-bounded worker so a slow firewall
// call never stalls hotkey dispatch; a mutex keeps backend operations
// serialized.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NineO1/solo-public-lobby/internal/diag"
	"github.com/NineO1/solo-public-lobby/internal/firewall"
	"github.com/NineO1/solo-public-lobby/internal/hotkey"
)

// DefaultTimeout bounds one command invocation end to end.
const DefaultTimeout = 15 * time.Second

// Status classifies how a command invocation ended.
type Status int

const (
	Success Status = iota
	Failure
	Unknown // deadline hit mid-operation; rule state no longer known
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of one command invocation. Before and After carry
// the firewall's status text around a mutation so the UI can show what
// changed.
type Outcome struct {
	Command hotkey.Command
	Status  Status
	State   firewall.RuleState
	Message string
	Before  string
	After   string
	Err     error
}

// Registry executes commands against the rule backend and posts outcomes
// for the GUI loop.
type Registry struct {
	// Timeout bounds each invocation. Set before the first Trigger.
	Timeout time.Duration

	backend firewall.Backend
	rule    firewall.Rule
	suspend func(context.Context, hotkey.Command) error
	log     *diag.Logger

	mu       sync.Mutex // serializes backend operations
	outcomes chan Outcome
}

// NewRegistry creates a registry for the given rule. suspend launches the
// helper matching the suspend command and may be nil when unsupported.
func NewRegistry(backend firewall.Backend, rule firewall.Rule, suspend func(context.Context, hotkey.Command) error, log *diag.Logger) *Registry {
	return &Registry{
		Timeout:  DefaultTimeout,
		backend:  backend,
		rule:     rule,
		suspend:  suspend,
		log:      log,
		outcomes: make(chan Outcome, 16),
	}
}

// Outcomes returns the channel carrying invocation results.
func (r *Registry) Outcomes() <-chan Outcome { return r.outcomes }

// Rule returns the managed rule definition.
func (r *Registry) Rule() firewall.Rule { return r.rule }

// Trigger starts a worker for the command and returns immediately. The
// result arrives on the Outcomes channel.
func (r *Registry) Trigger(cmd hotkey.Command) {
	go r.runCommand(cmd)
}

func (r *Registry) runCommand(cmd hotkey.Command) {
	defer func() {
		if r.log.Crash(fmt.Sprintf("command %s", cmd), recover()) {
			r.post(Outcome{
				Command: cmd,
				Status:  Failure,
				State:   firewall.StateUnknown,
				Message: "Internal error while running the command.",
				Err:     errors.New("command handler panicked"),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	out := func() Outcome {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.execute(ctx, cmd)
	}()

	r.log.Printf("Command %s finished: %s (%s)", cmd, out.Status, out.State)
	r.post(out)
}

func (r *Registry) post(out Outcome) {
	r.outcomes <- out
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, firewall.ErrTimeout)
}

func (r *Registry) execute(ctx context.Context, cmd hotkey.Command) Outcome {
	before, beforeText, err := r.backend.Status(ctx, r.rule)
	if err != nil {
		if isTimeout(err) {
			return Outcome{Command: cmd, Status: Unknown, State: firewall.StateUnknown,
				Message: "The firewall did not respond in time.", Err: err}
		}
		return Outcome{Command: cmd, Status: Failure, State: firewall.StateUnknown,
			Message: "Could not determine the rule's state.", Err: err}
	}

	switch cmd {
	case hotkey.CmdRefresh:
		return Outcome{Command: cmd, Status: Success, State: before,
			Message: fmt.Sprintf("Rule '%s' is %s.", r.rule.Name, before),
			Before:  beforeText, After: beforeText}

	case hotkey.CmdCreate:
		if before == firewall.StateEnabled || before == firewall.StateDisabled {
			return Outcome{Command: cmd, Status: Success, State: before,
				Message: fmt.Sprintf("Rule '%s' already exists (%s).", r.rule.Name, before),
				Before:  beforeText, After: beforeText}
		}
		return r.mutate(ctx, cmd, before, beforeText,
			fmt.Sprintf("Rule '%s' created and enabled. Ports %s are blocked.", r.rule.Name, r.rule.PortsString()),
			r.backend.Create)

	case hotkey.CmdToggle:
		switch before {
		case firewall.StateEnabled:
			return r.mutate(ctx, cmd, before, beforeText,
				fmt.Sprintf("Rule '%s' disabled. Traffic flows normally.", r.rule.Name),
				r.backend.Disable)
		case firewall.StateDisabled:
			return r.mutate(ctx, cmd, before, beforeText,
				fmt.Sprintf("Rule '%s' enabled. Ports %s are blocked.", r.rule.Name, r.rule.PortsString()),
				r.backend.Enable)
		case firewall.StateUnknown:
			// The rule may exist; its state text just did not parse.
			// Toggling blind could enable a rule the user meant to disable.
			return Outcome{Command: cmd, Status: Failure, State: before,
				Message: fmt.Sprintf("Cannot determine the state of rule '%s'; not toggling.", r.rule.Name),
				Before:  beforeText, After: beforeText,
				Err:     errors.New("rule state could not be parsed")}
		default:
			return Outcome{Command: cmd, Status: Failure, State: before,
				Message: fmt.Sprintf("Rule '%s' does not exist yet. Create it first.", r.rule.Name),
				Before:  beforeText, After: beforeText,
				Err:     firewall.ErrRuleNotFound}
		}

	case hotkey.CmdDelete:
		if before == firewall.StateAbsent {
			return Outcome{Command: cmd, Status: Success, State: before,
				Message: fmt.Sprintf("Rule '%s' is already absent.", r.rule.Name),
				Before:  beforeText, After: beforeText}
		}
		return r.mutate(ctx, cmd, before, beforeText,
			fmt.Sprintf("Rule '%s' deleted.", r.rule.Name),
			r.backend.Delete)

	case hotkey.CmdSuspendEnhanced, hotkey.CmdSuspendLegacy:
		if r.suspend == nil {
			return Outcome{Command: cmd, Status: Failure, State: before,
				Message: "Suspend helper is not available on this platform.",
				Err:     errors.New("no suspend launcher configured")}
		}
		if err := r.suspend(ctx, cmd); err != nil {
			if isTimeout(err) {
				return Outcome{Command: cmd, Status: Unknown, State: before,
					Message: "The suspend helper did not start in time.", Err: err}
			}
			return Outcome{Command: cmd, Status: Failure, State: before,
				Message: "Could not launch the suspend helper.", Err: err}
		}
		return Outcome{Command: cmd, Status: Success, State: before,
			Message: "Suspend helper launched."}

	default:
		return Outcome{Command: cmd, Status: Failure, State: before,
			Message: fmt.Sprintf("No handler for %s.", cmd),
			Err:     fmt.Errorf("unhandled command %s", cmd)}
	}
}

// mutate runs one backend mutation and re-queries the rule so the outcome
// carries the observed after state, not an assumed one.
func (r *Registry) mutate(ctx context.Context, cmd hotkey.Command, before firewall.RuleState, beforeText, successMsg string, op func(context.Context, firewall.Rule) error) Outcome {
	if err := op(ctx, r.rule); err != nil {
		if isTimeout(err) {
			return Outcome{Command: cmd, Status: Unknown, State: firewall.StateUnknown,
				Message: "The firewall did not respond in time; rule state is unknown.",
				Before:  beforeText, Err: err}
		}
		return Outcome{Command: cmd, Status: Failure, State: before,
			Message: "The firewall rejected the change.",
			Before:  beforeText, After: beforeText, Err: err}
	}

	after, afterText, err := r.backend.Status(ctx, r.rule)
	if err != nil {
		if isTimeout(err) {
			return Outcome{Command: cmd, Status: Unknown, State: firewall.StateUnknown,
				Message: "The change was applied but could not be verified in time.",
				Before:  beforeText, Err: err}
		}
		return Outcome{Command: cmd, Status: Failure, State: firewall.StateUnknown,
			Message: "The change was applied but verification failed.",
			Before:  beforeText, Err: err}
	}
	return Outcome{Command: cmd, Status: Success, State: after,
		Message: successMsg, Before: beforeText, After: afterText}
}
