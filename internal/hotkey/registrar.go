package hotkey

import "errors"

var (
	// ErrCombinationClaimed is returned when the OS rejects a registration
	// because another application already owns the combination.
	ErrCombinationClaimed = errors.New("combination already claimed system-wide")

	// ErrDuplicateCombination is returned when two bindings in the same set
	// share a combination.
	ErrDuplicateCombination = errors.New("combination already bound to another command")

	// ErrRegistrarUnavailable is returned when no global-hotkey facility is
	// available on the current system.
	ErrRegistrarUnavailable = errors.New("global hotkeys not available on this system")
)

// Registrar abstracts the OS-level global-hotkey registration capability so
// the listener can be exercised without touching the real windowing system.
type Registrar interface {
	// Register claims the combination system-wide and returns a handle for
	// receiving keydown signals. Errors wrap ErrInvalidCombination or
	// ErrCombinationClaimed.
	Register(combo Combination) (RegisteredHotkey, error)

	// Name returns a human-readable name for logging.
	Name() string
}

// RegisteredHotkey is a live OS registration for one combination.
type RegisteredHotkey interface {
	// Keydown returns the channel that receives a signal per key press.
	Keydown() <-chan struct{}

	// Close releases the OS registration. The Keydown channel must not be
	// used afterwards.
	Close() error
}
