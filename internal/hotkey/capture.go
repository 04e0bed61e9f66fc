package hotkey

import (
	"errors"
	"fmt"
	"time"
)

// DefaultCaptureTimeout bounds how long a capture session waits for a
// qualifying combination before cancelling itself.
const DefaultCaptureTimeout = 12 * time.Second

var (
	// ErrCaptureBusy is the rejection reason when BeginCapture is called
	// while another session is active.
	ErrCaptureBusy = errors.New("a capture session is already active")

	// ErrCaptureTimeout is the cancellation reason when no qualifying
	// combination arrived before the deadline.
	ErrCaptureTimeout = errors.New("capture timed out")

	// ErrCaptureCancelled is the cancellation reason for an explicit user
	// cancel.
	ErrCaptureCancelled = errors.New("capture cancelled")

	// ErrCaptureUnsupported is returned when the platform has no raw key
	// source for interactive capture.
	ErrCaptureUnsupported = errors.New("interactive capture not supported on this platform")
)

// KeyEvent is one raw keyboard observation delivered to an active capture
// session. Mods are the modifiers held at that instant; Key is the
// canonical name of a freshly pressed non-modifier key, or empty when only
// the modifier state changed.
type KeyEvent struct {
	Mods ModMask
	Key  string
}

// KeySource produces raw key events for capture sessions. It runs only
// while a session is active.
type KeySource interface {
	// Start begins delivering events to the channel. Returns an error when
	// the platform cannot observe raw key state.
	Start(events chan<- KeyEvent) error

	// Stop ends delivery. Safe to call after a failed Start.
	Stop()
}

// captureSession is the transient state of one rebinding flow. It lives on
// the listener goroutine between beginCapture and endCapture.
type captureSession struct {
	target   Command
	previous Combination // binding withdrawn for the session, restored after
	hadSlot  bool
	seenMods ModMask // accumulated, for diagnostics only
	deadline *time.Timer
}

// feed processes one raw key event. It returns the resolved combination
// and true when the session completes: a non-modifier key pressed while at
// least one modifier is held. Bare modifiers and bare keys never resolve.
func (s *captureSession) feed(ev KeyEvent) (Combination, bool) {
	s.seenMods |= ev.Mods
	if ev.Key == "" {
		return Combination{}, false
	}
	if ev.Mods == 0 {
		return Combination{}, false
	}
	return Combination{Mods: ev.Mods, Key: ev.Key}, true
}

// beginCapture handles the begin-capture control message on the listener
// goroutine. Only the target command's slot is withdrawn; every other
// binding keeps dispatching for the whole session.
func (l *Listener) beginCapture(st *listenerState, target Command) {
	if st.capture != nil {
		l.log.Printf("Capture for %s rejected: session for %s already active", target, st.capture.target)
		l.emit(CaptureCancelled{Command: target, Reason: ErrCaptureBusy})
		return
	}

	session := &captureSession{target: target}
	if reg, ok := st.registered[target]; ok {
		session.previous = reg.binding.Combo
		session.hadSlot = true
		l.closeRegistration(st, target)
	}

	if err := l.source.Start(l.rawKeys); err != nil {
		l.log.Printf("Capture for %s failed to start key source: %v", target, err)
		l.restoreCaptureSlot(st, session)
		l.emit(CaptureCancelled{Command: target, Reason: fmt.Errorf("%w: %v", ErrCaptureUnsupported, err)})
		return
	}

	session.deadline = time.NewTimer(l.CaptureTimeout)
	st.capture = session
	l.log.Printf("Capture started for %s (previous: %s)", target, session.previous)
}

// handleRawKey routes a raw key event to the active session.
func (l *Listener) handleRawKey(st *listenerState, ev KeyEvent) {
	session := st.capture
	if session == nil {
		return
	}
	combo, done := session.feed(ev)
	if !done {
		return
	}
	l.finishCapture(st, combo, nil)
}

// finishCapture tears the session down, restores the withdrawn slot and
// emits the result. A resolved combination is reported but not registered:
// bindings only change when the GUI applies a new set wholesale.
func (l *Listener) finishCapture(st *listenerState, combo Combination, reason error) {
	session := st.capture
	if session == nil {
		return
	}
	st.capture = nil
	session.deadline.Stop()
	l.source.Stop()
	l.restoreCaptureSlot(st, session)

	if reason != nil {
		l.log.Printf("Capture for %s cancelled: %v (modifiers seen: %s)", session.target, reason, session.seenMods)
		l.emit(CaptureCancelled{Command: session.target, Reason: reason})
		return
	}
	l.log.Printf("Capture for %s resolved: %s", session.target, combo)
	l.emit(CaptureResolved{Command: session.target, Combo: combo})
}

// restoreCaptureSlot re-registers the binding withdrawn for the session.
func (l *Listener) restoreCaptureSlot(st *listenerState, session *captureSession) {
	if !session.hadSlot {
		return
	}
	binding := Binding{Command: session.target, Combo: session.previous}
	if err := l.register(st, binding); err != nil {
		l.emit(RegistrationFailed{Command: binding.Command, Combo: binding.Combo, Err: err})
	}
}
