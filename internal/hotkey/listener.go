// Package hotkey owns global-hotkey registration and dispatch. A single
// listener goroutine holds every OS registration; the GUI talks to it only
// through ordered control messages and consumes results from an event
// channel, so listener state never needs a lock.
package hotkey

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

type controlKind int

const (
	ctlApply controlKind = iota
	ctlBeginCapture
	ctlCancelCapture
	ctlSnapshot
	ctlStop
)

type controlMsg struct {
	kind     controlKind
	bindings []Binding
	target   Command
	snapshot chan []Binding
	done     chan struct{}
}

// registration is one live OS hotkey slot plus its forwarding goroutine.
type registration struct {
	binding Binding
	handle  RegisteredHotkey
	stop    chan struct{}
}

// listenerState is owned exclusively by the listener goroutine.
type listenerState struct {
	registered map[Command]*registration
	capture    *captureSession
}

// Listener converts OS hotkey signals into command dispatches on a
// dedicated goroutine. Control messages are always serviced before the
// next pending signal.
type Listener struct {
	// CaptureTimeout bounds capture sessions. Set before Start.
	CaptureTimeout time.Duration

	registrar Registrar
	source    KeySource
	dispatch  func(Command)
	log       *diag.Logger

	controls chan controlMsg
	signals  chan Command
	rawKeys  chan KeyEvent
	events   chan Event

	started  atomic.Bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewListener creates a listener. The dispatch function runs on the
// listener goroutine and must return quickly; slow work belongs in the
// command registry's workers.
func NewListener(registrar Registrar, source KeySource, dispatch func(Command), log *diag.Logger) *Listener {
	return &Listener{
		CaptureTimeout: DefaultCaptureTimeout,
		registrar:      registrar,
		source:         source,
		dispatch:       dispatch,
		log:            log,
		controls:       make(chan controlMsg, 16),
		signals:        make(chan Command),
		rawKeys:        make(chan KeyEvent, 16),
		events:         make(chan Event, 64),
		stopped:        make(chan struct{}),
	}
}

// Start launches the listener goroutine.
func (l *Listener) Start() error {
	if l.registrar == nil {
		return ErrRegistrarUnavailable
	}
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("listener already started")
	}
	go l.run()
	return nil
}

// Events returns the channel carrying listener results for the GUI loop.
// It is closed when the listener stops.
func (l *Listener) Events() <-chan Event { return l.events }

// ApplyBindings replaces the full registration set. Fire-and-forget;
// per-binding failures arrive as RegistrationFailed events.
func (l *Listener) ApplyBindings(bindings []Binding) {
	l.post(controlMsg{kind: ctlApply, bindings: append([]Binding(nil), bindings...)})
}

// BeginCapture starts a capture session for the command. Rejected with a
// CaptureCancelled event if a session is already active.
func (l *Listener) BeginCapture(target Command) {
	l.post(controlMsg{kind: ctlBeginCapture, target: target})
}

// CancelCapture cancels the active capture session, if any.
func (l *Listener) CancelCapture() {
	l.post(controlMsg{kind: ctlCancelCapture})
}

// Bindings returns the currently registered bindings, queried through the
// control channel like every other interaction.
func (l *Listener) Bindings() []Binding {
	reply := make(chan []Binding, 1)
	l.post(controlMsg{kind: ctlSnapshot, snapshot: reply})
	select {
	case b := <-reply:
		return b
	case <-l.stopped:
		return nil
	}
}

// Stop shuts the listener down and releases every OS hotkey slot before
// returning. Safe to call multiple times and from any goroutine.
func (l *Listener) Stop() {
	if !l.started.Load() {
		return
	}
	l.stopOnce.Do(func() {
		done := make(chan struct{})
		select {
		case l.controls <- controlMsg{kind: ctlStop, done: done}:
			<-done
		case <-l.stopped:
		}
	})
	<-l.stopped
}

func (l *Listener) post(msg controlMsg) {
	select {
	case l.controls <- msg:
	case <-l.stopped:
	}
}

// emit delivers an event without ever blocking the pump.
func (l *Listener) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		l.log.Printf("Listener event dropped (consumer not keeping up): %#v", ev)
	}
}

func (l *Listener) run() {
	st := &listenerState{registered: make(map[Command]*registration)}
	defer close(l.stopped)

	for {
		// Service pending control messages before the next signal.
		select {
		case msg := <-l.controls:
			if l.handleControl(st, msg) {
				return
			}
			continue
		default:
		}

		var deadlineC <-chan time.Time
		if st.capture != nil {
			deadlineC = st.capture.deadline.C
		}

		select {
		case msg := <-l.controls:
			if l.handleControl(st, msg) {
				return
			}
		case cmd := <-l.signals:
			l.handleSignal(st, cmd)
		case ev := <-l.rawKeys:
			l.handleRawKey(st, ev)
		case <-deadlineC:
			l.finishCapture(st, Combination{}, ErrCaptureTimeout)
		}
	}
}

// handleControl processes one control message; it returns true when the
// listener should exit.
func (l *Listener) handleControl(st *listenerState, msg controlMsg) bool {
	switch msg.kind {
	case ctlApply:
		l.applyBindings(st, msg.bindings)
	case ctlBeginCapture:
		l.beginCapture(st, msg.target)
	case ctlCancelCapture:
		l.finishCapture(st, Combination{}, ErrCaptureCancelled)
	case ctlSnapshot:
		out := make([]Binding, 0, len(st.registered))
		for _, reg := range st.registered {
			out = append(out, reg.binding)
		}
		msg.snapshot <- out
	case ctlStop:
		l.teardown(st)
		close(msg.done)
		return true
	}
	return false
}

// applyBindings replaces the registration set wholesale. A binding the OS
// rejects is skipped and reported; the rest still register.
func (l *Listener) applyBindings(st *listenerState, bindings []Binding) {
	if st.capture != nil {
		l.finishCapture(st, Combination{}, ErrCaptureCancelled)
	}
	for cmd := range st.registered {
		l.closeRegistration(st, cmd)
	}

	seen := make(map[Combination]Command, len(bindings))
	for _, b := range bindings {
		if owner, dup := seen[b.Combo]; dup {
			err := fmt.Errorf("%w (%s)", ErrDuplicateCombination, owner)
			l.log.Printf("Skipping binding %s for %s: %v", b.Combo, b.Command, err)
			l.emit(RegistrationFailed{Command: b.Command, Combo: b.Combo, Err: err})
			continue
		}
		if err := l.register(st, b); err != nil {
			l.log.Printf("Skipping binding %s for %s: %v", b.Combo, b.Command, err)
			l.emit(RegistrationFailed{Command: b.Command, Combo: b.Combo, Err: err})
			continue
		}
		seen[b.Combo] = b.Command
	}
	l.log.Printf("Applied bindings: %d of %d registered", len(st.registered), len(bindings))
}

func (l *Listener) register(st *listenerState, b Binding) error {
	handle, err := l.registrar.Register(b.Combo)
	if err != nil {
		return err
	}
	reg := &registration{binding: b, handle: handle, stop: make(chan struct{})}
	st.registered[b.Command] = reg
	go l.forward(b.Command, handle.Keydown(), reg.stop)
	return nil
}

func (l *Listener) closeRegistration(st *listenerState, cmd Command) {
	reg, ok := st.registered[cmd]
	if !ok {
		return
	}
	close(reg.stop)
	if err := reg.handle.Close(); err != nil {
		l.log.Printf("Error releasing hotkey %s: %v", reg.binding.Combo, err)
	}
	delete(st.registered, cmd)
}

// forward pumps keydown signals from one registration into the shared
// signal channel, preserving arrival order per slot.
func (l *Listener) forward(cmd Command, keydown <-chan struct{}, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			select {
			case l.signals <- cmd:
			case <-stop:
				return
			}
		}
	}
}

func (l *Listener) handleSignal(st *listenerState, cmd Command) {
	if st.capture != nil && st.capture.target == cmd {
		// The slot was withdrawn for the session; drop the stale signal.
		return
	}
	reg, ok := st.registered[cmd]
	if !ok {
		return
	}
	l.invoke(cmd, reg.binding.Combo)
}

// invoke runs the dispatch function with panic containment: a bad handler
// is logged with full context and never terminates the listener.
func (l *Listener) invoke(cmd Command, combo Combination) {
	defer func() {
		l.log.Crash(fmt.Sprintf("dispatch %s (%s)", cmd, combo), recover())
	}()
	l.log.Printf("Hotkey %s pressed, dispatching %s", combo, cmd)
	l.dispatch(cmd)
}

func (l *Listener) teardown(st *listenerState) {
	if st.capture != nil {
		l.finishCapture(st, Combination{}, ErrCaptureCancelled)
	}
	for cmd := range st.registered {
		l.closeRegistration(st, cmd)
	}
	close(l.events)
	l.log.Printf("Listener stopped, all hotkey slots released")
}
