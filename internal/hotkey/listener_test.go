package hotkey

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// fakeRegistrar stands in for the OS hotkey facility. It tracks live
// registrations and lets tests simulate key presses and per-combination
// rejections.
type fakeRegistrar struct {
	mu     sync.Mutex
	active map[Combination]*fakeHotkey
	reject map[Combination]error
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		active: make(map[Combination]*fakeHotkey),
		reject: make(map[Combination]error),
	}
}

func (r *fakeRegistrar) Name() string { return "fake" }

func (r *fakeRegistrar) Register(combo Combination) (RegisteredHotkey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.reject[combo]; err != nil {
		return nil, err
	}
	if _, taken := r.active[combo]; taken {
		return nil, ErrCombinationClaimed
	}
	h := &fakeHotkey{reg: r, combo: combo, keydown: make(chan struct{}, 4)}
	r.active[combo] = h
	return h, nil
}

// press simulates an OS keydown for the combination. Returns false when no
// registration holds it.
func (r *fakeRegistrar) press(combo Combination) bool {
	r.mu.Lock()
	h, ok := r.active[combo]
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.keydown <- struct{}{}
	return true
}

func (r *fakeRegistrar) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

func (r *fakeRegistrar) holds(combo Combination) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[combo]
	return ok
}

type fakeHotkey struct {
	reg     *fakeRegistrar
	combo   Combination
	keydown chan struct{}
}

func (h *fakeHotkey) Keydown() <-chan struct{} { return h.keydown }

func (h *fakeHotkey) Close() error {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	delete(h.reg.active, h.combo)
	return nil
}

// fakeKeySource lets capture tests inject raw key events.
type fakeKeySource struct {
	mu       sync.Mutex
	sink     chan<- KeyEvent
	running  bool
	startErr error
}

func (s *fakeKeySource) Start(events chan<- KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.sink = events
	s.running = true
	return nil
}

func (s *fakeKeySource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *fakeKeySource) emit(ev KeyEvent) {
	s.mu.Lock()
	sink, running := s.sink, s.running
	s.mu.Unlock()
	if running {
		sink <- ev
	}
}

func (s *fakeKeySource) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func mustCombo(t *testing.T, s string) Combination {
	t.Helper()
	c, err := ParseCombination(s)
	require.NoError(t, err)
	return c
}

func testLogger() *diag.Logger { return diag.New("") }

func newTestListener(t *testing.T, reg Registrar, source KeySource) (*Listener, chan Command) {
	t.Helper()
	dispatched := make(chan Command, 16)
	l := NewListener(reg, source, func(c Command) { dispatched <- c }, testLogger())
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)
	return l, dispatched
}

// sync waits until the listener has drained all control messages posted so
// far, using the snapshot query as a barrier.
func (l *Listener) sync() { l.Bindings() }

func nextEvent(t *testing.T, l *Listener) Event {
	t.Helper()
	select {
	case ev := <-l.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for listener event")
		return nil
	}
}

func nextDispatch(t *testing.T, dispatched chan Command) Command {
	t.Helper()
	select {
	case cmd := <-dispatched:
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
		return 0
	}
}

func TestListenerDispatchesRegisteredHotkeys(t *testing.T) {
	reg := newFakeRegistrar()
	l, dispatched := newTestListener(t, reg, &fakeKeySource{})

	l.ApplyBindings([]Binding{
		{Command: CmdCreate, Combo: mustCombo(t, "Ctrl+Alt+C")},
		{Command: CmdToggle, Combo: mustCombo(t, "Ctrl+Alt+T")},
	})
	l.sync()

	require.True(t, reg.press(mustCombo(t, "Ctrl+Alt+T")))
	assert.Equal(t, CmdToggle, nextDispatch(t, dispatched))

	require.True(t, reg.press(mustCombo(t, "Ctrl+Alt+C")))
	assert.Equal(t, CmdCreate, nextDispatch(t, dispatched))
}

func TestListenerPartialRegistration(t *testing.T) {
	reg := newFakeRegistrar()
	claimed := mustCombo(t, "Ctrl+Alt+D")
	reg.reject[claimed] = ErrCombinationClaimed

	l, dispatched := newTestListener(t, reg, &fakeKeySource{})
	l.ApplyBindings([]Binding{
		{Command: CmdCreate, Combo: mustCombo(t, "Ctrl+Alt+C")},
		{Command: CmdDelete, Combo: claimed},
		{Command: CmdToggle, Combo: mustCombo(t, "Ctrl+Alt+T")},
	})

	ev := nextEvent(t, l)
	failed, ok := ev.(RegistrationFailed)
	require.True(t, ok, "expected RegistrationFailed, got %#v", ev)
	assert.Equal(t, CmdDelete, failed.Command)
	assert.ErrorIs(t, failed.Err, ErrCombinationClaimed)

	// The rejected binding does not take the rest of the set down.
	l.sync()
	assert.Equal(t, 2, reg.activeCount())
	require.True(t, reg.press(mustCombo(t, "Ctrl+Alt+T")))
	assert.Equal(t, CmdToggle, nextDispatch(t, dispatched))
}

func TestListenerRejectsDuplicateCombos(t *testing.T) {
	reg := newFakeRegistrar()
	l, _ := newTestListener(t, reg, &fakeKeySource{})

	shared := mustCombo(t, "Ctrl+Alt+X")
	l.ApplyBindings([]Binding{
		{Command: CmdCreate, Combo: shared},
		{Command: CmdToggle, Combo: shared},
	})

	ev := nextEvent(t, l)
	failed, ok := ev.(RegistrationFailed)
	require.True(t, ok, "expected RegistrationFailed, got %#v", ev)
	assert.Equal(t, CmdToggle, failed.Command)
	assert.ErrorIs(t, failed.Err, ErrDuplicateCombination)

	l.sync()
	assert.Equal(t, 1, reg.activeCount())
}

func TestListenerReplacesStaleSlotOnReapply(t *testing.T) {
	reg := newFakeRegistrar()
	l, dispatched := newTestListener(t, reg, &fakeKeySource{})

	shared := mustCombo(t, "Ctrl+Alt+X")
	l.ApplyBindings([]Binding{{Command: CmdCreate, Combo: shared}})
	l.sync()
	require.True(t, reg.press(shared))
	assert.Equal(t, CmdCreate, nextDispatch(t, dispatched))

	// Reassigning the same combination to another command must drop the
	// old slot first, or the registrar would report it as claimed.
	l.ApplyBindings([]Binding{{Command: CmdToggle, Combo: shared}})
	l.sync()
	assert.Equal(t, 1, reg.activeCount())
	require.True(t, reg.press(shared))
	assert.Equal(t, CmdToggle, nextDispatch(t, dispatched))
}

func TestListenerPendingRebindWinsOverPendingPress(t *testing.T) {
	reg := newFakeRegistrar()
	release := make(chan struct{})
	inDispatch := make(chan struct{})
	dispatched := make(chan Command, 16)
	l := NewListener(reg, &fakeKeySource{}, func(c Command) {
		if c == CmdToggle {
			inDispatch <- struct{}{}
			<-release
		}
		dispatched <- c
	}, testLogger())
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)

	comboC := mustCombo(t, "Ctrl+Alt+C")
	comboT := mustCombo(t, "Ctrl+Alt+T")
	l.ApplyBindings([]Binding{
		{Command: CmdCreate, Combo: comboC},
		{Command: CmdToggle, Combo: comboT},
	})
	l.sync()

	// Hold the listener inside a dispatch so both the press below and the
	// rebind removing its binding are queued when it returns to the loop.
	require.True(t, reg.press(comboT))
	<-inDispatch
	require.True(t, reg.press(comboC))
	l.ApplyBindings([]Binding{{Command: CmdToggle, Combo: comboT}})
	close(release)

	assert.Equal(t, CmdToggle, nextDispatch(t, dispatched))

	// The rebind was queued alongside the press; it must be serviced
	// first, so the press lands on a withdrawn slot and never fires.
	l.sync()
	assert.False(t, reg.holds(comboC))
	select {
	case cmd := <-dispatched:
		t.Fatalf("press dispatched to withdrawn command %s", cmd)
	default:
	}
}

func TestListenerBindingsSnapshot(t *testing.T) {
	reg := newFakeRegistrar()
	l, _ := newTestListener(t, reg, &fakeKeySource{})

	want := []Binding{
		{Command: CmdCreate, Combo: mustCombo(t, "Ctrl+Alt+C")},
		{Command: CmdToggle, Combo: mustCombo(t, "Ctrl+Alt+T")},
		{Command: CmdRefresh, Combo: mustCombo(t, "Ctrl+Alt+R")},
	}
	l.ApplyBindings(want)

	assert.ElementsMatch(t, want, l.Bindings())
}

func TestListenerSurvivesDispatchPanic(t *testing.T) {
	reg := newFakeRegistrar()
	dispatched := make(chan Command, 16)
	calls := 0
	l := NewListener(reg, &fakeKeySource{}, func(c Command) {
		calls++
		if calls == 1 {
			panic("handler bug")
		}
		dispatched <- c
	}, testLogger())
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)

	combo := mustCombo(t, "Ctrl+Alt+T")
	l.ApplyBindings([]Binding{{Command: CmdToggle, Combo: combo}})
	l.sync()

	require.True(t, reg.press(combo))
	l.sync() // first press panicked; listener must still be alive
	require.True(t, reg.press(combo))
	assert.Equal(t, CmdToggle, nextDispatch(t, dispatched))
}

func TestListenerStopReleasesSlots(t *testing.T) {
	reg := newFakeRegistrar()
	l, _ := newTestListener(t, reg, &fakeKeySource{})

	l.ApplyBindings([]Binding{
		{Command: CmdCreate, Combo: mustCombo(t, "Ctrl+Alt+C")},
		{Command: CmdToggle, Combo: mustCombo(t, "Ctrl+Alt+T")},
	})
	l.sync()
	require.Equal(t, 2, reg.activeCount())

	l.Stop()
	assert.Equal(t, 0, reg.activeCount(), "all slots must be released before Stop returns")

	// Events channel is closed so a GUI loop ranging over it exits.
	_, open := <-l.Events()
	assert.False(t, open)

	l.Stop() // idempotent
}

func TestListenerStartTwice(t *testing.T) {
	l, _ := newTestListener(t, newFakeRegistrar(), &fakeKeySource{})
	assert.Error(t, l.Start())
}

func TestListenerStartWithoutRegistrar(t *testing.T) {
	l := NewListener(nil, &fakeKeySource{}, func(Command) {}, testLogger())
	assert.ErrorIs(t, l.Start(), ErrRegistrarUnavailable)
}
