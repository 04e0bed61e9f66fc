package hotkey

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/windows"
)

// capturePollInterval is how often the capture key source samples the
// keyboard state.
const capturePollInterval = 50 * time.Millisecond

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

const (
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12 // Alt
	vkLWin    = 0x5B
	vkRWin    = 0x5C
)

// captureKeys maps virtual-key codes to canonical key names for every
// primary key a combination may use.
var captureKeys = func() map[int]string {
	m := map[int]string{
		0x20: "space",
		0x09: "tab",
		0x0D: "enter",
		0x1B: "escape",
	}
	for c := 'a'; c <= 'z'; c++ {
		m[int(c-'a'+'A')] = string(c)
	}
	for c := '0'; c <= '9'; c++ {
		m[int(c)] = string(c)
	}
	for i := 0; i < 12; i++ {
		m[0x70+i] = fmt.Sprintf("f%d", i+1)
	}
	return m
}()

// pollKeySource observes raw keyboard state via GetAsyncKeyState. It only
// runs while a capture session is active, so the polling cost is bounded
// by the session timeout.
type pollKeySource struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewKeySource returns the raw key source used for capture sessions.
func NewKeySource() KeySource { return &pollKeySource{} }

func (s *pollKeySource) Start(events chan<- KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return errors.New("key source already running")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.poll(events, s.stop, s.done)
	return nil
}

func (s *pollKeySource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
}

func keyDown(vk int) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

func currentModifiers() ModMask {
	var mods ModMask
	if keyDown(vkControl) {
		mods |= ModCtrl
	}
	if keyDown(vkMenu) {
		mods |= ModAlt
	}
	if keyDown(vkShift) {
		mods |= ModShift
	}
	if keyDown(vkLWin) || keyDown(vkRWin) {
		mods |= ModWin
	}
	return mods
}

// poll samples the keyboard every interval. A freshly pressed primary key
// is reported with the modifiers held at that instant; modifier-only
// changes are reported with an empty key so the session can track them.
func (s *pollKeySource) poll(events chan<- KeyEvent, stop chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(capturePollInterval)
	defer ticker.Stop()

	wasDown := make(map[int]bool, len(captureKeys))
	var prevMods ModMask

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		mods := currentModifiers()
		sent := false
		for vk, name := range captureKeys {
			down := keyDown(vk)
			if down && !wasDown[vk] {
				select {
				case events <- KeyEvent{Mods: mods, Key: name}:
					sent = true
				case <-stop:
					return
				}
			}
			wasDown[vk] = down
		}
		if !sent && mods != prevMods {
			select {
			case events <- KeyEvent{Mods: mods}:
			case <-stop:
				return
			}
		}
		prevMods = mods
	}
}
