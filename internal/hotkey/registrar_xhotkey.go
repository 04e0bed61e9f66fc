package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// XHotkeyRegistrar registers hotkeys through golang.design/x/hotkey.
// It supports Windows, macOS and X11; Wayland has no global-hotkey
// facility this library can use.
type XHotkeyRegistrar struct {
	displayServer DisplayServer
	log           *diag.Logger
}

// NewXHotkeyRegistrar creates the production registrar. It returns
// ErrRegistrarUnavailable when the current display server cannot support
// global hotkeys.
func NewXHotkeyRegistrar(log *diag.Logger) (*XHotkeyRegistrar, error) {
	ds := DetectDisplayServer()
	log.Printf("Hotkey registrar: detected display server: %s", ds)

	switch ds {
	case DisplayServerWindows, DisplayServerX11:
		return &XHotkeyRegistrar{displayServer: ds, log: log}, nil
	default:
		return nil, fmt.Errorf("%w (%s)", ErrRegistrarUnavailable, ds)
	}
}

func (r *XHotkeyRegistrar) Name() string {
	return fmt.Sprintf("golang.design/x/hotkey (%s)", r.displayServer)
}

// Register claims the combination system-wide.
func (r *XHotkeyRegistrar) Register(combo Combination) (RegisteredHotkey, error) {
	key, ok := keyMap[combo.Key]
	if !ok {
		return nil, fmt.Errorf("%w: key '%s' has no OS key code", ErrInvalidCombination, combo.Key)
	}

	hk := hotkey.New(toNativeModifiers(combo.Mods), key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCombinationClaimed, combo, err)
	}

	wrapped := &xRegisteredHotkey{
		hotkey:    hk,
		combo:     combo,
		log:       r.log,
		keydownCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
	}
	wrapped.startEventConverter()

	r.log.Printf("Registered hotkey %s", combo)
	return wrapped, nil
}

// xRegisteredHotkey adapts hotkey.Hotkey's event channel to the
// RegisteredHotkey interface.
type xRegisteredHotkey struct {
	hotkey    *hotkey.Hotkey
	combo     Combination
	log       *diag.Logger
	keydownCh chan struct{}
	stopCh    chan struct{}
}

func (h *xRegisteredHotkey) Keydown() <-chan struct{} {
	return h.keydownCh
}

// startEventConverter forwards hotkey.Event values as plain signals until
// the registration is closed.
func (h *xRegisteredHotkey) startEventConverter() {
	go func() {
		defer func() {
			h.log.Crash(fmt.Sprintf("hotkey converter %s", h.combo), recover())
		}()
		for {
			select {
			case <-h.stopCh:
				close(h.keydownCh)
				return
			case <-h.hotkey.Keydown():
				select {
				case h.keydownCh <- struct{}{}:
				case <-h.stopCh:
					close(h.keydownCh)
					return
				}
			}
		}
	}()
}

func (h *xRegisteredHotkey) Close() error {
	close(h.stopCh)
	if err := h.hotkey.Unregister(); err != nil {
		return fmt.Errorf("failed to unregister %s: %w", h.combo, err)
	}
	h.log.Printf("Unregistered hotkey %s", h.combo)
	return nil
}
