//go:build !windows

package hotkey

// stubKeySource is the raw key source on platforms without a keyboard
// state API. Capture sessions fail immediately; registered hotkeys still
// work through the registrar.
type stubKeySource struct{}

// NewKeySource returns the raw key source used for capture sessions.
func NewKeySource() KeySource { return stubKeySource{} }

func (stubKeySource) Start(chan<- KeyEvent) error { return ErrCaptureUnsupported }

func (stubKeySource) Stop() {}
