package hotkey

// Event is a message posted by the listener for the GUI side to consume.
// The GUI never reads listener state directly; all results travel through
// the Events channel.
type Event interface {
	event()
}

// RegistrationFailed reports that one binding could not be registered with
// the operating system. Other bindings in the same set are unaffected.
type RegistrationFailed struct {
	Command Command
	Combo   Combination
	Err     error
}

// CaptureResolved reports that a capture session ended with a valid new
// combination for the command being rebound.
type CaptureResolved struct {
	Command Command
	Combo   Combination
}

// CaptureCancelled reports that a capture session ended without a new
// combination. Reason distinguishes timeout, explicit cancel and a
// rejected begin while another session was active.
type CaptureCancelled struct {
	Command Command
	Reason  error
}

func (RegistrationFailed) event() {}
func (CaptureResolved) event()    {}
func (CaptureCancelled) event()   {}
