package hotkey

import "fmt"

// Command identifies one of the fixed application actions a global hotkey
// can trigger. The set is stable; persisted configuration refers to
// commands by their string name.
type Command int

const (
	CmdCreate Command = iota + 1
	CmdToggle
	CmdDelete
	CmdSuspendEnhanced
	CmdSuspendLegacy
	CmdRefresh
)

var commandNames = map[Command]string{
	CmdCreate:          "create",
	CmdToggle:          "toggle",
	CmdDelete:          "delete",
	CmdSuspendEnhanced: "suspend_enhanced",
	CmdSuspendLegacy:   "suspend_legacy",
	CmdRefresh:         "refresh",
}

// Commands returns all commands in a stable order suitable for menus and
// dialogs.
func Commands() []Command {
	return []Command{CmdCreate, CmdToggle, CmdDelete, CmdSuspendEnhanced, CmdSuspendLegacy, CmdRefresh}
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// ParseCommand converts a persisted command name back to a Command.
func ParseCommand(name string) (Command, error) {
	for c, n := range commandNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command: %s", name)
}

// Binding pairs a command with the key combination that triggers it.
// Binding sets are applied wholesale: rebinding one command regenerates
// the full registration set.
type Binding struct {
	Command Command
	Combo   Combination
}
