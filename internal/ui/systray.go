package ui

import (
	"fmt"

	"github.com/getlantern/systray"

	"github.com/NineO1/solo-public-lobby/internal/diag"
	"github.com/NineO1/solo-public-lobby/internal/firewall"
	"github.com/NineO1/solo-public-lobby/internal/hotkey"
)

// SystrayCallbacks are the actions the tray menu can trigger. Handlers run
// on their own goroutines; none of them may block the menu loop.
type SystrayCallbacks struct {
	OnCommand         func(hotkey.Command)
	OnRebind          func()
	OnViewLastChange  func()
	OnCopyDiagnostics func()
	OnAbout           func()
	OnQuit            func()
}

// SystrayManager owns the tray icon and menu. The icon mirrors the last
// known rule state.
type SystrayManager struct {
	appName   string
	version   string
	callbacks SystrayCallbacks
	log       *diag.Logger

	miStatus     *systray.MenuItem
	miViewChange *systray.MenuItem
}

// NewSystrayManager creates the tray manager.
func NewSystrayManager(appName, version string, callbacks SystrayCallbacks, log *diag.Logger) *SystrayManager {
	return &SystrayManager{
		appName:   appName,
		version:   version,
		callbacks: callbacks,
		log:       log,
	}
}

// Run starts the tray loop and blocks until Quit. ready runs once the menu
// exists; exit runs when the tray shuts down.
func (s *SystrayManager) Run(ready func(), exit func()) {
	systray.Run(func() {
		s.onReady()
		if ready != nil {
			ready()
		}
	}, exit)
}

// Quit asks the tray loop to exit.
func (s *SystrayManager) Quit() {
	systray.Quit()
}

// StateLabel renders a rule state the way the menu shows it.
func StateLabel(state firewall.RuleState) string {
	switch state {
	case firewall.StateEnabled:
		return "Active (traffic blocked)"
	case firewall.StateDisabled:
		return "Disabled (traffic allowed)"
	case firewall.StateAbsent:
		return "Not created"
	default:
		return "Unknown"
	}
}

// SetRuleState updates the icon, tooltip and status line.
func (s *SystrayManager) SetRuleState(state firewall.RuleState) {
	systray.SetIcon(StateIcon(state))
	systray.SetTooltip(fmt.Sprintf("%s - %s", s.appName, StateLabel(state)))
	if s.miStatus != nil {
		s.miStatus.SetTitle("Rule: " + StateLabel(state))
	}
}

// SetViewChangeEnabled toggles the "View Last Rule Change" item.
func (s *SystrayManager) SetViewChangeEnabled(enabled bool) {
	if s.miViewChange == nil {
		return
	}
	if enabled {
		s.miViewChange.Enable()
	} else {
		s.miViewChange.Disable()
	}
}

func (s *SystrayManager) onReady() {
	systray.SetTitle(s.appName)
	systray.SetTooltip(s.appName)
	systray.SetIcon(StateIcon(firewall.StateUnknown))

	s.miStatus = systray.AddMenuItem("Rule: Unknown", "Current firewall rule state")
	s.miStatus.Disable()
	systray.AddSeparator()

	miCreate := systray.AddMenuItem("Create Rule", "Create and enable the block rule")
	miToggle := systray.AddMenuItem("Toggle Rule", "Enable or disable the block rule")
	miDelete := systray.AddMenuItem("Delete Rule", "Remove the block rule")
	miSuspend := systray.AddMenuItem("Suspend Game (Enhanced)", "Briefly freeze the game process to empty the session")
	miSuspendLegacy := systray.AddMenuItem("Suspend Game (Legacy)", "Freeze the classic edition's process instead")
	miRefresh := systray.AddMenuItem("Refresh Status", "Re-read the rule state from the firewall")
	systray.AddSeparator()

	miRebind := systray.AddMenuItem("Change Hotkeys...", "Rebind the global hotkeys")
	s.miViewChange = systray.AddMenuItem("View Last Rule Change", "Show what the last command changed")
	s.miViewChange.Disable()
	miCopyDiag := systray.AddMenuItem("Copy Diagnostics", "Copy recent log lines to the clipboard")
	systray.AddSeparator()

	miAbout := systray.AddMenuItem(fmt.Sprintf("About (%s)", s.version), "About this application")
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	commandItem := func(mi *systray.MenuItem, cmd hotkey.Command) {
		go func() {
			for range mi.ClickedCh {
				s.log.Printf("Tray: %s clicked", cmd)
				if s.callbacks.OnCommand != nil {
					s.callbacks.OnCommand(cmd)
				}
			}
		}()
	}
	commandItem(miCreate, hotkey.CmdCreate)
	commandItem(miToggle, hotkey.CmdToggle)
	commandItem(miDelete, hotkey.CmdDelete)
	commandItem(miSuspend, hotkey.CmdSuspendEnhanced)
	commandItem(miSuspendLegacy, hotkey.CmdSuspendLegacy)
	commandItem(miRefresh, hotkey.CmdRefresh)

	clickItem := func(mi *systray.MenuItem, name string, fn func()) {
		go func() {
			for range mi.ClickedCh {
				s.log.Printf("Tray: %s clicked", name)
				if fn != nil {
					fn()
				}
			}
		}()
	}
	clickItem(miRebind, "Change Hotkeys", s.callbacks.OnRebind)
	clickItem(s.miViewChange, "View Last Rule Change", s.callbacks.OnViewLastChange)
	clickItem(miCopyDiag, "Copy Diagnostics", s.callbacks.OnCopyDiagnostics)
	clickItem(miAbout, "About", s.callbacks.OnAbout)

	go func() {
		<-miQuit.ClickedCh
		s.log.Printf("Tray: Quit clicked")
		if s.callbacks.OnQuit != nil {
			s.callbacks.OnQuit()
		}
		systray.Quit()
	}()
}
