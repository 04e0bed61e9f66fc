// Package app wires the tray, hotkey listener, command registry and
// firewall backend together and runs the event loop between them.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/ncruces/zenity"

	"github.com/NineO1/solo-public-lobby/internal/command"
	"github.com/NineO1/solo-public-lobby/internal/config"
	"github.com/NineO1/solo-public-lobby/internal/diag"
	"github.com/NineO1/solo-public-lobby/internal/firewall"
	"github.com/NineO1/solo-public-lobby/internal/hotkey"
	"github.com/NineO1/solo-public-lobby/internal/rulediff"
	"github.com/NineO1/solo-public-lobby/internal/suspend"
	"github.com/NineO1/solo-public-lobby/internal/ui"
)

const appName = "Solo Public Lobby V -Online"

// Application is the composition root.
type Application struct {
	config   *config.Config
	version  string
	log      *diag.Logger
	registry *command.Registry
	listener *hotkey.Listener
	tray     *ui.SystrayManager
	notify   *ui.NotificationManager
	recorder *rulediff.Recorder

	done     chan struct{}
	doneOnce sync.Once
}

// New builds the application. A missing hotkey facility is not fatal; the
// tray still works with hotkeys disabled.
func New(cfg *config.Config, version string, log *diag.Logger) (*Application, error) {
	ports, err := firewall.ParsePorts(cfg.RemotePorts)
	if err != nil {
		return nil, fmt.Errorf("invalid remote_ports in config: %w", err)
	}
	rule := firewall.Rule{Name: cfg.RuleName, Ports: ports}

	backend, err := firewall.NewBackend(log)
	if err != nil {
		log.Printf("Warning: %v; rule commands will fail", err)
	}

	a := &Application{
		config:   cfg,
		version:  version,
		log:      log,
		recorder: rulediff.NewRecorder(),
		done:     make(chan struct{}),
	}

	launcher := suspend.NewLauncher(log)
	a.registry = command.NewRegistry(backend, rule, func(ctx context.Context, cmd hotkey.Command) error {
		if cmd == hotkey.CmdSuspendLegacy {
			return launcher.Launch(ctx, suspend.Legacy)
		}
		return launcher.Launch(ctx, suspend.Enhanced)
	}, log)

	registrar, err := hotkey.NewXHotkeyRegistrar(log)
	if err != nil {
		log.Printf("Warning: %v; global hotkeys disabled", err)
	} else {
		a.listener = hotkey.NewListener(registrar, hotkey.NewKeySource(), a.dispatch, log)
	}

	a.notify = ui.NewNotificationManager(cfg.UseNotifications, appName,
		ui.StateIcon(firewall.StateUnknown), log)
	a.tray = ui.NewSystrayManager(appName, version, ui.SystrayCallbacks{
		OnCommand:         a.runCommand,
		OnRebind:          a.onRebind,
		OnViewLastChange:  a.onViewLastChange,
		OnCopyDiagnostics: a.onCopyDiagnostics,
		OnAbout:           a.onAbout,
		OnQuit:            a.shutdown,
	}, log)

	return a, nil
}

// Run blocks until the tray exits.
func (a *Application) Run() {
	a.tray.Run(a.onReady, a.onExit)
}

func (a *Application) onReady() {
	go a.eventLoop()

	if a.listener != nil {
		if err := a.listener.Start(); err != nil {
			a.log.Printf("Error starting hotkey listener: %v", err)
			a.notify.Show("Hotkeys Unavailable", "Global hotkeys could not be started.")
		} else {
			a.applyConfiguredBindings()
		}
	} else {
		a.notify.Show("Hotkeys Unavailable", "Global hotkeys are not supported in this session.")
	}

	// Seed the tray with the real rule state.
	a.registry.Trigger(hotkey.CmdRefresh)
}

func (a *Application) onExit() {
	a.shutdown()
}

func (a *Application) shutdown() {
	a.doneOnce.Do(func() {
		a.log.Printf("Shutting down")
		if a.listener != nil {
			a.listener.Stop()
		}
		close(a.done)
	})
}

// applyConfiguredBindings pushes the config's hotkey map to the listener.
func (a *Application) applyConfiguredBindings() {
	bindings, errs := a.config.Bindings()
	for _, err := range errs {
		a.log.Printf("Warning: %v", err)
		a.notify.Show("Hotkey Skipped", err.Error())
	}
	a.listener.ApplyBindings(bindings)
}

// dispatch runs on the listener goroutine and must return immediately.
func (a *Application) dispatch(cmd hotkey.Command) {
	go a.runCommand(cmd)
}

// runCommand triggers a command, asking for confirmation first where the
// config demands it.
func (a *Application) runCommand(cmd hotkey.Command) {
	if cmd == hotkey.CmdDelete && a.config.ConfirmDelete {
		err := zenity.Question(
			fmt.Sprintf("Delete the firewall rule '%s'?", a.config.RuleName),
			zenity.Title(appName+" - Confirm Delete"),
			zenity.WarningIcon,
			zenity.OKLabel("Delete"),
			zenity.CancelLabel("Cancel"),
		)
		if err != nil {
			if !errors.Is(err, zenity.ErrCanceled) {
				a.log.Printf("Error showing delete confirmation: %v", err)
			}
			return
		}
	}
	a.registry.Trigger(cmd)
}

// eventLoop consumes listener events and command outcomes until shutdown.
// All tray and notification updates happen here.
func (a *Application) eventLoop() {
	var events <-chan hotkey.Event
	if a.listener != nil {
		events = a.listener.Events()
	}
	for {
		select {
		case <-a.done:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.handleListenerEvent(ev)
		case out := <-a.registry.Outcomes():
			a.handleOutcome(out)
		}
	}
}

func (a *Application) handleListenerEvent(ev hotkey.Event) {
	switch ev := ev.(type) {
	case hotkey.RegistrationFailed:
		a.log.Printf("Hotkey %s for %s not registered: %v", ev.Combo, ev.Command, ev.Err)
		a.notify.Show("Hotkey Unavailable",
			fmt.Sprintf("%s could not be bound for '%s': %v", ev.Combo, ev.Command, ev.Err))

	case hotkey.CaptureResolved:
		a.config.SetBinding(ev.Command, ev.Combo)
		if err := a.config.Save(); err != nil {
			a.log.Printf("Error saving config after rebind: %v", err)
			a.notify.Show("Hotkey Not Saved", err.Error())
			return
		}
		a.applyConfiguredBindings()
		a.notify.Show("Hotkey Updated",
			fmt.Sprintf("'%s' is now bound to %s.", ev.Command, ev.Combo))

	case hotkey.CaptureCancelled:
		switch {
		case errors.Is(ev.Reason, hotkey.ErrCaptureTimeout):
			a.notify.Show("Hotkey Capture", "No combination was pressed in time; keeping the old hotkey.")
		case errors.Is(ev.Reason, hotkey.ErrCaptureBusy):
			a.notify.Show("Hotkey Capture", "Another capture is already in progress.")
		case errors.Is(ev.Reason, hotkey.ErrCaptureUnsupported):
			a.notify.Show("Hotkey Capture", "Recording keys is not supported here; type the combination instead.")
		default:
			a.log.Printf("Capture for %s cancelled: %v", ev.Command, ev.Reason)
		}
	}
}

func (a *Application) handleOutcome(out command.Outcome) {
	a.tray.SetRuleState(out.State)

	if a.recorder.Record(out.Command.String(), out.Before, out.After) {
		a.tray.SetViewChangeEnabled(true)
	}

	switch out.Status {
	case command.Success:
		// Silent on refresh; the tray already shows the state.
		if out.Command != hotkey.CmdRefresh {
			a.notify.Show(appName, out.Message)
		}
	case command.Unknown:
		a.notify.Show("Rule State Unknown", out.Message)
	default:
		a.log.Printf("Command %s failed: %v", out.Command, out.Err)
		a.notify.Show("Command Failed", out.Message)
	}
}

// onRebind drives the hotkey rebinding flow: pick a command, then either
// record a new combination or type one.
func (a *Application) onRebind() {
	items := make([]string, 0, len(hotkey.Commands()))
	byLabel := make(map[string]hotkey.Command)
	for _, cmd := range hotkey.Commands() {
		label := fmt.Sprintf("%s (unbound)", cmd)
		if combo := a.config.Hotkeys[cmd.String()]; combo != "" {
			label = fmt.Sprintf("%s (%s)", cmd, combo)
		}
		items = append(items, label)
		byLabel[label] = cmd
	}

	chosen, err := zenity.List("Choose the command to rebind:", items,
		zenity.Title(appName+" - Change Hotkeys"))
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Printf("Error showing rebind list: %v", err)
		}
		return
	}
	cmd, ok := byLabel[chosen]
	if !ok {
		return
	}

	if a.listener != nil {
		err = zenity.Question(
			fmt.Sprintf("Rebind '%s'.\n\nRecord the new combination by pressing it, or type it manually?", cmd),
			zenity.Title(appName+" - Change Hotkeys"),
			zenity.OKLabel("Record Keys"),
			zenity.CancelLabel("Type Manually"),
		)
		if err == nil {
			a.listener.BeginCapture(cmd)
			a.notify.Show("Hotkey Capture",
				fmt.Sprintf("Press the new combination for '%s' now (modifier + key).", cmd))
			return
		}
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Printf("Error showing rebind question: %v", err)
			return
		}
		// Cancel means type manually.
	}
	a.rebindByEntry(cmd)
}

func (a *Application) rebindByEntry(cmd hotkey.Command) {
	entry, err := zenity.Entry(
		fmt.Sprintf("Enter the new combination for '%s' (e.g. Ctrl+Alt+C):", cmd),
		zenity.Title(appName+" - Change Hotkeys"),
		zenity.EntryText(a.config.Hotkeys[cmd.String()]),
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Printf("Error showing rebind entry: %v", err)
		}
		return
	}
	combo, err := hotkey.ParseCombination(entry)
	if err != nil {
		zenity.Error(fmt.Sprintf("'%s' is not a valid combination: %v", entry, err),
			zenity.Title(appName+" - Change Hotkeys"))
		return
	}
	a.config.SetBinding(cmd, combo)
	if err := a.config.Save(); err != nil {
		a.log.Printf("Error saving config after rebind: %v", err)
		a.notify.Show("Hotkey Not Saved", err.Error())
		return
	}
	if a.listener != nil {
		a.applyConfiguredBindings()
	}
	a.notify.Show("Hotkey Updated", fmt.Sprintf("'%s' is now bound to %s.", cmd, combo))
}

func (a *Application) onViewLastChange() {
	change, ok := a.recorder.Last()
	if !ok {
		a.notify.Show("Rule Change", "No rule change recorded yet.")
		a.tray.SetViewChangeEnabled(false)
		return
	}
	if err := a.tray.ShowChangeReport(change); err != nil {
		a.log.Printf("Error showing change report: %v", err)
		a.notify.Show("Rule Change", "Could not open the change report.")
	}
}

func (a *Application) onCopyDiagnostics() {
	text := a.log.TailText()
	if text == "" {
		text = "(no log lines recorded)"
	}
	if err := clipboard.WriteAll(text); err != nil {
		a.log.Printf("Error copying diagnostics: %v", err)
		a.notify.Show("Copy Diagnostics", "Could not write to the clipboard.")
		return
	}
	a.notify.Show("Copy Diagnostics",
		fmt.Sprintf("Copied %d log lines to the clipboard.", strings.Count(text, "\n")+1))
}

func (a *Application) onAbout() {
	rule := a.registry.Rule()
	msg := fmt.Sprintf("%s %s\n\nManages the firewall rule '%s'\nblocking outbound UDP ports %s.\n\nConfig: %s",
		appName, a.version, rule.Name, rule.PortsString(), a.config.GetConfigPath())
	if err := zenity.Info(msg, zenity.Title(appName), zenity.InfoIcon); err != nil &&
		!errors.Is(err, zenity.ErrCanceled) {
		a.log.Printf("Error showing about dialog: %v", err)
	}
}
