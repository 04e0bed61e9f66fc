// Package config loads and saves the application's single JSON
// configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/NineO1/solo-public-lobby/internal/hotkey"
)

// DefaultRuleName is the firewall rule the application manages.
const DefaultRuleName = "GTA Online Rule"

// DefaultRemotePorts are the game's session UDP ports.
const DefaultRemotePorts = "6672,61455,61456,61457,61458"

// DefaultHotkeys maps command names to their default combinations.
var DefaultHotkeys = map[string]string{
	"create":           "Ctrl+Alt+C",
	"toggle":           "Ctrl+Alt+T",
	"delete":           "Ctrl+Alt+D",
	"suspend_enhanced": "Ctrl+Alt+E",
	"refresh":          "Ctrl+Alt+R",
}

// Config holds the application configuration.
type Config struct {
	RuleName         string            `json:"rule_name"`
	RemotePorts      string            `json:"remote_ports"`
	UseNotifications bool              `json:"use_notifications"`
	ConfirmDelete    bool              `json:"confirm_delete"`
	Hotkeys          map[string]string `json:"hotkeys"`

	configPath string
}

// GetConfigPath returns the path this configuration was loaded from.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

func defaultConfig() *Config {
	hotkeys := make(map[string]string, len(DefaultHotkeys))
	for name, combo := range DefaultHotkeys {
		hotkeys[name] = combo
	}
	return &Config{
		RuleName:         DefaultRuleName,
		RemotePorts:      DefaultRemotePorts,
		UseNotifications: true,
		ConfirmDelete:    true,
		Hotkeys:          hotkeys,
	}
}

// Load reads and parses the configuration file, creating a default one
// when it does not exist. Missing hotkey entries are filled from the
// defaults so a command never silently loses its binding.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			cfg.configPath = configPath
			if saveErr := cfg.Save(); saveErr != nil {
				return nil, fmt.Errorf("config file not found and failed to create default '%s': %w", configPath, saveErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	cfg.configPath = configPath

	// The boolean flags default to true, which zero values cannot
	// express. Only an explicit key in the file overrides them.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		if _, ok := raw["use_notifications"]; !ok {
			cfg.UseNotifications = true
		}
		if _, ok := raw["confirm_delete"]; !ok {
			cfg.ConfirmDelete = true
		}
	}

	if cfg.RuleName == "" {
		cfg.RuleName = DefaultRuleName
	}
	if cfg.RemotePorts == "" {
		cfg.RemotePorts = DefaultRemotePorts
	}
	if cfg.Hotkeys == nil {
		cfg.Hotkeys = make(map[string]string, len(DefaultHotkeys))
	}
	for name, combo := range DefaultHotkeys {
		if _, ok := cfg.Hotkeys[name]; !ok {
			cfg.Hotkeys[name] = combo
		}
	}
	return &cfg, nil
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file '%s': %w", c.configPath, err)
	}
	return nil
}

// Bindings converts the hotkey map to listener bindings. Entries that do
// not parse are skipped and reported so one bad line never disables every
// hotkey.
func (c *Config) Bindings() ([]hotkey.Binding, []error) {
	var bindings []hotkey.Binding
	var errs []error
	for _, cmd := range hotkey.Commands() {
		spec, ok := c.Hotkeys[cmd.String()]
		if !ok || spec == "" {
			continue
		}
		combo, err := hotkey.ParseCombination(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey for %s: %w", cmd, err))
			continue
		}
		bindings = append(bindings, hotkey.Binding{Command: cmd, Combo: combo})
	}
	return bindings, errs
}

// SetBinding updates one command's combination in the hotkey map.
func (c *Config) SetBinding(cmd hotkey.Command, combo hotkey.Combination) {
	if c.Hotkeys == nil {
		c.Hotkeys = make(map[string]string)
	}
	c.Hotkeys[cmd.String()] = combo.String()
}
