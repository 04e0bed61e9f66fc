package ui

import (
	"github.com/NineO1/solo-public-lobby/internal/diag"
)

// NotificationManager shows desktop notifications across platforms.
type NotificationManager struct {
	useNotifications bool
	appName          string
	icon             []byte
	log              *diag.Logger
}

// NewNotificationManager creates a notification manager. icon is the ICO
// shown on Windows toasts.
func NewNotificationManager(useNotifications bool, appName string, icon []byte, log *diag.Logger) *NotificationManager {
	return &NotificationManager{
		useNotifications: useNotifications,
		appName:          appName,
		icon:             icon,
		log:              log,
	}
}

// SetEnabled toggles notification delivery at runtime.
func (n *NotificationManager) SetEnabled(enabled bool) {
	n.useNotifications = enabled
}

// Show displays a desktop notification if enabled.
func (n *NotificationManager) Show(title, message string) {
	if !n.useNotifications {
		n.log.Printf("Notification suppressed (disabled): %s - %s", title, message)
		return
	}
	if err := n.platformNotify(title, message); err != nil {
		n.log.Printf("Error showing notification: %v", err)
	}
}
