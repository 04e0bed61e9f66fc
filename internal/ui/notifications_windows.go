//go:build windows

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-toast/toast"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	iconPath, err := n.writeTempIcon()
	if err != nil {
		n.log.Printf("Error writing temporary toast icon: %v", err)
		iconPath = "" // toast without an icon
	} else {
		time.AfterFunc(10*time.Second, func() {
			if errRem := os.Remove(iconPath); errRem != nil && !os.IsNotExist(errRem) {
				n.log.Printf("Error removing temporary icon file %s: %v", iconPath, errRem)
			}
		})
	}

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    iconPath,
	}
	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			n.log.Printf("Toast notification failed: notifications may be disabled in Windows Settings.")
		}
		return err
	}
	return nil
}

// writeTempIcon writes the generated icon to a temporary file, since toast
// notifications only accept an icon by path.
func (n *NotificationManager) writeTempIcon() (string, error) {
	if len(n.icon) == 0 {
		return "", fmt.Errorf("no icon data")
	}
	tmpFile, err := os.CreateTemp("", "sololobby-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(n.icon); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}
	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		return tmpFile.Name(), nil
	}
	return absPath, nil
}
