//go:build windows

package ui

// OpenFileInDefaultApp opens the file with its associated application via
// the shell, so HTML lands in the browser and JSON in the editor.
func OpenFileInDefaultApp(filePath string) error {
	return shellExecute(0, "open", filePath, "", "", swShowNormal)
}
