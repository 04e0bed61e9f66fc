// Package diag provides the injected logging and crash-trace collaborator
// shared by the listener, command registry and UI components.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// DefaultTailSize is the number of recent log lines kept in memory for
// the "Copy Diagnostics" action.
const DefaultTailSize = 200

// Logger writes timestamped log lines to stderr (and optionally a debug
// file) while keeping a bounded in-memory tail of recent lines.
type Logger struct {
	std *log.Logger

	mu    sync.Mutex
	tail  []string
	next  int
	count int

	crashPath string
}

// New creates a Logger writing to stderr. If debugPath is non-empty the
// same output is appended to that file; failure to open it is not fatal.
func New(debugPath string) *Logger {
	var w io.Writer = os.Stderr
	if debugPath != "" {
		f, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("Warning: could not open debug log '%s': %v", debugPath, err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	}
	l := &Logger{
		std:  log.New(w, "", log.LstdFlags),
		tail: make([]string, DefaultTailSize),
	}
	if debugPath != "" {
		l.crashPath = filepath.Join(filepath.Dir(debugPath), "crash_log.txt")
	} else {
		l.crashPath = "crash_log.txt"
	}
	return l
}

// Printf logs a line and records it in the in-memory tail.
func (l *Logger) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	l.std.Print(line)

	l.mu.Lock()
	l.tail[l.next] = time.Now().Format("2006-01-02 15:04:05") + " " + line
	l.next = (l.next + 1) % len(l.tail)
	if l.count < len(l.tail) {
		l.count++
	}
	l.mu.Unlock()
}

// Tail returns the recent log lines, oldest first.
func (l *Logger) Tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, l.count)
	start := l.next - l.count
	if start < 0 {
		start += len(l.tail)
	}
	for i := 0; i < l.count; i++ {
		out = append(out, l.tail[(start+i)%len(l.tail)])
	}
	return out
}

// TailText returns the recent log lines as a single string.
func (l *Logger) TailText() string {
	return strings.Join(l.Tail(), "\n")
}

// Crash records a recovered panic with its stack, both to the normal log
// and to the crash file, and returns true when there was a panic.
func (l *Logger) Crash(context string, recovered interface{}) bool {
	if recovered == nil {
		return false
	}
	stack := string(debug.Stack())
	l.Printf("RECOVERED FROM PANIC (%s): %v", context, recovered)

	f, err := os.OpenFile(l.crashPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.Printf("Warning: could not write crash log: %v", err)
		return true
	}
	defer f.Close()
	fmt.Fprintf(f, "\n[%s] Panic in %s: %v\n%s\n",
		time.Now().Format("2006-01-02 15:04:05"), context, recovered, stack)
	return true
}
