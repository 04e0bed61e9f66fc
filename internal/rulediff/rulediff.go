// Package rulediff records before/after snapshots of the firewall rule's
// status text and renders a line diff of what a command changed.
package rulediff

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one recorded rule mutation.
type Change struct {
	Command string
	When    time.Time
	Before  string
	After   string
}

// Recorder keeps the most recent rule change for the tray's
// "View Last Rule Change" action.
type Recorder struct {
	mu   sync.Mutex
	last *Change
}

func NewRecorder() *Recorder { return &Recorder{} }

// Record stores a change when the snapshots actually differ. Returns true
// when a change was stored.
func (r *Recorder) Record(command, before, after string) bool {
	if before == after {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &Change{Command: command, When: time.Now(), Before: before, After: after}
	return true
}

// Last returns the most recent change, if any.
func (r *Recorder) Last() (Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Change{}, false
	}
	return *r.last, true
}

// Line is one line of a rendered change.
type Line struct {
	Op   diffmatchpatch.Operation
	Text string
}

// Lines computes a line-level diff of the change. Each firewall status
// field stays on its own line in the output.
func Lines(c Change) []Line {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 5 * time.Second

	beforeRunes, afterRunes, lineIndex := dmp.DiffLinesToChars(c.Before, c.After)
	diffs := dmp.DiffMain(beforeRunes, afterRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lineIndex)

	var lines []Line
	for _, diff := range diffs {
		for _, text := range strings.Split(strings.TrimRight(diff.Text, "\n"), "\n") {
			lines = append(lines, Line{Op: diff.Type, Text: text})
		}
	}
	return lines
}

// Render produces a textual line diff of the change with a short summary.
func Render(c Change) string {
	inserted, deleted := 0, 0
	var body bytes.Buffer
	for _, line := range Lines(c) {
		switch line.Op {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&body, "+ %s\n", line.Text)
			inserted++
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&body, "- %s\n", line.Text)
			deleted++
		default:
			fmt.Fprintf(&body, "  %s\n", line.Text)
		}
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "Rule change (%s) at %s\n", c.Command, c.When.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&out, "Lines added: %d, removed: %d\n\n", inserted, deleted)
	out.Write(body.Bytes())
	return out.String()
}
