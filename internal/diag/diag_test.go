package diag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailKeepsRecentLinesInOrder(t *testing.T) {
	l := New("")

	l.Printf("first %d", 1)
	l.Printf("second %d", 2)
	l.Printf("third %d", 3)

	tail := l.Tail()
	require.Len(t, tail, 3)
	assert.Contains(t, tail[0], "first 1")
	assert.Contains(t, tail[1], "second 2")
	assert.Contains(t, tail[2], "third 3")
	assert.Contains(t, l.TailText(), "second 2")
}

func TestTailIsBounded(t *testing.T) {
	l := New("")

	for i := 0; i < DefaultTailSize+25; i++ {
		l.Printf("line %d", i)
	}

	tail := l.Tail()
	require.Len(t, tail, DefaultTailSize)
	assert.Contains(t, tail[0], "line 25", "oldest lines are evicted")
	assert.Contains(t, tail[len(tail)-1], "line 224")
}

func TestDebugFileReceivesOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug_log.txt")
	l := New(path)

	l.Printf("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestCrashWritesStackTrace(t *testing.T) {
	dir := t.TempDir()
	l := New(filepath.Join(dir, "debug_log.txt"))

	assert.False(t, l.Crash("no-op", nil), "nil recover is not a crash")

	func() {
		defer func() {
			assert.True(t, l.Crash("test boundary", recover()))
		}()
		panic("boom")
	}()

	data, err := os.ReadFile(filepath.Join(dir, "crash_log.txt"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "test boundary")
	assert.Contains(t, text, "boom")
	assert.True(t, strings.Contains(text, "goroutine"), "stack trace present")
}
