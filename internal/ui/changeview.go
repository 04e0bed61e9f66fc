package ui

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/NineO1/solo-public-lobby/internal/rulediff"
)

const changeReportStyle = `
body { font-family: sans-serif; margin: 2em; background-color: #fdfdfd; }
h1 { font-size: 1.2em; }
.meta { color: #555; margin-bottom: 1em; }
pre { background-color: #f4f4f4; padding: 1em; border-radius: 4px; }
.ins { background-color: #d4fcbc; }
.del { background-color: #fbb6c2; text-decoration: line-through; }
`

// renderChangeReportHTML builds a standalone HTML page showing the rule
// change as a line diff.
func renderChangeReportHTML(c rulediff.Change) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<title>Rule Change</title><style>")
	b.WriteString(changeReportStyle)
	b.WriteString("</style></head><body>\n")
	fmt.Fprintf(&b, "<h1>Firewall rule change: %s</h1>\n", html.EscapeString(c.Command))
	fmt.Fprintf(&b, "<div class=\"meta\">%s</div>\n", c.When.Format("2006-01-02 15:04:05"))
	b.WriteString("<pre>")
	for _, line := range rulediff.Lines(c) {
		text := html.EscapeString(line.Text)
		switch line.Op {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&b, "<span class=\"ins\">+ %s</span>\n", text)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&b, "<span class=\"del\">- %s</span>\n", text)
		default:
			fmt.Fprintf(&b, "  %s\n", text)
		}
	}
	b.WriteString("</pre>\n</body></html>\n")
	return b.String()
}

// ShowChangeReport writes the change as an HTML report and opens it in the
// default browser. The file cleans itself up after a grace period.
func (s *SystrayManager) ShowChangeReport(c rulediff.Change) error {
	f, err := os.CreateTemp("", "sololobby-change-*.html")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := f.WriteString(renderChangeReportHTML(c)); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	path := f.Name()
	time.AfterFunc(2*time.Minute, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Printf("Error removing change report %s: %v", path, err)
		}
	})

	s.log.Printf("Opening rule change report: %s", path)
	return OpenFileInDefaultApp(path)
}
