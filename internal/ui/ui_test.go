package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NineO1/solo-public-lobby/internal/firewall"
	"github.com/NineO1/solo-public-lobby/internal/rulediff"
)

func TestStateIconsAreValidICO(t *testing.T) {
	seen := make(map[string]bool)
	for _, state := range []firewall.RuleState{
		firewall.StateEnabled, firewall.StateDisabled,
		firewall.StateAbsent, firewall.StateUnknown,
	} {
		icon := StateIcon(state)
		require.Greater(t, len(icon), 22, "state %s", state)
		// ICONDIR: reserved 0, type 1 (icon), one image.
		assert.Equal(t, []byte{0, 0, 1, 0, 1, 0}, icon[:6], "state %s", state)
		assert.EqualValues(t, 32, icon[6], "width for state %s", state)
		seen[string(icon)] = true
	}
	assert.Len(t, seen, 4, "each state gets a distinct icon")
}

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "Active (traffic blocked)", StateLabel(firewall.StateEnabled))
	assert.Equal(t, "Disabled (traffic allowed)", StateLabel(firewall.StateDisabled))
	assert.Equal(t, "Not created", StateLabel(firewall.StateAbsent))
	assert.Equal(t, "Unknown", StateLabel(firewall.StateUnknown))
}

func TestRenderChangeReportHTML(t *testing.T) {
	c := rulediff.Change{
		Command: "toggle",
		When:    time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Before:  "Enabled: Yes\nAction: <Block>\n",
		After:   "Enabled: No\nAction: <Block>\n",
	}
	out := renderChangeReportHTML(c)
	assert.Contains(t, out, "Firewall rule change: toggle")
	assert.Contains(t, out, `<span class="del">- Enabled: Yes</span>`)
	assert.Contains(t, out, `<span class="ins">+ Enabled: No</span>`)
	assert.Contains(t, out, "&lt;Block&gt;", "status text is escaped")
	assert.NotContains(t, out, "<Block>")
}
