package fancy

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcdefg...", TruncateString("abcdefghijklmnop", 10))
}

func TestTrees(t *testing.T) {
	t.Parallel()

	root := Tree()
	root.Root("host")
	branch := BranchNode("Features", "(1)")
	component := NewComponentTree("heartbeat")
	component.AddBranch("interval: 1s")
	component.AddChild("enabled")
	branch.Child(component.Tree())
	root.Child(branch)

	out := root.String()
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "Features")
	assert.Contains(t, out, "heartbeat")
	assert.Contains(t, out, "interval: 1s")
	assert.Contains(t, out, "enabled")
}

func TestStylePalette(t *testing.T) {
	t.Parallel()

	styles := map[string]interface{ GetForeground() lipgloss.TerminalColor }{
		"root":      RootStyle,
		"header":    HeaderStyle,
		"info":      InfoStyle,
		"branch":    BranchStyle,
		"component": ComponentStyle,
		"stable":    StableStateStyle,
		"transient": TransientStateStyle,
		"fault":     FaultStateStyle,
		"trigger":   TriggerStyle,
		"error":     ErrorStyle,
	}
	for name, style := range styles {
		assert.NotEqual(t, lipgloss.NoColor{}, style.GetForeground(), name)
	}

	assert.Equal(t, colorFault, FaultStateStyle.GetForeground())
	assert.Equal(t, colorFault, ErrorStyle.GetForeground())
	assert.NotEqual(t, StableStateStyle.GetForeground(), TransientStateStyle.GetForeground())
	assert.Contains(t, ValidText("ok"), "ok")
	assert.Contains(t, ErrorText("bad"), "bad")
}
