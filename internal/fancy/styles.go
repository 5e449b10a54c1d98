package fancy

import "github.com/charmbracelet/lipgloss"

// Common styles that can be used across the application
var (
	RootStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(colorHeader).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(colorInfo).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(colorBranch)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(colorComponent)

	// StableStateStyle marks states a host rests in between calls.
	StableStateStyle = lipgloss.NewStyle().
				Foreground(colorStable).
				Bold(true)

	// TransientStateStyle marks states whose entry runs a phase.
	TransientStateStyle = lipgloss.NewStyle().
				Foreground(colorTransient)

	FaultStateStyle = lipgloss.NewStyle().
			Foreground(colorFault).
			Bold(true)

	TriggerStyle = lipgloss.NewStyle().
			Foreground(colorTrigger)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorFault)
)

// ValidText styles valid status text (green)
func ValidText(text string) string {
	return StableStateStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}
