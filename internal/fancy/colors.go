package fancy

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette entries, named by what they mark in host output.
var (
	colorTitle     = lipgloss.Color("39")
	colorHeader    = lipgloss.Color("15")
	colorInfo      = lipgloss.Color("250")
	colorBranch    = lipgloss.Color("240")
	colorComponent = lipgloss.Color("45")
	colorStable    = lipgloss.Color("82")
	colorTransient = lipgloss.Color("228")
	colorFault     = lipgloss.Color("196")
	colorTrigger   = lipgloss.Color("201")
)
