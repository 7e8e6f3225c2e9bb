package prompt

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#4ECDC4")
	subtleColor = lipgloss.Color("#666666")
	noteColor   = lipgloss.Color("#FFE66D")

	counterStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	commandStyle  = lipgloss.NewStyle().Bold(true)
	noteStyle     = lipgloss.NewStyle().Foreground(noteColor).Italic(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(subtleColor)
	helpStyle     = lipgloss.NewStyle().Foreground(subtleColor).MarginTop(1)
)
