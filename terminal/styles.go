package terminal

import "github.com/charmbracelet/lipgloss"

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // blue
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
)

const (
	symbolError = "✗"
	symbolWarn  = "⚠"
	symbolInfo  = "•"
)

// RenderError renders msg with a red cross.
func RenderError(msg string) string {
	return errorStyle.Render(symbolError) + " " + msg
}

// RenderWarn renders msg with an orange warning sign.
func RenderWarn(msg string) string {
	return warnStyle.Render(symbolWarn) + " " + msg
}

// RenderInfo renders msg with a blue bullet.
func RenderInfo(msg string) string {
	return infoStyle.Render(symbolInfo) + " " + msg
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}
