package dialog

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the polish dialog.
type Styles struct {
	Title  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
