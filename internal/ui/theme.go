package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the listen view.
type Styles struct {
	Title     lipgloss.Style
	Status    lipgloss.Style
	Countdown lipgloss.Style
	Paused    lipgloss.Style
	Degraded  lipgloss.Style
	EventTag  lipgloss.Style
	EventTime lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Countdown: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Degraded:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		EventTag:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		EventTime: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
