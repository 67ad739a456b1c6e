package tui

import "github.com/charmbracelet/lipgloss"

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	closedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color("88")).
				Padding(0, 1)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	calendarTodayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Underline(true)
)
