package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD787")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorBlue    = lipgloss.Color("#5FAFFF")
	ColorIndigo  = lipgloss.Color("#8787FF")
	ColorGray    = lipgloss.Color("#808080")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorIndigo).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	InfoTextStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	// Stage strip.
	StageActiveStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Background(ColorBlue).
				Bold(true).
				Padding(0, 1)

	StageDoneStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Padding(0, 1)

	StagePendingStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Padding(0, 1)

	// Checklist.
	CheckedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ChecklistMarkStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	// Stage timer.
	TimerStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	TimerOverStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			Blink(true)

	// Coach log.
	CoachLabelStyle = lipgloss.NewStyle().
			Foreground(ColorIndigo).
			Bold(true)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorIndigo)

	// Confirm dialog.
	ConfirmStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Padding(0, 2)
)
