package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the patient screens.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorWarning   = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
	ColorOK        = lipgloss.Color("42")
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	OKStyle       = lipgloss.NewStyle().Foreground(ColorOK)

	AlertStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(ColorHighlight).
			Padding(0, 1)

	DetailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHeader).
			Padding(0, 1)
)
