package ui

import "github.com/charmbracelet/lipgloss"

// Palette used by the renderer.
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Warning      = lipgloss.Color("214")
	Success      = lipgloss.Color("42")
	Info         = lipgloss.Color("45")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Buttons and chips.
var (
	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("238")).
		Padding(0, 2)

	ButtonPrimary = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Primary).
			Bold(true).
			Padding(0, 2)

	ButtonDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Error).
			Bold(true).
			Padding(0, 2)

	Chip = lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("237")).
		Padding(0, 1)

	WindowAction = lipgloss.NewStyle().
			Foreground(Muted).
			Bold(true)
)

// Text.
var (
	Title    = lipgloss.NewStyle().Bold(true)
	Subtitle = lipgloss.NewStyle().Foreground(Muted)
	Body     = lipgloss.NewStyle()
	Overlay  = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

// Alert ribbons by severity class.
var alertStyles = map[string]lipgloss.Style{
	"alert-error":        lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(Error).Padding(0, 1),
	"alert-notification": lipgloss.NewStyle().Foreground(lipgloss.Color("232")).Background(Warning).Padding(0, 1),
	"alert-success":      lipgloss.NewStyle().Foreground(lipgloss.Color("232")).Background(Success).Padding(0, 1),
}

// borderColor picks the window border color from theme classes.
func borderColor(el *Element) lipgloss.TerminalColor {
	switch {
	case el.HasClass("danger"):
		return Error
	case el.HasClass("warning"):
		return Warning
	case el.HasClass("info"):
		return Info
	case el.HasClass("docked"):
		return Primary
	default:
		return BorderNormal
	}
}

func buttonStyle(el *Element) lipgloss.Style {
	switch {
	case el.HasClass("danger"):
		return ButtonDanger
	case el.HasClass("primary"):
		return ButtonPrimary
	default:
		return Button
	}
}
