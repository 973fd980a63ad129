package render

import "github.com/charmbracelet/lipgloss"

// Color constants, reused across the pretty formatter's change-kind and
// summary styling.
const (
	ColorAdded   = lipgloss.Color("42")  // green
	ColorRemoved = lipgloss.Color("196") // red
	ColorMaybe   = lipgloss.Color("214") // orange
	ColorChanged = lipgloss.Color("196") // red
	ColorMuted   = lipgloss.Color("245") // gray
	ColorPrimary = lipgloss.Color("39")  // blue
)

var (
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	PathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	AddedStyle   = lipgloss.NewStyle().Foreground(ColorAdded).Bold(true)
	RemovedStyle = lipgloss.NewStyle().Foreground(ColorRemoved).Bold(true)
	MaybeStyle   = lipgloss.NewStyle().Foreground(ColorMaybe).Bold(true)
	ChangedStyle = lipgloss.NewStyle().Foreground(ColorChanged).Bold(true)
)

// kindCode renders a change kind as the short status code the plain and
// pretty formats print: A (Added), R (Removed), M? (PossiblyModified),
// M (Modified). The json and yaml formats carry the full kind name instead.
func kindCode(kind string) string {
	switch kind {
	case "Added":
		return "A"
	case "Removed":
		return "R"
	case "PossiblyModified":
		return "M?"
	case "Modified":
		return "M"
	default:
		return "?"
	}
}

func styleForKind(kind string) lipgloss.Style {
	switch kind {
	case "Added":
		return AddedStyle
	case "Removed":
		return RemovedStyle
	case "PossiblyModified":
		return MaybeStyle
	case "Modified":
		return ChangedStyle
	default:
		return ValueStyle
	}
}
