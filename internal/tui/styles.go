package tui

import "github.com/charmbracelet/lipgloss"

// One Dark palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorCyan      = lipgloss.Color("#56B6C2")
	ColorBorder    = lipgloss.Color("#3F4451")
	ColorHighlight = lipgloss.Color("#2C313C")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PaneTitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	ConnectedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	DisconnectedStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	PortStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	CursorStyle = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(ColorFgPrimary).
			Bold(true)

	MarkedStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted).
				Italic(true)

	StatusInfoStyle  = lipgloss.NewStyle().Foreground(ColorBlue)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			PaddingLeft(1)
)

// rawStyles colours raw log lines by direction.
var rawStyles = map[string]lipgloss.Style{
	"SEND":  lipgloss.NewStyle().Foreground(ColorGreen),
	"RECV":  lipgloss.NewStyle().Foreground(ColorBlue),
	"INFO":  lipgloss.NewStyle().Foreground(ColorFgMuted),
	"ERROR": lipgloss.NewStyle().Foreground(ColorRed),
}
