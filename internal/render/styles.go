package render

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorWhite  = lipgloss.Color("#f8fafc")
)

// styles are bound to one renderer so color output follows the destination
// writer rather than os.Stdout.
type styles struct {
	title       lipgloss.Style
	dim         lipgloss.Style
	err         lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	tableHeader lipgloss.Style
	tableBorder lipgloss.Style
	cell        lipgloss.Style
	id          lipgloss.Style
	green       lipgloss.Style
	yellow      lipgloss.Style
	red         lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:       r.NewStyle().Bold(true).Foreground(colorBlue),
		dim:         r.NewStyle().Foreground(colorGray),
		err:         r.NewStyle().Bold(true).Foreground(colorRed),
		label:       r.NewStyle().Foreground(colorGray).Width(12),
		value:       r.NewStyle().Foreground(colorWhite),
		tableHeader: r.NewStyle().Bold(true).Foreground(colorGray).PaddingRight(2),
		tableBorder: r.NewStyle().Foreground(colorGray),
		cell:        r.NewStyle().Foreground(colorWhite).PaddingRight(2),
		id:          r.NewStyle().Foreground(colorCyan).PaddingRight(2),
		green:       r.NewStyle().Bold(true).Foreground(colorGreen),
		yellow:      r.NewStyle().Bold(true).Foreground(colorYellow),
		red:         r.NewStyle().Bold(true).Foreground(colorRed),
	}
}

// status picks a style for a provider status string.
func (s styles) status(v string) lipgloss.Style {
	switch v {
	case "online", "running", "active", "paid", "success", "complete", "completed":
		return s.green
	case "offline", "stopped", "failed", "error", "unpaid", "overdue":
		return s.red
	case "":
		return s.dim
	default:
		return s.yellow
	}
}
