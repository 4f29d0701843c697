package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// Tree styles
var (
	FolderStyle = lipgloss.NewStyle().
			Foreground(FolderColor).
			Bold(true)

	FileStyle = NormalStyle

	IndexStyle = lipgloss.NewStyle().
			Foreground(IndexColor).
			Bold(true)

	CanvasStyle = lipgloss.NewStyle().
			Foreground(CanvasColor)

	MarkStyle = lipgloss.NewStyle().
			Foreground(MarkColor).
			Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Background(SurfaceColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			MarginTop(1)
)

// Indicators
var (
	MarkIndicator    = MarkStyle.Render("●")
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	PendingIndicator = MutedStyle.Render("○")
	ExpandedFolder   = FolderStyle.Render("▾")
	CollapsedFolder  = FolderStyle.Render("▸")
)

// Indent pads s by two spaces per level.
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
