package outline

import "github.com/charmbracelet/lipgloss"

var (
	textPrimaryColor = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"}
	textMutedColor   = lipgloss.AdaptiveColor{Light: "#9A9A9A", Dark: "#696969"}
	focusColor       = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}
	modifiedColor    = lipgloss.AdaptiveColor{Light: "#B9770E", Dark: "#FECA57"}
)

// Styles used by the outline.
type Styles struct {
	Split       lipgloss.Style
	Pane        lipgloss.Style
	ActivePane  lipgloss.Style
	Item        lipgloss.Style
	ActiveItem  lipgloss.Style
	Empty       lipgloss.Style
	Modified    lipgloss.Style
	Indicator   lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		Split:       lipgloss.NewStyle().Foreground(textMutedColor),
		Pane:        lipgloss.NewStyle().Foreground(textPrimaryColor),
		ActivePane:  lipgloss.NewStyle().Foreground(focusColor).Bold(true),
		Item:        lipgloss.NewStyle().Foreground(textPrimaryColor),
		ActiveItem:  lipgloss.NewStyle().Foreground(textPrimaryColor).Bold(true),
		Empty:       lipgloss.NewStyle().Foreground(textMutedColor).Italic(true),
		Modified:    lipgloss.NewStyle().Foreground(modifiedColor),
		Indicator:   lipgloss.NewStyle().Foreground(focusColor).Bold(true),
		Placeholder: lipgloss.NewStyle().Foreground(textMutedColor),
	}
}
