package view

import "github.com/charmbracelet/lipgloss"

// Styles は CLI 出力で使う見た目の定義です。
type Styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Pending    lipgloss.Style
	Generating lipgloss.Style
	Done       lipgloss.Style
	Failed     lipgloss.Style
	Error      lipgloss.Style
	Prompt     lipgloss.Style
	Assistant  lipgloss.Style
}

// DefaultStyles は標準の配色を返します。
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")),
		Generating: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA")),
		Done: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34D399")).
			Bold(true),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")),
		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true),
		Assistant: lipgloss.NewStyle().
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#FBBF24")),
	}
}
