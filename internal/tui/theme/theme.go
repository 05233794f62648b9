package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/postdeck/internal/post"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	Upvotes    lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	TagHackerNews lipgloss.Style
	TagReddit     lipgloss.Style
	TitleText     lipgloss.Style
	TitleLinked   lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		Upvotes:    lipgloss.NewStyle().Foreground(cpYellow),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		TagHackerNews: lipgloss.NewStyle().Foreground(cpPeach),
		TagReddit:     lipgloss.NewStyle().Foreground(cpTeal),
		TitleText:     lipgloss.NewStyle().Foreground(cpText),
		TitleLinked:   lipgloss.NewStyle().Bold(true).Foreground(cpText),
	}
}

// StyleSourceTag colors the per-source tag in list rows.
func (t Theme) StyleSourceTag(source post.Source, tag string) string {
	switch source {
	case post.SourceHackerNews:
		return t.TagHackerNews.Render(tag)
	case post.SourceReddit:
		return t.TagReddit.Render(tag)
	default:
		return t.MetaValue.Render(tag)
	}
}

// StylePostTitle renders a list-row title, bolding posts that carry an
// external link.
func (t Theme) StylePostTitle(p post.Post, title string) string {
	if title == "" {
		return title
	}
	if p.HasLink() {
		return t.TitleLinked.Render(title)
	}
	return t.TitleText.Render(title)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
