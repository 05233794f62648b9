package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	tuitheme "github.com/glabrego/postdeck/internal/tui/theme"

	"github.com/glabrego/postdeck/internal/post"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type PostLineParams struct {
	Post        post.Post
	Now         time.Time
	ShowNumbers bool
	VisiblePos  int
	Active      bool
	Width       int
}

// RenderPostLine draws one list row: cursor marker, source tag, title, and a
// right-aligned upvotes/age label.
func RenderPostLine(p PostLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}

	prefix := fmt.Sprintf("  %s ", cursorMarker)
	if p.ShowNumbers {
		prefix = fmt.Sprintf("  %s %2d. ", cursorMarker, p.VisiblePos+1)
	}

	tag := SourceTag(p.Post)
	right := rightLabel(p.Post, p.Now)

	available := p.Width - visibleLen(prefix) - visibleLen(tag) - 1 - 1 - visibleLen(right)
	if available < 1 {
		available = 1
	}
	title := strings.TrimSpace(p.Post.Title)
	if title == "" {
		title = "(untitled)"
	}
	title = truncateRunes(title, available)

	styledTag := th.StyleSourceTag(p.Post.Source, tag)
	styledTitle := th.StylePostTitle(p.Post, title)
	gap := p.Width - visibleLen(prefix) - visibleLen(tag) - 1 - visibleLen(title) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	line := prefix + styledTag + " " + styledTitle + strings.Repeat(" ", gap) + th.MetaValue.Render(right)
	return th.RenderActiveLine(p.Active, line)
}

// SourceTag returns the bracketed origin label for a post.
func SourceTag(p post.Post) string {
	switch p.Source {
	case post.SourceHackerNews:
		return "[hn]"
	case post.SourceReddit:
		if p.Sub != "" {
			return "[r/" + p.Sub + "]"
		}
		return "[reddit]"
	default:
		if p.Source == "" {
			return "[?]"
		}
		return "[" + strings.ToLower(string(p.Source)) + "]"
	}
}

func rightLabel(p post.Post, now time.Time) string {
	parts := make([]string, 0, 2)
	if p.Upvotes > 0 {
		parts = append(parts, fmt.Sprintf("▲%d", p.Upvotes))
	}
	if age := post.RelativeLabel(now, p.PublishedAt); age != "" {
		parts = append(parts, age)
	}
	return strings.Join(parts, " · ")
}

// RenderDetailHeader draws the detail pane header: styled title plus a meta
// line with author, origin, age, and link availability.
func RenderDetailHeader(p post.Post, now time.Time, width int, th tuitheme.Theme) []string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "(untitled)"
	}

	meta := make([]string, 0, 4)
	if p.Author != "" {
		meta = append(meta, "by "+p.Author)
	}
	meta = append(meta, strings.Trim(SourceTag(p), "[]"))
	if age := post.RelativeLabel(now, p.PublishedAt); age != "" {
		meta = append(meta, age)
	}
	if p.Upvotes > 0 {
		meta = append(meta, fmt.Sprintf("▲%d", p.Upvotes))
	}

	lines := []string{th.Section.Render(truncateRunes(title, maxOf(1, width)))}
	lines = append(lines, th.MetaValue.Render(truncateRunes(strings.Join(meta, " · "), maxOf(1, width))))
	if p.HasLink() {
		lines = append(lines, th.MetaLabel.Render(truncateRunes("link: "+p.URL, maxOf(1, width))))
	}
	if discussion := p.DiscussionURL(); discussion != "" && discussion != p.URL {
		lines = append(lines, th.MetaLabel.Render(truncateRunes("thread: "+discussion, maxOf(1, width))))
	}
	return lines
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}
