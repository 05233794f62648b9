package post

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

// Source identifies the system a post was aggregated from.
type Source string

const (
	SourceHackerNews Source = "HNEWS"
	SourceReddit     Source = "REDDIT"
)

// Post is a single feed entry. The summary form has CommentHTML empty; the
// detail form carries the rendered discussion markup, which supersedes Text
// when present.
type Post struct {
	ID          string
	Source      Source
	Sub         string
	Title       string
	Text        string
	Author      string
	Upvotes     int
	PublishedAt time.Time
	URL         string
	CommentURL  string
	CommentHTML string
}

// Body returns the content to render for the detail pane.
func (p Post) Body() string {
	if strings.TrimSpace(p.CommentHTML) != "" {
		return p.CommentHTML
	}
	return p.Text
}

// HasLink reports whether the post points at an external page.
func (p Post) HasLink() bool {
	return strings.TrimSpace(p.URL) != ""
}

// DiscussionURL returns the comment thread link, deriving the canonical
// Reddit permalink when the feed did not carry one.
func (p Post) DiscussionURL() string {
	if p.CommentURL != "" {
		return p.CommentURL
	}
	if p.Source == SourceReddit && p.Sub != "" && p.ID != "" {
		return "https://www.reddit.com/r/" + p.Sub + "/comments/" + p.ID
	}
	return ""
}

// ParsePublished turns a feed timestamp into a time.Time. The upstream
// sources disagree on formats, so parsing is tolerant; anything unparseable
// comes back as the zero time, which sorts after every dated post.
func ParsePublished(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RelativeLabel renders a published time as a short relative phrase for
// list rows ("2 days ago"). Unknown times render as an empty string.
func RelativeLabel(now, published time.Time) string {
	if published.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	if published.After(now) {
		return "just now"
	}
	return humanize.RelTime(published, now, "ago", "from now")
}
