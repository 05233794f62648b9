package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/glabrego/postdeck/internal/post"
)

// SortMode selects the ordering applied after filtering.
type SortMode int

const (
	Chronological SortMode = iota
	Trending
)

// TrendingWindow bounds how far back a post can be published and still
// qualify for the trending prefix.
const TrendingWindow = 48 * time.Hour

func (m SortMode) String() string {
	switch m {
	case Chronological:
		return "chronological"
	case Trending:
		return "trending"
	default:
		return fmt.Sprintf("sortmode(%d)", int(m))
	}
}

// ParseSortMode maps a persisted mode label back to a SortMode. Unknown
// labels fall back to Chronological.
func ParseSortMode(label string) SortMode {
	if label == Trending.String() {
		return Trending
	}
	return Chronological
}

// BuildView materializes the ordered view for the list pane: dedup by id,
// drop ids-less posts, filter, then sort. Pure: the same (posts, filter,
// mode, now) always yields the same order, and the input slice is never
// mutated.
func BuildView(posts []post.Post, f Filter, mode SortMode, now time.Time) []post.Post {
	view := make([]post.Post, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		if !f.Allows(p) {
			continue
		}
		view = append(view, p)
	}

	switch mode {
	case Trending:
		sortTrending(view, now)
	default:
		sortChronological(view)
	}
	return view
}

// sortChronological orders newest first. Posts with no parseable published
// time go last, in their incoming order.
func sortChronological(view []post.Post) {
	sort.SliceStable(view, func(i, j int) bool {
		a, b := view[i].PublishedAt, view[j].PublishedAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}

// sortTrending ranks a "hot" prefix, posts published within the trending
// window that have at least one upvote, by descending upvotes; everything
// else follows in chronological order.
func sortTrending(view []post.Post, now time.Time) {
	cutoff := now.Add(-TrendingWindow)
	hot := func(p post.Post) bool {
		return !p.PublishedAt.IsZero() && p.PublishedAt.After(cutoff) && p.Upvotes > 0
	}
	sortChronological(view)
	sort.SliceStable(view, func(i, j int) bool {
		hi, hj := hot(view[i]), hot(view[j])
		if hi != hj {
			return hi
		}
		if hi {
			return view[i].Upvotes > view[j].Upvotes
		}
		return false
	})
}
