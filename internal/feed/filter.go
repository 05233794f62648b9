package feed

import (
	"github.com/glabrego/postdeck/internal/post"
)

// Filter holds the user's source and sub-category selections. Empty slices
// mean no restriction for that axis.
type Filter struct {
	Sources []post.Source
	Subs    []string
}

// Allows reports whether a post survives the filter. The sub-category rule
// only applies to community posts; other sources are never dropped by it.
func (f Filter) Allows(p post.Post) bool {
	if len(f.Sources) > 0 && !containsSource(f.Sources, p.Source) {
		return false
	}
	if len(f.Subs) > 0 && p.Source == post.SourceReddit && !containsString(f.Subs, p.Sub) {
		return false
	}
	return true
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return len(f.Sources) == 0 && len(f.Subs) == 0
}

// ToggleSource flips a source selection and returns the updated filter.
func (f Filter) ToggleSource(s post.Source) Filter {
	out := Filter{Subs: f.Subs}
	found := false
	for _, existing := range f.Sources {
		if existing == s {
			found = true
			continue
		}
		out.Sources = append(out.Sources, existing)
	}
	if !found {
		out.Sources = append(f.Sources[:len(f.Sources):len(f.Sources)], s)
	}
	// Dropping the community source makes sub selections meaningless.
	if found && s == post.SourceReddit {
		out.Subs = nil
	}
	return out
}

// ToggleSub flips a sub-category selection and returns the updated filter.
func (f Filter) ToggleSub(sub string) Filter {
	out := Filter{Sources: f.Sources}
	found := false
	for _, existing := range f.Subs {
		if existing == sub {
			found = true
			continue
		}
		out.Subs = append(out.Subs, existing)
	}
	if !found {
		out.Subs = append(f.Subs[:len(f.Subs):len(f.Subs)], sub)
	}
	return out
}

func containsSource(haystack []post.Source, needle post.Source) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
