package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/glabrego/postdeck/internal/feed"
	"github.com/glabrego/postdeck/internal/post"
)

// FeedClient lists summary posts from the read API.
type FeedClient interface {
	ListPosts(ctx context.Context, limit int, interweave bool) ([]post.Post, error)
}

// Repository is the local snapshot and preference store.
type Repository interface {
	SavePosts(ctx context.Context, posts []post.Post) error
	ListPosts(ctx context.Context, limit int) ([]post.Post, error)
	GetPref(ctx context.Context, key string) (string, bool, error)
	SetPref(ctx context.Context, key, value string) error
}

const (
	prefKeySources  = "filter.sources"
	prefKeySubs     = "filter.subs"
	prefKeySortMode = "sort.mode"
)

type Service struct {
	client FeedClient
	repo   Repository
}

func NewService(client FeedClient, repo Repository) *Service {
	return &Service{client: client, repo: repo}
}

// Refresh pulls a fresh feed from the read API, snapshots it locally, and
// returns the stored list so startup and refresh go through the same path.
func (s *Service) Refresh(ctx context.Context, limit int, interweave bool) ([]post.Post, error) {
	posts, err := s.client.ListPosts(ctx, limit, interweave)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	if err := s.repo.SavePosts(ctx, posts); err != nil {
		return nil, fmt.Errorf("snapshot posts: %w", err)
	}
	cached, err := s.repo.ListPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return cached, nil
}

// ListCached returns the last snapshot without touching the network.
func (s *Service) ListCached(ctx context.Context, limit int) ([]post.Post, error) {
	posts, err := s.repo.ListPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return posts, nil
}

// FilterState is the persisted slice of the user's browsing session.
type FilterState struct {
	Filter   feed.Filter
	SortMode feed.SortMode
}

// LoadFilterState restores filter choices from the preference table.
// Absent keys mean defaults; malformed stored JSON also falls back to the
// default for that key rather than failing startup.
func (s *Service) LoadFilterState(ctx context.Context) (FilterState, error) {
	state := FilterState{}

	if raw, found, err := s.repo.GetPref(ctx, prefKeySources); err != nil {
		return FilterState{}, err
	} else if found {
		var sources []post.Source
		if json.Unmarshal([]byte(raw), &sources) == nil {
			state.Filter.Sources = sources
		}
	}

	if raw, found, err := s.repo.GetPref(ctx, prefKeySubs); err != nil {
		return FilterState{}, err
	} else if found {
		var subs []string
		if json.Unmarshal([]byte(raw), &subs) == nil {
			state.Filter.Subs = subs
		}
	}

	if raw, found, err := s.repo.GetPref(ctx, prefKeySortMode); err != nil {
		return FilterState{}, err
	} else if found {
		var label string
		if json.Unmarshal([]byte(raw), &label) == nil {
			state.SortMode = feed.ParseSortMode(label)
		}
	}

	return state, nil
}

// SaveFilterState persists filter choices as flat key→JSON entries.
func (s *Service) SaveFilterState(ctx context.Context, state FilterState) error {
	entries := []struct {
		key   string
		value any
	}{
		{prefKeySources, state.Filter.Sources},
		{prefKeySubs, state.Filter.Subs},
		{prefKeySortMode, state.SortMode.String()},
	}
	for _, entry := range entries {
		raw, err := json.Marshal(entry.value)
		if err != nil {
			return fmt.Errorf("encode pref %s: %w", entry.key, err)
		}
		if err := s.repo.SetPref(ctx, entry.key, string(raw)); err != nil {
			return err
		}
	}
	return nil
}
