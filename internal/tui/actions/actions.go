package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/postdeck/internal/app"
	"github.com/glabrego/postdeck/internal/post"
	"github.com/glabrego/postdeck/internal/resolve"
)

type Service interface {
	Refresh(ctx context.Context, limit int, interweave bool) ([]post.Post, error)
	ListCached(ctx context.Context, limit int) ([]post.Post, error)
	SaveFilterState(ctx context.Context, state app.FilterState) error
}

type Resolver interface {
	Resolve(ctx context.Context, view []post.Post, active post.Post) (resolve.Resolution, error)
}

type RefreshSuccessMsg struct {
	Posts    []post.Post
	Duration time.Duration
	Source   string
}

type RefreshErrorMsg struct {
	Err      error
	Duration time.Duration
	Source   string
}

type ResolveSuccessMsg struct {
	Resolution resolve.Resolution
	Duration   time.Duration
}

type ResolveErrorMsg struct {
	TargetID string
	Err      error
}

type FilterSaveErrorMsg struct {
	Err error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type ClearStatusMsg struct {
	ID int
}

func RefreshCmd(service Service, limit int, interweave bool, source string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.Refresh(ctx, limit, interweave)
		if err != nil {
			return RefreshErrorMsg{Err: err, Duration: time.Since(start), Source: source}
		}
		return RefreshSuccessMsg{Posts: posts, Duration: time.Since(start), Source: source}
	}
}

// ResolveCmd fetches detail for the committed post. The view snapshot is
// taken at dispatch time so neighbor prefetch matches what the user saw.
func ResolveCmd(resolver Resolver, view []post.Post, active post.Post) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		res, err := resolver.Resolve(ctx, view, active)
		if err != nil {
			return ResolveErrorMsg{TargetID: active.ID, Err: err}
		}
		return ResolveSuccessMsg{Resolution: res, Duration: time.Since(start)}
	}
}

// SaveFiltersCmd persists filter choices in the background. Failures come
// back as a warning message; the session keeps its in-memory state either way.
func SaveFiltersCmd(service Service, state app.FilterState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.SaveFilterState(ctx, state); err != nil {
			return FilterSaveErrorMsg{Err: err}
		}
		return nil
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened link in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open link or copy it to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy link to clipboard")}
	}
}
