package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/postdeck/internal/app"
	"github.com/glabrego/postdeck/internal/cache"
	"github.com/glabrego/postdeck/internal/config"
	"github.com/glabrego/postdeck/internal/feed"
	"github.com/glabrego/postdeck/internal/post"
	"github.com/glabrego/postdeck/internal/resolve"
	"github.com/glabrego/postdeck/internal/tui/actions"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeService struct {
	posts      []post.Post
	refreshErr error
	saved      []app.FilterState
}

func (f *fakeService) Refresh(ctx context.Context, limit int, interweave bool) ([]post.Post, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.posts, nil
}

func (f *fakeService) ListCached(ctx context.Context, limit int) ([]post.Post, error) {
	return f.posts, nil
}

func (f *fakeService) SaveFilterState(ctx context.Context, state app.FilterState) error {
	f.saved = append(f.saved, state)
	return nil
}

type fakeResolver struct {
	calls      []string
	resolveErr error
}

func (f *fakeResolver) Resolve(ctx context.Context, view []post.Post, active post.Post) (resolve.Resolution, error) {
	f.calls = append(f.calls, active.ID)
	if f.resolveErr != nil {
		return resolve.Resolution{}, f.resolveErr
	}
	detail := active
	detail.CommentHTML = "<p>discussion for " + active.ID + "</p>"
	return resolve.Resolution{TargetID: active.ID, Detail: detail}, nil
}

type testHarness struct {
	service  *fakeService
	resolver *fakeResolver
	opened   []string
	copied   []string
}

func newTestModel(t *testing.T, posts []post.Post) (Model, *testHarness) {
	t.Helper()
	h := &testHarness{
		service:  &fakeService{posts: posts},
		resolver: &fakeResolver{},
	}
	m := NewModel(Params{
		Service:   h.service,
		Resolver:  h.resolver,
		Cache:     cache.New(0),
		Roster:    config.DefaultRoster(),
		FeedLimit: 50,
		Posts:     posts,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		CopyURL: func(url string) error {
			h.copied = append(h.copied, url)
			return nil
		},
		Now: func() time.Time { return testNow },
	})
	m, _ = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, h
}

func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func pressRune(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	return apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func pressKey(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return apply(t, m, tea.KeyMsg{Type: key})
}

// collectMsgs runs a command tree synchronously and flattens the messages.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		out := make([]tea.Msg, 0, len(batch))
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func applyMsgsOfType[T tea.Msg](t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collectMsgs(cmd) {
		if _, ok := msg.(T); ok {
			m, _ = apply(t, m, msg)
		}
	}
	return m
}

func samplePosts() []post.Post {
	return []post.Post{
		{ID: "a", Source: post.SourceHackerNews, Title: "Go ships generics", URL: "https://example.com/a", PublishedAt: testNow.Add(-1 * time.Hour), Upvotes: 40},
		{ID: "b", Source: post.SourceReddit, Sub: "reactjs", Title: "Hooks deep dive", CommentURL: "https://www.reddit.com/r/reactjs/comments/b", PublishedAt: testNow.Add(-2 * time.Hour), Upvotes: 12},
		{ID: "c", Source: post.SourceReddit, Sub: "Python", Title: "Asyncio pitfalls", PublishedAt: testNow.Add(-3 * time.Hour), Upvotes: 7},
	}
}

func TestMoveDownSelectsAndResolves(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, cmd := pressRune(t, m, 'j')
	if got := m.nav.ActiveID(); got != "a" {
		t.Fatalf("active id = %q, want a", got)
	}
	m = applyMsgsOfType[actions.ResolveSuccessMsg](t, m, cmd)

	if len(h.resolver.calls) != 1 || h.resolver.calls[0] != "a" {
		t.Fatalf("resolver calls = %v", h.resolver.calls)
	}
	if !strings.Contains(m.View(), "discussion for a") {
		t.Fatal("detail pane should show the resolved discussion")
	}
}

func TestStaleResolutionDiscarded(t *testing.T) {
	m, _ := newTestModel(t, samplePosts())

	m, cmdA := pressRune(t, m, 'j')
	m, cmdB := pressRune(t, m, 'j')
	if got := m.nav.ActiveID(); got != "b" {
		t.Fatalf("active id = %q, want b", got)
	}

	// The earlier selection's resolution lands after the user moved on.
	m = applyMsgsOfType[actions.ResolveSuccessMsg](t, m, cmdA)
	if strings.Contains(m.View(), "discussion for a") {
		t.Fatal("stale resolution must not reach the detail pane")
	}

	m = applyMsgsOfType[actions.ResolveSuccessMsg](t, m, cmdB)
	if !strings.Contains(m.View(), "discussion for b") {
		t.Fatal("current resolution should render")
	}
}

func TestStaleResolveErrorIgnored(t *testing.T) {
	m, h := newTestModel(t, samplePosts())
	h.resolver.resolveErr = errors.New("boom")

	m, cmdA := pressRune(t, m, 'j')
	m, _ = pressRune(t, m, 'j')

	m = applyMsgsOfType[actions.ResolveErrorMsg](t, m, cmdA)
	if m.err != nil {
		t.Fatalf("stale failure should not surface, got %v", m.err)
	}
}

func TestResolveErrorSurfacedAndDismissed(t *testing.T) {
	m, h := newTestModel(t, samplePosts())
	h.resolver.resolveErr = errors.New("backend down")

	m, cmd := pressRune(t, m, 'j')
	m = applyMsgsOfType[actions.ResolveErrorMsg](t, m, cmd)
	if !strings.Contains(m.View(), "esc to dismiss") {
		t.Fatal("resolve failure should surface dismissibly")
	}

	m, _ = pressKey(t, m, tea.KeyEsc)
	if strings.Contains(m.View(), "esc to dismiss") {
		t.Fatal("esc should dismiss the error")
	}
}

func TestEnterCommitsActive(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, _ = pressRune(t, m, 'j')
	_, cmd := pressKey(t, m, tea.KeyEnter)
	for _, msg := range collectMsgs(cmd) {
		if res, ok := msg.(actions.ResolveSuccessMsg); ok {
			if res.Resolution.TargetID != "a" {
				t.Fatalf("commit resolved %q, want a", res.Resolution.TargetID)
			}
			return
		}
	}
	t.Fatalf("enter should resolve the active post, resolver calls = %v", h.resolver.calls)
}

func TestEnterWithNothingActiveIsNoop(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	_, cmd := pressKey(t, m, tea.KeyEnter)
	for _, msg := range collectMsgs(cmd) {
		if _, ok := msg.(actions.ResolveSuccessMsg); ok {
			t.Fatal("enter with no active post must not resolve")
		}
	}
	if len(h.resolver.calls) != 0 {
		t.Fatalf("resolver calls = %v", h.resolver.calls)
	}
}

func TestOpenExternalKey(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, _ = pressRune(t, m, 'j')
	m, cmd := pressRune(t, m, 'o')
	m = applyMsgsOfType[actions.OpenURLSuccessMsg](t, m, cmd)

	if len(h.opened) != 1 || h.opened[0] != "https://example.com/a" {
		t.Fatalf("opened = %v", h.opened)
	}
	if !strings.Contains(m.View(), "Opened link in browser") {
		t.Fatal("expected open confirmation status")
	}
}

func TestOpenExternalFallsBackToCommitWithoutLink(t *testing.T) {
	posts := []post.Post{{ID: "nolink", Source: post.SourceHackerNews, Title: "Ask HN", Text: "question"}}
	m, h := newTestModel(t, posts)

	m, _ = pressRune(t, m, 'j')
	_, cmd := pressRune(t, m, 'o')
	applyMsgsOfType[actions.ResolveSuccessMsg](t, m, cmd)

	if len(h.opened) != 0 {
		t.Fatalf("nothing should open, got %v", h.opened)
	}
	if len(h.resolver.calls) == 0 || h.resolver.calls[len(h.resolver.calls)-1] != "nolink" {
		t.Fatalf("resolver calls = %v", h.resolver.calls)
	}
}

func TestCopyBindingUsesDiscussionURL(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, _ = pressRune(t, m, 'j')
	m, _ = pressRune(t, m, 'j')
	_, cmd := pressRune(t, m, 'y')
	for _, msg := range collectMsgs(cmd) {
		if _, ok := msg.(actions.OpenURLSuccessMsg); ok {
			break
		}
	}

	if len(h.copied) != 1 || h.copied[0] != "https://www.reddit.com/r/reactjs/comments/b" {
		t.Fatalf("copied = %v", h.copied)
	}
}

func TestCopyBindingNoopWithoutActivePost(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	_, cmd := pressRune(t, m, 'y')
	if cmd != nil {
		t.Fatal("copy with no active post should be a no-op")
	}
	if len(h.copied) != 0 {
		t.Fatalf("copied = %v", h.copied)
	}
}

func TestSourceToggleFiltersAndPersists(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, cmd := pressRune(t, m, '2')
	if strings.Contains(m.View(), "Go ships generics") {
		t.Fatal("toggling the community source on should hide other sources")
	}
	if !strings.Contains(m.View(), "Hooks deep dive") {
		t.Fatal("community posts should remain visible")
	}

	collectMsgs(cmd)
	if len(h.service.saved) != 1 {
		t.Fatalf("saved states = %d, want 1", len(h.service.saved))
	}
	saved := h.service.saved[0]
	if len(saved.Filter.Sources) != 1 || saved.Filter.Sources[0] != post.SourceReddit {
		t.Fatalf("saved sources = %v", saved.Filter.Sources)
	}
}

func TestSubToggleOnlyAffectsCommunityPosts(t *testing.T) {
	m, _ := newTestModel(t, samplePosts())

	// Roster slot 0 is reactjs.
	m, _ = pressRune(t, m, '3')
	got := m.View()
	if !strings.Contains(got, "Hooks deep dive") {
		t.Fatal("selected sub should stay visible")
	}
	if strings.Contains(got, "Asyncio pitfalls") {
		t.Fatal("other subs should be filtered out")
	}
	if !strings.Contains(got, "Go ships generics") {
		t.Fatal("sub filters must not drop non-community posts")
	}
}

func TestSortToggleSwitchesModeAndPersists(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, cmd := pressRune(t, m, 't')
	if !strings.Contains(m.View(), "trending") {
		t.Fatal("header should show the trending mode")
	}
	collectMsgs(cmd)
	if len(h.service.saved) != 1 || h.service.saved[0].SortMode != feed.Trending {
		t.Fatalf("saved states = %+v", h.service.saved)
	}
}

func TestActiveFollowsPostAcrossSortToggle(t *testing.T) {
	m, _ := newTestModel(t, samplePosts())

	m, _ = pressRune(t, m, 'j')
	m, _ = pressRune(t, m, 'j')
	wantID := m.nav.ActiveID()

	m, _ = pressRune(t, m, 't')
	if got := m.nav.ActiveID(); got != wantID {
		t.Fatalf("active id after sort toggle = %q, want %q", got, wantID)
	}
}

func TestRefreshSuccessRebuildsList(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = apply(t, m, actions.RefreshSuccessMsg{Posts: samplePosts(), Duration: 120 * time.Millisecond})
	got := m.View()
	if !strings.Contains(got, "Go ships generics") {
		t.Fatal("refreshed posts should render")
	}
	if !strings.Contains(got, "Loaded 3 posts") {
		t.Fatal("expected refresh status line")
	}
}

func TestRefreshErrorSurfaced(t *testing.T) {
	m, _ := newTestModel(t, samplePosts())

	m, _ = apply(t, m, actions.RefreshErrorMsg{Err: errors.New("api unreachable")})
	if !strings.Contains(m.View(), "api unreachable") {
		t.Fatal("refresh failure should surface in the footer")
	}
	if !strings.Contains(m.View(), "Go ships generics") {
		t.Fatal("the cached list should survive a failed refresh")
	}
}

func TestCacheClearKey(t *testing.T) {
	m, _ := newTestModel(t, samplePosts())
	m.store.Put(post.Post{ID: "a", CommentHTML: "<p>x</p>"})

	m, _ = pressRune(t, m, 'x')
	if m.store.Stats().Count != 0 {
		t.Fatal("cache should be empty after clearing")
	}
	if !strings.Contains(m.View(), "Detail cache cleared") {
		t.Fatal("expected clear confirmation status")
	}
}

func TestMouseClickCommitsRow(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	_, cmd := apply(t, m, tea.MouseMsg{
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
		Y:      listFirstRow + 1,
	})
	applyMsgsOfType[actions.ResolveSuccessMsg](t, m, cmd)

	if len(h.resolver.calls) != 1 || h.resolver.calls[0] != "b" {
		t.Fatalf("resolver calls = %v, want click on row b", h.resolver.calls)
	}
}

func TestModifierClickOpensWithoutActivating(t *testing.T) {
	m, h := newTestModel(t, samplePosts())

	m, cmd := apply(t, m, tea.MouseMsg{
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
		Ctrl:   true,
		Y:      listFirstRow,
	})
	applyMsgsOfType[actions.OpenURLSuccessMsg](t, m, cmd)

	if len(h.opened) != 1 || h.opened[0] != "https://example.com/a" {
		t.Fatalf("opened = %v", h.opened)
	}
	if m.nav.ActiveIndex() != -1 {
		t.Fatalf("modifier click must not move the active position, index = %d", m.nav.ActiveIndex())
	}
	if len(h.resolver.calls) != 0 {
		t.Fatalf("modifier click must not commit, calls = %v", h.resolver.calls)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := pressRune(t, m, 'q')
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should produce a quit message")
	}
}
