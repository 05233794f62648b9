// Package tui is the terminal frontend: a bubbletea model wiring the feed
// view, navigation controller, and detail resolver together. All state
// transitions happen in Update; side effects run as commands.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/postdeck/internal/app"
	"github.com/glabrego/postdeck/internal/cache"
	"github.com/glabrego/postdeck/internal/config"
	"github.com/glabrego/postdeck/internal/feed"
	"github.com/glabrego/postdeck/internal/nav"
	"github.com/glabrego/postdeck/internal/post"
	"github.com/glabrego/postdeck/internal/render/article"
	"github.com/glabrego/postdeck/internal/tui/actions"
	"github.com/glabrego/postdeck/internal/tui/platform"
	tuitheme "github.com/glabrego/postdeck/internal/tui/theme"
	tuiview "github.com/glabrego/postdeck/internal/tui/view"
)

const statusClearAfter = 4 * time.Second

// listFirstRow is the screen row of the first list entry: header, help
// line, and one blank line sit above it.
const listFirstRow = 3

// copyOutbox carries the URL a custom key binding picked out of the active
// post. Bindings fire synchronously inside the controller, so the model
// reads and clears the outbox right after dispatching the key.
type copyOutbox struct {
	url string
}

type Params struct {
	Service    actions.Service
	Resolver   actions.Resolver
	Cache      *cache.Store
	Roster     config.Roster
	FeedLimit  int
	Interweave bool

	// Posts seeds the list from the local snapshot before the first refresh.
	Posts []post.Post
	State app.FilterState

	OpenURL func(string) error
	CopyURL func(string) error
	Now     func() time.Time
}

type Model struct {
	service    actions.Service
	resolver   actions.Resolver
	store      *cache.Store
	roster     config.Roster
	feedLimit  int
	interweave bool

	posts    []post.Post
	filter   feed.Filter
	sortMode feed.SortMode
	nav      *nav.Controller
	outbox   *copyOutbox
	listTop  int

	detail      *post.Post
	resolving   bool
	resolvingID string
	viewport    viewport.Model
	spin        spinner.Model

	loading  bool
	status   string
	statusID int
	err      error

	width  int
	height int
	ready  bool

	theme   tuitheme.Theme
	openURL func(string) error
	copyURL func(string) error
	now     func() time.Time
}

func NewModel(p Params) Model {
	th := tuitheme.Default()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.StateLoad

	nowFn := p.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	openFn := p.OpenURL
	if openFn == nil {
		openFn = platform.OpenURLInBrowser
	}
	copyFn := p.CopyURL
	if copyFn == nil {
		copyFn = platform.CopyURLToClipboard
	}

	outbox := &copyOutbox{}
	ctrl := nav.New(nav.Policy{SelectOnMove: true})
	ctrl.Bind("y", func(active post.Post, _ int) {
		if discussion := active.DiscussionURL(); discussion != "" {
			outbox.url = discussion
			return
		}
		outbox.url = active.URL
	})

	m := Model{
		service:    p.Service,
		resolver:   p.Resolver,
		store:      p.Cache,
		roster:     p.Roster,
		feedLimit:  p.FeedLimit,
		interweave: p.Interweave,
		posts:      p.Posts,
		filter:     p.State.Filter,
		sortMode:   p.State.SortMode,
		nav:        ctrl,
		outbox:     outbox,
		spin:       sp,
		theme:      th,
		openURL:    openFn,
		copyURL:    copyFn,
		now:        nowFn,
	}
	m.rebuildView(false)
	m.loading = true
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, actions.RefreshCmd(m.service, m.feedLimit, m.interweave, "startup"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.detailHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.detailHeight()
		}
		m.refreshDetailContent()
		m.listTop = nav.FollowTop(m.listTop, m.nav.ActiveIndex(), m.listHeight(), m.nav.Len())
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.resolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case actions.RefreshSuccessMsg:
		m.loading = false
		m.err = nil
		m.posts = msg.Posts
		m.rebuildView(true)
		return m, m.setStatus(fmt.Sprintf("Loaded %d posts in %s", len(msg.Posts), msg.Duration.Round(time.Millisecond)))

	case actions.RefreshErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case actions.ResolveSuccessMsg:
		if msg.Resolution.TargetID == m.resolvingID {
			m.resolving = false
		}
		// A resolution for a post the user has already moved past is
		// dropped; its content is cached for whenever they come back.
		if msg.Resolution.TargetID != m.nav.ActiveID() {
			return m, nil
		}
		detail := msg.Resolution.Detail
		m.detail = &detail
		m.refreshDetailContent()
		m.viewport.GotoTop()
		return m, nil

	case actions.ResolveErrorMsg:
		if msg.TargetID == m.resolvingID {
			m.resolving = false
		}
		if msg.TargetID != m.nav.ActiveID() {
			return m, nil
		}
		m.err = msg.Err
		return m, nil

	case actions.FilterSaveErrorMsg:
		return m, m.setStatus("Could not save filters: " + msg.Err.Error())

	case actions.OpenURLSuccessMsg:
		return m, m.setStatus(msg.Status)

	case actions.OpenURLErrorMsg:
		m.err = msg.Err
		return m, nil

	case actions.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spin.Tick, actions.RefreshCmd(m.service, m.feedLimit, m.interweave, "manual"))

	case "j", "down":
		return m.dispatch(m.nav.Handle("down", false))

	case "k", "up":
		return m.dispatch(m.nav.Handle("up", false))

	case "enter":
		return m.dispatch(m.nav.Handle("enter", false))

	case "o":
		// Terminals do not deliver meta+enter reliably, so the
		// open-externally chord gets its own key.
		return m.dispatch(m.nav.Handle("enter", true))

	case "y":
		m.nav.Handle("y", false)
		if url := m.outbox.url; url != "" {
			m.outbox.url = ""
			return m, actions.CopyURLCmd(url, m.copyURL)
		}
		return m, nil

	case "t":
		if m.sortMode == feed.Chronological {
			m.sortMode = feed.Trending
		} else {
			m.sortMode = feed.Chronological
		}
		m.rebuildView(true)
		return m, m.saveFilters()

	case "1":
		m.filter = m.filter.ToggleSource(post.SourceHackerNews)
		m.rebuildView(true)
		return m, m.saveFilters()

	case "2":
		m.filter = m.filter.ToggleSource(post.SourceReddit)
		m.rebuildView(true)
		return m, m.saveFilters()

	case "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '3')
		if idx >= len(m.roster.Subs) {
			return m, nil
		}
		m.filter = m.filter.ToggleSub(m.roster.Subs[idx].Value)
		m.rebuildView(true)
		return m, m.saveFilters()

	case "x":
		m.store.Clear()
		return m, m.setStatus("Detail cache cleared")

	case "esc":
		m.err = nil
		m.status = ""
		return m, nil

	case "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	row := msg.Y - listFirstRow
	if row < 0 || row >= m.listHeight() {
		return m, nil
	}
	idx := m.listTop + row
	return m.dispatch(m.nav.Click(idx, msg.Ctrl || msg.Alt))
}

// dispatch acts on a navigation command: selections and commits kick off a
// resolve, open-externally hands the link to the platform layer.
func (m Model) dispatch(cmd nav.Command) (tea.Model, tea.Cmd) {
	if cmd.Index >= 0 {
		m.listTop = nav.FollowTop(m.listTop, cmd.Index, m.listHeight(), m.nav.Len())
	}

	switch cmd.Kind {
	case nav.Select, nav.Commit:
		return m.startResolve(cmd.Post)
	case nav.OpenExternal:
		url, err := platform.ValidatePostURL(cmd.Post.URL)
		if err != nil {
			return m, m.setStatus("Cannot open link: " + err.Error())
		}
		return m, actions.OpenURLCmd(url, m.openURL, m.copyURL)
	default:
		return m, nil
	}
}

func (m Model) startResolve(target post.Post) (tea.Model, tea.Cmd) {
	m.resolving = true
	m.resolvingID = target.ID
	view := m.nav.View()
	return m, tea.Batch(m.spin.Tick, actions.ResolveCmd(m.resolver, view, target))
}

// rebuildView re-derives the ordered view from the raw feed and re-arms the
// controller. With follow set the active post keeps focus across filter and
// sort changes when it survives them.
func (m *Model) rebuildView(follow bool) {
	prevID := m.nav.ActiveID()
	m.nav.SetView(feed.BuildView(m.posts, m.filter, m.sortMode, m.now()), follow)
	m.listTop = nav.FollowTop(m.listTop, m.nav.ActiveIndex(), m.listHeight(), m.nav.Len())
	if m.nav.ActiveID() != prevID {
		m.detail = nil
		m.refreshDetailContent()
	}
}

func (m *Model) saveFilters() tea.Cmd {
	return actions.SaveFiltersCmd(m.service, app.FilterState{Filter: m.filter, SortMode: m.sortMode})
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.status = s
	m.statusID++
	return clearStatusCmd(m.statusID)
}

func clearStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusClearAfter, func(time.Time) tea.Msg {
		return actions.ClearStatusMsg{ID: id}
	})
}

func (m Model) listHeight() int {
	if m.height <= 0 {
		return 10
	}
	// Header, help line, blank, separator, and footer take five rows; the
	// rest splits between the list and the detail pane.
	usable := m.height - 5
	h := usable * 2 / 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) detailHeight() int {
	if m.height <= 0 {
		return 10
	}
	h := m.height - 5 - m.listHeight()
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) refreshDetailContent() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.detailHeight()
	if m.detail == nil {
		m.viewport.SetContent("")
		return
	}
	width := m.width
	if width < 20 {
		width = 20
	}

	lines := tuiview.RenderDetailHeader(*m.detail, m.now(), width, m.theme)
	lines = append(lines, "")
	body := article.ContentLines(*m.detail, width)
	if len(body) == 0 {
		body = []string{m.theme.MetaLabel.Render("(no discussion content)")}
	}
	lines = append(lines, body...)
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")
	b.WriteString(m.theme.MetaLabel.Render("j/k move · enter read · o open link · y copy link · t sort · 1/2 sources · 3-7 subs · r refresh · x clear cache · q quit"))
	b.WriteString("\n\n")

	view := m.nav.View()
	if len(view) == 0 {
		b.WriteString(m.theme.MetaLabel.Render("  No posts match the current filters. Press r to refresh or 1/2 to adjust sources."))
		b.WriteString(strings.Repeat("\n", m.listHeight()))
	} else {
		end := m.listTop + m.listHeight()
		if end > len(view) {
			end = len(view)
		}
		for i := m.listTop; i < end; i++ {
			b.WriteString(tuiview.RenderPostLine(tuiview.PostLineParams{
				Post:        view[i],
				Now:         m.now(),
				ShowNumbers: false,
				VisiblePos:  i,
				Active:      i == m.nav.ActiveIndex(),
				Width:       m.width,
			}, m.theme))
			b.WriteString("\n")
		}
		for i := end - m.listTop; i < m.listHeight(); i++ {
			b.WriteString("\n")
		}
	}

	b.WriteString(m.theme.MetaLabel.Render(strings.Repeat("─", maxOf(1, m.width))))
	b.WriteString("\n")
	b.WriteString(m.detailPane())
	b.WriteString("\n")
	b.WriteString(m.footerLine())
	return b.String()
}

func (m Model) headerLine() string {
	parts := []string{
		m.theme.Title.Render("postdeck"),
		m.theme.ModePill.Render(m.sortMode.String()),
	}
	if summary := m.filterSummary(); summary != "" {
		parts = append(parts, m.theme.MetaValue.Render(summary))
	}
	if m.loading {
		parts = append(parts, m.spin.View()+m.theme.StateLoad.Render("refreshing"))
	} else if m.resolving {
		parts = append(parts, m.spin.View()+m.theme.StateLoad.Render("loading discussion"))
	}
	return strings.Join(parts, " ")
}

func (m Model) filterSummary() string {
	parts := make([]string, 0, 2)
	if len(m.filter.Sources) > 0 {
		labels := make([]string, 0, len(m.filter.Sources))
		for _, s := range m.filter.Sources {
			labels = append(labels, strings.ToLower(string(s)))
		}
		parts = append(parts, "sources: "+strings.Join(labels, ","))
	}
	if len(m.filter.Subs) > 0 {
		parts = append(parts, "subs: "+strings.Join(m.filter.Subs, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " · ")
}

func (m Model) detailPane() string {
	if m.detail == nil {
		placeholder := "No post selected. Navigate with j/k and press enter to read the discussion."
		if m.resolving {
			placeholder = "Loading discussion..."
		}
		pad := strings.Repeat("\n", maxOf(0, m.detailHeight()-1))
		return m.theme.MetaLabel.Render("  "+placeholder) + pad
	}
	return m.viewport.View()
}

func (m Model) footerLine() string {
	if m.err != nil {
		return m.theme.StateWarn.Render("Error: " + m.err.Error() + " (esc to dismiss)")
	}
	if m.status != "" {
		return m.theme.StateIdle.Render(m.status)
	}
	stats := m.store.Stats()
	return m.theme.MetaLabel.Render(fmt.Sprintf("%d posts · %d cached discussions", m.nav.Len(), stats.Count))
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}
