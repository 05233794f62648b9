// Package nav owns the single-focus navigation state machine over an
// ordered view of posts. It is pure: input events come in, command values
// come out, and the caller (the TUI model) performs any side effects. That
// keeps selection, commit, and open-externally behavior testable without a
// terminal.
package nav

import (
	"github.com/glabrego/postdeck/internal/post"
)

// CommandKind classifies what the caller should do after an input event.
type CommandKind int

const (
	// None means the event changed nothing the caller acts on.
	None CommandKind = iota
	// Select is a provisional selection from navigation; emitted only when
	// Policy.SelectOnMove is set.
	Select
	// Commit requests full detail for the active post.
	Commit
	// OpenExternal asks the caller to open the post's external link instead
	// of committing.
	OpenExternal
)

// Command is the controller's returned action value.
type Command struct {
	Kind  CommandKind
	Post  post.Post
	Index int
}

var noop = Command{Kind: None, Index: -1}

// Policy selects between the navigation behaviors the client supports.
type Policy struct {
	// SelectOnMove makes ArrowUp/ArrowDown emit a provisional Select for
	// the newly active post (live preview). When unset, only Enter or a
	// click commits.
	SelectOnMove bool
	// CommitRequiresModifier makes plain Enter a no-op; only a
	// modifier+Enter commits.
	CommitRequiresModifier bool
}

// Binding is a caller-supplied action for a custom key, invoked with the
// active post and its index.
type Binding func(p post.Post, index int)

// Controller tracks the active position over the current view.
//
// Invariant: activeIndex == -1 iff activeID == "". Whenever activeIndex is
// in range, activeID was derived from view[activeIndex] at set time; a view
// rebuild can break that association, which is why SetView re-derives it.
type Controller struct {
	view        []post.Post
	activeIndex int
	activeID    string
	policy      Policy
	bindings    map[string]Binding
}

func New(policy Policy) *Controller {
	return &Controller{activeIndex: -1, policy: policy}
}

// Bind registers a custom action for a literal key name. Reserved keys
// (up/down/enter) cannot be rebound; bindings for them are ignored.
func (c *Controller) Bind(key string, action Binding) {
	switch key {
	case "up", "down", "enter":
		return
	}
	if c.bindings == nil {
		c.bindings = make(map[string]Binding)
	}
	c.bindings[key] = action
}

// SetView re-arms the controller with a freshly built view. The active
// index is clamped into the new bounds and the active id re-derived from
// the clamped position. With follow set, the controller first tries to
// keep the same post active by locating its id in the new view.
func (c *Controller) SetView(view []post.Post, follow bool) {
	c.view = view
	if len(view) == 0 {
		c.activeIndex = -1
		c.activeID = ""
		return
	}
	if follow && c.activeID != "" {
		for i, p := range view {
			if p.ID == c.activeID {
				c.activeIndex = i
				return
			}
		}
	}
	if c.activeIndex >= len(view) {
		c.activeIndex = len(view) - 1
	}
	if c.activeIndex < -1 {
		c.activeIndex = -1
	}
	if c.activeIndex >= 0 {
		c.activeID = view[c.activeIndex].ID
	} else {
		c.activeID = ""
	}
}

// View returns the ordered view the controller currently navigates.
func (c *Controller) View() []post.Post { return c.view }

func (c *Controller) Len() int { return len(c.view) }

func (c *Controller) ActiveIndex() int { return c.activeIndex }

func (c *Controller) ActiveID() string { return c.activeID }

// Active returns the active post, if any.
func (c *Controller) Active() (post.Post, bool) {
	if c.activeIndex < 0 || c.activeIndex >= len(c.view) {
		return post.Post{}, false
	}
	return c.view[c.activeIndex], true
}

// Handle processes one keyboard event and returns the resulting command.
// Unrecognized keys fall through to the custom binding table and are
// otherwise no-ops. An empty view makes every key a no-op.
func (c *Controller) Handle(key string, modifier bool) Command {
	if len(c.view) == 0 {
		return noop
	}

	switch key {
	case "down":
		return c.move(1)
	case "up":
		return c.move(-1)
	case "enter":
		return c.commit(modifier)
	default:
		if action, ok := c.bindings[key]; ok && c.activeIndex >= 0 {
			action(c.view[c.activeIndex], c.activeIndex)
		}
		return noop
	}
}

func (c *Controller) move(delta int) Command {
	next := c.activeIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(c.view)-1 {
		next = len(c.view) - 1
	}
	c.activeIndex = next
	c.activeID = c.view[next].ID

	if c.policy.SelectOnMove {
		return Command{Kind: Select, Post: c.view[next], Index: next}
	}
	return Command{Kind: None, Post: c.view[next], Index: next}
}

func (c *Controller) commit(modifier bool) Command {
	if c.activeIndex < 0 {
		return noop
	}
	active := c.view[c.activeIndex]
	if modifier && active.HasLink() {
		return Command{Kind: OpenExternal, Post: active, Index: c.activeIndex}
	}
	if c.policy.CommitRequiresModifier && !modifier {
		return noop
	}
	return Command{Kind: Commit, Post: active, Index: c.activeIndex}
}

// Click activates the clicked row and commits it, mirroring Enter. A
// modifier-click on a linked post opens it externally without moving the
// active position or committing.
func (c *Controller) Click(index int, modifier bool) Command {
	if index < 0 || index >= len(c.view) {
		return noop
	}
	clicked := c.view[index]
	if modifier && clicked.HasLink() {
		return Command{Kind: OpenExternal, Post: clicked, Index: index}
	}
	c.activeIndex = index
	c.activeID = clicked.ID
	return Command{Kind: Commit, Post: clicked, Index: index}
}
