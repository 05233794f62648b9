package nav

// FollowTop computes the list window offset that keeps the active row
// visible with the least movement: already-visible rows leave the window
// alone, rows above scroll the window up to them, rows below scroll it
// down just far enough. The terminal analog of nearest-position
// scroll-into-view.
func FollowTop(top, activeIndex, height, total int) int {
	if total <= 0 || height <= 0 {
		return 0
	}
	maxTop := total - height
	if maxTop < 0 {
		maxTop = 0
	}
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}
	if activeIndex < 0 {
		return top
	}
	if activeIndex < top {
		return activeIndex
	}
	if activeIndex >= top+height {
		return activeIndex - height + 1
	}
	return top
}
