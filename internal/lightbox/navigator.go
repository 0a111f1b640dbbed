// Package lightbox navigates an open media viewer over an ordered list of
// images with wrap-around.
package lightbox

import (
	"errors"
	"sync"
)

// ErrEmpty is returned when opening a viewer with no media.
var ErrEmpty = errors.New("lightbox requires at least one media item")

// ErrOutOfRange is returned when the initial index is not within the list.
var ErrOutOfRange = errors.New("lightbox index out of range")

// Media is one viewable entry.
type Media struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title,omitempty"`
}

// ScrollLock suspends background scrolling while held. The returned
// function restores the previous state.
type ScrollLock interface {
	Acquire() (release func())
}

// Action is what a signal resolved to.
type Action int

const (
	ActionNone Action = iota
	ActionPrevious
	ActionNext
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionPrevious:
		return "previous"
	case ActionNext:
		return "next"
	case ActionClose:
		return "close"
	default:
		return "none"
	}
}

// Pointer targets.
const (
	TargetBackdrop = "backdrop"
	TargetClose    = "close"
	TargetPrevious = "previous"
	TargetNext     = "next"
	TargetContent  = "content"
)

// Navigator is an open viewer. It holds the scroll lock until closed.
type Navigator struct {
	mu      sync.Mutex
	items   []Media
	index   int
	release func()
	closed  bool
}

// Open shows items starting at index and acquires lock. A nil lock is
// allowed.
func Open(items []Media, index int, lock ScrollLock) (*Navigator, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	if index < 0 || index >= len(items) {
		return nil, ErrOutOfRange
	}

	n := &Navigator{
		items: append([]Media(nil), items...),
		index: index,
	}
	if lock != nil {
		n.release = lock.Acquire()
	}
	return n, nil
}

// Len returns the number of items.
func (n *Navigator) Len() int {
	return len(n.items)
}

// Index returns the current position.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// Current returns the media at the current position.
func (n *Navigator) Current() Media {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.items[n.index]
}

// Closed reports whether Close has been called.
func (n *Navigator) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Next advances to (i+1) mod N.
func (n *Navigator) Next() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.index = (n.index + 1) % len(n.items)
	}
	return n.index
}

// Previous moves to (i-1+N) mod N.
func (n *Navigator) Previous() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.index = (n.index - 1 + len(n.items)) % len(n.items)
	}
	return n.index
}

// Close dismisses the viewer and releases the scroll lock. Calling it
// more than once has no further effect.
func (n *Navigator) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	release := n.release
	n.release = nil
	n.mu.Unlock()

	if release != nil {
		release()
	}
}

// HandleKey applies a keyboard signal.
func (n *Navigator) HandleKey(key string) Action {
	switch key {
	case "Escape", "esc":
		return n.apply(ActionClose)
	case "ArrowLeft", "left":
		return n.apply(ActionPrevious)
	case "ArrowRight", "right":
		return n.apply(ActionNext)
	default:
		return ActionNone
	}
}

// HandlePointer applies a click on target. Clicks on the content itself
// do nothing.
func (n *Navigator) HandlePointer(target string) Action {
	switch target {
	case TargetBackdrop, TargetClose:
		return n.apply(ActionClose)
	case TargetPrevious:
		return n.apply(ActionPrevious)
	case TargetNext:
		return n.apply(ActionNext)
	default:
		return ActionNone
	}
}

func (n *Navigator) apply(a Action) Action {
	if n.Closed() {
		return ActionNone
	}
	switch a {
	case ActionPrevious:
		n.Previous()
	case ActionNext:
		n.Next()
	case ActionClose:
		n.Close()
	}
	return a
}
