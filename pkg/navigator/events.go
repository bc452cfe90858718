package navigator

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// EventKind identifies what happened.
type EventKind int

const (
	// EventSelectionChanged fires when the selected node changes. Target is
	// nil when nothing is selected.
	EventSelectionChanged EventKind = iota + 1
	// EventActivated fires on a double-click equivalent.
	EventActivated
	// EventContextMenuRequested fires when the user asks for a node's menu.
	EventContextMenuRequested
)

func (k EventKind) String() string {
	switch k {
	case EventSelectionChanged:
		return "selection_changed"
	case EventActivated:
		return "activated"
	case EventContextMenuRequested:
		return "context_menu_requested"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to subscribers. Target carries either a concrete
// object or a group tag.
type Event struct {
	Kind   EventKind
	Target *tree.Identity
	Label  string
	Mode   tree.Mode
}

// Subscribe registers fn for every event and returns a function that removes
// it. fn runs on the goroutine that caused the event, after the controller
// lock is released, so it may call back into the controller.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) emit(ev Event) {
	if ev.Kind == EventSelectionChanged {
		c.metrics.SelectionEvents.Inc()
	}

	c.subMu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
