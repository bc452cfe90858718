// Package navigator owns the current navigation tree. It switches modes,
// runs the capture, build and restore cycle, and tells subscribers about
// selection, activation and context-menu requests.
package navigator

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/registry"
	"github.com/vanderheijden86/poolnav/pkg/tree"
	"github.com/vanderheijden86/poolnav/pkg/viewstate"
)

// DefaultExpandDepth expands the root and its children on the first build.
const DefaultExpandDepth = 2

// CacheSource hands out immutable snapshots.
type CacheSource interface {
	Snapshot() *cache.Snapshot
}

// Painter is the view that renders the tree. Painting is suspended while a
// rebuild swaps the tree.
type Painter interface {
	Suspend()
	Resume()
}

// Config configures a Controller.
type Config struct {
	Cache       CacheSource
	Connections registry.Source
	// Settings is read at every rebuild. Nil means tree.DefaultSettings.
	Settings     func() tree.Settings
	Painter      Painter
	Icons        tree.IconClassifier
	Organization grouping.Grouping
	Mode         tree.Mode
	// ExpandDepth applies the first time a mode is built. Zero means
	// DefaultExpandDepth; negative disables it.
	ExpandDepth int
	Logger      zerolog.Logger
	Metrics     *Metrics
}

// Controller holds the tree of the active mode. All methods are safe for
// concurrent use; rebuilds never overlap.
type Controller struct {
	cache       CacheSource
	conns       registry.Source
	settings    func() tree.Settings
	painter     Painter
	icons       tree.IconClassifier
	expandDepth int
	log         zerolog.Logger
	metrics     *Metrics

	mu       sync.Mutex
	mode     tree.Mode
	org      grouping.Grouping
	tree     *tree.Tree
	built    map[tree.Mode]bool
	perMode  map[tree.Mode]viewstate.SavedViewState
	pending  *viewstate.SavedViewState
	rebuilds uint64

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// New creates a controller. Call Rebuild to produce the first tree.
func New(cfg Config) *Controller {
	if cfg.Settings == nil {
		cfg.Settings = tree.DefaultSettings
	}
	if cfg.Painter == nil {
		cfg.Painter = nopPainter{}
	}
	if !cfg.Mode.IsValid() {
		cfg.Mode = tree.ModeInfrastructure
	}
	if cfg.ExpandDepth == 0 {
		cfg.ExpandDepth = DefaultExpandDepth
	}
	if cfg.ExpandDepth < 0 {
		cfg.ExpandDepth = 0
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	return &Controller{
		cache:       cfg.Cache,
		conns:       cfg.Connections,
		settings:    cfg.Settings,
		painter:     cfg.Painter,
		icons:       cfg.Icons,
		expandDepth: cfg.ExpandDepth,
		log:         cfg.Logger.With().Str("component", "navigator").Logger(),
		metrics:     cfg.Metrics,
		mode:        cfg.Mode,
		org:         cfg.Organization,
		built:       make(map[tree.Mode]bool),
		perMode:     make(map[tree.Mode]viewstate.SavedViewState),
		subs:        make(map[int]func(Event)),
	}
}

type nopPainter struct{}

func (nopPainter) Suspend() {}
func (nopPainter) Resume()  {}

// Rebuild replaces the tree with one built from the current cache snapshot,
// carrying over selection and expansion. Subscribers get one
// SelectionChanged afterwards, and only when something is selected.
func (c *Controller) Rebuild() {
	c.mu.Lock()
	ev, ok := c.rebuildLocked(viewstate.Capture(c.tree))
	c.mu.Unlock()

	if ok {
		c.emit(ev)
	}
}

func (c *Controller) rebuildLocked(saved viewstate.SavedViewState) (Event, bool) {
	start := time.Now()
	mode := c.mode

	if c.pending != nil {
		saved = mergeState(*c.pending, saved)
		c.pending = nil
	}

	opts := tree.Options{Organization: c.org}
	if !c.built[mode] && len(saved.Expanded) == 0 {
		opts.ExpandDepth = c.expandDepth
	}

	var snap *cache.Snapshot
	if c.cache != nil {
		snap = c.cache.Snapshot()
	}
	src := tree.Sources{Connections: c.conns, Icons: c.icons}
	if snap != nil {
		src.Cache = snap
	}

	c.painter.Suspend()
	t := tree.Build(mode, src, c.settings(), opts)
	sel, selected := viewstate.Restore(t, saved)
	c.tree = t
	c.built[mode] = true
	c.rebuilds++
	c.painter.Resume()

	elapsed := time.Since(start)
	c.metrics.Rebuilds.WithLabelValues(string(mode)).Inc()
	c.metrics.RebuildDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	c.metrics.TreeNodes.Set(float64(t.Len()))

	logEvent := c.log.Debug().
		Str("mode", string(mode)).
		Int("nodes", t.Len()).
		Dur("duration", elapsed)
	if snap != nil {
		logEvent = logEvent.Uint64("cache_version", snap.Version())
	}
	logEvent.Bool("selected", selected).Msg("Tree rebuilt")

	if !selected {
		return Event{}, false
	}
	return c.eventLocked(EventSelectionChanged, sel), true
}

// mergeState lays a persisted state under the live one. The live selection
// wins when there is one.
func mergeState(persisted, live viewstate.SavedViewState) viewstate.SavedViewState {
	out := persisted
	if live.Selected != nil {
		out.Selected = live.Selected
	}
	out.Expanded = append(append([]viewstate.Path(nil), persisted.Expanded...), live.Expanded...)
	return out
}

// Restore applies a saved state. Before the first build it is held and
// merged into that build; afterwards it applies to the current tree.
func (c *Controller) Restore(s viewstate.SavedViewState) {
	c.mu.Lock()
	if c.tree == nil {
		c.pending = &s
		c.mu.Unlock()
		return
	}
	c.painter.Suspend()
	sel, ok := viewstate.Restore(c.tree, mergeState(s, viewstate.Capture(c.tree)))
	c.painter.Resume()
	var ev Event
	if ok {
		ev = c.eventLocked(EventSelectionChanged, sel)
	}
	c.mu.Unlock()

	if ok {
		c.emit(ev)
	}
}

// SetMode switches the hierarchy and rebuilds. The expansion of the mode
// being left is kept and comes back when it is shown again; the selection
// follows the object across modes.
func (c *Controller) SetMode(mode tree.Mode) bool {
	if !mode.IsValid() {
		return false
	}
	c.mu.Lock()
	if mode == c.mode && c.tree != nil {
		c.mu.Unlock()
		return false
	}
	live := viewstate.Capture(c.tree)
	if c.tree != nil {
		c.perMode[c.mode] = live
	}
	c.mode = mode
	next := viewstate.SavedViewState{Selected: live.Selected, Expanded: c.perMode[mode].Expanded}
	ev, ok := c.rebuildLocked(next)
	c.mu.Unlock()

	c.log.Info().Str("mode", string(mode)).Msg("Navigation mode changed")
	if ok {
		c.emit(ev)
	}
	return true
}

// Mode returns the active mode.
func (c *Controller) Mode() tree.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetOrganization changes the organization grouping. It takes effect on the
// next rebuild, which the caller schedules.
func (c *Controller) SetOrganization(g grouping.Grouping) {
	c.mu.Lock()
	c.org = g
	c.mu.Unlock()
}

// Organization returns the configured organization grouping, nil meaning
// the default.
func (c *Controller) Organization() grouping.Grouping {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.org
}

// Tree returns a copy of the current tree, or nil before the first build.
func (c *Controller) Tree() *tree.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Clone()
}

// State captures the current selection and expansion.
func (c *Controller) State() viewstate.SavedViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return viewstate.Capture(c.tree)
}

// Rebuilds returns how many rebuilds have run.
func (c *Controller) Rebuilds() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilds
}

// Select changes the selection and notifies subscribers when it changed.
// NoNode clears it.
func (c *Controller) Select(id tree.NodeID) bool {
	c.mu.Lock()
	if c.tree == nil || c.tree.Selected() == id {
		c.mu.Unlock()
		return false
	}
	if !c.tree.Select(id) {
		c.mu.Unlock()
		return false
	}
	ev := c.eventLocked(EventSelectionChanged, id)
	c.mu.Unlock()

	c.emit(ev)
	return true
}

// SetExpanded expands or collapses a node.
func (c *Controller) SetExpanded(id tree.NodeID, expanded bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree == nil {
		return false
	}
	return c.tree.SetExpanded(id, expanded)
}

// Activate reports a double-click equivalent on a node.
func (c *Controller) Activate(id tree.NodeID) bool {
	return c.notify(EventActivated, id)
}

// RequestContextMenu reports a context-menu request on a node.
func (c *Controller) RequestContextMenu(id tree.NodeID) bool {
	return c.notify(EventContextMenuRequested, id)
}

func (c *Controller) notify(kind EventKind, id tree.NodeID) bool {
	c.mu.Lock()
	if c.tree == nil || !c.tree.Valid(id) {
		c.mu.Unlock()
		return false
	}
	ev := c.eventLocked(kind, id)
	c.mu.Unlock()

	c.emit(ev)
	return true
}

func (c *Controller) eventLocked(kind EventKind, id tree.NodeID) Event {
	ev := Event{Kind: kind, Mode: c.mode}
	if c.tree.Valid(id) {
		n := c.tree.Node(id)
		identity := n.Identity
		ev.Target = &identity
		ev.Label = n.Label
	}
	return ev
}
