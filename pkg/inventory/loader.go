package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/registry"
)

// ErrNoInventory is recorded for a connection without an inventory file.
var ErrNoInventory = errors.New("connection has no inventory")

// maxParallelLoads bounds concurrent inventory reads.
const maxParallelLoads = 4

// Result describes one connection load.
type Result struct {
	ID      string
	Path    string
	Objects int
	Err     error
}

// Loader feeds inventory files into a cache store and keeps the registry's
// connected flags in step: a connection whose file loads is connected, one
// whose file is missing or unreadable is disconnected and its records are
// dropped.
type Loader struct {
	store   *cache.Store
	reg     *registry.Registry
	baseDir string
	log     zerolog.Logger

	mu    sync.Mutex
	paths map[string]string // connection ID -> inventory path
}

// NewLoader creates a loader resolving inventory paths against baseDir.
func NewLoader(store *cache.Store, reg *registry.Registry, baseDir string, logger zerolog.Logger) *Loader {
	l := &Loader{
		store:   store,
		reg:     reg,
		baseDir: baseDir,
		log:     logger.With().Str("component", "inventory").Logger(),
		paths:   make(map[string]string),
	}
	for _, c := range reg.Configs() {
		l.paths[c.ID()] = c.InventoryPath(baseDir)
	}
	return l
}

// Paths returns the inventory path of every connection that has one.
func (l *Loader) Paths() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.paths))
	for id, p := range l.paths {
		if p != "" {
			out[id] = p
		}
	}
	return out
}

// LoadAll loads every connection concurrently. Individual failures are
// reported in the results and never fail the call; only ctx cancellation
// does.
func (l *Loader) LoadAll(ctx context.Context) ([]Result, error) {
	configs := l.reg.Configs()
	results := make([]Result, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, c := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.Load(c.ID())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("load inventories: %w", err)
	}
	return results, nil
}

// Load reads the inventory of one connection into the store.
func (l *Loader) Load(id string) Result {
	l.mu.Lock()
	path, known := l.paths[id]
	l.mu.Unlock()

	res := Result{ID: id, Path: path}
	switch {
	case !known:
		res.Err = fmt.Errorf("unknown connection %q", id)
		return res
	case path == "":
		res.Err = ErrNoInventory
	default:
		objs, err := Load(path)
		if err != nil {
			res.Err = err
			break
		}
		changes := l.store.Replace(id, objs)
		res.Objects = len(objs)
		l.reg.SetConnected(id, true)
		l.log.Debug().
			Str("connection", id).
			Str("path", path).
			Int("objects", res.Objects).
			Int("changes", len(changes)).
			Msg("Inventory loaded")
		return res
	}

	l.store.Clear(id)
	if l.reg.SetConnected(id, false) || res.Err != ErrNoInventory {
		l.log.Warn().Err(res.Err).Str("connection", id).Str("path", path).Msg("Connection unavailable")
	}
	return res
}
