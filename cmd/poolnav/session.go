package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/config"
	"github.com/vanderheijden86/poolnav/pkg/inventory"
	"github.com/vanderheijden86/poolnav/pkg/logging"
	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/registry"
	"github.com/vanderheijden86/poolnav/pkg/tree"
	"github.com/vanderheijden86/poolnav/pkg/viewstate"
)

// session is everything a command needs to build trees: the live config,
// the connection registry and a cache filled from the inventories.
type session struct {
	cfg             *config.Store
	log             zerolog.Logger
	reg             *registry.Registry
	store           *cache.Store
	loader          *inventory.Loader
	connectionsPath string
	projectDir      string
}

// openSession loads config and connections and initializes logging. With
// toFile set, logs go to the configured log file instead of stderr.
func openSession(opts *options, toFile bool) (*session, error) {
	cfgPath := config.Discover(opts.configPath)
	cfgStore, err := config.Open(cfgPath, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := cfgStore.Get()

	logCfg := logging.Config{
		Level:     firstNonEmpty(opts.logLevel, cfg.Log.Level),
		Format:    firstNonEmpty(opts.logFormat, cfg.Log.Format),
		Component: "poolnav",
	}
	if toFile {
		logCfg.FilePath = firstNonEmpty(config.ResolvePath(cfgPath, cfg.Log.File), logging.DefaultFilePath())
	}
	logger := logging.Init(logCfg)
	cfgStore = config.NewStore(cfgPath, cfg, logger)

	s := &session{
		cfg:   cfgStore,
		log:   logger,
		store: cache.NewStore(),
	}
	if dir, ok := config.DetectProjectDir(); ok {
		s.projectDir = dir
	}

	connPath, err := registry.Discover(firstNonEmpty(opts.connectionsPath, config.ResolvePath(cfgPath, cfg.ConnectionsFile)))
	switch {
	case errors.Is(err, registry.ErrNoConnections):
		logger.Warn().Msg("No connections file found, starting with an empty registry")
		s.reg = registry.New(nil)
	case err != nil:
		return nil, err
	default:
		file, err := registry.LoadFile(connPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", connPath, err)
		}
		s.reg = registry.New(file)
		s.connectionsPath = connPath
	}

	s.loader = inventory.NewLoader(s.store, s.reg, s.inventoryDir(), logger)
	logger.Info().
		Str("config", cfgPath).
		Str("connections", s.connectionsPath).
		Int("count", s.reg.Len()).
		Msg("Session opened")
	return s, nil
}

// inventoryDir is the directory relative inventory paths resolve against:
// the project holding the connections file.
func (s *session) inventoryDir() string {
	if s.connectionsPath == "" {
		wd, _ := os.Getwd()
		return wd
	}
	dir := filepath.Dir(s.connectionsPath)
	if filepath.Base(dir) == config.DirName {
		dir = filepath.Dir(dir)
	}
	return dir
}

// statePath is where the view state persists between sessions.
func (s *session) statePath() string {
	if p := s.cfg.Get().StateFile; p != "" {
		return config.ResolvePath(s.cfg.Path(), p)
	}
	if s.projectDir != "" {
		return viewstate.DefaultPath(filepath.Join(s.projectDir, config.DirName))
	}
	return ""
}

// load reads every inventory once and logs the failures.
func (s *session) load(ctx context.Context) error {
	results, err := s.loader.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, inventory.ErrNoInventory) {
			s.log.Warn().Err(r.Err).Str("connection", r.ID).Msg("Inventory not loaded")
		}
	}
	return nil
}

// controller returns a navigator over the session's cache. Settings are
// read from the live config at every rebuild.
func (s *session) controller(painter navigator.Painter, metrics *navigator.Metrics, mode tree.Mode) *navigator.Controller {
	return navigator.New(navigator.Config{
		Cache:        s.store,
		Connections:  s.reg,
		Settings:     func() tree.Settings { return s.cfg.Get().Settings() },
		Painter:      painter,
		Organization: s.cfg.Get().Organization(),
		Mode:         mode,
		Logger:       s.log,
		Metrics:      metrics,
	})
}

// Close flushes and closes the log file.
func (s *session) Close() {
	logging.Shutdown()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
