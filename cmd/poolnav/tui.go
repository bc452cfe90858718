package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanderheijden86/poolnav/pkg/config"
	"github.com/vanderheijden86/poolnav/pkg/inventory"
	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/refresh"
	"github.com/vanderheijden86/poolnav/pkg/ui"
	"github.com/vanderheijden86/poolnav/pkg/viewstate"
)

// changeBuffer is how many cache changes may queue before the scheduler
// drops notifications; any queued change already triggers a rebuild.
const changeBuffer = 256

func runTUI(ctx context.Context, opts *options, metricsAddr string) error {
	s, err := openSession(opts, true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics := navigator.NewMetrics(nil)
	if metricsAddr != "" {
		metrics = navigator.NewMetrics(prometheus.DefaultRegisterer)
		startMetricsServer(ctx, metricsAddr)
	}

	if err := s.load(ctx); err != nil {
		return err
	}

	statePath := s.statePath()
	saved, hasSaved := loadViewState(s, statePath)

	painter := ui.NewPainter()
	defer painter.Close()
	mode := s.cfg.Get().Mode()
	if hasSaved && saved.Mode != "" {
		mode = saved.Mode
	}
	ctrl := s.controller(painter, metrics, mode)
	unsubscribe := ctrl.Subscribe(painter.Notify)
	defer unsubscribe()

	if hasSaved {
		ctrl.Restore(saved.State)
	}
	ctrl.Rebuild()

	sched := refresh.New(refresh.Config{
		Debounce: s.cfg.Get().Refresh.Debounce,
		Rebuild:  ctrl.Rebuild,
		Logger:   s.log,
	})
	defer sched.Stop()

	changes, stopChanges := s.store.Subscribe(changeBuffer)
	defer stopChanges()
	go sched.Watch(ctx, changes)

	if watcher, err := inventory.NewWatcher(s.loader, func(inventory.Result) { sched.NotifyChanged() }); err != nil {
		s.log.Warn().Err(err).Msg("Inventory changes will not be picked up")
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	go func() {
		err := s.cfg.Watch(ctx, reloadConfig(ctrl, sched))
		if err != nil {
			s.log.Warn().Err(err).Msg("Config changes will not be picked up")
		}
	}()

	model := ui.NewModel(ui.Config{
		Navigator: ctrl,
		Cache:     s.store,
		Theme:     ui.DefaultTheme(lipgloss.DefaultRenderer()),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	painter.Attach(p.Send)

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	saveViewState(s, ctrl, statePath)
	if runErr != nil {
		return fmt.Errorf("running program: %w", runErr)
	}
	return nil
}

// reloadConfig applies an edited config. The scheduler owns the rebuild so
// a reload costs one debounced rebuild.
func reloadConfig(ctrl *navigator.Controller, sched *refresh.Scheduler) func(*config.Config) {
	return func(cfg *config.Config) {
		ctrl.SetOrganization(cfg.Organization())
		sched.NotifyChanged()
	}
}

// loadViewState reads the state saved by the previous session. Restoring it
// before the first build replaces the default expansion.
func loadViewState(s *session, path string) (viewstate.File, bool) {
	if path == "" {
		return viewstate.File{}, false
	}
	f, err := viewstate.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, false
	case err != nil:
		s.log.Warn().Err(err).Str("path", path).Msg("Ignoring saved view state")
		return f, false
	}
	s.log.Debug().Str("path", path).Str("mode", string(f.Mode)).Msg("View state loaded")
	return f, true
}

func saveViewState(s *session, ctrl *navigator.Controller, path string) {
	if path == "" {
		return
	}
	if err := viewstate.Save(path, ctrl.Mode(), ctrl.State()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to save view state")
		return
	}
	if s.projectDir != "" {
		if err := viewstate.EnsureIgnored(s.projectDir, path); err != nil {
			s.log.Debug().Err(err).Msg("Could not update .gitignore")
		}
	}
}
