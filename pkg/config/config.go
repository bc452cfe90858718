// Package config loads and validates poolnav's application settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/logging"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Config is the contents of config.yaml.
type Config struct {
	View    ViewConfig    `yaml:"view" json:"view"`
	Refresh RefreshConfig `yaml:"refresh" json:"refresh"`
	Log     LogConfig     `yaml:"log" json:"log"`

	// StateFile stores selection and expansion between sessions. Empty
	// disables persistence.
	StateFile string `yaml:"state_file,omitempty" json:"state_file,omitempty"`

	// ConnectionsFile overrides connections.yaml discovery.
	ConnectionsFile string `yaml:"connections_file,omitempty" json:"connections_file,omitempty"`
}

// ViewConfig configures the navigation tree.
type ViewConfig struct {
	Mode string `yaml:"mode" json:"mode"`

	// Organization is the grouping used in organization mode, levels joined
	// by "/", e.g. "tag/type" or "custom_field:owner".
	Organization string `yaml:"organization,omitempty" json:"organization,omitempty"`

	ShowDefaultTemplates bool `yaml:"show_default_templates" json:"show_default_templates"`
	ShowUserTemplates    bool `yaml:"show_user_templates" json:"show_user_templates"`
	ShowLocalStorage     bool `yaml:"show_local_storage" json:"show_local_storage"`
	ShowHiddenObjects    bool `yaml:"show_hidden_objects" json:"show_hidden_objects"`
}

// RefreshConfig configures the rebuild debounce.
type RefreshConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

const (
	minDebounce = 10 * time.Millisecond
	maxDebounce = 10 * time.Second
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default returns the built-in configuration.
func Default() Config {
	s := tree.DefaultSettings()
	return Config{
		View: ViewConfig{
			Mode:                 string(tree.ModeInfrastructure),
			ShowDefaultTemplates: s.ShowDefaultTemplates,
			ShowUserTemplates:    s.ShowUserTemplates,
			ShowLocalStorage:     s.ShowLocalStorage,
			ShowHiddenObjects:    s.ShowHiddenObjects,
		},
		Refresh: RefreshConfig{Debounce: 200 * time.Millisecond},
		Log:     LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := tree.ParseMode(c.View.Mode); err != nil {
		return fmt.Errorf("%w: view.mode: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.View.Organization) != "" {
		if _, err := grouping.Parse(c.View.Organization); err != nil {
			return fmt.Errorf("%w: view.organization: %v", ErrInvalid, err)
		}
	}
	if c.Refresh.Debounce < minDebounce || c.Refresh.Debounce > maxDebounce {
		return fmt.Errorf("%w: refresh.debounce %v must be between %v and %v",
			ErrInvalid, c.Refresh.Debounce, minDebounce, maxDebounce)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Mode returns the configured navigation mode.
func (c *Config) Mode() tree.Mode {
	m, err := tree.ParseMode(c.View.Mode)
	if err != nil {
		return tree.ModeInfrastructure
	}
	return m
}

// Settings returns the visibility toggles for the tree builder.
func (c *Config) Settings() tree.Settings {
	return tree.Settings{
		ShowDefaultTemplates: c.View.ShowDefaultTemplates,
		ShowUserTemplates:    c.View.ShowUserTemplates,
		ShowLocalStorage:     c.View.ShowLocalStorage,
		ShowHiddenObjects:    c.View.ShowHiddenObjects,
	}
}

// Organization returns the organization grouping, or nil for the default.
func (c *Config) Organization() grouping.Grouping {
	if strings.TrimSpace(c.View.Organization) == "" {
		return nil
	}
	g, err := grouping.Parse(c.View.Organization)
	if err != nil {
		return nil
	}
	return g
}

// Example returns a commented sample config.yaml.
func Example() string {
	return `# poolnav configuration
view:
  mode: infrastructure        # infrastructure, objects or organization
  organization: tag/type      # grouping levels for organization mode
  show_default_templates: false
  show_user_templates: true
  show_local_storage: true
  show_hidden_objects: true
refresh:
  debounce: 200ms
log:
  level: info
  format: auto
state_file: .poolnav/view-state.json
`
}
