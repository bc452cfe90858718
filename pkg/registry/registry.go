// Package registry keeps the list of known server connections and whether
// each one is currently connected.
package registry

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

// DefaultPort is used when a connection does not name one.
const DefaultPort = 443

// ErrNoConnections is returned by Discover when no connections file exists.
var ErrNoConnections = errors.New("no connections configured")

// File represents a connections file (.poolnav/connections.yaml)
type File struct {
	// Connections lists every known server
	Connections []ConnectionConfig `yaml:"connections" json:"connections"`

	// Defaults sets default values for connections
	Defaults ConnectionDefaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// ConnectionConfig represents a single server connection
type ConnectionConfig struct {
	// Name is the display name (default: hostname)
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Hostname of the pool coordinator or standalone host
	Hostname string `yaml:"hostname" json:"hostname"`

	// Port (default: 443)
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Inventory is the local inventory file (YAML or SQLite) that feeds the
	// cache for this connection, relative to the connections file
	Inventory string `yaml:"inventory,omitempty" json:"inventory,omitempty"`

	// Enabled controls whether this connection is included (default: true)
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// ConnectionDefaults provides default values for connections
type ConnectionDefaults struct {
	// Port default (default: 443)
	Port int `yaml:"port,omitempty" json:"port,omitempty"`
}

// Validate checks the file for errors. An empty connection list is valid.
func (f *File) Validate() error {
	seen := make(map[string]bool)
	for i, c := range f.Connections {
		if strings.TrimSpace(c.Hostname) == "" {
			return fmt.Errorf("connection[%d]: hostname is required", i)
		}
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("connection[%d]: port %d out of range", i, c.Port)
		}
		id := c.ID()
		if seen[id] {
			return fmt.Errorf("connection[%d]: duplicate connection %q", i, id)
		}
		seen[id] = true
	}
	return nil
}

// GetName returns the effective display name
func (c *ConnectionConfig) GetName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Hostname
}

// GetPort returns the effective port
func (c *ConnectionConfig) GetPort() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort
}

// ID returns the connection identifier, "hostname:port"
func (c *ConnectionConfig) ID() string {
	return SyntheticRef(c.Hostname, c.GetPort())
}

// IsEnabled returns whether the connection is enabled
func (c *ConnectionConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// InventoryPath resolves the inventory file against baseDir. It returns ""
// when the connection has no inventory.
func (c *ConnectionConfig) InventoryPath(baseDir string) string {
	if c.Inventory == "" {
		return ""
	}
	if filepath.IsAbs(c.Inventory) {
		return c.Inventory
	}
	return filepath.Join(baseDir, c.Inventory)
}

// SyntheticRef builds the stable ref used for a connection's placeholder
// record from its hostname and port.
func SyntheticRef(hostname string, port int) string {
	return net.JoinHostPort(strings.ToLower(strings.TrimSpace(hostname)), strconv.Itoa(port))
}

// LoadFile loads a connections file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing connections file: %w", err)
	}

	if file.Defaults.Port > 0 {
		for i := range file.Connections {
			if file.Connections[i].Port == 0 {
				file.Connections[i].Port = file.Defaults.Port
			}
		}
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connections file: %w", err)
	}

	return &file, nil
}

// FindFile searches for .poolnav/connections.yaml starting from dir
func FindFile(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	for {
		candidate := filepath.Join(dir, ".poolnav", "connections.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// Discover returns explicit when set, otherwise the nearest connections
// file above the working directory. It returns ErrNoConnections when there
// is none.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("connections file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	path, err := FindFile("")
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoConnections
	}
	return path, err
}

// ExampleFile returns an example connections file
func ExampleFile() File {
	disabled := false
	return File{
		Connections: []ConnectionConfig{
			{Name: "Lab pool", Hostname: "lab-master.example.com", Inventory: "inventory/lab.yaml"},
			{Name: "Standalone", Hostname: "edge01.example.com", Port: 8443, Inventory: "inventory/edge01.db"},
			{Name: "Retired", Hostname: "old.example.com", Enabled: &disabled},
		},
	}
}

// Connection is the registry's view of one server.
type Connection struct {
	ID        string
	Name      string
	Hostname  string
	Port      int
	Connected bool
}

// Key returns the synthetic identity of the connection's placeholder record.
func (c Connection) Key() model.ObjectKey {
	return model.ObjectKey{Type: model.TypeConnection, Ref: SyntheticRef(c.Hostname, c.Port)}
}

// Object returns the synthetic record representing the connection.
func (c Connection) Object() model.Object {
	return model.Object{
		Key:        c.Key(),
		Connection: c.ID,
		Attrs: map[string]any{
			model.AttrNameLabel: c.Name,
			model.AttrHostname:  c.Hostname,
			model.AttrPort:      c.Port,
			model.AttrConnected: c.Connected,
		},
	}
}

// Source lists known connections in a stable order.
type Source interface {
	Connections() []Connection
}

// Registry is a concurrency-safe Source backed by a connections file.
type Registry struct {
	mu        sync.RWMutex
	configs   []ConnectionConfig
	connected map[string]bool
}

// New creates a registry from a connections file. Disabled connections are
// skipped. A nil file yields an empty registry.
func New(file *File) *Registry {
	r := &Registry{connected: make(map[string]bool)}
	if file != nil {
		for _, c := range file.Connections {
			if c.IsEnabled() {
				r.configs = append(r.configs, c)
			}
		}
	}
	return r
}

// Connections lists enabled connections in file order.
func (r *Registry) Connections() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Connection, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, Connection{
			ID:        c.ID(),
			Name:      c.GetName(),
			Hostname:  c.Hostname,
			Port:      c.GetPort(),
			Connected: r.connected[c.ID()],
		})
	}
	return out
}

// Configs returns the enabled connection configs in file order.
func (r *Registry) Configs() []ConnectionConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ConnectionConfig(nil), r.configs...)
}

// SetConnected records a connection state and reports whether it changed.
// Unknown IDs are ignored.
func (r *Registry) SetConnected(id string, connected bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	known := false
	for _, c := range r.configs {
		if c.ID() == id {
			known = true
			break
		}
	}
	if !known || r.connected[id] == connected {
		return false
	}
	r.connected[id] = connected
	return true
}

// Len returns the number of enabled connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}

// Static is a fixed Source, handy for tests and one-shot commands.
type Static []Connection

// Connections returns the fixed list.
func (s Static) Connections() []Connection {
	return append([]Connection(nil), s...)
}
