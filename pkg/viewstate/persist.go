package viewstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// File is the on-disk session state.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "mode": "infrastructure",
//	  "state": {
//	    "selected": {"type": "vm", "ref": "OpaqueRef:1"},
//	    "expanded": [[{"group": "root", "value": "infrastructure", "label": "Infrastructure"}]]
//	  }
//	}
//
// A missing or unreadable file means no saved state.
type File struct {
	Version int            `json:"version"`
	Mode    tree.Mode      `json:"mode,omitempty"`
	State   SavedViewState `json:"state"`
}

// FileVersion is the current schema version.
const FileVersion = 1

// DefaultFileName is the file name used inside the state directory.
const DefaultFileName = "view-state.json"

var (
	// ErrCorrupt is returned when the state file cannot be decoded.
	ErrCorrupt = errors.New("corrupt view state file")
	// ErrVersion is returned for a schema version this build does not read.
	ErrVersion = errors.New("unsupported view state version")
)

// DefaultPath returns the state file under dir, or under .poolnav when dir
// is empty.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = ".poolnav"
	}
	return filepath.Join(dir, DefaultFileName)
}

// Save writes the state of mode to path, creating the directory if needed.
func Save(path string, mode tree.Mode, s SavedViewState) error {
	data, err := json.MarshalIndent(File{Version: FileVersion, Mode: mode, State: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write view state to %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace view state %s: %w", path, err)
	}
	return nil
}

// Load reads a state file. A missing file returns an error satisfying
// errors.Is(err, os.ErrNotExist).
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read view state: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
	}
	if f.Version != FileVersion {
		return File{}, fmt.Errorf("%w %d in %s", ErrVersion, f.Version, path)
	}
	if f.Mode != "" && !f.Mode.IsValid() {
		f.Mode = ""
	}
	f.State = sanitize(f.State)
	return f, nil
}

// sanitize drops segments a hand-edited file cannot have meant.
func sanitize(s SavedViewState) SavedViewState {
	if s.Selected != nil && (!s.Selected.Type.IsValid() || s.Selected.Ref == "") {
		s.Selected = nil
	}
	paths := s.Expanded[:0]
	for _, p := range s.Expanded {
		if len(p) == 0 {
			continue
		}
		paths = append(paths, p)
	}
	s.Expanded = paths
	return s
}
