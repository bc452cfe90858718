// Package inventory reads the object records of a connection from local
// inventory files and feeds them into the cache.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

// ErrUnsupportedFormat is returned for a file extension no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported inventory format")

// Format is an inventory file format.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Record is the serialized form of one object.
type Record struct {
	Type  model.ObjectType `yaml:"type" json:"type"`
	Ref   string           `yaml:"ref" json:"ref"`
	Attrs map[string]any   `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// Document is the YAML inventory layout.
//
//	objects:
//	  - type: host
//	    ref: OpaqueRef:h1
//	    attrs:
//	      name_label: host01
//	      pool: OpaqueRef:p1
type Document struct {
	Objects []Record `yaml:"objects"`
}

func (r Record) object() (model.Object, error) {
	t, err := model.ParseObjectType(string(r.Type))
	if err != nil {
		return model.Object{}, err
	}
	obj := model.NewObject(t, strings.TrimSpace(r.Ref))
	for k, v := range r.Attrs {
		obj.Attrs[k] = v
	}
	if err := obj.Validate(); err != nil {
		return model.Object{}, err
	}
	return obj, nil
}

func recordOf(obj model.Object) Record {
	return Record{Type: obj.Key.Type, Ref: obj.Key.Ref, Attrs: obj.Attrs}
}

// Load reads an inventory file in whichever format its extension names.
func Load(path string) ([]model.Object, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSQLite:
		return LoadSQLite(path)
	default:
		return LoadYAML(path)
	}
}

// LoadYAML reads a YAML inventory.
func LoadYAML(path string) ([]model.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	return decodeRecords(path, doc.Objects)
}

func decodeRecords(path string, records []Record) ([]model.Object, error) {
	objs := make([]model.Object, 0, len(records))
	seen := make(map[model.ObjectKey]bool, len(records))
	for i, r := range records {
		obj, err := r.object()
		if err != nil {
			return nil, fmt.Errorf("inventory %s: object[%d]: %w", path, i, err)
		}
		if seen[obj.Key] {
			return nil, fmt.Errorf("inventory %s: object[%d]: duplicate %s", path, i, obj.Key)
		}
		seen[obj.Key] = true
		objs = append(objs, obj)
	}
	return objs, nil
}

// WriteYAML writes objs as a YAML inventory, ordered by type and ref.
func WriteYAML(path string, objs []model.Object) error {
	doc := Document{Objects: sortedRecords(objs)}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write inventory %s: %w", path, err)
	}
	return nil
}

// Write writes objs in the format named by the extension of path.
func Write(path string, objs []model.Object) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatSQLite {
		return WriteSQLite(path, objs)
	}
	return WriteYAML(path, objs)
}

func sortedRecords(objs []model.Object) []Record {
	records := make([]Record, 0, len(objs))
	for _, obj := range objs {
		records = append(records, recordOf(obj))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Ref < records[j].Ref
	})
	return records
}
