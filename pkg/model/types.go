package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectType is the kind of a cached record
type ObjectType string

const (
	TypePool       ObjectType = "pool"
	TypeHost       ObjectType = "host"
	TypeVM         ObjectType = "vm"
	TypeSR         ObjectType = "sr"
	TypePBD        ObjectType = "pbd"
	TypeVDI        ObjectType = "vdi"
	TypeConnection ObjectType = "connection"
	TypeAppliance  ObjectType = "vm_appliance"
)

// AllTypes lists every known object type in a stable order.
func AllTypes() []ObjectType {
	return []ObjectType{
		TypePool, TypeHost, TypeVM, TypeSR, TypePBD, TypeVDI, TypeConnection, TypeAppliance,
	}
}

// IsValid returns true if the type is a recognized value
func (t ObjectType) IsValid() bool {
	switch t {
	case TypePool, TypeHost, TypeVM, TypeSR, TypePBD, TypeVDI, TypeConnection, TypeAppliance:
		return true
	}
	return false
}

// ParseObjectType converts a string to an ObjectType, accepting a few aliases
// ("storage" for sr, "appliance" and "vapp" for vm_appliance).
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(strings.ToLower(strings.TrimSpace(s))); t {
	case "storage":
		return TypeSR, nil
	case "appliance", "vapp":
		return TypeAppliance, nil
	default:
		if t.IsValid() {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown object type %q", s)
}

// ObjectKey is the concrete identity of a cached record. Refs are opaque and
// unique within a type.
type ObjectKey struct {
	Type ObjectType `json:"type" yaml:"type"`
	Ref  string     `json:"ref" yaml:"ref"`
}

// String returns "type:ref"
func (k ObjectKey) String() string {
	return string(k.Type) + ":" + k.Ref
}

// IsZero reports whether the key is unset
func (k ObjectKey) IsZero() bool {
	return k.Type == "" && k.Ref == ""
}

// Attribute names understood by the tree builder.
const (
	AttrNameLabel         = "name_label"
	AttrPowerState        = "power_state"
	AttrResidentOn        = "resident_on"
	AttrAffinity          = "affinity"
	AttrIsTemplate        = "is_a_template"
	AttrIsSnapshot        = "is_a_snapshot"
	AttrIsControlDomain   = "is_control_domain"
	AttrIsDefaultTemplate = "is_default_template"
	AttrVDIs              = "vdis"
	AttrSR                = "sr"
	AttrHost              = "host"
	AttrCurrentlyAttached = "currently_attached"
	AttrShared            = "shared"
	AttrContentType       = "content_type"
	AttrIsToolsSR         = "is_tools_sr"
	AttrHidden            = "hidden"
	AttrPool              = "pool"
	AttrTags              = "tags"
	AttrFolder            = "folder"
	AttrCustomFields      = "custom_fields"
	AttrAppliance         = "appliance"
	AttrConnected         = "connected"
	AttrHostname          = "hostname"
	AttrPort              = "port"
)

// PowerState is the power state of a VM
type PowerState string

const (
	PowerRunning   PowerState = "Running"
	PowerPaused    PowerState = "Paused"
	PowerHalted    PowerState = "Halted"
	PowerSuspended PowerState = "Suspended"
)

// IsValid returns true if the power state is a recognized value
func (p PowerState) IsValid() bool {
	switch p {
	case PowerRunning, PowerPaused, PowerHalted, PowerSuspended:
		return true
	}
	return false
}

// IsLive returns true for states in which the VM occupies a host
func (p PowerState) IsLive() bool {
	return p == PowerRunning || p == PowerPaused
}

// ContentTypeISO marks an SR holding ISO images
const ContentTypeISO = "iso"

// Object is a snapshot of one cached record. Attribute values follow the
// shapes produced by YAML/JSON decoding: string, bool, numbers, []any and
// map[string]any.
type Object struct {
	Key        ObjectKey      `json:"key" yaml:"key"`
	Connection string         `json:"connection,omitempty" yaml:"connection,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// NewObject creates an object with an empty attribute map
func NewObject(t ObjectType, ref string) Object {
	return Object{Key: ObjectKey{Type: t, Ref: ref}, Attrs: make(map[string]any)}
}

// With returns the object with an attribute set. It mutates the receiver's
// map, so use it while constructing records, not on shared snapshots.
func (o Object) With(name string, value any) Object {
	if o.Attrs == nil {
		o.Attrs = make(map[string]any)
	}
	o.Attrs[name] = value
	return o
}

// Validate checks if the object is logically valid
func (o *Object) Validate() error {
	if !o.Key.Type.IsValid() {
		return fmt.Errorf("invalid object type: %q", o.Key.Type)
	}
	if o.Key.Ref == "" {
		return fmt.Errorf("%s ref cannot be empty", o.Key.Type)
	}
	if ps := o.String(AttrPowerState); ps != "" && !PowerState(ps).IsValid() {
		return fmt.Errorf("%s: invalid power state %q", o.Key, ps)
	}
	return nil
}

// Clone creates a deep copy of the object
func (o Object) Clone() Object {
	clone := o
	if o.Attrs != nil {
		clone.Attrs = make(map[string]any, len(o.Attrs))
		for k, v := range o.Attrs {
			clone.Attrs[k] = cloneValue(v)
		}
	}
	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	default:
		return v
	}
}

// Name returns the display label, falling back to the ref
func (o Object) Name() string {
	if name := strings.TrimSpace(o.String(AttrNameLabel)); name != "" {
		return name
	}
	return o.Key.Ref
}

// String returns a string attribute, or "" when absent.
func (o Object) String(name string) string {
	switch v := o.Attrs[name].(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns a boolean attribute. Strings "true"/"1"/"yes" count as true,
// matching how other_config values arrive.
func (o Object) Bool(name string) bool {
	switch v := o.Attrs[name].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return strings.EqualFold(strings.TrimSpace(v), "yes")
		}
		return b
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// Ref returns a reference-valued attribute; "" and "OpaqueRef:NULL" both
// mean absent.
func (o Object) Ref(name string) string {
	ref := strings.TrimSpace(o.String(name))
	if ref == NullRef {
		return ""
	}
	return ref
}

// NullRef is the reference value meaning "no object"
const NullRef = "OpaqueRef:NULL"

// Refs returns a list of references, skipping empty and null entries.
func (o Object) Refs(name string) []string {
	var out []string
	for _, s := range o.Strings(name) {
		s = strings.TrimSpace(s)
		if s == "" || s == NullRef {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Strings returns a list attribute as strings
func (o Object) Strings(name string) []string {
	switch v := o.Attrs[name].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// StringMap returns a map attribute with values rendered as strings
func (o Object) StringMap(name string) map[string]string {
	switch v := o.Attrs[name].(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if val == nil {
				continue
			}
			out[k] = fmt.Sprint(val)
		}
		return out
	}
	return nil
}

// PowerState returns the VM power state attribute
func (o Object) PowerState() PowerState {
	return PowerState(o.String(AttrPowerState))
}

// IsTemplate reports whether a VM record is a template (not a snapshot)
func (o Object) IsTemplate() bool {
	return o.Key.Type == TypeVM && o.Bool(AttrIsTemplate) && !o.Bool(AttrIsSnapshot)
}

// IsSnapshot reports whether a VM record is a snapshot
func (o Object) IsSnapshot() bool {
	return o.Key.Type == TypeVM && o.Bool(AttrIsSnapshot)
}

// IsControlDomain reports whether a VM record is a host's control domain
func (o Object) IsControlDomain() bool {
	return o.Key.Type == TypeVM && o.Bool(AttrIsControlDomain)
}

// IsRealVM reports whether a VM record is a guest: not a template, snapshot
// or control domain.
func (o Object) IsRealVM() bool {
	return o.Key.Type == TypeVM && !o.Bool(AttrIsTemplate) && !o.Bool(AttrIsSnapshot) && !o.Bool(AttrIsControlDomain)
}

// IsHidden reports whether the record carries the hide-from-console flag
func (o Object) IsHidden() bool {
	return o.Bool(AttrHidden)
}
