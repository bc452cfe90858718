package model

import (
	"reflect"
	"testing"
)

func TestObjectType_IsValid(t *testing.T) {
	tests := []struct {
		name string
		typ  ObjectType
		want bool
	}{
		{"Pool", TypePool, true},
		{"Host", TypeHost, true},
		{"VM", TypeVM, true},
		{"SR", TypeSR, true},
		{"PBD", TypePBD, true},
		{"VDI", TypeVDI, true},
		{"Connection", TypeConnection, true},
		{"Appliance", TypeAppliance, true},
		{"Invalid", "network", false},
		{"Empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.want {
				t.Errorf("ObjectType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseObjectType(t *testing.T) {
	tests := []struct {
		in      string
		want    ObjectType
		wantErr bool
	}{
		{"vm", TypeVM, false},
		{" Host ", TypeHost, false},
		{"storage", TypeSR, false},
		{"vapp", TypeAppliance, false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseObjectType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObjectType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseObjectType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPowerState_IsLive(t *testing.T) {
	tests := []struct {
		state PowerState
		want  bool
	}{
		{PowerRunning, true},
		{PowerPaused, true},
		{PowerHalted, false},
		{PowerSuspended, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.state.IsLive(); got != tt.want {
			t.Errorf("PowerState(%q).IsLive() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestObject_Validate(t *testing.T) {
	tests := []struct {
		name    string
		obj     Object
		wantErr bool
	}{
		{"Valid", NewObject(TypeVM, "vm1").With(AttrPowerState, "Running"), false},
		{"BadType", NewObject("nic", "n1"), true},
		{"EmptyRef", NewObject(TypeHost, ""), true},
		{"BadPower", NewObject(TypeVM, "vm1").With(AttrPowerState, "Exploded"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obj.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObject_Name(t *testing.T) {
	if got := NewObject(TypeVM, "ref1").With(AttrNameLabel, "web").Name(); got != "web" {
		t.Errorf("Name() = %q, want web", got)
	}
	if got := NewObject(TypeVM, "ref1").With(AttrNameLabel, "  ").Name(); got != "ref1" {
		t.Errorf("Name() with blank label = %q, want ref1", got)
	}
}

func TestObject_Bool(t *testing.T) {
	o := NewObject(TypeSR, "sr1").
		With("a", true).
		With("b", "true").
		With("c", "yes").
		With("d", "0").
		With("e", 1).
		With("f", 0.0)
	want := map[string]bool{"a": true, "b": true, "c": true, "d": false, "e": true, "f": false, "missing": false}
	for name, w := range want {
		if got := o.Bool(name); got != w {
			t.Errorf("Bool(%q) = %v, want %v", name, got, w)
		}
	}
}

func TestObject_Refs(t *testing.T) {
	o := NewObject(TypeVM, "vm1").
		With(AttrVDIs, []any{"vdi1", "", NullRef, "vdi2", nil}).
		With(AttrResidentOn, NullRef)

	got := o.Refs(AttrVDIs)
	want := []string{"vdi1", "vdi2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Refs() = %v, want %v", got, want)
	}
	if ref := o.Ref(AttrResidentOn); ref != "" {
		t.Errorf("Ref() of null ref = %q, want empty", ref)
	}
}

func TestObject_StringMap(t *testing.T) {
	o := NewObject(TypeVM, "vm1").With(AttrCustomFields, map[string]any{"owner": "ops", "rank": 3, "gone": nil})
	got := o.StringMap(AttrCustomFields)
	want := map[string]string{"owner": "ops", "rank": "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StringMap() = %v, want %v", got, want)
	}
}

func TestObject_Clone(t *testing.T) {
	original := NewObject(TypeVM, "vm1").
		With(AttrTags, []any{"prod"}).
		With(AttrCustomFields, map[string]any{"owner": "ops"})

	clone := original.Clone()
	clone.Attrs[AttrTags].([]any)[0] = "dev"
	clone.Attrs[AttrCustomFields].(map[string]any)["owner"] = "dev"
	clone.Attrs[AttrNameLabel] = "changed"

	if original.Strings(AttrTags)[0] != "prod" {
		t.Error("Clone shares tag slice with original")
	}
	if original.StringMap(AttrCustomFields)["owner"] != "ops" {
		t.Error("Clone shares custom field map with original")
	}
	if _, ok := original.Attrs[AttrNameLabel]; ok {
		t.Error("Clone shares attribute map with original")
	}
}

func TestObject_VMKinds(t *testing.T) {
	tests := []struct {
		name     string
		obj      Object
		real     bool
		template bool
		snapshot bool
		dom0     bool
	}{
		{"Guest", NewObject(TypeVM, "a"), true, false, false, false},
		{"Template", NewObject(TypeVM, "b").With(AttrIsTemplate, true), false, true, false, false},
		{"Snapshot", NewObject(TypeVM, "c").With(AttrIsTemplate, true).With(AttrIsSnapshot, true), false, false, true, false},
		{"ControlDomain", NewObject(TypeVM, "d").With(AttrIsControlDomain, true), false, false, false, true},
		{"Host", NewObject(TypeHost, "h"), false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.IsRealVM(); got != tt.real {
				t.Errorf("IsRealVM() = %v, want %v", got, tt.real)
			}
			if got := tt.obj.IsTemplate(); got != tt.template {
				t.Errorf("IsTemplate() = %v, want %v", got, tt.template)
			}
			if got := tt.obj.IsSnapshot(); got != tt.snapshot {
				t.Errorf("IsSnapshot() = %v, want %v", got, tt.snapshot)
			}
			if got := tt.obj.IsControlDomain(); got != tt.dom0 {
				t.Errorf("IsControlDomain() = %v, want %v", got, tt.dom0)
			}
		})
	}
}
