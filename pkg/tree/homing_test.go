package tree

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

func homingFixture(v model.Object) []model.Object {
	return []model.Object{
		pool("P1", "P1"),
		host("H1", "H1", "P1"),
		host("H2", "H2", "P1"),
		host("H3", "H3", "P1"),
		sr("sr-local", "local", false),
		pbd("pbd-local", "sr-local", "H2", true),
		vdi("vdi1", "sr-local"),
		sr("sr-nfs", "nfs", true),
		pbd("pbd-nfs1", "sr-nfs", "H1", true),
		pbd("pbd-nfs2", "sr-nfs", "H2", true),
		vdi("vdi2", "sr-nfs"),
		v,
	}
}

// TestHomePrecedence verifies resident host, then local storage, then
// affinity, then pool level.
func TestHomePrecedence(t *testing.T) {
	base := vm("V1", "V1", model.PowerRunning).
		With(model.AttrResidentOn, "H1").
		With(model.AttrVDIs, []string{"vdi1"}).
		With(model.AttrAffinity, "H3")

	tests := []struct {
		name     string
		vm       model.Object
		wantHost string
	}{
		{"resident", base.Clone(), "H1"},
		{"paused is resident", base.Clone().With(model.AttrPowerState, string(model.PowerPaused)), "H1"},
		{"halted uses local storage", base.Clone().With(model.AttrPowerState, string(model.PowerHalted)), "H2"},
		{"shared storage uses affinity", base.Clone().
			With(model.AttrPowerState, string(model.PowerHalted)).
			With(model.AttrVDIs, []string{"vdi2"}), "H3"},
		{"no affinity is pool level", base.Clone().
			With(model.AttrPowerState, string(model.PowerHalted)).
			With(model.AttrVDIs, []string{"vdi2"}).
			With(model.AttrAffinity, model.NullRef), ""},
		{"dangling resident falls through", base.Clone().With(model.AttrResidentOn, "H9"), "H2"},
		{"mixed disks are not local", base.Clone().
			With(model.AttrPowerState, string(model.PowerSuspended)).
			With(model.AttrVDIs, []string{"vdi1", "vdi2"}), "H3"},
		{"unresolvable disks are ignored", base.Clone().
			With(model.AttrPowerState, string(model.PowerHalted)).
			With(model.AttrVDIs, []string{"vdi1", "vdi-gone"}), "H2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := NewRelations(snapshotOf(homingFixture(tt.vm)...))
			got, ok := rel.Home(tt.vm)
			if tt.wantHost == "" {
				if ok {
					t.Errorf("expected no home, got %s", got)
				}
				return
			}
			if !ok || got != tt.wantHost {
				t.Errorf("Home = %q, %v; want %q", got, ok, tt.wantHost)
			}
		})
	}
}

// TestHomeSequencePlacement verifies the VM moves in the rendered tree as
// its attributes change.
func TestHomeSequencePlacement(t *testing.T) {
	v := vm("V1", "V1", model.PowerRunning).
		With(model.AttrResidentOn, "H1").
		With(model.AttrVDIs, []string{"vdi1"}).
		With(model.AttrAffinity, "H3")

	parentOf := func(v model.Object) string {
		tr := Build(ModeInfrastructure, labSources(homingFixture(v)...), DefaultSettings(), Options{})
		id, ok := tr.FindObject(v.Key)
		if !ok {
			t.Fatal("V1 missing from tree")
		}
		return tr.Node(tr.Parent(id)).Label
	}

	if got := parentOf(v); got != "H1" {
		t.Errorf("running: parent %s, want H1", got)
	}
	v = v.Clone().With(model.AttrPowerState, string(model.PowerHalted))
	if got := parentOf(v); got != "H2" {
		t.Errorf("halted: parent %s, want H2", got)
	}
	v = v.Clone().With(model.AttrVDIs, []string{"vdi2"})
	if got := parentOf(v); got != "H3" {
		t.Errorf("shared disk: parent %s, want H3", got)
	}
	v = v.Clone().With(model.AttrAffinity, "")
	if got := parentOf(v); got != "P1" {
		t.Errorf("no affinity: parent %s, want P1", got)
	}
}

// TestHomeNotForTemplatesOrSnapshots verifies only real VMs are homed
func TestHomeNotForTemplatesOrSnapshots(t *testing.T) {
	objs := []model.Object{
		template("T1", "tpl", false).With(model.AttrAffinity, "H1"),
		vm("S1", "snap", model.PowerRunning).With(model.AttrIsSnapshot, true).With(model.AttrResidentOn, "H1"),
	}
	rel := NewRelations(snapshotOf(append(homingFixture(vm("V1", "V1", model.PowerHalted)), objs...)...))
	for _, obj := range objs {
		if host, ok := rel.Home(obj); ok {
			t.Errorf("%s: unexpected home %s", obj.Key, host)
		}
	}
}

// TestHomeDeterministic checks that homing depends only on the snapshot.
func TestHomeDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hosts := []string{"H1", "H2", "H3", "H9", ""}
		states := []model.PowerState{model.PowerRunning, model.PowerPaused, model.PowerHalted, model.PowerSuspended}
		disks := []string{"vdi1", "vdi2", "vdi-gone"}

		v := vm("V1", "V1", rapid.SampledFrom(states).Draw(t, "state")).
			With(model.AttrResidentOn, rapid.SampledFrom(hosts).Draw(t, "resident")).
			With(model.AttrAffinity, rapid.SampledFrom(hosts).Draw(t, "affinity")).
			With(model.AttrVDIs, rapid.SliceOfDistinct(rapid.SampledFrom(disks), rapid.ID[string]).Draw(t, "vdis"))

		first, firstOK := NewRelations(snapshotOf(homingFixture(v)...)).Home(v)
		second, secondOK := NewRelations(snapshotOf(homingFixture(v.Clone())...)).Home(v)
		if first != second || firstOK != secondOK {
			t.Fatalf("homing differs: %q/%v vs %q/%v", first, firstOK, second, secondOK)
		}
		if firstOK && first != "H1" && first != "H2" && first != "H3" {
			t.Fatalf("home %q is not a known host", first)
		}
	})
}
