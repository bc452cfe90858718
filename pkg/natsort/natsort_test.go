package natsort

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"VM9", "VM10", -1},
		{"VM10", "VM2", 1},
		{"img", "IMG", 0},
		{"VM9a", "VM10", -1},
		{"VM10", "VM10a", -1},
		{"host2", "host2", 0},
		{"", "a", -1},
		{"a", "", 1},
		{"007", "7", 1},
		{"disk-1-2", "disk-1-10", -1},
		{"Alpha", "beta", -1},
		{"Ärger", "ärger", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := sign(Compare(tt.a, tt.b)); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	labels := []string{"vm10", "VM2", "vm1", "Vm2", "host", "vm9a"}
	Sort(labels)
	want := []string{"host", "vm1", "VM2", "Vm2", "vm9a", "vm10"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Sort() = %v, want %v", labels, want)
	}
}

func labelGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-cA-C0-9 -]{0,8}`)
}

func TestCompareProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := labelGen().Draw(t, "a")
		b := labelGen().Draw(t, "b")
		c := labelGen().Draw(t, "c")

		if Compare(a, a) != 0 {
			t.Fatalf("Compare(%q, %q) not reflexive", a, a)
		}
		if sign(Compare(a, b)) != -sign(Compare(b, a)) {
			t.Fatalf("Compare not antisymmetric for %q, %q", a, b)
		}
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			t.Fatalf("Compare not transitive for %q <= %q <= %q", a, b, c)
		}
	})
}
