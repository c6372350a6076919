package zones_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/system/zones"
)

func TestDefaultDirectory(t *testing.T) {
	d := zones.Default()

	zs := d.Zones()
	if len(zs) != 4 {
		t.Fatalf("expected 4 zones, got %d", len(zs))
	}
	total := 0
	for _, z := range zs {
		total += len(z.Wards)
	}
	if total != 100 {
		t.Errorf("expected 100 wards, got %d", total)
	}

	z, ok := d.ZoneByWard("Ward 12")
	if !ok || z.ID != "zone-1" {
		t.Errorf("Ward 12 should be in zone-1, got %q ok=%v", z.ID, ok)
	}
	z, ok = d.ZoneByWard("Ward 100")
	if !ok || z.ID != "zone-4" {
		t.Errorf("Ward 100 should be in zone-4, got %q ok=%v", z.ID, ok)
	}
	if _, ok := d.ZoneByWard("Ward 101"); ok {
		t.Error("Ward 101 should not resolve")
	}
	if _, ok := d.ZoneByID("zone-9"); ok {
		t.Error("zone-9 should not resolve")
	}
	if w := d.WardsOf("zone-2"); len(w) != 25 || w[0] != "Ward 26" || w[24] != "Ward 50" {
		t.Errorf("unexpected wards for zone-2: first=%v len=%d", w[:1], len(w))
	}
	if d.WardsOf("nope") != nil {
		t.Error("unknown zone should have nil wards")
	}
}

// Every ward resolves back to a zone that lists it, and no ward is shared.
func TestWardOwnershipIsExclusive(t *testing.T) {
	d := zones.Default()
	seen := map[string]string{}
	for _, z := range d.Zones() {
		for _, w := range z.Wards {
			if prev, dup := seen[w]; dup {
				t.Fatalf("ward %q in both %s and %s", w, prev, z.ID)
			}
			seen[w] = z.ID
			got, ok := d.ZoneByWard(w)
			if !ok || got.ID != z.ID {
				t.Fatalf("ZoneByWard(%q) = %q, want %q", w, got.ID, z.ID)
			}
		}
	}
}

func TestWardsOfReturnsCopy(t *testing.T) {
	d := zones.Default()
	w := d.WardsOf("zone-1")
	w[0] = "mutated"
	if d.WardsOf("zone-1")[0] != "Ward 1" {
		t.Error("WardsOf must not expose internal state")
	}
}

func TestResolve(t *testing.T) {
	d := zones.Default()
	tests := []struct {
		zone, ward string
		ok         bool
	}{
		{"zone-1", "Ward 12", true},
		{"", "Ward 12", true},
		{"zone-2", "Ward 12", false},
		{"zone-1", "Ward 0", false},
	}
	for _, tt := range tests {
		_, ok := d.Resolve(tt.zone, tt.ward)
		if ok != tt.ok {
			t.Errorf("Resolve(%q, %q) ok=%v, want %v", tt.zone, tt.ward, ok, tt.ok)
		}
	}
	if !d.Contains("zone-3", "Ward 51") || d.Contains("zone-3", "Ward 50") {
		t.Error("Contains mismatch at zone boundary")
	}
}

func TestNewRejectsBadDirectories(t *testing.T) {
	tests := []struct {
		name  string
		zones []zones.Zone
		want  string
	}{
		{"empty", nil, "empty"},
		{"no wards", []zones.Zone{{ID: "a"}}, "no wards"},
		{"no id", []zones.Zone{{Name: "A", Wards: []string{"W1"}}}, "no id"},
		{"dup in zone", []zones.Zone{{ID: "a", Wards: []string{"W1", "W1"}}}, "listed twice"},
		{"shared ward", []zones.Zone{{ID: "a", Wards: []string{"W1"}}, {ID: "b", Wards: []string{"W1"}}}, "belongs to both"},
		{"dup id", []zones.Zone{{ID: "a", Wards: []string{"W1"}}, {ID: "a", Wards: []string{"W2"}}}, "duplicate zone id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := zones.New(tt.zones)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewNormalizesWardLabels(t *testing.T) {
	d, err := zones.New([]zones.Zone{
		{ID: "east", Wards: []string{"ward 5", " Ward  06 ", "7"}},
		{ID: "west", Wards: []string{"Anna  Nagar"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := d.WardsOf("east"); strings.Join(got, ",") != "Ward 5,Ward 6,Ward 7" {
		t.Errorf("stored labels = %q", got)
	}
	for _, ward := range []string{"Ward 5", "ward 5", "WARD 6", "7"} {
		if z, ok := d.ZoneByWard(ward); !ok || z.ID != "east" {
			t.Errorf("%q -> %q ok=%v", ward, z.ID, ok)
		}
	}
	if !d.Contains("west", "Anna Nagar") {
		t.Error("named ward should resolve after whitespace collapse")
	}

	_, err = zones.New([]zones.Zone{{ID: "a", Wards: []string{"ward 5"}}, {ID: "b", Wards: []string{"Ward 5"}}})
	if err == nil || !strings.Contains(err.Error(), "belongs to both") {
		t.Errorf("spelling variants of one ward should collide, got %v", err)
	}
}

func TestLoadFileExplicitWards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	data := "zones:\n  - id: north\n    name: North\n    wards: [\"N1\", \"N2\"]\n  - id: south\n    name: South\n    ward_range: [3, 4]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	d, err := zones.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if z, ok := d.ZoneByWard("Ward 4"); !ok || z.ID != "south" {
		t.Errorf("Ward 4 -> %q ok=%v", z.ID, ok)
	}
	if z, ok := d.ZoneByWard("N2"); !ok || z.ID != "north" {
		t.Errorf("N2 -> %q ok=%v", z.ID, ok)
	}
}

func TestLoadRejectsBadRange(t *testing.T) {
	_, err := zones.Load([]byte("zones:\n  - id: x\n    ward_range: [5, 1]\n"))
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
}
