// Package zones is the static zone/ward directory.
//
// A Directory is immutable once built. Lookups are total: an unknown zone or
// ward yields ok=false, never an error.
package zones

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"gopkg.in/yaml.v3"
)

//go:embed zones.yaml
var defaultYAML []byte

// Zone is an administrative grouping of wards.
type Zone struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Wards []string `json:"wards"`
}

// Directory indexes zones by id and by ward label.
type Directory struct {
	zones  []Zone
	byID   map[string]int
	byWard map[string]int
}

// New validates zones and builds a directory. Every zone needs an id and at
// least one ward; ward labels must be unique across the whole directory.
// Labels are stored in normalize.Ward form, so "ward 05" becomes "Ward 5".
func New(zs []Zone) (*Directory, error) {
	d := &Directory{
		zones:  make([]Zone, 0, len(zs)),
		byID:   make(map[string]int, len(zs)),
		byWard: make(map[string]int),
	}
	for _, z := range zs {
		z.ID = strings.TrimSpace(z.ID)
		if z.ID == "" {
			return nil, fmt.Errorf("zones: zone %q has no id", z.Name)
		}
		if _, dup := d.byID[z.ID]; dup {
			return nil, fmt.Errorf("zones: duplicate zone id %q", z.ID)
		}
		if len(z.Wards) == 0 {
			return nil, fmt.Errorf("zones: zone %q has no wards", z.ID)
		}
		idx := len(d.zones)
		wards := make([]string, 0, len(z.Wards))
		for _, w := range z.Wards {
			w = normalize.Ward(w)
			if w == "" {
				return nil, fmt.Errorf("zones: zone %q has an empty ward label", z.ID)
			}
			if other, dup := d.byWard[w]; dup {
				if other == idx {
					return nil, fmt.Errorf("zones: ward %q listed twice in zone %q", w, z.ID)
				}
				return nil, fmt.Errorf("zones: ward %q belongs to both %q and %q", w, d.zones[other].ID, z.ID)
			}
			d.byWard[w] = idx
			wards = append(wards, w)
		}
		z.Wards = wards
		d.byID[z.ID] = idx
		d.zones = append(d.zones, z)
	}
	if len(d.zones) == 0 {
		return nil, fmt.Errorf("zones: directory is empty")
	}
	return d, nil
}

type fileZone struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Wards     []string `yaml:"wards"`
	WardRange []int    `yaml:"ward_range"`
}

type fileDoc struct {
	Zones []fileZone `yaml:"zones"`
}

// Load parses a YAML directory. A zone lists its wards explicitly or gives a
// two-element ward_range expanded to "Ward N" labels.
func Load(data []byte) (*Directory, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("zones: parse: %w", err)
	}
	zs := make([]Zone, 0, len(doc.Zones))
	for _, fz := range doc.Zones {
		z := Zone{ID: fz.ID, Name: fz.Name, Wards: append([]string(nil), fz.Wards...)}
		if len(fz.WardRange) > 0 {
			if len(fz.WardRange) != 2 || fz.WardRange[0] > fz.WardRange[1] {
				return nil, fmt.Errorf("zones: zone %q has a bad ward_range %v", fz.ID, fz.WardRange)
			}
			for n := fz.WardRange[0]; n <= fz.WardRange[1]; n++ {
				z.Wards = append(z.Wards, WardLabel(n))
			}
		}
		zs = append(zs, z)
	}
	return New(zs)
}

// LoadFile reads a YAML directory from disk.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}
	return Load(data)
}

// Default returns the built-in directory.
func Default() *Directory {
	d, err := Load(defaultYAML)
	if err != nil {
		panic(err)
	}
	return d
}

// WardLabel formats a ward number the way labels are stored.
func WardLabel(n int) string { return fmt.Sprintf("Ward %d", n) }

// Zones returns every zone in directory order. The result is a copy.
func (d *Directory) Zones() []Zone {
	out := make([]Zone, len(d.zones))
	for i, z := range d.zones {
		out[i] = Zone{ID: z.ID, Name: z.Name, Wards: append([]string(nil), z.Wards...)}
	}
	return out
}

// ZoneByID looks a zone up by id.
func (d *Directory) ZoneByID(id string) (Zone, bool) {
	i, ok := d.byID[strings.TrimSpace(id)]
	if !ok {
		return Zone{}, false
	}
	z := d.zones[i]
	z.Wards = append([]string(nil), z.Wards...)
	return z, true
}

// ZoneByWard finds the zone that owns the ward label.
func (d *Directory) ZoneByWard(ward string) (Zone, bool) {
	i, ok := d.byWard[normalize.Ward(ward)]
	if !ok {
		return Zone{}, false
	}
	z := d.zones[i]
	z.Wards = append([]string(nil), z.Wards...)
	return z, true
}

// WardsOf returns the ordered ward labels of a zone, or nil.
func (d *Directory) WardsOf(zoneID string) []string {
	i, ok := d.byID[strings.TrimSpace(zoneID)]
	if !ok {
		return nil
	}
	return append([]string(nil), d.zones[i].Wards...)
}

// Contains reports whether ward belongs to zoneID.
func (d *Directory) Contains(zoneID, ward string) bool {
	z, ok := d.ZoneByWard(ward)
	return ok && z.ID == strings.TrimSpace(zoneID)
}

// Resolve returns the zone for a ward, checking it against zoneID when one is
// given.
func (d *Directory) Resolve(zoneID, ward string) (Zone, bool) {
	z, ok := d.ZoneByWard(ward)
	if !ok {
		return Zone{}, false
	}
	if id := strings.TrimSpace(zoneID); id != "" && id != z.ID {
		return Zone{}, false
	}
	return z, true
}
