// README: Immutable village graph loaded once at startup; lookups are read-only.
package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"mashwar/internal/types"
)

var ErrEmptyGraph = errors.New("location graph has no villages")

// Graph indexes the district/village hierarchy. It is never mutated after
// construction, so lookups are safe for concurrent use without locking.
type Graph struct {
	districts []District
	byName    map[string]Village
	byID      map[types.ID]Village
}

// Load reads the hierarchy from a JSON file. Any error here is fatal at
// startup: the marketplace cannot price or validate orders without villages.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc struct {
		Districts []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Villages []struct {
				ID   string  `json:"id"`
				Name string  `json:"name"`
				Lat  float64 `json:"lat"`
				Lng  float64 `json:"lng"`
			} `json:"villages"`
		} `json:"districts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	districts := make([]District, 0, len(doc.Districts))
	for _, d := range doc.Districts {
		dist := District{ID: types.ID(d.ID), Name: d.Name}
		for _, v := range d.Villages {
			dist.Villages = append(dist.Villages, Village{
				ID:     types.ID(v.ID),
				Name:   v.Name,
				Center: types.Point{Lat: v.Lat, Lng: v.Lng},
			})
		}
		districts = append(districts, dist)
	}
	return NewGraph(districts)
}

// NewGraph validates the hierarchy and builds the lookup indexes.
func NewGraph(districts []District) (*Graph, error) {
	g := &Graph{
		districts: districts,
		byName:    make(map[string]Village),
		byID:      make(map[types.ID]Village),
	}
	for _, d := range districts {
		for _, v := range d.Villages {
			if v.ID == "" || v.Name == "" {
				return nil, fmt.Errorf("village %q/%q: id and name are required", v.ID, v.Name)
			}
			if _, dup := g.byName[v.Name]; dup {
				return nil, fmt.Errorf("duplicate village name %q", v.Name)
			}
			if _, dup := g.byID[v.ID]; dup {
				return nil, fmt.Errorf("duplicate village id %q", v.ID)
			}
			g.byName[v.Name] = v
			g.byID[v.ID] = v
		}
	}
	if len(g.byID) == 0 {
		return nil, ErrEmptyGraph
	}
	return g, nil
}

func (g *Graph) VillageByName(name string) (Village, bool) {
	v, ok := g.byName[name]
	return v, ok
}

func (g *Graph) VillageByID(id types.ID) (Village, bool) {
	v, ok := g.byID[id]
	return v, ok
}

// Districts returns the hierarchy in file order for the picker API.
func (g *Graph) Districts() []District {
	return g.districts
}

// Villages returns every village in file order.
func (g *Graph) Villages() []Village {
	out := make([]Village, 0, len(g.byID))
	for _, d := range g.districts {
		out = append(out, d.Villages...)
	}
	return out
}
