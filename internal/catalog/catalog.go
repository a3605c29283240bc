package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region is one supported city and the complaint types handled there.
type Region struct {
	Name  string   `yaml:"name" json:"name"`
	Types []string `yaml:"types" json:"types"`
}

// Catalog is read-only reference data mapping regions to complaint types.
// Keys and types are case-sensitive.
type Catalog struct {
	regions []Region
	index   map[string]int
}

type document struct {
	Regions []Region `yaml:"regions"`
}

var (
	ErrEmptyCatalog  = errors.New("catalog has no regions")
	ErrDuplicateKey  = errors.New("duplicate region")
	ErrInvalidRegion = errors.New("invalid region")
)

// New builds a catalog from regions, keeping their order.
func New(regions ...Region) (*Catalog, error) {
	if len(regions) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{index: make(map[string]int, len(regions))}
	for _, r := range regions {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRegion)
		}
		if len(r.Types) == 0 {
			return nil, fmt.Errorf("%w: %s has no complaint types", ErrInvalidRegion, r.Name)
		}
		if _, ok := c.index[r.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, r.Name)
		}

		c.index[r.Name] = len(c.regions)
		c.regions = append(c.regions, Region{Name: r.Name, Types: append([]string(nil), r.Types...)})
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, _ := New(
		Region{Name: "Noida", Types: []string{"civil", "Horticulture", "Health", "Electrical"}},
		Region{Name: "Mumbai", Types: []string{"Civil", "Electrical"}},
	)
	return c
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return New(doc.Regions...)
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return Parse(data)
}

func (c *Catalog) Lookup(key string) (Region, bool) {
	i, ok := c.index[key]
	if !ok {
		return Region{}, false
	}

	r := c.regions[i]
	return Region{Name: r.Name, Types: append([]string(nil), r.Types...)}, true
}

func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Keys returns region names in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.regions))
	for _, r := range c.regions {
		keys = append(keys, r.Name)
	}
	return keys
}

// ValidTypesFor returns the complaint types for key, or nothing if key is unknown.
func (c *Catalog) ValidTypesFor(key string) []string {
	r, ok := c.Lookup(key)
	if !ok {
		return []string{}
	}
	return r.Types
}

// Categories is the union of all complaint types, first occurrence first.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range c.regions {
		for _, t := range r.Types {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Regions returns a copy of every region, used for listing.
func (c *Catalog) Regions() []Region {
	out := make([]Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, Region{Name: r.Name, Types: append([]string(nil), r.Types...)})
	}
	return out
}
