package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sample_catalog.yaml
var sampleCatalog []byte

// Catalog is the ordered list of authored module definitions.
type Catalog struct {
	Modules []Module `yaml:"modules"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	return cat, nil
}

// Parse decodes catalog YAML. Unknown statuses fail the parse; every other
// authored defect is left for Check.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	for i := range cat.Modules {
		if cat.Modules[i].Status == "" {
			cat.Modules[i].Status = StatusNotStarted
		}
		for j := range cat.Modules[i].SubItems {
			if cat.Modules[i].SubItems[j].Status == "" {
				cat.Modules[i].SubItems[j].Status = StatusNotStarted
			}
		}
	}
	return &cat, nil
}

// Sample returns the embedded sample catalog.
func Sample() *Catalog {
	cat, err := Parse(sampleCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded sample catalog is invalid: %v", err))
	}
	return cat
}

// SampleBytes returns the raw embedded sample catalog.
func SampleBytes() []byte {
	out := make([]byte, len(sampleCatalog))
	copy(out, sampleCatalog)
	return out
}

// Definitions returns a deep copy of the authored modules.
func (c *Catalog) Definitions() []Module {
	if c == nil {
		return nil
	}
	return CloneModules(c.Modules)
}

// IDs returns module ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Modules))
	for _, m := range c.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

// Lookup returns a copy of the definition for id.
func (c *Catalog) Lookup(id string) (Module, bool) {
	if c == nil {
		return Module{}, false
	}
	if idx := IndexOf(c.Modules, id); idx >= 0 {
		return c.Modules[idx].Clone(), true
	}
	return Module{}, false
}
