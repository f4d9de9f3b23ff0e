// Package manifest describes the delivered views of the product (the build
// manifest) and which catalog modules each view covers.
//
// A genuine entry is a real, working view; a non-genuine entry is a
// navigation hub or placeholder and never counts toward completion. Only
// genuine entries appear in the coverage index.
package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_manifest.yaml
var sampleManifest []byte

// Entry is one delivered view.
type Entry struct {
	Section    string   `yaml:"section" json:"section"`
	View       string   `yaml:"view" json:"view"`
	Covers     []string `yaml:"covers,omitempty" json:"covers,omitempty"`
	Genuine    bool     `yaml:"genuine" json:"genuine"`
	Persistent bool     `yaml:"persistent" json:"persistent"`
}

// Ref renders the entry as section/view.
func (e Entry) Ref() string {
	return e.Section + "/" + e.View
}

// Manifest is the ordered list of delivered views.
type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	man, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	return man, nil
}

// Parse decodes manifest YAML and trims covered ids.
func Parse(data []byte) (*Manifest, error) {
	var man Manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, err
	}
	for i := range man.Entries {
		covers := man.Entries[i].Covers[:0]
		for _, id := range man.Entries[i].Covers {
			if id = strings.TrimSpace(id); id != "" {
				covers = append(covers, id)
			}
		}
		man.Entries[i].Covers = covers
	}
	return &man, nil
}

// Sample returns the embedded sample manifest.
func Sample() *Manifest {
	man, err := Parse(sampleManifest)
	if err != nil {
		panic(fmt.Sprintf("embedded sample manifest is invalid: %v", err))
	}
	return man
}

// SampleBytes returns the raw embedded sample manifest.
func SampleBytes() []byte {
	out := make([]byte, len(sampleManifest))
	copy(out, sampleManifest)
	return out
}

// Index maps a covered module id to the genuine entries that cover it, in
// manifest order.
type Index map[string][]Entry

// Index builds the coverage index from genuine entries. A nil manifest yields
// an empty index.
func (m *Manifest) Index() Index {
	idx := make(Index)
	if m == nil {
		return idx
	}
	for _, entry := range m.Entries {
		if !entry.Genuine {
			continue
		}
		for _, id := range entry.Covers {
			idx[id] = append(idx[id], entry)
		}
	}
	return idx
}

// Placeholders returns every non-genuine entry in manifest order.
func (m *Manifest) Placeholders() []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, entry := range m.Entries {
		if !entry.Genuine {
			out = append(out, entry)
		}
	}
	return out
}
