// Package registry holds the static mapping between build backend entry
// points and the backend families they belong to. The mapping is loaded once
// from an embedded YAML data file and inverted for O(1) identifier lookup;
// it carries no per-package state.
package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed families.yaml
var defaultFamiliesYAML []byte

// NoBackend is the identifier used for packages that declare no
// build-backend at all. The family that claims it (setuptools) is the
// legacy default mandated by the packaging standards.
const NoBackend = ""

// Registry maps backend identifiers to family names.
type Registry struct {
	families  map[string][]string // family -> member identifiers
	byBackend map[string]string   // identifier -> family
	legacy    string              // family claiming NoBackend
}

// registryFile is the on-disk YAML shape.
type registryFile struct {
	Families map[string][]*string `yaml:"families"`
}

// New builds a Registry from a family -> identifiers mapping. An empty
// identifier stands for "no build-backend declared". It fails if two
// families claim the same identifier, or if no family (or more than one)
// claims the empty identifier.
func New(families map[string][]string) (*Registry, error) {
	r := &Registry{
		families:  make(map[string][]string, len(families)),
		byBackend: make(map[string]string),
	}

	// Deterministic iteration so duplicate errors are stable.
	names := make([]string, 0, len(families))
	for family := range families {
		names = append(names, family)
	}
	sort.Strings(names)

	for _, family := range names {
		members := families[family]
		r.families[family] = append([]string(nil), members...)
		for _, backend := range members {
			if prev, ok := r.byBackend[backend]; ok {
				return nil, fmt.Errorf("backend %q claimed by both %s and %s", backend, prev, family)
			}
			r.byBackend[backend] = family
			if backend == NoBackend {
				r.legacy = family
			}
		}
	}

	if r.legacy == "" {
		return nil, fmt.Errorf("no family claims the absent build-backend")
	}

	return r, nil
}

// Parse builds a Registry from YAML data in the families.yaml format.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry data: %w", err)
	}
	if len(file.Families) == 0 {
		return nil, fmt.Errorf("registry data defines no families")
	}

	families := make(map[string][]string, len(file.Families))
	for family, members := range file.Families {
		for _, member := range members {
			if member == nil {
				families[family] = append(families[family], NoBackend)
			} else {
				families[family] = append(families[family], *member)
			}
		}
	}

	return New(families)
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the Registry built from the embedded families.yaml.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(defaultFamiliesYAML)
	})
	return defaultReg, defaultErr
}

// FamilyFor returns the family owning the given backend identifier. Pass
// NoBackend for packages without a build-backend declaration.
func (r *Registry) FamilyFor(backend string) (string, bool) {
	family, ok := r.byBackend[backend]
	return family, ok
}

// LegacyFamily returns the family that claims the absent identifier.
func (r *Registry) LegacyFamily() string {
	return r.legacy
}

// Families returns all known family names in sorted order.
func (r *Registry) Families() []string {
	names := make([]string, 0, len(r.families))
	for family := range r.families {
		names = append(names, family)
	}
	sort.Strings(names)
	return names
}

// Members returns the backend identifiers registered for a family.
func (r *Registry) Members(family string) []string {
	return append([]string(nil), r.families[family]...)
}
