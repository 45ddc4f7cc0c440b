// Package pyproject reads the build-system declaration out of a package
// directory's pyproject.toml.
package pyproject

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the unified build-configuration file defined by PEP 518.
const FileName = "pyproject.toml"

// Declaration is the build-system declaration of a single package, read once
// and never mutated afterwards.
type Declaration struct {
	// Backend is the declared build-backend entry point. nil means the
	// package declares none, which implies the setuptools legacy default.
	Backend *string

	// BackendPath is the backend-path list. Its presence signals an
	// in-tree (custom) backend.
	BackendPath []string

	// Requires is the raw requires list, unparsed specifier strings.
	// nil means the key is absent.
	Requires []string

	// HasProjectTable reports whether the file carries a PEP 621
	// [project] metadata table.
	HasProjectTable bool
}

// Read loads the build-system declaration for the package unpacked in dir.
//
// A missing pyproject.toml yields an empty Declaration: that is the normal
// shape of an old-style setuptools package. A pyproject.toml that fails to
// parse is a corpus data-quality error and is returned as-is; callers are
// expected to let it abort the run.
func Read(dir string) (*Declaration, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return &Declaration{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes pyproject.toml contents into a Declaration.
func Parse(data []byte) (*Declaration, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	decl := &Declaration{}
	_, decl.HasProjectTable = doc["project"]

	bs, ok := doc["build-system"].(map[string]interface{})
	if !ok {
		// Absent (or non-table) build-system section: empty declaration.
		return decl, nil
	}

	if raw, present := bs["build-backend"]; present {
		backend, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s: build-backend is not a string", FileName)
		}
		decl.Backend = &backend
	}

	if raw, present := bs["backend-path"]; present {
		paths, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: backend-path: %w", FileName, err)
		}
		decl.BackendPath = paths
	}

	if raw, present := bs["requires"]; present {
		requires, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: requires: %w", FileName, err)
		}
		decl.Requires = requires
	}

	return decl, nil
}

// stringList converts a decoded TOML array into []string. The result is
// never nil for a present key, so "present but empty" stays distinguishable
// from "absent".
func stringList(raw interface{}) ([]string, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string entries, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
