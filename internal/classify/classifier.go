package classify

import (
	"strings"

	"github.com/sdist-tools/backendscan/internal/pyproject"
	"github.com/sdist-tools/backendscan/internal/registry"
)

// Classifier resolves build-system declarations to backend families using a
// shared read-only registry. It keeps no per-package state, so a single
// Classifier may serve any number of concurrent workers.
type Classifier struct {
	reg *registry.Registry
}

// New creates a Classifier over the given registry.
func New(reg *registry.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify resolves the declaration of the named package to a
// (family, backend) pair. The chain is ordered and the first match wins:
//
//  1. Registry lookup on the declared entry point. The absent identifier is
//     a registry member too (it belongs to setuptools), so packages without
//     any declaration resolve here. A registry hit wins even when the
//     declaration also carries backend-path.
//  2. An unrecognized identifier must carry backend-path; otherwise the
//     registry has a gap and the run must not guess.
//  3. For in-tree backends, the requires list is scanned for known family
//     names. Exactly one match assigns that family; more than one is a
//     corpus assumption violation; none means a genuinely custom backend.
//     Either way the identifier itself is not a public name, so the
//     resolved backend becomes the "(custom)" sentinel.
func (c *Classifier) Classify(pkg string, decl *pyproject.Declaration) (family, backend string, err error) {
	if decl.Backend == nil && decl.BackendPath != nil {
		return "", "", &Error{Kind: KindMalformedDeclaration, Package: pkg}
	}

	declared := registry.NoBackend
	if decl.Backend != nil {
		declared = *decl.Backend
	}

	if family, ok := c.reg.FamilyFor(declared); ok {
		return family, declared, nil
	}

	if len(decl.BackendPath) == 0 {
		return "", "", &Error{Kind: KindUnclassifiedBackend, Package: pkg, Backend: declared}
	}

	joined := strings.Join(decl.Requires, " ")
	var matches []string
	for _, name := range c.reg.Families() {
		if strings.Contains(joined, name) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return Custom, Custom, nil
	case 1:
		return matches[0], Custom, nil
	default:
		return "", "", &Error{
			Kind:       KindAmbiguousRequires,
			Package:    pkg,
			Backend:    declared,
			Candidates: matches,
		}
	}
}

// Package produces the full classification record for the package unpacked
// in dir: declaration read, family resolution, and (for setuptools) format
// detection.
func (c *Classifier) Package(pkg, dir string) (*Record, error) {
	decl, err := pyproject.Read(dir)
	if err != nil {
		return nil, err
	}

	family, backend, err := c.Classify(pkg, decl)
	if err != nil {
		return nil, err
	}

	var formats []string
	if family == c.reg.LegacyFamily() {
		formats, err = DetectFormats(dir, decl.HasProjectTable)
		if err != nil {
			return nil, err
		}
	}

	return &Record{
		Package:  pkg,
		Family:   family,
		Backend:  backend,
		Formats:  formats,
		Requires: decl.Requires,
	}, nil
}
