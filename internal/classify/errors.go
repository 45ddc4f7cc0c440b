package classify

import (
	"fmt"
	"strings"
)

// ErrorKind discriminates the failure modes of the classification chain.
// Each kind signals a different corpus-integrity violation; none of them is
// recoverable within a batch run.
type ErrorKind int

const (
	// KindMalformedDeclaration: backend-path without build-backend,
	// which the governing standard does not permit.
	KindMalformedDeclaration ErrorKind = iota

	// KindUnclassifiedBackend: an identifier unknown to the registry on
	// a declaration without backend-path. Signals a registry gap.
	KindUnclassifiedBackend

	// KindAmbiguousRequires: the requirements of a custom backend
	// mention more than one known family.
	KindAmbiguousRequires
)

// Error is a classification failure, naming the offending package and
// enough context to diagnose the registry or corpus problem.
type Error struct {
	Kind       ErrorKind
	Package    string
	Backend    string
	Candidates []string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformedDeclaration:
		return fmt.Sprintf("package %s: backend-path declared without build-backend", e.Package)
	case KindUnclassifiedBackend:
		return fmt.Sprintf("package %s: unclassified public backend %q", e.Package, e.Backend)
	case KindAmbiguousRequires:
		return fmt.Sprintf("package %s: requirements match multiple families: %s",
			e.Package, strings.Join(e.Candidates, ", "))
	default:
		return fmt.Sprintf("package %s: classification failed", e.Package)
	}
}
