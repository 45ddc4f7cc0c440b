// Package classify assigns each package in the corpus to a build backend
// family: a registry lookup on the declared entry point, falling back to
// inference from the declared build requirements for in-tree backends.
package classify

// Custom is the sentinel used both as the family and as the resolved
// backend of packages whose backend is not a recognized public entry point.
const Custom = "(custom)"

// Record is the classification result for a single package. Records are
// immutable once produced and serialize as a flat mapping for the batch
// store and the JSON export.
type Record struct {
	// Package is the package directory name (sdist name-version).
	Package string

	// Family is a known family name, or Custom.
	Family string

	// Backend is the identifier used for display: the declared one,
	// Custom for unrecognized in-tree backends, or empty when no
	// build-backend was declared.
	Backend string

	// Formats lists the setuptools configuration surfaces detected, in
	// priority order. Empty for every other family; empty for a
	// setuptools package means a broken distribution.
	Formats []string

	// Requires is the raw build-system requires list. nil when the key
	// was absent.
	Requires []string

	// DynamicRequires holds requirements reported by the backend's
	// build hook, attached later by the merge step. Only meaningful
	// when HasDynamic is true.
	DynamicRequires []string

	// HasDynamic distinguishes a confirmed (possibly empty) dynamic
	// requirements list from "hook output not collected".
	HasDynamic bool
}
