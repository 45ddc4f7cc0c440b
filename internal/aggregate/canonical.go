package aggregate

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// separatorRuns folds runs of the three name separator characters that the
// packaging standards treat as equivalent.
var separatorRuns = regexp.MustCompile(`[-_.]+`)

// canonMemo caches requirement string -> canonical name. CanonicalName is a
// pure function of its input, so direct and dynamic passes over the same
// requirement always agree; the cache only saves re-parsing across a large
// corpus. The lru.Cache is safe for concurrent use.
var canonMemo, _ = lru.New[string, string](8192)

// CanonicalName reduces a raw requirement string to the canonical name of
// the package it refers to: the leading name token with extras, version
// specifiers, environment markers and URL references stripped, lowercased,
// with runs of "-", "_" and "." folded to a single "-".
//
// Canonicalization is idempotent: an already-canonical name comes back
// unchanged.
func CanonicalName(requirement string) string {
	if name, ok := canonMemo.Get(requirement); ok {
		return name
	}

	name := strings.TrimSpace(requirement)
	for i := 0; i < len(name); i++ {
		c := name[i]
		isNameChar := c == '-' || c == '_' || c == '.' ||
			('0' <= c && c <= '9') ||
			('A' <= c && c <= 'Z') ||
			('a' <= c && c <= 'z')
		if !isNameChar {
			name = name[:i]
			break
		}
	}
	name = separatorRuns.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")

	canonMemo.Add(requirement, name)
	return name
}

// canonicalSet deduplicates a requirement list by canonical name. Multiple
// specifiers for the same package (markers for different platforms, say)
// count once.
func canonicalSet(requirements []string) map[string]struct{} {
	set := make(map[string]struct{}, len(requirements))
	for _, req := range requirements {
		if name := CanonicalName(req); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}
