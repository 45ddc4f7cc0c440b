// Package aggregate folds per-package classification records into
// corpus-wide statistics. A Report is a set of plain commutative counters:
// records may be added in any order, and reports built from disjoint slices
// of the corpus merge by pairwise addition.
package aggregate

import (
	"strings"

	"github.com/sdist-tools/backendscan/internal/classify"
)

// FormatSeparator joins a format combination into the map key used for
// counting. The format names are fixed file names, so the separator cannot
// collide.
const FormatSeparator = " + "

// FormatKey collapses an ordered format list into a counting key. The empty
// key stands for a broken distribution with no configuration surface.
func FormatKey(formats []string) string {
	return strings.Join(formats, FormatSeparator)
}

// DepCount tracks how often a dependency was requested directly in
// pyproject.toml versus reported dynamically by the build hook.
type DepCount struct {
	Direct  int
	Dynamic int
}

// Total is the combined count across both sources.
func (d DepCount) Total() int {
	return d.Direct + d.Dynamic
}

// Report accumulates classification statistics for one corpus pass. It is
// not safe for concurrent mutation; parallel pipelines build one Report per
// worker and Merge them.
type Report struct {
	// Families counts records per (family, resolved backend).
	Families map[string]map[string]int

	// SetuptoolsFormats counts setuptools records per format
	// combination, keyed by FormatKey.
	SetuptoolsFormats map[string]int

	// SetuptoolsWheelDeps counts setuptools records whose requires
	// mention wheel, the legacy artifact-builder tool.
	SetuptoolsWheelDeps int

	// OtherUsingSetuptools counts, per non-setuptools family, records
	// that still pull setuptools in through requires.
	OtherUsingSetuptools map[string]int

	// Dependencies is the canonical-name frequency table, split by
	// declaration source.
	Dependencies map[string]DepCount

	legacyFamily string
}

// NewReport creates an empty report. legacyFamily is the family whose
// records get format-combination accounting (registry.LegacyFamily()).
func NewReport(legacyFamily string) *Report {
	return &Report{
		Families:             make(map[string]map[string]int),
		SetuptoolsFormats:    make(map[string]int),
		OtherUsingSetuptools: make(map[string]int),
		Dependencies:         make(map[string]DepCount),
		legacyFamily:         legacyFamily,
	}
}

// Add folds one classification record into the report.
func (r *Report) Add(rec *classify.Record) {
	backends := r.Families[rec.Family]
	if backends == nil {
		backends = make(map[string]int)
		r.Families[rec.Family] = backends
	}
	backends[rec.Backend]++

	joined := strings.Join(rec.Requires, " ")
	if rec.Family == r.legacyFamily {
		r.SetuptoolsFormats[FormatKey(rec.Formats)]++
		if strings.Contains(joined, "wheel") {
			r.SetuptoolsWheelDeps++
		}
	} else if strings.Contains(joined, "setuptools") {
		r.OtherUsingSetuptools[rec.Family]++
	}

	for name := range canonicalSet(rec.Requires) {
		count := r.Dependencies[name]
		count.Direct++
		r.Dependencies[name] = count
	}

	// Records without hook output are unknown, not empty: they must not
	// contribute zeroes to the dynamic counts.
	if rec.HasDynamic {
		for name := range canonicalSet(rec.DynamicRequires) {
			count := r.Dependencies[name]
			count.Dynamic++
			r.Dependencies[name] = count
		}
	}
}

// AddAll folds a batch of records.
func (r *Report) AddAll(records []*classify.Record) {
	for _, rec := range records {
		r.Add(rec)
	}
}

// Merge adds every counter of other into r. Both reports must have been
// created for the same legacy family.
func (r *Report) Merge(other *Report) {
	for family, backends := range other.Families {
		dst := r.Families[family]
		if dst == nil {
			dst = make(map[string]int, len(backends))
			r.Families[family] = dst
		}
		for backend, count := range backends {
			dst[backend] += count
		}
	}

	for key, count := range other.SetuptoolsFormats {
		r.SetuptoolsFormats[key] += count
	}
	r.SetuptoolsWheelDeps += other.SetuptoolsWheelDeps

	for family, count := range other.OtherUsingSetuptools {
		r.OtherUsingSetuptools[family] += count
	}

	for name, count := range other.Dependencies {
		dst := r.Dependencies[name]
		dst.Direct += count.Direct
		dst.Dynamic += count.Dynamic
		r.Dependencies[name] = dst
	}
}

// FamilyTotal returns the total record count for a family across all of its
// backends.
func (r *Report) FamilyTotal(family string) int {
	total := 0
	for _, count := range r.Families[family] {
		total += count
	}
	return total
}

// TotalRecords returns the number of records folded into the report.
func (r *Report) TotalRecords() int {
	total := 0
	for family := range r.Families {
		total += r.FamilyTotal(family)
	}
	return total
}

// FormatTotal returns how many legacy-family records use the given format,
// counting every combination it appears in.
func (r *Report) FormatTotal(format string) int {
	total := 0
	for key, count := range r.SetuptoolsFormats {
		if key == "" {
			continue
		}
		for _, f := range strings.Split(key, FormatSeparator) {
			if f == format {
				total += count
				break
			}
		}
	}
	return total
}
