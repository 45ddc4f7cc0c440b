// Package output renders aggregate classification reports as terminal
// tables. Rendering is presentation only: all counting happens in the
// aggregate package, and the functions here just order and format it.
//
// Tables use ASCII characters and ANSI color codes; colors are emitted only
// on a TTY and respect NO_COLOR.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/sdist-tools/backendscan/internal/aggregate"
)

// ANSI color codes used for table accents.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// noneBackend is the display form of an absent build-backend declaration.
const noneBackend = "(none)"

// brokenLabel is the display form of the empty format combination.
const brokenLabel = "(none -- broken)"

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// familiesByTotal returns family names ordered by total count descending,
// name ascending on ties.
func familiesByTotal(r *aggregate.Report) []string {
	families := make([]string, 0, len(r.Families))
	for family := range r.Families {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool {
		ti, tj := r.FamilyTotal(families[i]), r.FamilyTotal(families[j])
		if ti != tj {
			return ti > tj
		}
		return families[i] < families[j]
	})
	return families
}

// countedKeys returns the keys of a counter map ordered by count
// descending, key ascending on ties.
func countedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// RenderFamilyTable renders the per-family, per-backend count table.
// Families with more than one backend in use get a bold (total) row first.
func RenderFamilyTable(r *aggregate.Report) string {
	if len(r.Families) == 0 {
		return "No classification records found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-35s %5s\n", "Family", "Backend", "Count"))
	sb.WriteString(strings.Repeat("─", 62))
	sb.WriteString("\n")

	for _, family := range familiesByTotal(r) {
		backends := r.Families[family]
		if len(backends) > 1 {
			total := fmt.Sprintf("%-20s %-35s %5d", family, "(total)", r.FamilyTotal(family))
			sb.WriteString(colorize(colorBold, total))
			sb.WriteString("\n")
		}
		for _, backend := range countedKeys(backends) {
			display := backend
			if display == "" {
				display = noneBackend
			}
			sb.WriteString(fmt.Sprintf("%-20s %-35s %5d\n", family, display, backends[backend]))
		}
	}

	return sb.String()
}

// RenderFormatsTable renders the setuptools configuration format
// combination counts. The empty combination marks broken distributions.
func RenderFormatsTable(r *aggregate.Report) string {
	if len(r.SetuptoolsFormats) == 0 {
		return "No setuptools packages found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-50s %5s\n", "Formats", "Count"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, key := range countedKeys(r.SetuptoolsFormats) {
		label := key
		if label == "" {
			label = colorize(colorRed, brokenLabel)
		}
		sb.WriteString(fmt.Sprintf("%-50s %5d\n", label, r.SetuptoolsFormats[key]))
	}

	return sb.String()
}

// RenderFormatTotals renders cumulative per-format counts across all
// setuptools packages, with an (all packages) baseline row.
func RenderFormatTotals(r *aggregate.Report, legacyFamily string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-50s %5s\n", "Format", "Total"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-50s %5d\n", "(all packages)", r.FamilyTotal(legacyFamily)))
	for _, format := range []string{"setup.py", "setup.cfg", "pyproject.toml"} {
		sb.WriteString(fmt.Sprintf("%-50s %5d\n", format, r.FormatTotal(format)))
	}

	return sb.String()
}

// RenderOtherBackendsTable renders, per non-setuptools family, how many
// packages still pull setuptools in through their build requirements.
func RenderOtherBackendsTable(r *aggregate.Report) string {
	if len(r.OtherUsingSetuptools) == 0 {
		return "No other backends pulling in setuptools.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-50s %5s\n", "Family", "Count"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, family := range countedKeys(r.OtherUsingSetuptools) {
		sb.WriteString(fmt.Sprintf("%-50s %5d\n", family, r.OtherUsingSetuptools[family]))
	}

	return sb.String()
}

// RenderDependencyTable renders the build-requirement frequency table,
// split by declaration source. Sorted by combined count descending, then
// name.
func RenderDependencyTable(r *aggregate.Report) string {
	if len(r.Dependencies) == 0 {
		return "No build requirements recorded.\n"
	}

	names := make([]string, 0, len(r.Dependencies))
	for name := range r.Dependencies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := r.Dependencies[names[i]].Total(), r.Dependencies[names[j]].Total()
		if ti != tj {
			return ti > tj
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-35s %9s %9s %9s\n", "Package", "Direct", "Hook", "Total"))
	sb.WriteString(strings.Repeat("─", 65))
	sb.WriteString("\n")

	for _, name := range names {
		count := r.Dependencies[name]
		sb.WriteString(fmt.Sprintf("%-35s %9d %9d %9d\n",
			truncate(name, 35), count.Direct, count.Dynamic, count.Total()))
	}

	return sb.String()
}

// truncate shortens a string to at most max characters, with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
