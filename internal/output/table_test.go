package output

import (
	"strings"
	"testing"

	"github.com/sdist-tools/backendscan/internal/aggregate"
	"github.com/sdist-tools/backendscan/internal/classify"
)

func sampleReport() *aggregate.Report {
	r := aggregate.NewReport("setuptools")
	r.AddAll([]*classify.Record{
		{Package: "a-1.0", Family: "setuptools", Backend: "setuptools.build_meta",
			Formats: []string{"pyproject.toml", "setup.py"}, Requires: []string{"setuptools", "wheel"}},
		{Package: "b-1.0", Family: "setuptools", Backend: "",
			Formats: []string{"setup.py"}},
		{Package: "c-1.0", Family: "setuptools", Backend: "",
			Formats: []string{}},
		{Package: "d-1.0", Family: "hatchling", Backend: "hatchling.build",
			Requires: []string{"hatchling"}},
		{Package: "e-1.0", Family: "maturin", Backend: "maturin",
			Requires: []string{"maturin", "setuptools-rust"}},
	})
	return r
}

func TestRenderFamilyTable(t *testing.T) {
	table := RenderFamilyTable(sampleReport())

	// setuptools has two backends in use, so it gets a (total) row.
	if !strings.Contains(table, "(total)") {
		t.Error("missing (total) row for multi-backend family")
	}
	if !strings.Contains(table, "(none)") {
		t.Error("absent backend should render as (none)")
	}

	// Largest family first.
	totalIdx := strings.Index(table, "setuptools")
	hatchIdx := strings.Index(table, "hatchling")
	if totalIdx == -1 || hatchIdx == -1 || totalIdx > hatchIdx {
		t.Errorf("families not ordered by total:\n%s", table)
	}
}

func TestRenderFamilyTable_Empty(t *testing.T) {
	r := aggregate.NewReport("setuptools")
	if got := RenderFamilyTable(r); !strings.Contains(got, "No classification records") {
		t.Errorf("empty report rendering: %q", got)
	}
}

func TestRenderFormatsTable(t *testing.T) {
	table := RenderFormatsTable(sampleReport())

	if !strings.Contains(table, "pyproject.toml + setup.py") {
		t.Errorf("missing combination row:\n%s", table)
	}
	if !strings.Contains(table, "(none -- broken)") {
		t.Errorf("missing broken-distribution row:\n%s", table)
	}
}

func TestRenderFormatTotals(t *testing.T) {
	table := RenderFormatTotals(sampleReport(), "setuptools")

	if !strings.Contains(table, "(all packages)") {
		t.Errorf("missing baseline row:\n%s", table)
	}
	// 2 of 3 setuptools packages use setup.py.
	if !strings.Contains(table, "setup.py") {
		t.Errorf("missing setup.py row:\n%s", table)
	}
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	// Header, separator, baseline, then one row per fixed format.
	if len(lines) != 6 {
		t.Errorf("got %d lines, want 6:\n%s", len(lines), table)
	}
}

func TestRenderOtherBackendsTable(t *testing.T) {
	table := RenderOtherBackendsTable(sampleReport())

	// maturin pulls in setuptools-rust, which mentions setuptools.
	if !strings.Contains(table, "maturin") {
		t.Errorf("missing maturin row:\n%s", table)
	}
	if strings.Contains(table, "hatchling") {
		t.Errorf("hatchling should not appear:\n%s", table)
	}
}

func TestRenderDependencyTable(t *testing.T) {
	r := sampleReport()
	table := RenderDependencyTable(r)

	for _, dep := range []string{"setuptools", "wheel", "hatchling", "maturin", "setuptools-rust"} {
		if !strings.Contains(table, dep) {
			t.Errorf("missing dependency %q:\n%s", dep, table)
		}
	}

	// All deps here have total 1, so rows fall back to name order.
	hatchlingIdx := strings.Index(table, "hatchling")
	wheelIdx := strings.Index(table, "wheel")
	if hatchlingIdx == -1 || wheelIdx == -1 || hatchlingIdx > wheelIdx {
		t.Errorf("dependency rows not sorted:\n%s", table)
	}
}

func TestRenderDependencyTable_Empty(t *testing.T) {
	r := aggregate.NewReport("setuptools")
	if got := RenderDependencyTable(r); !strings.Contains(got, "No build requirements") {
		t.Errorf("empty dependency rendering: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a-very-long-package-name", 10, "a-very-..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
