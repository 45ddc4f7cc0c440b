package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/output"
	"github.com/sdist-tools/backendscan/internal/store"
)

var (
	depsLimit int

	depsCmd = &cobra.Command{
		Use:   "deps",
		Short: "Show build requirement frequencies across the corpus",
		Long: `Show how often each build requirement appears across the stored records,
with requirement strings reduced to canonical package names.

Counts are split by source: declared directly in pyproject.toml versus
reported dynamically by the build hook (attached with 'backendscan merge').
Packages whose hook output was never collected contribute nothing to the
dynamic column rather than counting as zero.

Also prints cumulative per-format totals for the setuptools family.`,
		Example: `  # Full dependency frequency table
  backendscan deps

  # Only the 20 most common requirements
  backendscan deps --limit 20`,
		RunE: runDeps,
	}
)

func init() {
	depsCmd.Flags().IntVar(&depsLimit, "limit", 0, "show only the N most common requirements")

	RootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	if depsLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must not be negative)", depsLimit)
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	dbPath, err := getDBPath()
	if err != nil {
		return err
	}
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		return err
	}

	report, err := buildReport(db, reg)
	if err != nil {
		return err
	}

	if report.TotalRecords() == 0 {
		fmt.Println("No classification records found. Run 'backendscan analyze' first.")
		return nil
	}

	fmt.Println("CONFIG FORMAT TOTALS")
	fmt.Print(output.RenderFormatTotals(report, reg.LegacyFamily()))
	fmt.Println()

	fmt.Println("BUILD REQUIREMENTS")
	table := output.RenderDependencyTable(report)
	fmt.Print(limitLines(table, depsLimit))

	return nil
}

// limitLines keeps the table header (two lines) plus the first n rows.
// n == 0 means no limit.
func limitLines(table string, n int) string {
	if n == 0 {
		return table
	}

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	keep := 2 + n
	if keep >= len(lines) {
		return table
	}
	return strings.Join(lines[:keep], "\n") + "\n"
}
