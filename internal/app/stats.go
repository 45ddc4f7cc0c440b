package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/aggregate"
	"github.com/sdist-tools/backendscan/internal/output"
	"github.com/sdist-tools/backendscan/internal/registry"
	"github.com/sdist-tools/backendscan/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show backend family statistics for the stored records",
	Long: `Fold the stored classification records into corpus-wide statistics:

  - per-family and per-backend usage counts
  - setuptools configuration format combinations (including packages with
    no discoverable configuration at all)
  - setuptools packages that still declare a wheel build dependency
  - non-setuptools families whose packages nevertheless pull in setuptools

Run 'backendscan analyze' first to populate the database.`,
	Example: `  # Show statistics for the analyzed corpus
  backendscan stats`,
	RunE: runStats,
}

func init() {
	RootCmd.AddCommand(statsCmd)
}

// buildReport loads every stored record and folds it into a fresh report.
func buildReport(db *store.Store, reg *registry.Registry) (*aggregate.Report, error) {
	records, err := db.ListRecords()
	if err != nil {
		return nil, err
	}

	report := aggregate.NewReport(reg.LegacyFamily())
	report.AddAll(records)
	return report, nil
}

func runStats(cmd *cobra.Command, args []string) error {
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

	fmt.Println("BUILD BACKEND STATS")
	fmt.Print(output.RenderFamilyTable(report))
	fmt.Println()

	fmt.Println("SETUPTOOLS CONFIG FORMATS")
	fmt.Print(output.RenderFormatsTable(report))
	fmt.Println()

	fmt.Printf("SETUPTOOLS WHEEL DEPENDENCIES: %d\n", report.SetuptoolsWheelDeps)
	fmt.Println()

	fmt.Println("OTHER BACKENDS USING SETUPTOOLS")
	fmt.Print(output.RenderOtherBackendsTable(report))

	return nil
}
