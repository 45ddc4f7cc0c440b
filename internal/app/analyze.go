package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/classify"
	"github.com/sdist-tools/backendscan/internal/scanner"
	"github.com/sdist-tools/backendscan/internal/store"
)

var (
	analyzeJobs  int
	analyzeForce bool
	analyzeOut   string
	analyzeQuiet bool

	analyzeCmd = &cobra.Command{
		Use:   "analyze <unpacked-dir>",
		Short: "Classify the build backend of every package in a corpus",
		Long: `Classify every unpacked source distribution under the given directory.

For each package directory, analyze reads the pyproject.toml build-system
declaration, resolves it to a backend family, and (for setuptools packages)
records which configuration formats the package uses. One classification
record per package is stored in the database.

Packages that already have a stored record are skipped, so an interrupted
run can simply be restarted. Use --force to reclassify everything.

A package the registry cannot account for aborts the run: an unknown public
backend or an ambiguous custom backend signals a gap that silently guessing
would hide from the survey.`,
		Example: `  # Classify a corpus
  backendscan analyze ./data/unpacked

  # Reclassify from scratch with 8 workers
  backendscan analyze --force --jobs 8 ./data/unpacked

  # Also write the records to a JSON file
  backendscan analyze --out packages.json ./data/unpacked`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeJobs, "jobs", 0, "number of classification workers (default: one per CPU)")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "reclassify packages that already have a record")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "also export the stored records to a JSON file")
	analyzeCmd.Flags().BoolVar(&analyzeQuiet, "quiet", false, "suppress progress output")

	RootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	corpusDir := args[0]

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

	s := scanner.New(classify.New(reg), db)
	s.Jobs = analyzeJobs
	s.Force = analyzeForce
	if !analyzeQuiet {
		s.Progress = analyzeProgress()
	}

	result, err := s.Run(corpusDir)
	if err != nil {
		return err
	}

	if !analyzeQuiet {
		fmt.Printf("\nAnalysis complete: %d packages classified, %d skipped (already stored)\n",
			result.Classified, result.Skipped)
	}

	if analyzeOut != "" {
		if err := exportRecords(db, analyzeOut); err != nil {
			return err
		}
		if !analyzeQuiet {
			fmt.Printf("Records written to %s\n", analyzeOut)
		}
	}

	return nil
}

// analyzeProgress returns a progress callback: a single rewritten line on a
// TTY, a line every 200 packages otherwise.
func analyzeProgress() func(done, total int) {
	isTTY := isatty.IsTerminal(os.Stdout.Fd())
	return func(done, total int) {
		if isTTY {
			fmt.Printf("\rClassified %d/%d packages", done, total)
			if done == total {
				fmt.Println()
			}
			return
		}
		if done%200 == 0 || done == total {
			fmt.Printf("Classified %d/%d packages\n", done, total)
		}
	}
}
