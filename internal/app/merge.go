package app

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/store"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <build-requires-dir>",
	Short: "Attach dynamic build requirements to the stored records",
	Long: `Attach per-package dynamic build requirements to the stored
classification records.

The directory is expected to contain one <package>.out file per package,
one requirement per line, as produced by running the build hook
(get_requires_for_build_wheel) against each package. A package without an
artifact is marked as unknown rather than as having no dynamic
requirements, so 'backendscan deps' never mistakes a missing hook run for
an empty result.`,
	Example: `  # Attach hook output collected under ./hook-output
  backendscan merge ./hook-output`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	RootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	artifactDir := args[0]

	info, err := os.Stat(artifactDir)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", artifactDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", artifactDir)
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

	records, err := db.ListRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No classification records found. Run 'backendscan analyze' first.")
		return nil
	}

	attached := 0
	missing := 0
	for _, rec := range records {
		requires, found, err := readArtifact(filepath.Join(artifactDir, rec.Package+".out"))
		if err != nil {
			return err
		}
		if err := db.SetDynamicRequires(rec.Package, requires, found); err != nil {
			return err
		}
		if found {
			attached++
		} else {
			missing++
		}
	}

	fmt.Printf("Merge complete: %d packages updated, %d without hook output\n", attached, missing)
	return nil
}

// readArtifact reads one requirement per line from a hook output file.
// A missing file is a normal outcome and reported via found=false.
func readArtifact(path string) (requires []string, found bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	requires = []string{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line != "" {
			requires = append(requires, line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return requires, true, nil
}
