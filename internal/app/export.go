package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/store"
)

var (
	exportOut string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Dump the stored classification records as JSON",
		Long: `Write every stored classification record to a JSON mapping keyed by
package name. Each entry carries the family, the resolved backend (null
when the package declares none), the detected setuptools formats, the raw
build requirements (null when the requires key was absent) and the
dynamic requirements collected from the build hook (null when unknown).`,
		Example: `  # Write to a file
  backendscan export --out packages.json

  # Write to stdout
  backendscan export`,
		RunE: runExport,
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: stdout)")

	RootCmd.AddCommand(exportCmd)
}

// recordJSON is the flat serialized form of one classification record.
type recordJSON struct {
	Family   string    `json:"family"`
	Backend  *string   `json:"backend"`
	Formats  []string  `json:"formats"`
	Requires []string  `json:"requires"`
	Dynamic  *[]string `json:"requires-dynamic"`
}

func runExport(cmd *cobra.Command, args []string) error {
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

	if exportOut == "" {
		return writeRecords(db, os.Stdout)
	}
	return exportRecords(db, exportOut)
}

// exportRecords writes the stored records to a JSON file.
func exportRecords(db *store.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeRecords(db, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRecords(db *store.Store, w io.Writer) error {
	records, err := db.ListRecords()
	if err != nil {
		return err
	}

	mapping := make(map[string]recordJSON, len(records))
	for _, rec := range records {
		entry := recordJSON{
			Family:   rec.Family,
			Formats:  rec.Formats,
			Requires: rec.Requires,
		}
		if rec.Backend != "" {
			backend := rec.Backend
			entry.Backend = &backend
		}
		if rec.HasDynamic {
			dynamic := rec.DynamicRequires
			entry.Dynamic = &dynamic
		}
		mapping[rec.Package] = entry
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
