package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/registry"
)

var (
	dbPath       string
	registryPath string

	// RootCmd is the root command for backendscan
	RootCmd = &cobra.Command{
		Use:   "backendscan",
		Short: "Survey build backend usage across a corpus of Python sdists",
		Long: `backendscan classifies the build backend of every source distribution in
a corpus of unpacked sdists and aggregates the results: which backend
families are in use, which setuptools configuration formats survive, and
which build requirements the ecosystem actually pulls in.

Classification records are stored in a local SQLite database, so an
interrupted run resumes where it stopped and later stages (merging
build-hook output, statistics) work from the stored batch.

Typical workflow:
  1. backendscan analyze ./unpacked      # classify every package
  2. backendscan merge ./hook-output     # attach dynamic requirements (optional)
  3. backendscan stats                   # backend family statistics
  4. backendscan deps                    # build requirement frequencies

Examples:
  # Classify a corpus of unpacked sdists
  backendscan analyze ./data/unpacked

  # Classify while the corpus is still being unpacked
  backendscan watch ./data/unpacked

  # Dump the stored records as JSON
  backendscan export --out packages.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("backendscan: build backend survey for Python source distributions")
			fmt.Println()
			fmt.Println("Run 'backendscan analyze <dir>' to classify a corpus.")
			fmt.Println("Run 'backendscan --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.backendscan/backendscan.db)")
	RootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "YAML file overriding the built-in backend registry")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	stateDir := filepath.Join(home, ".backendscan")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	return filepath.Join(stateDir, "backendscan.db"), nil
}

// loadRegistry returns the backend registry: the built-in one, or the
// contents of --registry when given.
func loadRegistry() (*registry.Registry, error) {
	if registryPath == "" {
		return registry.Default()
	}

	data, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	reg, err := registry.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", registryPath, err)
	}
	return reg, nil
}
