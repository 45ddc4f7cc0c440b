package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sdist-tools/backendscan/internal/classify"
	"github.com/sdist-tools/backendscan/internal/scanner"
	"github.com/sdist-tools/backendscan/internal/store"
	"github.com/sdist-tools/backendscan/internal/watcher"
)

var (
	watchJobs int

	watchCmd = &cobra.Command{
		Use:   "watch <unpacked-dir>",
		Short: "Classify packages as they appear in a corpus directory",
		Long: `Watch a corpus directory and classify each package directory as it
appears, so classification can run alongside a batch unpack instead of
waiting for it to finish.

Packages already present when the watch starts are classified in an
initial catch-up pass. A new directory is classified once its contents
have been quiet for a couple of seconds, which keeps a half-unpacked
tree from being read early.

The watch runs until interrupted (Ctrl-C). Classification failures stop
the watch, exactly as they abort a batch 'analyze' run.`,
		Example: `  # Classify while the corpus is still being unpacked
  backendscan watch ./data/unpacked`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().IntVar(&watchJobs, "jobs", 0, "workers for the initial catch-up pass (default: one per CPU)")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	corpusDir := args[0]

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	classifier := classify.New(reg)

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

	// Catch-up pass over whatever is already unpacked.
	s := scanner.New(classifier, db)
	s.Jobs = watchJobs
	result, err := s.Run(corpusDir)
	if err != nil {
		return err
	}
	fmt.Printf("Catch-up complete: %d packages classified, %d already stored\n",
		result.Classified, result.Skipped)

	w, err := watcher.New(classifier, db, corpusDir)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", corpusDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case rec := <-w.Records():
			fmt.Printf("Classified %s (%s)\n", rec.Package, rec.Family)
		case err := <-w.Errors():
			w.Stop()
			return err
		case sig := <-sigCh:
			fmt.Printf("\nReceived %v, stopping\n", sig)
			return w.Stop()
		}
	}
}
