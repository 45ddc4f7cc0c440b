// Package scanner walks a directory of unpacked source distributions and
// classifies each package, fanning the per-package work out across workers.
// Classification of distinct packages shares no mutable state, so workers
// need no locking; all records funnel back to a single goroutine that owns
// the store.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/sdist-tools/backendscan/internal/classify"
	"github.com/sdist-tools/backendscan/internal/store"
)

// Scanner classifies every package directory under a corpus root.
type Scanner struct {
	classifier *classify.Classifier
	store      *store.Store

	// Jobs is the number of classification workers. Zero means one
	// worker per CPU.
	Jobs int

	// Force reclassifies packages that already have a stored record.
	Force bool

	// Progress, when set, is called from the collector goroutine after
	// every classified package.
	Progress func(done, total int)
}

// New creates a Scanner over the given classifier and store.
func New(c *classify.Classifier, st *store.Store) *Scanner {
	return &Scanner{classifier: c, store: st}
}

// Result summarizes one corpus pass.
type Result struct {
	// Classified is the number of packages classified in this pass.
	Classified int
	// Skipped is the number of packages skipped because a record
	// already existed (resume).
	Skipped int
}

// outcome carries one worker result back to the collector.
type outcome struct {
	rec *classify.Record
	err error
}

// Run classifies every package directory under corpusDir and stores one
// record per package. Packages with an existing record are skipped unless
// Force is set, so an interrupted batch resumes where it stopped. The first
// classification failure aborts the pass; records stored before the failure
// remain.
func (s *Scanner) Run(corpusDir string) (*Result, error) {
	dirs, err := listPackageDirs(corpusDir)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	var pending []string
	for _, name := range dirs {
		if !s.Force {
			exists, err := s.store.HasRecord(name)
			if err != nil {
				return nil, err
			}
			if exists {
				result.Skipped++
				continue
			}
		}
		pending = append(pending, name)
	}

	if len(pending) == 0 {
		return result, nil
	}

	jobs := s.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(pending) {
		jobs = len(pending)
	}

	names := make(chan string)
	results := make(chan outcome)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		go func() {
			defer wg.Done()
			for name := range names {
				rec, err := s.classifier.Package(name, filepath.Join(corpusDir, name))
				select {
				case results <- outcome{rec: rec, err: err}:
				case <-stop:
					return
				}
			}
		}()
	}

	go func() {
		defer close(names)
		for _, name := range pending {
			select {
			case names <- name:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for out := range results {
		if firstErr != nil {
			continue
		}
		if out.err != nil {
			firstErr = out.err
			close(stop)
			continue
		}
		if err := s.store.InsertRecord(out.rec); err != nil {
			firstErr = err
			close(stop)
			continue
		}
		result.Classified++
		if s.Progress != nil {
			s.Progress(result.Classified, len(pending))
		}
	}

	if firstErr != nil {
		return result, firstErr
	}

	return result, nil
}

// listPackageDirs returns the package directory names under corpusDir in
// sorted order. Stray files (leftover tarballs, say) are ignored; only
// directories are package candidates.
func listPackageDirs(corpusDir string) ([]string, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", corpusDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)

	return dirs, nil
}
