package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeCommand_Registration(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "merge" {
			found = true
			break
		}
	}

	if !found {
		t.Error("merge command not registered with root command")
	}
}

func TestReadArtifact(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "alpha.out")
	content := "setuptools>=61\n\n  wheel  \ncython\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	requires, found, err := readArtifact(path)
	if err != nil {
		t.Fatalf("readArtifact() error: %v", err)
	}
	if !found {
		t.Fatal("expected artifact to be found")
	}

	want := []string{"setuptools>=61", "wheel", "cython"}
	if !reflect.DeepEqual(requires, want) {
		t.Errorf("requires: got %v, want %v", requires, want)
	}
}

func TestReadArtifact_Empty(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "beta.out")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	requires, found, err := readArtifact(path)
	if err != nil {
		t.Fatalf("readArtifact() error: %v", err)
	}
	if !found {
		t.Fatal("expected artifact to be found")
	}

	// Confirmed empty, not unknown: the hook ran and reported nothing
	if requires == nil || len(requires) != 0 {
		t.Errorf("requires: got %v, want empty non-nil slice", requires)
	}
}

func TestReadArtifact_Missing(t *testing.T) {
	requires, found, err := readArtifact(filepath.Join(t.TempDir(), "nope.out"))
	if err != nil {
		t.Fatalf("readArtifact() error: %v", err)
	}
	if found {
		t.Error("expected missing artifact to report found=false")
	}
	if requires != nil {
		t.Errorf("requires: got %v, want nil for missing artifact", requires)
	}
}
