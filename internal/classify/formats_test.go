package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestDetectFormats_AllThreeInPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "setup.cfg", "[options]\nzip_safe = false\n\n[metadata]\nname = x\n")
	writeFile(t, dir, "setup.py", "from setuptools import setup\nsetup()\n")

	formats, err := DetectFormats(dir, true)
	if err != nil {
		t.Fatalf("DetectFormats failed: %v", err)
	}

	want := []string{FormatPyprojectToml, FormatSetupCfg, FormatSetupPy}
	if len(formats) != len(want) {
		t.Fatalf("got %v, want %v", formats, want)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Errorf("formats[%d]: got %q, want %q", i, formats[i], want[i])
		}
	}
}

func TestDetectFormats_NoSurfaces(t *testing.T) {
	formats, err := DetectFormats(t.TempDir(), false)
	if err != nil {
		t.Fatalf("DetectFormats failed: %v", err)
	}
	if len(formats) != 0 {
		t.Errorf("got %v, want empty list for a broken distribution", formats)
	}
	if formats == nil {
		t.Error("empty format list should be non-nil so it serializes as []")
	}
}

func TestDetectFormats_SetupCfgWithoutMetadataSection(t *testing.T) {
	dir := t.TempDir()
	// setup.cfg exists but only carries tool configuration; it does not
	// count as a declarative metadata surface.
	writeFile(t, dir, "setup.cfg", "[flake8]\nmax-line-length = 100\n")
	writeFile(t, dir, "setup.py", "setup()\n")

	formats, err := DetectFormats(dir, false)
	if err != nil {
		t.Fatalf("DetectFormats failed: %v", err)
	}

	if len(formats) != 1 || formats[0] != FormatSetupPy {
		t.Errorf("got %v, want [setup.py]", formats)
	}
}

func TestDetectFormats_MetadataHeaderVariants(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     bool
	}{
		{"plain header", "[metadata]\n", true},
		{"crlf endings", "[metadata]\r\nname = x\r\n", true},
		{"indented header", "  [metadata]\n", true},
		{"header later in file", "[options]\na = b\n[metadata]\n", true},
		{"commented out", "# [metadata]\n", false},
		{"substring of longer section", "[metadata.extra]\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "setup.cfg", tt.contents)

			formats, err := DetectFormats(dir, false)
			if err != nil {
				t.Fatalf("DetectFormats failed: %v", err)
			}

			got := len(formats) == 1 && formats[0] == FormatSetupCfg
			if got != tt.want {
				t.Errorf("setup.cfg detected = %v, want %v (formats: %v)", got, tt.want, formats)
			}
		})
	}
}

func TestDetectFormats_IndependentChecks(t *testing.T) {
	// setup.py alone, no pyproject metadata, no setup.cfg: the later check
	// still runs even though the earlier ones found nothing.
	dir := t.TempDir()
	writeFile(t, dir, "setup.py", "setup()\n")

	formats, err := DetectFormats(dir, false)
	if err != nil {
		t.Fatalf("DetectFormats failed: %v", err)
	}
	if len(formats) != 1 || formats[0] != FormatSetupPy {
		t.Errorf("got %v, want [setup.py]", formats)
	}
}
