package classify

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdist-tools/backendscan/internal/pyproject"
)

// Setuptools configuration surfaces, in detection priority order.
const (
	FormatPyprojectToml = pyproject.FileName
	FormatSetupCfg      = "setup.cfg"
	FormatSetupPy       = "setup.py"
)

// metadataSection is the setup.cfg section header that marks declarative
// setuptools metadata.
const metadataSection = "[metadata]"

// DetectFormats reports which setuptools configuration surfaces the package
// in dir uses. The three checks are independent; every surface found is
// recorded, in the fixed pyproject.toml, setup.cfg, setup.py order. An
// empty result is a valid data point (a broken distribution), not an error.
func DetectFormats(dir string, hasProjectTable bool) ([]string, error) {
	formats := []string{}

	if hasProjectTable {
		formats = append(formats, FormatPyprojectToml)
	}

	hasCfg, err := setupCfgHasMetadata(filepath.Join(dir, FormatSetupCfg))
	if err != nil {
		return nil, err
	}
	if hasCfg {
		formats = append(formats, FormatSetupCfg)
	}

	if _, err := os.Stat(filepath.Join(dir, FormatSetupPy)); err == nil {
		formats = append(formats, FormatSetupPy)
	}

	return formats, nil
}

// setupCfgHasMetadata scans setup.cfg line by line for a [metadata] section
// header. A missing file is a normal negative result.
func setupCfgHasMetadata(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", FormatSetupCfg, err)
	}
	defer f.Close()

	header := []byte(metadataSection)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		// setup.cfg files in the wild carry CRLF endings and stray
		// indentation, so compare the stripped line.
		if bytes.Equal(bytes.TrimSpace(scanner.Bytes()), header) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to scan %s: %w", FormatSetupCfg, err)
	}

	return false, nil
}
