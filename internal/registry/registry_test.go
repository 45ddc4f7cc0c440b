package registry

import (
	"strings"
	"testing"
)

func TestDefault_LoadsEmbeddedData(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("failed to load default registry: %v", err)
	}

	if got := reg.LegacyFamily(); got != "setuptools" {
		t.Errorf("legacy family: got %q, want setuptools", got)
	}

	// Spot-check a few well-known identifiers.
	tests := []struct {
		backend string
		family  string
	}{
		{NoBackend, "setuptools"},
		{"setuptools.build_meta", "setuptools"},
		{"setuptools.build_meta:__legacy__", "setuptools"},
		{"poetry.core.masonry.api", "poetry"},
		{"flit_core.buildapi", "flit"},
		{"maturin", "maturin"},
		{"hatchling.build", "hatchling"},
		{"pdm.backend", "pdm"},
		{"scikit_build_core.build", "scikit-build-core"},
		{"mesonpy", "mesonpy"},
		{"whey", "whey"},
		{"jupyter_packaging.build_api", "jupyter-packaging"},
		{"sipbuild.api", "sipbuild"},
		{"sphinx_theme_builder", "sphinx-theme-builder"},
		{"pbr.build", "pbr"},
	}

	for _, tt := range tests {
		family, ok := reg.FamilyFor(tt.backend)
		if !ok {
			t.Errorf("backend %q not found in registry", tt.backend)
			continue
		}
		if family != tt.family {
			t.Errorf("backend %q: got family %q, want %q", tt.backend, family, tt.family)
		}
	}
}

func TestDefault_UnknownBackend(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("failed to load default registry: %v", err)
	}

	if _, ok := reg.FamilyFor("my_custom.backend"); ok {
		t.Error("unknown backend unexpectedly found in registry")
	}
}

func TestNew_DuplicateIdentifier(t *testing.T) {
	_, err := New(map[string][]string{
		"alpha": {NoBackend, "shared.backend"},
		"beta":  {"shared.backend"},
	})
	if err == nil {
		t.Fatal("expected duplicate identifier error")
	}
	if !strings.Contains(err.Error(), "shared.backend") {
		t.Errorf("error should name the duplicated identifier: %v", err)
	}
}

func TestNew_RequiresLegacyClaim(t *testing.T) {
	_, err := New(map[string][]string{
		"alpha": {"alpha.backend"},
	})
	if err == nil {
		t.Fatal("expected error when no family claims the absent identifier")
	}
}

func TestParse_Override(t *testing.T) {
	data := []byte(`
families:
  legacyish:
    - null
    - legacyish.api
  modern:
    - modern.api
`)

	reg, err := Parse(data)
	if err != nil {
		t.Fatalf("failed to parse registry override: %v", err)
	}

	if got := reg.LegacyFamily(); got != "legacyish" {
		t.Errorf("legacy family: got %q, want legacyish", got)
	}

	families := reg.Families()
	want := []string{"legacyish", "modern"}
	if len(families) != len(want) {
		t.Fatalf("families: got %v, want %v", families, want)
	}
	for i := range want {
		if families[i] != want[i] {
			t.Errorf("families[%d]: got %q, want %q", i, families[i], want[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("families: [not, a, mapping")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
	if _, err := Parse([]byte("families: {}")); err == nil {
		t.Error("expected error for empty registry")
	}
}

func TestMembers_Copies(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("failed to load default registry: %v", err)
	}

	members := reg.Members("maturin")
	if len(members) != 1 || members[0] != "maturin" {
		t.Fatalf("maturin members: got %v", members)
	}

	// Mutating the returned slice must not affect the registry.
	members[0] = "mutated"
	again := reg.Members("maturin")
	if again[0] != "maturin" {
		t.Error("Members returned a slice aliasing internal state")
	}
}
