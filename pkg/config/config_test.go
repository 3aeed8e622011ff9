package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the built-in defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Octree.MinCubeSize != 8 {
		t.Errorf("Expected default minCubeSize 8, got %d", cfg.Octree.MinCubeSize)
	}
	if cfg.Range.Min != 0.25 || cfg.Range.Max != 1.0 {
		t.Errorf("Unexpected default range [%f..%f]", cfg.Range.Min, cfg.Range.Max)
	}
	if cfg.Range.Auto {
		t.Error("Auto range should be disabled by default")
	}
	if !cfg.Output.Verbose {
		t.Error("Verbose should be enabled by default")
	}
}

// TestLoadConfigMissingFile verifies that a missing file yields defaults.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Octree.MinCubeSize != DefaultConfig().Octree.MinCubeSize {
		t.Error("Missing config file should produce defaults")
	}
}

// TestSaveLoadRoundtrip verifies that a saved configuration loads back
// unchanged.
func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "voloctree.yaml")

	cfg := DefaultConfig()
	cfg.Octree.MinCubeSize = 4
	cfg.Range.Min = 0.1
	cfg.Range.Max = 0.9
	cfg.Range.Auto = true
	cfg.Output.MaskedSlicesDir = "masked"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Octree.MinCubeSize != 4 {
		t.Errorf("Expected minCubeSize 4, got %d", loaded.Octree.MinCubeSize)
	}
	if loaded.Range.Min != 0.1 || loaded.Range.Max != 0.9 {
		t.Errorf("Unexpected range [%f..%f]", loaded.Range.Min, loaded.Range.Max)
	}
	if !loaded.Range.Auto {
		t.Error("Expected auto range enabled")
	}
	if loaded.Output.MaskedSlicesDir != "masked" {
		t.Errorf("Expected masked dir 'masked', got %q", loaded.Output.MaskedSlicesDir)
	}
}

// TestLoadConfigPartialOverride verifies that values absent from the file
// keep their defaults.
func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	content := []byte("octree:\n  minCubeSize: 16\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Octree.MinCubeSize != 16 {
		t.Errorf("Expected minCubeSize 16, got %d", cfg.Octree.MinCubeSize)
	}
	if cfg.Range.Max != 1.0 {
		t.Errorf("Expected untouched default range max 1.0, got %f", cfg.Range.Max)
	}
}

// TestLoadConfigInvalidYAML verifies the parse error path.
func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("octree: ["), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}
