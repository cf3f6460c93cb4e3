package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.MaxUploadMB != 16 {
		t.Errorf("MaxUploadMB = %d, want 16", cfg.MaxUploadMB)
	}
	if cfg.OCR.Provider != "tesseract" {
		t.Errorf("OCR.Provider = %q, want tesseract", cfg.OCR.Provider)
	}
	if !cfg.Correct.EnableSpell || !cfg.Correct.EnableFuzzy || !cfg.Correct.EnableContext {
		t.Error("correction stages should default on")
	}
	if cfg.Correct.FuzzyThreshold != 85 {
		t.Errorf("FuzzyThreshold = %d, want 85", cfg.Correct.FuzzyThreshold)
	}
	if cfg.Correct.RarityThreshold != 1e-6 {
		t.Errorf("RarityThreshold = %g, want 1e-6", cfg.Correct.RarityThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ocrkit.yaml")
	data := []byte(`
port: 8080
max_upload_mb: 4
ocr:
  provider: ocrspace
  ocrspace:
    api_key: k123
correct:
  enable_context_correction: false
  fuzzy_threshold: 90
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.MaxUploadMB != 4 {
		t.Errorf("MaxUploadMB = %d, want 4", cfg.MaxUploadMB)
	}
	if cfg.OCR.Provider != "ocrspace" {
		t.Errorf("OCR.Provider = %q, want ocrspace", cfg.OCR.Provider)
	}
	if cfg.OCR.OCRSpace.APIKey != "k123" {
		t.Errorf("APIKey = %q, want k123", cfg.OCR.OCRSpace.APIKey)
	}
	if cfg.Correct.EnableContext {
		t.Error("EnableContext should be overridden to false")
	}
	if cfg.Correct.FuzzyThreshold != 90 {
		t.Errorf("FuzzyThreshold = %d, want 90", cfg.Correct.FuzzyThreshold)
	}
	// Untouched fields keep their defaults.
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
	if !cfg.Correct.EnableSpell {
		t.Error("EnableSpell should keep its default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want default 5000", cfg.Port)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocrkit.yaml")
	if err := os.WriteFile(path, []byte("port: 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9090")
	t.Setenv("OCR_SPACE_API_KEY", "envkey")
	t.Setenv("ENABLE_SPELL_CHECK", "False")
	t.Setenv("ALLOWED_EXTENSIONS", "png, jpg")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want env value 9090", cfg.Port)
	}
	if cfg.OCR.OCRSpace.APIKey != "envkey" {
		t.Errorf("APIKey = %q, want envkey", cfg.OCR.OCRSpace.APIKey)
	}
	if cfg.Correct.EnableSpell {
		t.Error("ENABLE_SPELL_CHECK=False should disable spell checking")
	}
	want := []string{"png", "jpg"}
	if len(cfg.AllowedExtensions) != len(want) {
		t.Fatalf("AllowedExtensions = %v, want %v", cfg.AllowedExtensions, want)
	}
	for i := range want {
		if cfg.AllowedExtensions[i] != want[i] {
			t.Errorf("AllowedExtensions[%d] = %q, want %q", i, cfg.AllowedExtensions[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"upload too small", func(c *Config) { c.MaxUploadMB = 0 }},
		{"unknown provider", func(c *Config) { c.OCR.Provider = "magic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 5000

	if got := cfg.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:5000", got)
	}
	if got := cfg.MaxUploadBytes(); got != 16<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", got, 16<<20)
	}
	if got := cfg.CleanupInterval(); got != 24*time.Hour {
		t.Errorf("CleanupInterval() = %v, want 24h", got)
	}
}
