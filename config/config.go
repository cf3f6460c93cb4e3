// Package config holds process configuration for the OCR correction
// service and CLI. Values come from defaults, then an optional YAML file,
// then environment variables, with the environment winning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	MaxUploadMB       int      `yaml:"max_upload_mb"`
	TempDir           string   `yaml:"temp_dir"`
	CleanupHours      int      `yaml:"cleanup_hours"`
	AllowedExtensions []string `yaml:"allowed_extensions"`

	OCR     OCRConfig     `yaml:"ocr"`
	Correct CorrectConfig `yaml:"correct"`
	Redis   RedisConfig   `yaml:"redis"`

	// HistoryPath points at the run-history SQLite file. Empty disables
	// history.
	HistoryPath string    `yaml:"history_path"`
	Log         LogConfig `yaml:"log"`
}

// OCRConfig selects and parameterizes the recognition engine.
type OCRConfig struct {
	// Provider is one of "tesseract", "ocrspace", or "none".
	Provider  string          `yaml:"provider"`
	OCRSpace  OCRSpaceConfig  `yaml:"ocrspace"`
	Tesseract TesseractConfig `yaml:"tesseract"`
}

type OCRSpaceConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Language string `yaml:"language"`
}

type TesseractConfig struct {
	Languages []string `yaml:"languages"`
	DPI       int      `yaml:"dpi"`
}

// CorrectConfig parameterizes the correction pipeline.
type CorrectConfig struct {
	// DictionaryPath points at a "word count" frequency list. Empty uses
	// the embedded dictionary.
	DictionaryPath  string        `yaml:"dictionary_path"`
	EnableSpell     bool          `yaml:"enable_spell_check"`
	EnableFuzzy     bool          `yaml:"enable_fuzzy_matching"`
	EnableContext   bool          `yaml:"enable_context_correction"`
	FuzzyThreshold  int           `yaml:"fuzzy_threshold"`
	RarityThreshold float64       `yaml:"rarity_threshold"`
	Context         ContextConfig `yaml:"context"`
}

// ContextConfig points at the fill-mask model service.
type ContextConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// RedisConfig locates the custom-word store. An empty Addr disables it.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration the service starts with when nothing
// else is provided.
func Default() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5000,
		MaxUploadMB:       16,
		TempDir:           "uploads",
		CleanupHours:      24,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "bmp", "tiff", "pdf"},
		OCR: OCRConfig{
			Provider: "tesseract",
			OCRSpace: OCRSpaceConfig{
				Endpoint: "https://api.ocr.space/parse/image",
				Language: "eng",
			},
			Tesseract: TesseractConfig{
				Languages: []string{"eng"},
			},
		},
		Correct: CorrectConfig{
			EnableSpell:     true,
			EnableFuzzy:     true,
			EnableContext:   true,
			FuzzyThreshold:  85,
			RarityThreshold: 1e-6,
			Context: ContextConfig{
				Model: "bert-base-uncased",
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (when it
// exists), and finally the environment. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Variable names
// follow the service's historical deployment environment.
func (c *Config) ApplyEnv() {
	c.Host = getenv("HOST", c.Host)
	c.Port = getenvInt("PORT", c.Port)
	c.MaxUploadMB = getenvInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.TempDir = getenv("UPLOAD_FOLDER", c.TempDir)
	c.CleanupHours = getenvInt("CLEANUP_INTERVAL_HOURS", c.CleanupHours)
	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		c.AllowedExtensions = splitList(v)
	}

	c.OCR.Provider = getenv("OCR_PROVIDER", c.OCR.Provider)
	c.OCR.OCRSpace.APIKey = getenv("OCR_SPACE_API_KEY", c.OCR.OCRSpace.APIKey)
	c.OCR.OCRSpace.Endpoint = getenv("OCR_SPACE_ENDPOINT", c.OCR.OCRSpace.Endpoint)
	c.OCR.OCRSpace.Language = getenv("OCR_LANGUAGE", c.OCR.OCRSpace.Language)
	if v := os.Getenv("TESSERACT_LANGUAGES"); v != "" {
		c.OCR.Tesseract.Languages = splitList(v)
	}

	c.Correct.DictionaryPath = getenv("DICTIONARY_PATH", c.Correct.DictionaryPath)
	c.Correct.EnableSpell = getenvBool("ENABLE_SPELL_CHECK", c.Correct.EnableSpell)
	c.Correct.EnableFuzzy = getenvBool("ENABLE_FUZZY_MATCHING", c.Correct.EnableFuzzy)
	c.Correct.EnableContext = getenvBool("ENABLE_CONTEXT_CORRECTION", c.Correct.EnableContext)
	c.Correct.FuzzyThreshold = getenvInt("FUZZY_THRESHOLD", c.Correct.FuzzyThreshold)
	c.Correct.RarityThreshold = getenvFloat("RARITY_THRESHOLD", c.Correct.RarityThreshold)
	c.Correct.Context.Endpoint = getenv("CONTEXT_ENDPOINT", c.Correct.Context.Endpoint)
	c.Correct.Context.Model = getenv("CONTEXT_MODEL", c.Correct.Context.Model)

	c.Redis.Addr = getenv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.DB = getenvInt("REDIS_DB", c.Redis.DB)
	c.HistoryPath = getenv("HISTORY_DB", c.HistoryPath)
	c.Log.Level = getenv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getenv("LOG_FILE", c.Log.File)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config: max upload %dMB too small", c.MaxUploadMB)
	}
	switch c.OCR.Provider {
	case "tesseract", "ocrspace", "none":
	default:
		return fmt.Errorf("config: unknown OCR provider %q", c.OCR.Provider)
	}
	return nil
}

// Addr returns the host:port pair the HTTP server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// CleanupInterval returns how often (and how long) temp files are kept.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupHours) * time.Hour
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
