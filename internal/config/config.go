// Package config loads server settings. Values come from built-in defaults,
// then an optional YAML file named by GRADEVIEW_CONFIG, then the
// environment. A .env file in the working directory is read first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins"`

	// Grading service. Answers and results are fetched from it, and
	// imported answers are submitted to it. Empty URL disables both.
	BackendURL    string `yaml:"backend_url"`
	BackendAPIKey string `yaml:"backend_api_key"`

	// Import worker pool
	WorkerCount   int           `yaml:"worker_count"`
	MaxQueueSize  int           `yaml:"max_queue_size"`
	MaxBatchFiles int           `yaml:"max_batch_files"`
	JobTTL        time.Duration `yaml:"job_ttl"`

	// Request limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	MaxTextBytes   int64 `yaml:"max_text_bytes"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		CORSOrigins:          []string{"http://localhost:3000"},
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxBatchFiles:        50,
		JobTTL:               time.Hour,
		MaxUploadBytes:       20 << 20,
		MaxTextBytes:         2 << 20,
		PDFFallbackPdftotext: true,
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("GRADEVIEW_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("GRADEVIEW_API_KEY", cfg.APIKey)
	cfg.CORSOrigins = envList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.BackendURL = envOr("GRADING_BACKEND_URL", cfg.BackendURL)
	cfg.BackendAPIKey = envOr("GRADING_BACKEND_API_KEY", cfg.BackendAPIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxBatchFiles = envInt("MAX_BATCH_FILES", cfg.MaxBatchFiles)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.MaxTextBytes = envInt64("MAX_TEXT_BYTES", cfg.MaxTextBytes)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.fillDefaults()
	return cfg, nil
}

// mergeFile overlays the keys present in a YAML file.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fillDefaults replaces non-positive sizes with the built-in ones.
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxBatchFiles <= 0 {
		c.MaxBatchFiles = d.MaxBatchFiles
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.MaxTextBytes <= 0 {
		c.MaxTextBytes = d.MaxTextBytes
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GRADEVIEW_API_KEY is required")
	}
	if c.BackendURL != "" && !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("GRADING_BACKEND_URL must be an http(s) URL, got %q", c.BackendURL)
	}
	return nil
}

// BackendEnabled reports whether a grading service is configured.
func (c Config) BackendEnabled() bool {
	return c.BackendURL != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
