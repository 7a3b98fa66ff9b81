// Package config holds runtime configuration shared by the yatter binaries.
//
// Values come from DefaultConfig, then YATTER_* environment variables
// (optionally read from a .env file), then command-line flags applied by
// each binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration for the client, CLI and sync daemon.
type Config struct {
	// ServerURL is the base URL of the Yatter server.
	ServerURL string `json:"server_url"`

	// DataDir holds the database, key file and logs.
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`
	KeyPath string `json:"key_path"`
	LogPath string `json:"log_path"`

	// MetricsAddr is the HTTP address for Prometheus metrics.
	// Empty string disables the metrics server.
	MetricsAddr string `json:"metrics_addr"`

	// RequestTimeout bounds every API and image request.
	RequestTimeout time.Duration `json:"request_timeout"`
	// RequestsPerSecond paces API calls; Burst is the limiter bucket size.
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`

	// TimelineLimit is the number of statuses requested per fetch.
	TimelineLimit int `json:"timeline_limit"`
	// SyncInterval is the poll period of yatter-sync.
	SyncInterval time.Duration `json:"sync_interval"`

	// ImageMaxBytes caps a single avatar or media download.
	ImageMaxBytes int64 `json:"image_max_bytes"`
	// StrictImageHosts blocks image downloads from private and loopback
	// addresses. Off by default since development servers run on localhost.
	StrictImageHosts bool `json:"strict_image_hosts"`
}

// DefaultConfig returns sensible defaults rooted at ~/.yatter.
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".yatter")

	return Config{
		ServerURL:         "http://localhost:8080",
		DataDir:           dataDir,
		DBPath:            filepath.Join(dataDir, "yatter.db"),
		KeyPath:           filepath.Join(dataDir, "token.key"),
		LogPath:           filepath.Join(dataDir, "yatter.log"),
		MetricsAddr:       "",
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
		TimelineLimit:     40,
		SyncInterval:      time.Minute,
		ImageMaxBytes:     5 << 20,
		StrictImageHosts:  false,
	}
}

// Load returns DefaultConfig overlaid with environment variables.
// If envFile exists it is loaded first; variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()
	cfg.ServerURL = getEnvString("YATTER_SERVER_URL", cfg.ServerURL)
	if dir := os.Getenv("YATTER_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
		cfg.DBPath = filepath.Join(dir, "yatter.db")
		cfg.KeyPath = filepath.Join(dir, "token.key")
		cfg.LogPath = filepath.Join(dir, "yatter.log")
	}
	cfg.DBPath = getEnvString("YATTER_DB", cfg.DBPath)
	cfg.KeyPath = getEnvString("YATTER_KEY_FILE", cfg.KeyPath)
	cfg.LogPath = getEnvString("YATTER_LOG", cfg.LogPath)
	cfg.MetricsAddr = getEnvString("YATTER_METRICS_ADDR", cfg.MetricsAddr)
	cfg.RequestTimeout = getEnvDuration("YATTER_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RequestsPerSecond = getEnvFloat("YATTER_RPS", cfg.RequestsPerSecond)
	cfg.Burst = getEnvInt("YATTER_BURST", cfg.Burst)
	cfg.TimelineLimit = getEnvInt("YATTER_TIMELINE_LIMIT", cfg.TimelineLimit)
	cfg.SyncInterval = getEnvDuration("YATTER_SYNC_INTERVAL", cfg.SyncInterval)
	cfg.ImageMaxBytes = int64(getEnvInt("YATTER_IMAGE_MAX_BYTES", int(cfg.ImageMaxBytes)))
	cfg.StrictImageHosts = getEnvBool("YATTER_STRICT_IMAGE_HOSTS", cfg.StrictImageHosts)

	return cfg, cfg.Validate()
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL %q must be http or https", c.ServerURL)
	}
	if c.TimelineLimit <= 0 || c.TimelineLimit > 80 {
		return fmt.Errorf("timeline limit must be in 1..80, got %d", c.TimelineLimit)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}

// EnsureDataDir creates the directory holding the database file.
func (c Config) EnsureDataDir() error {
	dir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
