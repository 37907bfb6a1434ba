package model

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfig indicates unusable configuration (unknown backend, missing
// remote endpoint, unwritable directories).
var ErrConfig = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	Prover       ProverConfig      `yaml:"prover"`
	Cache        CacheConfig       `yaml:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	Output       OutputConfig      `yaml:"output"`
}

// ProverConfig selects and configures the proving backend.
type ProverConfig struct {
	// Backend name: "dev", "notary", "remote"
	Backend string `yaml:"backend"`

	// NotaryKeyFile is the notary backend's signing key path.
	// Empty means ~/.zksum/notary.key (created on first use).
	NotaryKeyFile string `yaml:"notary_key_file"`

	Remote RemoteConfig `yaml:"remote"`
}

// RemoteConfig configures the remote proving service client.
type RemoteConfig struct {
	// BaseURL of the proving service (required for the remote backend)
	BaseURL string `yaml:"base_url"`

	// Timeout for individual HTTP requests
	Timeout int `yaml:"timeout"` // seconds
}

// CacheConfig configures receipt reuse for already-proven inputs.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`

	// Dir is the disk cache location. Empty means ~/.zksum/cache.
	Dir string `yaml:"dir"`
}

// RateLimitConfig paces remote-service polling and batch submission.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ConcurrencyConfig controls batch proving parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls diagnostic output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults. Proving is expensive, so
// batch workers default to 1; receipts of verified runs are reused by
// default.
func DefaultConfig() *Config {
	return &Config{
		Prover: ProverConfig{
			Backend: "dev",
			Remote: RemoteConfig{
				Timeout: 30,
			},
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}

// HomeDir returns the zksum state directory (~/.zksum), falling back to the
// working directory when no home is resolvable.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zksum"
	}
	return filepath.Join(home, ".zksum")
}

// CacheDir resolves the effective disk cache directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(HomeDir(), "cache")
}

// NotaryKeyPath resolves the effective notary key location.
func (c *Config) NotaryKeyPath() string {
	if c.Prover.NotaryKeyFile != "" {
		return c.Prover.NotaryKeyFile
	}
	return filepath.Join(HomeDir(), "notary.key")
}
