// Package config handles statevec configuration via YAML files and
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--workers, --gpu, etc.)
//  2. Environment variables (STATEVEC_*)
//  3. Config file (statevec.yaml)
//  4. Built-in defaults
//
// Environment variables (all use the STATEVEC_ prefix):
//
// Memory:
//   - STATEVEC_HOST_MAX_MEMORY="8GB" or "unlimited"
//   - STATEVEC_COHERENT_INTERCONNECT=false
//
// Parallelism:
//   - STATEVEC_WORKERS=0  (0 = GOMAXPROCS)
//
// GPU:
//   - STATEVEC_GPU_ENABLED=true
//   - STATEVEC_GPU_DEVICES=1
//   - STATEVEC_GPU_MAX_MEMORY="4GB"
//
// Checkpoints:
//   - STATEVEC_CHECKPOINT_DIR="./data/checkpoints"
//   - STATEVEC_CHECKPOINT_KEY="<64 hex chars>" (enables encryption at rest)
//   - STATEVEC_CHECKPOINT_SYNC=false
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all statevec configuration.
//
// Use LoadFromEnv() for environment-only configuration or LoadFromFile()
// for the full file-plus-environment layering.
type Config struct {
	// Memory settings for host containers
	Memory MemoryConfig

	// Parallel execution settings
	Parallel ParallelConfig

	// GPU settings for device containers
	GPU GPUConfig

	// Checkpoint spill store settings
	Checkpoint CheckpointConfig
}

// MemoryConfig holds host memory settings.
type MemoryConfig struct {
	// HostMaxBytes caps host container allocations (0 = unlimited)
	HostMaxBytes uint64
	// CoherentInterconnect marks host memory as directly addressable
	// from device spaces
	CoherentInterconnect bool
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	// Workers is the pool size for internally parallel operations
	// (0 = GOMAXPROCS)
	Workers int
}

// GPUConfig holds device probing settings.
type GPUConfig struct {
	// Enabled toggles probing for a real accelerator runtime
	Enabled bool
	// Devices is the emulated device count when no runtime is found
	Devices int
	// MaxMemoryMB caps reported per-device memory for emulated spaces
	// (0 = unlimited)
	MaxMemoryMB int
	// FallbackOnError falls back to emulated spaces instead of failing
	FallbackOnError bool
}

// CheckpointConfig holds spill store settings.
type CheckpointConfig struct {
	// Dir is the BadgerDB directory for spilled snapshots
	Dir string
	// EncryptionKey enables encryption at rest; 32 bytes or empty
	EncryptionKey []byte
	// SyncWrites forces fsync after each snapshot write
	SyncWrites bool
}

// yamlConfig mirrors the config file layout. Zero values mean "not set";
// LoadFromFile only overrides defaults for fields the file provides.
type yamlConfig struct {
	Memory struct {
		HostMaxMemory        string `yaml:"host_max_memory"`
		CoherentInterconnect *bool  `yaml:"coherent_interconnect"`
	} `yaml:"memory"`
	Parallel struct {
		Workers *int `yaml:"workers"`
	} `yaml:"parallel"`
	GPU struct {
		Enabled         *bool  `yaml:"enabled"`
		Devices         int    `yaml:"devices"`
		MaxMemory       string `yaml:"max_memory"`
		FallbackOnError *bool  `yaml:"fallback_on_error"`
	} `yaml:"gpu"`
	Checkpoint struct {
		Dir        string `yaml:"dir"`
		Key        string `yaml:"key"`
		SyncWrites *bool  `yaml:"sync_writes"`
	} `yaml:"checkpoint"`
}

// LoadDefaults returns the built-in defaults: unlimited host memory,
// GOMAXPROCS workers, GPU probing with emulated fallback, checkpoints
// under ./data/checkpoints with no encryption.
func LoadDefaults() *Config {
	return &Config{
		Memory: MemoryConfig{
			HostMaxBytes:         0,
			CoherentInterconnect: false,
		},
		Parallel: ParallelConfig{
			Workers: 0,
		},
		GPU: GPUConfig{
			Enabled:         true,
			Devices:         1,
			MaxMemoryMB:     0,
			FallbackOnError: true,
		},
		Checkpoint: CheckpointConfig{
			Dir:        filepath.Join("data", "checkpoints"),
			SyncWrites: false,
		},
	}
}

// LoadFromEnv builds a Config from defaults plus STATEVEC_* environment
// variables.
func LoadFromEnv() *Config {
	config := LoadDefaults()
	applyEnvVars(config)
	return config
}

// LoadFromFile loads a YAML config file, then applies environment
// variables on top. A missing file is not an error; the defaults and
// environment still apply.
func LoadFromFile(configPath string) (*Config, error) {
	config := LoadDefaults()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvVars(config)
			return config, nil
		}
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	if yamlCfg.Memory.HostMaxMemory != "" {
		config.Memory.HostMaxBytes = uint64(parseMemorySize(yamlCfg.Memory.HostMaxMemory))
	}
	if yamlCfg.Memory.CoherentInterconnect != nil {
		config.Memory.CoherentInterconnect = *yamlCfg.Memory.CoherentInterconnect
	}
	if yamlCfg.Parallel.Workers != nil {
		config.Parallel.Workers = *yamlCfg.Parallel.Workers
	}
	if yamlCfg.GPU.Enabled != nil {
		config.GPU.Enabled = *yamlCfg.GPU.Enabled
	}
	if yamlCfg.GPU.Devices > 0 {
		config.GPU.Devices = yamlCfg.GPU.Devices
	}
	if yamlCfg.GPU.MaxMemory != "" {
		config.GPU.MaxMemoryMB = int(parseMemorySize(yamlCfg.GPU.MaxMemory) >> 20)
	}
	if yamlCfg.GPU.FallbackOnError != nil {
		config.GPU.FallbackOnError = *yamlCfg.GPU.FallbackOnError
	}
	if yamlCfg.Checkpoint.Dir != "" {
		config.Checkpoint.Dir = yamlCfg.Checkpoint.Dir
	}
	if yamlCfg.Checkpoint.Key != "" {
		key, err := hex.DecodeString(yamlCfg.Checkpoint.Key)
		if err != nil {
			return nil, fmt.Errorf("config: checkpoint key is not hex: %w", err)
		}
		config.Checkpoint.EncryptionKey = key
	}
	if yamlCfg.Checkpoint.SyncWrites != nil {
		config.Checkpoint.SyncWrites = *yamlCfg.Checkpoint.SyncWrites
	}

	// Environment variables win over the file.
	applyEnvVars(config)
	return config, nil
}

// FindConfigFile returns the first config file that exists among the
// standard locations, or "statevec.yaml" when none does.
func FindConfigFile() string {
	var candidates []string

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".statevec", "config.yaml"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "statevec.yaml"))
	}
	candidates = append(candidates, "statevec.yaml", "config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return "statevec.yaml"
}

// applyEnvVars overrides config fields from STATEVEC_* environment
// variables.
func applyEnvVars(config *Config) {
	if v := os.Getenv("STATEVEC_HOST_MAX_MEMORY"); v != "" {
		config.Memory.HostMaxBytes = uint64(parseMemorySize(v))
	}
	config.Memory.CoherentInterconnect = getEnvBool("STATEVEC_COHERENT_INTERCONNECT", config.Memory.CoherentInterconnect)
	config.Parallel.Workers = getEnvInt("STATEVEC_WORKERS", config.Parallel.Workers)
	config.GPU.Enabled = getEnvBool("STATEVEC_GPU_ENABLED", config.GPU.Enabled)
	config.GPU.Devices = getEnvInt("STATEVEC_GPU_DEVICES", config.GPU.Devices)
	if v := os.Getenv("STATEVEC_GPU_MAX_MEMORY"); v != "" {
		config.GPU.MaxMemoryMB = int(parseMemorySize(v) >> 20)
	}
	config.Checkpoint.Dir = getEnv("STATEVEC_CHECKPOINT_DIR", config.Checkpoint.Dir)
	if v := os.Getenv("STATEVEC_CHECKPOINT_KEY"); v != "" {
		if key, err := hex.DecodeString(v); err == nil {
			config.Checkpoint.EncryptionKey = key
		}
	}
	config.Checkpoint.SyncWrites = getEnvBool("STATEVEC_CHECKPOINT_SYNC", config.Checkpoint.SyncWrites)
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0 (got %d)", c.Parallel.Workers)
	}
	if c.GPU.Devices < 1 {
		return fmt.Errorf("config: gpu devices must be >= 1 (got %d)", c.GPU.Devices)
	}
	if c.GPU.MaxMemoryMB < 0 {
		return fmt.Errorf("config: gpu max memory must be >= 0 (got %d)", c.GPU.MaxMemoryMB)
	}
	if n := len(c.Checkpoint.EncryptionKey); n != 0 && n != 32 {
		return fmt.Errorf("config: checkpoint key must be 32 bytes (got %d)", n)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

// parseMemorySize parses a human-readable memory size string.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited".
func parseMemorySize(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0
	}

	s = strings.TrimSuffix(s, "B")
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier = 1 << 40
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "K")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n * multiplier
}
