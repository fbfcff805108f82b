// Package config provides file-based configuration for conversion runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/astrovis/vispart/elements"
)

// Config holds the settings for one conversion run. Files may be yaml or
// json; a handful of environment variables override sensitive fields.
type Config struct {
	// StorePath is the local table store directory
	StorePath string `json:"store_path" yaml:"store_path"`

	// Scheme is the partitioning scheme literal
	Scheme string `json:"scheme" yaml:"scheme"`

	// Layout selects "expanded" or "flat" payloads
	Layout string `json:"layout" yaml:"layout"`

	// Chunking configuration
	Chunks ChunksConfig `json:"chunks" yaml:"chunks"`

	// Redis-backed conversion registry; disabled when Address is empty
	Registry RegistryConfig `json:"registry" yaml:"registry"`

	// Remote object storage holding the table store; disabled when
	// Bucket is empty
	ObjectStore ObjectStoreConfig `json:"object_store" yaml:"object_store"`
}

// ChunksConfig selects chunk sizing: "auto" with a byte budget, or
// "fixed" with an explicit 4-extent shape.
type ChunksConfig struct {
	Mode        string `json:"mode" yaml:"mode"`
	Shape       []int  `json:"shape" yaml:"shape"`
	TargetBytes int    `json:"target_bytes" yaml:"target_bytes"`
}

type RegistryConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`

	// ManifestEncoding is "avro" (default) or "proto"
	ManifestEncoding string `json:"manifest_encoding" yaml:"manifest_encoding"`
}

type ObjectStoreConfig struct {
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	Region       string `json:"region" yaml:"region"`
	Bucket       string `json:"bucket" yaml:"bucket"`
	Prefix       string `json:"prefix" yaml:"prefix"`
	AuthKey      string `json:"auth_key" yaml:"auth_key"`
	AuthSecret   string `json:"auth_secret" yaml:"auth_secret"`
	UsePathStyle bool   `json:"use_path_style" yaml:"use_path_style"`
	CacheDir     string `json:"cache_dir" yaml:"cache_dir"`
}

// Default returns a config with the usual settings filled in.
func Default() *Config {
	return &Config{
		Scheme: "by-configuration",
		Layout: "expanded",
		Chunks: ChunksConfig{
			Mode:        "auto",
			TargetBytes: 64 << 20,
		},
		Registry: RegistryConfig{
			KeyPrefix:        "vispart",
			ManifestEncoding: "avro",
		},
	}
}

// Load reads a yaml or json config file and applies env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported config format %q", filepath.Ext(path))
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (obj *Config) applyEnv() {
	if v := os.Getenv("VISPART_REDIS_ADDRESS"); v != "" {
		obj.Registry.Address = v
	}
	if v := os.Getenv("VISPART_REDIS_PASSWORD"); v != "" {
		obj.Registry.Password = v
	}
	if v := os.Getenv("VISPART_S3_AUTH_KEY"); v != "" {
		obj.ObjectStore.AuthKey = v
	}
	if v := os.Getenv("VISPART_S3_AUTH_SECRET"); v != "" {
		obj.ObjectStore.AuthSecret = v
	}
}

// ChunkSpec maps the chunk settings onto the planner's spec. Call only
// on a validated config.
func (obj ChunksConfig) ChunkSpec() elements.ChunkSpec {
	if obj.Mode == "fixed" {
		return elements.FixedChunks(obj.Shape[0], obj.Shape[1], obj.Shape[2], obj.Shape[3])
	}
	return elements.ChunkSpec{Auto: true, TargetBytes: obj.TargetBytes}
}

// StoreLocation identifies the store in conversion locks and partition
// manifests: the bucket url when the store is remote, the local
// directory otherwise.
func (obj *Config) StoreLocation() string {
	if obj.ObjectStore.Bucket != "" {
		return fmt.Sprintf("s3://%s/%s", obj.ObjectStore.Bucket, obj.ObjectStore.Prefix)
	}
	return obj.StorePath
}

func (obj *Config) Validate() error {
	if obj.StorePath == "" && obj.ObjectStore.Bucket == "" {
		return fmt.Errorf("config: either store_path or object_store.bucket is required")
	}
	switch obj.Chunks.Mode {
	case "auto":
		if obj.Chunks.TargetBytes <= 0 {
			return fmt.Errorf("config: chunks.target_bytes must be positive in auto mode")
		}
	case "fixed":
		if len(obj.Chunks.Shape) != 4 {
			return fmt.Errorf("config: chunks.shape needs 4 extents, got %d", len(obj.Chunks.Shape))
		}
		for i, extent := range obj.Chunks.Shape {
			if extent < 1 {
				return fmt.Errorf("config: chunks.shape[%d] = %d, extents must be positive", i, extent)
			}
		}
	default:
		return fmt.Errorf("config: unknown chunks.mode %q", obj.Chunks.Mode)
	}
	return nil
}
