// Package config loads objbase settings from YAML.
//
// Every section has a usable default, so a file only needs the keys it changes:
//
//	codec:
//	  byte_order: big
//	cache:
//	  max_capacity: 100000
//	  eviction: reject
//	store:
//	  path: /var/lib/objbase
//	  in_memory: false
//	log:
//	  level: debug
//	  format: json
//
// Unknown keys are rejected. Enumerated values (byte order, compression, eviction, log
// level and format) are checked by Validate, which Load and Parse always run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
)

// Config is the complete objbase configuration.
type Config struct {
	Codec    CodecConfig    `yaml:"codec"`
	Arena    ArenaConfig    `yaml:"arena"`
	Sequence SequenceConfig `yaml:"sequence"`
	Cache    CacheConfig    `yaml:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// CodecConfig configures the entity codec.
type CodecConfig struct {
	// ByteOrder is "little" or "big".
	// Default: little
	ByteOrder string `yaml:"byte_order"`
}

// ArenaConfig configures new arenas.
type ArenaConfig struct {
	// InitialSize is the starting capacity in bytes.
	// Default: 4096
	InitialSize int `yaml:"initial_size"`
}

// SequenceConfig configures the id sequence of a cache.
type SequenceConfig struct {
	// Initial is the value before the first id. The first minted id is Initial+Step.
	// Default: 0
	Initial int64 `yaml:"initial"`

	// Step is the distance between minted ids. Must be positive.
	// Default: 1
	Step int64 `yaml:"step"`
}

// CacheConfig configures identity caches.
type CacheConfig struct {
	// InitialCapacity sizes the entry map up front.
	// Default: 64
	InitialCapacity int `yaml:"initial_capacity"`

	// MaxCapacity is the most entries a cache holds.
	// Default: 4096
	MaxCapacity int `yaml:"max_capacity"`

	// Eviction is "lru" or "reject".
	// Default: lru
	Eviction string `yaml:"eviction"`
}

// SnapshotConfig configures arena snapshots.
type SnapshotConfig struct {
	// Compression is "none", "zstd", "s2" or "lz4".
	// Default: zstd
	Compression string `yaml:"compression"`
}

// StoreConfig configures the badger entity store.
type StoreConfig struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string `yaml:"path"`

	// InMemory keeps the database in memory. Set it to false along with Path to persist.
	// Default: true
	InMemory bool `yaml:"in_memory"`

	// SyncWrites fsyncs every write.
	// Default: false
	SyncWrites bool `yaml:"sync_writes"`
}

// LogConfig configures the logger built by Logger.
type LogConfig struct {
	// Level is any logrus level name.
	// Default: info
	Level string `yaml:"level"`

	// Format is "text" or "json".
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Codec:    CodecConfig{ByteOrder: "little"},
		Arena:    ArenaConfig{InitialSize: 4096},
		Sequence: SequenceConfig{Initial: 0, Step: 1},
		Cache: CacheConfig{
			InitialCapacity: 64,
			MaxCapacity:     4096,
			Eviction:        "lru",
		},
		Snapshot: SnapshotConfig{Compression: "zstd"},
		Store:    StoreConfig{InMemory: true},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates YAML on top of Default. Empty input yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field. All problems are reported together.
func (c *Config) Validate() error {
	var problems []error

	if _, err := c.ByteOrder(); err != nil {
		problems = append(problems, err)
	}

	if c.Arena.InitialSize < 0 {
		problems = append(problems, fmt.Errorf("arena.initial_size must not be negative, got %d", c.Arena.InitialSize))
	}

	if c.Sequence.Step <= 0 {
		problems = append(problems, fmt.Errorf("sequence.step must be positive, got %d", c.Sequence.Step))
	}

	if c.Sequence.Initial < 0 {
		problems = append(problems, fmt.Errorf("sequence.initial must not be negative, got %d", c.Sequence.Initial))
	}

	if c.Cache.MaxCapacity <= 0 {
		problems = append(problems, fmt.Errorf("cache.max_capacity must be positive, got %d", c.Cache.MaxCapacity))
	}

	if c.Cache.InitialCapacity < 0 || c.Cache.InitialCapacity > c.Cache.MaxCapacity {
		problems = append(problems, fmt.Errorf("cache.initial_capacity must be within [0, %d], got %d",
			c.Cache.MaxCapacity, c.Cache.InitialCapacity))
	}

	if _, err := c.Eviction(); err != nil {
		problems = append(problems, err)
	}

	if _, err := c.Compression(); err != nil {
		problems = append(problems, err)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		problems = append(problems, errors.New("store.path is required unless store.in_memory is set"))
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Errorf("log.level: %w", err))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, errors.Join(problems...))
	}

	return nil
}

// ByteOrder returns the parsed codec.byte_order.
func (c *Config) ByteOrder() (format.ByteOrder, error) {
	order, err := format.ParseByteOrder(c.Codec.ByteOrder)
	if err != nil {
		return 0, fmt.Errorf("codec.byte_order: %w", err)
	}

	return order, nil
}

// Eviction returns the parsed cache.eviction.
func (c *Config) Eviction() (format.EvictionType, error) {
	eviction, err := format.ParseEvictionType(c.Cache.Eviction)
	if err != nil {
		return 0, fmt.Errorf("cache.eviction: %w", err)
	}

	return eviction, nil
}

// Compression returns the parsed snapshot.compression.
func (c *Config) Compression() (format.CompressionType, error) {
	compression, err := format.ParseCompressionType(c.Snapshot.Compression)
	if err != nil {
		return 0, fmt.Errorf("snapshot.compression: %w", err)
	}

	return compression, nil
}

// Logger builds a logrus logger from the log section.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %w", errs.ErrInvalidConfig, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	switch strings.ToLower(c.Log.Format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("%w: log.format must be text or json, got %q", errs.ErrInvalidConfig, c.Log.Format)
	}

	return logger, nil
}
