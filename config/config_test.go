package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	order, err := cfg.ByteOrder()
	require.NoError(t, err)
	require.Equal(t, format.LittleEndian, order)

	eviction, err := cfg.Eviction()
	require.NoError(t, err)
	require.Equal(t, format.EvictionLRU, eviction)

	compression, err := cfg.Compression()
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, compression)

	require.Equal(t, int64(1), cfg.Sequence.Step)
	require.True(t, cfg.Store.InMemory)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
codec:
  byte_order: big
sequence:
  initial: 100
  step: 10
cache:
  max_capacity: 32
  initial_capacity: 8
  eviction: reject
snapshot:
  compression: lz4
store:
  path: /tmp/objbase
  in_memory: false
  sync_writes: true
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	order, err := cfg.ByteOrder()
	require.NoError(t, err)
	require.Equal(t, format.BigEndian, order)

	eviction, err := cfg.Eviction()
	require.NoError(t, err)
	require.Equal(t, format.EvictionReject, eviction)

	compression, err := cfg.Compression()
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, compression)

	require.Equal(t, SequenceConfig{Initial: 100, Step: 10}, cfg.Sequence)
	require.Equal(t, 32, cfg.Cache.MaxCapacity)
	require.Equal(t, StoreConfig{Path: "/tmp/objbase", SyncWrites: true}, cfg.Store)

	// Untouched sections keep their defaults.
	require.Equal(t, 4096, cfg.Arena.InitialSize)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "cache:\n  size: 3\n"},
		{name: "malformed", yaml: "codec: [\n"},
		{name: "byte order", yaml: "codec:\n  byte_order: middle\n"},
		{name: "zero step", yaml: "sequence:\n  step: 0\n"},
		{name: "negative initial", yaml: "sequence:\n  initial: -1\n"},
		{name: "zero max capacity", yaml: "cache:\n  max_capacity: 0\n"},
		{name: "initial above max", yaml: "cache:\n  max_capacity: 4\n  initial_capacity: 5\n"},
		{name: "eviction", yaml: "cache:\n  eviction: random\n"},
		{name: "compression", yaml: "snapshot:\n  compression: gzip\n"},
		{name: "store without path", yaml: "store:\n  in_memory: false\n"},
		{name: "log level", yaml: "log:\n  level: loud\n"},
		{name: "log format", yaml: "log:\n  format: xml\n"},
		{name: "negative arena", yaml: "arena:\n  initial_size: -8\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Sequence.Step = 0
	cfg.Snapshot.Compression = "gzip"

	err := cfg.Validate()
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.Contains(t, err.Error(), "sequence.step")
	require.Contains(t, err.Error(), "snapshot.compression")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objbase.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  eviction: reject\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "reject", cfg.Cache.Eviction)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  format: xml\n"), 0o600))
	_, err = Load(bad)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.Contains(t, err.Error(), bad)
}

func TestConfig_Logger(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	logger, err := cfg.Logger()
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.Log = LogConfig{Level: "debug", Format: "TEXT"}
	logger, err = cfg.Logger()
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	cfg.Log.Level = "loud"
	_, err = cfg.Logger()
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
