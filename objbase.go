// Package objbase is an object foundation layer: identity-bearing, versioned entities
// with a fixed-size binary codec, an append-only byte arena they are written to, id
// sequences, an identity cache that guarantees one live instance per id, and
// transactional commands that can be composed into trees and persisted like any other
// entity.
//
// # Core Features
//
//   - Entities encode as a 16-byte version tag followed by a fixed-size payload
//   - Decoding refuses a record whose tag does not match the target type
//   - Arenas keep an offset index of every record written to them
//   - Identity caches with pluggable eviction (LRU or reject)
//   - Commands and composites with an explicit pending, failed, succeeded lifecycle
//   - Compressed arena snapshots (None, Zstd, S2, LZ4) with xxHash64 checksums
//   - A badger-backed entity store and YAML configuration
//
// # Basic Usage
//
//	cfg, _ := config.Load("objbase.yaml")
//	logger, _ := cfg.Logger()
//
//	codec, _ := objbase.NewCodec(cfg, logger)
//	counters, _ := objbase.NewCache(cfg, newCounter, logger)
//
//	c, _ := counters.Get()        // mints a fresh id
//	same, _ := counters.Get(cache.WithID(c.ID()))
//	// c == same
//
//	a := objbase.NewArena(cfg)
//	_, _ = codec.Encode(a, c)
//
// # Package Structure
//
// This package only wires the other packages together from a config.Config. Each
// building block lives in its own package: entity, arena, idseq, cache, command,
// snapshot and store.
package objbase

import (
	"github.com/sirupsen/logrus"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/cache"
	"github.com/arloliu/objbase/config"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/idseq"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/snapshot"
	"github.com/arloliu/objbase/store"
)

// NewCodec returns an entity codec using the configured byte order. logger may be nil.
func NewCodec(cfg *config.Config, logger logrus.FieldLogger) (*entity.Codec, error) {
	order, err := cfg.ByteOrder()
	if err != nil {
		return nil, err
	}

	opts := []entity.CodecOption{entity.WithByteOrder(order)}
	if logger != nil {
		opts = append(opts, entity.WithLogger(logger))
	}

	return entity.NewCodec(opts...)
}

// NewArena returns an empty arena with the configured initial size.
func NewArena(cfg *config.Config) *arena.Arena {
	return arena.New(cfg.Arena.InitialSize)
}

// NewSequence returns an id sequence with the configured initial value and step.
func NewSequence(cfg *config.Config) (*idseq.Sequence, error) {
	return idseq.New(ident.ID(cfg.Sequence.Initial), ident.ID(cfg.Sequence.Step))
}

// NewCache returns an identity cache sized and configured by cfg, with its own id
// sequence. logger may be nil. opts are applied after the configured ones and win.
func NewCache[T entity.Entity](
	cfg *config.Config,
	ctor cache.Constructor[T],
	logger logrus.FieldLogger,
	opts ...cache.Option,
) (*cache.Cache[T], error) {
	eviction, err := cfg.Eviction()
	if err != nil {
		return nil, err
	}

	seq, err := NewSequence(cfg)
	if err != nil {
		return nil, err
	}

	base := []cache.Option{
		cache.WithInitialCapacity(cfg.Cache.InitialCapacity),
		cache.WithMaxCapacity(cfg.Cache.MaxCapacity),
		cache.WithEviction(eviction),
		cache.WithSequence(seq),
		cache.WithLogger(logger),
	}

	return cache.New(ctor, append(base, opts...)...)
}

// SnapshotOptions returns the snapshot options selected by cfg.
func SnapshotOptions(cfg *config.Config) ([]snapshot.Option, error) {
	compression, err := cfg.Compression()
	if err != nil {
		return nil, err
	}

	return []snapshot.Option{snapshot.WithCompression(compression)}, nil
}

// OpenStore opens the configured entity store. logger may be nil.
func OpenStore(cfg *config.Config, codec *entity.Codec, logger *logrus.Logger) (*store.Store, error) {
	return store.Open(store.Config{
		Path:       cfg.Store.Path,
		InMemory:   cfg.Store.InMemory,
		SyncWrites: cfg.Store.SyncWrites,
		Logger:     logger,
	}, codec)
}
