// Package store persists entities in a badger key-value database.
//
// Records are stored exactly as entity.Codec encodes them, so every read goes through the
// same version gate as an arena decode: a record written by an incompatible type version
// fails with errs.ErrVersionMismatch.
//
// Keys are namespaced by a kind string, usually one kind per entity type:
//
//	kind 0x00 bigendian(id)   entity record
//	kind 0x01                 id sequence of the kind
//	kind 0x02                 arena snapshot of the kind
//
// Big-endian ids keep the records of a kind in ascending id order for Each.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/idseq"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/snapshot"
)

const (
	recordTag   byte = 0x00
	sequenceTag byte = 0x01
	snapshotTag byte = 0x02
)

// Config configures the underlying badger database.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory; nothing is written to disk.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
	// Logger receives store events and badger's own log lines. Defaults to logrus.New().
	Logger *logrus.Logger
}

// Store is an entity store backed by badger. It is safe for concurrent use as far as
// badger is; the entities passed in are not.
type Store struct {
	db     *badger.DB
	codec  *entity.Codec
	logger *logrus.Logger
}

// Open opens (or creates) the database described by cfg. Records are encoded with codec.
func Open(cfg Config, codec *entity.Codec) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	if codec == nil {
		return nil, fmt.Errorf("%w: nil codec", errs.ErrInvalidConfig)
	}

	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%w: store path is required unless in-memory", errs.ErrInvalidConfig)
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}

	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(cfg.Logger.WithField("component", "badger"))

	db, err := badger.Open(opts)
	if err != nil {
		cfg.Logger.WithError(err).WithField("path", cfg.Path).Error("opening entity store")
		return nil, fmt.Errorf("opening badger at %q: %w", cfg.Path, err)
	}

	cfg.Logger.WithFields(logrus.Fields{
		"path":       cfg.Path,
		"in_memory":  cfg.InMemory,
		"byte_order": codec.ByteOrder().String(),
	}).Info("entity store opened")

	return &Store{db: db, codec: codec, logger: cfg.Logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.WithError(err).Error("closing entity store")
		return err
	}
	s.logger.Info("entity store closed")

	return nil
}

// Codec returns the codec records are encoded with.
func (s *Store) Codec() *entity.Codec {
	return s.codec
}

func checkKind(kind string) error {
	if kind == "" || strings.IndexByte(kind, 0) >= 0 {
		return fmt.Errorf("%w: kind %q must be non-empty and free of NUL bytes", errs.ErrInvalidConfig, kind)
	}

	return nil
}

func prefix(kind string, tag byte) []byte {
	key := make([]byte, 0, len(kind)+9)
	key = append(key, kind...)

	return append(key, tag)
}

func recordKey(kind string, id ident.ID) []byte {
	return binary.BigEndian.AppendUint64(prefix(kind, recordTag), uint64(id)) //nolint: gosec
}

// Put stores e under its id, replacing any previous record.
func (s *Store) Put(kind string, e entity.Entity) error {
	return s.PutAll(kind, e)
}

// PutAll stores every entity in one batch.
func (s *Store) PutAll(kind string, entities ...entity.Entity) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range entities {
		if e.ID().IsNull() {
			return fmt.Errorf("%w: cannot store %s entity without id", errs.ErrInvalidConfig, kind)
		}

		rec, err := s.codec.Marshal(e)
		if err != nil {
			return err
		}

		if err := wb.Set(recordKey(kind, e.ID()), rec); err != nil {
			return fmt.Errorf("storing %s %s: %w", kind, e.ID(), err)
		}
	}

	if err := wb.Flush(); err != nil {
		s.logger.WithError(err).WithField("kind", kind).Error("flushing entity batch")
		return err
	}

	return nil
}

// Get decodes the record of id into into. Returns errs.ErrNotFound if there is none.
func (s *Store) Get(kind string, id ident.ID, into entity.Entity) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	return s.load(recordKey(kind, id), into, fmt.Sprintf("%s %s", kind, id))
}

func (s *Store) load(key []byte, into entity.Entity, what string) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", errs.ErrNotFound, what)
		}

		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return s.codec.Unmarshal(val, into)
		})
	})
}

// Has reports whether a record exists for id.
func (s *Store) Has(kind string, id ident.ID) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(kind, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}

		if err != nil {
			return err
		}
		found = true

		return nil
	})

	return found, err
}

// Delete removes the record of id. Deleting a missing record is not an error.
func (s *Store) Delete(kind string, id ident.ID) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(kind, id))
	})
}

// Each decodes every record of kind in ascending id order and calls fn with it. newFn
// supplies the value each record decodes into. Iteration stops at the first error.
func Each[T entity.Entity](s *Store, kind string, newFn func() T, fn func(T) error) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	p := prefix(kind, recordTag)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			e := newFn()
			if err := it.Item().Value(func(val []byte) error {
				return s.codec.Unmarshal(val, e)
			}); err != nil {
				return fmt.Errorf("decoding %s record %x: %w", kind, it.Item().Key(), err)
			}

			if err := fn(e); err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveSequence stores the id sequence of kind.
func (s *Store) SaveSequence(kind string, seq *idseq.Sequence) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	rec, err := s.codec.Marshal(seq)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(prefix(kind, sequenceTag), rec)
	})
}

// LoadSequence restores the id sequence of kind. Returns errs.ErrNotFound if none was saved.
func (s *Store) LoadSequence(kind string) (*idseq.Sequence, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	seq := &idseq.Sequence{}
	if err := s.load(prefix(kind, sequenceTag), seq, kind+" sequence"); err != nil {
		return nil, err
	}

	return seq, nil
}

// SaveArena stores a snapshot of a under kind, replacing the previous one.
func (s *Store) SaveArena(kind string, a *arena.Arena, opts ...snapshot.Option) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := snapshot.Write(&buf, a, opts...); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(prefix(kind, snapshotTag), buf.Bytes())
	})
	if err != nil {
		s.logger.WithError(err).WithField("kind", kind).Error("saving arena snapshot")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"kind":    kind,
		"entries": a.Count(),
		"bytes":   buf.Len(),
	}).Debug("arena snapshot saved")

	return nil
}

// LoadArena restores the arena snapshot of kind. Returns errs.ErrNotFound if none was saved.
func (s *Store) LoadArena(kind string, opts ...snapshot.Option) (*arena.Arena, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var a *arena.Arena
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefix(kind, snapshotTag))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s arena", errs.ErrNotFound, kind)
		}

		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			a, err = snapshot.Read(bytes.NewReader(val), opts...)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}
