// Package cache implements the identity cache: a bounded, id-keyed table that hands out
// one shared handle per live id.
//
// Two Get calls for the same id return the same pointer for as long as the id stays in
// the live set, so mutations through one handle are visible through every other. Get
// without an id mints one from the cache's sequence and constructs a fresh entity.
//
// When a new id would exceed the max capacity, the Policy picks a victim (least recently
// used by default) and the cache drops it from its table. Holders of the victim keep a
// valid handle; the next Get for that id constructs a new instance, which is no longer
// identical to the old one.
//
// A Cache is not safe for concurrent use.
package cache

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/idseq"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/internal/options"
	"github.com/arloliu/objbase/internal/pool"
)

// Constructor builds a new entity carrying id.
type Constructor[T entity.Entity] func(id ident.ID) (T, error)

// Cache interns entities of one type by id.
type Cache[T entity.Entity] struct {
	ctor    Constructor[T]
	entries map[ident.ID]T
	policy  Policy
	seq     *idseq.Sequence
	logger  logrus.FieldLogger
	max     int
}

// New creates a cache that builds missing entities with ctor.
//
// Defaults: DefaultInitialCapacity, DefaultMaxCapacity, LRU eviction, a sequence starting
// at 0 with step 1 and a new logrus logger.
func New[T entity.Entity](ctor Constructor[T], opts ...Option) (*Cache[T], error) {
	cfg := &config{
		initialCapacity: DefaultInitialCapacity,
		maxCapacity:     DefaultMaxCapacity,
		eviction:        format.EvictionLRU,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if ctor == nil {
		return nil, fmt.Errorf("%w: nil constructor", errs.ErrInvalidConfig)
	}

	if cfg.policy != nil {
		cfg.maxCapacity = cfg.policy.Cap()
	}

	if !cfg.initialSet {
		cfg.initialCapacity = min(cfg.initialCapacity, max(cfg.maxCapacity, 0))
	}

	if cfg.maxCapacity <= 0 || cfg.initialCapacity < 0 || cfg.initialCapacity > cfg.maxCapacity {
		return nil, fmt.Errorf("%w: initial %d, max %d", errs.ErrInvalidCapacity, cfg.initialCapacity, cfg.maxCapacity)
	}

	if cfg.policy == nil {
		p, err := PolicyFor(cfg.eviction, cfg.maxCapacity)
		if err != nil {
			return nil, err
		}
		cfg.policy = p
	}

	if cfg.seq == nil {
		seq, err := idseq.New(0, 1)
		if err != nil {
			return nil, err
		}
		cfg.seq = seq
	}

	if cfg.logger == nil {
		cfg.logger = logrus.New()
	}

	return &Cache[T]{
		ctor:    ctor,
		entries: make(map[ident.ID]T, cfg.initialCapacity),
		policy:  cfg.policy,
		seq:     cfg.seq,
		logger:  cfg.logger,
		max:     cfg.maxCapacity,
	}, nil
}

// Get returns the live handle for the requested id, or constructs, initializes and caches
// a new entity. Without WithID a new id is taken from the sequence.
//
// A minted id is consumed even when construction, init or admission fails; the next Get
// mints the id after it. Ids stay unique, the sequence just skips the failed one.
func (c *Cache[T]) Get(opts ...GetOption) (T, error) {
	var req request
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}

	if !req.id.IsNull() {
		if e, ok := c.entries[req.id]; ok {
			c.policy.Touch(req.id)
			return e, nil
		}
	} else {
		id, err := c.seq.Next()
		if err != nil {
			var zero T
			return zero, err
		}
		req.id = id
	}

	return c.create(req.id, req.init)
}

func (c *Cache[T]) create(id ident.ID, init func(entity.Entity) error) (T, error) {
	var zero T

	e, err := c.ctor(id)
	if err != nil {
		return zero, fmt.Errorf("constructing entity %s: %w", id, err)
	}

	if init != nil {
		if err := init(e); err != nil {
			return zero, err
		}
	}

	if err := c.admit(id, e); err != nil {
		return zero, err
	}

	return e, nil
}

func (c *Cache[T]) admit(id ident.ID, e T) error {
	victim, evicted, err := c.policy.Admit(id)
	if err != nil {
		return err
	}

	if evicted {
		delete(c.entries, victim)
		c.logger.WithFields(logrus.Fields{
			"victim": victim.String(),
			"admit":  id.String(),
			"len":    len(c.entries),
		}).Debug("identity cache evicted entity")
	}

	c.entries[id] = e
	c.seq.Observe(id)

	return nil
}

// Lookup returns the live handle for id without constructing or touching it.
func (c *Cache[T]) Lookup(id ident.ID) (T, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Contains reports whether id is in the live set.
func (c *Cache[T]) Contains(id ident.ID) bool {
	_, ok := c.entries[id]
	return ok
}

// Evict drops id from the live set. Existing handles stay valid.
func (c *Cache[T]) Evict(id ident.ID) bool {
	if _, ok := c.entries[id]; !ok {
		return false
	}

	delete(c.entries, id)
	c.policy.Remove(id)

	return true
}

// Purge drops every entry.
func (c *Cache[T]) Purge() {
	clear(c.entries)
	c.policy.Purge()
}

// Len returns the number of live entries.
func (c *Cache[T]) Len() int {
	return len(c.entries)
}

// Max returns the live set ceiling.
func (c *Cache[T]) Max() int {
	return c.max
}

// Sequence returns the id source of the cache.
func (c *Cache[T]) Sequence() *idseq.Sequence {
	return c.seq
}

// Clone returns a handle for src's id. While the id is live this is the cached handle
// itself, so Clone preserves identity. Otherwise a new entity is constructed, its payload
// copied from src, and cached.
func (c *Cache[T]) Clone(src T) (T, error) {
	var zero T

	id := src.ID()
	if id.IsNull() {
		return zero, fmt.Errorf("%w: cannot clone an entity without id", errs.ErrInvalidConfig)
	}

	if e, ok := c.entries[id]; ok {
		c.policy.Touch(id)
		return e, nil
	}

	return c.create(id, func(dst entity.Entity) error {
		return copyPayload(dst, src)
	})
}

func copyPayload(dst, src entity.Entity) error {
	engine := endian.GetLittleEndianEngine()

	bb := pool.GetScratch()
	defer pool.PutScratch(bb)
	bb.B = src.AppendPayload(engine, bb.B[:0])

	if len(bb.B) != dst.Size() {
		return fmt.Errorf("%w: source payload is %d bytes, target expects %d",
			errs.ErrInvalidPayloadSize, len(bb.B), dst.Size())
	}

	return dst.ParsePayload(engine, bb.B)
}
