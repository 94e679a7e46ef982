package cache

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/idseq"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/internal/options"
)

const (
	// DefaultInitialCapacity is the number of slots allocated up front.
	DefaultInitialCapacity = 64
	// DefaultMaxCapacity is the live set ceiling.
	DefaultMaxCapacity = 4096
)

type config struct {
	initialCapacity int
	initialSet      bool
	maxCapacity     int
	eviction        format.EvictionType
	policy          Policy
	seq             *idseq.Sequence
	logger          logrus.FieldLogger
}

// Option configures a Cache.
type Option = options.Option[*config]

// WithInitialCapacity sets the number of slots allocated up front. It defaults to
// DefaultInitialCapacity, capped at the max capacity.
func WithInitialCapacity(n int) Option {
	return options.NoError(func(c *config) {
		c.initialCapacity = n
		c.initialSet = true
	})
}

// WithMaxCapacity sets the live set ceiling. Ignored when WithPolicy is also given.
func WithMaxCapacity(n int) Option {
	return options.NoError(func(c *config) {
		c.maxCapacity = n
	})
}

// WithEviction selects a built-in policy sized to the max capacity. Ignored when
// WithPolicy is also given.
func WithEviction(typ format.EvictionType) Option {
	return options.NoError(func(c *config) {
		c.eviction = typ
	})
}

// WithPolicy installs a custom eviction policy. The policy owns the ceiling: the cache's
// max capacity becomes p.Cap().
func WithPolicy(p Policy) Option {
	return options.NoError(func(c *config) {
		c.policy = p
	})
}

// WithSequence sets the id source used when Get is called without an id.
func WithSequence(seq *idseq.Sequence) Option {
	return options.NoError(func(c *config) {
		c.seq = seq
	})
}

// WithLogger sets the logger that receives eviction events.
func WithLogger(logger logrus.FieldLogger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

type request struct {
	id   ident.ID
	init func(entity.Entity) error
}

// GetOption shapes a single Get call.
type GetOption func(*request)

// WithID asks for the entity with the given id instead of minting a new one.
// ident.NullID is the same as omitting the option.
func WithID(id ident.ID) GetOption {
	return func(r *request) {
		r.id = id
	}
}

// WithInit runs fn on a freshly constructed entity before it enters the cache. It is not
// called when Get returns a live handle. An error from fn aborts the Get and nothing is
// cached.
func WithInit[T entity.Entity](fn func(T) error) GetOption {
	return func(r *request) {
		r.init = func(e entity.Entity) error {
			t, ok := e.(T)
			if !ok {
				var want T
				return fmt.Errorf("%w: init expects %T, cache holds %T", errs.ErrInvalidConfig, want, e)
			}

			return fn(t)
		}
	}
}
