package cache

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/idseq"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/version"
)

type counter struct {
	entity.Object
	Value int64
}

func (c *counter) Version() version.Tag { return version.New(1, 0, 0).WithID(100) }
func (c *counter) Size() int            { return entity.ObjectSize + 8 }

func (c *counter) AppendPayload(engine endian.EndianEngine, dst []byte) []byte {
	dst = c.Object.AppendPayload(engine, dst)
	return endian.AppendInt64(engine, dst, c.Value)
}

func (c *counter) ParsePayload(engine endian.EndianEngine, src []byte) error {
	if err := c.Object.ParsePayload(engine, src); err != nil {
		return err
	}
	c.Value = endian.Int64(engine, src[entity.ObjectSize:])

	return nil
}

func newCounter(id ident.ID) (*counter, error) {
	return &counter{Object: entity.NewObject(id)}, nil
}

func newCache(t *testing.T, opts ...Option) *Cache[*counter] {
	t.Helper()

	c, err := New(newCounter, opts...)
	require.NoError(t, err)

	return c
}

func TestCache_GetIdentity(t *testing.T) {
	c := newCache(t)

	a, err := c.Get(WithID(7))
	require.NoError(t, err)
	b, err := c.Get(WithID(7))
	require.NoError(t, err)

	require.Same(t, a, b)

	a.Value = 42
	require.Equal(t, int64(42), b.Value)
	require.Equal(t, 1, c.Len())
}

func TestCache_GetMintsIDs(t *testing.T) {
	seq, err := idseq.New(0, 1)
	require.NoError(t, err)
	c := newCache(t, WithSequence(seq))

	first, err := c.Get()
	require.NoError(t, err)
	second, err := c.Get(WithID(ident.NullID))
	require.NoError(t, err)

	require.Equal(t, ident.ID(1), first.ID())
	require.Equal(t, ident.ID(2), second.ID())
	require.NotSame(t, first, second)
	require.Same(t, seq, c.Sequence())

	// An explicit id ahead of the sequence is never minted later.
	_, err = c.Get(WithID(10))
	require.NoError(t, err)
	minted, err := c.Get()
	require.NoError(t, err)
	require.Equal(t, ident.ID(11), minted.ID())
}

func TestCache_WithInit(t *testing.T) {
	c := newCache(t)
	calls := 0
	init := WithInit(func(e *counter) error {
		calls++
		e.Value = 5
		return nil
	})

	e, err := c.Get(WithID(3), init)
	require.NoError(t, err)
	require.Equal(t, int64(5), e.Value)

	e.Value = 9
	again, err := c.Get(WithID(3), init)
	require.NoError(t, err)
	require.Equal(t, int64(9), again.Value)
	require.Equal(t, 1, calls)

	t.Run("failure caches nothing", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := c.Get(WithID(4), WithInit(func(*counter) error { return boom }))
		require.ErrorIs(t, err, boom)
		require.False(t, c.Contains(4))
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := c.Get(WithID(5), WithInit(func(*idseq.Sequence) error { return nil }))
		require.ErrorIs(t, err, errs.ErrInvalidConfig)
	})
}

func TestCache_LRUEviction(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := newCache(t, WithMaxCapacity(2), WithLogger(logger))

	one, err := c.Get(WithID(1))
	require.NoError(t, err)
	_, err = c.Get(WithID(2))
	require.NoError(t, err)

	// Touch 1 so 2 becomes the eviction victim.
	_, err = c.Get(WithID(1))
	require.NoError(t, err)

	_, err = c.Get(WithID(3))
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	require.True(t, c.Contains(1))
	require.False(t, c.Contains(2))
	require.True(t, c.Contains(3))

	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	require.Equal(t, "2", hook.LastEntry().Data["victim"])

	// Evicted holders keep a usable handle but a later Get builds a new instance.
	one.Value = 11
	_, err = c.Get(WithID(4))
	require.NoError(t, err)
	require.False(t, c.Contains(1))

	fresh, err := c.Get(WithID(1))
	require.NoError(t, err)
	require.NotSame(t, one, fresh)
	require.Equal(t, int64(11), one.Value)
	require.Zero(t, fresh.Value)
}

func TestCache_RejectPolicy(t *testing.T) {
	c := newCache(t, WithMaxCapacity(1), WithEviction(format.EvictionReject))

	a, err := c.Get(WithID(1))
	require.NoError(t, err)

	_, err = c.Get(WithID(2))
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.False(t, c.Contains(2))

	same, err := c.Get(WithID(1))
	require.NoError(t, err)
	require.Same(t, a, same)

	require.True(t, c.Evict(1))
	_, err = c.Get(WithID(2))
	require.NoError(t, err)
}

func TestCache_CustomPolicy(t *testing.T) {
	p, err := NewRejectPolicy(3)
	require.NoError(t, err)

	c := newCache(t, WithMaxCapacity(3), WithEviction(format.EvictionLRU), WithPolicy(p))
	for id := ident.ID(1); id <= 3; id++ {
		_, err := c.Get(WithID(id))
		require.NoError(t, err)
	}
	require.Equal(t, 3, p.Len())
	require.Equal(t, 3, c.Max())

	_, err = c.Get(WithID(4))
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
}

func TestCache_PolicyOwnsMax(t *testing.T) {
	p, err := NewLRUPolicy(2)
	require.NoError(t, err)

	c := newCache(t, WithMaxCapacity(100), WithPolicy(p))
	require.Equal(t, 2, c.Max())

	for id := ident.ID(1); id <= 3; id++ {
		_, err := c.Get(WithID(id))
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Len())
	require.False(t, c.Contains(1))

	_, err = New(newCounter, WithPolicy(&RejectPolicy{}))
	require.ErrorIs(t, err, errs.ErrInvalidCapacity)

	_, err = New(newCounter, WithPolicy(p), WithInitialCapacity(3))
	require.ErrorIs(t, err, errs.ErrInvalidCapacity)
}

func TestCache_FailedGetConsumesID(t *testing.T) {
	c := newCache(t, WithMaxCapacity(1), WithEviction(format.EvictionReject))

	first, err := c.Get()
	require.NoError(t, err)
	require.Equal(t, ident.ID(1), first.ID())

	_, err = c.Get()
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)

	require.True(t, c.Evict(1))
	next, err := c.Get()
	require.NoError(t, err)
	require.Equal(t, ident.ID(3), next.ID())
	require.False(t, c.Contains(2))

	fail := true
	flaky, err := New(func(id ident.ID) (*counter, error) {
		if fail {
			return nil, errors.New("not yet")
		}
		return newCounter(id)
	})
	require.NoError(t, err)

	_, err = flaky.Get()
	require.Error(t, err)
	fail = false

	got, err := flaky.Get()
	require.NoError(t, err)
	require.Equal(t, ident.ID(2), got.ID())
}

func TestCache_LookupEvictPurge(t *testing.T) {
	c := newCache(t)

	_, ok := c.Lookup(1)
	require.False(t, ok)

	e, err := c.Get(WithID(1))
	require.NoError(t, err)

	found, ok := c.Lookup(1)
	require.True(t, ok)
	require.Same(t, e, found)

	require.True(t, c.Evict(1))
	require.False(t, c.Evict(1))
	require.Zero(t, c.Len())

	for id := ident.ID(1); id <= 5; id++ {
		_, err := c.Get(WithID(id))
		require.NoError(t, err)
	}
	c.Purge()
	require.Zero(t, c.Len())
}

func TestCache_Clone(t *testing.T) {
	c := newCache(t)

	live, err := c.Get(WithID(8))
	require.NoError(t, err)
	live.Value = 80

	t.Run("live id returns the same handle", func(t *testing.T) {
		clone, err := c.Clone(live)
		require.NoError(t, err)
		require.Same(t, live, clone)
	})

	t.Run("evicted id builds a copy", func(t *testing.T) {
		require.True(t, c.Evict(8))

		clone, err := c.Clone(live)
		require.NoError(t, err)
		require.NotSame(t, live, clone)
		require.True(t, entity.Equal(live, clone))
		require.True(t, c.Contains(8))

		again, err := c.Get(WithID(8))
		require.NoError(t, err)
		require.Same(t, clone, again)
	})

	t.Run("null id", func(t *testing.T) {
		_, err := c.Clone(&counter{})
		require.ErrorIs(t, err, errs.ErrInvalidConfig)
	})
}

func TestNew_InvalidCapacity(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero max", []Option{WithMaxCapacity(0)}},
		{"negative initial", []Option{WithInitialCapacity(-1)}},
		{"initial above max", []Option{WithInitialCapacity(10), WithMaxCapacity(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(newCounter, tt.opts...)
			require.ErrorIs(t, err, errs.ErrInvalidCapacity)
		})
	}

	c := newCache(t, WithMaxCapacity(4))
	require.Equal(t, 4, c.Max())

	_, err := New[*counter](nil)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New(newCounter, WithEviction(format.EvictionType(42)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestCache_ConstructorError(t *testing.T) {
	boom := errors.New("boom")
	c, err := New(func(ident.ID) (*counter, error) { return nil, boom })
	require.NoError(t, err)

	_, err = c.Get(WithID(1))
	require.ErrorIs(t, err, boom)
	require.Zero(t, c.Len())
}

func TestLRUPolicy(t *testing.T) {
	p, err := NewLRUPolicy(2)
	require.NoError(t, err)

	_, evicted, err := p.Admit(1)
	require.NoError(t, err)
	require.False(t, evicted)
	_, _, _ = p.Admit(2)

	oldest, ok := p.Oldest()
	require.True(t, ok)
	require.Equal(t, ident.ID(1), oldest)

	p.Touch(1)
	victim, evicted, err := p.Admit(3)
	require.NoError(t, err)
	require.True(t, evicted)
	require.Equal(t, ident.ID(2), victim)

	// Re-admitting a tracked id never evicts.
	_, evicted, _ = p.Admit(3)
	require.False(t, evicted)
	require.Equal(t, 2, p.Len())

	p.Remove(3)
	require.Equal(t, 1, p.Len())
	p.Purge()
	require.Zero(t, p.Len())

	_, err = NewLRUPolicy(0)
	require.ErrorIs(t, err, errs.ErrInvalidCapacity)
}

func BenchmarkCache_GetHit(b *testing.B) {
	c, err := New(newCounter)
	require.NoError(b, err)
	_, err = c.Get(WithID(1))
	require.NoError(b, err)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(WithID(1))
	}
}
