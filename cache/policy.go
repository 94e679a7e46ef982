package cache

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/ident"
)

// Policy decides which ids stay in a cache's live set once it is full.
//
// The cache calls Admit for every newly constructed id, Touch for every hit and Remove for
// explicit evictions. Implementations only track ids; the cache owns the handles.
type Policy interface {
	// Admit records id as live. If that pushes the live set over capacity it returns the id
	// that must leave, or an error when the policy refuses new ids instead.
	Admit(id ident.ID) (victim ident.ID, evicted bool, err error)
	// Touch marks id as recently used.
	Touch(id ident.ID)
	// Remove forgets id.
	Remove(id ident.ID)
	// Len returns the number of tracked ids.
	Len() int
	// Cap returns the most ids the policy keeps live. A cache using the policy reports it
	// as its max capacity.
	Cap() int
	// Purge forgets every id.
	Purge()
}

// LRUPolicy evicts the least recently used id.
type LRUPolicy struct {
	lru *simplelru.LRU[ident.ID, struct{}]
	max int
}

var _ Policy = (*LRUPolicy)(nil)

// NewLRUPolicy creates an LRU policy holding at most max ids.
func NewLRUPolicy(max int) (*LRUPolicy, error) {
	if max <= 0 {
		return nil, fmt.Errorf("%w: max capacity %d", errs.ErrInvalidCapacity, max)
	}

	lru, err := simplelru.NewLRU[ident.ID, struct{}](max, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCapacity, err)
	}

	return &LRUPolicy{lru: lru, max: max}, nil
}

// Admit records id, evicting the oldest id when the policy is full.
func (p *LRUPolicy) Admit(id ident.ID) (ident.ID, bool, error) {
	if p.lru.Contains(id) {
		p.lru.Get(id)
		return ident.NullID, false, nil
	}

	var (
		victim  ident.ID
		evicted bool
	)
	if p.lru.Len() >= p.max {
		victim, _, evicted = p.lru.RemoveOldest()
	}
	p.lru.Add(id, struct{}{})

	return victim, evicted, nil
}

// Touch moves id to the most recently used position.
func (p *LRUPolicy) Touch(id ident.ID) {
	p.lru.Get(id)
}

// Remove forgets id.
func (p *LRUPolicy) Remove(id ident.ID) {
	p.lru.Remove(id)
}

// Len returns the number of tracked ids.
func (p *LRUPolicy) Len() int {
	return p.lru.Len()
}

// Cap returns the most ids kept live.
func (p *LRUPolicy) Cap() int {
	return p.max
}

// Purge forgets every id.
func (p *LRUPolicy) Purge() {
	p.lru.Purge()
}

// Oldest returns the id that the next eviction would remove.
func (p *LRUPolicy) Oldest() (ident.ID, bool) {
	id, _, ok := p.lru.GetOldest()
	return id, ok
}

// RejectPolicy never evicts: once full, new ids fail with errs.ErrCapacityExceeded.
type RejectPolicy struct {
	ids map[ident.ID]struct{}
	max int
}

var _ Policy = (*RejectPolicy)(nil)

// NewRejectPolicy creates a policy holding at most max ids.
func NewRejectPolicy(max int) (*RejectPolicy, error) {
	if max <= 0 {
		return nil, fmt.Errorf("%w: max capacity %d", errs.ErrInvalidCapacity, max)
	}

	return &RejectPolicy{ids: make(map[ident.ID]struct{}), max: max}, nil
}

// Admit records id or refuses it when the policy is full.
func (p *RejectPolicy) Admit(id ident.ID) (ident.ID, bool, error) {
	if _, ok := p.ids[id]; ok {
		return ident.NullID, false, nil
	}

	if len(p.ids) >= p.max {
		return ident.NullID, false, fmt.Errorf("%w: id %s, capacity %d", errs.ErrCapacityExceeded, id, p.max)
	}
	p.ids[id] = struct{}{}

	return ident.NullID, false, nil
}

// Touch is a no-op.
func (p *RejectPolicy) Touch(ident.ID) {}

// Remove forgets id.
func (p *RejectPolicy) Remove(id ident.ID) {
	delete(p.ids, id)
}

// Len returns the number of tracked ids.
func (p *RejectPolicy) Len() int {
	return len(p.ids)
}

// Cap returns the most ids accepted.
func (p *RejectPolicy) Cap() int {
	return p.max
}

// Purge forgets every id.
func (p *RejectPolicy) Purge() {
	clear(p.ids)
}

// PolicyFor builds the policy selected by typ.
func PolicyFor(typ format.EvictionType, max int) (Policy, error) {
	switch typ {
	case format.EvictionLRU:
		return NewLRUPolicy(max)
	case format.EvictionReject:
		return NewRejectPolicy(max)
	default:
		return nil, fmt.Errorf("%w: unknown eviction type %d", errs.ErrInvalidConfig, typ)
	}
}
