package command

import (
	"fmt"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
)

// ChildFactory builds the empty runner that the index-th child record of the composite
// parentID decodes into. It decides the concrete type and reattaches the effect.
type ChildFactory func(parentID ident.ID, index int) (Runner, error)

// parent is satisfied by Composite and by every type embedding it.
type parent interface {
	Runner
	composite() *Composite
}

// EncodedSize returns the size of r's record tree.
func EncodedSize(r Runner) int {
	size := entity.EncodedSize(r)
	if p, ok := r.(parent); ok {
		for _, child := range p.composite().children {
			size += EncodedSize(child)
		}
	}

	return size
}

// Write encodes r and, for composites, every child after it in insertion order, and
// returns the offset of r's record. On error the records already written stay in a.
func Write(codec *entity.Codec, a *arena.Arena, r Runner) (int, error) {
	offset, err := codec.Encode(a, r)
	if err != nil {
		return 0, err
	}

	p, ok := r.(parent)
	if !ok {
		return offset, nil
	}

	for i, child := range p.composite().children {
		if _, err := Write(codec, a, child); err != nil {
			return 0, fmt.Errorf("writing child %d of composite %s: %w", i, r.ID(), err)
		}
	}

	return offset, nil
}

// Read decodes the record tree at the arena's read cursor into r.
func Read(codec *entity.Codec, a *arena.Arena, r Runner, newChild ChildFactory) error {
	_, err := ReadAt(codec, a, a.ReadCursor(), r, newChild)
	return err
}

// ReadAt decodes the record tree starting at offset into r and returns the offset just
// past it. Composite children are built by newChild and decoded recursively.
//
// A failed read leaves r and the arena's read cursor as they were: the header and the
// children are committed together once the whole subtree decoded.
func ReadAt(codec *entity.Codec, a *arena.Arena, offset int, r Runner, newChild ChildFactory) (int, error) {
	p, ok := r.(parent)
	if !ok {
		if err := codec.DecodeAt(a, offset, r); err != nil {
			return 0, err
		}

		return offset + entity.EncodedSize(r), nil
	}

	cursor := a.ReadCursor()
	prev := captureParent(codec, p)

	next, err := readParent(codec, a, offset, p, newChild)
	if err != nil {
		prev.restore(codec)
		_ = a.Seek(cursor)

		return 0, err
	}

	return next, nil
}

func readParent(codec *entity.Codec, a *arena.Arena, offset int, p parent, newChild ChildFactory) (int, error) {
	if err := codec.DecodeAt(a, offset, p); err != nil {
		return 0, err
	}
	next := offset + entity.EncodedSize(p)

	comp := p.composite()
	if comp.declared > 0 && newChild == nil {
		return 0, fmt.Errorf("%w: composite %s declares %d children but no child factory was given",
			errs.ErrInvalidConfig, p.ID(), comp.declared)
	}

	children := make([]Runner, 0, comp.declared)
	for i := range comp.declared {
		child, err := newChild(p.ID(), i)
		if err != nil {
			return 0, fmt.Errorf("building child %d of composite %s: %w", i, p.ID(), err)
		}

		next, err = ReadAt(codec, a, next, child, newChild)
		if err != nil {
			return 0, fmt.Errorf("reading child %d of composite %s: %w", i, p.ID(), err)
		}
		children = append(children, child)
	}
	comp.children = children

	return next, nil
}

// parentState is what a failed tree read puts back into its target.
type parentState struct {
	target parent
	comp   Composite
	// payload holds the fields of a type embedding Composite; nil for a plain Composite.
	payload []byte
}

func captureParent(codec *entity.Codec, p parent) parentState {
	comp := p.composite()
	state := parentState{target: p, comp: *comp}

	if any(comp) != any(p) {
		// A zero capacity header does not parse back; the embedded Composite is
		// restored from comp anyway.
		if comp.capacity == 0 {
			comp.capacity = 1
		}
		state.payload = p.AppendPayload(codec.Engine(), nil)
		*comp = state.comp
	}

	return state
}

func (s parentState) restore(codec *entity.Codec) {
	if s.payload != nil {
		_ = s.target.ParsePayload(codec.Engine(), s.payload)
	}
	*s.target.composite() = s.comp
}

// Equal reports whether two command trees hold the same records: entity.Equal on every
// node and the same children in the same order.
func Equal(a, b Runner) bool {
	if !entity.Equal(a, b) {
		return false
	}

	pa, okA := a.(parent)
	pb, okB := b.(parent)
	if okA != okB {
		return false
	}

	if !okA {
		return true
	}

	ca, cb := pa.composite().children, pb.composite().children
	if len(ca) != len(cb) {
		return false
	}

	for i := range ca {
		if !Equal(ca[i], cb[i]) {
			return false
		}
	}

	return true
}
