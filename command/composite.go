package command

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/version"
)

// CompositePayloadSize is the header payload size of a Composite: the command block, the
// child count (uint32) and the capacity (uint32).
const CompositePayloadSize = PayloadSize + 8

// CompositeVersion is the static tag of Composite header records.
var CompositeVersion = version.New(1, 0, 0).WithID(3)

// Composite runs an ordered, bounded list of child commands it owns.
type Composite struct {
	Command
	children []Runner
	capacity int
	// declared is the child count of the last decoded header.
	declared int
}

var _ Runner = (*Composite)(nil)

// NewComposite creates an empty pending composite holding at most maxChildren children.
func NewComposite(id ident.ID, maxChildren int) (*Composite, error) {
	if maxChildren <= 0 || uint64(maxChildren) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: composite capacity %d", errs.ErrInvalidCapacity, maxChildren)
	}

	return &Composite{
		Command:  Command{Object: entity.NewObject(id)},
		children: make([]Runner, 0, maxChildren),
		capacity: maxChildren,
	}, nil
}

// Add appends child and takes ownership of it. Children can only be added while the
// composite is pending.
func (c *Composite) Add(child Runner) error {
	if child == nil {
		return fmt.Errorf("%w: nil child", errs.ErrInvalidConfig)
	}

	if c.status != StatusPending {
		return fmt.Errorf("%w: composite %s is %s", errs.ErrCommandAlreadyRun, c.ID(), c.status)
	}

	if len(c.children) >= c.capacity {
		return fmt.Errorf("%w: composite %s holds %d children", errs.ErrCompositeFull, c.ID(), c.capacity)
	}
	c.children = append(c.children, child)

	return nil
}

// Run runs the children in insertion order. The first failing child stops the loop and
// marks the composite failed; children that already ran are left as they are.
func (c *Composite) Run() error {
	if c.status != StatusPending {
		return fmt.Errorf("%w: composite %s is %s", errs.ErrCommandAlreadyRun, c.ID(), c.status)
	}

	for i, child := range c.children {
		if err := child.Run(); err != nil {
			c.status = StatusFailed
			return fmt.Errorf("%w: composite %s child %d: %w", errs.ErrCommandFailure, c.ID(), i, err)
		}
	}
	c.status = StatusSucceeded

	return nil
}

// Undo undoes every child in insertion order, whatever the composite's own status. Each
// child only reverts if it succeeded. Failures do not stop the walk and are joined.
func (c *Composite) Undo() error {
	var errList []error
	for _, child := range c.children {
		if err := child.Undo(); err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}

// Reset returns the composite and all of its children to StatusPending.
func (c *Composite) Reset() {
	c.status = StatusPending
	for _, child := range c.children {
		child.Reset()
	}
}

// Clone returns a deep copy: every child is cloned as well.
func (c *Composite) Clone() Runner {
	dup := *c
	dup.children = make([]Runner, len(c.children), c.capacity)
	for i, child := range c.children {
		dup.children[i] = child.Clone()
	}

	return &dup
}

// Children returns the children in insertion order. The slice is a copy; the children
// are not.
func (c *Composite) Children() []Runner {
	out := make([]Runner, len(c.children))
	copy(out, c.children)

	return out
}

// Child returns the i-th child.
func (c *Composite) Child(i int) Runner {
	return c.children[i]
}

// Len returns the number of children.
func (c *Composite) Len() int {
	return len(c.children)
}

// Cap returns the maximum number of children.
func (c *Composite) Cap() int {
	return c.capacity
}

// Version returns the composite tag.
func (c *Composite) Version() version.Tag {
	return CompositeVersion
}

// Size returns CompositePayloadSize. Children are separate records.
func (c *Composite) Size() int {
	return CompositePayloadSize
}

// AppendPayload appends the command block, the child count and the capacity.
func (c *Composite) AppendPayload(engine endian.EndianEngine, dst []byte) []byte {
	dst = c.Command.AppendPayload(engine, dst)
	dst = engine.AppendUint32(dst, uint32(len(c.children)))

	return engine.AppendUint32(dst, uint32(c.capacity))
}

// ParsePayload restores the header. The children are dropped; Read decodes the declared
// number of child records that follow the header.
func (c *Composite) ParsePayload(engine endian.EndianEngine, src []byte) error {
	if len(src) < CompositePayloadSize {
		return fmt.Errorf("%w: composite payload needs %d bytes, got %d",
			errs.ErrInvalidPayloadSize, CompositePayloadSize, len(src))
	}

	count := int(engine.Uint32(src[PayloadSize:]))
	capacity := int(engine.Uint32(src[PayloadSize+4:]))
	if capacity <= 0 || count > capacity {
		return fmt.Errorf("%w: composite header declares %d of %d children",
			errs.ErrInvalidPayloadSize, count, capacity)
	}

	if err := c.Command.ParsePayload(engine, src); err != nil {
		return err
	}
	c.capacity = capacity
	c.declared = count
	c.children = make([]Runner, 0, count)

	return nil
}

func (c *Composite) composite() *Composite {
	return c
}
