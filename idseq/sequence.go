// Package idseq provides the monotonic id generator used to mint entity ids.
//
// A Sequence advances a counter by a fixed positive step and hands out the new value:
//
//	seq, _ := idseq.New(0, 1)
//	id, _ := seq.Next() // 1
//	id, _ = seq.Next()  // 2
//
// Sequences never issue ident.NullID: the initial value must not be negative and the step
// must be positive, so every issued id is at least initial+step. When the next value would
// overflow int64, Next returns errs.ErrSequenceExhausted and the counter is unchanged.
//
// A Sequence is itself an entity (payload: own id, current value, step), so it can be
// written with entity.Codec and restored on start-up; a resumed process then continues
// after the last id it handed out.
//
// A Sequence is not safe for concurrent use. Callers sharing one stream across
// goroutines must serialize access themselves.
package idseq

import (
	"fmt"
	"math"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/version"
)

// PayloadSize is the fixed payload size of a Sequence.
const PayloadSize = entity.ObjectSize + 16

// Version is the static tag of persisted sequences.
var Version = version.New(1, 0, 0).WithID(1)

// Sequence is a monotonic id generator.
type Sequence struct {
	entity.Object
	value ident.ID
	step  ident.ID
}

var _ entity.Entity = (*Sequence)(nil)

// New creates a sequence whose first Next returns initial+step.
func New(initial, step ident.ID) (*Sequence, error) {
	if err := validate(initial, step); err != nil {
		return nil, err
	}

	return &Sequence{value: initial, step: step}, nil
}

func validate(value, step ident.ID) error {
	if step <= 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidStep, step)
	}

	if value < 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSequence, value)
	}

	return nil
}

// Next advances the counter by the step and returns the new value.
func (s *Sequence) Next() (ident.ID, error) {
	next, err := s.Peek()
	if err != nil {
		return 0, err
	}
	s.value = next

	return next, nil
}

// Peek returns the value Next would return without advancing.
func (s *Sequence) Peek() (ident.ID, error) {
	if s.value > ident.ID(math.MaxInt64)-s.step {
		return 0, fmt.Errorf("%w: value %d, step %d", errs.ErrSequenceExhausted, s.value, s.step)
	}

	return s.value + s.step, nil
}

// Reset overwrites the counter, typically with a value restored from storage.
func (s *Sequence) Reset(value ident.ID) error {
	if value < 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSequence, value)
	}
	s.value = value

	return nil
}

// Observe moves the counter up to id when id is ahead of it, so an id assigned outside
// the sequence is never issued again.
func (s *Sequence) Observe(id ident.ID) {
	if id > s.value {
		s.value = id
	}
}

// Value returns the last issued (or restored) value.
func (s *Sequence) Value() ident.ID {
	return s.value
}

// Step returns the increment applied by Next.
func (s *Sequence) Step() ident.ID {
	return s.step
}

// Version returns the sequence tag.
func (s *Sequence) Version() version.Tag {
	return Version
}

// Size returns PayloadSize.
func (s *Sequence) Size() int {
	return PayloadSize
}

// AppendPayload appends the own id, current value and step.
func (s *Sequence) AppendPayload(engine endian.EndianEngine, dst []byte) []byte {
	dst = s.Object.AppendPayload(engine, dst)
	dst = endian.AppendInt64(engine, dst, int64(s.value))

	return endian.AppendInt64(engine, dst, int64(s.step))
}

// ParsePayload restores the sequence state. A decoded state that could never have been
// produced by New is rejected and leaves the sequence unchanged.
func (s *Sequence) ParsePayload(engine endian.EndianEngine, src []byte) error {
	if len(src) < PayloadSize {
		return fmt.Errorf("%w: sequence payload needs %d bytes, got %d", errs.ErrInvalidPayloadSize, PayloadSize, len(src))
	}

	value := ident.ID(endian.Int64(engine, src[8:16]))
	step := ident.ID(endian.Int64(engine, src[16:24]))
	if err := validate(value, step); err != nil {
		return err
	}

	if err := s.Object.ParsePayload(engine, src); err != nil {
		return err
	}
	s.value, s.step = value, step

	return nil
}
