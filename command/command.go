// Package command implements transactional commands: reversible units of work with a
// run/undo state machine that persist through the entity codec.
//
// # State Machine
//
//	StatusPending --Run ok--> StatusSucceeded
//	StatusPending --Run err-> StatusFailed
//
// Undo only reverts a command whose status is StatusSucceeded, and it leaves the status
// alone: an undone command still reports OK and cannot run again until Reset. Undo is
// never called automatically, not even when a Composite stops on a failing child.
//
// # Persistence
//
// A Command record holds its id and status; the effect is code, not data, and has to be
// reattached after decoding (see SetEffect and ChildFactory). A Composite record is its
// own header followed by every child record, recursively; Write and Read handle the tree.
package command

import (
	"fmt"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/version"
)

// PayloadSize is the payload size of a Command: id, status byte, 7 reserved bytes.
const PayloadSize = entity.ObjectSize + 8

// Version is the static tag of Command records.
var Version = version.New(1, 0, 0).WithID(2)

// Status is the outcome of a command.
type Status uint8

const (
	// StatusPending means the command has not run.
	StatusPending Status = iota
	// StatusFailed means the last run returned an error; the outcome of the effect is unknown.
	StatusFailed
	// StatusSucceeded means the last run completed.
	StatusSucceeded
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	case StatusSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Effect is the work a command performs and its inverse.
type Effect interface {
	Apply() error
	Revert() error
}

// Funcs adapts a pair of functions to Effect. Nil functions do nothing.
type Funcs struct {
	Do   func() error
	Undo func() error
}

var _ Effect = Funcs{}

// Apply calls Do.
func (f Funcs) Apply() error {
	if f.Do == nil {
		return nil
	}

	return f.Do()
}

// Revert calls Undo.
func (f Funcs) Revert() error {
	if f.Undo == nil {
		return nil
	}

	return f.Undo()
}

// Runner is a command that can take part in a command tree.
type Runner interface {
	entity.Entity

	Run() error
	Undo() error
	Reset()
	Status() Status
	OK() bool
	Clone() Runner
}

// Command is a single reversible step.
type Command struct {
	entity.Object
	status Status
	effect Effect
}

var _ Runner = (*Command)(nil)

// New creates a pending command.
func New(id ident.ID, effect Effect) *Command {
	return &Command{Object: entity.NewObject(id), effect: effect}
}

// Run applies the effect. It fails with errs.ErrCommandAlreadyRun unless the command is
// pending. An effect error moves the command to StatusFailed and is returned wrapped in
// errs.ErrCommandFailure.
func (c *Command) Run() error {
	if c.status != StatusPending {
		return fmt.Errorf("%w: command %s is %s", errs.ErrCommandAlreadyRun, c.ID(), c.status)
	}

	if c.effect != nil {
		if err := c.effect.Apply(); err != nil {
			c.status = StatusFailed
			return fmt.Errorf("%w: command %s: %w", errs.ErrCommandFailure, c.ID(), err)
		}
	}
	c.status = StatusSucceeded

	return nil
}

// Undo reverts a succeeded command and does nothing otherwise. The status is kept.
func (c *Command) Undo() error {
	if !c.OK() || c.effect == nil {
		return nil
	}

	if err := c.effect.Revert(); err != nil {
		return fmt.Errorf("%w: command %s: %w", errs.ErrUndoFailure, c.ID(), err)
	}

	return nil
}

// Reset returns the command to StatusPending so it can run again.
func (c *Command) Reset() {
	c.status = StatusPending
}

// Status returns the current status.
func (c *Command) Status() Status {
	return c.status
}

// OK reports whether the last run succeeded.
func (c *Command) OK() bool {
	return c.status == StatusSucceeded
}

// Effect returns the attached effect.
func (c *Command) Effect() Effect {
	return c.effect
}

// SetEffect attaches the effect, typically after the command was decoded.
func (c *Command) SetEffect(effect Effect) {
	c.effect = effect
}

// Clone returns a copy sharing the id, status and effect.
func (c *Command) Clone() Runner {
	dup := *c
	return &dup
}

// Version returns the command tag.
func (c *Command) Version() version.Tag {
	return Version
}

// Size returns PayloadSize.
func (c *Command) Size() int {
	return PayloadSize
}

// AppendPayload appends the id and status.
func (c *Command) AppendPayload(engine endian.EndianEngine, dst []byte) []byte {
	dst = c.Object.AppendPayload(engine, dst)
	dst = append(dst, byte(c.status))

	return append(dst, make([]byte, 7)...)
}

// ParsePayload restores the id and status.
func (c *Command) ParsePayload(engine endian.EndianEngine, src []byte) error {
	if len(src) < PayloadSize {
		return fmt.Errorf("%w: command payload needs %d bytes, got %d", errs.ErrInvalidPayloadSize, PayloadSize, len(src))
	}

	status, err := parseStatus(src[entity.ObjectSize])
	if err != nil {
		return err
	}

	if err := c.Object.ParsePayload(engine, src); err != nil {
		return err
	}
	c.status = status

	return nil
}

func parseStatus(b byte) (Status, error) {
	s := Status(b)
	if s > StatusSucceeded {
		return 0, fmt.Errorf("%w: unknown command status %d", errs.ErrInvalidPayloadSize, b)
	}

	return s, nil
}
