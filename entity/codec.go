package entity

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/internal/options"
	"github.com/arloliu/objbase/internal/pool"
	"github.com/arloliu/objbase/version"
)

// Codec encodes entities as version.Tag ++ payload records and decodes them back,
// refusing any record whose tag differs from the target type's tag.
//
// A Codec is immutable after construction and safe to share; the arenas it reads and
// writes are not.
type Codec struct {
	engine endian.EndianEngine
	logger logrus.FieldLogger
}

// CodecOption configures a Codec.
type CodecOption = options.Option[*Codec]

// WithByteOrder selects the byte order of encoded records. Little-endian is the default.
func WithByteOrder(order format.ByteOrder) CodecOption {
	return options.New(func(c *Codec) error {
		engine, err := endian.ForOrder(order)
		if err != nil {
			return err
		}
		c.engine = engine

		return nil
	})
}

// WithLogger sets the sink notified of every version mismatch.
func WithLogger(logger logrus.FieldLogger) CodecOption {
	return options.NoError(func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// NewCodec creates a codec. Without options it writes little-endian records and logs to
// a new logrus logger.
func NewCodec(opts ...CodecOption) (*Codec, error) {
	c := &Codec{
		engine: endian.GetLittleEndianEngine(),
		logger: logrus.New(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Engine returns the byte order engine used by the codec.
func (c *Codec) Engine() endian.EndianEngine {
	return c.engine
}

// ByteOrder returns the configured byte order.
func (c *Codec) ByteOrder() format.ByteOrder {
	return endian.OrderOf(c.engine)
}

// Logger returns the mismatch sink.
func (c *Codec) Logger() logrus.FieldLogger {
	return c.logger
}

// EncodedSize returns the record size of e: version.TagSize + e.Size().
func EncodedSize(e Entity) int {
	return version.TagSize + e.Size()
}

// AppendRecord appends the record of e to dst.
//
// Returns errs.ErrInvalidPayloadSize if the payload encoder wrote a different number of
// bytes than e.Size() declares.
func (c *Codec) AppendRecord(dst []byte, e Entity) ([]byte, error) {
	start := len(dst)
	dst = e.Version().AppendTo(c.engine, dst)
	dst = e.AppendPayload(c.engine, dst)

	if got := len(dst) - start - version.TagSize; got != e.Size() {
		return dst[:start], fmt.Errorf("%w: entity %s wrote %d bytes, declares %d",
			errs.ErrInvalidPayloadSize, e.ID(), got, e.Size())
	}

	return dst, nil
}

// Marshal returns the record of e in a new slice.
func (c *Codec) Marshal(e Entity) ([]byte, error) {
	return c.AppendRecord(make([]byte, 0, EncodedSize(e)), e)
}

// Unmarshal decodes a single record into e. Data must hold exactly one record of e's
// type; e is left untouched on any error.
func (c *Codec) Unmarshal(data []byte, e Entity) error {
	size := EncodedSize(e)
	if len(data) < version.TagSize {
		return fmt.Errorf("%w: record needs %d bytes, got %d", errs.ErrInsufficientData, size, len(data))
	}

	// A record of another type usually has another size too; the tag says which.
	if err := c.checkTag(data[:version.TagSize], e); err != nil {
		return err
	}

	if len(data) < size {
		return fmt.Errorf("%w: record needs %d bytes, got %d", errs.ErrInsufficientData, size, len(data))
	}
	if len(data) > size {
		return fmt.Errorf("%w: record is %d bytes, %s expects %d",
			errs.ErrInvalidPayloadSize, len(data), e.Version(), size)
	}

	return e.ParsePayload(c.engine, data[version.TagSize:])
}

// Encode writes the record of e to a as one entry and returns its offset.
func (c *Codec) Encode(a *arena.Arena, e Entity) (int, error) {
	bb := pool.GetScratch()
	defer pool.PutScratch(bb)

	rec, err := c.AppendRecord(bb.B[:0], e)
	bb.B = rec
	if err != nil {
		return 0, err
	}

	return a.Write(rec), nil
}

// DecodeAt decodes the record starting at offset into e.
//
// The tag is read and checked first; on mismatch the sink is notified and
// errs.ErrVersionMismatch is returned without reading the payload. e is only modified
// when the whole record decodes, and the read cursor only moves past a record starting
// at the cursor once it decoded.
func (c *Codec) DecodeAt(a *arena.Arena, offset int, e Entity) error {
	size := EncodedSize(e)

	bb := pool.GetScratch()
	defer pool.PutScratch(bb)
	bb.Grow(size)
	buf := bb.B[:size]

	if err := a.Peek(buf[:version.TagSize], offset, version.TagSize); err != nil {
		return fmt.Errorf("reading version tag at offset %d: %w", offset, err)
	}

	if err := c.checkTag(buf[:version.TagSize], e); err != nil {
		return err
	}

	if err := a.Peek(buf[version.TagSize:], offset+version.TagSize, e.Size()); err != nil {
		return fmt.Errorf("reading payload at offset %d: %w", offset+version.TagSize, err)
	}

	if err := e.ParsePayload(c.engine, buf[version.TagSize:]); err != nil {
		return err
	}

	if offset == a.ReadCursor() {
		return a.Seek(offset + size)
	}

	return nil
}

// DecodeNext decodes the record at the arena's read cursor into e and advances past it.
func (c *Codec) DecodeNext(a *arena.Arena, e Entity) error {
	return c.DecodeAt(a, a.ReadCursor(), e)
}

func (c *Codec) checkTag(data []byte, e Entity) error {
	expected := e.Version()

	actual, err := version.Check(c.engine, data, expected)
	if err == nil {
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"expected":  expected.String(),
		"actual":    actual.String(),
		"entity_id": e.ID().String(),
	}).Error("refusing entity record with mismatched version tag")

	return err
}
