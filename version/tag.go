// Package version defines the compatibility stamp written in front of every persisted
// entity.
//
// A Tag carries three interface-version numbers and an id. Every entity type owns one
// static Tag; the codec writes it before the payload and, on decode, compares the tag
// found in the data against the type's tag before the payload is trusted. There is no
// negotiation between versions: any difference is a fatal errs.ErrVersionMismatch.
//
// # Wire Layout
//
// A tag always occupies TagSize (16) bytes, using the codec's byte order:
//
//	offset 0-1   Public    int16
//	offset 2-3   Protected int16
//	offset 4-5   Private   int16
//	offset 6-7   reserved, zero (natural alignment of the id)
//	offset 8-15  ID        int64
package version

import (
	"fmt"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
)

const (
	// TagSize is the encoded size of a Tag in bytes.
	TagSize = 16

	// NullVersion is the sentinel for an unset version number.
	NullVersion int16 = -1
)

// Tag is the four-field compatibility stamp of an entity type.
type Tag struct {
	Public    int16
	Protected int16
	Private   int16
	ID        ident.ID
}

// New returns a tag with the given version numbers and a null id.
func New(public, protected, private int16) Tag {
	return Tag{
		Public:    public,
		Protected: protected,
		Private:   private,
		ID:        ident.NullID,
	}
}

// Null returns the tag with every field set to its sentinel.
func Null() Tag {
	return New(NullVersion, NullVersion, NullVersion)
}

// WithID returns a copy of t carrying id.
func (t Tag) WithID(id ident.ID) Tag {
	t.ID = id
	return t
}

// IsNull reports whether all version numbers are unset.
func (t Tag) IsNull() bool {
	return t.Public == NullVersion && t.Protected == NullVersion && t.Private == NullVersion
}

// Equal reports whether all four fields match, including the id.
func (t Tag) Equal(other Tag) bool {
	return t == other
}

// Compatible compares only the three version numbers and ignores the id.
func (t Tag) Compatible(other Tag) bool {
	return t.Public == other.Public && t.Protected == other.Protected && t.Private == other.Private
}

// AppendTo appends the 16-byte encoding of t to dst.
func (t Tag) AppendTo(engine endian.EndianEngine, dst []byte) []byte {
	dst = endian.AppendInt16(engine, dst, t.Public)
	dst = endian.AppendInt16(engine, dst, t.Protected)
	dst = endian.AppendInt16(engine, dst, t.Private)
	dst = append(dst, 0, 0)
	dst = endian.AppendInt64(engine, dst, int64(t.ID))

	return dst
}

// Parse decodes a tag from the first TagSize bytes of data.
//
// Returns errs.ErrInvalidTagSize if data is shorter than TagSize.
func Parse(engine endian.EndianEngine, data []byte) (Tag, error) {
	if len(data) < TagSize {
		return Tag{}, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrInvalidTagSize, TagSize, len(data))
	}

	return Tag{
		Public:    endian.Int16(engine, data[0:2]),
		Protected: endian.Int16(engine, data[2:4]),
		Private:   endian.Int16(engine, data[4:6]),
		ID:        ident.ID(endian.Int64(engine, data[8:16])),
	}, nil
}

// Check parses the tag at the start of data and compares it with expected.
// A difference is reported as errs.ErrVersionMismatch; the parsed tag is returned either
// way so callers can log it.
func Check(engine endian.EndianEngine, data []byte, expected Tag) (Tag, error) {
	actual, err := Parse(engine, data)
	if err != nil {
		return actual, err
	}

	if !actual.Equal(expected) {
		return actual, fmt.Errorf("%w: expected %s, got %s", errs.ErrVersionMismatch, expected, actual)
	}

	return actual, nil
}

func (t Tag) String() string {
	return fmt.Sprintf("v%d.%d.%d#%s", t.Public, t.Protected, t.Private, t.ID)
}
