// Package entity defines the identity-bearing, versioned record that every persisted
// objbase type is built on, together with the binary codec that moves it in and out of
// an arena.
//
// # Payloads
//
// Each concrete type exposes its fixed-size field block through the Payload capability:
// Size reports the block length, AppendPayload encodes it and ParsePayload decodes it.
// The block must hold plain values only, and it must include every field that takes part
// in equality, because Equal compares encoded payloads byte for byte.
//
// Concrete types embed Object, whose payload is exactly the entity id, and extend it:
//
//	type Counter struct {
//	    entity.Object
//	    Value int64
//	}
//
//	func (c *Counter) Version() version.Tag { return counterVersion }
//	func (c *Counter) Size() int            { return entity.ObjectSize + 8 }
//
//	func (c *Counter) AppendPayload(e endian.EndianEngine, dst []byte) []byte {
//	    dst = c.Object.AppendPayload(e, dst)
//	    return endian.AppendInt64(e, dst, c.Value)
//	}
//
// # Records
//
// On the wire an entity is its type's version.Tag followed by its payload, with no
// length prefix and no schema. A reader must know the concrete type up front; the
// record size is always version.TagSize + Size().
package entity

import (
	"fmt"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/errs"
	"github.com/arloliu/objbase/ident"
	"github.com/arloliu/objbase/internal/hash"
	"github.com/arloliu/objbase/version"
)

// ObjectSize is the payload size of the base Object: one int64 id.
const ObjectSize = 8

// ObjectVersion is the static tag of the base Object type.
var ObjectVersion = version.New(1, 0, 0)

// Payload exposes a fixed-size byte view of a type's semantic fields.
type Payload interface {
	// Size returns the fixed payload length in bytes.
	Size() int
	// AppendPayload appends exactly Size() bytes to dst.
	AppendPayload(engine endian.EndianEngine, dst []byte) []byte
	// ParsePayload decodes the payload from src, which holds exactly Size() bytes.
	ParsePayload(engine endian.EndianEngine, src []byte) error
}

// Entity is an identity-bearing record with a binary codec.
type Entity interface {
	Payload

	// ID returns the entity id, or ident.NullID if none was assigned.
	ID() ident.ID
	// Hash returns the equality pre-filter. Types with a composite natural key must widen
	// it consistently with their payload, see KeyHash.
	Hash() ident.Hash
	// Version returns the static tag of the concrete type.
	Version() version.Tag
}

// ObjectData is the payload block of Object.
type ObjectData struct {
	ID ident.ID
}

// Object is the embeddable base entity. Its payload is the id alone.
type Object struct {
	data ObjectData
}

var _ Entity = (*Object)(nil)

// NewObject returns an Object with the given id.
func NewObject(id ident.ID) Object {
	return Object{data: ObjectData{ID: id}}
}

// ID returns the entity id.
func (o *Object) ID() ident.ID {
	return o.data.ID
}

// Hash returns the id as the equality pre-filter.
func (o *Object) Hash() ident.Hash {
	return ident.Hash(o.data.ID)
}

// Version returns ObjectVersion. Embedding types override it.
func (o *Object) Version() version.Tag {
	return ObjectVersion
}

// Data returns a copy of the payload block.
func (o *Object) Data() ObjectData {
	return o.data
}

// Initialize replaces the payload block. It never fails for Object; the error return is
// kept so embedding types can validate their own blocks through the same shape.
func (o *Object) Initialize(data ObjectData) error {
	o.data = data
	return nil
}

// Size returns ObjectSize.
func (o *Object) Size() int {
	return ObjectSize
}

// AppendPayload appends the id.
func (o *Object) AppendPayload(engine endian.EndianEngine, dst []byte) []byte {
	return endian.AppendInt64(engine, dst, int64(o.data.ID))
}

// ParsePayload reads the id from the first ObjectSize bytes of src.
func (o *Object) ParsePayload(engine endian.EndianEngine, src []byte) error {
	if len(src) < ObjectSize {
		return fmt.Errorf("%w: object payload needs %d bytes, got %d", errs.ErrInvalidPayloadSize, ObjectSize, len(src))
	}

	o.data.ID = ident.ID(endian.Int64(engine, src[:ObjectSize]))

	return nil
}

// KeyHash builds an equality pre-filter from the parts of a composite natural key.
func KeyHash(parts ...[]byte) ident.Hash {
	return ident.Hash(hash.Parts(parts...))
}
