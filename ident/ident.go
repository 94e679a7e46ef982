// Package ident defines the identifier and hash types carried by every entity.
package ident

import "strconv"

// ID identifies an entity within the scope of one identity cache.
type ID int64

// Hash is the cheap pre-filter compared before a full payload comparison.
type Hash uint64

// NullID marks an entity whose id has not been assigned yet.
const NullID ID = 0

// IsNull reports whether the id is the unassigned sentinel.
func (id ID) IsNull() bool {
	return id == NullID
}

func (id ID) String() string {
	if id == NullID {
		return "null"
	}

	return strconv.FormatInt(int64(id), 10)
}
