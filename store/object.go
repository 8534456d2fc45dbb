// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"fmt"
	"time"

	"github.com/vireolabs/objectio/errors"
)

// ObjectID is a normalized path uniquely identifying an addressable
// unit within one backend namespace. IDs are produced by Normalize and
// are immutable. An ID has no relative segments and no repeated
// separators; it ends in "/" if and only if it denotes a directory.
// The empty ID is the root and is a directory.
type ObjectID string

// String implements fmt.Stringer.
func (id ObjectID) String() string { return string(id) }

// IsDir tells whether the ID denotes a directory.
func (id ObjectID) IsDir() bool {
	return id == "" || id[len(id)-1] == '/'
}

// AsDir returns the directory form of the ID, appending the trailing
// separator if absent.
func (id ObjectID) AsDir() ObjectID {
	if id.IsDir() {
		return id
	}
	return id + "/"
}

// SizeUnknown is the Metadata.Size value for backends that cannot
// report an object's length.
const SizeUnknown = int64(-1)

// Metadata describes one object. It is produced by stat and list
// operations and never mutated afterwards; a new Metadata replaces an
// old one.
type Metadata struct {
	// Size is the object length in bytes, or SizeUnknown.
	Size int64
	// ModTime is the last-modified time, or the zero time if unknown.
	ModTime time.Time
	// ETag is an opaque content hash, if the backend provides one.
	ETag string
	// ContentType is the object's media type, if known.
	ContentType string
	// IsDir tells whether the object is a directory marker.
	IsDir bool
}

// DirEntry is one listing result, pairing an ObjectID with its
// (possibly partially populated) Metadata. More hints whether the
// lister has further entries after this one.
type DirEntry struct {
	ID   ObjectID
	Meta Metadata
	More bool
}

// LenToEnd is the Range.Len value denoting "until end of object".
const LenToEnd = int64(-1)

// Range selects a byte window of an object: Len bytes starting at Off.
// Len == LenToEnd selects everything from Off to the end. The zero
// Range is not meaningful; use Whole for an unranged read.
type Range struct {
	Off int64
	Len int64
}

// Whole selects the entire object.
var Whole = Range{Off: 0, Len: LenToEnd}

// IsWhole tells whether the range selects the entire object.
func (r Range) IsWhole() bool { return r.Off == 0 && r.Len == LenToEnd }

// Validate checks the range for well-formedness.
func (r Range) Validate() error {
	if r.Off < 0 || r.Len < LenToEnd {
		return errors.E(errors.InvalidInput, fmt.Sprintf("malformed byte range (off=%d, len=%d)", r.Off, r.Len))
	}
	return nil
}

func (r Range) String() string {
	if r.IsWhole() {
		return "[:]"
	}
	if r.Len == LenToEnd {
		return fmt.Sprintf("[%d:]", r.Off)
	}
	return fmt.Sprintf("[%d:%d]", r.Off, r.Off+r.Len)
}
