// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"io"

	"github.com/vireolabs/objectio/ioctx"
)

// Capability is a bitmask of the operations a backend supports.
type Capability uint32

const (
	// CapRead permits whole-object reads.
	CapRead Capability = 1 << iota
	// CapWrite permits full-object writes.
	CapWrite
	// CapDelete permits object deletion.
	CapDelete
	// CapList permits directory listing.
	CapList
	// CapStat permits metadata retrieval.
	CapStat
	// CapCreateDir permits explicit directory creation.
	CapCreateDir
	// CapRangeRead permits byte-range reads. Backends without it get
	// client-side range emulation from the operator.
	CapRangeRead
)

// Has tells whether c includes every capability in ops.
func (c Capability) Has(ops Capability) bool { return c&ops == ops }

// Capabilities is an immutable description of what one backend stack
// supports. It is fixed at accessor construction.
type Capabilities struct {
	// Ops is the set of supported operations.
	Ops Capability
	// MaxRequestSize bounds the size of a single write request, in
	// bytes. Zero means unbounded.
	MaxRequestSize int64
}

// ListOpts controls a list operation.
type ListOpts struct {
	// Recursive lists the full subtree under the directory rather than
	// its immediate children.
	Recursive bool
	// StartAfter resumes listing strictly after the given ID, in the
	// backend's listing order. The retry layer uses it to resume an
	// interrupted enumeration without replaying yielded entries.
	StartAfter ObjectID
}

// Accessor is the contract implemented by backend drivers and by
// middleware layers that wrap them. All IDs passed in are normalized;
// all errors returned carry a Kind from the errors package. Accessors
// must be safe for concurrent use.
type Accessor interface {
	// String returns a human-readable backend description for logs.
	String() string

	// Capabilities returns the backend's immutable capability set.
	Capabilities() Capabilities

	// Read opens the object for reading, restricted to the given byte
	// range. Backends without CapRangeRead may ignore r and return the
	// whole object. Reading a nonexistent object returns NotFound.
	Read(ctx context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error)

	// Write stores the full object content from src, replacing any
	// existing object under id. sizeHint is the expected length, or
	// SizeUnknown. The write is atomic: a failure leaves no partial
	// object visible.
	Write(ctx context.Context, id ObjectID, src io.Reader, sizeHint int64) (Metadata, error)

	// Delete removes the object. Deleting a nonexistent object is not
	// an error.
	Delete(ctx context.Context, id ObjectID) error

	// Stat returns the object's metadata, or NotFound.
	Stat(ctx context.Context, id ObjectID) (Metadata, error)

	// List enumerates the directory id. Errors, including an invalid
	// or missing prefix, are reported through the lister's Err.
	List(ctx context.Context, id ObjectID, opts ListOpts) Lister

	// CreateDir ensures the directory id exists. Creating an existing
	// directory is not an error.
	CreateDir(ctx context.Context, id ObjectID) error
}
