// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ioctx adds context.Context to io APIs. Every read from a
// storage backend is a potential suspend point, so streams carry the
// caller's context to each call rather than capturing one at
// construction.
package ioctx

import "context"

// Reader is io.Reader with context added.
type Reader interface {
	Read(context.Context, []byte) (n int, err error)
}

// Writer is io.Writer with context added.
type Writer interface {
	Write(context.Context, []byte) (n int, err error)
}

// Closer is io.Closer with context added.
type Closer interface {
	Close(context.Context) error
}

// Seeker is io.Seeker with context added.
type Seeker interface {
	Seek(_ context.Context, offset int64, whence int) (int64, error)
}

// ReadCloser is io.ReadCloser with context added.
type ReadCloser interface {
	Reader
	Closer
}

// WriteCloser is io.WriteCloser with context added.
type WriteCloser interface {
	Writer
	Closer
}

// ReadSeeker is io.ReadSeeker with context added.
type ReadSeeker interface {
	Reader
	Seeker
}
