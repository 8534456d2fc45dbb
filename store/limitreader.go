// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"fmt"
	"io"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
)

// NewLimitedReader restricts rc to a byte window: it discards the
// first offset bytes of the underlying stream and then produces at
// most length bytes before reporting io.EOF. Negative offset or length
// is an InvalidInput error. If the underlying stream ends before the
// window is filled, the reader ends early; it never errors on a short
// window.
//
// The operator uses it to emulate range reads over backends without
// CapRangeRead.
func NewLimitedReader(rc ioctx.ReadCloser, offset, length int64) (ioctx.ReadCloser, error) {
	if offset < 0 || length < 0 {
		return nil, errors.E(errors.InvalidInput,
			fmt.Sprintf("limited reader: negative window (offset=%d, length=%d)", offset, length))
	}
	return newWindowReader(rc, offset, length), nil
}

// newWindowReader is the unvalidated form; length == LenToEnd means
// unbounded after offset.
func newWindowReader(rc ioctx.ReadCloser, offset, length int64) ioctx.ReadCloser {
	return &windowReader{rc: rc, skip: offset, remain: length}
}

type windowReader struct {
	rc     ioctx.ReadCloser
	skip   int64
	remain int64 // LenToEnd means unbounded
}

func (r *windowReader) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// Consume the leading skip region using p as scratch space.
	for r.skip > 0 {
		buf := p
		if int64(len(buf)) > r.skip {
			buf = buf[:r.skip]
		}
		n, err := r.rc.Read(ctx, buf)
		r.skip -= int64(n)
		if err != nil {
			return 0, err
		}
	}
	if r.remain == 0 {
		return 0, io.EOF
	}
	if r.remain > 0 && int64(len(p)) > r.remain {
		p = p[:r.remain]
	}
	n, err := r.rc.Read(ctx, p)
	if r.remain > 0 {
		r.remain -= int64(n)
	}
	return n, err
}

func (r *windowReader) Close(ctx context.Context) error {
	return r.rc.Close(ctx)
}
