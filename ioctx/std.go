// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ioctx

import (
	"context"
	"io"
)

type (
	stdReader struct{ io.Reader }
	stdWriter struct{ io.Writer }
	stdCloser struct{ io.Closer }
)

// FromStdReader wraps io.Reader as Reader.
func FromStdReader(r io.Reader) Reader { return stdReader{r} }

func (r stdReader) Read(_ context.Context, dst []byte) (n int, err error) {
	return r.Reader.Read(dst)
}

// FromStdWriter wraps io.Writer as Writer.
func FromStdWriter(w io.Writer) Writer { return stdWriter{w} }

func (w stdWriter) Write(_ context.Context, src []byte) (n int, err error) {
	return w.Writer.Write(src)
}

// FromStdCloser wraps io.Closer as Closer.
func FromStdCloser(c io.Closer) Closer { return stdCloser{c} }

func (c stdCloser) Close(context.Context) error { return c.Closer.Close() }

// FromStdReadCloser wraps io.ReadCloser as ReadCloser.
func FromStdReadCloser(rc io.ReadCloser) ReadCloser {
	return struct {
		Reader
		Closer
	}{FromStdReader(rc), FromStdCloser(rc)}
}

// NopCloser returns a ReadCloser with a no-op Close method wrapping r.
func NopCloser(r Reader) ReadCloser {
	return struct {
		Reader
		Closer
	}{r, nopCloser{}}
}

type nopCloser struct{}

func (nopCloser) Close(context.Context) error { return nil }

type toStdReadCloser struct {
	ctx context.Context
	rc  ReadCloser
}

// ToStdReadCloser binds ctx to rc, yielding a standard io.ReadCloser.
// The context is captured once; use it only for handoff to stdlib
// consumers whose call tree lives within the context's lifetime.
func ToStdReadCloser(ctx context.Context, rc ReadCloser) io.ReadCloser {
	return &toStdReadCloser{ctx, rc}
}

func (r *toStdReadCloser) Read(dst []byte) (int, error) { return r.rc.Read(r.ctx, dst) }
func (r *toStdReadCloser) Close() error                 { return r.rc.Close(r.ctx) }
