// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package compress provides convenience functions for creating
// compressors and uncompressors, picking the format from content magic
// bytes or from filename extensions. Gzip and zstd are supported.
package compress

import (
	"bytes"
	"io"
	"path"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// errorReader is a ReadCloser implementation that always returns the
// given error.
type errorReader struct{ err error }

func (r *errorReader) Read([]byte) (int, error) { return 0, r.err }
func (r *errorReader) Close() error             { return r.err }

func isGzipHeader(buf []byte) bool {
	if len(buf) < 10 {
		return false
	}
	if !(buf[0] == 0x1f && buf[1] == 0x8b) {
		return false
	}
	if !(buf[2] <= 3 || buf[2] == 8) {
		return false
	}
	if (buf[3] & 0xc0) != 0 {
		return false
	}
	return buf[9] <= 0xd || buf[9] == 0xff
}

func isZstdHeader(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return buf[0] == 0x28 && buf[1] == 0xb5 && buf[2] == 0x2f && buf[3] == 0xfd
}

// NewReader creates an uncompressing reader by reading the first few
// bytes of the input and looking for a gzip or zstd magic header. If
// one is found, it returns an uncompressing ReadCloser and true. Else
// it returns a passthrough reader and false.
//
// CAUTION: this function will misbehave when the input is a binary
// string that happens to start with a magic header. Use it only when
// the input is expected to be ASCII or known-compressed.
func NewReader(r io.Reader) (io.ReadCloser, bool) {
	buf := bytes.Buffer{}
	_, err := io.CopyN(&buf, r, 128)
	var m io.Reader
	switch err {
	case io.EOF:
		m = &buf
	case nil:
		m = io.MultiReader(&buf, r)
	default:
		m = io.MultiReader(&buf, &errorReader{err})
	}
	if isGzipHeader(buf.Bytes()) {
		z, err := gzip.NewReader(m)
		if err != nil {
			return &errorReader{err}, false
		}
		return z, true
	}
	if isZstdHeader(buf.Bytes()) {
		z, err := zstd.NewReader(m)
		if err != nil {
			return &errorReader{err}, false
		}
		return z.IOReadCloser(), true
	}
	return io.NopCloser(m), false
}

// NewReaderPath creates a reader that uncompresses data read from the
// given reader. The compression format is determined by the pathname
// extension:
//
//	.gz  => gzip format
//	.zst => zstd format
//
// For other extensions, this function returns nil.
//
// If the caller receives a non-nil reader from this function, it must
// close the reader after use; for some formats Close is the only place
// that reports corruption.
func NewReaderPath(r io.Reader, p string) io.ReadCloser {
	switch path.Ext(p) {
	case ".gz":
		z, err := gzip.NewReader(r)
		if err != nil {
			return &errorReader{err}
		}
		return z
	case ".zst":
		z, err := zstd.NewReader(r)
		if err != nil {
			return &errorReader{err}
		}
		return z.IOReadCloser()
	}
	return nil
}

// NewWriterPath creates a WriteCloser that compresses data written to
// it, in the format implied by the pathname extension (.gz or .zst).
// For other extensions it returns nil. The caller must close the
// returned writer to flush buffered data.
func NewWriterPath(w io.Writer, p string) io.WriteCloser {
	switch path.Ext(p) {
	case ".gz":
		return gzip.NewWriter(w)
	case ".zst":
		z, err := zstd.NewWriter(w)
		if err != nil {
			return &errorWriter{err}
		}
		return z
	}
	return nil
}

type errorWriter struct{ err error }

func (w *errorWriter) Write([]byte) (int, error) { return 0, w.err }
func (w *errorWriter) Close() error              { return w.err }
