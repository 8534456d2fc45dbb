// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/vireolabs/objectio/compress"
	"github.com/vireolabs/objectio/ioctx"
)

// ReadFile returns the full content of the object at path.
func (o *Operator) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rc, err := o.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close(ctx) // nolint: errcheck
	return io.ReadAll(ioctx.ToStdReadCloser(ctx, rc))
}

// WriteFile stores data as the object at path.
func (o *Operator) WriteFile(ctx context.Context, path string, data []byte) (Metadata, error) {
	return o.Write(ctx, path, bytes.NewReader(data), int64(len(data)))
}

// ReadCompressed opens the object at path and transparently
// decompresses it when the content is gzip or zstd, detected by magic
// bytes. Uncompressed content is passed through unchanged.
func (o *Operator) ReadCompressed(ctx context.Context, path string) (ioctx.ReadCloser, error) {
	rc, err := o.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	dec, _ := compress.NewReader(ioctx.ToStdReadCloser(ctx, rc))
	return &decompressReader{dec: dec, rc: rc}, nil
}

type decompressReader struct {
	dec io.ReadCloser
	rc  ioctx.ReadCloser
}

func (r *decompressReader) Read(_ context.Context, p []byte) (int, error) {
	return r.dec.Read(p)
}

func (r *decompressReader) Close(ctx context.Context) error {
	err := r.dec.Close()
	if cerr := r.rc.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// removeAllParallelism bounds concurrent deletes in RemoveAll.
const removeAllParallelism = 16

// RemoveAll deletes the object or directory subtree at path. Files are
// deleted concurrently; directory markers afterwards, children before
// parents. A missing path is not an error.
func (o *Operator) RemoveAll(ctx context.Context, path string) error {
	id, err := Normalize(path)
	if err != nil {
		return err
	}
	if !id.IsDir() {
		return o.Delete(ctx, path)
	}
	var files, dirs []ObjectID
	l := o.List(ctx, string(id), ListOpts{Recursive: true})
	for l.Scan() {
		e := l.Entry()
		if e.Meta.IsDir {
			dirs = append(dirs, e.ID)
		} else {
			files = append(files, e.ID)
		}
	}
	if err := l.Err(); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(removeAllParallelism)
	for _, f := range files {
		f := f
		g.Go(func() error {
			return o.Delete(gctx, string(f))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Children list after their parents in listing order, so delete
	// markers in reverse.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := o.Delete(ctx, string(dirs[i])); err != nil {
			return err
		}
	}
	if id != "" {
		return o.Delete(ctx, string(id))
	}
	return nil
}
