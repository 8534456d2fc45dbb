// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
)

// Operator is the public entry point for all data access. It owns an
// accessor stack, normalizes caller paths, gates every operation on
// the backend capability set, and guarantees that every error carries
// a Kind, an operation, and a path. Operators are immutable after New
// and safe for concurrent use.
type Operator struct {
	acc  Accessor
	caps Capabilities
}

// Option configures an Operator.
type Option func(*options)

type options struct {
	retry *RetryPolicy
}

// WithRetry layers retry behavior with the given policy over the
// backend.
func WithRetry(policy RetryPolicy) Option {
	return func(o *options) { o.retry = &policy }
}

// New builds an Operator over acc. Options are applied in order; the
// resulting layer stack is fixed for the operator's lifetime.
func New(acc Accessor, opts ...Option) *Operator {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.retry != nil {
		acc = NewRetrying(acc, *o.retry)
	}
	return &Operator{acc: acc, caps: acc.Capabilities()}
}

// String describes the operator's backend stack.
func (o *Operator) String() string { return fmt.Sprintf("operator(%s)", o.acc) }

// Capabilities returns the backend stack's capability set.
func (o *Operator) Capabilities() Capabilities { return o.caps }

func (o *Operator) gate(op errors.Op, path string, need Capability) error {
	if !o.caps.Ops.Has(need) {
		return errors.E(op, errors.Path(path), errors.Unsupported,
			fmt.Sprintf("operation not supported by %s", o.acc))
	}
	return nil
}

func (o *Operator) begin(op string) func(*error) {
	countOp(op)
	start := time.Now()
	return func(err *error) {
		observeOp(op, time.Since(start).Seconds())
		countError(op, *err)
	}
}

// Read opens the object at path for reading from start to end.
func (o *Operator) Read(ctx context.Context, path string) (ioctx.ReadCloser, error) {
	return o.read(ctx, path, Whole)
}

// ReadRange opens a byte window of the object at path: length bytes
// starting at offset. length may be LenToEnd. If the backend lacks
// native range reads the window is emulated client side.
func (o *Operator) ReadRange(ctx context.Context, path string, offset, length int64) (ioctx.ReadCloser, error) {
	return o.read(ctx, path, Range{Off: offset, Len: length})
}

func (o *Operator) read(ctx context.Context, path string, r Range) (rc ioctx.ReadCloser, err error) {
	const op = "read"
	done := o.begin(op)
	defer func() { done(&err) }()
	id, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	if err = o.gate(op, string(id), CapRead); err != nil {
		return nil, err
	}
	if err = r.Validate(); err != nil {
		return nil, errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	if r.IsWhole() || o.caps.Ops.Has(CapRangeRead) {
		rc, err = o.acc.Read(ctx, id, r)
	} else {
		rc, err = o.acc.Read(ctx, id, Whole)
		if err == nil {
			rc = newWindowReader(rc, r.Off, r.Len)
		}
	}
	if err != nil {
		return nil, errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	return rc, nil
}

// Write stores the full content of src as the object at path,
// replacing any existing object. sizeHint is the expected length in
// bytes, or SizeUnknown; backends use it to pick an upload strategy
// and to enforce request-size limits.
func (o *Operator) Write(ctx context.Context, path string, src io.Reader, sizeHint int64) (meta Metadata, err error) {
	const op = "write"
	done := o.begin(op)
	defer func() { done(&err) }()
	id, err := Normalize(path)
	if err != nil {
		return Metadata{}, err
	}
	if err = o.gate(op, string(id), CapWrite); err != nil {
		return Metadata{}, err
	}
	if id.IsDir() {
		return Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), errors.InvalidInput,
			"cannot write object content to a directory path")
	}
	if max := o.caps.MaxRequestSize; max > 0 && sizeHint > max {
		return Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), errors.InvalidInput,
			fmt.Sprintf("object size %d exceeds backend request limit %d", sizeHint, max))
	}
	meta, err = o.acc.Write(ctx, id, src, sizeHint)
	if err != nil {
		return Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	return meta, nil
}

// Delete removes the object at path. Deleting a nonexistent object
// succeeds.
func (o *Operator) Delete(ctx context.Context, path string) (err error) {
	const op = "delete"
	done := o.begin(op)
	defer func() { done(&err) }()
	id, err := Normalize(path)
	if err != nil {
		return err
	}
	if err = o.gate(op, string(id), CapDelete); err != nil {
		return err
	}
	if err = o.acc.Delete(ctx, id); err != nil {
		return errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	return nil
}

// Stat returns the metadata of the object at path.
func (o *Operator) Stat(ctx context.Context, path string) (meta Metadata, err error) {
	const op = "stat"
	done := o.begin(op)
	defer func() { done(&err) }()
	id, err := Normalize(path)
	if err != nil {
		return Metadata{}, err
	}
	if err = o.gate(op, string(id), CapStat); err != nil {
		return Metadata{}, err
	}
	meta, err = o.acc.Stat(ctx, id)
	if err != nil {
		return Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	return meta, nil
}

// CreateDir ensures a directory exists at path. A path without a
// trailing separator is treated as a directory.
func (o *Operator) CreateDir(ctx context.Context, path string) (err error) {
	const op = "create-dir"
	done := o.begin(op)
	defer func() { done(&err) }()
	id, err := Normalize(path)
	if err != nil {
		return err
	}
	if err = o.gate(op, string(id), CapCreateDir); err != nil {
		return err
	}
	if err = o.acc.CreateDir(ctx, id.AsDir()); err != nil {
		return errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	return nil
}

// List enumerates the directory at path. A path without a trailing
// separator is treated as a directory. Errors, including normalization
// failures, surface through the returned lister's Err.
func (o *Operator) List(ctx context.Context, path string, opts ...ListOpts) Lister {
	const op = "list"
	countOp(op)
	var lo ListOpts
	if len(opts) > 0 {
		lo = opts[0]
	}
	id, err := Normalize(path)
	if err != nil {
		countError(op, err)
		return ErrLister(err)
	}
	if err := o.gate(op, string(id), CapList); err != nil {
		countError(op, err)
		return ErrLister(err)
	}
	return &opLister{op: op, id: id, inner: o.acc.List(ctx, id.AsDir(), lo)}
}

// opLister stamps operation and path onto listing errors and feeds the
// error metric.
type opLister struct {
	op    string
	id    ObjectID
	inner Lister
	err   error
}

func (l *opLister) Scan() bool {
	if l.err != nil {
		return false
	}
	if l.inner.Scan() {
		return true
	}
	if err := l.inner.Err(); err != nil {
		l.err = errors.E(errors.Op(l.op), errors.Path(string(l.id)), err)
		countError(l.op, l.err)
	}
	return false
}

func (l *opLister) Entry() DirEntry { return l.inner.Entry() }
func (l *opLister) Err() error      { return l.err }
