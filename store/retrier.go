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
	"github.com/vireolabs/objectio/log"
	"github.com/vireolabs/objectio/retry"
)

// RetryPolicy configures the retry layer: how many times an operation
// may be invoked in total and how the delays between attempts grow.
type RetryPolicy struct {
	// MaxAttempts bounds the total number of backend invocations per
	// logical operation, the first attempt included. Values below 1
	// are treated as 1.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponentially growing delay.
	MaxDelay time.Duration
	// Jitter randomizes each delay within [delay/2, delay] to avoid
	// retry synchronization across clients.
	Jitter bool
}

// DefaultRetryPolicy is a sensible policy for interactive use.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 4,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    30 * time.Second,
	Jitter:      true,
}

func (p RetryPolicy) compile() retry.Policy {
	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	max := p.MaxDelay
	if max < base {
		max = base
	}
	policy := retry.Backoff(base, max, 2)
	if p.Jitter {
		policy = retry.Jitter(policy, 0.5)
	}
	return policy
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// NewRetrying wraps inner so that operations failing with a retryable
// kind (RateLimited, Unavailable) are re-invoked under policy. All
// other kinds pass through on the first failure. The wrapper preserves
// inner's capability set.
//
// Reads are restartable mid-stream: if the backend supports range
// reads, a retryable failure partway through a stream reopens the
// object at the first unconsumed offset. Writes are retried only when
// src is an io.Seeker that can be rewound; a retryable failure on a
// non-rewindable stream is surfaced as Unexpected and not retried.
// Listings resume after the last yielded entry.
func NewRetrying(inner Accessor, policy RetryPolicy) Accessor {
	return &retryAccessor{
		inner:    inner,
		policy:   policy,
		compiled: policy.compile(),
	}
}

type retryAccessor struct {
	inner    Accessor
	policy   RetryPolicy
	compiled retry.Policy
}

func (a *retryAccessor) String() string {
	return fmt.Sprintf("retry(%s)", a.inner)
}

func (a *retryAccessor) Capabilities() Capabilities { return a.inner.Capabilities() }

// do runs f under the retry policy. It returns f's last error; backoff
// is abandoned immediately when ctx is done.
func (a *retryAccessor) do(ctx context.Context, op string, id ObjectID, f func() error) error {
	for n := 0; ; n++ {
		err := f()
		if err == nil || !errors.Retryable(err) {
			return err
		}
		if n+1 >= a.policy.attempts() {
			return err
		}
		if werr := retry.Wait(ctx, a.compiled, n); werr != nil {
			return err
		}
		countRetry(op)
		log.Printf("%s %s: retrying after transient error: %v", op, id, err)
	}
}

func (a *retryAccessor) Read(ctx context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error) {
	var rc ioctx.ReadCloser
	err := a.do(ctx, "read", id, func() (err error) {
		rc, err = a.inner.Read(ctx, id, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !a.inner.Capabilities().Ops.Has(CapRangeRead) {
		// Without range reads a reopened stream restarts at byte zero,
		// so mid-stream failures cannot be resumed transparently.
		return rc, nil
	}
	return &retryReader{a: a, id: id, want: r, rc: rc}, nil
}

// retryReader transparently reopens a ranged read at the first
// unconsumed offset after a retryable mid-stream failure.
type retryReader struct {
	a        *retryAccessor
	id       ObjectID
	want     Range
	rc       ioctx.ReadCloser
	consumed int64
}

func (r *retryReader) Read(ctx context.Context, p []byte) (int, error) {
	for n := 0; ; n++ {
		m, err := r.rc.Read(ctx, p)
		r.consumed += int64(m)
		if err == nil || err == io.EOF || !errors.Retryable(err) {
			return m, err
		}
		if m > 0 {
			// Deliver what we have; the failure resurfaces on the next
			// call if it persists.
			return m, nil
		}
		if n+1 >= r.a.policy.attempts() {
			return 0, err
		}
		if werr := retry.Wait(ctx, r.a.compiled, n); werr != nil {
			return 0, err
		}
		countRetry("read")
		log.Printf("read %s: restarting stream at offset %d: %v", r.id, r.want.Off+r.consumed, err)
		_ = r.rc.Close(ctx)
		rest := Range{Off: r.want.Off + r.consumed, Len: LenToEnd}
		if r.want.Len != LenToEnd {
			rest.Len = r.want.Len - r.consumed
		}
		rc, oerr := r.a.inner.Read(ctx, r.id, rest)
		if oerr != nil {
			if errors.Retryable(oerr) {
				r.rc = brokenReader{oerr}
				continue
			}
			return 0, oerr
		}
		r.rc = rc
	}
}

func (r *retryReader) Close(ctx context.Context) error { return r.rc.Close(ctx) }

// brokenReader stands in for a stream whose reopen failed, so the
// attempt loop can keep counting against the same budget.
type brokenReader struct{ err error }

func (b brokenReader) Read(context.Context, []byte) (int, error) { return 0, b.err }
func (b brokenReader) Close(context.Context) error               { return nil }

func (a *retryAccessor) Write(ctx context.Context, id ObjectID, src io.Reader, sizeHint int64) (Metadata, error) {
	seeker, rewindable := src.(io.Seeker)
	for n := 0; ; n++ {
		meta, err := a.inner.Write(ctx, id, src, sizeHint)
		if err == nil || !errors.Retryable(err) {
			return meta, err
		}
		if !rewindable {
			// The stream may be partially consumed and cannot be
			// replayed; retrying would corrupt the object.
			return Metadata{}, errors.E(errors.Unexpected, errors.Op("write"), errors.Path(string(id)),
				fmt.Sprintf("transient failure on non-rewindable stream, not retried: %v", err))
		}
		if n+1 >= a.policy.attempts() {
			return Metadata{}, err
		}
		if werr := retry.Wait(ctx, a.compiled, n); werr != nil {
			return Metadata{}, err
		}
		if _, serr := seeker.Seek(0, io.SeekStart); serr != nil {
			return Metadata{}, errors.E(errors.Unexpected, errors.Op("write"), errors.Path(string(id)),
				fmt.Sprintf("cannot rewind stream for retry: %v", serr))
		}
		countRetry("write")
		log.Printf("write %s: retrying after transient error: %v", id, err)
	}
}

func (a *retryAccessor) Delete(ctx context.Context, id ObjectID) error {
	return a.do(ctx, "delete", id, func() error {
		return a.inner.Delete(ctx, id)
	})
}

func (a *retryAccessor) Stat(ctx context.Context, id ObjectID) (Metadata, error) {
	var meta Metadata
	err := a.do(ctx, "stat", id, func() (err error) {
		meta, err = a.inner.Stat(ctx, id)
		return err
	})
	return meta, err
}

func (a *retryAccessor) List(ctx context.Context, id ObjectID, opts ListOpts) Lister {
	return &retryLister{
		a:      a,
		ctx:    ctx,
		id:     id,
		opts:   opts,
		lister: a.inner.List(ctx, id, opts),
	}
}

func (a *retryAccessor) CreateDir(ctx context.Context, id ObjectID) error {
	return a.do(ctx, "create-dir", id, func() error {
		return a.inner.CreateDir(ctx, id)
	})
}

// retryLister resumes an interrupted enumeration strictly after the
// last entry it yielded, so consumers never observe duplicates.
type retryLister struct {
	a    *retryAccessor
	ctx  context.Context
	id   ObjectID
	opts ListOpts

	lister   Lister
	entry    DirEntry
	err      error
	last     ObjectID
	yielded  bool
	failures int
}

func (l *retryLister) Scan() bool {
	if l.err != nil {
		return false
	}
	for {
		if l.lister.Scan() {
			l.entry = l.lister.Entry()
			l.last, l.yielded = l.entry.ID, true
			return true
		}
		err := l.lister.Err()
		if err == nil || !errors.Retryable(err) {
			l.err = err
			return false
		}
		l.failures++
		if l.failures+1 > l.a.policy.attempts() {
			l.err = err
			return false
		}
		if werr := retry.Wait(l.ctx, l.a.compiled, l.failures-1); werr != nil {
			l.err = err
			return false
		}
		countRetry("list")
		log.Printf("list %s: resuming after %q: %v", l.id, l.last, err)
		opts := l.opts
		if l.yielded {
			opts.StartAfter = l.last
		}
		l.lister = l.a.inner.List(l.ctx, l.id, opts)
	}
}

func (l *retryLister) Entry() DirEntry { return l.entry }
func (l *retryLister) Err() error      { return l.err }
