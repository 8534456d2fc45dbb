// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
)

var testRetryPolicy = RetryPolicy{
	MaxAttempts: 4,
	BaseDelay:   time.Microsecond,
	MaxDelay:    time.Millisecond,
}

// flakyAccessor delegates to an in-memory accessor but fails each
// operation with a scripted error until its failure budget for that
// operation is spent. It counts invocations per operation.
type flakyAccessor struct {
	inner    Accessor
	caps     Capabilities
	calls    map[string]int
	failures map[string]int
	failErr  error
}

func newFlakyAccessor() *flakyAccessor {
	inner := NewMemAccessor()
	return &flakyAccessor{
		inner:    inner,
		caps:     inner.Capabilities(),
		calls:    map[string]int{},
		failures: map[string]int{},
		failErr:  errors.E(errors.Unavailable, "backend degraded"),
	}
}

func (a *flakyAccessor) failNext(op string, n int) { a.failures[op] = n }

func (a *flakyAccessor) shouldFail(op string) bool {
	a.calls[op]++
	if a.failures[op] > 0 {
		a.failures[op]--
		return true
	}
	return false
}

func (a *flakyAccessor) String() string             { return "flaky" }
func (a *flakyAccessor) Capabilities() Capabilities { return a.caps }

func (a *flakyAccessor) Read(ctx context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error) {
	if a.shouldFail("read") {
		return nil, a.failErr
	}
	return a.inner.Read(ctx, id, r)
}

func (a *flakyAccessor) Write(ctx context.Context, id ObjectID, src io.Reader, sizeHint int64) (Metadata, error) {
	if a.shouldFail("write") {
		// Consume part of the stream first, as a real backend would
		// before the connection drops.
		var scratch [2]byte
		_, _ = src.Read(scratch[:])
		return Metadata{}, a.failErr
	}
	return a.inner.Write(ctx, id, src, sizeHint)
}

func (a *flakyAccessor) Delete(ctx context.Context, id ObjectID) error {
	if a.shouldFail("delete") {
		return a.failErr
	}
	return a.inner.Delete(ctx, id)
}

func (a *flakyAccessor) Stat(ctx context.Context, id ObjectID) (Metadata, error) {
	if a.shouldFail("stat") {
		return Metadata{}, a.failErr
	}
	return a.inner.Stat(ctx, id)
}

func (a *flakyAccessor) List(ctx context.Context, id ObjectID, opts ListOpts) Lister {
	if a.shouldFail("list") {
		return ErrLister(a.failErr)
	}
	return a.inner.List(ctx, id, opts)
}

func (a *flakyAccessor) CreateDir(ctx context.Context, id ObjectID) error {
	if a.shouldFail("create-dir") {
		return a.failErr
	}
	return a.inner.CreateDir(ctx, id)
}

func TestRetryTransient(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakyAccessor()
	_, err := flaky.inner.Write(ctx, "x", bytes.NewReader([]byte("hello")), 5)
	require.NoError(t, err)

	flaky.failNext("stat", 2)
	acc := NewRetrying(flaky, testRetryPolicy)
	meta, err := acc.Stat(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, 3, flaky.calls["stat"])
}

func TestRetryExhaustion(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakyAccessor()
	flaky.failNext("delete", 100)
	acc := NewRetrying(flaky, testRetryPolicy)
	err := acc.Delete(ctx, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Unavailable, err))
	assert.Equal(t, testRetryPolicy.MaxAttempts, flaky.calls["delete"])
}

func TestRetryNonRetryable(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakyAccessor()
	acc := NewRetrying(flaky, testRetryPolicy)
	_, err := acc.Stat(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotFound, err))
	assert.Equal(t, 1, flaky.calls["stat"])
}

func TestRetryWriteRewindable(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakyAccessor()
	flaky.failNext("write", 2)
	acc := NewRetrying(flaky, testRetryPolicy)
	// bytes.Reader implements io.Seeker, so the retry layer rewinds and
	// replays the stream.
	meta, err := acc.Write(ctx, "x", bytes.NewReader([]byte("hello")), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, 3, flaky.calls["write"])

	rc, err := acc.Read(ctx, "x", Whole)
	require.NoError(t, err)
	assert.Equal(t, "hello", readAll(ctx, t, rc))
}

func TestRetryWriteNonRewindable(t *testing.T) {
	ctx := context.Background()
	flaky := newFlakyAccessor()
	flaky.failNext("write", 1)
	acc := NewRetrying(flaky, testRetryPolicy)
	// bytes.Buffer has no Seek method; the stream cannot be replayed.
	_, err := acc.Write(ctx, "x", bytes.NewBuffer([]byte("hello")), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Unexpected, err))
	assert.False(t, errors.Retryable(err))
	assert.Equal(t, 1, flaky.calls["write"])
}

// droppingReadCloser yields a prefix of its content, then fails with a
// retryable error.
type droppingReadCloser struct {
	data   []byte
	before int // bytes to deliver before failing
	failed bool
}

func (r *droppingReadCloser) Read(_ context.Context, p []byte) (int, error) {
	if r.before == 0 {
		if !r.failed {
			r.failed = true
			return 0, errors.E(errors.Unavailable, "connection reset")
		}
		if len(r.data) == 0 {
			return 0, io.EOF
		}
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	n := len(p)
	if n > r.before {
		n = r.before
	}
	n = copy(p[:n], r.data)
	r.data = r.data[n:]
	r.before -= n
	return n, nil
}

func (r *droppingReadCloser) Close(context.Context) error { return nil }

// rangeRecorder serves scripted streams and records the ranges it was
// asked for.
type rangeRecorder struct {
	Accessor
	content string
	ranges  []Range
	dropAt  int // first open drops after this many bytes
}

func (a *rangeRecorder) String() string { return "ranges" }

func (a *rangeRecorder) Capabilities() Capabilities {
	return Capabilities{Ops: CapRead | CapRangeRead}
}

func (a *rangeRecorder) Read(_ context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error) {
	a.ranges = append(a.ranges, r)
	data := []byte(a.content)[r.Off:]
	if r.Len != LenToEnd && r.Len < int64(len(data)) {
		data = data[:r.Len]
	}
	if len(a.ranges) == 1 {
		return &droppingReadCloser{data: data, before: a.dropAt}, nil
	}
	return stringReadCloser(string(data)), nil
}

func TestRetryReadMidStream(t *testing.T) {
	ctx := context.Background()
	rec := &rangeRecorder{content: "abcdefghijklmnop", dropAt: 6}
	acc := NewRetrying(rec, testRetryPolicy)
	rc, err := acc.Read(ctx, "x", Whole)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnop", readAll(ctx, t, rc))
	// The reopened stream must start at the first unconsumed byte.
	require.Len(t, rec.ranges, 2)
	assert.Equal(t, Whole, rec.ranges[0])
	assert.Equal(t, Range{Off: 6, Len: LenToEnd}, rec.ranges[1])
}

func TestRetryReadMidStreamRanged(t *testing.T) {
	ctx := context.Background()
	rec := &rangeRecorder{content: "abcdefghijklmnop", dropAt: 3}
	acc := NewRetrying(rec, testRetryPolicy)
	rc, err := acc.Read(ctx, "x", Range{Off: 2, Len: 10})
	require.NoError(t, err)
	assert.Equal(t, "cdefghijkl", readAll(ctx, t, rc))
	require.Len(t, rec.ranges, 2)
	assert.Equal(t, Range{Off: 2, Len: 10}, rec.ranges[0])
	assert.Equal(t, Range{Off: 5, Len: 7}, rec.ranges[1])
}

// pagedLister yields scripted pages, failing with a retryable error
// where the script says so.
type pagedLister struct {
	entries []DirEntry
	failAt  int // index at which to fail, -1 for never
	i       int
	err     error
}

func (l *pagedLister) Scan() bool {
	if l.err != nil || l.i >= len(l.entries) {
		return false
	}
	if l.failAt >= 0 && l.i == l.failAt {
		l.err = errors.E(errors.RateLimited, "slow down")
		return false
	}
	l.i++
	return true
}

func (l *pagedLister) Entry() DirEntry { return l.entries[l.i-1] }
func (l *pagedLister) Err() error      { return l.err }

type listRecorder struct {
	Accessor
	entries []DirEntry
	opts    []ListOpts
	failAt  int
}

func (a *listRecorder) String() string             { return "lists" }
func (a *listRecorder) Capabilities() Capabilities { return Capabilities{Ops: CapList} }

func (a *listRecorder) List(_ context.Context, id ObjectID, opts ListOpts) Lister {
	a.opts = append(a.opts, opts)
	entries := a.entries
	if opts.StartAfter != "" {
		for len(entries) > 0 && entries[0].ID <= opts.StartAfter {
			entries = entries[1:]
		}
	}
	failAt := -1
	if len(a.opts) == 1 {
		failAt = a.failAt
	}
	return &pagedLister{entries: entries, failAt: failAt}
}

func TestRetryListResume(t *testing.T) {
	ctx := context.Background()
	rec := &listRecorder{
		entries: []DirEntry{
			{ID: "d/a"}, {ID: "d/b"}, {ID: "d/c"}, {ID: "d/d"},
		},
		failAt: 2,
	}
	acc := NewRetrying(rec, testRetryPolicy)
	l := acc.List(ctx, "d/", ListOpts{})
	var got []ObjectID
	for l.Scan() {
		got = append(got, l.Entry().ID)
	}
	require.NoError(t, l.Err())
	// No duplicates, no gaps.
	assert.Equal(t, []ObjectID{"d/a", "d/b", "d/c", "d/d"}, got)
	require.Len(t, rec.opts, 2)
	assert.Equal(t, ObjectID(""), rec.opts[0].StartAfter)
	assert.Equal(t, ObjectID("d/b"), rec.opts[1].StartAfter)
}

func TestRetryWaitCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	flaky := newFlakyAccessor()
	flaky.failNext("delete", 100)
	acc := NewRetrying(flaky, RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour})
	err := acc.Delete(ctx, "x")
	require.Error(t, err)
	// The canceled context abandons the backoff sleep; the backend was
	// invoked exactly once.
	assert.Equal(t, 1, flaky.calls["delete"])
}
