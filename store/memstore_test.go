// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/objectio/errors"
)

func memWrite(ctx context.Context, t *testing.T, acc Accessor, id ObjectID, content string) {
	t.Helper()
	_, err := acc.Write(ctx, id, bytes.NewReader([]byte(content)), int64(len(content)))
	require.NoError(t, err)
}

func listIDs(t *testing.T, l Lister) []ObjectID {
	t.Helper()
	var ids []ObjectID
	for l.Scan() {
		ids = append(ids, l.Entry().ID)
	}
	require.NoError(t, l.Err())
	return ids
}

func TestMemReadWrite(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "a/b", "hello world")

	rc, err := acc.Read(ctx, "a/b", Whole)
	require.NoError(t, err)
	assert.Equal(t, "hello world", readAll(ctx, t, rc))

	rc, err = acc.Read(ctx, "a/b", Range{Off: 6, Len: 5})
	require.NoError(t, err)
	assert.Equal(t, "world", readAll(ctx, t, rc))

	// Length past the end is clamped.
	rc, err = acc.Read(ctx, "a/b", Range{Off: 6, Len: 100})
	require.NoError(t, err)
	assert.Equal(t, "world", readAll(ctx, t, rc))

	_, err = acc.Read(ctx, "a/b", Range{Off: 100, Len: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.InvalidInput, err))

	_, err = acc.Read(ctx, "missing", Whole)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotFound, err))
}

func TestMemWriteAtomic(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "x", "original")

	// A failing source must leave the previous content untouched.
	_, err := acc.Write(ctx, "x", &failingReader{}, SizeUnknown)
	require.Error(t, err)
	rc, err := acc.Read(ctx, "x", Whole)
	require.NoError(t, err)
	assert.Equal(t, "original", readAll(ctx, t, rc))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.E(errors.Unavailable, "source failed")
}

func TestMemStat(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "a/b", "xyz")

	meta, err := acc.Stat(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.Size)
	assert.False(t, meta.IsDir)
	assert.NotEmpty(t, meta.ETag)
	assert.False(t, meta.ModTime.IsZero())

	// Directory prefixes exist implicitly.
	meta, err = acc.Stat(ctx, "a/")
	require.NoError(t, err)
	assert.True(t, meta.IsDir)

	meta, err = acc.Stat(ctx, "")
	require.NoError(t, err)
	assert.True(t, meta.IsDir)
}

func TestMemList(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "d/a", "1")
	memWrite(ctx, t, acc, "d/b", "2")
	memWrite(ctx, t, acc, "d/sub/c", "3")
	require.NoError(t, acc.CreateDir(ctx, "d/empty/"))

	// Immediate children only; the child directory is synthesized from
	// its deeper key.
	ids := listIDs(t, acc.List(ctx, "d/", ListOpts{}))
	assert.Equal(t, []ObjectID{"d/a", "d/b", "d/empty/", "d/sub/"}, ids)

	ids = listIDs(t, acc.List(ctx, "d/", ListOpts{Recursive: true}))
	assert.Equal(t, []ObjectID{"d/a", "d/b", "d/empty/", "d/sub/c"}, ids)

	ids = listIDs(t, acc.List(ctx, "d/", ListOpts{StartAfter: "d/b"}))
	assert.Equal(t, []ObjectID{"d/empty/", "d/sub/"}, ids)

	// Listing an absent prefix yields an empty result.
	ids = listIDs(t, acc.List(ctx, "nope/", ListOpts{}))
	assert.Empty(t, ids)
}

func TestMemListMoreHint(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "d/a", "1")
	memWrite(ctx, t, acc, "d/b", "2")

	l := acc.List(ctx, "d/", ListOpts{})
	require.True(t, l.Scan())
	assert.True(t, l.Entry().More)
	require.True(t, l.Scan())
	assert.False(t, l.Entry().More)
	assert.False(t, l.Scan())
}

func TestMemDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	acc := NewMemAccessor()
	memWrite(ctx, t, acc, "x", "data")
	require.NoError(t, acc.Delete(ctx, "x"))
	require.NoError(t, acc.Delete(ctx, "x"))
	_, err := acc.Stat(ctx, "x")
	assert.True(t, errors.Is(errors.NotFound, err))
}
