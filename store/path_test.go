// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/objectio/errors"
)

func TestNormalize(t *testing.T) {
	for _, test := range []struct {
		raw  string
		want ObjectID
	}{
		{"", ""},
		{"/", ""},
		{".", ""},
		{"./", ""},
		{"a", "a"},
		{"/a", "a"},
		{"a/", "a/"},
		{"a//b", "a/b"},
		{"a//b/../c/", "a/c/"},
		{"a/./b", "a/b"},
		{"a/b/..", "a/"},
		{"a/b/../..", ""},
		{"a/b/c/../../d", "a/d"},
		{"dir name/with spaces/file.txt", "dir name/with spaces/file.txt"},
	} {
		got, err := Normalize(test.raw)
		require.NoError(t, err, "normalize %q", test.raw)
		assert.Equal(t, test.want, got, "normalize %q", test.raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"", "/", "a//b/../c/", "x/./y/z/..", "/a/b//c"} {
		once, err := Normalize(raw)
		require.NoError(t, err)
		twice, err := Normalize(string(once))
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalize %q not idempotent", raw)
	}
}

func TestNormalizeEscape(t *testing.T) {
	for _, raw := range []string{"..", "../", "../a", "a/../../b", "a/b/../../../c"} {
		_, err := Normalize(raw)
		require.Error(t, err, "normalize %q", raw)
		assert.True(t, errors.Is(errors.InvalidPath, err), "normalize %q: got %v", raw, err)
	}
}

func TestBaseDir(t *testing.T) {
	for _, test := range []struct {
		id   ObjectID
		base string
		dir  ObjectID
	}{
		{"", "", ""},
		{"a", "a", ""},
		{"a/", "a/", ""},
		{"a/b/c", "c", "a/b/"},
		{"a/b/c/", "c/", "a/b/"},
	} {
		assert.Equal(t, test.base, Base(test.id), "base %q", test.id)
		assert.Equal(t, test.dir, Dir(test.id), "dir %q", test.id)
	}
}

func TestJoin(t *testing.T) {
	id, err := Join("a/b/", "c", "d/e")
	require.NoError(t, err)
	assert.Equal(t, ObjectID("a/b/c/d/e"), id)

	id, err = Join("", "x")
	require.NoError(t, err)
	assert.Equal(t, ObjectID("x"), id)

	_, err = Join("a/", "../..")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.InvalidPath, err))
}
