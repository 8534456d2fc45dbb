// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/objectio/errors"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
scheme: s3
retry:
  max_attempts: 5
  base_delay: 250ms
  max_delay: 1m
  jitter: true
s3:
  bucket: my-bucket
  prefix: datasets/v2
  region: us-east-1
`))
	require.NoError(t, err)
	assert.Equal(t, "s3", c.Scheme)
	require.NotNil(t, c.Retry)
	assert.Equal(t, 5, c.Retry.MaxAttempts)
	assert.Equal(t, Duration(250*time.Millisecond), c.Retry.BaseDelay)
	assert.Equal(t, Duration(time.Minute), c.Retry.MaxDelay)
	require.NotNil(t, c.S3)
	assert.Equal(t, "my-bucket", c.S3.Bucket)
	assert.Equal(t, "datasets/v2", c.S3.Prefix)
}

func TestParseInvalid(t *testing.T) {
	for _, test := range []struct {
		name string
		in   string
		kind errors.Kind
	}{
		{"missing scheme", `retry: {max_attempts: 2}`, errors.InvalidInput},
		{"unknown scheme", `scheme: ftp`, errors.Unsupported},
		{"s3 without bucket", "scheme: s3\ns3: {prefix: x}", errors.InvalidInput},
		{"local without root", `scheme: local`, errors.InvalidInput},
		{"bad duration", "scheme: mem\nretry: {max_attempts: 2, base_delay: soon}", errors.InvalidInput},
		{"zero attempts", "scheme: mem\nretry: {max_attempts: 0}", errors.InvalidInput},
		{"unknown field", "scheme: mem\nshard_count: 4", errors.InvalidInput},
		{"not yaml", `{{{`, errors.InvalidInput},
	} {
		_, err := Parse([]byte(test.in))
		require.Error(t, err, test.name)
		assert.True(t, errors.Is(test.kind, err), "%s: got %v", test.name, err)
	}
}

func TestBuildMem(t *testing.T) {
	ctx := context.Background()
	c, err := Parse([]byte("scheme: mem\nretry: {max_attempts: 3, base_delay: 1ms, max_delay: 10ms}"))
	require.NoError(t, err)
	op, err := c.Build()
	require.NoError(t, err)
	_, err = op.WriteFile(ctx, "x", []byte("hello"))
	require.NoError(t, err)
	data, err := op.ReadFile(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestBuildLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := Parse([]byte("scheme: local\nlocal: {root: " + dir + "}"))
	require.NoError(t, err)
	op, err := c.Build()
	require.NoError(t, err)
	_, err = op.WriteFile(ctx, "a/b", []byte("content"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: mem"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mem", c.Scheme)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotFound, err))
}
