// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config builds operators from declarative YAML profiles, so
// deployments can switch storage backends without code changes.
//
// A profile looks like this:
//
//	scheme: s3
//	retry:
//	  max_attempts: 4
//	  base_delay: 500ms
//	  max_delay: 30s
//	  jitter: true
//	s3:
//	  bucket: my-bucket
//	  prefix: datasets/v2
//	  region: us-west-2
//
// Supported schemes are "mem", "local", and "s3".
package config

import (
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	yaml "gopkg.in/yaml.v2"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/store"
	"github.com/vireolabs/objectio/store/s3store"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "500ms" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.E(errors.InvalidInput, "config: invalid duration "+s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Retry configures the operator's retry layer. A nil Retry section
// disables retries entirely.
type Retry struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay"`
	Jitter      bool     `yaml:"jitter"`
}

// S3 configures the S3 backend.
type S3 struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Local configures the local-filesystem backend.
type Local struct {
	Root string `yaml:"root"`
}

// Config is one storage profile.
type Config struct {
	Scheme string `yaml:"scheme"`
	Retry  *Retry `yaml:"retry"`
	S3     *S3    `yaml:"s3"`
	Local  *Local `yaml:"local"`
}

// Parse decodes a YAML profile. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, errors.E(errors.InvalidInput, "config: cannot parse profile", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML profile from a file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.E(errors.Path(path), "config: cannot read profile", err)
	}
	return Parse(data)
}

func (c Config) validate() error {
	switch c.Scheme {
	case "mem":
	case "local":
		if c.Local == nil || c.Local.Root == "" {
			return errors.E(errors.InvalidInput, "config: scheme local requires local.root")
		}
	case "s3":
		if c.S3 == nil || c.S3.Bucket == "" {
			return errors.E(errors.InvalidInput, "config: scheme s3 requires s3.bucket")
		}
	case "":
		return errors.E(errors.InvalidInput, "config: missing scheme")
	default:
		return errors.E(errors.Unsupported, "config: unknown scheme "+c.Scheme)
	}
	if r := c.Retry; r != nil && r.MaxAttempts < 1 {
		return errors.E(errors.InvalidInput, "config: retry.max_attempts must be at least 1")
	}
	return nil
}

// Build constructs the operator the profile describes.
func (c Config) Build() (*store.Operator, error) {
	acc, err := c.accessor()
	if err != nil {
		return nil, err
	}
	var opts []store.Option
	if c.Retry != nil {
		opts = append(opts, store.WithRetry(store.RetryPolicy{
			MaxAttempts: c.Retry.MaxAttempts,
			BaseDelay:   time.Duration(c.Retry.BaseDelay),
			MaxDelay:    time.Duration(c.Retry.MaxDelay),
			Jitter:      c.Retry.Jitter,
		}))
	}
	return store.New(acc, opts...), nil
}

func (c Config) accessor() (store.Accessor, error) {
	switch c.Scheme {
	case "mem":
		return store.NewMemAccessor(), nil
	case "local":
		return store.NewLocalAccessor(c.Local.Root)
	case "s3":
		var sessOpts session.Options
		if c.S3.Region != "" {
			sessOpts.Config.Region = aws.String(c.S3.Region)
		}
		provider := s3store.NewDefaultProvider(sessOpts)
		return s3store.New(provider, c.S3.Bucket, c.S3.Prefix), nil
	}
	return nil, errors.E(errors.Unsupported, "config: unknown scheme "+c.Scheme)
}
