// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package s3store

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/log"
)

const (
	defaultRegion     = "us-west-2"
	defaultMaxRetries = 3
)

// ClientProvider hands out an S3 client for a bucket. Get is called on
// every backend request; implementations should cache and reuse client
// objects. Implementations must be thread safe.
type ClientProvider interface {
	Get(ctx context.Context, bucket string) (s3iface.S3API, error)
}

type regionCache struct {
	session *session.Session
	client  s3iface.S3API
}

// NewDefaultProvider creates a ClientProvider that builds one AWS
// session per region and discovers each bucket's region on first use.
// Region discovery results and sessions are cached for the provider's
// lifetime.
//
// opts is passed to session.NewSessionWithOptions. opts.Config.Region,
// if set, becomes the default region used for discovery requests.
func NewDefaultProvider(opts session.Options) ClientProvider {
	region := defaultRegion
	if opts.Config.Region != nil {
		region = *opts.Config.Region
	}
	if opts.Config.MaxRetries == nil {
		// The retry layer above owns retries; keep the SDK's own loop
		// short.
		opts.Config.MaxRetries = aws.Int(defaultMaxRetries)
	}
	return &defaultProvider{
		opts:          opts,
		defaultRegion: region,
		regions:       map[string]*regionCache{},
		buckets:       map[string]string{},
	}
}

type defaultProvider struct {
	opts          session.Options
	defaultRegion string

	mu      sync.Mutex
	regions map[string]*regionCache // region -> session and client
	buckets map[string]string       // bucket -> region
}

func (p *defaultProvider) getSession(region string) (*regionCache, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rc, ok := p.regions[region]; ok {
		return rc, nil
	}
	opts := p.opts
	opts.Config.Region = aws.String(region)
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, errors.E(errors.Unavailable, "s3: creating session for region "+region, err)
	}
	rc := &regionCache{session: sess, client: s3.New(sess)}
	p.regions[region] = rc
	return rc, nil
}

func (p *defaultProvider) Get(ctx context.Context, bucket string) (s3iface.S3API, error) {
	p.mu.Lock()
	region, ok := p.buckets[bucket]
	p.mu.Unlock()
	if !ok {
		rc, err := p.getSession(p.defaultRegion)
		if err != nil {
			return nil, err
		}
		region, err = s3manager.GetBucketRegion(ctx, rc.session, bucket, p.defaultRegion)
		if err != nil {
			return nil, annotate(err, "s3", bucket, "cannot locate region for bucket")
		}
		log.Debug.Printf("s3: bucket %s is in region %s", bucket, region)
		p.mu.Lock()
		p.buckets[bucket] = region
		p.mu.Unlock()
	}
	rc, err := p.getSession(region)
	if err != nil {
		return nil, err
	}
	return rc.client, nil
}

// StaticProvider returns the same client for every bucket. It is
// intended for tests and for S3-compatible endpoints with a fixed
// region.
func StaticProvider(client s3iface.S3API) ClientProvider {
	return staticProvider{client}
}

type staticProvider struct{ client s3iface.S3API }

func (p staticProvider) Get(context.Context, string) (s3iface.S3API, error) {
	return p.client, nil
}
