// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package store provides a unified object-storage API over
// heterogeneous backends.
//
// The package is organized around two interfaces. Accessor is the
// contract a backend driver implements: read, write, delete, stat,
// list, and create-dir over normalized object IDs, together with a
// capability set describing which of those operations the backend
// actually supports. Operator is the public front door: it owns a
// layered accessor stack (retry layer wrapping a concrete backend),
// normalizes every caller-supplied path, gates each call on the
// capability set, and maps every failure into the closed taxonomy of
// the errors package.
//
// Basic usage:
//
//	op := store.New(store.NewMemAccessor(), store.WithRetry(store.DefaultRetryPolicy))
//	meta, err := op.Write(ctx, "a/c/file", bytes.NewReader(data), int64(len(data)))
//	rc, err := op.ReadRange(ctx, "a/c/file", 10, 5)
//	l := op.List(ctx, "a/c/")
//	for l.Scan() {
//	    entry := l.Entry()
//	    ...
//	}
//	err = l.Err()
//
// Two backends ship with this package: an in-memory accessor
// (NewMemAccessor), useful for tests and as a reference implementation,
// and a local-filesystem accessor (NewLocalAccessor). The S3 driver
// lives in the s3store subpackage. Additional backends implement
// Accessor; they receive normalized ObjectIDs only and must map every
// backend-native failure into the errors taxonomy before returning.
//
// All operations take a context and may be canceled at any suspend
// point; the retry layer checks for cancellation before each backoff
// sleep. Accessors must be safe for concurrent use; the capability set
// and retry policy are immutable and shared.
package store
