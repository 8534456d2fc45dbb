// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

// Lister incrementally enumerates directory entries. Use it like this:
//
//	l := op.List(ctx, "a/")
//	for l.Scan() {
//	    use(l.Entry())
//	}
//	if err := l.Err(); err != nil { ... }
//
// Scan performs backend requests lazily; an enumeration that is
// abandoned early never fetches the pages it did not consume.
type Lister interface {
	// Scan advances to the next entry. It returns false on end of
	// listing or error; the two are distinguished by Err.
	Scan() bool

	// Entry returns the entry discovered by the last successful Scan.
	Entry() DirEntry

	// Err returns the first error encountered, or nil after a complete
	// enumeration.
	Err() error
}

// ErrLister returns a Lister that yields no entries and reports err.
// Drivers use it to surface failures detected before enumeration
// starts.
func ErrLister(err error) Lister { return &errLister{err: err} }

type errLister struct{ err error }

func (l *errLister) Scan() bool      { return false }
func (l *errLister) Entry() DirEntry { return DirEntry{} }
func (l *errLister) Err() error      { return l.err }

// sliceLister yields a fixed set of entries. Backends that materialize
// a snapshot (such as the in-memory accessor) build on it.
type sliceLister struct {
	entries []DirEntry
	i       int
}

func (l *sliceLister) Scan() bool {
	if l.i >= len(l.entries) {
		return false
	}
	l.i++
	return true
}

func (l *sliceLister) Entry() DirEntry { return l.entries[l.i-1] }
func (l *sliceLister) Err() error      { return nil }
