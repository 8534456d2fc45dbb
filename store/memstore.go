// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
)

// memAccessor is an in-memory backend. Objects live in a flat map
// keyed by ObjectID; directories are zero-byte entries under their
// trailing-slash ID. It supports every capability and is the reference
// implementation for accessor semantics.
type memAccessor struct {
	mu      sync.Mutex
	objects map[ObjectID]memObject
}

type memObject struct {
	data    []byte
	modTime time.Time
	etag    string
	isDir   bool
}

// NewMemAccessor returns an empty in-memory accessor. It is intended
// for tests and for small transient datasets.
func NewMemAccessor() Accessor {
	return &memAccessor{objects: map[ObjectID]memObject{}}
}

func (*memAccessor) String() string { return "mem" }

func (*memAccessor) Capabilities() Capabilities {
	return Capabilities{
		Ops: CapRead | CapWrite | CapDelete | CapList | CapStat | CapCreateDir | CapRangeRead,
	}
}

func (a *memAccessor) Read(_ context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error) {
	a.mu.Lock()
	obj, ok := a.objects[id]
	a.mu.Unlock()
	if !ok || obj.isDir {
		return nil, errors.E(errors.Op("read"), errors.Path(string(id)), errors.NotFound, "object not found")
	}
	data := obj.data
	if r.Off > 0 || r.Len != LenToEnd {
		if r.Off > int64(len(data)) {
			return nil, errors.E(errors.Op("read"), errors.Path(string(id)), errors.InvalidInput,
				fmt.Sprintf("range offset %d beyond object size %d", r.Off, len(data)))
		}
		data = data[r.Off:]
		if r.Len != LenToEnd && r.Len < int64(len(data)) {
			data = data[:r.Len]
		}
	}
	return ioctx.NopCloser(ioctx.FromStdReader(bytes.NewReader(data))), nil
}

func (a *memAccessor) Write(_ context.Context, id ObjectID, src io.Reader, sizeHint int64) (Metadata, error) {
	// Buffer the full content before touching the map so a failed read
	// of src leaves no partial object behind.
	data, err := io.ReadAll(src)
	if err != nil {
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	if sizeHint != SizeUnknown && sizeHint != int64(len(data)) {
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), errors.InvalidInput,
			fmt.Sprintf("content length %d does not match size hint %d", len(data), sizeHint))
	}
	obj := memObject{
		data:    data,
		modTime: time.Now(),
		etag:    fmt.Sprintf("%x", md5.Sum(data)),
		isDir:   id.IsDir(),
	}
	a.mu.Lock()
	a.objects[id] = obj
	a.mu.Unlock()
	return memMeta(obj), nil
}

func (a *memAccessor) Delete(_ context.Context, id ObjectID) error {
	a.mu.Lock()
	delete(a.objects, id)
	a.mu.Unlock()
	return nil
}

func (a *memAccessor) Stat(_ context.Context, id ObjectID) (Metadata, error) {
	if id.IsDir() {
		// Directories exist implicitly; stat always succeeds with a
		// directory entry, matching object-store prefix semantics.
		return Metadata{Size: 0, IsDir: true}, nil
	}
	a.mu.Lock()
	obj, ok := a.objects[id]
	a.mu.Unlock()
	if !ok {
		return Metadata{}, errors.E(errors.Op("stat"), errors.Path(string(id)), errors.NotFound, "object not found")
	}
	return memMeta(obj), nil
}

func (a *memAccessor) List(_ context.Context, id ObjectID, opts ListOpts) Lister {
	prefix := string(id.AsDir())
	a.mu.Lock()
	type keyed struct {
		id  ObjectID
		obj memObject
	}
	var keys []keyed
	seenDirs := map[ObjectID]bool{}
	for k, obj := range a.objects {
		s := string(k)
		if !strings.HasPrefix(s, prefix) || k == id {
			continue
		}
		rest := strings.TrimSuffix(s[len(prefix):], "/")
		if rest == "" {
			continue
		}
		if !opts.Recursive {
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				// A deeper key implies a child directory; synthesize
				// its entry once.
				child := ObjectID(prefix + rest[:i+1])
				if !seenDirs[child] {
					seenDirs[child] = true
					keys = append(keys, keyed{child, memObject{isDir: true}})
				}
				continue
			}
		}
		if obj.isDir && seenDirs[k] {
			continue
		}
		if obj.isDir {
			seenDirs[k] = true
		}
		keys = append(keys, keyed{k, obj})
	}
	a.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].id < keys[j].id })
	entries := make([]DirEntry, 0, len(keys))
	for _, k := range keys {
		if opts.StartAfter != "" && k.id <= opts.StartAfter {
			continue
		}
		entries = append(entries, DirEntry{ID: k.id, Meta: memMeta(k.obj)})
	}
	for i := range entries {
		entries[i].More = i < len(entries)-1
	}
	return &sliceLister{entries: entries}
}

func (a *memAccessor) CreateDir(_ context.Context, id ObjectID) error {
	obj := memObject{modTime: time.Now(), isDir: true}
	a.mu.Lock()
	a.objects[id.AsDir()] = obj
	a.mu.Unlock()
	return nil
}

func memMeta(obj memObject) Metadata {
	if obj.isDir {
		return Metadata{Size: 0, ModTime: obj.modTime, IsDir: true}
	}
	return Metadata{
		Size:    int64(len(obj.data)),
		ModTime: obj.modTime,
		ETag:    obj.etag,
	}
}
