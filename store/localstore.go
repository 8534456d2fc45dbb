// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
)

// localAccessor serves objects from a rooted directory on the local
// filesystem. Object IDs map to paths under the root; writes are
// staged in a temporary file and renamed into place so a crashed or
// failed write never leaves a partial object visible.
type localAccessor struct {
	root string
}

// NewLocalAccessor returns an accessor rooted at dir, creating it if
// needed.
func NewLocalAccessor(dir string) (Accessor, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.E(errors.Op("local"), errors.Path(dir), err)
	}
	if err := os.MkdirAll(abs, 0777); err != nil {
		return nil, errors.E(errors.Op("local"), errors.Path(dir), err)
	}
	return &localAccessor{root: abs}, nil
}

func (a *localAccessor) String() string { return fmt.Sprintf("local(%s)", a.root) }

func (*localAccessor) Capabilities() Capabilities {
	return Capabilities{
		Ops: CapRead | CapWrite | CapDelete | CapList | CapStat | CapCreateDir | CapRangeRead,
	}
}

func (a *localAccessor) abs(id ObjectID) string {
	return filepath.Join(a.root, filepath.FromSlash(string(id)))
}

func (a *localAccessor) rel(path string) ObjectID {
	r, err := filepath.Rel(a.root, path)
	if err != nil || r == "." {
		return ""
	}
	return ObjectID(filepath.ToSlash(r))
}

func (a *localAccessor) Read(_ context.Context, id ObjectID, r Range) (ioctx.ReadCloser, error) {
	f, err := os.Open(a.abs(id))
	if err != nil {
		return nil, errors.E(errors.Op("read"), errors.Path(string(id)), err)
	}
	if r.Off > 0 {
		if _, err := f.Seek(r.Off, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, errors.E(errors.Op("read"), errors.Path(string(id)), err)
		}
	}
	rc := ioctx.FromStdReadCloser(f)
	if r.Len != LenToEnd {
		rc = newWindowReader(rc, 0, r.Len)
	}
	return rc, nil
}

func (a *localAccessor) Write(_ context.Context, id ObjectID, src io.Reader, sizeHint int64) (Metadata, error) {
	dst := a.abs(id)
	if err := os.MkdirAll(filepath.Dir(dst), 0777); err != nil {
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp")
	if err != nil {
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	if sizeHint != SizeUnknown && n != sizeHint {
		cleanup()
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), errors.InvalidInput,
			fmt.Sprintf("content length %d does not match size hint %d", n, sizeHint))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return Metadata{}, errors.E(errors.Op("write"), errors.Path(string(id)), err)
	}
	return localMeta(info), nil
}

func (a *localAccessor) Delete(_ context.Context, id ObjectID) error {
	err := os.Remove(a.abs(id))
	if err != nil && !os.IsNotExist(err) {
		return errors.E(errors.Op("delete"), errors.Path(string(id)), err)
	}
	return nil
}

func (a *localAccessor) Stat(_ context.Context, id ObjectID) (Metadata, error) {
	info, err := os.Stat(a.abs(id))
	if err != nil {
		return Metadata{}, errors.E(errors.Op("stat"), errors.Path(string(id)), err)
	}
	return localMeta(info), nil
}

func (a *localAccessor) List(_ context.Context, id ObjectID, opts ListOpts) Lister {
	dir := a.abs(id.AsDir())
	if _, err := os.Stat(dir); err != nil {
		return ErrLister(errors.E(errors.Op("list"), errors.Path(string(id)), err))
	}
	return &localLister{a: a, opts: opts, todo: []string{dir}}
}

// localLister walks directories lazily, reading one directory per
// level as Scan demands it.
type localLister struct {
	a     *localAccessor
	opts  ListOpts
	todo  []string   // directories yet to read
	queue []DirEntry // entries yet to yield
	entry DirEntry
	err   error
}

func (l *localLister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		if len(l.queue) > 0 {
			l.entry = l.queue[0]
			l.queue = l.queue[1:]
			l.entry.More = len(l.queue) > 0 || len(l.todo) > 0
			return true
		}
		if len(l.todo) == 0 {
			return false
		}
		dir := l.todo[0]
		l.todo = l.todo[1:]
		des, err := os.ReadDir(dir)
		if err != nil {
			l.err = errors.E(errors.Op("list"), errors.Path(l.a.rel(dir).String()), err)
			return false
		}
		sort.Slice(des, func(i, j int) bool { return des[i].Name() < des[j].Name() })
		for _, de := range des {
			full := filepath.Join(dir, de.Name())
			id := l.a.rel(full)
			meta := Metadata{Size: SizeUnknown}
			if info, err := de.Info(); err == nil {
				meta = localMeta(info)
			}
			if de.IsDir() {
				id = id.AsDir()
				meta.IsDir = true
				if l.opts.Recursive {
					l.todo = append(l.todo, full)
				}
			}
			if l.opts.StartAfter != "" && id <= l.opts.StartAfter {
				continue
			}
			l.queue = append(l.queue, DirEntry{ID: id, Meta: meta})
		}
	}
}

func (l *localLister) Entry() DirEntry { return l.entry }
func (l *localLister) Err() error      { return l.err }

func (a *localAccessor) CreateDir(_ context.Context, id ObjectID) error {
	if err := os.MkdirAll(a.abs(id.AsDir()), 0777); err != nil {
		return errors.E(errors.Op("create-dir"), errors.Path(string(id)), err)
	}
	return nil
}

func localMeta(info os.FileInfo) Metadata {
	if info.IsDir() {
		return Metadata{Size: 0, ModTime: info.ModTime(), IsDir: true}
	}
	return Metadata{Size: info.Size(), ModTime: info.ModTime()}
}
