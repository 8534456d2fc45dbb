// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"strings"

	"github.com/vireolabs/objectio/errors"
)

// Normalize converts a raw caller-supplied path into a canonical
// ObjectID. It collapses repeated separators, removes "." segments,
// resolves ".." against preceding segments, and preserves a trailing
// separator as the directory marker. A leading "/" is accepted and
// stripped. "" and "/" normalize to the root ID "". Normalization is
// idempotent.
//
// A ".." that would escape above the root yields an InvalidPath error.
func Normalize(raw string) (ObjectID, error) {
	isDir := raw == "" || strings.HasSuffix(raw, "/")
	var segs []string
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
			// Repeated separator or current-dir segment.
		case "..":
			if len(segs) == 0 {
				return "", errors.E(errors.InvalidPath, errors.Path(raw), "path escapes root")
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}
	// A trailing "." or ".." names a directory.
	if last := lastSegment(raw); last == "." || last == ".." {
		isDir = true
	}
	id := ObjectID(strings.Join(segs, "/"))
	if id == "" {
		return "", nil
	}
	if isDir {
		id += "/"
	}
	return id, nil
}

func lastSegment(raw string) string {
	if i := strings.LastIndexByte(raw, '/'); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

// Base returns the final element of the ID: the object name for files,
// the directory name (with its trailing separator) for directories.
// Base of the root is "".
func Base(id ObjectID) string {
	s := string(id)
	trimmed := strings.TrimSuffix(s, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Dir returns the parent directory of id. The parent of a top-level
// object, and of the root itself, is the root.
func Dir(id ObjectID) ObjectID {
	trimmed := strings.TrimSuffix(string(id), "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return ""
	}
	return ObjectID(trimmed[:i+1])
}

// Join joins path elements under a directory ID, normalizing the
// result. Empty elements are ignored.
func Join(id ObjectID, elems ...string) (ObjectID, error) {
	parts := make([]string, 0, len(elems)+1)
	if id != "" {
		parts = append(parts, string(id))
	}
	for _, e := range elems {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return Normalize(strings.Join(parts, "/"))
}
