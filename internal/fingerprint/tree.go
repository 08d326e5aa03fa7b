// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// The fingerprint tree: an ordered map from path hash to cached file
// fingerprints, built by one recursive filesystem walk and swapped
// wholesale on refresh. It is immutable for the lifetime of every
// worker that holds a reference to it.

package fingerprint

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedSubstring opts large media out of the index entirely; such
// paths are still served, just never cached.
const excludedSubstring = "/videos/"

// Tree is an ordered, immutable-once-built container keyed by path
// hash. Keys are unique; a duplicate path hash during Build is
// ignored (first wins).
type Tree struct {
	entries []*Entry // sorted by PathHash ascending
}

// Build walks root recursively and returns a freshly constructed Tree.
// Paths containing excludedSubstring are skipped. Errors walking
// individual files are treated as "not cacheable" and the file is
// simply omitted — a missing cache entry degrades to an uncached
// serve, never a hard failure of the whole walk.
func Build(root string) (*Tree, error) {
	t := &Tree{}
	byHash := make(map[uint32]*Entry)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, don't abort the walk
		}
		if d.IsDir() {
			return nil
		}
		if strings.Contains(path, excludedSubstring) {
			return nil
		}
		entry, ferr := buildEntry(path)
		if ferr != nil {
			return nil
		}
		if _, dup := byHash[entry.PathHash]; dup {
			return nil // first wins
		}
		byHash[entry.PathHash] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.entries = make([]*Entry, 0, len(byHash))
	for _, e := range byHash {
		t.entries = append(t.entries, e)
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].PathHash < t.entries[j].PathHash })
	return t, nil
}

func buildEntry(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contentHash, err := hashContent(f)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Entry{
		Path:         abs,
		ContentHash:  contentHash,
		PathHash:     hashPath(abs),
		LastModified: info.ModTime().UTC().Format(httpDateLayout),
	}, nil
}

// Lookup performs an O(log n) point query keyed by the path hash of
// the requested absolute path. A collision between two distinct paths
// that happen to share a path hash resolves to whichever entry was
// inserted first; when that entry's Path differs from the requested
// path, Lookup reports a cache miss.
func (t *Tree) Lookup(path string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	hash := hashPath(path)
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].PathHash >= hash })
	if i >= len(t.entries) || t.entries[i].PathHash != hash {
		return nil, false
	}
	entry := t.entries[i]
	if entry.Path != path {
		return nil, false // path hash collision across distinct paths: treat as miss
	}
	return entry, true
}

// Size reports the number of indexed entries, used by the status
// snapshot.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Free releases the tree's backing storage. Go's garbage collector
// reclaims the entries once the last worker holding a reference
// returns it; Free only clears this handle so a caller cannot
// accidentally keep indexing into a stale slice.
func (t *Tree) Free() {
	if t == nil {
		return
	}
	t.entries = nil
}
