// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// The MIME resolver is an external collaborator: a value-owning
// extension-to-media-type table, optionally enriched from a system
// mappings file such as /etc/mime.types. Unlike the source this
// system was distilled from, which shared one string pointer across
// many hash table buckets and required deduplicated frees, every
// entry here owns its own string, so there is nothing to deduplicate
// on teardown.

package mimetype

import (
	"bufio"
	"os"
	"strings"
)

const defaultType = "application/octet-stream"

// Resolver maps lowercased file extensions to media types.
type Resolver struct {
	types map[string]string
}

// New returns a Resolver seeded with the built-in table.
func New() *Resolver {
	r := &Resolver{types: make(map[string]string, len(builtinTypes))}
	for ext, mt := range builtinTypes {
		r.types[ext] = mt
	}
	return r
}

// LoadFile enriches the resolver from a mime.types-formatted file:
// one media type per line followed by whitespace-separated extensions,
// blank lines and lines starting with '#' ignored. Entries from the
// file overwrite the built-in table. A missing file is not an error;
// it simply leaves the built-in table untouched, since the resolver
// is only ever a best-effort collaborator for Content-Type.
func (r *Resolver) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mediaType := fields[0]
		for _, ext := range fields[1:] {
			r.types[strings.ToLower(ext)] = mediaType
		}
	}
	return scanner.Err()
}

// TypeForPath resolves the media type for a path using its lowercased
// extension, defaulting to application/octet-stream.
func (r *Resolver) TypeForPath(path string) string {
	ext := extensionOf(path)
	if mt, ok := r.types[ext]; ok {
		return mt
	}
	return defaultType
}

func extensionOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return ""
	}
	slash := strings.LastIndexByte(path, '/')
	if slash > i {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
