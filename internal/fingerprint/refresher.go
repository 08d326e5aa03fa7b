// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package fingerprint

import "golang.org/x/sync/singleflight"

// Refresher rebuilds a Tree for a fixed webroot, collapsing concurrent
// refresh requests into one filesystem walk. The acceptor drains the
// worker pool before calling Refresh (spec's ordering guarantee);
// singleflight keeps near-simultaneous callers from walking the tree
// more than once.
type Refresher struct {
	root  string
	group singleflight.Group
}

// NewRefresher returns a Refresher rooted at root.
func NewRefresher(root string) *Refresher {
	return &Refresher{root: root}
}

// Refresh rebuilds the tree, deduplicating concurrent callers.
func (r *Refresher) Refresh() (*Tree, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		return Build(r.root)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tree), nil
}
