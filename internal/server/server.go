// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Server is the acceptor-owned context threaded through every worker
// closure. It replaces the handful of file-scope globals the original
// kept (g_config, g_thread_pool, the cache tree head, g_shutdown,
// g_refresh_cache) with one struct passed by reference, so nothing in
// this tree reaches for a package-level mutable variable.
package server

import (
	"crypto/tls"
	"sync/atomic"

	"github.com/hexinfra/snap/internal/credstore"
	"github.com/hexinfra/snap/internal/fingerprint"
	"github.com/hexinfra/snap/internal/lifecycle"
	"github.com/hexinfra/snap/internal/mimetype"
	"github.com/hexinfra/snap/internal/snapconfig"
	"github.com/hexinfra/snap/internal/snaplog"
	"github.com/hexinfra/snap/internal/statusapi"
	"github.com/hexinfra/snap/internal/workerpool"
)

// Server aggregates everything a request needs that isn't local to
// its own goroutine.
type Server struct {
	Config *snapconfig.Config
	Pool   *workerpool.Pool
	TLS    *tls.Config // nil when TLS is disabled
	Logger snaplog.Logger
	Flags  *lifecycle.Flags
	Mimes  *mimetype.Resolver
	Creds  *credstore.Store // nil when no credential store was configured

	tree      atomic.Pointer[fingerprint.Tree]
	refresher *fingerprint.Refresher
}

// New builds a Server from an already-validated config, the initial
// fingerprint tree, and the pool/TLS/logger/credential collaborators
// main wires up.
func New(cfg *snapconfig.Config, tree *fingerprint.Tree, pool *workerpool.Pool, tlsCfg *tls.Config, logger snaplog.Logger, flags *lifecycle.Flags, mimes *mimetype.Resolver, creds *credstore.Store) *Server {
	s := &Server{Config: cfg, Pool: pool, TLS: tlsCfg, Logger: logger, Flags: flags, Mimes: mimes, Creds: creds}
	s.tree.Store(tree)
	s.refresher = fingerprint.NewRefresher(cfg.WebRoot)
	return s
}

// Tree returns the currently active fingerprint tree.
func (s *Server) Tree() *fingerprint.Tree { return s.tree.Load() }

// RefreshTree rebuilds the fingerprint tree from the configured
// webroot and atomically swaps it in, freeing the superseded tree.
// Callers are expected to have drained the worker pool first via
// s.Pool.Wait, matching the original's threadpool_wait before
// cache_tree_refresh. Concurrent callers (the acceptor's poll loop
// and, potentially, a future admin-triggered refresh) collapse into
// one filesystem walk via the underlying Refresher.
func (s *Server) RefreshTree() error {
	fresh, err := s.refresher.Refresh()
	if err != nil {
		return err
	}
	old := s.tree.Swap(fresh)
	old.Free()
	return nil
}

// Snapshot implements statusapi.StatsSource.
func (s *Server) Snapshot() statusapi.Snapshot {
	stats := s.Pool.Stats()
	return statusapi.Snapshot{
		Version:   "0.4",
		Queued:    stats.Queued,
		Active:    stats.Active,
		Completed: stats.Completed,
		Rejected:  stats.Rejected,
		TreeSize:  s.Tree().Size(),
	}
}
