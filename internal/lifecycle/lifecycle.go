// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Lifecycle flags: the process-wide shutdown and cache-refresh signals.
// The original server kept these as sig_atomic_t globals set directly
// from a signal handler and polled once per accept-loop timeout; Go
// replaces the raw globals with atomic.Bool values fed by
// signal.Notify, keeping the same "handler only ever flips a flag"
// discipline (no logging, no allocation, nothing blocking inside the
// handler itself).
package lifecycle

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Flags holds the shutdown and refresh-cache signals the acceptor
// polls once per listener timeout.
type Flags struct {
	shutdownFlag atomic.Bool
	refreshFlag  atomic.Bool
}

// New installs signal handlers and returns the Flags they drive.
// SIGINT, SIGTERM, and SIGQUIT request shutdown; SIGUSR1 requests a
// cache refresh. SIGPIPE is ignored so a peer closing mid-write
// surfaces as an ordinary write error instead of terminating the
// process.
func New() *Flags {
	f := &Flags{}

	signal.Ignore(syscall.SIGPIPE)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for range shutdownCh {
			f.shutdownFlag.Store(true)
		}
	}()

	refreshCh := make(chan os.Signal, 1)
	signal.Notify(refreshCh, syscall.SIGUSR1)
	go func() {
		for range refreshCh {
			f.refreshFlag.Store(true)
		}
	}()

	return f
}

// ShuttingDown reports whether a shutdown signal has been received.
func (f *Flags) ShuttingDown() bool { return f.shutdownFlag.Load() }

// Shutdown requests shutdown programmatically, without waiting on a
// signal. Used by tests and by anything driving the server
// embedded rather than as a standalone process.
func (f *Flags) Shutdown() { f.shutdownFlag.Store(true) }

// TakeRefresh reports whether a refresh was requested and clears the
// request, matching the original's g_refresh_cache = 0 after servicing
// it.
func (f *Flags) TakeRefresh() bool { return f.refreshFlag.CompareAndSwap(true, false) }
