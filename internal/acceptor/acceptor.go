// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Acceptor multiplexes the plaintext and TLS listeners. The original
// used select() with a one-second timeout over two raw sockets so the
// main loop could poll g_shutdown/g_refresh_cache between connections;
// Go has no single call that waits on two net.Listeners at once, so
// each listener gets its own goroutine bounded by the same one-second
// deadline, both feeding one shared dispatch path into the worker
// pool. The net effect — at most a one-second delay noticing shutdown
// or a refresh request — is the same.
package acceptor

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/hexinfra/snap/internal/handler"
	"github.com/hexinfra/snap/internal/request"
	"github.com/hexinfra/snap/internal/server"
)

const (
	acceptPollInterval = time.Second
	readBufferSize     = request.MaxRequestSize
)

// Acceptor owns the two listeners and drives the lifecycle poll loop
// that used to live inline in main().
type Acceptor struct {
	srv   *server.Server
	plain net.Listener
	tls   net.Listener // nil when TLS is disabled
}

// New wraps two already-bound listeners. httpsLn is nil when srv.TLS
// is nil.
func New(srv *server.Server, httpLn, httpsLn net.Listener) *Acceptor {
	return &Acceptor{srv: srv, plain: httpLn, tls: httpsLn}
}

// Run blocks, accepting connections on both listeners and submitting
// one worker-pool unit per connection, until the server's shutdown
// flag is observed. It services pending refresh requests between
// accepts, draining the pool first exactly as the original's main
// loop called threadpool_wait before cache_tree_refresh.
func (a *Acceptor) Run() {
	go a.acceptLoop(a.plain, false)
	if a.tls != nil {
		go a.acceptLoop(a.tls, true)
	}

	for !a.srv.Flags.ShuttingDown() {
		if a.srv.Flags.TakeRefresh() {
			a.srv.Pool.Wait()
			if err := a.srv.RefreshTree(); err != nil {
				a.srv.Logger.Logf("cache refresh failed: %v", err)
			} else {
				a.srv.Logger.Logf("cache refresh complete")
			}
		}
		time.Sleep(acceptPollInterval)
	}
}

// Close stops both listeners; already-accepted connections still run
// to completion in the worker pool.
func (a *Acceptor) Close() {
	a.plain.Close()
	if a.tls != nil {
		a.tls.Close()
	}
}

func (a *Acceptor) acceptLoop(ln net.Listener, isTLS bool) {
	for {
		if tcpLn, ok := ln.(*net.TCPListener); ok {
			tcpLn.SetDeadline(time.Now().Add(acceptPollInterval))
		}

		conn, err := ln.Accept()
		if err != nil {
			if a.srv.Flags.ShuttingDown() {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			a.srv.Logger.Logf("accept failed: %v", err)
			continue
		}

		a.dispatch(conn, isTLS)
	}
}

// dispatch performs the inline TLS handshake the original did with
// SSL_accept right after accept(), then hands the connection to the
// worker pool. A rejected submission closes the connection
// immediately, matching "threadpool_add_work failed, rejecting
// connection" in main.c.
func (a *Acceptor) dispatch(conn net.Conn, isTLS bool) {
	if isTLS {
		tlsConn := tls.Server(conn, a.srv.TLS)
		if err := tlsConn.Handshake(); err != nil {
			a.srv.Logger.Logf("TLS handshake failed: %v", err)
			conn.Close()
			return
		}
		conn = tlsConn
	}

	submitted := a.srv.Pool.Submit(func() {
		defer conn.Close()
		serveOne(a.srv, conn, isTLS)
	})
	if !submitted {
		a.srv.Logger.Logf("worker pool queue full, rejecting connection")
		conn.Close()
	}
}

func serveOne(srv *server.Server, conn net.Conn, isTLS bool) {
	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	handler.Handle(srv, conn, buf[:n], isTLS)
}
