// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Snap server: a static-content HTTP/1.x origin server with plaintext
// and TLS listeners, a bounded worker pool, and a content-addressed
// validator cache.
package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"

	"github.com/hexinfra/snap/internal/acceptor"
	"github.com/hexinfra/snap/internal/credstore"
	"github.com/hexinfra/snap/internal/fingerprint"
	"github.com/hexinfra/snap/internal/lifecycle"
	"github.com/hexinfra/snap/internal/mimetype"
	"github.com/hexinfra/snap/internal/server"
	"github.com/hexinfra/snap/internal/snapconfig"
	"github.com/hexinfra/snap/internal/snaplog"
	"github.com/hexinfra/snap/internal/workerpool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "snapd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := snapconfig.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logOut := os.Stderr
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		logger := snaplog.New(f)
		return serve(cfg, logger)
	}

	logger := snaplog.New(logOut)
	return serve(cfg, logger)
}

func serve(cfg *snapconfig.Config, logger snaplog.Logger) error {
	defer logger.Close()
	logger.Logf("Snap/0.4 starting, pid=%d", os.Getpid())

	tree, err := fingerprint.Build(cfg.WebRoot)
	if err != nil {
		return fmt.Errorf("fingerprint tree: %w", err)
	}
	logger.Logf("indexed %d files under %s", tree.Size(), cfg.WebRoot)

	mimes := mimetype.New()
	if cfg.MimeTypes != "" {
		if err := mimes.LoadFile(cfg.MimeTypes); err != nil {
			return fmt.Errorf("mime types: %w", err)
		}
	}

	var creds *credstore.Store
	if cfg.CredStore != "" {
		creds, err = credstore.Open(cfg.CredStore)
		if err != nil {
			return fmt.Errorf("credential store: %w", err)
		}
	}

	var tlsConfig *tls.Config
	if cfg.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return fmt.Errorf("TLS certificate: %w", err)
		}
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	pool := workerpool.Create(cfg.Workers, cfg.MaxQueue)
	defer pool.Destroy()

	flags := lifecycle.New()

	srv := server.New(cfg, tree, pool, tlsConfig, logger, flags, mimes, creds)

	httpLn, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		return fmt.Errorf("HTTP listener: %w", err)
	}
	defer httpLn.Close()

	var httpsLn net.Listener
	if tlsConfig != nil {
		httpsLn, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPSPort))
		if err != nil {
			return fmt.Errorf("HTTPS listener: %w", err)
		}
		defer httpsLn.Close()
	}

	acc := acceptor.New(srv, httpLn, httpsLn)
	logger.Logf("listening on :%d (http) and :%d (https, tls=%v)", cfg.HTTPPort, cfg.HTTPSPort, tlsConfig != nil)

	acc.Run()

	logger.Logf("shutdown requested, draining worker pool")
	acc.Close()
	pool.Wait()
	logger.Logf("shutdown complete")
	return nil
}
