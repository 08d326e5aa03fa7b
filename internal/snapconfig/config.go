// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Server configuration: process-wide state, initialized once at
// startup from the argument vector, immutable thereafter. This is the
// external collaborator named in §6's CLI surface; the serving core
// only ever reads from the returned *Config.
package snapconfig

import (
	"errors"
	"flag"
	"fmt"
)

// Config is immutable once returned by Load.
type Config struct {
	WebRoot   string
	HTTPPort  int
	HTTPSPort int
	CertPath  string
	KeyPath   string
	Workers   int
	MaxQueue  int
	MimeTypes string // optional path to a system mime.types-style file
	CredStore string // optional path to the credential store; empty disables it
	LogPath   string // empty means stderr
}

const (
	defaultWebRoot   = "."
	defaultHTTPPort  = 8080
	defaultHTTPSPort = 8443
	defaultWorkers   = 8
	defaultMaxQueue  = 256
)

// Load parses args (typically os.Args[1:]) into a Config.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("snapd", flag.ContinueOnError)

	cfg := &Config{}
	fs.StringVar(&cfg.WebRoot, "w", defaultWebRoot, "webroot path")
	fs.IntVar(&cfg.HTTPPort, "p", defaultHTTPPort, "HTTP listen port")
	fs.IntVar(&cfg.HTTPSPort, "s", defaultHTTPSPort, "HTTPS listen port")
	fs.IntVar(&cfg.Workers, "t", defaultWorkers, "worker count")
	fs.IntVar(&cfg.MaxQueue, "q", defaultMaxQueue, "maximum queue depth")
	fs.StringVar(&cfg.CertPath, "c", "", "TLS certificate path")
	fs.StringVar(&cfg.KeyPath, "k", "", "TLS private key path")
	fs.StringVar(&cfg.MimeTypes, "m", "", "path to an additional mime.types file")
	fs.StringVar(&cfg.CredStore, "u", "", "path to the credential store (optional)")
	fs.StringVar(&cfg.LogPath, "l", "", "log file path (default stderr)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.WebRoot == "" {
		return errors.New("webroot must not be empty")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.HTTPSPort <= 0 || c.HTTPSPort > 65535 {
		return fmt.Errorf("invalid HTTPS port: %d", c.HTTPSPort)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive: %d", c.Workers)
	}
	if c.MaxQueue < 0 {
		return fmt.Errorf("max queue depth must not be negative: %d", c.MaxQueue)
	}
	if (c.CertPath == "") != (c.KeyPath == "") {
		return errors.New("certificate and key paths must be supplied together")
	}
	return nil
}

// TLSEnabled reports whether a certificate/key pair was configured.
func (c *Config) TLSEnabled() bool { return c.CertPath != "" && c.KeyPath != "" }
