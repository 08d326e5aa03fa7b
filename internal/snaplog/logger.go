// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Loggers log events. Snap keeps the teacher's small two-method
// Logger interface (Logf, Close) but backs the default
// implementation with zerolog instead of a bare writer, matching how
// the rest of the retrieved corpus reaches for structured logging
// wherever it logs at all.
package snaplog

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the textual-logging collaborator the serving core talks
// to. It never blocks the caller on a full disk past the underlying
// writer's own buffering.
type Logger interface {
	Logf(f string, v ...any)
	Close() error
}

// zerologLogger wraps a zerolog.Logger to satisfy Logger.
type zerologLogger struct {
	z      zerolog.Logger
	closer io.Closer
}

// New returns a Logger writing structured lines to w. If w also
// implements io.Closer, Close closes it.
func New(w io.Writer) Logger {
	z := zerolog.New(w).With().Timestamp().Logger()
	l := &zerologLogger{z: z}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

func (l *zerologLogger) Logf(f string, v ...any) {
	l.z.Info().Msgf(f, v...)
}

func (l *zerologLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// noopLogger discards everything; used in tests.
type noopLogger struct{}

func (noopLogger) Logf(f string, v ...any) {}
func (noopLogger) Close() error            { return nil }

// Noop returns a Logger that discards all output.
func Noop() Logger { return noopLogger{} }
