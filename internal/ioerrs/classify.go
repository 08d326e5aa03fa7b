// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Classification of the errno-flavored errors the serving core treats
// specially: a peer resetting or closing a connection mid-write is a
// normal termination (video-seeking clients abort constantly), never
// a fatal error. Grounded on golang.org/x/sys/unix's errno constants
// rather than hand-rolled string matching on err.Error().

package ioerrs

import (
	"errors"
	"io"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsPeerAbort reports whether err represents a client disconnecting
// mid-transfer (ECONNRESET, EPIPE) or an already-closed pipe/stream.
// Such errors are logged and the connection is closed as a normal
// termination, not a fatal write error.
func IsPeerAbort(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.EOF) {
		return true
	}
	return errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

// IsInterrupted reports whether err is EINTR, which callers retry
// rather than treat as failure.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, syscall.EINTR)
}
