// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Handler runs the per-connection state machine: parse the one
// request a connection carries, dispatch it, write exactly one
// response, and return. It never loops to read a second request on
// the same socket — the original closed every connection after one
// cycle regardless of the Connection header it had just emitted
// (handle_client_thread in main.c falls straight through to cleanup
// after send_file_response), and this keeps that behavior rather than
// "fixing" it into a real keep-alive loop.
package handler

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexinfra/snap/internal/request"
	"github.com/hexinfra/snap/internal/response"
	"github.com/hexinfra/snap/internal/server"
	"github.com/hexinfra/snap/internal/statusapi"
)

// Handle parses raw (one request, possibly followed by a body) and
// writes exactly one HTTP response to conn.
func Handle(srv *server.Server, conn io.Writer, raw []byte, isTLS bool) {
	req, err := request.Parse(raw)
	if err != nil {
		serveParseError(conn, err, isTLS)
		return
	}

	w := response.New(conn, req.Version, req.KeepAlive, isTLS)

	if !isTLS && req.UpgradeInsecureRequests && req.Host != "" {
		location := "https://" + req.Host + req.Target
		srv.Logger.Logf("redirecting %s to %s", req.Target, location)
		w.WriteRedirect(location)
		return
	}

	if statusapi.Handle(conn, req.Version, req.Method, req.Target, bodyOf(raw), srv, srv.Creds) {
		return
	}

	if req.Method == request.MethodOPTIONS {
		w.WriteOptions()
		return
	}
	if req.Method != request.MethodGET && req.Method != request.MethodHEAD {
		srv.Logger.Logf("unsupported method %q", req.RawMethod)
		w.WriteError(response.StatusNotImplemented)
		return
	}

	serveStatic(srv, w, req)
}

func serveParseError(conn io.Writer, err error, isTLS bool) {
	perr, ok := err.(*request.Error)
	if !ok {
		response.New(conn, "HTTP/1.1", false, isTLS).WriteError(response.StatusInternalServerError)
		return
	}

	var code int
	switch perr.Kind {
	case request.KindUnsupportedVersion:
		code = response.StatusHTTPVersionNotSupported
	case request.KindForbiddenPath:
		code = response.StatusForbidden
	default:
		code = response.StatusBadRequest
	}
	response.New(conn, "HTTP/1.1", false, isTLS).WriteError(code)
}

func serveStatic(srv *server.Server, w *response.Writer, req *request.Request) {
	fullPath, err := resolvePath(srv.Config.WebRoot, req.Target)
	if err != nil {
		w.WriteError(response.StatusForbidden)
		return
	}

	entry, cached := srv.Tree().Lookup(fullPath)

	if cached && req.IfModifiedSince != "" && entry.LastModified != "" {
		if entry.LastModified <= req.IfModifiedSince {
			w.WriteNotModified(entry)
			return
		}
	}
	if cached && req.IfNoneMatch != 0 && entry.ContentHash == req.IfNoneMatch {
		w.WriteNotModified(entry)
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		statusErr := response.NewStatusError(mapOpenError(err), err)
		srv.Logger.Logf("open %s: %v", fullPath, statusErr)
		w.WriteError(statusErr.Code)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		w.WriteError(response.StatusNotFound)
		return
	}

	contentType := srv.Mimes.TypeForPath(fullPath)
	head := req.Method == request.MethodHEAD

	var result response.WriteResult
	if req.HasRange {
		r, err := response.ResolveRange(req.RangeStart, req.RangeEnd, info.Size())
		if err != nil {
			w.WriteRangeNotSatisfiable(info.Size())
			return
		}
		result = w.WritePartial(f, info.Size(), r, contentType, entry, head)
	} else {
		result = w.WriteFile(f, info.Size(), contentType, entry, head)
	}
	if result.Err != nil {
		srv.Logger.Logf("failed to send file response for %s: %v", fullPath, result.Err)
	}
}

// resolvePath joins webroot/webpages and target, rejecting any result
// that escapes webroot/webpages once percent-escapes are decoded and
// ".." segments are cleaned — the parser already rejects literal ".."
// in the raw target, this is the backstop the original's
// resolve_request_path performed after building "%s/webpages%s"
// (request.c:294). Symlinks are not resolved: a link inside
// webroot/webpages is followed when the file is opened.
func resolvePath(webroot, target string) (string, error) {
	unescaped, err := url.PathUnescape(target)
	if err != nil {
		return "", err
	}
	if idx := strings.IndexByte(unescaped, '?'); idx >= 0 {
		unescaped = unescaped[:idx]
	}
	if unescaped == "" || unescaped == "/" {
		unescaped = "/landing.html"
	}

	docRoot := filepath.Join(webroot, "webpages")
	joined := filepath.Join(docRoot, unescaped)
	absRoot, err := filepath.Abs(docRoot)
	if err != nil {
		return "", err
	}
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	if absJoined != absRoot && !strings.HasPrefix(absJoined, absRoot+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return absJoined, nil
}

func mapOpenError(err error) int {
	switch {
	case os.IsNotExist(err):
		return response.StatusNotFound
	case os.IsPermission(err):
		return response.StatusForbidden
	default:
		return response.StatusInternalServerError
	}
}

// bodyOf returns whatever follows the blank line terminating the
// request head, or nil if there is none.
func bodyOf(raw []byte) []byte {
	sep := []byte("\r\n\r\n")
	i := bytes.Index(raw, sep)
	if i < 0 {
		return nil
	}
	return raw[i+len(sep):]
}
