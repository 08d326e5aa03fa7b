// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Status API: the handful of /api/ routes the original dispatched
// through a small table in api.c (handle_api_request), here reduced to
// the two that carry real state: a JSON status snapshot and an
// optional credential-backed login check. Responses are small enough
// that a dedicated header writer, independent of response.Writer's
// file-transfer machinery, is simpler than reusing it.
package statusapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/hexinfra/snap/internal/credstore"
	"github.com/hexinfra/snap/internal/request"
)

const pathPrefix = "/api/"

// Snapshot is the JSON body served by GET /api/status.
type Snapshot struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Queued    int    `json:"queued"`
	Active    int    `json:"active"`
	Completed int64  `json:"completed"`
	Rejected  int64  `json:"rejected"`
	TreeSize  int    `json:"tree_size"`
}

// StatsSource supplies the live counters behind GET /api/status. The
// server context implements it.
type StatsSource interface {
	Snapshot() Snapshot
}

// Handle serves target if it has pathPrefix, writing a complete HTTP
// response (status line, headers, body) to w, and reports whether it
// did so. creds may be nil, in which case /api/login always answers
// 401 with the same {"ok":false} body as a failed login, matching the
// original behavior of an API route with nothing behind it.
func Handle(w io.Writer, version string, method request.Method, target string, body []byte, source StatsSource, creds *credstore.Store) bool {
	if !strings.HasPrefix(target, pathPrefix) {
		return false
	}

	switch target {
	case "/api/status":
		handleStatus(w, version, method, source)
	case "/api/login":
		handleLogin(w, version, method, body, creds)
	default:
		writeJSON(w, version, 404, []byte(`{"error":"unknown API endpoint"}`))
	}
	return true
}

func handleStatus(w io.Writer, version string, method request.Method, source StatsSource) {
	if method != request.MethodGET && method != request.MethodHEAD {
		writeJSON(w, version, 405, []byte(`{"error":"method not allowed"}`))
		return
	}

	snap := source.Snapshot()
	snap.Status = "online"
	body, err := json.Marshal(snap)
	if err != nil {
		writeJSON(w, version, 500, []byte(`{"error":"internal error"}`))
		return
	}
	if method == request.MethodHEAD {
		writeHeaders(w, version, 200, "application/json", int64(len(body)))
		return
	}
	writeJSON(w, version, 200, body)
}

func handleLogin(w io.Writer, version string, method request.Method, body []byte, creds *credstore.Store) {
	if creds == nil {
		writeJSON(w, version, 401, []byte(`{"ok":false}`))
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		writeJSON(w, version, 400, []byte(`{"error":"malformed body"}`))
		return
	}

	user, pass := values.Get("user"), values.Get("pass")
	if err := creds.Verify(user, pass); err != nil {
		writeJSON(w, version, 401, []byte(`{"ok":false}`))
		return
	}
	writeJSON(w, version, 200, []byte(`{"ok":true}`))
}

func writeJSON(w io.Writer, version string, status int, body []byte) {
	writeHeaders(w, version, status, "application/json", int64(len(body)))
	w.Write(body)
}

func writeHeaders(w io.Writer, version string, status int, contentType string, length int64) {
	fmt.Fprintf(w, "%s %d %s\r\n", version, status, statusText(status))
	fmt.Fprintf(w, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(w, "Content-Length: %d\r\n", length)
	fmt.Fprintf(w, "Date: %s\r\n", time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	fmt.Fprintf(w, "Connection: close\r\n\r\n")
}

func statusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	default:
		return "Internal Server Error"
	}
}
