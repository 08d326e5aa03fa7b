// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package request

import (
	"strconv"
	"strings"
)

// MaxRequestSize bounds the raw buffer a single request may occupy.
// Larger buffers are rejected with 400 before parsing is attempted.
const MaxRequestSize = 64 * 1024

// Parse produces a Request from a raw byte buffer containing one HTTP
// request terminated by "\r\n\r\n". It never retains a reference into
// buf: every field copied out is an owned string.
func Parse(buf []byte) (*Request, error) {
	if len(buf) > MaxRequestSize {
		return nil, newError(KindTooLarge, "request exceeds maximum size")
	}

	raw := string(buf)
	headEnd := strings.Index(raw, "\r\n\r\n")
	if headEnd < 0 {
		headEnd = len(raw)
	}
	head := raw[:headEnd]

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, newError(KindBadRequest, "empty request")
	}

	startLine := strings.Fields(lines[0])
	if len(startLine) != 3 {
		return nil, newError(KindBadRequest, "malformed request line")
	}

	req := &Request{
		RawMethod: startLine[0],
		Target:    startLine[1],
		Version:   startLine[2],
		RangeEnd:  -1,
	}

	switch req.Version {
	case "HTTP/1.0":
		req.KeepAlive = false
	case "HTTP/1.1":
		req.KeepAlive = true
	default:
		return nil, newError(KindUnsupportedVersion, "unsupported HTTP version")
	}

	switch req.RawMethod {
	case "GET":
		req.Method = MethodGET
	case "HEAD":
		req.Method = MethodHEAD
	case "OPTIONS":
		req.Method = MethodOPTIONS
	}

	if err := validatePath(req.Target); err != nil {
		return nil, err
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		parseHeaderLine(req, line)
	}

	if req.IsHTTP11() && req.Host == "" {
		return nil, newError(KindBadRequest, "missing Host header on HTTP/1.1")
	}

	applyConnectionOverride(req)

	return req, nil
}

func applyConnectionOverride(req *Request) {
	if req.Connection == "" {
		return
	}
	req.KeepAlive = strings.EqualFold(req.Connection, "keep-alive")
}

func validatePath(target string) error {
	if strings.Contains(target, "..") || strings.Contains(target, "//") || strings.ContainsRune(target, 0) {
		return newError(KindForbiddenPath, "path traversal or invalid character in target")
	}
	return nil
}

func parseHeaderLine(req *Request, line string) {
	name, value, ok := splitHeader(line)
	if !ok {
		return
	}
	switch strings.ToLower(name) {
	case "host":
		req.Host = value
	case "connection":
		req.Connection = value
	case "user-agent":
		req.UserAgent = value
	case "referer":
		req.Referer = value
	case "accept":
		req.Accept = value
	case "accept-encoding":
		req.AcceptEncoding = value
	case "accept-language":
		req.AcceptLanguage = value
	case "priority":
		req.Priority = value
	case "dnt":
		req.DNT = value == "1"
	case "sec-gpc":
		req.SecGPC = value == "1"
	case "upgrade-insecure-requests":
		req.UpgradeInsecureRequests = value == "1"
	case "if-none-match":
		req.IfNoneMatch = parseETag(value)
	case "if-modified-since":
		req.IfModifiedSince = value
	case "range":
		parseRange(req, value)
	}
}

// splitHeader splits "Name: value" on the first colon and trims the
// single space that conventionally follows it.
func splitHeader(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	name = line[:i]
	value = line[i+1:]
	value = strings.TrimPrefix(value, " ")
	return name, value, true
}

// parseETag unquotes an If-None-Match value and parses it as an
// unsigned decimal. A parse failure yields zero, meaning "no
// validator supplied" rather than a hard error.
func parseETag(value string) uint32 {
	value = strings.Trim(value, `"`)
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// parseRange recognizes "bytes=start-end", "bytes=start-", and
// "bytes=-suffix". Any other form leaves the request non-partial,
// matching the source's silent-ignore policy for malformed ranges.
func parseRange(req *Request, value string) {
	const prefix = "bytes="
	if !strings.HasPrefix(value, prefix) {
		return
	}
	spec := value[len(prefix):]

	if strings.HasPrefix(spec, "-") {
		suffix, err := strconv.ParseInt(spec[1:], 10, 64)
		if err != nil {
			return
		}
		req.HasRange = true
		req.RangeStart = -suffix
		req.RangeEnd = -1
		return
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return
	}
	startStr := spec[:dash]
	endStr := strings.TrimSpace(spec[dash+1:])

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return
	}

	req.HasRange = true
	req.RangeStart = start
	req.RangeEnd = -1
	if endStr != "" {
		if end, err := strconv.ParseInt(endStr, 10, 64); err == nil {
			req.RangeEnd = end
		}
	}
}
