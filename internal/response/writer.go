// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Response writer. Emits four classes of response: full file (200),
// partial content (206), metadata-only (304/301/416/OPTIONS/error
// pages), and HEAD (200 headers without body). Header construction is
// deterministic and always proceeds in the order laid out in §4.4.

package response

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hexinfra/snap/internal/fingerprint"
	"github.com/hexinfra/snap/internal/ioerrs"
)

const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
const transferBufferSize = 64 * 1024

// Server is the value emitted in the Server header and error pages.
const Server = "Snap/0.4"

// Writer emits a response onto an underlying connection. TLS
// determines whether ETag is included: it is omitted over TLS to
// avoid cross-protocol cache collisions, per §4.4.
type Writer struct {
	conn      io.Writer
	version   string
	keepAlive bool
	isTLS     bool
}

// New returns a Writer bound to conn for one request/response cycle.
func New(conn io.Writer, version string, keepAlive, isTLS bool) *Writer {
	return &Writer{conn: conn, version: version, keepAlive: keepAlive, isTLS: isTLS}
}

// WriteResult reports whether the connection should be treated as a
// normal termination (peer abort mid-body is normal) versus a fatal
// transport error.
type WriteResult struct {
	BytesWritten int64
	Err          error // nil, or a fatal error distinct from a peer abort
	PeerAborted  bool
}

// headerLines renders the status line and headers in the fixed order
// §4.4 prescribes: Content-Type, Content-Length, Accept-Ranges, Date,
// Server, then whatever trailing cache/range/redirect headers the caller
// supplies, then Connection — matching send_response_headers in
// response.c.
func (w *Writer) headerLines(statusCode int, contentLength int64, contentType string, trailing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s\r\n", w.version, statusCode, Message(statusCode))
	if contentType != "" {
		fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n", contentLength)
	b.WriteString("Accept-Ranges: bytes\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(httpDateLayout))
	fmt.Fprintf(&b, "Server: %s\r\n", Server)
	for _, line := range trailing {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	if w.keepAlive {
		b.WriteString("Connection: keep-alive\r\n")
	} else {
		b.WriteString("Connection: close\r\n")
	}
	b.WriteString("\r\n")
	return b.String()
}

// WriteFile streams a full 200 response: headers then the entire
// file content, skipping the body for HEAD requests.
func (w *Writer) WriteFile(f *os.File, size int64, contentType string, entry *fingerprint.Entry, head bool) WriteResult {
	headers := w.headerLines(StatusOK, size, contentType, w.cacheHeaders(entry))
	if err := w.writeAll([]byte(headers)); err != nil {
		return classifyWriteErr(err)
	}
	if head {
		return WriteResult{}
	}
	return w.transferBody(f, 0, size)
}

// WritePartial streams a 206 response for the resolved byte range.
func (w *Writer) WritePartial(f *os.File, fileSize int64, r Range, contentType string, entry *fingerprint.Entry, head bool) WriteResult {
	trailing := w.cacheHeaders(entry)
	trailing = append(trailing, fmt.Sprintf("Content-Range: bytes %d-%d/%d", r.Start, r.End, fileSize))

	headers := w.headerLines(StatusPartialContent, r.Length(), contentType, trailing)
	if err := w.writeAll([]byte(headers)); err != nil {
		return classifyWriteErr(err)
	}
	if head {
		return WriteResult{}
	}
	return w.transferBody(f, r.Start, r.Length())
}

// WriteNotModified emits a 304 with no body.
func (w *Writer) WriteNotModified(entry *fingerprint.Entry) WriteResult {
	headers := w.headerLines(StatusNotModified, 0, "", w.cacheHeaders(entry))
	return classifyWriteErr(w.writeAll([]byte(headers)))
}

// WriteRangeNotSatisfiable emits a 416 with Content-Range: bytes */N.
func (w *Writer) WriteRangeNotSatisfiable(fileSize int64) WriteResult {
	trailing := []string{fmt.Sprintf("Content-Range: bytes */%d", fileSize)}
	headers := w.headerLines(StatusRangeNotSatisfiable, 0, "", trailing)
	return classifyWriteErr(w.writeAll([]byte(headers)))
}

// WriteRedirect emits a 301 Moved Permanently to location.
func (w *Writer) WriteRedirect(location string) WriteResult {
	trailing := []string{fmt.Sprintf("Location: %s", location)}
	headers := w.headerLines(StatusMovedPermanently, 0, "", trailing)
	return classifyWriteErr(w.writeAll([]byte(headers)))
}

// WriteOptions emits the fixed Allow header for OPTIONS requests.
func (w *Writer) WriteOptions() WriteResult {
	trailing := []string{"Allow: GET, HEAD, OPTIONS"}
	headers := w.headerLines(StatusOK, 0, "", trailing)
	return classifyWriteErr(w.writeAll([]byte(headers)))
}

// WriteError emits a minimal HTML error page for statusCode.
func (w *Writer) WriteError(statusCode int) WriteResult {
	msg := Message(statusCode)
	body := fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><h1>%d %s</h1><hr><p>%s</p></body></html>",
		statusCode, msg, statusCode, msg, Server,
	)
	headers := w.headerLines(statusCode, int64(len(body)), "text/html", nil)
	if err := w.writeAll([]byte(headers)); err != nil {
		return classifyWriteErr(err)
	}
	return classifyWriteErr(w.writeAll([]byte(body)))
}

func (w *Writer) cacheHeaders(entry *fingerprint.Entry) []string {
	if entry == nil {
		return nil
	}
	var lines []string
	if !w.isTLS {
		lines = append(lines, fmt.Sprintf(`ETag: "%d"`, entry.ContentHash))
	}
	if entry.LastModified != "" {
		lines = append(lines, fmt.Sprintf("Last-Modified: %s", entry.LastModified))
	}
	return lines
}

// transferBody seeks to offset and streams length bytes in fixed-size
// blocks, retrying on EINTR and treating a peer abort as a normal
// termination rather than a fatal error.
func (w *Writer) transferBody(f *os.File, offset, length int64) WriteResult {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return WriteResult{Err: err}
	}

	buf := make([]byte, transferBufferSize)
	var sent int64
	remaining := length
	for remaining > 0 {
		toRead := int64(len(buf))
		if remaining < toRead {
			toRead = remaining
		}
		n, err := f.Read(buf[:toRead])
		if err != nil && err != io.EOF {
			if ioerrs.IsInterrupted(err) {
				continue
			}
			return WriteResult{BytesWritten: sent, Err: err}
		}
		if n == 0 {
			break
		}
		if err := w.writeAll(buf[:n]); err != nil {
			if ioerrs.IsPeerAbort(err) {
				return WriteResult{BytesWritten: sent, PeerAborted: true}
			}
			return WriteResult{BytesWritten: sent, Err: err}
		}
		sent += int64(n)
		remaining -= int64(n)
	}
	return WriteResult{BytesWritten: sent}
}

func (w *Writer) writeAll(p []byte) error {
	for len(p) > 0 {
		n, err := w.conn.Write(p)
		if err != nil {
			if ioerrs.IsInterrupted(err) {
				continue
			}
			return err
		}
		p = p[n:]
	}
	return nil
}

func classifyWriteErr(err error) WriteResult {
	if err == nil {
		return WriteResult{}
	}
	if ioerrs.IsPeerAbort(err) {
		return WriteResult{PeerAborted: true}
	}
	return WriteResult{Err: err}
}
