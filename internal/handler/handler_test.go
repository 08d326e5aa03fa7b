package handler_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/fingerprint"
	"github.com/hexinfra/snap/internal/handler"
	"github.com/hexinfra/snap/internal/mimetype"
	"github.com/hexinfra/snap/internal/server"
	"github.com/hexinfra/snap/internal/snapconfig"
	"github.com/hexinfra/snap/internal/snaplog"
	"github.com/hexinfra/snap/internal/workerpool"
)

func newTestServer(t *testing.T, webroot string) *server.Server {
	t.Helper()
	cfg, err := snapconfig.Load([]string{"-w", webroot})
	require.NoError(t, err)

	tree, err := fingerprint.Build(webroot)
	require.NoError(t, err)

	pool := workerpool.Create(1, 1)
	t.Cleanup(pool.Destroy)

	return server.New(cfg, tree, pool, nil, snaplog.Noop(), nil, mimetype.New(), nil)
}

func webpagesDir(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "webpages")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestHandle_ServesStaticFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webpagesDir(t, dir), "hello.txt"), []byte("hello world"), 0o644))
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /hello.txt HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	resp := buf.String()
	require.Contains(t, resp, "200 OK")
	require.Contains(t, resp, "hello world")
}

func TestHandle_RootServesLandingPage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webpagesDir(t, dir), "landing.html"), []byte("<h1>welcome</h1>"), 0o644))
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	resp := buf.String()
	require.Contains(t, resp, "200 OK")
	require.Contains(t, resp, "<h1>welcome</h1>")
}

func TestHandle_PathTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	webpagesDir(t, dir)
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /../etc/passwd HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), "403 Forbidden")
}

func TestHandle_MissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	webpagesDir(t, dir)
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /nope.txt HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), "404 Not Found")
}

func TestHandle_UnsupportedVersionIs505(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET / HTTP/2.0\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), "505 HTTP Version Not Supported")
}

func TestHandle_OptionsRequest(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("OPTIONS /hello.txt HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), "Allow: GET, HEAD, OPTIONS")
}

func TestHandle_UnrecognizedMethodIs501(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("POST /hello.txt HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), "501 Not Implemented")
}

func TestHandle_RangeRequest(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("a"), 10000)
	require.NoError(t, os.WriteFile(filepath.Join(webpagesDir(t, dir), "big.bin"), content, 0o644))
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /big.bin HTTP/1.1\r\nHost: example.com\r\nRange: bytes=0-99\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	resp := buf.String()
	require.Contains(t, resp, "206 Partial Content")
	require.Contains(t, resp, "Content-Range: bytes 0-99/10000")
}

func TestHandle_StatusEndpoint(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /api/status HTTP/1.1\r\nHost: example.com\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	require.Contains(t, buf.String(), `"status":"online"`)
}

func TestHandle_InsecureUpgradeRedirectsToHTTPS(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	var buf bytes.Buffer
	raw := []byte("GET /secret HTTP/1.1\r\nHost: example.com\r\nUpgrade-Insecure-Requests: 1\r\n\r\n")
	handler.Handle(srv, &buf, raw, false)

	resp := buf.String()
	require.Contains(t, resp, "301 Moved Permanently")
	require.Contains(t, resp, "Location: https://example.com/secret")
}
