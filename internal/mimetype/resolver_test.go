package mimetype_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/mimetype"
)

func TestTypeForPath_BuiltinExtension(t *testing.T) {
	r := mimetype.New()
	require.Equal(t, "text/html", r.TypeForPath("/webroot/webpages/landing.html"))
}

func TestTypeForPath_UnknownExtensionDefaults(t *testing.T) {
	r := mimetype.New()
	require.Equal(t, "application/octet-stream", r.TypeForPath("/webroot/webpages/data.unknownext"))
}

func TestTypeForPath_IsCaseInsensitive(t *testing.T) {
	r := mimetype.New()
	require.Equal(t, "text/html", r.TypeForPath("/webroot/webpages/LANDING.HTML"))
}

func TestLoadFile_OverridesBuiltinTable(t *testing.T) {
	r := mimetype.New()
	path := filepath.Join(t.TempDir(), "mime.types")
	require.NoError(t, os.WriteFile(path, []byte("application/x-custom cst\ntext/x-custom-html htm html\n"), 0o644))

	require.NoError(t, r.LoadFile(path))
	require.Equal(t, "application/x-custom", r.TypeForPath("file.cst"))
	require.Equal(t, "text/x-custom-html", r.TypeForPath("page.html"))
}

func TestLoadFile_MissingFileIsNotAnError(t *testing.T) {
	r := mimetype.New()
	require.NoError(t, r.LoadFile(filepath.Join(t.TempDir(), "absent.types")))
}
