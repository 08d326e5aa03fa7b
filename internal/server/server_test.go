package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/fingerprint"
	"github.com/hexinfra/snap/internal/mimetype"
	"github.com/hexinfra/snap/internal/server"
	"github.com/hexinfra/snap/internal/snapconfig"
	"github.com/hexinfra/snap/internal/snaplog"
	"github.com/hexinfra/snap/internal/workerpool"
)

func TestSnapshot_ReflectsPoolAndTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	cfg, err := snapconfig.Load([]string{"-w", dir})
	require.NoError(t, err)
	tree, err := fingerprint.Build(dir)
	require.NoError(t, err)
	pool := workerpool.Create(1, 1)
	defer pool.Destroy()

	srv := server.New(cfg, tree, pool, nil, snaplog.Noop(), nil, mimetype.New(), nil)
	snap := srv.Snapshot()
	require.Equal(t, 1, snap.TreeSize)
	require.Zero(t, snap.Queued)
	require.Zero(t, snap.Active)
}

func TestRefreshTree_PicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := snapconfig.Load([]string{"-w", dir})
	require.NoError(t, err)
	tree, err := fingerprint.Build(dir)
	require.NoError(t, err)
	pool := workerpool.Create(1, 1)
	defer pool.Destroy()

	srv := server.New(cfg, tree, pool, nil, snaplog.Noop(), nil, mimetype.New(), nil)
	require.Equal(t, 0, srv.Tree().Size())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))
	require.NoError(t, srv.RefreshTree())
	require.Equal(t, 1, srv.Tree().Size())
}
