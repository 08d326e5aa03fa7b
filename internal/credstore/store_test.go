package credstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/credstore"
)

func TestAddAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.gob")
	store, err := credstore.Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Add("alice", "correct-horse"))
	require.NoError(t, store.Verify("alice", "correct-horse"))
}

func TestVerify_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.gob")
	store, err := credstore.Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Add("alice", "correct-horse"))
	require.ErrorIs(t, store.Verify("alice", "wrong"), credstore.ErrWrongPassword)
}

func TestVerify_UnknownUser(t *testing.T) {
	store, err := credstore.Open(filepath.Join(t.TempDir(), "creds.gob"))
	require.NoError(t, err)

	require.ErrorIs(t, store.Verify("nobody", "x"), credstore.ErrUnknownUser)
}

func TestOpen_MissingFileIsNotError(t *testing.T) {
	store, err := credstore.Open(filepath.Join(t.TempDir(), "missing.gob"))
	require.NoError(t, err)
	require.ErrorIs(t, store.Verify("alice", "x"), credstore.ErrUnknownUser)
}

func TestAdd_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.gob")
	store, err := credstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Add("bob", "s3cr3t"))

	reopened, err := credstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Verify("bob", "s3cr3t"))
}
