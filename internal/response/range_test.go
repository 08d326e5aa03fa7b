package response_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/response"
)

func TestResolveRange_SimpleRange(t *testing.T) {
	r, err := response.ResolveRange(0, 99, 10000)
	require.NoError(t, err)
	require.EqualValues(t, 0, r.Start)
	require.EqualValues(t, 99, r.End)
	require.EqualValues(t, 100, r.Length())
}

func TestResolveRange_SuffixRange(t *testing.T) {
	r, err := response.ResolveRange(-200, -1, 10000)
	require.NoError(t, err)
	require.EqualValues(t, 9800, r.Start)
	require.EqualValues(t, 9999, r.End)
	require.EqualValues(t, 200, r.Length())
}

func TestResolveRange_OpenEnded(t *testing.T) {
	r, err := response.ResolveRange(1000, -1, 10000)
	require.NoError(t, err)
	require.EqualValues(t, 1000, r.Start)
	require.EqualValues(t, 9999, r.End)
}

func TestResolveRange_EndClampedToFileSize(t *testing.T) {
	r, err := response.ResolveRange(0, 50000, 10000)
	require.NoError(t, err)
	require.EqualValues(t, 9999, r.End)
}

func TestResolveRange_StartBeyondSizeIsUnsatisfiable(t *testing.T) {
	_, err := response.ResolveRange(20000, -1, 10000)
	require.ErrorIs(t, err, response.ErrUnsatisfiable)
}

func TestResolveRange_EndBeforeStartIsUnsatisfiable(t *testing.T) {
	_, err := response.ResolveRange(500, 100, 10000)
	require.ErrorIs(t, err, response.ErrUnsatisfiable)
}

func TestResolveRange_SuffixLargerThanFileClampsToZero(t *testing.T) {
	r, err := response.ResolveRange(-50000, -1, 10000)
	require.NoError(t, err)
	require.EqualValues(t, 0, r.Start)
	require.EqualValues(t, 9999, r.End)
}
