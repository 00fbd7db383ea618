package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "sess"))
	require.NoError(t, err)

	require.NoError(t, fs.Set(ctx, KeyToken, []byte("tok-abc")))

	got, err := fs.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-abc"), got)
}

func TestFileStorage_GetMissingKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorage_SetOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Set(ctx, KeyUser, []byte(`{"id":1}`)))
	require.NoError(t, fs.Set(ctx, KeyUser, []byte(`{"id":2}`)))

	got, err := fs.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":2}`), got)
}

func TestFileStorage_DeleteToleratesMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Set(ctx, KeyToken, []byte("tok")))
	require.NoError(t, fs.Delete(ctx, KeyToken, "never-existed"))

	_, err = fs.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorage_NoTempFilesLeftBehind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, KeyToken, []byte("tok")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestNewFileStorage_RequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewFileStorage("  ")
	assert.Error(t, err)
}
