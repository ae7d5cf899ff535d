package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "lists.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, ActiveKey, "Work"))

	again, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := again.Get(ctx, ActiveKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Work", v)
}

func TestFileKVMissingKey(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "lists.json"))
	require.NoError(t, err)

	_, ok, err := f.Get(context.Background(), ListsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVCorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lists.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)

	_, _, err = f.Get(ctx, ListsKey)
	assert.Error(t, err)

	// A successful write replaces the corrupt document.
	require.NoError(t, f.Set(ctx, ActiveKey, "Personal"))
	v, ok, err := f.Get(ctx, ActiveKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Personal", v)
}

func TestFileKVEmptyPath(t *testing.T) {
	_, err := OpenFile("")
	assert.Error(t, err)
}
