package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicAndExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache", "123_GBR_regional_assessment.tiff")

	assert.False(t, Exists(path))

	require.NoError(t, WriteAtomic(path, []byte("raster bytes")))
	assert.True(t, Exists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("raster bytes"), data)

	// No staging file left behind.
	_, err = os.Stat(TempPath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestExistsIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.geojson")
	tmp := TempPath(path)

	require.NoError(t, os.WriteFile(tmp, []byte("null"), 0644))
	require.NoError(t, Commit(tmp, path))
	assert.True(t, Exists(path))

	assert.Error(t, Commit(filepath.Join(dir, "missing.tmp"), path))
}
