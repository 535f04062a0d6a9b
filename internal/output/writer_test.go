package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Output Writer:
// - HeaderPaths swaps the source extension for the configured suffixes
// - WriteFile creates and overwrites files and leaves no temp files behind
// - WriteFiles writes nothing when one destination cannot be staged
// - Errors name the destination path

func TestHeaderPaths(t *testing.T) {
	t.Parallel()

	pub, priv := HeaderPaths("src/list.c", ".h", ".priv.h")
	assert.Equal(t, "src/list.h", pub)
	assert.Equal(t, "src/list.priv.h", priv)

	pub, priv = HeaderPaths("noext", ".h", "_internal.h")
	assert.Equal(t, "noext.h", pub)
	assert.Equal(t, "noext_internal.h", priv)
}

func TestWriteFile_CreatesAndOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "list.h")

	require.NoError(t, WriteFile(path, []byte("first\n")))
	require.NoError(t, WriteFile(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "list.h", entries[0].Name())
}

func TestWriteFiles_AllOrNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "list.h")
	bad := filepath.Join(dir, "missing", "list.priv.h")

	err := WriteFiles(
		File{Path: good, Data: []byte("public\n")},
		File{Path: bad, Data: []byte("private\n")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no header and no temp file may remain")
}

func TestWriteFiles_Both(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pub, priv := HeaderPaths(filepath.Join(dir, "list.c"), ".h", ".priv.h")

	require.NoError(t, WriteFiles(
		File{Path: pub, Data: []byte("public\n")},
		File{Path: priv, Data: []byte("")},
	))

	data, err := os.ReadFile(pub)
	require.NoError(t, err)
	assert.Equal(t, "public\n", string(data))

	data, err = os.ReadFile(priv)
	require.NoError(t, err)
	assert.Empty(t, data)
}
