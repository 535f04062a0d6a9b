package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Discovery:
// - Discover finds sources in the root and in nested directories with "**/" patterns
// - Discover skips ignored directories and ignored files
// - Discover returns paths in lexical order
// - Matches accepts relative and absolute paths and rejects paths outside the root
// - New rejects malformed patterns

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0644))
	}
}

func TestDiscover_FindsSourcesAndHonoursIgnores(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"main.c",
		"main.h",
		"src/list.c",
		"src/deep/tree.c",
		"build/gen.c",
		".git/hooks/x.c",
		"vendor/lib/dep.c",
		"src/skip_test.c",
	)

	d, err := New(root, []string{"**/*.c"}, []string{".git/**", "build/**", "vendor/**", "**/*_test.c"})
	require.NoError(t, err)

	files, err := d.Discover()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "main.c"),
		filepath.Join(root, "src", "deep", "tree.c"),
		filepath.Join(root, "src", "list.c"),
	}, files)
}

func TestDiscover_EmptyTree(t *testing.T) {
	t.Parallel()

	d, err := New(t.TempDir(), []string{"**/*.c"}, nil)
	require.NoError(t, err)

	files, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_MissingRoot(t *testing.T) {
	t.Parallel()

	d, err := New(filepath.Join(t.TempDir(), "missing"), []string{"**/*.c"}, nil)
	require.NoError(t, err)

	_, err = d.Discover()
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d, err := New(root, []string{"**/*.c"}, []string{"build/**"})
	require.NoError(t, err)
	assert.Equal(t, root, d.RootDir())

	assert.True(t, d.Matches("main.c"))
	assert.True(t, d.Matches("src/list.c"))
	assert.True(t, d.Matches(filepath.Join(root, "src", "list.c")))
	assert.False(t, d.Matches("src/list.h"))
	assert.False(t, d.Matches("build/gen.c"))
	assert.False(t, d.Matches("build/nested/gen.c"))
	assert.False(t, d.Matches(filepath.Join(filepath.Dir(root), "elsewhere.c")))
}

func TestSkipDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d, err := New(root, []string{"**/*.c"}, []string{".git/**", "build/**"})
	require.NoError(t, err)

	assert.False(t, d.SkipDir(root))
	assert.False(t, d.SkipDir(filepath.Join(root, "src")))
	assert.True(t, d.SkipDir(filepath.Join(root, ".git")))
	assert.True(t, d.SkipDir(filepath.Join(root, "build", "obj")))
	assert.True(t, d.SkipDir("build"))
	assert.True(t, d.SkipDir(filepath.Dir(root)))
}

func TestNew_RejectsMalformedPattern(t *testing.T) {
	t.Parallel()

	_, err := New(t.TempDir(), []string{"[unclosed"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}
