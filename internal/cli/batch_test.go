package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/autoheaders/internal/config"
	"github.com/mvp-joe/autoheaders/internal/diag"
)

// Test Plan for Batch, Watch Session and Inspect:
// - executeBatch writes both headers next to every discovered source
// - executeBatch skips ignored directories
// - A failing source is reported, leaves no headers, and does not stop the others
// - reportFailures prints every failure and returns a summary error
// - A cancelled context aborts the batch
// - watchSession.Handle regenerates changed sources, reusing cached results
// - watchSession.Handle keeps headers of removed sources and reports failures
// - executeInspect prints the classification table as YAML

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const listSource = `// @guard LIST_H

int list_len(void) { return 0; }

static int helper(void) { return 1; }
`

const listPublic = "#ifndef LIST_H\n#define LIST_H\n\nint list_len(void);\n\n#endif\n"

const listPrivate = "static int helper(void);\n"

func TestExecuteBatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, filepath.Join(root, "list.c"), listSource)
	writeSource(t, filepath.Join(root, "src", "tree.c"), "int tree_size(void) { return 0; }\n")
	writeSource(t, filepath.Join(root, "build", "gen.c"), "int gen(void) { return 0; }\n")
	writeSource(t, filepath.Join(root, "src", "broken.c"), "int broken(void {\n")

	var out bytes.Buffer
	result, err := executeBatch(context.Background(), config.Default(), root, &out, true)
	require.NoError(t, err)
	assert.Empty(t, out.String(), "quiet mode prints nothing")

	assert.Equal(t, 2, result.Generated)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, filepath.Join(root, "src", "broken.c"), result.Failures[0].Path)
	var parseErr *diag.ParseError
	assert.True(t, errors.As(result.Failures[0].Err, &parseErr))

	assert.Equal(t, listPublic, readFixture(t, filepath.Join(root, "list.h")))
	assert.Equal(t, listPrivate, readFixture(t, filepath.Join(root, "list.priv.h")))

	// Basename guard fallback
	assert.Equal(t, "#ifndef TREE_H\n#define TREE_H\n\nint tree_size(void);\n\n#endif\n",
		readFixture(t, filepath.Join(root, "src", "tree.h")))
	assert.Equal(t, "", readFixture(t, filepath.Join(root, "src", "tree.priv.h")))

	assert.NoFileExists(t, filepath.Join(root, "build", "gen.h"))
	assert.NoFileExists(t, filepath.Join(root, "src", "broken.h"))
	assert.NoFileExists(t, filepath.Join(root, "src", "broken.priv.h"))

	var errOut bytes.Buffer
	err = reportFailures(&errOut, result)
	require.Error(t, err)
	assert.Equal(t, "1 of 3 sources failed", err.Error())
	assert.Contains(t, errOut.String(), "error: "+filepath.Join(root, "src", "broken.c"))
}

func TestExecuteBatch_Progress(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, filepath.Join(root, "list.c"), listSource)

	var out bytes.Buffer
	result, err := executeBatch(context.Background(), config.Default(), root, &out, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Contains(t, out.String(), "Generating headers for 1 source files")
	assert.Contains(t, out.String(), "Generated headers for 1 files")

	assert.NoError(t, reportFailures(&bytes.Buffer{}, result))
}

func TestExecuteBatch_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, filepath.Join(root, "list.c"), listSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeBatch(ctx, config.Default(), root, &bytes.Buffer{}, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(root, "list.h"))
}

func TestWatchSession_Handle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "list.c")
	writeSource(t, src, listSource)

	var errOut bytes.Buffer
	session, err := newWatchSession(config.Default(), root, &errOut)
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	session.Handle(ctx, []string{src})
	assert.Equal(t, listPublic, readFixture(t, filepath.Join(root, "list.h")))
	assert.Equal(t, int64(0), session.cache.Hits())

	// Unchanged content is served from the cache and still written
	require.NoError(t, os.Remove(filepath.Join(root, "list.h")))
	session.Handle(ctx, []string{src})
	assert.Equal(t, int64(1), session.cache.Hits())
	assert.Equal(t, listPublic, readFixture(t, filepath.Join(root, "list.h")))

	// Changed content is regenerated
	writeSource(t, src, "// @guard LIST_H\nint list_cap(void) { return 0; }\n")
	session.Handle(ctx, []string{src})
	assert.Equal(t, "#ifndef LIST_H\n#define LIST_H\n\nint list_cap(void);\n\n#endif\n",
		readFixture(t, filepath.Join(root, "list.h")))

	// Removed sources keep their headers
	require.NoError(t, os.Remove(src))
	session.Handle(ctx, []string{src})
	assert.FileExists(t, filepath.Join(root, "list.h"))
	assert.Empty(t, errOut.String())

	// Failures are reported and leave the previous headers in place
	writeSource(t, src, "int broken(void {\n")
	session.Handle(ctx, []string{src})
	assert.Contains(t, errOut.String(), "error: ")
	assert.Equal(t, "#ifndef LIST_H\n#define LIST_H\n\nint list_cap(void);\n\n#endif\n",
		readFixture(t, filepath.Join(root, "list.h")))
}

func TestExecuteInspect(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := executeInspect(context.Background(), config.Default(), t.TempDir(), exampleSource, nil, &out)
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, exampleSource, report.File)
	assert.Equal(t, "EXAMPLE_H", report.Guard)
	require.NotEmpty(t, report.Declarations)

	byLine := make(map[uint32]inspectEntry)
	for _, e := range report.Declarations {
		byLine[e.Line] = e
	}

	guarded := byLine[17]
	assert.Equal(t, "include", guarded.Kind)
	assert.Equal(t, "include", guarded.Rule)
	assert.Empty(t, guarded.Targets)
	assert.Equal(t, []string{"@guard EXAMPLE_H"}, guarded.Annotations)

	assertH := byLine[27]
	assert.Equal(t, "annotated-include", assertH.Rule)
	assert.Equal(t, []string{"public", "private"}, assertH.Targets)
	assert.Equal(t, []string{"@include"}, assertH.Annotations)

	fraction := byLine[47]
	assert.Equal(t, "typedef", fraction.Kind)
	assert.Equal(t, "header", fraction.Block)
	assert.Equal(t, "header-block", fraction.Rule)
	assert.Equal(t, []string{"public"}, fraction.Targets)
}

func TestExecuteInspect_Stdin(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := executeInspect(context.Background(), config.Default(), t.TempDir(), "-",
		bytes.NewBufferString("static int helper(void) { return 0; }\n"), &out)
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "<stdin>", report.File)
	assert.Empty(t, report.Guard)
	require.Len(t, report.Declarations, 1)
	assert.Equal(t, "static-function", report.Declarations[0].Rule)
	assert.Equal(t, "static", report.Declarations[0].Storage)
	assert.Equal(t, "helper", report.Declarations[0].Name)
}
