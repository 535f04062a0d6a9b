package generator

import (
	"path/filepath"
	"testing"

	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardNamers(t *testing.T) {
	t.Parallel()

	mk := func(path string) *source.Unit {
		u, err := source.NewUnit(path, nil)
		require.NoError(t, err)
		return u
	}

	tests := []struct {
		name  string
		namer GuardNamer
		path  string
		want  string
	}{
		{"basename", BasenameGuard("", "_H"), "src/example.c", "EXAMPLE_H"},
		{"basename with prefix", BasenameGuard("MYLIB_", "_H"), "list.c", "MYLIB_LIST_H"},
		{"punctuation", BasenameGuard("", "_H"), "my-file.v2.c", "MY_FILE_V2_H"},
		{"leading digit", BasenameGuard("", "_H"), "3d.c", "_3D_H"},
		{"stdin", BasenameGuard("", "_H"), "", ""},
		{"path", PathGuard("/proj", "", "_H"), "/proj/src/util/list.c", "SRC_UTIL_LIST_H"},
		{"path outside root", PathGuard("/proj", "", "_H"), "other/list.c", "OTHER_LIST_H"},
		{"path stdin", PathGuard("/proj", "", "_H"), "-", ""},
		{"none", NoGuard, "a.c", ""},
		{"fixed", FixedGuard("FIXED_H"), "a.c", "FIXED_H"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.namer(mk(filepath.FromSlash(tt.path))))
		})
	}
}
