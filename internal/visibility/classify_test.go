package visibility

import (
	"errors"
	"testing"

	"github.com/mvp-joe/autoheaders/internal/annotation"
	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/diag"
	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Classify:
// - Each rule of the table decides the declarations it is meant for
// - Marker blocks win over storage class
// - Function definitions always render as prototypes
// - Static functions inside a public block are annotation errors
// - Extern variable rules only apply when enabled
// - Every function lands in exactly one of public, private or neither
// - Prototypes of functions defined with the same linkage are not repeated

func unit(t *testing.T) *source.Unit {
	t.Helper()
	u, err := source.NewUnit("v.c", []byte("int x;\n"))
	require.NoError(t, err)
	return u
}

func TestClassify_RuleTable(t *testing.T) {
	t.Parallel()

	decls := []cdecl.Declaration{
		{Kind: cdecl.KindTypedef, Name: "pub_t", Block: cdecl.BlockHeader},
		{Kind: cdecl.KindTypedef, Name: "priv_t", Block: cdecl.BlockPrivateHeader},
		{Kind: cdecl.KindPrototype, Name: "api"},
		{Kind: cdecl.KindFunction, Name: "impl"},
		{Kind: cdecl.KindFunction, Name: "helper", Storage: cdecl.StorageStatic},
		{Kind: cdecl.KindInclude, Path: "<stdint.h>"},
		{Kind: cdecl.KindInclude, Path: "<stdio.h>"},
		{Kind: cdecl.KindMacro, Name: "LOCAL"},
		{Kind: cdecl.KindVariable, Name: "counter"},
		{Kind: cdecl.KindFunction, Name: "hidden", Storage: cdecl.StorageStatic, Block: cdecl.BlockPrivateHeader},
	}
	ann := &annotation.Result{ByDecl: map[int][]annotation.Annotation{
		5: {{Kind: annotation.Include, Target: 5}},
	}}

	got, err := Classify(unit(t), decls, ann, Options{})
	require.NoError(t, err)
	require.Len(t, got, len(decls))

	tests := []struct {
		idx     int
		targets TargetSet
		rule    string
		render  Render
	}{
		{0, Targets(Public), "header-block", Verbatim},
		{1, Targets(Private), "private-header-block", Verbatim},
		{2, Targets(Public), "public-function", Verbatim},
		{3, Targets(Public), "public-function", Prototype},
		{4, Targets(Private), "static-function", Prototype},
		{5, Targets(Public, Private), "annotated-include", Verbatim},
		{6, Targets(), "include", Verbatim},
		{7, Targets(), "body-only", Verbatim},
		{8, Targets(), "body-only", Verbatim},
		{9, Targets(Private), "private-header-block", Prototype},
	}

	for _, tt := range tests {
		c := got[tt.idx]
		assert.Equal(t, tt.idx, c.Index)
		assert.Equal(t, tt.targets, c.Targets, "targets of %s", c.Decl.Name)
		assert.Equal(t, tt.rule, c.Rule, "rule of %s", c.Decl.Name)
		assert.Equal(t, tt.render, c.Render, "render of %s", c.Decl.Name)
	}
	assert.Len(t, got[5].Annotations, 1)
}

func TestClassify_StaticInHeaderBlock(t *testing.T) {
	t.Parallel()

	decls := []cdecl.Declaration{
		{Kind: cdecl.KindFunction, Name: "oops", Storage: cdecl.StorageStatic, Block: cdecl.BlockHeader},
	}

	_, err := Classify(unit(t), decls, nil, Options{})
	require.Error(t, err)

	var annErr *diag.AnnotationError
	require.True(t, errors.As(err, &annErr))
	assert.Contains(t, annErr.Message, "oops")
	assert.Equal(t, uint32(1), annErr.Pos.Line)
}

func TestClassify_ExternVariables(t *testing.T) {
	t.Parallel()

	decls := []cdecl.Declaration{
		{Kind: cdecl.KindVariable, Name: "shared"},
		{Kind: cdecl.KindVariable, Name: "declared", Storage: cdecl.StorageExtern},
		{Kind: cdecl.KindVariable, Name: "local", Storage: cdecl.StorageStatic},
	}

	got, err := Classify(unit(t), decls, nil, Options{ExternVariables: true})
	require.NoError(t, err)

	assert.Equal(t, Targets(Public), got[0].Targets)
	assert.Equal(t, ExternVariable, got[0].Render)
	assert.Equal(t, Targets(Public), got[1].Targets)
	assert.Equal(t, Targets(Private), got[2].Targets)
	assert.Equal(t, StaticVariable, got[2].Render)

	got, err = Classify(unit(t), decls, nil, Options{})
	require.NoError(t, err)
	for _, c := range got {
		assert.Equal(t, Targets(), c.Targets)
	}
}

func TestClassify_FunctionPartition(t *testing.T) {
	t.Parallel()

	var decls []cdecl.Declaration
	for _, kind := range []cdecl.Kind{cdecl.KindPrototype, cdecl.KindFunction} {
		for _, storage := range []cdecl.Storage{cdecl.StorageNone, cdecl.StorageStatic, cdecl.StorageExtern} {
			for _, block := range []cdecl.Block{cdecl.BlockNone, cdecl.BlockHeader, cdecl.BlockPrivateHeader} {
				if block == cdecl.BlockHeader && storage == cdecl.StorageStatic {
					continue
				}
				decls = append(decls, cdecl.Declaration{Kind: kind, Storage: storage, Block: block})
			}
		}
	}

	got, err := Classify(unit(t), decls, nil, Options{})
	require.NoError(t, err)

	for _, c := range got {
		assert.False(t, c.Targets.Has(Public) && c.Targets.Has(Private), "function in both headers: %+v", c.Decl)
	}
}

func TestTargetSet(t *testing.T) {
	t.Parallel()

	both := Targets(Public, Private)
	assert.True(t, both.Has(Public))
	assert.True(t, both.Has(Private))
	assert.Equal(t, "{public, private}", both.String())
	assert.Equal(t, "{}", Targets().String())
	assert.Equal(t, []string{"private"}, Targets(Private).Members())
	assert.Equal(t, []string{}, Targets().Members())
}

func TestClassify_DefinedPrototype(t *testing.T) {
	t.Parallel()

	decls := []cdecl.Declaration{
		{Kind: cdecl.KindPrototype, Name: "helper", Storage: cdecl.StorageStatic},
		{Kind: cdecl.KindPrototype, Name: "api"},
		{Kind: cdecl.KindPrototype, Name: "external"},
		{Kind: cdecl.KindPrototype, Name: "mixed", Storage: cdecl.StorageStatic},
		{Kind: cdecl.KindFunction, Name: "api"},
		{Kind: cdecl.KindFunction, Name: "helper", Storage: cdecl.StorageStatic},
		{Kind: cdecl.KindFunction, Name: "mixed"},
		{Kind: cdecl.KindPrototype, Name: "api"},
		{Kind: cdecl.KindFunction, Name: "external", Block: cdecl.BlockPrivateHeader},
	}

	got, err := Classify(unit(t), decls, nil, Options{})
	require.NoError(t, err)

	tests := []struct {
		idx     int
		targets TargetSet
		rule    string
	}{
		{0, Targets(), "defined-prototype"},
		{1, Targets(), "defined-prototype"},
		{2, Targets(Public), "public-function"},
		{3, Targets(Private), "static-function"},
		{4, Targets(Public), "public-function"},
		{5, Targets(Private), "static-function"},
		{6, Targets(Public), "public-function"},
		{7, Targets(), "defined-prototype"},
		{8, Targets(Private), "private-header-block"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.targets, got[tt.idx].Targets, "targets of #%d", tt.idx)
		assert.Equal(t, tt.rule, got[tt.idx].Rule, "rule of #%d", tt.idx)
	}
}
