// Package generator drives header generation for one translation unit:
// parse, scan annotations, classify, assemble.
package generator

import (
	"context"

	"github.com/mvp-joe/autoheaders/internal/annotation"
	"github.com/mvp-joe/autoheaders/internal/assembler"
	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/mvp-joe/autoheaders/internal/visibility"
)

// Options configures a Generator.
type Options struct {
	Markers cdecl.Markers
	// GuardFallback names the public guard when the source has no @guard.
	// Nil means no fallback.
	GuardFallback   GuardNamer
	ExternVariables bool
}

// DefaultOptions uses the default markers and the basename guard convention.
func DefaultOptions() Options {
	return Options{
		Markers:       cdecl.DefaultMarkers(),
		GuardFallback: BasenameGuard("", "_H"),
	}
}

// Generator produces headers. It holds no per-unit state and is safe for
// concurrent use.
type Generator struct {
	parser *cdecl.Parser
	opts   Options
}

// New creates a generator.
func New(opts Options) *Generator {
	if opts.GuardFallback == nil {
		opts.GuardFallback = NoGuard
	}
	return &Generator{
		parser: cdecl.NewParser(opts.Markers),
		opts:   opts,
	}
}

// Analysis is every intermediate result for one unit.
type Analysis struct {
	Unit         *source.Unit
	Declarations []cdecl.Declaration
	Annotations  *annotation.Result
	Classified   []visibility.Classified
	// Guard is the public guard name, from @guard or the fallback.
	Guard string
}

// Headers holds both generated headers of a unit.
type Headers struct {
	Public  *assembler.Header
	Private *assembler.Header
}

// Analyze parses, scans and classifies unit.
func (g *Generator) Analyze(ctx context.Context, unit *source.Unit) (*Analysis, error) {
	decls, err := g.parser.Parse(ctx, unit)
	if err != nil {
		return nil, err
	}

	ann, err := annotation.Scan(unit, decls)
	if err != nil {
		return nil, err
	}

	classified, err := visibility.Classify(unit, decls, ann, visibility.Options{
		ExternVariables: g.opts.ExternVariables,
	})
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Unit:         unit,
		Declarations: decls,
		Annotations:  ann,
		Classified:   classified,
	}
	if ann.Guard != nil {
		a.Guard = ann.Guard.Value
	} else {
		a.Guard = g.opts.GuardFallback(unit)
	}
	return a, nil
}

// Header assembles the header for target from an analysis.
func (a *Analysis) Header(target visibility.Target) (*assembler.Header, error) {
	return assembler.Assemble(a.Classified, target, a.Guard)
}

// Generate produces the header for target.
func (g *Generator) Generate(ctx context.Context, unit *source.Unit, target visibility.Target) (*assembler.Header, error) {
	a, err := g.Analyze(ctx, unit)
	if err != nil {
		return nil, err
	}
	return a.Header(target)
}

// GenerateAll produces both headers, or neither if either fails.
func (g *Generator) GenerateAll(ctx context.Context, unit *source.Unit) (*Headers, error) {
	a, err := g.Analyze(ctx, unit)
	if err != nil {
		return nil, err
	}

	public, err := a.Header(visibility.Public)
	if err != nil {
		return nil, err
	}
	private, err := a.Header(visibility.Private)
	if err != nil {
		return nil, err
	}
	return &Headers{Public: public, Private: private}, nil
}
