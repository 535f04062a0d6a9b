package visibility

import (
	"fmt"

	"github.com/mvp-joe/autoheaders/internal/annotation"
	"github.com/mvp-joe/autoheaders/internal/cdecl"
	"github.com/mvp-joe/autoheaders/internal/diag"
	"github.com/mvp-joe/autoheaders/internal/source"
)

// Classified is a declaration with its header targets.
type Classified struct {
	Index       int
	Decl        cdecl.Declaration
	Targets     TargetSet
	Render      Render
	Rule        string
	Annotations []annotation.Annotation
}

// Classify runs the rule table over decls in source order.
func Classify(unit *source.Unit, decls []cdecl.Declaration, ann *annotation.Result, opts Options) ([]Classified, error) {
	rules := Rules(opts)
	defined := definitions(decls)
	out := make([]Classified, 0, len(decls))

	for i, d := range decls {
		c := Candidate{Index: i, Decl: d}
		if d.Kind == cdecl.KindPrototype && d.Name != "" {
			c.Defined = defined[linkageKey{d.Name, d.Storage == cdecl.StorageStatic}]
		}
		if ann != nil {
			c.Annotations = ann.ByDecl[i]
		}

		rule, ok := first(rules, c)
		if !ok {
			continue
		}
		if rule.Fail != "" {
			return nil, &diag.AnnotationError{
				Pos:     d.Position(unit),
				Message: fmt.Sprintf("%s: %s", rule.Fail, d.Name),
			}
		}

		render := rule.Render
		if d.Kind == cdecl.KindFunction {
			render = Prototype
		}

		out = append(out, Classified{
			Index:       i,
			Decl:        d,
			Targets:     rule.Targets,
			Render:      render,
			Rule:        rule.Name,
			Annotations: c.Annotations,
		})
	}
	return out, nil
}

func first(rules []Rule, c Candidate) (Rule, bool) {
	for _, r := range rules {
		if r.Match(c) {
			return r, true
		}
	}
	return Rule{}, false
}

type linkageKey struct {
	name   string
	static bool
}

// definitions indexes the function definitions outside marker blocks.
func definitions(decls []cdecl.Declaration) map[linkageKey]bool {
	out := make(map[linkageKey]bool)
	for _, d := range decls {
		if d.Kind == cdecl.KindFunction && d.Block == cdecl.BlockNone && d.Name != "" {
			out[linkageKey{d.Name, d.Storage == cdecl.StorageStatic}] = true
		}
	}
	return out
}
