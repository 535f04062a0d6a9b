// Package visibility decides which generated headers each declaration
// belongs to.
package visibility

import (
	"strings"

	"github.com/mvp-joe/autoheaders/internal/annotation"
	"github.com/mvp-joe/autoheaders/internal/cdecl"
)

// Target is a generated header identity.
type Target uint8

const (
	Public Target = 1 << iota
	Private
)

func (t Target) String() string {
	switch t {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// TargetSet is a subset of {Public, Private}.
type TargetSet uint8

// Targets builds a set from its members.
func Targets(ts ...Target) TargetSet {
	var s TargetSet
	for _, t := range ts {
		s |= TargetSet(t)
	}
	return s
}

// Has reports whether t is in the set.
func (s TargetSet) Has(t Target) bool {
	return s&TargetSet(t) != 0
}

func (s TargetSet) String() string {
	var parts []string
	for _, t := range []Target{Public, Private} {
		if s.Has(t) {
			parts = append(parts, t.String())
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Members returns the targets in the set, public first.
func (s TargetSet) Members() []string {
	out := []string{}
	for _, t := range []Target{Public, Private} {
		if s.Has(t) {
			out = append(out, t.String())
		}
	}
	return out
}

// Render selects how a selected declaration is written into a header.
type Render uint8

const (
	// Verbatim copies the source text.
	Verbatim Render = iota
	// Prototype writes the synthesized prototype of a definition.
	Prototype
	// ExternVariable writes "extern <bare declaration>;".
	ExternVariable
	// StaticVariable writes "static <bare declaration>;".
	StaticVariable
)

// Candidate is the input of a rule.
type Candidate struct {
	Index       int
	Decl        cdecl.Declaration
	Annotations []annotation.Annotation
	// Defined is set on a prototype whose function is also defined in the
	// unit with the same linkage, outside marker blocks.
	Defined bool
}

func (c Candidate) has(kind annotation.Kind) bool {
	for _, a := range c.Annotations {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Rule is one entry of the ordered rule table. The first matching rule
// decides a declaration. A rule with Fail set rejects the declaration.
type Rule struct {
	Name    string
	Match   func(Candidate) bool
	Targets TargetSet
	Render  Render
	Fail    string
}

// Options toggles optional rules.
type Options struct {
	ExternVariables bool
}

// Rules returns the rule table for opts.
func Rules(opts Options) []Rule {
	rules := []Rule{
		{
			Name: "static-in-header",
			Match: func(c Candidate) bool {
				return c.Decl.Block == cdecl.BlockHeader && c.Decl.Kind.IsFunction() && c.Decl.Storage == cdecl.StorageStatic
			},
			Fail: "static function inside public header block",
		},
		{
			Name:    "header-block",
			Match:   func(c Candidate) bool { return c.Decl.Block == cdecl.BlockHeader },
			Targets: Targets(Public),
		},
		{
			Name:    "private-header-block",
			Match:   func(c Candidate) bool { return c.Decl.Block == cdecl.BlockPrivateHeader },
			Targets: Targets(Private),
		},
		{
			Name:  "defined-prototype",
			Match: func(c Candidate) bool { return c.Decl.Kind == cdecl.KindPrototype && c.Defined },
		},
		{
			Name: "public-function",
			Match: func(c Candidate) bool {
				return c.Decl.Kind.IsFunction() && c.Decl.Storage != cdecl.StorageStatic
			},
			Targets: Targets(Public),
		},
		{
			Name: "static-function",
			Match: func(c Candidate) bool {
				return c.Decl.Kind.IsFunction() && c.Decl.Storage == cdecl.StorageStatic
			},
			Targets: Targets(Private),
		},
		{
			Name: "annotated-include",
			Match: func(c Candidate) bool {
				return c.Decl.Kind == cdecl.KindInclude && c.has(annotation.Include)
			},
			Targets: Targets(Public, Private),
		},
		{
			Name:  "include",
			Match: func(c Candidate) bool { return c.Decl.Kind == cdecl.KindInclude },
		},
	}

	if opts.ExternVariables {
		rules = append(rules,
			Rule{
				Name: "public-variable",
				Match: func(c Candidate) bool {
					return c.Decl.Kind == cdecl.KindVariable && c.Decl.Storage != cdecl.StorageStatic
				},
				Targets: Targets(Public),
				Render:  ExternVariable,
			},
			Rule{
				Name: "static-variable",
				Match: func(c Candidate) bool {
					return c.Decl.Kind == cdecl.KindVariable && c.Decl.Storage == cdecl.StorageStatic
				},
				Targets: Targets(Private),
				Render:  StaticVariable,
			},
		)
	}

	return append(rules, Rule{
		Name:  "body-only",
		Match: func(Candidate) bool { return true },
	})
}
