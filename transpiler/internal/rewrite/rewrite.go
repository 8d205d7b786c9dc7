// Package rewrite produces the (authored, WGSL) text pair of every
// classified declaration and assembles the module descriptor.
//
// All rewrites are structural: the WGSL text is printed from the syntax
// tree. The one exception is the entry-function parameter list, whose raw
// text is matched against a versioned spelling table.
package rewrite

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/syntax"
	"github.com/wippyai/kernelc/transpiler/internal/classify"
)

// Rewriter converts one classified module.
type Rewriter struct {
	source   string
	mod      *classify.Module
	spelling EntrySpelling
}

// New creates a rewriter for mod, whose spans index into source. grammar
// selects the entry spelling table.
func New(source string, mod *classify.Module, grammar *semver.Version) (*Rewriter, error) {
	spelling, err := SpellingFor(grammar)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRewrite, errors.KindInvalidInput, err, "grammar version")
	}
	return &Rewriter{source: source, mod: mod, spelling: spelling}, nil
}

// Descriptor rewrites every declaration and returns the module descriptor.
// The module must have passed classify.Validate.
func (r *Rewriter) Descriptor() (*shader.Descriptor, error) {
	d := &shader.Descriptor{Name: r.mod.Name}

	for _, decl := range r.mod.Decls {
		switch decl.Kind {
		case shader.DeclStaticConst:
			c, err := r.Const(decl.Item.(*ast.Const))
			if err != nil {
				return nil, err
			}
			d.StaticConsts = append(d.StaticConsts, c)

		case shader.DeclHelperType:
			c, err := r.TypeDecl(decl.Item)
			if err != nil {
				return nil, err
			}
			d.HelperTypes = append(d.HelperTypes, c)

		case shader.DeclUniform:
			c, err := r.TypeDecl(decl.Item)
			if err != nil {
				return nil, err
			}
			d.Uniforms = append(d.Uniforms, shader.Uniform{
				Type: shader.NewTypeName(decl.Name()),
				Code: c,
			})

		case shader.DeclInputArray:
			c, err := r.TypeDecl(decl.Item)
			if err != nil {
				return nil, err
			}
			tn := shader.NewTypeName(decl.Name())
			d.InputArrays = append(d.InputArrays, shader.InputArray{
				ItemType: tn,
				Item:     c,
				Array:    ArrayAlias(tn, shader.Input),
			})

		case shader.DeclOutputArray:
			c, err := r.TypeDecl(decl.Item)
			if err != nil {
				return nil, err
			}
			tn := shader.NewTypeName(decl.Name())
			out := shader.OutputArray{
				ItemType: tn,
				Item:     c,
				Array:    ArrayAlias(tn, shader.Output),
			}
			if decl.Counter {
				out.CounterName = shader.CounterName(tn)
			}
			d.OutputArrays = append(d.OutputArrays, out)

		case shader.DeclHelperFunction:
			c, err := r.Func(decl.Item.(*ast.Func), false)
			if err != nil {
				return nil, err
			}
			d.HelperFunctions = append(d.HelperFunctions, c)

		case shader.DeclEntry:
			c, err := r.Func(decl.Item.(*ast.Func), true)
			if err != nil {
				return nil, err
			}
			d.Entry = &c
		}
	}
	return d, nil
}

// ArrayAlias returns the derived dense-array alias over an item type.
func ArrayAlias(tn shader.TypeName, dir shader.Direction) shader.Component {
	return shader.Component{
		Target: "alias " + shader.ArrayAlias(tn, dir) + " = array<" + tn.Name + ", " + shader.LengthConst(tn, dir) + ">;",
	}
}

func (r *Rewriter) text(span ast.Span) string {
	return syntax.Text(r.source, span)
}

func (r *Rewriter) path(names ...string) []string {
	return append([]string{r.mod.Name}, names...)
}

// TypeDecl rewrites a struct or type alias.
func (r *Rewriter) TypeDecl(it ast.Item) (shader.Component, error) {
	switch n := it.(type) {
	case *ast.Struct:
		return r.Struct(n)
	case *ast.Alias:
		return r.Alias(n)
	}
	return shader.Component{}, errors.Unsupported(errors.PhaseRewrite, r.path(it.Base().Name), it.Pos(),
		"type declaration "+it.Kind().String())
}

// Struct renders `struct Name { field : type, ... }` on one line.
func (r *Rewriter) Struct(s *ast.Struct) (shader.Component, error) {
	var b strings.Builder
	b.WriteString("struct ")
	b.WriteString(s.Name)
	b.WriteString(" {")
	for _, f := range s.Fields {
		t, err := r.Type(f.Type, r.path(s.Name, f.Name))
		if err != nil {
			return shader.Component{}, err
		}
		b.WriteString(" ")
		b.WriteString(f.Name)
		b.WriteString(" : ")
		b.WriteString(t)
		b.WriteString(",")
	}
	b.WriteString(" }")
	return shader.Component{Source: r.text(s.Span), Target: b.String()}, nil
}

// Alias renders `alias Name = type;`.
func (r *Rewriter) Alias(a *ast.Alias) (shader.Component, error) {
	t, err := r.Type(a.Type, r.path(a.Name))
	if err != nil {
		return shader.Component{}, err
	}
	return shader.Component{
		Source: r.text(a.Span),
		Target: "alias " + a.Name + " = " + t + ";",
	}, nil
}

// Const renders `const NAME : type = value;`.
func (r *Rewriter) Const(c *ast.Const) (shader.Component, error) {
	path := r.path(c.Name)
	t, err := r.Type(c.Type, path)
	if err != nil {
		return shader.Component{}, err
	}
	v, err := r.newExprContext(path).expr(c.Value)
	if err != nil {
		return shader.Component{}, err
	}
	return shader.Component{
		Source: r.text(c.Span),
		Target: "const " + c.Name + " : " + t + " = " + v + ";",
	}, nil
}

// Type maps an authored type to WGSL.
func (r *Rewriter) Type(t ast.Type, path []string) (string, error) {
	return ast.Fold(t, func(n ast.Node, children []string) (string, error) {
		switch n := n.(type) {
		case *ast.PathType:
			if r.mod.IsType(n.Name) {
				return n.Name, nil
			}
			if w, ok := MapType(n.Name); ok {
				return w, nil
			}
			candidates := append(builtinTypeNames(), r.mod.TypeNames()...)
			return "", errors.TypeMapping(path, n.Span, n.Name, suggest(n.Name, candidates)...)
		case *ast.ArrayType:
			length, err := r.newExprContext(path).expr(n.Len)
			if err != nil {
				return "", err
			}
			return "array<" + children[0] + ", " + length + ">", nil
		case *ast.UnitType:
			return "", errors.Unsupported(errors.PhaseRewrite, path, n.Span, "unit type outside a function result")
		}
		// Array length expressions are printed by the ArrayType case.
		return "", nil
	})
}

// Func renders a helper or entry function. Doc comments are dropped.
func (r *Rewriter) Func(fn *ast.Func, entry bool) (shader.Component, error) {
	path := r.path(fn.Name)
	ctx := r.newExprContext(path)

	var params string
	if entry {
		raw := r.text(fn.ParamsSpan)
		if !r.spelling.Match(raw) {
			return shader.Component{}, errors.SyntaxMatch(path, fn.ParamsSpan, strings.TrimSpace(raw), r.spelling.Accepted)
		}
		params = r.spelling.Replacement
		ctx.declare("global_id", "vec3<u32>")
	} else {
		parts := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			if p.Mut {
				return shader.Component{}, errors.Unsupported(errors.PhaseRewrite, r.path(fn.Name, p.Name), p.Span,
					"mutable parameter")
			}
			t, err := r.Type(p.Type, r.path(fn.Name, p.Name))
			if err != nil {
				return shader.Component{}, err
			}
			ctx.declare(p.Name, t)
			parts = append(parts, p.Name+": "+t)
		}
		params = strings.Join(parts, ", ")
	}

	sig := "fn " + fn.Name + "(" + params + ")"
	if fn.Result != nil {
		if _, unit := fn.Result.(*ast.UnitType); !unit {
			t, err := r.Type(fn.Result, path)
			if err != nil {
				return shader.Component{}, err
			}
			sig += " -> " + t
		}
	}

	p := &printer{}
	p.line("%s {", sig)
	p.push()
	if err := ctx.stmts(p, fn.Body.Stmts); err != nil {
		return shader.Component{}, err
	}
	p.pop()
	p.line("}")

	return shader.Component{Source: r.text(fn.Span), Target: p.String()}, nil
}
