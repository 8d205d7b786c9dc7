package rewrite

import (
	"strings"

	"github.com/wippyai/kernelc/ast"
)

// scope maps local names to their WGSL type where it is known.
type scope map[string]string

func (c *exprContext) pushScope() { c.scopes = append(c.scopes, scope{}) }
func (c *exprContext) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *exprContext) declare(name, typ string) {
	if len(c.scopes) == 0 {
		c.pushScope()
	}
	c.scopes[len(c.scopes)-1][name] = typ
}

func (c *exprContext) lookup(name string) (string, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// typeOf returns the WGSL type of e when it can be read off the syntax
// tree, or "" when it is unknown or an abstract literal.
func (c *exprContext) typeOf(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Lit:
		switch n.LitKind {
		case ast.LitBool:
			return "bool"
		case ast.LitInt:
			switch n.Suffix {
			case "u32", "u":
				return "u32"
			case "i32", "i":
				return "i32"
			}
		case ast.LitFloat:
			switch n.Suffix {
			case "f32":
				return "f32"
			case "f16", "h":
				return "f16"
			}
		}
		return ""

	case *ast.Path:
		if name, ok := n.Ident(); ok {
			if t, ok := c.lookup(name); ok {
				return t
			}
			return c.r.constType(name)
		}
		return ""

	case *ast.Paren:
		return c.typeOf(n.X)

	case *ast.Unary:
		if n.Op == "!" && c.typeOf(n.X) == "" && !isIntLit(n.X) {
			return "bool"
		}
		return c.typeOf(n.X)

	case *ast.Binary:
		switch n.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return "bool"
		case "<<", ">>":
			return c.typeOf(n.X)
		}
		if t := c.typeOf(n.X); t != "" {
			return t
		}
		return c.typeOf(n.Y)

	case *ast.Cast:
		return c.r.declaredType(n.Type)

	case *ast.Selector:
		return componentType(c.typeOf(n.X), n.Name)

	case *ast.Call:
		return c.callType(n)
	}
	return ""
}

func (c *exprContext) callType(n *ast.Call) string {
	fun, ok := n.Fun.(*ast.Path)
	if !ok {
		return ""
	}
	if name, ok := fun.Ident(); ok {
		return c.r.funcResult(name)
	}
	if len(fun.Segments) != 2 {
		return ""
	}
	switch fun.Segments[0].Name + "::" + fun.Segments[1].Name {
	case helperInput + "::vec_len", helperOutput + "::len":
		return "u32"
	}
	if fun.Segments[1].Name == "new" {
		if w, ok := MapType(fun.Segments[0].Name); ok {
			return w
		}
	}
	return ""
}

// componentType returns the element type of a single-component swizzle on
// a vector type.
func componentType(vec, field string) string {
	if !strings.HasPrefix(vec, "vec") || len(field) != 1 || !strings.Contains("xyzwrgba", field) {
		return ""
	}
	open, end := strings.IndexByte(vec, '<'), strings.IndexByte(vec, '>')
	if open < 0 || end < open {
		return ""
	}
	return vec[open+1 : end]
}

func isIntLit(e ast.Expr) bool {
	l, ok := unparen(e).(*ast.Lit)
	return ok && l.LitKind == ast.LitInt
}

func isInteger(t string) bool {
	return t == "u32" || t == "i32"
}

// declaredType maps an authored type without reporting errors.
func (r *Rewriter) declaredType(t ast.Type) string {
	p, ok := t.(*ast.PathType)
	if !ok {
		return ""
	}
	if r.mod.IsType(p.Name) {
		return p.Name
	}
	w, _ := MapType(p.Name)
	return w
}

func (r *Rewriter) constType(name string) string {
	d, ok := r.mod.Find(name)
	if !ok {
		return ""
	}
	if c, ok := d.Item.(*ast.Const); ok {
		return r.declaredType(c.Type)
	}
	return ""
}

func (r *Rewriter) funcResult(name string) string {
	d, ok := r.mod.Find(name)
	if !ok {
		return ""
	}
	if fn, ok := d.Item.(*ast.Func); ok && fn.Result != nil {
		return r.declaredType(fn.Result)
	}
	return ""
}
