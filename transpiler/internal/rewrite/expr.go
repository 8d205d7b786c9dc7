package rewrite

import (
	"strings"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

// methodBuiltins maps authored method names to WGSL builtins. The receiver
// becomes the first argument.
var methodBuiltins = map[string]string{
	"abs":        "abs",
	"acos":       "acos",
	"asin":       "asin",
	"atan":       "atan",
	"atan2":      "atan2",
	"ceil":       "ceil",
	"clamp":      "clamp",
	"cos":        "cos",
	"cosh":       "cosh",
	"cross":      "cross",
	"distance":   "distance",
	"dot":        "dot",
	"exp":        "exp",
	"exp2":       "exp2",
	"floor":      "floor",
	"fract":      "fract",
	"length":     "length",
	"ln":         "log",
	"log2":       "log2",
	"max":        "max",
	"min":        "min",
	"normalize":  "normalize",
	"powf":       "pow",
	"round":      "round",
	"signum":     "sign",
	"sin":        "sin",
	"sinh":       "sinh",
	"sqrt":       "sqrt",
	"tan":        "tan",
	"tanh":       "tanh",
	"to_degrees": "degrees",
	"to_radians": "radians",
	"trunc":      "trunc",
}

// Kernel helper namespaces.
const (
	helperConfig = "WgslConfigInput"
	helperInput  = "WgslVecInput"
	helperOutput = "WgslOutput"
)

var helperMethods = map[string][]string{
	helperConfig: {"get"},
	helperInput:  {"vec_val", "vec_len"},
	helperOutput: {"set", "push", "len"},
}

type exprContext struct {
	r      *Rewriter
	path   []string
	scopes []scope
}

func (r *Rewriter) newExprContext(path []string) *exprContext {
	return &exprContext{r: r, path: path}
}

func (c *exprContext) unsupported(n ast.Node, what string) error {
	return errors.Unsupported(errors.PhaseRewrite, c.path, n.Pos(), what)
}

func (c *exprContext) exprs(list []ast.Expr) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// unparen strips one level of explicit parentheses where the printed form
// already delimits the operand.
func unparen(e ast.Expr) ast.Expr {
	if p, ok := e.(*ast.Paren); ok {
		return p.X
	}
	return e
}

func (c *exprContext) expr(e ast.Expr) (string, error) {
	switch e.Kind() {
	case ast.KindLit:
		return literal(e.(*ast.Lit)), nil

	case ast.KindPath:
		n := e.(*ast.Path)
		if name, ok := n.Ident(); ok {
			return name, nil
		}
		return "", c.unsupported(n, "qualified path outside a call")

	case ast.KindParen:
		x, err := c.expr(e.(*ast.Paren).X)
		if err != nil {
			return "", err
		}
		return "(" + x + ")", nil

	case ast.KindUnary:
		n := e.(*ast.Unary)
		x, err := c.expr(n.X)
		if err != nil {
			return "", err
		}
		if inner, ok := n.X.(*ast.Unary); ok && inner.Op == n.Op {
			// `--x` would lex as a decrement.
			x = "(" + x + ")"
		}
		op := n.Op
		if op == "!" && (isInteger(c.typeOf(n.X)) || isIntLit(n.X)) {
			// integer `!` is bitwise complement
			op = "~"
		}
		return op + x, nil

	case ast.KindBinary:
		return c.binary(e.(*ast.Binary))

	case ast.KindCast:
		n := e.(*ast.Cast)
		t, err := c.r.Type(n.Type, c.path)
		if err != nil {
			return "", err
		}
		x, err := c.expr(unparen(n.X))
		if err != nil {
			return "", err
		}
		return t + "(" + x + ")", nil

	case ast.KindIndex:
		n := e.(*ast.Index)
		x, err := c.expr(n.X)
		if err != nil {
			return "", err
		}
		i, err := c.expr(unparen(n.Index))
		if err != nil {
			return "", err
		}
		return x + "[" + i + "]", nil

	case ast.KindSelector:
		n := e.(*ast.Selector)
		x, err := c.expr(n.X)
		if err != nil {
			return "", err
		}
		return x + "." + n.Name, nil

	case ast.KindCall:
		return c.call(e.(*ast.Call))

	case ast.KindStructLit:
		return c.structLit(e.(*ast.StructLit))

	case ast.KindArrayLit:
		elems, err := c.exprs(e.(*ast.ArrayLit).Elems)
		if err != nil {
			return "", err
		}
		return "array(" + strings.Join(elems, ", ") + ")", nil
	}
	return "", c.unsupported(e, "expression "+e.Kind().String())
}

// literal rewrites type suffixes: u32 becomes u, i32 becomes i, f32 is
// implied and f16 becomes h.
func literal(l *ast.Lit) string {
	switch l.LitKind {
	case ast.LitInt:
		switch l.Suffix {
		case "u32", "u":
			return l.Value + "u"
		case "i32", "i":
			return l.Value + "i"
		}
		return l.Value
	case ast.LitFloat:
		v := l.Value
		if !strings.ContainsAny(v, ".eExX") {
			v += ".0"
		}
		if l.Suffix == "f16" || l.Suffix == "h" {
			v += "h"
		}
		return v
	}
	return l.Value
}

type opClass uint8

const (
	opArith opClass = iota
	opShift
	opCompare
	opBitwise
	opLogical
)

func classOf(op string) opClass {
	switch op {
	case "<<", ">>":
		return opShift
	case "==", "!=", "<", "<=", ">", ">=":
		return opCompare
	case "&", "|", "^":
		return opBitwise
	case "&&", "||":
		return opLogical
	}
	return opArith
}

// needsParens reports whether child must be parenthesised under parent.
// WGSL forbids mixing bitwise, shift and short-circuit operators without
// parentheses even where precedence would be unambiguous.
func needsParens(parent, child string) bool {
	pc, cc := classOf(parent), classOf(child)
	switch pc {
	case opArith:
		return cc != opArith
	case opShift:
		return true
	case opCompare:
		return cc != opArith && cc != opShift
	case opBitwise:
		return parent != child
	case opLogical:
		return !(parent == child || cc == opCompare || cc == opArith || cc == opShift)
	}
	return true
}

func (c *exprContext) binary(n *ast.Binary) (string, error) {
	side := func(e ast.Expr) (string, error) {
		s, err := c.expr(e)
		if err != nil {
			return "", err
		}
		if b, ok := e.(*ast.Binary); ok && needsParens(n.Op, b.Op) {
			s = "(" + s + ")"
		}
		return s, nil
	}
	x, err := side(n.X)
	if err != nil {
		return "", err
	}
	y, err := side(n.Y)
	if err != nil {
		return "", err
	}
	return x + " " + n.Op + " " + y, nil
}

func (c *exprContext) call(n *ast.Call) (string, error) {
	switch fun := n.Fun.(type) {
	case *ast.Selector:
		builtin, ok := methodBuiltins[fun.Name]
		if !ok {
			return "", errors.New(errors.PhaseRewrite, errors.KindUnsupported).
				Path(c.path...).
				At(n.Span).
				Text(fun.Name).
				Alternatives(suggest(fun.Name, methodNames())...).
				Detail("method call").
				Build()
		}
		recv, err := c.expr(fun.X)
		if err != nil {
			return "", err
		}
		args, err := c.exprs(n.Args)
		if err != nil {
			return "", err
		}
		return builtin + "(" + strings.Join(append([]string{recv}, args...), ", ") + ")", nil

	case *ast.Path:
		if name, ok := fun.Ident(); ok {
			args, err := c.exprs(n.Args)
			if err != nil {
				return "", err
			}
			return name + "(" + strings.Join(args, ", ") + ")", nil
		}
		if len(fun.Segments) != 2 {
			return "", c.unsupported(n, "call through path "+pathString(fun))
		}
		if _, ok := helperMethods[fun.Segments[0].Name]; ok {
			return c.helperExpr(n, fun)
		}
		return c.constructor(n, fun)
	}
	return "", c.unsupported(n, "call of "+n.Fun.Kind().String())
}

// constructor rewrites `Type::new(args)` into the WGSL value constructor.
func (c *exprContext) constructor(n *ast.Call, fun *ast.Path) (string, error) {
	typ, method := fun.Segments[0], fun.Segments[1]
	if method.Name != "new" || len(typ.Generics) > 0 || len(method.Generics) > 0 {
		return "", c.unsupported(n, "call through path "+pathString(fun))
	}
	var ctor string
	switch {
	case c.r.mod.IsType(typ.Name):
		ctor = typ.Name
	default:
		w, ok := MapType(typ.Name)
		if !ok {
			return "", errors.TypeMapping(c.path, fun.Span, typ.Name, suggest(typ.Name, builtinTypeNames())...)
		}
		ctor = w
	}
	args, err := c.exprs(n.Args)
	if err != nil {
		return "", err
	}
	return ctor + "(" + strings.Join(args, ", ") + ")", nil
}

func (c *exprContext) structLit(n *ast.StructLit) (string, error) {
	s, ok := c.r.mod.Struct(n.Type)
	if !ok {
		return "", errors.Definition(errors.PhaseRewrite, c.path, n.Span, "%s is not a struct declared in this module", n.Type)
	}

	values := make([]string, len(s.Fields))
	set := make([]bool, len(s.Fields))
	for _, f := range n.Fields {
		i := s.FieldIndex(f.Name)
		if i < 0 {
			return "", errors.Definition(errors.PhaseRewrite, c.path, f.Span, "%s has no field %s", n.Type, f.Name)
		}
		if set[i] {
			return "", errors.Definition(errors.PhaseRewrite, c.path, f.Span, "field %s initialized twice", f.Name)
		}
		v, err := c.expr(unparen(f.Value))
		if err != nil {
			return "", err
		}
		values[i], set[i] = v, true
	}
	for i, ok := range set {
		if !ok {
			return "", errors.Definition(errors.PhaseRewrite, c.path, n.Span, "missing field %s in %s literal", s.Fields[i].Name, n.Type)
		}
	}
	return n.Type + "(" + strings.Join(values, ", ") + ")", nil
}

func pathString(p *ast.Path) string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.Name
	}
	return strings.Join(parts, "::")
}

func methodNames() []string {
	out := make([]string, 0, len(methodBuiltins))
	for k := range methodBuiltins {
		out = append(out, k)
	}
	return out
}

// helperCall is a resolved kernel helper invocation.
type helperCall struct {
	ns, method string
	typ        shader.TypeName
	args       []string
}

// resolveHelper checks the namespace, method, turbofish type and arity of a
// helper call.
func (c *exprContext) resolveHelper(n *ast.Call, fun *ast.Path) (helperCall, error) {
	ns, m := fun.Segments[0], fun.Segments[1]
	known := false
	for _, name := range helperMethods[ns.Name] {
		if name == m.Name {
			known = true
		}
	}
	if !known {
		alts := make([]string, 0, 3)
		for _, name := range helperMethods[ns.Name] {
			alts = append(alts, ns.Name+"::"+name)
		}
		return helperCall{}, errors.New(errors.PhaseRewrite, errors.KindUnsupported).
			Path(c.path...).
			At(fun.Span).
			Text(pathString(fun)).
			Alternatives(alts...).
			Detail("unknown kernel helper").
			Build()
	}
	if len(ns.Generics) > 0 || len(m.Generics) != 1 {
		return helperCall{}, errors.Definition(errors.PhaseRewrite, c.path, fun.Span,
			"%s needs exactly one type argument, as in %s::<T>", pathString(fun), pathString(fun))
	}
	pt, ok := m.Generics[0].(*ast.PathType)
	if !ok {
		return helperCall{}, errors.Definition(errors.PhaseRewrite, c.path, m.Generics[0].Pos(),
			"%s type argument must be a declared type name", pathString(fun))
	}

	want := map[string]shader.DeclKind{
		helperConfig: shader.DeclUniform,
		helperInput:  shader.DeclInputArray,
		helperOutput: shader.DeclOutputArray,
	}[ns.Name]
	decl, found := c.r.mod.Find(pt.Name)
	if !found || decl.Kind != want {
		return helperCall{}, errors.Definition(errors.PhaseRewrite, c.path, pt.Span,
			"%s is not declared as %s", pt.Name, want)
	}
	if m.Name == "push" && !decl.Counter {
		return helperCall{}, errors.Definition(errors.PhaseRewrite, c.path, fun.Span,
			"%s has no counter; mark it #[wgsl_output_vec] or #[wgsl_output_array(counter)] to push", pt.Name)
	}

	arity := map[string]int{"get": 0, "vec_val": 1, "vec_len": 0, "set": 2, "push": 1, "len": 0}[m.Name]
	if len(n.Args) != arity {
		return helperCall{}, errors.Definition(errors.PhaseRewrite, c.path, n.Span,
			"%s takes %d arguments, got %d", pathString(fun), arity, len(n.Args))
	}
	args := make([]string, 0, arity)
	for _, a := range n.Args {
		s, err := c.expr(unparen(a))
		if err != nil {
			return helperCall{}, err
		}
		args = append(args, s)
	}
	return helperCall{ns: ns.Name, method: m.Name, typ: shader.NewTypeName(pt.Name), args: args}, nil
}

// helperExpr rewrites a helper call in expression position.
func (c *exprContext) helperExpr(n *ast.Call, fun *ast.Path) (string, error) {
	h, err := c.resolveHelper(n, fun)
	if err != nil {
		return "", err
	}
	switch h.method {
	case "get":
		return shader.UniformVar(h.typ), nil
	case "vec_val":
		return shader.BufferVar(h.typ, shader.Input) + "[" + h.args[0] + "]", nil
	case "vec_len":
		return shader.LengthConst(h.typ, shader.Input), nil
	case "len":
		return shader.LengthConst(h.typ, shader.Output), nil
	}
	return "", c.unsupported(n, h.ns+"::"+h.method+" can only be used as a statement")
}

// helperStmt rewrites a statement-only helper call. ok is false when call
// is not one.
func (c *exprContext) helperStmt(e ast.Expr) (stmt string, ok bool, err error) {
	n, isCall := e.(*ast.Call)
	if !isCall {
		return "", false, nil
	}
	fun, isPath := n.Fun.(*ast.Path)
	if !isPath || len(fun.Segments) != 2 || fun.Segments[0].Name != helperOutput {
		return "", false, nil
	}
	if m := fun.Segments[1].Name; m != "set" && m != "push" {
		return "", false, nil
	}
	h, err := c.resolveHelper(n, fun)
	if err != nil {
		return "", true, err
	}
	if h.method == "set" {
		return shader.BufferVar(h.typ, shader.Output) + "[" + h.args[0] + "] = " + h.args[1] + ";", true, nil
	}
	return shader.PushHelper(h.typ) + "(" + h.args[0] + ");", true, nil
}
