package ast

import "fmt"

// Children returns the direct child nodes of n in source order.
// Types referenced through turbofish generics are not children of a Path.
func Children(n Node) []Node {
	switch n.Kind() {
	case KindModule:
		m := n.(*Module)
		out := make([]Node, 0, len(m.Items))
		for _, it := range m.Items {
			out = append(out, it)
		}
		return out
	case KindStruct:
		s := n.(*Struct)
		out := make([]Node, 0, len(s.Fields))
		for _, f := range s.Fields {
			out = append(out, f)
		}
		return out
	case KindField:
		return []Node{n.(*Field).Type}
	case KindAlias:
		return []Node{n.(*Alias).Type}
	case KindConst:
		c := n.(*Const)
		return []Node{c.Type, c.Value}
	case KindFunc:
		f := n.(*Func)
		out := make([]Node, 0, len(f.Params)+2)
		for _, p := range f.Params {
			out = append(out, p)
		}
		if f.Result != nil {
			out = append(out, f.Result)
		}
		return append(out, f.Body)
	case KindParam:
		return []Node{n.(*Param).Type}
	case KindUse, KindPathType, KindUnitType, KindBreak, KindContinue, KindPath, KindLit:
		return nil
	case KindArrayType:
		a := n.(*ArrayType)
		return []Node{a.Elem, a.Len}
	case KindBlock:
		b := n.(*Block)
		out := make([]Node, 0, len(b.Stmts))
		for _, s := range b.Stmts {
			out = append(out, s)
		}
		return out
	case KindLet:
		l := n.(*Let)
		var out []Node
		if l.Type != nil {
			out = append(out, l.Type)
		}
		if l.Value != nil {
			out = append(out, l.Value)
		}
		return out
	case KindAssign:
		a := n.(*Assign)
		return []Node{a.Target, a.Value}
	case KindExprStmt:
		return []Node{n.(*ExprStmt).X}
	case KindIf:
		s := n.(*If)
		out := []Node{s.Cond, s.Then}
		if s.Else != nil {
			out = append(out, s.Else)
		}
		return out
	case KindFor:
		f := n.(*For)
		return []Node{f.From, f.To, f.Body}
	case KindWhile:
		w := n.(*While)
		return []Node{w.Cond, w.Body}
	case KindLoop:
		return []Node{n.(*Loop).Body}
	case KindReturn:
		if r := n.(*Return); r.Value != nil {
			return []Node{r.Value}
		}
		return nil
	case KindBinary:
		b := n.(*Binary)
		return []Node{b.X, b.Y}
	case KindUnary:
		return []Node{n.(*Unary).X}
	case KindCall:
		c := n.(*Call)
		out := make([]Node, 0, len(c.Args)+1)
		out = append(out, c.Fun)
		for _, a := range c.Args {
			out = append(out, a)
		}
		return out
	case KindIndex:
		ix := n.(*Index)
		return []Node{ix.X, ix.Index}
	case KindSelector:
		return []Node{n.(*Selector).X}
	case KindCast:
		c := n.(*Cast)
		return []Node{c.X, c.Type}
	case KindStructLit:
		s := n.(*StructLit)
		out := make([]Node, 0, len(s.Fields))
		for _, f := range s.Fields {
			out = append(out, f.Value)
		}
		return out
	case KindParen:
		return []Node{n.(*Paren).X}
	case KindArrayLit:
		a := n.(*ArrayLit)
		out := make([]Node, 0, len(a.Elems))
		for _, e := range a.Elems {
			out = append(out, e)
		}
		return out
	}
	panic(fmt.Sprintf("ast: unhandled node kind %v", n.Kind()))
}

// Walk traverses the tree rooted at n in depth-first preorder. If fn returns
// false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Inspect calls fn for every node of type T under root, in preorder.
func Inspect[T Node](root Node, fn func(T)) {
	Walk(root, func(n Node) bool {
		if t, ok := n.(T); ok {
			fn(t)
		}
		return true
	})
}

// Collect returns every node of type T under root, in preorder.
func Collect[T Node](root Node) []T {
	var out []T
	Inspect(root, func(t T) { out = append(out, t) })
	return out
}

// Fold reduces the tree bottom-up: fn receives each node together with the
// already-folded results of its children, in Children order. The first
// error aborts the fold.
func Fold[R any](n Node, fn func(n Node, children []R) (R, error)) (R, error) {
	kids := Children(n)
	results := make([]R, 0, len(kids))
	for _, c := range kids {
		r, err := Fold(c, fn)
		if err != nil {
			var zero R
			return zero, err
		}
		results = append(results, r)
	}
	return fn(n, results)
}
