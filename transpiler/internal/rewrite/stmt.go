package rewrite

import (
	"github.com/wippyai/kernelc/ast"
)

func (c *exprContext) stmts(p *printer, list []ast.Stmt) error {
	for _, s := range list {
		if err := c.stmt(p, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *exprContext) block(p *printer, head string, b *ast.Block) error {
	if head == "" {
		p.line("{")
	} else {
		p.line("%s {", head)
	}
	p.push()
	c.pushScope()
	err := c.stmts(p, b.Stmts)
	c.popScope()
	if err != nil {
		return err
	}
	p.pop()
	p.line("}")
	return nil
}

func (c *exprContext) stmt(p *printer, s ast.Stmt) error {
	switch s.Kind() {
	case ast.KindLet:
		return c.let(p, s.(*ast.Let))

	case ast.KindAssign:
		n := s.(*ast.Assign)
		target, err := c.expr(n.Target)
		if err != nil {
			return err
		}
		value, err := c.expr(unparen(n.Value))
		if err != nil {
			return err
		}
		p.line("%s %s %s;", target, n.Op, value)
		return nil

	case ast.KindExprStmt:
		n := s.(*ast.ExprStmt)
		if text, ok, err := c.helperStmt(n.X); ok || err != nil {
			if err != nil {
				return err
			}
			p.line("%s", text)
			return nil
		}
		x, err := c.expr(n.X)
		if err != nil {
			return err
		}
		p.line("%s;", x)
		return nil

	case ast.KindIf:
		return c.ifChain(p, "if", s.(*ast.If))

	case ast.KindFor:
		n := s.(*ast.For)
		from, err := c.expr(unparen(n.From))
		if err != nil {
			return err
		}
		to, err := c.expr(n.To)
		if err != nil {
			return err
		}
		cmp := "<"
		if n.Inclusive {
			cmp = "<="
		}
		// An abstract start takes the counter type from the bound.
		decl := n.Var
		typ := c.typeOf(n.From)
		if typ == "" {
			typ = c.typeOf(n.To)
			if isInteger(typ) {
				decl += ": " + typ
			}
		}
		head := "for (var " + decl + " = " + from + "; " + n.Var + " " + cmp + " " + to + "; " + n.Var + " += 1)"
		c.pushScope()
		c.declare(n.Var, typ)
		err = c.block(p, head, n.Body)
		c.popScope()
		return err

	case ast.KindWhile:
		n := s.(*ast.While)
		cond, err := c.expr(unparen(n.Cond))
		if err != nil {
			return err
		}
		return c.block(p, "while ("+cond+")", n.Body)

	case ast.KindLoop:
		return c.block(p, "loop", s.(*ast.Loop).Body)

	case ast.KindBreak:
		p.line("break;")
		return nil

	case ast.KindContinue:
		p.line("continue;")
		return nil

	case ast.KindReturn:
		n := s.(*ast.Return)
		if n.Value == nil {
			p.line("return;")
			return nil
		}
		v, err := c.expr(unparen(n.Value))
		if err != nil {
			return err
		}
		p.line("return %s;", v)
		return nil

	case ast.KindBlock:
		return c.block(p, "", s.(*ast.Block))
	}
	return c.unsupported(s, "statement "+s.Kind().String())
}

// let maps `let` to WGSL let and `let mut` to var. WGSL let needs an
// initializer, so a declaration without one becomes a typed var.
func (c *exprContext) let(p *printer, n *ast.Let) error {
	keyword := "let"
	if n.Mut || n.Value == nil {
		keyword = "var"
	}
	decl := keyword + " " + n.Name
	var typ string
	if n.Type != nil {
		t, err := c.r.Type(n.Type, append(c.path[:len(c.path):len(c.path)], n.Name))
		if err != nil {
			return err
		}
		decl += ": " + t
		typ = t
	} else if n.Value == nil {
		return c.unsupported(n, "declaration of "+n.Name+" without type or initializer")
	}
	if n.Value == nil {
		c.declare(n.Name, typ)
		p.line("%s;", decl)
		return nil
	}
	v, err := c.expr(unparen(n.Value))
	if err != nil {
		return err
	}
	if typ == "" {
		typ = c.typeOf(n.Value)
	}
	c.declare(n.Name, typ)
	p.line("%s = %s;", decl, v)
	return nil
}

func (c *exprContext) ifChain(p *printer, head string, n *ast.If) error {
	cond, err := c.expr(unparen(n.Cond))
	if err != nil {
		return err
	}
	p.line("%s (%s) {", head, cond)
	p.push()
	if err := c.stmts(p, n.Then.Stmts); err != nil {
		return err
	}
	p.pop()

	switch e := n.Else.(type) {
	case nil:
		p.line("}")
		return nil
	case *ast.If:
		return c.ifChain(p, "} else if", e)
	case *ast.Block:
		p.line("} else {")
		p.push()
		if err := c.stmts(p, e.Stmts); err != nil {
			return err
		}
		p.pop()
		p.line("}")
		return nil
	}
	return c.unsupported(n.Else, "else branch "+n.Else.Kind().String())
}
