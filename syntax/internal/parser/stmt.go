package parser

import (
	"github.com/wippyai/kernelc/ast"
	kerrors "github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/syntax/internal/token"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// parseBlock parses `{ stmts }`. tail reports whether the last statement is
// an expression without a terminating semicolon.
func (p *Parser) parseBlock() (*ast.Block, bool, error) {
	start, err := p.expect("{")
	if err != nil {
		return nil, false, err
	}
	b := &ast.Block{}
	tail := false
	for !p.at("}") {
		if p.peek().Type == token.EOF {
			return nil, false, p.errorf(p.peek(), "expected \"}\" closing block")
		}
		if p.accept(";") {
			continue
		}
		stmt, needSemi, err := p.parseStmt()
		if err != nil {
			return nil, false, err
		}
		b.Stmts = append(b.Stmts, stmt)
		tail = false
		if !needSemi || p.accept(";") {
			continue
		}
		if !p.at("}") {
			return nil, false, p.errorf(p.peek(), "expected \";\"")
		}
		_, tail = stmt.(*ast.ExprStmt)
	}
	p.next()
	b.Span = p.spanFrom(start)
	return b, tail, nil
}

func (p *Parser) parseStmt() (ast.Stmt, bool, error) {
	start := p.peek()
	switch {
	case start.Is("let"):
		s, err := p.parseLet()
		return s, false, err
	case start.Is("if"):
		s, err := p.parseIf()
		return s, false, err
	case start.Is("for"):
		s, err := p.parseFor()
		return s, false, err
	case start.Is("while"):
		p.next()
		cond, err := p.parseExpr(false)
		if err != nil {
			return nil, false, err
		}
		body, _, err := p.parseBlock()
		if err != nil {
			return nil, false, err
		}
		return &ast.While{Cond: cond, Body: body, Span: p.spanFrom(start)}, false, nil
	case start.Is("loop"):
		p.next()
		body, _, err := p.parseBlock()
		if err != nil {
			return nil, false, err
		}
		return &ast.Loop{Body: body, Span: p.spanFrom(start)}, false, nil
	case start.Is("break"):
		p.next()
		return &ast.Break{Span: p.spanFrom(start)}, true, nil
	case start.Is("continue"):
		p.next()
		return &ast.Continue{Span: p.spanFrom(start)}, true, nil
	case start.Is("return"):
		p.next()
		r := &ast.Return{}
		if !p.at(";") && !p.at("}") {
			v, err := p.parseExpr(true)
			if err != nil {
				return nil, false, err
			}
			r.Value = v
		}
		r.Span = p.spanFrom(start)
		return r, true, nil
	case start.Is("{"):
		b, _, err := p.parseBlock()
		return b, false, err
	}

	x, err := p.parseExpr(true)
	if err != nil {
		return nil, false, err
	}
	if op := p.peek(); op.Type == token.Punct && assignOps[op.Value] {
		p.next()
		v, err := p.parseExpr(true)
		if err != nil {
			return nil, false, err
		}
		return &ast.Assign{Op: op.Value, Target: x, Value: v, Span: p.spanFrom(start)}, true, nil
	}
	return &ast.ExprStmt{X: x, Span: p.spanFrom(start)}, true, nil
}

func (p *Parser) parseLet() (*ast.Let, error) {
	start := p.next() // let
	l := &ast.Let{}
	if p.accept("mut") {
		l.Mut = true
	}
	if p.at("(") {
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "destructuring let")
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	l.Name = name.Value
	if p.accept(":") {
		if l.Type, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if p.accept("=") {
		if l.Value, err = p.parseExpr(true); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	l.Span = p.spanFrom(start)
	return l, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	start := p.next() // if
	cond, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	then, _, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.If{Cond: cond, Then: then}
	if p.accept("else") {
		if p.at("if") {
			elif, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			s.Else = elif
		} else {
			els, _, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			s.Else = els
		}
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseFor() (*ast.For, error) {
	start := p.next() // for
	v, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	from, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	f := &ast.For{Var: v.Value, From: from}
	switch {
	case p.accept(".."):
	case p.accept("..="):
		f.Inclusive = true
	default:
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "for loops over anything but a range")
	}
	if f.To, err = p.parseExpr(false); err != nil {
		return nil, err
	}
	if f.Body, _, err = p.parseBlock(); err != nil {
		return nil, err
	}
	f.Span = p.spanFrom(start)
	return f, nil
}
