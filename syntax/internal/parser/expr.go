package parser

import (
	"github.com/wippyai/kernelc/ast"
	kerrors "github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/syntax/internal/token"
)

// Rust operator precedence, loosest first. Comparisons share one level.
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"<<": 7, ">>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

// parseExpr parses an expression. allowStruct is false in positions where
// `Name {` starts a block rather than a struct literal (if/while heads).
func (p *Parser) parseExpr(allowStruct bool) (ast.Expr, error) {
	return p.parseBinary(1, allowStruct)
}

func (p *Parser) parseBinary(minPrec int, allowStruct bool) (ast.Expr, error) {
	start := p.peek()
	x, err := p.parseCast(allowStruct)
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec, ok := binaryPrec[op.Value]
		if op.Type != token.Punct || !ok || prec < minPrec {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(prec+1, allowStruct)
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Op: op.Value, X: x, Y: y, Span: p.spanFrom(start)}
	}
}

func (p *Parser) parseCast(allowStruct bool) (ast.Expr, error) {
	start := p.peek()
	x, err := p.parseUnary(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.accept("as") {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		x = &ast.Cast{X: x, Type: typ, Span: p.spanFrom(start)}
	}
	return x, nil
}

func (p *Parser) parseUnary(allowStruct bool) (ast.Expr, error) {
	start := p.peek()
	if start.Is("-") || start.Is("!") {
		p.next()
		x, err := p.parseUnary(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: start.Value, X: x, Span: p.spanFrom(start)}, nil
	}
	if start.Is("&") || start.Is("*") || start.Is("&&") {
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, start.Span(), "references and dereferences")
	}
	return p.parsePostfix(allowStruct)
}

func (p *Parser) parsePostfix(allowStruct bool) (ast.Expr, error) {
	start := p.peek()
	x, err := p.parsePrimary(allowStruct)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("("):
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}
			x = &ast.Call{Fun: x, Args: args, Span: p.spanFrom(start)}
		case p.accept("["):
			idx, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &ast.Index{X: x, Index: idx, Span: p.spanFrom(start)}
		case p.at("."):
			dot := p.next()
			name := p.peek()
			if name.Type != token.Ident {
				return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, dot.Span(), "tuple field access")
			}
			p.next()
			x = &ast.Selector{X: x, Name: name.Value, Span: p.spanFrom(start)}
		case p.at("?"):
			return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "the ? operator")
		default:
			return x, nil
		}
	}
}

// parseList parses comma-separated expressions up to and including end.
func (p *Parser) parseList(end string) ([]ast.Expr, error) {
	var out []ast.Expr
	for !p.at(end) {
		e, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(end); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parsePrimary(allowStruct bool) (ast.Expr, error) {
	t := p.peek()
	switch {
	case t.Type == token.Int:
		p.next()
		return &ast.Lit{LitKind: ast.LitInt, Value: t.Value, Suffix: t.Suffix, Span: t.Span()}, nil
	case t.Type == token.Float:
		p.next()
		return &ast.Lit{LitKind: ast.LitFloat, Value: t.Value, Suffix: t.Suffix, Span: t.Span()}, nil
	case t.Is("true"), t.Is("false"):
		p.next()
		return &ast.Lit{LitKind: ast.LitBool, Value: t.Value, Span: t.Span()}, nil
	case t.Is("("):
		p.next()
		x, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		if p.at(",") {
			return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "tuples")
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Paren{X: x, Span: p.spanFrom(t)}, nil
	case t.Is("["):
		p.next()
		if p.at("]") {
			return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, t.Span(), "empty array literals")
		}
		first, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		if p.at(";") {
			return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "array repeat expressions")
		}
		elems := []ast.Expr{first}
		if p.accept(",") {
			rest, err := p.parseList("]")
			if err != nil {
				return nil, err
			}
			elems = append(elems, rest...)
		} else if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elems: elems, Span: p.spanFrom(t)}, nil
	case t.Is("if"), t.Is("match"), t.Is("loop"), t.Is("|"):
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, t.Span(), t.Value+" expressions")
	case t.Type == token.Ident && !isReserved(t.Value):
		return p.parsePathOrStruct(allowStruct)
	}
	return nil, p.errorf(t, "expected expression")
}

func (p *Parser) parsePathOrStruct(allowStruct bool) (ast.Expr, error) {
	start := p.next()
	path := &ast.Path{Segments: []ast.Segment{{Name: start.Value}}}
	for p.at("::") {
		p.next()
		if p.accept("<") {
			last := &path.Segments[len(path.Segments)-1]
			for !p.at(">") {
				typ, err := p.parseType()
				if err != nil {
					return nil, err
				}
				last.Generics = append(last.Generics, typ)
				if !p.accept(",") {
					break
				}
			}
			if _, err := p.expect(">"); err != nil {
				return nil, err
			}
			continue
		}
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		path.Segments = append(path.Segments, ast.Segment{Name: seg.Value})
	}
	path.Span = p.spanFrom(start)

	name, plain := path.Ident()
	if !allowStruct || !plain || !p.at("{") {
		return path, nil
	}
	return p.parseStructLit(start, name)
}

func (p *Parser) parseStructLit(start token.Token, name string) (ast.Expr, error) {
	p.next() // {
	lit := &ast.StructLit{Type: name}
	for !p.at("}") {
		fstart := p.peek()
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		init := ast.FieldInit{Name: fname.Value}
		if p.accept(":") {
			if init.Value, err = p.parseExpr(true); err != nil {
				return nil, err
			}
		} else {
			// shorthand `Name { x }`
			init.Value = &ast.Path{Segments: []ast.Segment{{Name: fname.Value}}, Span: fname.Span()}
		}
		init.Span = p.spanFrom(fstart)
		lit.Fields = append(lit.Fields, init)
		if !p.accept(",") {
			break
		}
	}
	if p.at("..") {
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "struct update syntax")
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	lit.Span = p.spanFrom(start)
	return lit, nil
}
