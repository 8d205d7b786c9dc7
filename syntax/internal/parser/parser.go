package parser

import (
	"fmt"

	"github.com/wippyai/kernelc/ast"
	kerrors "github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/syntax/internal/token"
)

type Parser struct {
	tokens  []token.Token
	pos     int
	prevEnd int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Parse() (*ast.File, error) {
	return p.parseFile()
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if t.Type != token.EOF {
		p.pos++
		p.prevEnd = t.End
	}
	return t
}

func (p *Parser) at(v string) bool {
	return p.peek().Is(v)
}

func (p *Parser) accept(v string) bool {
	if p.at(v) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorf(t token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if t.Type == token.EOF {
		return kerrors.Syntax(t.Span(), "%s, got end of input", msg)
	}
	return kerrors.Syntax(t.Span(), "%s, got %q", msg, t.Value)
}

func (p *Parser) expect(v string) (token.Token, error) {
	t := p.peek()
	if !t.Is(v) {
		return t, p.errorf(t, "expected %q", v)
	}
	return p.next(), nil
}

func (p *Parser) expectIdent() (token.Token, error) {
	t := p.peek()
	if t.Type != token.Ident || isReserved(t.Value) {
		return t, p.errorf(t, "expected identifier")
	}
	return p.next(), nil
}

// spanFrom builds a span from start token through the last consumed token.
func (p *Parser) spanFrom(start token.Token) ast.Span {
	return ast.Span{Start: start.Offset, End: p.prevEnd, Line: start.Line, Column: start.Column}
}

var reserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"false": true, "fn": true, "for": true, "if": true, "in": true, "let": true,
	"loop": true, "mod": true, "mut": true, "pub": true, "return": true,
	"struct": true, "true": true, "type": true, "use": true, "while": true,
}

func isReserved(s string) bool { return reserved[s] }

func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{}
	for p.peek().Type != token.EOF {
		// skip file-level docs and use lines
		if p.peek().Type == token.Doc {
			p.next()
			continue
		}
		if p.at("use") {
			if _, err := p.parseUsePath(); err != nil {
				return nil, err
			}
			continue
		}
		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, m)
	}
	return f, nil
}

func (p *Parser) parseModule() (*ast.Module, error) {
	start := p.peek()
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	if _, err := p.parseVis(); err != nil {
		return nil, err
	}
	if _, err := p.expect("mod"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	m := &ast.Module{Name: name.Value, Attrs: attrs}
	for !p.at("}") {
		if p.peek().Type == token.EOF {
			return nil, p.errorf(p.peek(), "expected \"}\" closing module %s", m.Name)
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, item)
	}
	p.next()
	m.Span = p.spanFrom(start)
	return m, nil
}

func (p *Parser) parseDocs() []string {
	var docs []string
	for p.peek().Type == token.Doc {
		docs = append(docs, p.next().Value)
	}
	return docs
}

func (p *Parser) parseAttrs() ([]ast.Attr, error) {
	var attrs []ast.Attr
	for p.at("#") {
		start := p.next()
		if _, err := p.expect("["); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		attr := ast.Attr{Name: name.Value}
		if p.accept("(") {
			for !p.at(")") {
				arg := p.next()
				if arg.Type == token.EOF {
					return nil, p.errorf(arg, "expected \")\" closing attribute")
				}
				if arg.Is(",") {
					continue
				}
				attr.Args = append(attr.Args, arg.Value)
			}
			p.next()
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		attr.Span = p.spanFrom(start)
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseVis() (ast.Visibility, error) {
	if !p.at("pub") {
		return ast.VisPrivate, nil
	}
	p.next()
	if p.accept("(") {
		// pub(crate), pub(super)
		if _, err := p.expectIdent(); err != nil {
			return 0, err
		}
		if _, err := p.expect(")"); err != nil {
			return 0, err
		}
		return ast.VisRestricted, nil
	}
	return ast.VisPub, nil
}

func (p *Parser) parseItem() (ast.Item, error) {
	docs := p.parseDocs()
	start := p.peek()
	attrs, err := p.parseAttrs()
	if err != nil {
		return nil, err
	}
	// docs may also follow attributes
	docs = append(docs, p.parseDocs()...)

	visTok := p.peek()
	vis, err := p.parseVis()
	if err != nil {
		return nil, err
	}
	base := ast.ItemBase{Docs: docs, Attrs: attrs, Vis: vis}
	if vis != ast.VisPrivate {
		base.VisSpan = p.spanFrom(visTok)
	}
	kw := p.peek()
	base.KeywordStart = kw.Offset

	var item ast.Item
	switch {
	case kw.Is("struct"):
		item, err = p.parseStruct(base)
	case kw.Is("type"):
		item, err = p.parseAlias(base)
	case kw.Is("const"):
		item, err = p.parseConst(base)
	case kw.Is("fn"):
		item, err = p.parseFunc(base)
	case kw.Is("use"):
		var path string
		path, err = p.parseUsePath()
		item = &ast.Use{ItemBase: base, Path: path}
	case kw.Is("mod"):
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, kw.Span(), "nested modules")
	case kw.Is("impl"), kw.Is("enum"), kw.Is("trait"), kw.Is("static"):
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, kw.Span(), kw.Value+" items")
	default:
		return nil, p.errorf(kw, "expected struct, type, const, fn or use")
	}
	if err != nil {
		return nil, err
	}
	b := item.Base()
	b.Span = p.spanFrom(start)
	return item, nil
}

func (p *Parser) parseUsePath() (string, error) {
	p.next() // use
	var path string
	for !p.at(";") {
		t := p.next()
		if t.Type == token.EOF {
			return "", p.errorf(t, "expected \";\" after use")
		}
		path += t.Value
	}
	p.next()
	return path, nil
}

func (p *Parser) parseStruct(base ast.ItemBase) (ast.Item, error) {
	p.next() // struct
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	base.Name = name.Value
	base.NameSpan = name.Span()
	if p.at("(") || p.at(";") {
		return nil, kerrors.Unsupported(kerrors.PhaseParse, []string{name.Value}, name.Span(), "tuple and unit structs")
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	s := &ast.Struct{ItemBase: base}
	for !p.at("}") {
		docs := p.parseDocs()
		// field attributes carry no meaning here
		if _, err := p.parseAttrs(); err != nil {
			return nil, err
		}
		start := p.peek()
		visTok := start
		vis, err := p.parseVis()
		if err != nil {
			return nil, err
		}
		f := &ast.Field{Docs: docs, Vis: vis}
		if vis != ast.VisPrivate {
			f.VisSpan = p.spanFrom(visTok)
		}
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		f.Name = fname.Value
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		if f.Type, err = p.parseType(); err != nil {
			return nil, err
		}
		f.Span = p.spanFrom(start)
		s.Fields = append(s.Fields, f)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseAlias(base ast.ItemBase) (ast.Item, error) {
	p.next() // type
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	base.Name = name.Value
	base.NameSpan = name.Span()
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.Alias{ItemBase: base, Type: typ}, nil
}

func (p *Parser) parseConst(base ast.ItemBase) (ast.Item, error) {
	p.next() // const
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	base.Name = name.Value
	base.NameSpan = name.Span()
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ast.Const{ItemBase: base, Type: typ, Value: value}, nil
}

func (p *Parser) parseFunc(base ast.ItemBase) (ast.Item, error) {
	p.next() // fn
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	base.Name = name.Value
	base.NameSpan = name.Span()
	open, err := p.expect("(")
	if err != nil {
		return nil, err
	}
	f := &ast.Func{ItemBase: base}
	for !p.at(")") {
		start := p.peek()
		param := &ast.Param{}
		if p.accept("mut") {
			param.Mut = true
		}
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		param.Name = pname.Value
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		if param.Type, err = p.parseType(); err != nil {
			return nil, err
		}
		param.Span = p.spanFrom(start)
		f.Params = append(f.Params, param)
		if !p.accept(",") {
			break
		}
	}
	closeTok, err := p.expect(")")
	if err != nil {
		return nil, err
	}
	f.ParamsSpan = ast.Span{Start: open.End, End: closeTok.Offset, Line: open.Line, Column: open.Column + 1}

	if p.accept("->") {
		if f.Result, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	body, tail, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	// a trailing expression without semicolon is the function's value
	if _, unit := f.Result.(*ast.UnitType); tail && f.Result != nil && !unit {
		last := body.Stmts[len(body.Stmts)-1].(*ast.ExprStmt)
		body.Stmts[len(body.Stmts)-1] = &ast.Return{Value: last.X, Span: last.Span}
	}
	f.Body = body
	return f, nil
}

func (p *Parser) parseType() (ast.Type, error) {
	start := p.peek()
	switch {
	case p.accept("["):
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		n, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return &ast.ArrayType{Elem: elem, Len: n, Span: p.spanFrom(start)}, nil
	case p.accept("("):
		if _, err := p.expect(")"); err != nil {
			return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, start.Span(), "tuple types")
		}
		return &ast.UnitType{Span: p.spanFrom(start)}, nil
	case p.at("&"):
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, start.Span(), "reference types")
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.at("<") || p.at("::") {
		return nil, kerrors.Unsupported(kerrors.PhaseParse, nil, p.peek().Span(), "generic or qualified types")
	}
	return &ast.PathType{Name: name.Value, Span: p.spanFrom(start)}, nil
}
