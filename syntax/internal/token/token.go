package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	kerrors "github.com/wippyai/kernelc/errors"
)

type Type int

const (
	EOF Type = iota
	Ident
	Int
	Float
	Punct
	Doc
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Punct:
		return "punctuation"
	case Doc:
		return "doc comment"
	}
	return "unknown"
}

// Token is one lexeme. Offset and End are byte offsets into the source.
// For numbers, Value holds the literal without its type suffix.
type Token struct {
	Value  string
	Suffix string
	Type   Type
	Line   int
	Column int
	Offset int
	End    int
}

// Span returns the token's location.
func (t Token) Span() kerrors.Span {
	return kerrors.Span{Start: t.Offset, End: t.End, Line: t.Line, Column: t.Column}
}

// Is reports whether t is the punctuation or identifier v.
func (t Token) Is(v string) bool {
	return (t.Type == Punct || t.Type == Ident) && t.Value == v
}

// longest first within each leading byte
var puncts = []string{
	"..=", "<<=", ">>=",
	"::", "->", "=>", "..", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"#", "[", "]", "(", ")", "{", "}", "<", ">", ",", ";", ":", ".",
	"=", "+", "-", "*", "/", "%", "!", "&", "|", "^", "?",
}

type lexer struct {
	src    string
	tokens []Token
	pos    int
	line   int
	col    int
}

// Tokenize splits source into tokens. Ordinary comments are dropped; outer
// doc comments (///) become Doc tokens carrying their text.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{src: source, line: 1, col: 1}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			break
		}
		if err := l.scan(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Column: l.col, Offset: l.pos, End: l.pos})
	return l.tokens, nil
}

func (l *lexer) peekRune(ahead int) rune {
	p := l.pos
	for i := 0; i < ahead && p < len(l.src); i++ {
		_, w := utf8.DecodeRuneInString(l.src[p:])
		p += w
	}
	if p >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[p:])
	return r
}

func (l *lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peekRune(0)) {
		l.advance()
	}
}

func (l *lexer) here() kerrors.Span {
	return kerrors.Span{Start: l.pos, End: l.pos + 1, Line: l.line, Column: l.col}
}

func (l *lexer) emit(typ Type, value string, start, line, col int) {
	l.tokens = append(l.tokens, Token{Value: value, Type: typ, Line: line, Column: col, Offset: start, End: l.pos})
}

func (l *lexer) scan() error {
	start, line, col := l.pos, l.line, l.col
	r := l.peekRune(0)

	if r == '/' && l.peekRune(1) == '/' {
		return l.lineComment(start, line, col)
	}
	if r == '/' && l.peekRune(1) == '*' {
		return l.blockComment()
	}

	switch {
	case r == '_' || unicode.IsLetter(r):
		for l.pos < len(l.src) {
			c := l.peekRune(0)
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			l.advance()
		}
		l.emit(Ident, l.src[start:l.pos], start, line, col)
		return nil
	case unicode.IsDigit(r):
		return l.number(start, line, col)
	}

	for _, p := range puncts {
		if strings.HasPrefix(l.src[l.pos:], p) {
			for range p {
				l.advance()
			}
			l.emit(Punct, p, start, line, col)
			return nil
		}
	}
	return kerrors.Syntax(l.here(), "unexpected character %q", r)
}

func (l *lexer) lineComment(start, line, col int) error {
	// "///" is a doc comment, "////" is not.
	doc := strings.HasPrefix(l.src[l.pos:], "///") && !strings.HasPrefix(l.src[l.pos:], "////")
	for l.pos < len(l.src) && l.peekRune(0) != '\n' {
		l.advance()
	}
	if doc {
		text := strings.TrimPrefix(l.src[start+3:l.pos], " ")
		l.emit(Doc, strings.TrimRight(text, "\r"), start, line, col)
	}
	return nil
}

func (l *lexer) blockComment() error {
	open := l.here()
	l.advance()
	l.advance()
	depth := 1
	for l.pos < len(l.src) && depth > 0 {
		switch {
		case l.peekRune(0) == '/' && l.peekRune(1) == '*':
			depth++
			l.advance()
		case l.peekRune(0) == '*' && l.peekRune(1) == '/':
			depth--
			l.advance()
		}
		l.advance()
	}
	if depth > 0 {
		return kerrors.Syntax(open, "unterminated block comment")
	}
	return nil
}

func (l *lexer) digits(hex bool) {
	for l.pos < len(l.src) {
		c := l.peekRune(0)
		if c == '_' || unicode.IsDigit(c) || (hex && strings.ContainsRune("abcdefABCDEF", c)) {
			l.advance()
			continue
		}
		break
	}
}

func (l *lexer) number(start, line, col int) error {
	typ := Int
	if l.peekRune(0) == '0' && (l.peekRune(1) == 'x' || l.peekRune(1) == 'X') {
		l.advance()
		l.advance()
		l.digits(true)
	} else {
		l.digits(false)
		// "1.5" is a float, "0..n" is a range and "x.0" never reaches here
		if l.peekRune(0) == '.' && unicode.IsDigit(l.peekRune(1)) {
			typ = Float
			l.advance()
			l.digits(false)
		} else if l.peekRune(0) == '.' && l.peekRune(1) != '.' && !isIdentStart(l.peekRune(1)) {
			// "1." is a float in the authoring language
			typ = Float
			l.advance()
		}
		if c := l.peekRune(0); c == 'e' || c == 'E' {
			next := l.peekRune(1)
			if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peekRune(2))) {
				typ = Float
				l.advance()
				if next == '+' || next == '-' {
					l.advance()
				}
				l.digits(false)
			}
		}
	}
	valueEnd := l.pos

	suffix := ""
	if isIdentStart(l.peekRune(0)) {
		sufStart := l.pos
		for l.pos < len(l.src) {
			c := l.peekRune(0)
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			l.advance()
		}
		suffix = l.src[sufStart:l.pos]
		switch suffix {
		case "u32", "i32", "u", "i":
			if typ == Float {
				return kerrors.Syntax(kerrors.Span{Start: sufStart, End: l.pos, Line: line, Column: col}, "integer suffix %q on float literal", suffix)
			}
		case "f32", "f16", "f", "h":
			typ = Float
		default:
			return kerrors.Syntax(kerrors.Span{Start: sufStart, End: l.pos, Line: line, Column: col}, "unsupported literal suffix %q", suffix)
		}
	}

	value := strings.ReplaceAll(l.src[start:valueEnd], "_", "")
	l.tokens = append(l.tokens, Token{
		Value:  value,
		Suffix: suffix,
		Type:   typ,
		Line:   line,
		Column: col,
		Offset: start,
		End:    l.pos,
	})
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
