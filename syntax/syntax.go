// Package syntax parses kernel source files written in the annotated
// authoring grammar into an ast.File.
//
// The grammar is a small, explicit subset of Rust: one or more modules, each
// holding structs, type aliases, consts, functions and ignored use lines.
// Function bodies support let/let mut, assignment, if/else, range for loops,
// while, loop, break, continue and return over a restricted expression
// grammar. Anything else is rejected with a located error rather than
// guessed at.
//
// Basic usage:
//
//	file, err := syntax.Parse(src)
//	if err != nil {
//		var e *errors.Error
//		if stderrors.As(err, &e) {
//			fmt.Print(e.FormatWithContext(src))
//		}
//	}
package syntax

import (
	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/syntax/internal/parser"
	"github.com/wippyai/kernelc/syntax/internal/token"
)

// GrammarVersion identifies the authoring grammar accepted by Parse. Tables
// keyed on grammar revisions (such as the accepted entry-parameter
// spellings) select their entry with it.
var GrammarVersion = semver.MustParse("1.0.0")

// Parse tokenizes and parses source. Errors are *errors.Error values with
// Phase parse and a source span.
func Parse(source string) (*ast.File, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return parser.New(tokens).Parse()
}

// Text returns the source text covered by span.
func Text(source string, span ast.Span) string {
	if span.Start < 0 || span.End > len(source) || span.Start > span.End {
		return ""
	}
	return source[span.Start:span.End]
}
