package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which transpilation phase produced the error
type Phase string

const (
	PhaseParse    Phase = "parse"    // authoring grammar
	PhaseClassify Phase = "classify" // declaration tagging
	PhaseValidate Phase = "validate" // entry-point contract
	PhaseRewrite  Phase = "rewrite"  // authored text to WGSL
	PhaseDerive   Phase = "derive"   // library portion
	PhaseClean    Phase = "clean"    // host-usable module
	PhaseCompose  Phase = "compose"  // shader and reconstruction output
	PhaseVerify   Phase = "verify"   // emitted WGSL check
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindDefinition    Kind = "definition"
	KindSyntaxMatch   Kind = "syntax_match"
	KindTypeMapping   Kind = "type_mapping"
	KindNameCollision Kind = "name_collision"
	KindBindingLimit  Kind = "binding_limit"
	KindSyntax        Kind = "syntax"
	KindUnsupported   Kind = "unsupported"
	KindInvalidOutput Kind = "invalid_output"
	KindInvalidInput  Kind = "invalid_input"
)

// Span locates the offending text in the authored source.
// Start and End are byte offsets; Line and Column are 1-based.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Line == 0
}

// Error is the structured error type used by every phase
type Error struct {
	Cause        error
	Phase        Phase
	Kind         Kind
	Text         string
	Detail       string
	Path         []string
	Alternatives []string
	Span         Span
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if !e.Span.IsZero() {
		fmt.Fprintf(&b, " (%d:%d)", e.Span.Line, e.Span.Column)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Text != "" {
		b.WriteString(": found ")
		b.WriteString(fmt.Sprintf("%q", e.Text))
	}

	if len(e.Alternatives) > 0 {
		b.WriteString("; accepted: ")
		for i, alt := range e.Alternatives {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(fmt.Sprintf("%q", alt))
		}
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// FormatWithContext renders the error with the offending source line and a
// caret under the span start. Falls back to Error when no span is known.
func (e *Error) FormatWithContext(source string) string {
	if source == "" || e.Span.IsZero() {
		return e.Error()
	}

	lines := strings.Split(source, "\n")
	lineNum := e.Span.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Span.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	width := 1
	if e.Span.End > e.Span.Start {
		width = e.Span.End - e.Span.Start
	}
	if rest := len(line) - (col - 1); width > rest && rest > 0 {
		width = rest
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Error())
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	return sb.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the declaration path, e.g. ("main", "global_id")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Text sets the offending authored text
func (b *Builder) Text(text string) *Builder {
	b.err.Text = text
	return b
}

// At sets the source span
func (b *Builder) At(span Span) *Builder {
	b.err.Span = span
	return b
}

// Alternatives sets the accepted spellings or suggestions
func (b *Builder) Alternatives(alts ...string) *Builder {
	b.err.Alternatives = alts
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the transpiler's error taxonomy

// Definition creates a DefinitionError: the entry-function contract or a
// marker was violated.
func Definition(phase Phase, path []string, span Span, detail string, args ...any) *Error {
	return New(phase, KindDefinition).Path(path...).At(span).Detail(detail, args...).Build()
}

// SyntaxMatch creates a SyntaxMatchError for text that matched none of the
// accepted spellings.
func SyntaxMatch(path []string, span Span, text string, accepted []string) *Error {
	return &Error{
		Phase:        PhaseRewrite,
		Kind:         KindSyntaxMatch,
		Path:         path,
		Span:         span,
		Text:         text,
		Detail:       "no accepted spelling",
		Alternatives: accepted,
	}
}

// TypeMapping creates a TypeMappingError for an authored type with no WGSL
// equivalent. suggestions may be empty.
func TypeMapping(path []string, span Span, typeName string, suggestions ...string) *Error {
	return &Error{
		Phase:        PhaseRewrite,
		Kind:         KindTypeMapping,
		Path:         path,
		Span:         span,
		Text:         typeName,
		Detail:       "type has no WGSL equivalent",
		Alternatives: suggestions,
	}
}

// NameCollision creates a NameCollisionError for a derived name produced by
// more than one source.
func NameCollision(name string, owners ...string) *Error {
	return &Error{
		Phase:  PhaseDerive,
		Kind:   KindNameCollision,
		Text:   name,
		Detail: fmt.Sprintf("name derived more than once (from %s)", strings.Join(owners, ", ")),
	}
}

// BindingLimit creates an error for a module needing more binding slots than
// the backend allows.
func BindingLimit(needed, limit int) *Error {
	return &Error{
		Phase:  PhaseDerive,
		Kind:   KindBindingLimit,
		Detail: fmt.Sprintf("module needs %d binding slots, limit is %d", needed, limit),
	}
}

// Syntax creates an authoring-grammar parse error
func Syntax(span Span, detail string, args ...any) *Error {
	return New(PhaseParse, KindSyntax).At(span).Detail(detail, args...).Build()
}

// Unsupported creates an error for a construct outside the supported subset
func Unsupported(phase Phase, path []string, span Span, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Span:   span,
		Detail: what,
	}
}

// InvalidOutput wraps a rejection of the emitted shader text
func InvalidOutput(cause error) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvalidOutput,
		Detail: "emitted WGSL rejected",
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsDefinition reports whether err is a DefinitionError
func IsDefinition(err error) bool { return KindOf(err) == KindDefinition }

// IsSyntaxMatch reports whether err is a SyntaxMatchError
func IsSyntaxMatch(err error) bool { return KindOf(err) == KindSyntaxMatch }

// IsTypeMapping reports whether err is a TypeMappingError
func IsTypeMapping(err error) bool { return KindOf(err) == KindTypeMapping }

// IsNameCollision reports whether err is a NameCollisionError
func IsNameCollision(err error) bool { return KindOf(err) == KindNameCollision }
