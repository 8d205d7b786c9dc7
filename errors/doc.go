// Package errors provides structured error types for the kernelc transpiler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the declaration path, the source span, the offending text
// and, where applicable, the accepted alternatives.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindDefinition).
//		Path("main", "global_id").
//		At(span).
//		Detail("entry parameter must be named global_id").
//		Build()
//
// Or use convenience constructors for the transpiler's taxonomy:
//
//	err := errors.SyntaxMatch(path, span, text, accepted)
//	err := errors.TypeMapping(path, span, "Vec5F32", "Vec3F32")
//
// All errors implement the standard error interface and support errors.Is/As.
// FormatWithContext renders the source line with a caret under the span.
package errors
