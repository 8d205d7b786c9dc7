package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:        PhaseRewrite,
				Kind:         KindSyntaxMatch,
				Path:         []string{"main", "global_id"},
				Span:         Span{Line: 3, Column: 13},
				Text:         "global_id:   WgslGlobalId",
				Detail:       "no accepted spelling",
				Alternatives: []string{"global_id: WgslGlobalId"},
			},
			contains: []string{"[rewrite]", "syntax_match", "main.global_id", "(3:13)", "no accepted spelling", `"global_id:   WgslGlobalId"`, "accepted:"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDerive,
				Kind:  KindNameCollision,
			},
			contains: []string{"[derive]", "name_collision"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseVerify,
				Kind:   KindInvalidOutput,
				Detail: "emitted WGSL rejected",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[verify]", "invalid_output", "emitted WGSL rejected", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseVerify,
		Kind:  KindInvalidOutput,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseValidate,
		Kind:  KindDefinition,
		Path:  []string{"main"},
	}

	if !err.Is(&Error{Phase: PhaseValidate, Kind: KindDefinition}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseClassify, Kind: KindDefinition}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseValidate, Kind: KindSyntax}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseValidate, Kind: KindDefinition}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	span := Span{Start: 10, End: 14, Line: 2, Column: 5}
	err := New(PhaseValidate, KindDefinition).
		Path("main", "global_id").
		At(span).
		Text("gid").
		Alternatives("global_id").
		Cause(cause).
		Detail("expected %s, got %s", "global_id", "gid").
		Build()

	if err.Phase != PhaseValidate {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseValidate)
	}
	if err.Kind != KindDefinition {
		t.Errorf("Kind = %v, want %v", err.Kind, KindDefinition)
	}
	if len(err.Path) != 2 || err.Path[0] != "main" || err.Path[1] != "global_id" {
		t.Errorf("Path = %v, want [main global_id]", err.Path)
	}
	if err.Span != span {
		t.Errorf("Span = %+v, want %+v", err.Span, span)
	}
	if err.Text != "gid" {
		t.Errorf("Text = %v, want 'gid'", err.Text)
	}
	if len(err.Alternatives) != 1 || err.Alternatives[0] != "global_id" {
		t.Errorf("Alternatives = %v", err.Alternatives)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected global_id, got gid" {
		t.Errorf("Detail = %v, want 'expected global_id, got gid'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Definition", func(t *testing.T) {
		err := Definition(PhaseValidate, []string{"main"}, Span{}, "found %d entry functions", 2)
		if err.Kind != KindDefinition {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDefinition)
		}
		if err.Detail != "found 2 entry functions" {
			t.Errorf("Detail = %q", err.Detail)
		}
		if !IsDefinition(err) {
			t.Error("IsDefinition should report true")
		}
	})

	t.Run("SyntaxMatch", func(t *testing.T) {
		err := SyntaxMatch([]string{"main"}, Span{Line: 1, Column: 1}, "x", []string{"a", "b"})
		if err.Kind != KindSyntaxMatch || err.Phase != PhaseRewrite {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), `"a" | "b"`) {
			t.Errorf("alternatives missing from %q", err.Error())
		}
	})

	t.Run("TypeMapping", func(t *testing.T) {
		err := TypeMapping([]string{"Foo", "x"}, Span{}, "Vec5F32", "Vec3F32")
		if !IsTypeMapping(err) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMapping)
		}
		if err.Text != "Vec5F32" {
			t.Errorf("Text = %q", err.Text)
		}
	})

	t.Run("NameCollision", func(t *testing.T) {
		err := NameCollision("foo_input_array", "Foo", "FOO")
		if !IsNameCollision(err) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNameCollision)
		}
		if !strings.Contains(err.Detail, "Foo, FOO") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("BindingLimit", func(t *testing.T) {
		err := BindingLimit(9, 8)
		if err.Kind != KindBindingLimit {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBindingLimit)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseRewrite, []string{"main"}, Span{}, "closures")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("InvalidOutput", func(t *testing.T) {
		cause := errors.New("parse error")
		err := InvalidOutput(cause)
		if !errors.Is(err, cause) {
			t.Error("InvalidOutput should wrap cause")
		}
	})
}

func TestKindOf(t *testing.T) {
	inner := Definition(PhaseValidate, nil, Span{}, "no entry")
	wrapped := fmt.Errorf("transpile kernel.rs: %w", inner)

	if KindOf(wrapped) != KindDefinition {
		t.Errorf("KindOf = %v, want %v", KindOf(wrapped), KindDefinition)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf plain error should be empty")
	}
	if IsSyntaxMatch(wrapped) {
		t.Error("IsSyntaxMatch should be false")
	}
}

func TestFormatWithContext(t *testing.T) {
	source := "mod k {\n    fn main(global_id:   WgslGlobalId) {}\n}"
	err := SyntaxMatch([]string{"main"}, Span{Start: 20, End: 45, Line: 2, Column: 13}, "global_id:   WgslGlobalId", nil)

	out := err.FormatWithContext(source)
	if !strings.Contains(out, "  2| ") {
		t.Errorf("missing source line in:\n%s", out)
	}
	if !strings.Contains(out, "   | "+strings.Repeat(" ", 12)+"^") {
		t.Errorf("caret not under column 13:\n%s", out)
	}

	if got := err.FormatWithContext(""); got != err.Error() {
		t.Errorf("empty source should fall back to Error(), got %q", got)
	}
}
