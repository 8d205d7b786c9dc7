package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
)

func TestParse(t *testing.T) {
	src := "use std::f32;\n\n#[wgsl_shader_module]\npub mod k {\n    const N: u32 = 4;\n}\n"
	f, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, f.Modules, 1)

	m := f.Modules[0]
	assert.Equal(t, "k", m.Name)
	require.Len(t, m.Attrs, 1)
	assert.Equal(t, "wgsl_shader_module", m.Attrs[0].Name)
	require.Len(t, m.Items, 1)

	c := m.Items[0].(*ast.Const)
	assert.Equal(t, "const N: u32 = 4;", Text(src, c.Base().Span))
	assert.Equal(t, "N", Text(src, c.Base().NameSpan))
}

func TestParse_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"lexer":  "mod k { const S: u32 = 1 @ 2; }",
		"parser": "mod k { struct }",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.PhaseParse, e.Phase)
			assert.False(t, e.Span.IsZero())
		})
	}
}

func TestText(t *testing.T) {
	src := "abcdef"
	assert.Equal(t, "bcd", Text(src, ast.Span{Start: 1, End: 4}))
	assert.Equal(t, "", Text(src, ast.Span{Start: 4, End: 2}))
	assert.Equal(t, "", Text(src, ast.Span{Start: 0, End: 10}))
}

func TestGrammarVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", GrammarVersion.String())
}
