package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/syntax"
)

func classifySource(t *testing.T, src string) (*Module, error) {
	t.Helper()
	file, err := syntax.Parse(src)
	require.NoError(t, err)
	mod, err := Select(file)
	if err != nil {
		return nil, err
	}
	return Classify(mod)
}

func wrap(body string) string {
	return "#[wgsl_shader_module]\npub mod k {\n" + body + "\n}\n"
}

func TestClassify_Kinds(t *testing.T) {
	m, err := classifySource(t, wrap(`
		use bevy_gpu_compute::prelude::*;
		const RADIUS: f32 = 1.0;
		struct Helper { x: f32 }
		type Scalar = f32;
		#[wgsl_config]
		struct Uniforms { time: f32 }
		#[wgsl_input_array]
		type Position = [f32; 2];
		#[wgsl_input_array]
		struct Radius { r: f32 }
		#[wgsl_output_array]
		struct Plain { a: u32 }
		#[wgsl_output_array(counter)]
		struct Counted { a: u32 }
		#[wgsl_output_vec]
		struct Hit { a: u32 }
		#[derive(Copy, Clone)]
		struct Derived { a: u32 }
		fn helper(a: f32) -> f32 { a }
		fn main(global_id: WgslGlobalId) {}
	`))
	require.NoError(t, err)

	got := make(map[string]shader.DeclKind)
	var order []string
	for _, d := range m.Decls {
		got[d.Name()] = d.Kind
		order = append(order, d.Name())
	}
	assert.Equal(t, map[string]shader.DeclKind{
		"RADIUS":   shader.DeclStaticConst,
		"Helper":   shader.DeclHelperType,
		"Scalar":   shader.DeclHelperType,
		"Uniforms": shader.DeclUniform,
		"Position": shader.DeclInputArray,
		"Radius":   shader.DeclInputArray,
		"Plain":    shader.DeclOutputArray,
		"Counted":  shader.DeclOutputArray,
		"Hit":      shader.DeclOutputArray,
		"Derived":  shader.DeclHelperType,
		"helper":   shader.DeclHelperFunction,
		"main":     shader.DeclEntry,
	}, got)
	assert.Equal(t, "RADIUS", order[0])
	assert.Equal(t, "main", order[len(order)-1])

	outs := m.Of(shader.DeclOutputArray)
	require.Len(t, outs, 3)
	assert.False(t, outs[0].Counter)
	assert.True(t, outs[1].Counter)
	assert.True(t, outs[2].Counter, "output vec always has a counter")

	assert.True(t, m.IsType("Position"))
	assert.True(t, m.IsType("Helper"))
	assert.False(t, m.IsType("RADIUS"))
	assert.Equal(t, []string{"Helper", "Scalar", "Uniforms", "Position", "Radius", "Plain", "Counted", "Hit", "Derived"}, m.TypeNames())

	s, ok := m.Struct("Uniforms")
	require.True(t, ok)
	assert.Equal(t, "time", s.Fields[0].Name)
	_, ok = m.Struct("Position")
	assert.False(t, ok)
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"config on alias", "#[wgsl_config]\ntype A = f32;", "cannot be applied to a type alias"},
		{"marker on const", "#[wgsl_config]\nconst A: u32 = 1;", "cannot be applied to a const"},
		{"marker on fn", "#[wgsl_output_vec]\nfn f() {}", "cannot be applied to a function"},
		{"unknown marker", "#[wgsl_uniform]\nstruct A { x: f32 }", "unknown marker"},
		{"bad counter arg", "#[wgsl_output_array(count)]\nstruct A { x: f32 }", "unknown #[wgsl_output_array] argument"},
		{"args on config", "#[wgsl_config(counter)]\nstruct A { x: f32 }", "takes no arguments"},
		{"two markers", "#[wgsl_config]\n#[wgsl_output_vec]\nstruct A { x: f32 }", "conflicts with"},
		{"duplicate name", "struct A { x: f32 }\ntype A = f32;", "declared twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := classifySource(t, wrap(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsDefinition(err), "got %v", err)
			assert.ErrorContains(t, err, tt.detail)
		})
	}
}

func TestSelect(t *testing.T) {
	file, err := syntax.Parse("mod plain { }\n#[wgsl_shader_module]\nmod k { fn main(global_id: WgslGlobalId) {} }")
	require.NoError(t, err)
	mod, err := Select(file)
	require.NoError(t, err)
	assert.Equal(t, "k", mod.Name)

	file, err = syntax.Parse("mod plain { }")
	require.NoError(t, err)
	_, err = Select(file)
	assert.True(t, errors.IsDefinition(err))

	file, err = syntax.Parse("#[wgsl_shader_module] mod a { }\n#[wgsl_shader_module] mod b { }")
	require.NoError(t, err)
	_, err = Select(file)
	assert.ErrorContains(t, err, "more than one module")

	_, err = Classify(file.Modules[0])
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"ok", "fn main(global_id: WgslGlobalId) {}", ""},
		{"ok unit result", "fn main(global_id: WgslGlobalId) -> () {}", ""},
		{"no entry", "fn helper() {}", "no entry function"},
		{"two entries", "fn main(global_id: WgslGlobalId) {}\nfn main(global_id: WgslGlobalId) {}", ""},
		{"no params", "fn main() {}", "takes 0 parameters"},
		{"two params", "fn main(global_id: WgslGlobalId, x: u32) {}", "takes 2 parameters"},
		{"wrong name", "fn main(iter_pos: WgslGlobalId) {}", "must be named global_id"},
		{"wrong type", "fn main(global_id: u32) {}", "must have type WgslGlobalId"},
		{"array type", "fn main(global_id: [u32; 3]) {}", "must have type WgslGlobalId"},
		{"returns", "fn main(global_id: WgslGlobalId) -> u32 { 0 }", "must not return a value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := classifySource(t, wrap(tt.body))
			if tt.name == "two entries" {
				// Duplicate names are caught by the classifier first.
				require.Error(t, err)
				assert.True(t, errors.IsDefinition(err))
				return
			}
			require.NoError(t, err)

			err = Validate(m)
			if tt.detail == "" {
				require.NoError(t, err)
				require.NotNil(t, m.Entry)
				assert.Equal(t, "main", m.Entry.Name)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsDefinition(err), "got %v", err)
			assert.ErrorContains(t, err, tt.detail)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.PhaseValidate, e.Phase)
		})
	}
}

func TestValidate_MultipleEntries(t *testing.T) {
	file, err := syntax.Parse(wrap("fn main(global_id: WgslGlobalId) {}\nfn main(global_id: WgslGlobalId) {}"))
	require.NoError(t, err)

	m, err := Classify(file.Modules[0])
	require.NoError(t, err)
	assert.Len(t, m.Of(shader.DeclEntry), 2)

	err = Validate(m)
	require.Error(t, err)
	assert.True(t, errors.IsDefinition(err))
	assert.ErrorContains(t, err, "2 entry functions")
}

func TestClassify_EntryNameClash(t *testing.T) {
	file, err := syntax.Parse(wrap("struct main { x: f32 }\nfn main(global_id: WgslGlobalId) {}"))
	require.NoError(t, err)
	_, err = Classify(file.Modules[0])
	require.Error(t, err)
	assert.ErrorContains(t, err, "declared twice")
}
