package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/transpiler/internal/derive"
)

func sample() *shader.Descriptor {
	hit := shader.NewTypeName("Hit")
	pos := shader.NewTypeName("Position")
	uni := shader.NewTypeName("Uniforms")
	return &shader.Descriptor{
		Name:         "collision",
		StaticConsts: []shader.Component{{Source: "const R: f32 = 1.0;", Target: "const R : f32 = 1.0;"}},
		HelperTypes:  []shader.Component{{Source: "struct P { x: f32 }", Target: "struct P { x : f32, }"}},
		Uniforms: []shader.Uniform{{
			Type: uni,
			Code: shader.Component{Source: "struct Uniforms { time: f32 }", Target: "struct Uniforms { time : f32, }"},
		}},
		InputArrays: []shader.InputArray{{
			ItemType: pos,
			Item:     shader.Component{Source: "type Position = [f32; 2];", Target: "alias Position = array<f32, 2>;"},
			Array:    shader.Component{Target: "alias position_input_array = array<Position, POSITION_INPUT_ARRAY_LENGTH>;"},
		}},
		OutputArrays: []shader.OutputArray{{
			ItemType:    hit,
			Item:        shader.Component{Source: "struct Hit { a: u32 }", Target: "struct Hit { a : u32, }"},
			Array:       shader.Component{Target: "alias hit_output_array = array<Hit, HIT_OUTPUT_ARRAY_LENGTH>;"},
			CounterName: "hit_counter",
		}},
		HelperFunctions: []shader.Component{{
			Source: "fn twice(v: f32) -> f32 { return v * 2.0; }",
			Target: "fn twice(v: f32) -> f32 {\n    return v * 2.0;\n}",
		}},
		Entry: &shader.Component{
			Source: "fn main(global_id: WgslGlobalId) {}",
			Target: "fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {\n}",
		},
	}
}

func library(t *testing.T, d *shader.Descriptor) *shader.LibraryPortion {
	t.Helper()
	lib, err := derive.Derive(d, derive.Options{Params: shader.DefaultParams(), MaxBindings: derive.DefaultMaxBindings})
	require.NoError(t, err)
	return lib
}

func TestWGSL_Order(t *testing.T) {
	d := sample()
	out := WGSL(d, library(t, d))

	markers := []string{
		"const R : f32 = 1.0;",
		"struct P { x : f32, }",
		"const POSITION_INPUT_ARRAY_LENGTH : u32 = 1;",
		"const WORKGROUP_SIZE_Z : u32 = 1;",
		"struct Uniforms { time : f32, }",
		"alias Position = array<f32, 2>;",
		"alias position_input_array",
		"struct Hit { a : u32, }",
		"alias hit_output_array",
		"@group(0) @binding(0) var<uniform> uniforms: Uniforms;",
		"@group(0) @binding(3) var<storage, read_write> hit_counter: atomic<u32>;",
		"fn twice(v: f32) -> f32 {",
		"fn hit_output_push(value: Hit) {",
		"@compute @workgroup_size(WORKGROUP_SIZE_X, WORKGROUP_SIZE_Y, WORKGROUP_SIZE_Z)\nfn main(",
	}
	last := -1
	for _, m := range markers {
		i := strings.Index(out, m)
		require.GreaterOrEqual(t, i, 0, "missing %q in\n%s", m, out)
		assert.Greater(t, i, last, "%q out of order", m)
		last = i
	}

	assert.Equal(t, 1, strings.Count(out, "fn main("))
	assert.True(t, strings.HasSuffix(out, d.Entry.Target+"\n"))
}

func TestWGSL_Minimal(t *testing.T) {
	d := &shader.Descriptor{
		Name:  "k",
		Entry: &shader.Component{Target: "fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {\n}"},
	}
	want := "const WORKGROUP_SIZE_X : u32 = 64;\n" +
		"const WORKGROUP_SIZE_Y : u32 = 1;\n" +
		"const WORKGROUP_SIZE_Z : u32 = 1;\n" +
		"\n" +
		"@compute @workgroup_size(WORKGROUP_SIZE_X, WORKGROUP_SIZE_Y, WORKGROUP_SIZE_Z)\n" +
		"fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {\n" +
		"}\n"
	assert.Equal(t, want, WGSL(d, library(t, d)))
}

func TestSections(t *testing.T) {
	d := sample()
	sections := Sections(d, library(t, d))
	require.Len(t, sections, int(SectionEntry)+1)
	assert.Equal(t, []string{d.Entry.Target}, sections[SectionEntry])
	assert.Len(t, sections[SectionInputArrays], 2)
	assert.Len(t, sections[SectionBindings], 4)
	assert.Empty(t, sections[SectionLibraryUniforms])
	assert.Equal(t, "bindings", SectionBindings.String())
	assert.Equal(t, "unknown", Section(99).String())
}

func TestRoutine_RoundTrip(t *testing.T) {
	d := sample()
	src, err := GoFile("collision", "collision.rs", "", d, DefaultFunc)
	require.NoError(t, err)
	assert.Contains(t, string(src), `import "github.com/wippyai/kernelc/shader"`)
	assert.Contains(t, string(src), "func Descriptor() *shader.Descriptor {")

	back, err := shader.ReadGenerated(src, DefaultFunc)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestRoutine_WithHostDecls(t *testing.T) {
	d := &shader.Descriptor{Name: "k", Entry: &shader.Component{Target: "fn main() {\n}"}}
	src, err := GoFile("k", "", "type Hit struct {\n\tA uint32\n}\n", d, "KernelDescriptor")
	require.NoError(t, err)
	assert.Contains(t, string(src), "type Hit struct")

	back, err := shader.ReadGenerated(src, "KernelDescriptor")
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a"`, quote("a"))
	assert.Equal(t, "`a\nb`", quote("a\nb"))
	assert.Equal(t, `"a\n`+"`"+`"`, quote("a\n`"))
}
