package kernelc_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

func module(body string) string {
	return "#[wgsl_shader_module]\npub mod k {\n" + body + "\n}\n"
}

const emptyEntry = "fn main(global_id: WgslGlobalId) {}"

func compile(t *testing.T, src string) *kernelc.Result {
	t.Helper()
	res, err := kernelc.Compile(src)
	require.NoError(t, err)
	return res
}

func TestCompile_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.rs"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			require.NoError(t, err)

			cfg := kernelc.DefaultConfig()
			cfg.Verify = true
			cfg.SourceName = filepath.Base(file)
			res, err := kernelc.CompileWithConfig(string(src), cfg)
			require.NoError(t, err)

			require.NotNil(t, res.Descriptor.Entry)
			assert.Equal(t, 1, strings.Count(res.WGSL, "fn main("))
			assert.True(t, strings.HasSuffix(res.WGSL, res.Descriptor.Entry.Target+"\n"))
			assert.NotContains(t, res.WGSL, "Wgsl")

			back, err := shader.ReadGenerated(res.GoSource, "Descriptor")
			require.NoError(t, err)
			assert.Equal(t, res.Descriptor, back)
		})
	}
}

func TestCompile_Particles(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "particles.rs"))
	require.NoError(t, err)
	res := compile(t, string(src))

	var names []string
	for _, b := range res.Library.Bindings {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"step", "particle_input", "moved_output", "escaped_output", "escaped_counter"}, names)

	particle, ok := res.Host.Type("Particle")
	require.True(t, ok)
	assert.Equal(t, uint32(32), particle.Size)

	step, ok := res.Host.Type("Step")
	require.True(t, ok)
	assert.Equal(t, uint32(16), step.Fields[1].Offset)

	assert.Contains(t, res.WGSL, "moved_output[i] = Moved(pos, length(vel));")
	assert.Contains(t, res.WGSL, "escaped_output_push(Escaped(i));")
	assert.Contains(t, res.WGSL, "let s = step;")
}

func TestScenarioA_HelperStruct(t *testing.T) {
	res := compile(t, module("struct TStruct {\n    x: f32,\n    y: f32,\n}\n"+emptyEntry))

	require.Len(t, res.Descriptor.HelperTypes, 1)
	assert.Equal(t, "struct TStruct { x : f32, y : f32, }", res.Descriptor.HelperTypes[0].Target)
	assert.Empty(t, res.Descriptor.Uniforms)
	assert.Empty(t, res.Descriptor.InputArrays)
	assert.Empty(t, res.Descriptor.OutputArrays)
	assert.Contains(t, res.WGSL, "struct TStruct { x : f32, y : f32, }\n")
}

func TestScenarioB_StructLiteral(t *testing.T) {
	res := compile(t, module(`struct TStruct { x: f32, y: f32 }
fn main(global_id: WgslGlobalId) {
    let t = TStruct { x: 1.0, y: 2.0 };
}`))
	assert.Contains(t, res.Descriptor.Entry.Target, "TStruct(1.0, 2.0)")
}

func TestScenarioC_VectorConstructor(t *testing.T) {
	res := compile(t, module(`fn main(global_id: WgslGlobalId) {
    let v = Vec3F32::new(1.0, 2.0, 3.0);
}`))
	assert.Contains(t, res.Descriptor.Entry.Target, "vec3<f32>(1.0, 2.0, 3.0)")
}

func TestScenarioD_InputArray(t *testing.T) {
	res := compile(t, module("#[wgsl_input_array]\ntype Position = [f32; 2];\n"+emptyEntry))

	require.Len(t, res.Descriptor.InputArrays, 1)
	in := res.Descriptor.InputArrays[0]
	assert.Equal(t, "alias Position = array<f32, 2>;", in.Item.Target)
	assert.Equal(t, "alias position_input_array = array<Position, POSITION_INPUT_ARRAY_LENGTH>;", in.Array.Target)
	assert.Contains(t, res.WGSL, "const POSITION_INPUT_ARRAY_LENGTH : u32 = 1;")
}

func TestScenarioE_Counters(t *testing.T) {
	res := compile(t, module(`#[wgsl_output_vec]
struct A { x: u32 }
#[wgsl_output_array]
struct B { x: u32 }
`+emptyEntry))

	require.Len(t, res.Descriptor.OutputArrays, 2)
	assert.Equal(t, "a_counter", res.Descriptor.OutputArrays[0].CounterName)
	assert.Empty(t, res.Descriptor.OutputArrays[1].CounterName)
}

func TestEntryCount(t *testing.T) {
	for name, src := range map[string]string{
		"none": module("struct A { x: f32 }"),
		"two":  module(emptyEntry + "\n" + emptyEntry),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := kernelc.Compile(src)
			require.Error(t, err)
			assert.True(t, errors.IsDefinition(err), "got %v", err)
			if name == "two" {
				assert.ErrorContains(t, err, "2 entry functions")
			}
		})
	}
}

func TestEntrySpellings(t *testing.T) {
	var want string
	for _, before := range []string{"", " ", "  "} {
		for _, after := range []string{"", " ", "  "} {
			src := module("fn main(global_id" + before + ":" + after + "WgslGlobalId) {}")
			res := compile(t, src)
			if want == "" {
				want = res.WGSL
			}
			assert.Equal(t, want, res.WGSL)
		}
	}

	for _, bad := range []string{"global_id   : WgslGlobalId", "global_id:\tWgslGlobalId"} {
		_, err := kernelc.Compile(module("fn main(" + bad + ") {}"))
		require.Error(t, err)
		assert.True(t, errors.IsSyntaxMatch(err), "%q: got %v", bad, err)
	}
}

func TestCaseCollision(t *testing.T) {
	_, err := kernelc.Compile(module(`#[wgsl_output_array]
struct Hit { x: u32 }
#[wgsl_output_array]
struct HIT { x: u32 }
` + emptyEntry))
	require.Error(t, err)
	assert.True(t, errors.IsNameCollision(err), "got %v", err)
}

func TestCompileAll(t *testing.T) {
	out := kernelc.CompileAll([]kernelc.Source{
		{Name: "good.rs", Text: module(emptyEntry)},
		{Name: "bad.rs", Text: module("struct A { x: f32 }")},
		{Name: "also_good.rs", Text: module("const N: u32 = 2;\n" + emptyEntry)},
	}, kernelc.DefaultConfig())

	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.NotNil(t, out[0].Result)
	assert.Error(t, out[1].Err)
	assert.Nil(t, out[1].Result)
	assert.NoError(t, out[2].Err)
	assert.Contains(t, string(out[2].Result.GoSource), "from also_good.rs")
}

func TestRecompose(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "collision.rs"))
	require.NoError(t, err)
	res := compile(t, string(src))

	params := shader.DefaultParams()
	params.IterationSpace = shader.IterationSpace{X: 100, Y: 100, Z: 1}
	params.Lengths = map[string]uint32{"Position": 100, "Radius": 100, "CollisionResult": 4950}

	again, err := kernelc.Recompose(res.Descriptor, params)
	require.NoError(t, err)
	assert.Contains(t, again.WGSL, "const COLLISIONRESULT_OUTPUT_ARRAY_LENGTH : u32 = 4950;")
	assert.Contains(t, again.WGSL, "const WORKGROUP_SIZE_Y : u32 = 8;")
	assert.Equal(t, res.Library.Bindings, again.Library.Bindings)
	assert.Nil(t, again.Host)
}
