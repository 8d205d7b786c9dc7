package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

func outputArray(name string, counter bool) shader.OutputArray {
	tn := shader.NewTypeName(name)
	o := shader.OutputArray{
		ItemType: tn,
		Item:     shader.Component{Target: "struct " + name + " { a : u32, }"},
	}
	if counter {
		o.CounterName = shader.CounterName(tn)
	}
	return o
}

func inputArray(name string) shader.InputArray {
	return shader.InputArray{
		ItemType: shader.NewTypeName(name),
		Item:     shader.Component{Target: "alias " + name + " = array<f32, 2>;"},
	}
}

func collisionDescriptor() *shader.Descriptor {
	return &shader.Descriptor{
		Name: "collision",
		Uniforms: []shader.Uniform{{
			Type: shader.NewTypeName("Uniforms"),
			Code: shader.Component{Target: "struct Uniforms { time : f32, }"},
		}},
		InputArrays:  []shader.InputArray{inputArray("Position"), inputArray("Radius")},
		OutputArrays: []shader.OutputArray{outputArray("Dist", false), outputArray("Hit", true)},
		Entry:        &shader.Component{Target: "fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {\n}"},
	}
}

func TestDerive(t *testing.T) {
	params := shader.Params{
		IterationSpace: shader.IterationSpace{X: 100, Y: 100, Z: 1},
		Lengths:        map[string]uint32{"Position": 100, "Radius": 100, "Hit": 4950},
		DefaultLength:  10,
	}
	lib, err := Derive(collisionDescriptor(), Options{Params: params, MaxBindings: DefaultMaxBindings})
	require.NoError(t, err)

	var consts []string
	for _, c := range lib.PipelineConsts {
		assert.Empty(t, c.Source)
		consts = append(consts, c.Target)
	}
	assert.Equal(t, []string{
		"const POSITION_INPUT_ARRAY_LENGTH : u32 = 100;",
		"const RADIUS_INPUT_ARRAY_LENGTH : u32 = 100;",
		"const DIST_OUTPUT_ARRAY_LENGTH : u32 = 10;",
		"const HIT_OUTPUT_ARRAY_LENGTH : u32 = 4950;",
		"const WORKGROUP_SIZE_X : u32 = 8;",
		"const WORKGROUP_SIZE_Y : u32 = 8;",
		"const WORKGROUP_SIZE_Z : u32 = 1;",
	}, consts)

	var decls []string
	for i, b := range lib.Bindings {
		assert.Equal(t, uint32(i), b.Slot)
		decls = append(decls, b.String())
	}
	assert.Equal(t, []string{
		"@group(0) @binding(0) var<uniform> uniforms: Uniforms;",
		"@group(0) @binding(1) var<storage, read> position_input: position_input_array;",
		"@group(0) @binding(2) var<storage, read> radius_input: radius_input_array;",
		"@group(0) @binding(3) var<storage, read_write> dist_output: dist_output_array;",
		"@group(0) @binding(4) var<storage, read_write> hit_output: hit_output_array;",
		"@group(0) @binding(5) var<storage, read_write> hit_counter: atomic<u32>;",
	}, decls)

	require.Len(t, lib.HelperFunctions, 1)
	assert.Equal(t, `fn hit_output_push(value: Hit) {
    let index = atomicAdd(&hit_counter, 1u);
    if (index < HIT_OUTPUT_ARRAY_LENGTH) {
        hit_output[index] = value;
    }
}`, lib.HelperFunctions[0].Target)

	assert.Empty(t, lib.Uniforms)
	assert.Equal(t, shader.DefaultWorkgroupDecl(), lib.Workgroup)
}

func TestDerive_NoArrays(t *testing.T) {
	d := &shader.Descriptor{Name: "k", Entry: &shader.Component{Target: "fn main() {\n}"}}
	lib, err := Derive(d, Options{Params: shader.DefaultParams()})
	require.NoError(t, err)
	assert.Len(t, lib.PipelineConsts, 3)
	assert.Equal(t, "const WORKGROUP_SIZE_X : u32 = 64;", lib.PipelineConsts[0].Target)
	assert.Empty(t, lib.Bindings)
	assert.Empty(t, lib.HelperFunctions)
}

func TestDerive_BindingLimit(t *testing.T) {
	d := collisionDescriptor()

	_, err := Derive(d, Options{Params: shader.DefaultParams(), MaxBindings: 5})
	require.Error(t, err)
	assert.Equal(t, errors.KindBindingLimit, errors.KindOf(err))
	assert.ErrorContains(t, err, "needs 6 binding slots, limit is 5")

	_, err = Derive(d, Options{Params: shader.DefaultParams(), MaxBindings: 6})
	assert.NoError(t, err)

	_, err = Derive(d, Options{Params: shader.DefaultParams()})
	assert.NoError(t, err, "zero disables the limit")
}

func TestDerive_Collisions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *shader.Descriptor)
		clash  string
	}{
		{
			name: "names differing only in case",
			mutate: func(d *shader.Descriptor) {
				d.OutputArrays = append(d.OutputArrays, outputArray("HIT", false))
			},
			clash: "HIT_OUTPUT_ARRAY_LENGTH",
		},
		{
			name: "user const shadows length constant",
			mutate: func(d *shader.Descriptor) {
				d.StaticConsts = append(d.StaticConsts, shader.Component{Target: "const POSITION_INPUT_ARRAY_LENGTH : u32 = 3;"})
			},
			clash: "POSITION_INPUT_ARRAY_LENGTH",
		},
		{
			name: "helper function shadows uniform variable",
			mutate: func(d *shader.Descriptor) {
				d.HelperFunctions = append(d.HelperFunctions, shader.Component{Target: "fn uniforms() {\n}"})
			},
			clash: "uniforms",
		},
		{
			name: "helper type shadows push helper",
			mutate: func(d *shader.Descriptor) {
				d.HelperTypes = append(d.HelperTypes, shader.Component{Target: "struct hit_output_push { a : u32, }"})
			},
			clash: "hit_output_push",
		},
		{
			name: "user const shadows workgroup size",
			mutate: func(d *shader.Descriptor) {
				d.StaticConsts = append(d.StaticConsts, shader.Component{Target: "const WORKGROUP_SIZE_X : u32 = 3;"})
			},
			clash: "WORKGROUP_SIZE_X",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := collisionDescriptor()
			tt.mutate(d)
			_, err := Derive(d, Options{Params: shader.DefaultParams()})
			require.Error(t, err)
			assert.True(t, errors.IsNameCollision(err), "got %v", err)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.clash, e.Text)
		})
	}
}

func TestDeclName(t *testing.T) {
	tests := map[string]string{
		"struct TStruct { x : f32, }":       "TStruct",
		"alias Position = array<f32, 2>;":   "Position",
		"const MAX : u32 = 3;":              "MAX",
		"fn helper(a: f32) -> f32 {\n}":     "helper",
		"@compute @workgroup_size(1, 1, 1)": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, DeclName(in), in)
	}
}
