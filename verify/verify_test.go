package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/errors"
)

const computeShader = `
const WORKGROUP_SIZE_X : u32 = 64;
const WORKGROUP_SIZE_Y : u32 = 1;
const WORKGROUP_SIZE_Z : u32 = 1;

@compute @workgroup_size(WORKGROUP_SIZE_X, WORKGROUP_SIZE_Y, WORKGROUP_SIZE_Z)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
}
`

func TestWGSL(t *testing.T) {
	require.NoError(t, WGSL(computeShader))
}

func TestWGSL_Rejected(t *testing.T) {
	err := WGSL("fn main( {\n}")
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidOutput, errors.KindOf(err))

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.PhaseVerify, e.Phase)
	assert.NotNil(t, e.Cause)
}

func TestWGSL_SyntaxOnly(t *testing.T) {
	// Parses although the loop compares i32 against u32.
	src := `
const N : u32 = 4;
alias value_input_array = array<f32, N>;
@group(0) @binding(0) var<storage, read> value_input: value_input_array;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    for (var i = 0; i < N; i += 1) {
    }
}
`
	assert.NoError(t, WGSL(src))
}

func TestCheck_Lower(t *testing.T) {
	src := `
@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
}
`
	assert.NoError(t, Check(src, LevelLower))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "parse", LevelParse.String())
	assert.Equal(t, "validate", LevelValidate.String())
	assert.Equal(t, "Level(9)", Level(9).String())
}
