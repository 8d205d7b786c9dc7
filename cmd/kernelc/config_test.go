package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

const sampleConfig = `
out = "gen"
package = "kernels"
verify = true
yaml = true
max_bindings = 6

[params]
default_length = 16

[params.iteration_space]
x = 100
y = 100
z = 1

[params.lengths]
Position = 100
CollisionResult = 4950
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernelc.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	fc, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "gen", fc.Out)
	assert.Equal(t, "kernels", fc.Package)
	assert.True(t, fc.Verify)
	assert.True(t, fc.YAML)
	assert.Equal(t, 6, fc.MaxBindings)
	assert.Equal(t, shader.IterationSpace{X: 100, Y: 100, Z: 1}, fc.Params.IterationSpace)
	assert.Equal(t, uint32(16), fc.Params.DefaultLength)
	assert.Equal(t, map[string]uint32{"Position": 100, "CollisionResult": 4950}, fc.Params.Lengths)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))

	_, err = loadConfig(writeConfig(t, "out = [unterminated"))
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
}

func TestLoadConfig_DefaultMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	fc, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, fileConfig{}, fc)
}

func TestBuildConfig(t *testing.T) {
	fc, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	t.Run("file only", func(t *testing.T) {
		cfg, out, yaml, err := buildConfig(fc, options{set: map[string]bool{}})
		require.NoError(t, err)
		assert.Equal(t, "gen", out)
		assert.True(t, yaml)
		assert.True(t, cfg.Verify)
		assert.Equal(t, "kernels", cfg.Package)
		assert.Equal(t, 6, cfg.MaxBindings)
		assert.Equal(t, uint32(100), cfg.Params.Length("Position"))
		assert.Equal(t, uint32(16), cfg.Params.Length("Other"))
	})

	t.Run("flags override", func(t *testing.T) {
		opts := options{
			x: 7, lengths: "Position=3", pkg: "other", verify: false, outDir: "elsewhere",
			set: map[string]bool{"x": true, "len": true, "pkg": true, "verify": true, "out": true},
		}
		cfg, out, _, err := buildConfig(fc, opts)
		require.NoError(t, err)
		assert.Equal(t, "elsewhere", out)
		assert.False(t, cfg.Verify)
		assert.Equal(t, "other", cfg.Package)
		assert.Equal(t, shader.IterationSpace{X: 7, Y: 100, Z: 1}, cfg.Params.IterationSpace)
		assert.Equal(t, uint32(3), cfg.Params.Length("Position"))
		assert.Equal(t, uint32(4950), cfg.Params.Length("CollisionResult"))
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, out, yaml, err := buildConfig(fileConfig{}, options{set: map[string]bool{}})
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.False(t, yaml)
		assert.Equal(t, shader.DefaultParams().IterationSpace, cfg.Params.IterationSpace)
		assert.Equal(t, 8, cfg.MaxBindings)
	})

	t.Run("zero dimension", func(t *testing.T) {
		_, _, _, err := buildConfig(fileConfig{}, options{z: 0, set: map[string]bool{"z": true}})
		require.Error(t, err)
		assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	})

	t.Run("axis out of range", func(t *testing.T) {
		_, _, _, err := buildConfig(fileConfig{}, options{y: 1 << 32, set: map[string]bool{"y": true}})
		require.Error(t, err)
		assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
		assert.ErrorContains(t, err, "-y 4294967296")

		cfg, _, _, err := buildConfig(fileConfig{}, options{y: math.MaxUint32, set: map[string]bool{"y": true}})
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), cfg.Params.IterationSpace.Y)
	})

	t.Run("bad length", func(t *testing.T) {
		_, _, _, err := buildConfig(fileConfig{}, options{lengths: "Position", set: map[string]bool{"len": true}})
		require.Error(t, err)
	})
}

func TestParseLengths(t *testing.T) {
	got, err := parseLengths("A=1, B = 20")
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"A": 1, "B": 20}, got)

	got, err = parseLengths("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseLengths("A=-1")
	assert.Error(t, err)
}
