package main

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/kernelc"
	"github.com/wippyai/kernelc/shader"
)

const kernel = `#[wgsl_shader_module]
pub mod demo {
    #[wgsl_input_array]
    type Value = f32;
    #[wgsl_output_vec]
    struct Big { index: u32 }
    fn main(global_id: WgslGlobalId) {
        let i = global_id.x;
        if WgslVecInput::vec_val::<Value>(i) > 1.0 {
            WgslOutput::push::<Big>(Big { index: i });
        }
    }
}
`

const badKernel = "#[wgsl_shader_module]\nmod bad {\n    struct A { x: f32 }\n}\n"

func TestFormatError(t *testing.T) {
	_, err := kernelc.Compile(badKernel)
	require.Error(t, err)
	msg := formatError(kernelc.Source{Name: "bad.rs", Text: badKernel}, err, false)
	assert.Contains(t, msg, err.Error())
	assert.NotContains(t, msg, "\x1b[")
}

func TestWriteArtifacts(t *testing.T) {
	res, err := kernelc.Compile(kernel)
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := writeArtifacts(kernelc.Outcome{Name: "demo.rs", Result: res}, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "demo.wgsl"),
		filepath.Join(dir, "demo_gen.go"),
		filepath.Join(dir, "demo.yaml"),
	}, written)

	wgsl, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, res.WGSL, string(wgsl))

	yml, err := os.ReadFile(written[2])
	require.NoError(t, err)
	back, err := shader.ParseYAML(yml)
	require.NoError(t, err)
	assert.Equal(t, res.Descriptor, back)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "demo.rs")
	require.NoError(t, os.WriteFile(src, []byte(kernel), 0o644))
	bad := filepath.Join(dir, "bad.rs")
	require.NoError(t, os.WriteFile(bad, []byte(badKernel), 0o644))

	out := filepath.Join(dir, "gen")
	opts := options{
		inputs:     []string{bad, src},
		outDir:     out,
		configPath: writeConfig(t, "yaml = true\n"),
		set:        map[string]bool{"out": true},
	}
	err := run(opts, zap.NewNop())
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(out, "demo.wgsl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "demo_gen.go"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "demo.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "bad.wgsl"))
	assert.True(t, os.IsNotExist(err))
}

func TestInspectModel(t *testing.T) {
	res, err := kernelc.Compile(kernel)
	require.NoError(t, err)
	_, badErr := kernelc.Compile(badKernel)
	require.Error(t, badErr)

	sources := []kernelc.Source{{Name: "demo.rs", Text: kernel}, {Name: "bad.rs", Text: badKernel}}
	m := newInspectModel(sources, []kernelc.Outcome{
		{Name: "demo.rs", Result: res},
		{Name: "bad.rs", Err: badErr},
	})
	require.NotEmpty(t, m.items)
	assert.Equal(t, "shader", m.items[0].kind)
	assert.True(t, m.items[len(m.items)-1].failed)
	assert.Contains(t, m.View(), "kernelc inspector")

	key := func(s string) tea.KeyMsg {
		switch s {
		case "enter":
			return tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			return tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			return tea.KeyMsg{Type: tea.KeyDown}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	m.Update(key("down"))
	assert.Equal(t, 1, m.selected)
	m.Update(key("enter"))
	assert.Equal(t, stateDetail, m.state)
	assert.Contains(t, m.View(), "bindings")
	m.Update(key("esc"))
	assert.Equal(t, stateList, m.state)

	m.Update(key("/"))
	assert.Equal(t, stateFilter, m.state)
	for _, r := range "entry" {
		m.Update(key(string(r)))
	}
	m.Update(key("enter"))
	assert.Equal(t, stateList, m.state)
	require.Len(t, m.visible, 1)
	assert.Equal(t, shader.DeclEntry.String(), m.items[m.visible[0]].kind)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
