package kernelc

import (
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/transpiler"
)

// Config configures compilation. See transpiler.Config.
type Config = transpiler.Config

// DefaultConfig returns the default compilation settings.
func DefaultConfig() Config {
	return transpiler.DefaultConfig()
}

// Result holds the artifacts of one compiled kernel module.
type Result struct {
	// WGSL is the complete shader source.
	WGSL string
	// Descriptor lists every authored declaration with its WGSL rewrite.
	Descriptor *shader.Descriptor
	// Library holds the derived declarations and binding slots.
	Library *shader.LibraryPortion
	// Host is the host-usable module: cleaned text and memory layouts.
	Host *shader.HostModule
	// GoSource is the generated Go file with host types and the
	// descriptor routine.
	GoSource []byte
}

// Compile transpiles src with DefaultConfig.
func Compile(src string) (*Result, error) {
	return CompileWithConfig(src, DefaultConfig())
}

// CompileWithConfig transpiles src with cfg.
func CompileWithConfig(src string, cfg Config) (*Result, error) {
	u, err := transpiler.New(cfg).Run(src)
	if err != nil {
		return nil, err
	}
	return &Result{
		WGSL:       u.WGSL,
		Descriptor: u.Descriptor,
		Library:    u.Library,
		Host:       u.Host,
		GoSource:   u.GoSource,
	}, nil
}

// Source is one named kernel file for CompileAll.
type Source struct {
	Name string
	Text string
}

// Outcome is the result of one CompileAll input. Exactly one of Result and
// Err is set.
type Outcome struct {
	Name   string
	Result *Result
	Err    error
}

// CompileAll transpiles every source independently. A failure in one source
// does not affect the others.
func CompileAll(sources []Source, cfg Config) []Outcome {
	out := make([]Outcome, len(sources))
	for i, s := range sources {
		c := cfg
		c.SourceName = s.Name
		res, err := CompileWithConfig(s.Text, c)
		out[i] = Outcome{Name: s.Name, Result: res, Err: err}
	}
	return out
}

// Recompose re-derives the library portion of a stored descriptor for new
// parameters and composes the shader without re-parsing. Host and
// GoSource are left empty.
func Recompose(d *shader.Descriptor, params shader.Params) (*Result, error) {
	cfg := DefaultConfig()
	cfg.Params = params
	lib, wgsl, err := transpiler.New(cfg).Recompose(d)
	if err != nil {
		return nil, err
	}
	return &Result{WGSL: wgsl, Descriptor: d, Library: lib}, nil
}
