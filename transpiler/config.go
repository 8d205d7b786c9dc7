package transpiler

import (
	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/syntax"
	"github.com/wippyai/kernelc/transpiler/internal/compose"
	"github.com/wippyai/kernelc/transpiler/internal/derive"
)

// Config configures a transpilation.
type Config struct {
	// Grammar selects the authoring grammar revision. Nil means
	// syntax.GrammarVersion.
	Grammar *semver.Version
	// Params values the pipeline constants.
	Params shader.Params
	// Package names the generated Go package. Empty derives it from the
	// module name.
	Package string
	// DescriptorFunc names the generated reconstruction routine.
	DescriptorFunc string
	// SourceName is the authored file name quoted in generated headers.
	SourceName string
	// MaxBindings caps the binding count; negative disables the check.
	MaxBindings int
	// Group is the bind group of every binding.
	Group uint32
	// Verify parses the composed shader with naga.
	Verify bool
}

// DefaultConfig returns the configuration used by kernelc.Compile.
func DefaultConfig() Config {
	return Config{
		Grammar:        syntax.GrammarVersion,
		Params:         shader.DefaultParams(),
		DescriptorFunc: compose.DefaultFunc,
		MaxBindings:    derive.DefaultMaxBindings,
	}
}
