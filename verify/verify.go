// Package verify checks emitted WGSL with the naga shader compiler.
//
// WGSL, the check behind Config.Verify and the CLI -verify flag, is
// syntactic only: it catches malformed text, not type errors such as an
// operator applied to mismatched scalar types. The deeper levels of Check
// lower and validate the module, but the naga release in use cannot yet
// resolve module-scope alias declarations, so kernels with input or output
// arrays fail there with "unknown type" even when the shader is valid.
package verify

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/wippyai/kernelc/errors"
)

// Level selects how far the shader is taken through the compiler.
type Level int

const (
	// LevelParse only tokenizes and parses.
	LevelParse Level = iota
	// LevelLower also lowers to the typed intermediate representation.
	LevelLower
	// LevelValidate also runs IR validation.
	LevelValidate
)

func (l Level) String() string {
	switch l {
	case LevelParse:
		return "parse"
	case LevelLower:
		return "lower"
	case LevelValidate:
		return "validate"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// WGSL parses src. It is the check run by the transpiler when verification
// is enabled. A nil result does not mean the shader type-checks.
func WGSL(src string) error {
	return Check(src, LevelParse)
}

// Check runs src through the compiler up to level. Failures are reported as
// invalid_output errors of the verify phase.
func Check(src string, level Level) error {
	mod, err := naga.Parse(src)
	if err != nil {
		return errors.InvalidOutput(err)
	}
	if level < LevelLower {
		return nil
	}

	ir, err := naga.LowerWithSource(mod, src)
	if err != nil {
		return errors.InvalidOutput(err)
	}
	if level < LevelValidate {
		return nil
	}

	problems, err := naga.Validate(ir)
	if err != nil {
		return errors.InvalidOutput(err)
	}
	if len(problems) > 0 {
		return errors.New(errors.PhaseVerify, errors.KindInvalidOutput).
			Detail("%d validation errors, first: %s", len(problems), problems[0].Message).
			Cause(problems[0]).
			Build()
	}
	return nil
}
