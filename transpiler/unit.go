package transpiler

import (
	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/transpiler/internal/classify"
)

// Unit is the in-flight state of one transpilation. Each phase reads what
// earlier phases produced and fills in its own part.
type Unit struct {
	Source string

	File   *ast.File
	Module *classify.Module

	Descriptor *shader.Descriptor
	Library    *shader.LibraryPortion
	Host       *shader.HostModule

	// WGSL is the composed shader.
	WGSL string
	// GoSource is the generated Go file: host types plus the
	// reconstruction routine.
	GoSource []byte

	// Completed lists the phases that finished, in order.
	Completed []string
}

// Name returns the kernel module name once classification has run.
func (u *Unit) Name() string {
	if u.Module == nil {
		return ""
	}
	return u.Module.Name
}
