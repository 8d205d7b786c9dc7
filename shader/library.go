package shader

import "fmt"

// BindingKind is the category of a resource binding. Slots are assigned in
// this order.
type BindingKind uint8

const (
	BindingUniform BindingKind = iota
	BindingInput
	BindingOutput
	BindingCounter
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingInput:
		return "input"
	case BindingOutput:
		return "output"
	case BindingCounter:
		return "counter"
	}
	return fmt.Sprintf("BindingKind(%d)", uint8(k))
}

// Binding is one `@group(g) @binding(n) var<...>` declaration.
type Binding struct {
	Kind  BindingKind `yaml:"kind"`
	Group uint32      `yaml:"group"`
	Slot  uint32      `yaml:"slot"`
	Name  string      `yaml:"name"`
	Type  string      `yaml:"type"`
	// Owner is the authored type the binding serves.
	Owner string `yaml:"owner"`
}

func (b Binding) addressSpace() string {
	switch b.Kind {
	case BindingUniform:
		return "uniform"
	case BindingInput:
		return "storage, read"
	default:
		return "storage, read_write"
	}
}

// String renders the WGSL declaration.
func (b Binding) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d) var<%s> %s: %s;", b.Group, b.Slot, b.addressSpace(), b.Name, b.Type)
}

// WorkgroupDecl is the attribute line placed right before the entry
// function.
type WorkgroupDecl struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
	Z string `yaml:"z"`
}

// DefaultWorkgroupDecl references the three workgroup size constants.
func DefaultWorkgroupDecl() WorkgroupDecl {
	return WorkgroupDecl{X: WorkgroupSizeX, Y: WorkgroupSizeY, Z: WorkgroupSizeZ}
}

func (w WorkgroupDecl) String() string {
	return fmt.Sprintf("@compute @workgroup_size(%s, %s, %s)", w.X, w.Y, w.Z)
}

// LibraryPortion holds declarations the transpiler injects and the author
// never writes.
type LibraryPortion struct {
	PipelineConsts  []Component   `yaml:"pipeline_consts"`
	Uniforms        []Component   `yaml:"uniforms,omitempty"`
	Bindings        []Binding     `yaml:"bindings"`
	HelperFunctions []Component   `yaml:"helper_functions,omitempty"`
	Workgroup       WorkgroupDecl `yaml:"workgroup"`
}

// Binding returns the binding with the given variable name.
func (l *LibraryPortion) Binding(name string) (Binding, bool) {
	for _, b := range l.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}
