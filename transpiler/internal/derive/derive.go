// Package derive synthesizes the library portion of a kernel module: the
// pipeline constants, resource bindings, counter push helpers and the
// workgroup declaration. Everything is computed from the descriptor alone so
// a stored descriptor can be re-derived for new parameters.
package derive

import (
	"fmt"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

// DefaultMaxBindings is the WebGPU floor for storage buffers per shader
// stage.
const DefaultMaxBindings = 8

// Options controls derivation.
type Options struct {
	Params shader.Params
	// MaxBindings caps the binding count. Zero disables the check.
	MaxBindings int
	Group       uint32
}

// Derive builds the library portion for d.
func Derive(d *shader.Descriptor, opts Options) (*shader.LibraryPortion, error) {
	lib := &shader.LibraryPortion{
		PipelineConsts: pipelineConsts(d, opts.Params),
		Bindings:       bindings(d, opts.Group),
		Workgroup:      shader.DefaultWorkgroupDecl(),
	}
	for _, out := range d.OutputArrays {
		if out.HasCounter() {
			lib.HelperFunctions = append(lib.HelperFunctions, PushHelper(out))
		}
	}

	if err := CheckCollisions(d, lib); err != nil {
		return nil, err
	}
	if opts.MaxBindings > 0 && len(lib.Bindings) > opts.MaxBindings {
		return nil, errors.BindingLimit(len(lib.Bindings), opts.MaxBindings)
	}
	return lib, nil
}

func constDecl(name string, value uint32) shader.Component {
	return shader.Component{Target: fmt.Sprintf("const %s : u32 = %d;", name, value)}
}

// pipelineConsts emits array lengths (inputs, then outputs) followed by the
// workgroup size.
func pipelineConsts(d *shader.Descriptor, p shader.Params) []shader.Component {
	out := make([]shader.Component, 0, len(d.InputArrays)+len(d.OutputArrays)+3)
	for _, in := range d.InputArrays {
		out = append(out, constDecl(shader.LengthConst(in.ItemType, shader.Input), p.Length(in.ItemType.Name)))
	}
	for _, o := range d.OutputArrays {
		out = append(out, constDecl(shader.LengthConst(o.ItemType, shader.Output), p.Length(o.ItemType.Name)))
	}
	wg := p.IterationSpace.WorkgroupSize()
	return append(out,
		constDecl(shader.WorkgroupSizeX, wg.X),
		constDecl(shader.WorkgroupSizeY, wg.Y),
		constDecl(shader.WorkgroupSizeZ, wg.Z),
	)
}

// bindings assigns slots uniforms, inputs, outputs, counters, counting up
// from zero.
func bindings(d *shader.Descriptor, group uint32) []shader.Binding {
	var out []shader.Binding
	add := func(kind shader.BindingKind, name, typ, owner string) {
		out = append(out, shader.Binding{
			Kind:  kind,
			Group: group,
			Slot:  uint32(len(out)),
			Name:  name,
			Type:  typ,
			Owner: owner,
		})
	}
	for _, u := range d.Uniforms {
		add(shader.BindingUniform, shader.UniformVar(u.Type), u.Type.Name, u.Type.Name)
	}
	for _, in := range d.InputArrays {
		add(shader.BindingInput, shader.BufferVar(in.ItemType, shader.Input), shader.ArrayAlias(in.ItemType, shader.Input), in.ItemType.Name)
	}
	for _, o := range d.OutputArrays {
		add(shader.BindingOutput, shader.BufferVar(o.ItemType, shader.Output), shader.ArrayAlias(o.ItemType, shader.Output), o.ItemType.Name)
	}
	for _, o := range d.OutputArrays {
		if o.HasCounter() {
			add(shader.BindingCounter, o.CounterName, "atomic<u32>", o.ItemType.Name)
		}
	}
	return out
}

// PushHelper returns the append function of a counted output array: one
// atomic increment per write, dropping writes past the array length.
func PushHelper(o shader.OutputArray) shader.Component {
	t := o.ItemType
	return shader.Component{Target: fmt.Sprintf(`fn %s(value: %s) {
    let index = atomicAdd(&%s, 1u);
    if (index < %s) {
        %s[index] = value;
    }
}`,
		shader.PushHelper(t), t.Name,
		o.CounterName,
		shader.LengthConst(t, shader.Output),
		shader.BufferVar(t, shader.Output),
	)}
}
