// Package shader holds the data model shared by the transpiler phases and
// by the code that consumes their output: the descriptor of a kernel
// module's user declarations, the library portion derived from it, the
// parameters that value the pipeline constants and the host-usable module.
package shader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DeclKind tags a classified declaration.
type DeclKind uint8

const (
	DeclHelperType DeclKind = iota
	DeclUniform
	DeclInputArray
	DeclOutputArray
	DeclStaticConst
	DeclHelperFunction
	DeclEntry
)

var declKindNames = [...]string{
	DeclHelperType:     "helper_type",
	DeclUniform:        "uniform",
	DeclInputArray:     "input_array",
	DeclOutputArray:    "output_array",
	DeclStaticConst:    "static_const",
	DeclHelperFunction: "helper_function",
	DeclEntry:          "entry",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return fmt.Sprintf("DeclKind(%d)", uint8(k))
}

// Component pairs a declaration's authored text with its WGSL rendition.
// Derived declarations have an empty Source.
type Component struct {
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target"`
}

// Uniform is a uniform block type and its rewritten declaration.
type Uniform struct {
	Type TypeName  `yaml:"type"`
	Code Component `yaml:"code"`
}

// InputArray is an input-array item type and the dense array alias over it.
type InputArray struct {
	ItemType TypeName  `yaml:"item_type"`
	Item     Component `yaml:"item"`
	Array    Component `yaml:"array"`
}

// OutputArray is an output-array item type, its array alias and the
// optional atomic counter name.
type OutputArray struct {
	ItemType    TypeName  `yaml:"item_type"`
	Item        Component `yaml:"item"`
	Array       Component `yaml:"array"`
	CounterName string    `yaml:"counter_name,omitempty"`
}

// HasCounter reports whether the array owns an atomic counter.
func (a OutputArray) HasCounter() bool { return a.CounterName != "" }

// Descriptor enumerates every classified declaration of one kernel module.
// Order within each slice mirrors source order.
type Descriptor struct {
	Name            string        `yaml:"name"`
	StaticConsts    []Component   `yaml:"static_consts,omitempty"`
	HelperTypes     []Component   `yaml:"helper_types,omitempty"`
	Uniforms        []Uniform     `yaml:"uniforms,omitempty"`
	InputArrays     []InputArray  `yaml:"input_arrays,omitempty"`
	OutputArrays    []OutputArray `yaml:"output_arrays,omitempty"`
	HelperFunctions []Component   `yaml:"helper_functions,omitempty"`
	Entry           *Component    `yaml:"entry,omitempty"`
}

// Input returns the input array whose item type is named name.
func (d *Descriptor) Input(name string) (InputArray, bool) {
	for _, a := range d.InputArrays {
		if a.ItemType.Name == name {
			return a, true
		}
	}
	return InputArray{}, false
}

// Output returns the output array whose item type is named name.
func (d *Descriptor) Output(name string) (OutputArray, bool) {
	for _, a := range d.OutputArrays {
		if a.ItemType.Name == name {
			return a, true
		}
	}
	return OutputArray{}, false
}

// Uniform returns the uniform block named name.
func (d *Descriptor) Uniform(name string) (Uniform, bool) {
	for _, u := range d.Uniforms {
		if u.Type.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

// YAML renders the descriptor for tooling that does not link Go code.
func (d *Descriptor) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// ParseYAML reads a descriptor previously written by YAML.
func ParseYAML(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	return &d, nil
}
