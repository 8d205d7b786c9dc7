// Package compose assembles the two artifacts of a kernel module: the WGSL
// shader, concatenated in a fixed section order, and the Go reconstruction
// routine returning the module's descriptor.
package compose

import (
	"strings"

	"github.com/wippyai/kernelc/shader"
)

// Section identifies one slot of the shader layout.
type Section int

const (
	SectionStaticConsts Section = iota
	SectionHelperTypes
	SectionPipelineConsts
	SectionUniforms
	SectionLibraryUniforms
	SectionInputArrays
	SectionOutputArrays
	SectionBindings
	SectionHelperFunctions
	SectionLibraryFunctions
	SectionWorkgroup
	SectionEntry
)

var sectionNames = [...]string{
	SectionStaticConsts:     "static consts",
	SectionHelperTypes:      "helper types",
	SectionPipelineConsts:   "pipeline consts",
	SectionUniforms:         "uniforms",
	SectionLibraryUniforms:  "library uniforms",
	SectionInputArrays:      "input arrays",
	SectionOutputArrays:     "output arrays",
	SectionBindings:         "bindings",
	SectionHelperFunctions:  "helper functions",
	SectionLibraryFunctions: "library functions",
	SectionWorkgroup:        "workgroup",
	SectionEntry:            "entry",
}

func (s Section) String() string {
	if s >= 0 && int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown"
}

// Sections returns the shader text of every section in emission order.
// Empty sections are kept so callers can index by Section.
func Sections(d *shader.Descriptor, lib *shader.LibraryPortion) [][]string {
	out := make([][]string, len(sectionNames))

	targets := func(cs []shader.Component) []string {
		var ts []string
		for _, c := range cs {
			ts = append(ts, c.Target)
		}
		return ts
	}

	out[SectionStaticConsts] = targets(d.StaticConsts)
	out[SectionHelperTypes] = targets(d.HelperTypes)
	out[SectionPipelineConsts] = targets(lib.PipelineConsts)
	for _, u := range d.Uniforms {
		out[SectionUniforms] = append(out[SectionUniforms], u.Code.Target)
	}
	out[SectionLibraryUniforms] = targets(lib.Uniforms)
	for _, in := range d.InputArrays {
		out[SectionInputArrays] = append(out[SectionInputArrays], in.Item.Target, in.Array.Target)
	}
	for _, o := range d.OutputArrays {
		out[SectionOutputArrays] = append(out[SectionOutputArrays], o.Item.Target, o.Array.Target)
	}
	for _, b := range lib.Bindings {
		out[SectionBindings] = append(out[SectionBindings], b.String())
	}
	out[SectionHelperFunctions] = targets(d.HelperFunctions)
	out[SectionLibraryFunctions] = targets(lib.HelperFunctions)
	out[SectionWorkgroup] = []string{lib.Workgroup.String()}
	if d.Entry != nil {
		out[SectionEntry] = []string{d.Entry.Target}
	}
	return out
}

// WGSL concatenates the sections into one shader source. Sections are
// separated by a blank line; the workgroup attribute sits directly on the
// line before the entry function.
func WGSL(d *shader.Descriptor, lib *shader.LibraryPortion) string {
	sections := Sections(d, lib)

	var b strings.Builder
	for s, lines := range sections {
		if len(lines) == 0 {
			continue
		}
		if b.Len() > 0 && Section(s) != SectionEntry {
			b.WriteString("\n")
		}
		sep := "\n"
		if Section(s) == SectionHelperFunctions || Section(s) == SectionLibraryFunctions {
			sep = "\n\n"
		}
		b.WriteString(strings.Join(lines, sep))
		b.WriteString("\n")
	}
	return b.String()
}
