package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/transpiler/internal/hostgen"
)

// ShaderImport is the import path of the descriptor model.
const ShaderImport = "github.com/wippyai/kernelc/shader"

// ShaderPackage is the identifier the generated file imports ShaderImport as.
const ShaderPackage = "shader"

// DefaultFunc is the name of the generated reconstruction routine.
const DefaultFunc = "Descriptor"

// Routine renders `func <name>() *shader.Descriptor` returning d as a
// literal value. Only keyed composite literals, strings and &T{...} appear,
// which shader.ReadGenerated evaluates back.
func Routine(d *shader.Descriptor, name string) string {
	w := &writer{}
	w.line("// %s returns the descriptor of kernel module %s.", name, d.Name)
	w.line("func %s() *shader.Descriptor {", name)
	w.push()
	w.line("return &shader.Descriptor{")
	w.push()

	w.line("Name: %s,", quote(d.Name))
	w.components("StaticConsts", d.StaticConsts)
	w.components("HelperTypes", d.HelperTypes)

	if len(d.Uniforms) > 0 {
		w.line("Uniforms: []shader.Uniform{")
		w.push()
		for _, u := range d.Uniforms {
			w.line("{")
			w.push()
			w.typeName("Type", u.Type)
			w.component("Code", u.Code)
			w.pop()
			w.line("},")
		}
		w.pop()
		w.line("},")
	}

	if len(d.InputArrays) > 0 {
		w.line("InputArrays: []shader.InputArray{")
		w.push()
		for _, in := range d.InputArrays {
			w.line("{")
			w.push()
			w.typeName("ItemType", in.ItemType)
			w.component("Item", in.Item)
			w.component("Array", in.Array)
			w.pop()
			w.line("},")
		}
		w.pop()
		w.line("},")
	}

	if len(d.OutputArrays) > 0 {
		w.line("OutputArrays: []shader.OutputArray{")
		w.push()
		for _, o := range d.OutputArrays {
			w.line("{")
			w.push()
			w.typeName("ItemType", o.ItemType)
			w.component("Item", o.Item)
			w.component("Array", o.Array)
			if o.CounterName != "" {
				w.line("CounterName: %s,", quote(o.CounterName))
			}
			w.pop()
			w.line("},")
		}
		w.pop()
		w.line("},")
	}

	w.components("HelperFunctions", d.HelperFunctions)
	if d.Entry != nil {
		w.line("Entry: &shader.Component%s,", componentLit(*d.Entry))
	}

	w.pop()
	w.line("}")
	w.pop()
	w.line("}")
	return w.String()
}

// GoFile renders the complete generated Go file: host declarations followed
// by the reconstruction routine.
func GoFile(pkg, source string, hostDecls string, d *shader.Descriptor, name string) ([]byte, error) {
	body := Routine(d, name)
	if hostDecls != "" {
		body = hostDecls + "\n" + body
	}
	return hostgen.FormatFile(pkg, source, []string{ShaderImport}, body)
}

type writer struct {
	b      strings.Builder
	indent int
}

func (w *writer) line(format string, args ...any) {
	w.b.WriteString(strings.Repeat("\t", w.indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) push() { w.indent++ }
func (w *writer) pop()  { w.indent-- }

func (w *writer) String() string { return w.b.String() }

func (w *writer) components(field string, cs []shader.Component) {
	if len(cs) == 0 {
		return
	}
	w.line("%s: []shader.Component{", field)
	w.push()
	for _, c := range cs {
		w.line("%s,", componentLit(c))
	}
	w.pop()
	w.line("},")
}

func (w *writer) component(field string, c shader.Component) {
	w.line("%s: shader.Component%s,", field, componentLit(c))
}

func (w *writer) typeName(field string, t shader.TypeName) {
	w.line("%s: shader.TypeName{Name: %s, Upper: %s, Lower: %s},",
		field, quote(t.Name), quote(t.Upper), quote(t.Lower))
}

func componentLit(c shader.Component) string {
	if c.Source == "" {
		return fmt.Sprintf("{Target: %s}", quote(c.Target))
	}
	return fmt.Sprintf("{Source: %s, Target: %s}", quote(c.Source), quote(c.Target))
}

// quote prefers a raw string for multi-line text.
func quote(s string) string {
	if strings.Contains(s, "\n") && !strings.ContainsAny(s, "`\r") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}
