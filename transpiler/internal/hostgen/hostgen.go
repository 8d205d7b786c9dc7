// Package hostgen builds the host-usable form of a kernel module: the
// cleaned authored text, WGSL memory layouts of every data type and Go
// declarations with matching byte images.
package hostgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/transpiler/internal/classify"
	"github.com/wippyai/kernelc/transpiler/internal/hostgen/layout"
	"github.com/wippyai/kernelc/transpiler/internal/rewrite"
)

// Options controls Go generation.
type Options struct {
	// Package is the Go package name of the generated file.
	Package string
	// Source names the authored file in the generated header.
	Source string
	Params shader.Params
	// Reserved lists Go identifiers the rest of the generated file
	// declares, such as the descriptor function.
	Reserved []string
}

// Generator resolves the data types of one classified module.
type Generator struct {
	source string
	mod    *classify.Module
	calc   *layout.Calculator

	resolved map[string]layout.Type
	active   map[string]bool
	sizes    map[string]uint32
}

func New(source string, mod *classify.Module) *Generator {
	return &Generator{
		source:   source,
		mod:      mod,
		calc:     layout.NewCalculator(),
		resolved: make(map[string]layout.Type),
		active:   make(map[string]bool),
		sizes:    make(map[string]uint32),
	}
}

// Build produces the complete host module.
func Build(source string, mod *classify.Module, opts Options) (*shader.HostModule, error) {
	g := New(source, mod)
	types, err := g.Layouts()
	if err != nil {
		return nil, err
	}
	if err := g.CheckGoNames(types, opts.Reserved...); err != nil {
		return nil, err
	}
	decls, err := g.GoDecls(types, opts.Params)
	if err != nil {
		return nil, err
	}
	src, err := FormatFile(opts.Package, opts.Source, nil, decls)
	if err != nil {
		return nil, err
	}
	return &shader.HostModule{
		Cleaned:  Clean(source, mod),
		Types:    types,
		GoDecls:  decls,
		GoSource: src,
	}, nil
}

func (g *Generator) path(names ...string) []string {
	return append([]string{g.mod.Name}, names...)
}

// hostKinds are the declarations whose values cross the host boundary.
var hostKinds = map[shader.DeclKind]bool{
	shader.DeclHelperType:  true,
	shader.DeclUniform:     true,
	shader.DeclInputArray:  true,
	shader.DeclOutputArray: true,
}

// Layouts computes the layout of every helper type, uniform and array item
// in source order.
func (g *Generator) Layouts() ([]shader.HostType, error) {
	var out []shader.HostType
	for _, d := range g.mod.Decls {
		if !hostKinds[d.Kind] {
			continue
		}
		t, err := g.resolveNamed(d.Name())
		if err != nil {
			return nil, err
		}

		ht := shader.HostType{Name: d.Name(), Kind: d.Kind}
		var info layout.Info
		if s, ok := t.(*layout.Struct); ok && d.Kind == shader.DeclUniform {
			if err := g.checkUniform(s); err != nil {
				return nil, err
			}
			info = g.calc.Uniform(s)
		} else {
			info = g.calc.Calculate(t)
		}
		ht.Size, ht.Align = info.Size, info.Align
		g.sizes[d.Name()] = info.Size

		if s, ok := t.(*layout.Struct); ok {
			for i, f := range s.Fields {
				fi := g.calc.Calculate(f.Type)
				ht.Fields = append(ht.Fields, shader.HostField{
					Name:     f.Name,
					GoName:   ExportName(f.Name),
					WGSLType: f.Type.WGSL(),
					GoType:   goType(f.Type),
					Offset:   info.FieldOffs[i],
					Size:     fi.Size,
					Align:    fi.Align,
				})
			}
		}
		out = append(out, ht)
	}
	return out, nil
}

func (g *Generator) checkUniform(s *layout.Struct) error {
	fields, reason := g.calc.UniformViolation(s)
	if reason == "" {
		return nil
	}
	var span ast.Span
	if n, ok := g.mod.Struct(s.Name); ok {
		for _, f := range n.Fields {
			if f.Name == fields[0] {
				span = f.Span
			}
		}
	}
	return errors.Definition(errors.PhaseClean, g.path(append([]string{s.Name}, fields...)...), span, "%s", reason)
}

func (g *Generator) resolveNamed(name string) (layout.Type, error) {
	if t, ok := g.resolved[name]; ok {
		return t, nil
	}
	decl, ok := g.mod.Find(name)
	if !ok {
		return nil, errors.Definition(errors.PhaseClean, g.path(name), ast.Span{}, "unknown type %s", name)
	}
	if g.active[name] {
		return nil, errors.Definition(errors.PhaseClean, g.path(name), decl.Item.Base().NameSpan,
			"%s contains itself", name)
	}
	g.active[name] = true
	defer delete(g.active, name)

	switch n := decl.Item.(type) {
	case *ast.Struct:
		s := &layout.Struct{Name: n.Name}
		for _, f := range n.Fields {
			ft, err := g.resolve(f.Type, g.path(n.Name, f.Name))
			if err != nil {
				return nil, err
			}
			s.Fields = append(s.Fields, layout.Field{Name: f.Name, Type: ft})
		}
		g.resolved[name] = s
		return s, nil
	case *ast.Alias:
		t, err := g.resolve(n.Type, g.path(n.Name))
		if err != nil {
			return nil, err
		}
		g.resolved[name] = t
		return t, nil
	}
	return nil, errors.Definition(errors.PhaseClean, g.path(name), decl.Item.Pos(), "%s is not a type", name)
}

func (g *Generator) resolve(t ast.Type, path []string) (layout.Type, error) {
	switch n := t.(type) {
	case *ast.PathType:
		if g.mod.IsType(n.Name) {
			return g.resolveNamed(n.Name)
		}
		w, ok := rewrite.MapType(n.Name)
		if !ok {
			return nil, errors.TypeMapping(path, n.Span, n.Name)
		}
		return parseWGSL(w), nil
	case *ast.ArrayType:
		elem, err := g.resolve(n.Elem, path)
		if err != nil {
			return nil, err
		}
		length, err := g.arrayLen(n.Len, path)
		if err != nil {
			return nil, err
		}
		return layout.Array{Elem: elem, Len: length}, nil
	}
	return nil, errors.Unsupported(errors.PhaseClean, path, t.Pos(), "host type "+t.Kind().String())
}

// arrayLen evaluates an integer literal or a static const naming one.
func (g *Generator) arrayLen(e ast.Expr, path []string) (uint32, error) {
	switch n := e.(type) {
	case *ast.Lit:
		if n.LitKind == ast.LitInt {
			v, err := strconv.ParseUint(strings.ReplaceAll(n.Value, "_", ""), 0, 32)
			if err == nil {
				return uint32(v), nil
			}
		}
	case *ast.Path:
		if name, ok := n.Ident(); ok {
			if d, found := g.mod.Find(name); found && d.Kind == shader.DeclStaticConst {
				return g.arrayLen(d.Item.(*ast.Const).Value, path)
			}
		}
	case *ast.Paren:
		return g.arrayLen(n.X, path)
	}
	return 0, errors.Unsupported(errors.PhaseClean, path, e.Pos(), "array length must be an integer literal or const")
}

// parseWGSL turns a type-table spelling back into its layout type.
func parseWGSL(w string) layout.Type {
	elem := func() layout.Scalar {
		i, j := strings.IndexByte(w, '<'), strings.IndexByte(w, '>')
		return layout.Scalar{Name: w[i+1 : j]}
	}
	switch {
	case strings.HasPrefix(w, "vec"):
		return layout.Vector{Elem: elem(), N: uint32(w[3] - '0')}
	case strings.HasPrefix(w, "mat"):
		return layout.Matrix{Elem: elem(), Cols: uint32(w[3] - '0'), Rows: uint32(w[5] - '0')}
	}
	return layout.Scalar{Name: w}
}

var goScalars = map[string]string{
	"f32":  "float32",
	"i32":  "int32",
	"u32":  "uint32",
	"f16":  "uint16",
	"bool": "uint32",
}

// goType spells t as a Go type with the same size. vec3 columns and vec3
// array elements are widened to four lanes to cover the stride.
func goType(t layout.Type) string {
	switch n := t.(type) {
	case layout.Scalar:
		return goScalars[n.Name]
	case layout.Vector:
		return fmt.Sprintf("[%d]%s", n.N, goScalars[n.Elem.Name])
	case layout.Matrix:
		rows := n.Rows
		if rows == 3 {
			rows = 4
		}
		return fmt.Sprintf("[%d][%d]%s", n.Cols, rows, goScalars[n.Elem.Name])
	case layout.Array:
		elem := goType(n.Elem)
		if v, ok := n.Elem.(layout.Vector); ok && v.N == 3 {
			elem = fmt.Sprintf("[4]%s", goScalars[v.Elem.Name])
		}
		return fmt.Sprintf("[%d]%s", n.Len, elem)
	case *layout.Struct:
		return ExportName(n.Name)
	}
	return "struct{}"
}

// ExportName converts a snake_case or lowercase identifier into an exported
// Go name. Names already starting with an upper-case letter are kept.
func ExportName(name string) string {
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return name
	}
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		b.WriteString(title.String(part))
	}
	out := b.String()
	if out == "" || out[0] < 'A' || out[0] > 'Z' {
		out = "X" + out
	}
	return out
}

// CheckGoNames fails with a name_collision error when two declarations of
// the generated Go file would share an identifier: host types after
// ExportName, literal consts, array length constants and reserved names.
// Field names are checked per struct.
func (g *Generator) CheckGoNames(types []shader.HostType, reserved ...string) error {
	seen := make(map[string]string)
	claim := func(name, owner string) error {
		if prev, ok := seen[name]; ok {
			return errors.New(errors.PhaseClean, errors.KindNameCollision).
				Path(g.path()...).
				Text(name).
				Detail("Go identifier %s declared by both %s and %s", name, prev, owner).
				Build()
		}
		seen[name] = owner
		return nil
	}

	for _, r := range reserved {
		if err := claim(r, "the generated file"); err != nil {
			return err
		}
	}
	for _, d := range g.mod.Of(shader.DeclStaticConst) {
		c := d.Item.(*ast.Const)
		if _, ok := g.goConst(c); !ok {
			continue
		}
		if err := claim(c.Name, "const "+c.Name); err != nil {
			return err
		}
	}
	for _, d := range g.mod.Of(shader.DeclInputArray) {
		name := shader.LengthConst(shader.NewTypeName(d.Name()), shader.Input)
		if err := claim(name, "length of input array "+d.Name()); err != nil {
			return err
		}
	}
	for _, d := range g.mod.Of(shader.DeclOutputArray) {
		name := shader.LengthConst(shader.NewTypeName(d.Name()), shader.Output)
		if err := claim(name, "length of output array "+d.Name()); err != nil {
			return err
		}
	}

	for _, ht := range types {
		if err := claim(ExportName(ht.Name), ht.Kind.String()+" "+ht.Name); err != nil {
			return err
		}
		fields := make(map[string]string)
		for _, f := range ht.Fields {
			if prev, ok := fields[f.GoName]; ok {
				return errors.New(errors.PhaseClean, errors.KindNameCollision).
					Path(g.path(ht.Name, f.Name)...).
					Text(f.GoName).
					Detail("Go field %s of %s declared by both %s and %s", f.GoName, ExportName(ht.Name), prev, f.Name).
					Build()
			}
			fields[f.GoName] = f.Name
		}
	}
	return nil
}

// GoDecls renders Go declarations for the host types, the literal static
// consts and the array length constants valued from params.
func (g *Generator) GoDecls(types []shader.HostType, params shader.Params) (string, error) {
	var b strings.Builder

	var consts []string
	for _, d := range g.mod.Of(shader.DeclStaticConst) {
		if line, ok := g.goConst(d.Item.(*ast.Const)); ok {
			consts = append(consts, line)
		}
	}
	for _, d := range g.mod.Of(shader.DeclInputArray) {
		tn := shader.NewTypeName(d.Name())
		consts = append(consts, fmt.Sprintf("%s = %d", shader.LengthConst(tn, shader.Input), params.Length(tn.Name)))
	}
	for _, d := range g.mod.Of(shader.DeclOutputArray) {
		tn := shader.NewTypeName(d.Name())
		consts = append(consts, fmt.Sprintf("%s = %d", shader.LengthConst(tn, shader.Output), params.Length(tn.Name)))
	}
	if len(consts) > 0 {
		b.WriteString("const (\n")
		for _, c := range consts {
			b.WriteString("\t" + c + "\n")
		}
		b.WriteString(")\n\n")
	}

	for _, ht := range types {
		t := g.resolved[ht.Name]
		goName := ExportName(ht.Name)
		fmt.Fprintf(&b, "// %s mirrors the WGSL %s %s (size %d, align %d).\n", goName, ht.Kind, ht.Name, ht.Size, ht.Align)

		s, isStruct := t.(*layout.Struct)
		if !isStruct {
			fmt.Fprintf(&b, "type %s %s\n\n", goName, goType(t))
			continue
		}

		fmt.Fprintf(&b, "type %s struct {\n", goName)
		offset := uint32(0)
		for i, f := range ht.Fields {
			if f.Offset > offset {
				fmt.Fprintf(&b, "\t_ [%d]byte\n", f.Offset-offset)
			}
			fmt.Fprintf(&b, "\t%s %s // %s\n", f.GoName, f.GoType, s.Fields[i].Type.WGSL())
			offset = f.Offset + g.goSize(s.Fields[i].Type)
		}
		if ht.Size > offset {
			fmt.Fprintf(&b, "\t_ [%d]byte\n", ht.Size-offset)
		}
		b.WriteString("}\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// goSize is the size of goType(t), which differs from the WGSL size only
// where goType widens vec3 lanes or a struct was emitted as a uniform.
func (g *Generator) goSize(t layout.Type) uint32 {
	if s, ok := t.(*layout.Struct); ok {
		if n, emitted := g.sizes[s.Name]; emitted {
			return n
		}
	}
	info := g.calc.Calculate(t)
	if a, ok := t.(layout.Array); ok {
		return a.Len * info.Stride
	}
	return info.Size
}

func (g *Generator) goConst(c *ast.Const) (string, bool) {
	pt, ok := c.Type.(*ast.PathType)
	if !ok {
		return "", false
	}
	w, ok := rewrite.MapType(pt.Name)
	if !ok || w == "f16" {
		return "", false
	}
	value, neg := c.Value, ""
	if u, ok := value.(*ast.Unary); ok && u.Op == "-" {
		value, neg = u.X, "-"
	}
	lit, ok := value.(*ast.Lit)
	if !ok {
		return "", false
	}
	v := lit.Value
	switch {
	case w == "bool":
		if lit.LitKind != ast.LitBool {
			return "", false
		}
		return fmt.Sprintf("%s = %s", c.Name, v), true
	case lit.LitKind == ast.LitBool:
		return "", false
	case w == "f32" && !strings.ContainsAny(v, ".eExX"):
		v += ".0"
	}
	return fmt.Sprintf("%s %s = %s%s", c.Name, goScalars[w], neg, v), true
}

// FormatFile assembles a generated Go file and formats it. imports lists
// import paths; decls is the body.
func FormatFile(pkg, source string, importPaths []string, decls string) ([]byte, error) {
	var b bytes.Buffer
	if source != "" {
		fmt.Fprintf(&b, "// Code generated by kernelc from %s. DO NOT EDIT.\n\n", source)
	} else {
		b.WriteString("// Code generated by kernelc. DO NOT EDIT.\n\n")
	}
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	switch {
	case len(importPaths) == 1:
		fmt.Fprintf(&b, "import %q\n\n", importPaths[0])
	case len(importPaths) > 1:
		b.WriteString("import (\n")
		for _, p := range importPaths {
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		b.WriteString(")\n\n")
	}
	b.WriteString(decls)

	out, err := imports.Process(pkg+"_gen.go", b.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseClean, errors.KindInvalidOutput, err, "format generated Go")
	}
	return out, nil
}

// PackageName derives a Go package name from a kernel module name.
func PackageName(module string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(module) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "kernel"
	}
	return b.String()
}
