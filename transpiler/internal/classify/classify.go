// Package classify tags every top-level declaration of a kernel module and
// enforces the entry-function contract.
package classify

import (
	"strings"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

// Marker attribute names.
const (
	MarkerModule      = "wgsl_shader_module"
	MarkerConfig      = "wgsl_config"
	MarkerOutputArray = "wgsl_output_array"
	MarkerOutputVec   = "wgsl_output_vec"
	MarkerInputArray  = "wgsl_input_array"

	markerPrefix = "wgsl_"
	counterArg   = "counter"
)

// EntryName is the name of the kernel entry function.
const EntryName = "main"

// Decl is one classified top-level declaration.
type Decl struct {
	Item ast.Item
	Kind shader.DeclKind
	// Counter is set for output arrays that own an atomic counter.
	Counter bool
}

// Name returns the declared identifier.
func (d Decl) Name() string { return d.Item.Base().Name }

// Module is a classified kernel module. Decls keeps source order.
type Module struct {
	Node  *ast.Module
	Name  string
	Decls []Decl
	Entry *ast.Func

	types   map[string]ast.Item
	structs map[string]*ast.Struct
}

// Of returns the declarations of kind k in source order.
func (m *Module) Of(k shader.DeclKind) []Decl {
	var out []Decl
	for _, d := range m.Decls {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Find returns the declaration named name.
func (m *Module) Find(name string) (Decl, bool) {
	for _, d := range m.Decls {
		if d.Name() == name {
			return d, true
		}
	}
	return Decl{}, false
}

// IsType reports whether name is a struct or type alias declared in the
// module.
func (m *Module) IsType(name string) bool {
	_, ok := m.types[name]
	return ok
}

// TypeNames returns every user-declared type name in source order.
func (m *Module) TypeNames() []string {
	var out []string
	for _, d := range m.Decls {
		switch d.Item.(type) {
		case *ast.Struct, *ast.Alias:
			out = append(out, d.Name())
		}
	}
	return out
}

// Struct returns the struct declaration named name.
func (m *Module) Struct(name string) (*ast.Struct, bool) {
	s, ok := m.structs[name]
	return s, ok
}

// Select returns the single module of file marked as a shader module.
// Unmarked modules are ignored.
func Select(file *ast.File) (*ast.Module, error) {
	var found []*ast.Module
	for _, m := range file.Modules {
		if m.HasAttr(MarkerModule) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, errors.Definition(errors.PhaseClassify, nil, ast.Span{},
			"no module marked #[%s]", MarkerModule)
	case 1:
		return found[0], nil
	}
	return nil, errors.Definition(errors.PhaseClassify, []string{found[1].Name}, found[1].Span,
		"more than one module marked #[%s]", MarkerModule)
}

func isEntryFunc(it ast.Item) bool {
	fn, ok := it.(*ast.Func)
	return ok && fn.Name == EntryName
}

// Classify tags every item of mod. It never modifies the tree.
func Classify(mod *ast.Module) (*Module, error) {
	if !mod.HasAttr(MarkerModule) {
		return nil, errors.Definition(errors.PhaseClassify, []string{mod.Name}, mod.Span,
			"module is not marked #[%s]", MarkerModule)
	}

	m := &Module{
		Node:    mod,
		Name:    mod.Name,
		types:   make(map[string]ast.Item),
		structs: make(map[string]*ast.Struct),
	}
	seen := make(map[string]ast.Item)

	for _, it := range mod.Items {
		if _, ok := it.(*ast.Use); ok {
			continue
		}
		base := it.Base()
		// Repeated entry functions are left to Validate.
		if prev, dup := seen[base.Name]; dup && !(isEntryFunc(prev) && isEntryFunc(it)) {
			return nil, errors.Definition(errors.PhaseClassify, []string{mod.Name, base.Name}, base.NameSpan,
				"%s is declared twice (first at %d:%d)", base.Name, prev.Pos().Line, prev.Pos().Column)
		}
		seen[base.Name] = it

		d, err := classifyItem(mod.Name, it)
		if err != nil {
			return nil, err
		}
		m.Decls = append(m.Decls, d)

		switch n := it.(type) {
		case *ast.Struct:
			m.types[n.Name] = n
			m.structs[n.Name] = n
		case *ast.Alias:
			m.types[n.Name] = n
		}
	}
	return m, nil
}

func classifyItem(module string, it ast.Item) (Decl, error) {
	base := it.Base()
	path := []string{module, base.Name}

	marker, err := singleMarker(path, base)
	if err != nil {
		return Decl{}, err
	}

	wrongKind := func(what string) error {
		return errors.Definition(errors.PhaseClassify, path, marker.Span,
			"#[%s] cannot be applied to %s", marker.Name, what)
	}
	noArgs := func() error {
		if len(marker.Args) > 0 {
			return errors.Definition(errors.PhaseClassify, path, marker.Span,
				"#[%s] takes no arguments", marker.Name)
		}
		return nil
	}

	switch n := it.(type) {
	case *ast.Struct:
		switch marker.Name {
		case "":
			return Decl{Item: it, Kind: shader.DeclHelperType}, nil
		case MarkerConfig:
			return Decl{Item: it, Kind: shader.DeclUniform}, noArgs()
		case MarkerInputArray:
			return Decl{Item: it, Kind: shader.DeclInputArray}, noArgs()
		case MarkerOutputVec:
			return Decl{Item: it, Kind: shader.DeclOutputArray, Counter: true}, noArgs()
		case MarkerOutputArray:
			switch {
			case len(marker.Args) == 0:
				return Decl{Item: it, Kind: shader.DeclOutputArray}, nil
			case len(marker.Args) == 1 && marker.Args[0] == counterArg:
				return Decl{Item: it, Kind: shader.DeclOutputArray, Counter: true}, nil
			}
			return Decl{}, errors.New(errors.PhaseClassify, errors.KindDefinition).
				Path(path...).
				At(marker.Span).
				Text(strings.Join(marker.Args, ", ")).
				Alternatives(counterArg).
				Detail("unknown #[%s] argument", marker.Name).
				Build()
		}
		return Decl{}, wrongKind("a struct")

	case *ast.Alias:
		switch marker.Name {
		case "":
			return Decl{Item: it, Kind: shader.DeclHelperType}, nil
		case MarkerInputArray:
			return Decl{Item: it, Kind: shader.DeclInputArray}, noArgs()
		}
		return Decl{}, wrongKind("a type alias")

	case *ast.Const:
		if marker.Name != "" {
			return Decl{}, wrongKind("a const")
		}
		return Decl{Item: it, Kind: shader.DeclStaticConst}, nil

	case *ast.Func:
		if marker.Name != "" {
			return Decl{}, wrongKind("a function")
		}
		if n.Name == EntryName {
			return Decl{Item: it, Kind: shader.DeclEntry}, nil
		}
		return Decl{Item: it, Kind: shader.DeclHelperFunction}, nil
	}
	return Decl{}, errors.Unsupported(errors.PhaseClassify, path, it.Pos(), "declaration kind "+it.Kind().String())
}

var knownMarkers = map[string]bool{
	MarkerConfig:      true,
	MarkerOutputArray: true,
	MarkerOutputVec:   true,
	MarkerInputArray:  true,
}

// singleMarker returns the item's wgsl_* attribute, or a zero Attr when it
// carries none. Attributes outside the wgsl_ namespace are ignored.
func singleMarker(path []string, base *ast.ItemBase) (ast.Attr, error) {
	var found ast.Attr
	for _, a := range base.Attrs {
		if !strings.HasPrefix(a.Name, markerPrefix) {
			continue
		}
		if !knownMarkers[a.Name] {
			alts := make([]string, 0, len(knownMarkers))
			for _, k := range []string{MarkerConfig, MarkerInputArray, MarkerOutputArray, MarkerOutputVec} {
				alts = append(alts, "#["+k+"]")
			}
			return ast.Attr{}, errors.New(errors.PhaseClassify, errors.KindDefinition).
				Path(path...).
				At(a.Span).
				Text("#[" + a.Name + "]").
				Alternatives(alts...).
				Detail("unknown marker").
				Build()
		}
		if found.Name != "" {
			return ast.Attr{}, errors.Definition(errors.PhaseClassify, path, a.Span,
				"#[%s] conflicts with #[%s]", a.Name, found.Name)
		}
		found = a
	}
	return found, nil
}
