package shader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
)

// ReadGenerated evaluates the descriptor literal returned by the generated
// function funcName in src. Only the literal forms the composer emits are
// understood: composite literals, keyed fields, string and integer literals,
// `&T{...}` and nil.
func ReadGenerated(src []byte, funcName string) (*Descriptor, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "generated.go", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("read generated: %w", err)
	}

	var fn *ast.FuncDecl
	for _, decl := range f.Decls {
		if d, ok := decl.(*ast.FuncDecl); ok && d.Recv == nil && d.Name.Name == funcName {
			fn = d
			break
		}
	}
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("read generated: function %s not found", funcName)
	}

	var result ast.Expr
	for _, stmt := range fn.Body.List {
		if ret, ok := stmt.(*ast.ReturnStmt); ok && len(ret.Results) == 1 {
			result = ret.Results[0]
		}
	}
	if result == nil {
		return nil, fmt.Errorf("read generated: %s has no single-value return", funcName)
	}

	var desc *Descriptor
	if err := evalInto(reflect.ValueOf(&desc).Elem(), result); err != nil {
		return nil, fmt.Errorf("read generated: %s: %w", fset.Position(result.Pos()), err)
	}
	if desc == nil {
		return nil, fmt.Errorf("read generated: %s returns nil", funcName)
	}
	return desc, nil
}

func evalInto(v reflect.Value, e ast.Expr) error {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return evalInto(v, e.X)

	case *ast.Ident:
		if e.Name == "nil" {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		if v.Kind() == reflect.Bool && (e.Name == "true" || e.Name == "false") {
			v.SetBool(e.Name == "true")
			return nil
		}
		return fmt.Errorf("unexpected identifier %s", e.Name)

	case *ast.BasicLit:
		return evalLit(v, e)

	case *ast.UnaryExpr:
		if e.Op != token.AND || v.Kind() != reflect.Pointer {
			return fmt.Errorf("unexpected unary %s for %s", e.Op, v.Type())
		}
		ptr := reflect.New(v.Type().Elem())
		if err := evalInto(ptr.Elem(), e.X); err != nil {
			return err
		}
		v.Set(ptr)
		return nil

	case *ast.CompositeLit:
		return evalComposite(v, e)
	}
	return fmt.Errorf("unsupported expression %T", e)
}

func evalLit(v reflect.Value, lit *ast.BasicLit) error {
	switch {
	case lit.Kind == token.STRING && v.Kind() == reflect.String:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return err
		}
		v.SetString(s)
	case lit.Kind == token.INT && v.CanUint():
		n, err := strconv.ParseUint(lit.Value, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case lit.Kind == token.INT && v.CanInt():
		n, err := strconv.ParseInt(lit.Value, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	default:
		return fmt.Errorf("cannot assign %s literal to %s", lit.Kind, v.Type())
	}
	return nil
}

func evalComposite(v reflect.Value, lit *ast.CompositeLit) error {
	// Elided element types inside slices of pointers (`[]*T{{...}}`).
	if v.Kind() == reflect.Pointer {
		ptr := reflect.New(v.Type().Elem())
		if err := evalComposite(ptr.Elem(), lit); err != nil {
			return err
		}
		v.Set(ptr)
		return nil
	}

	switch v.Kind() {
	case reflect.Struct:
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				return fmt.Errorf("%s literal must use keyed fields", v.Type())
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return fmt.Errorf("%s literal has a non-identifier key", v.Type())
			}
			field := v.FieldByName(key.Name)
			if !field.IsValid() || !field.CanSet() {
				return fmt.Errorf("%s has no field %s", v.Type(), key.Name)
			}
			if err := evalInto(field, kv.Value); err != nil {
				return fmt.Errorf("%s.%s: %w", v.Type().Name(), key.Name, err)
			}
		}
		return nil

	case reflect.Slice:
		s := reflect.MakeSlice(v.Type(), len(lit.Elts), len(lit.Elts))
		for i, elt := range lit.Elts {
			if err := evalInto(s.Index(i), elt); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		v.Set(s)
		return nil

	case reflect.Map:
		m := reflect.MakeMapWithSize(v.Type(), len(lit.Elts))
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				return fmt.Errorf("map literal element is not key: value")
			}
			key := reflect.New(v.Type().Key()).Elem()
			if err := evalInto(key, kv.Key); err != nil {
				return err
			}
			val := reflect.New(v.Type().Elem()).Elem()
			if err := evalInto(val, kv.Value); err != nil {
				return err
			}
			m.SetMapIndex(key, val)
		}
		v.Set(m)
		return nil
	}
	return fmt.Errorf("composite literal for %s", v.Type())
}
