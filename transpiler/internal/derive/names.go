package derive

import (
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

type nameTable map[string][]string

func (t nameTable) add(name, owner string) {
	if name == "" {
		return
	}
	for _, o := range t[name] {
		if o == owner {
			return
		}
	}
	t[name] = append(t[name], owner)
}

// CheckCollisions fails when two derived names coincide or a derived name
// equals a user declaration name. The first collision in name order is
// reported.
func CheckCollisions(d *shader.Descriptor, lib *shader.LibraryPortion) error {
	names := make(nameTable)

	user := func(c shader.Component) {
		if n := DeclName(c.Target); n != "" {
			names.add(n, "declaration "+n)
		}
	}
	for _, c := range d.StaticConsts {
		user(c)
	}
	for _, c := range d.HelperTypes {
		user(c)
	}
	for _, u := range d.Uniforms {
		user(u.Code)
	}
	for _, in := range d.InputArrays {
		user(in.Item)
	}
	for _, o := range d.OutputArrays {
		user(o.Item)
	}
	for _, c := range d.HelperFunctions {
		user(c)
	}
	if d.Entry != nil {
		user(*d.Entry)
	}

	for _, in := range d.InputArrays {
		owner := "input array " + in.ItemType.Name
		names.add(shader.ArrayAlias(in.ItemType, shader.Input), owner)
		names.add(shader.LengthConst(in.ItemType, shader.Input), owner)
	}
	for _, o := range d.OutputArrays {
		owner := "output array " + o.ItemType.Name
		names.add(shader.ArrayAlias(o.ItemType, shader.Output), owner)
		names.add(shader.LengthConst(o.ItemType, shader.Output), owner)
		if o.HasCounter() {
			names.add(shader.PushHelper(o.ItemType), owner)
		}
	}
	for _, b := range lib.Bindings {
		names.add(b.Name, b.Kind.String()+" binding of "+b.Owner)
	}
	for _, n := range []string{lib.Workgroup.X, lib.Workgroup.Y, lib.Workgroup.Z} {
		names.add(n, "workgroup size")
	}

	keys := maps.Keys(names)
	sort.Strings(keys)
	for _, k := range keys {
		if owners := names[k]; len(owners) > 1 {
			return errors.NameCollision(k, owners...)
		}
	}
	return nil
}

// DeclName extracts the declared identifier from a rewritten WGSL
// declaration.
func DeclName(target string) string {
	for _, kw := range []string{"struct ", "alias ", "const ", "fn "} {
		rest, ok := strings.CutPrefix(target, kw)
		if !ok {
			continue
		}
		end := strings.IndexAny(rest, " :=({<")
		if end < 0 {
			return rest
		}
		return rest[:end]
	}
	return ""
}
