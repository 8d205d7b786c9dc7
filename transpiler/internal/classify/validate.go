package classify

import (
	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

// Entry-parameter contract.
const (
	EntryParam     = "global_id"
	EntryParamType = "WgslGlobalId"
)

// Validate enforces the entry-function contract: exactly one entry, taking
// exactly one parameter global_id of type WgslGlobalId and returning
// nothing. On success m.Entry is set.
func Validate(m *Module) error {
	entries := m.Of(shader.DeclEntry)
	switch len(entries) {
	case 0:
		return errors.Definition(errors.PhaseValidate, []string{m.Name}, m.Node.Span,
			"module has no entry function %s", EntryName)
	case 1:
	default:
		second := entries[1].Item
		return errors.Definition(errors.PhaseValidate, []string{m.Name, EntryName}, second.Base().NameSpan,
			"module has %d entry functions, want exactly one", len(entries))
	}

	fn := entries[0].Item.(*ast.Func)
	path := []string{m.Name, fn.Name}

	if len(fn.Params) != 1 {
		return errors.Definition(errors.PhaseValidate, path, fn.ParamsSpan,
			"entry function takes %d parameters, want exactly one", len(fn.Params))
	}
	p := fn.Params[0]
	if p.Name != EntryParam {
		return errors.New(errors.PhaseValidate, errors.KindDefinition).
			Path(path...).
			At(p.Span).
			Text(p.Name).
			Alternatives(EntryParam).
			Detail("entry parameter must be named %s", EntryParam).
			Build()
	}
	if pt, ok := p.Type.(*ast.PathType); !ok || pt.Name != EntryParamType {
		return errors.New(errors.PhaseValidate, errors.KindDefinition).
			Path(path...).
			At(p.Type.Pos()).
			Alternatives(EntryParamType).
			Detail("entry parameter must have type %s", EntryParamType).
			Build()
	}
	if p.Mut {
		return errors.Definition(errors.PhaseValidate, path, p.Span, "entry parameter cannot be mut")
	}
	if fn.Result != nil {
		if _, unit := fn.Result.(*ast.UnitType); !unit {
			return errors.Definition(errors.PhaseValidate, path, fn.Result.Pos(),
				"entry function must not return a value")
		}
	}

	m.Entry = fn
	return nil
}
