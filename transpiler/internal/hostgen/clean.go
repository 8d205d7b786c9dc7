package hostgen

import (
	"sort"
	"strings"

	"github.com/wippyai/kernelc/ast"
	"github.com/wippyai/kernelc/transpiler/internal/classify"
)

type edit struct {
	start, end int
	text       string
}

// Clean returns the authored source with every wgsl_* marker removed and
// every struct, field, type alias and const made public. Lines left empty
// by a removed marker are dropped.
func Clean(source string, mod *classify.Module) string {
	var edits []edit

	removeAttrs := func(attrs []ast.Attr) {
		for _, a := range attrs {
			if strings.HasPrefix(a.Name, "wgsl_") {
				start, end := lineExtent(source, a.Span.Start, a.Span.End)
				edits = append(edits, edit{start: start, end: end})
			}
		}
	}
	publish := func(base *ast.ItemBase) {
		switch base.Vis {
		case ast.VisPrivate:
			edits = append(edits, edit{start: base.KeywordStart, end: base.KeywordStart, text: "pub "})
		case ast.VisRestricted:
			edits = append(edits, edit{start: base.VisSpan.Start, end: base.VisSpan.End, text: "pub"})
		}
	}

	removeAttrs(mod.Node.Attrs)
	for _, it := range mod.Node.Items {
		base := it.Base()
		removeAttrs(base.Attrs)
		switch n := it.(type) {
		case *ast.Struct:
			publish(base)
			for _, f := range n.Fields {
				switch f.Vis {
				case ast.VisPrivate:
					edits = append(edits, edit{start: f.Span.Start, end: f.Span.Start, text: "pub "})
				case ast.VisRestricted:
					edits = append(edits, edit{start: f.VisSpan.Start, end: f.VisSpan.End, text: "pub"})
				}
			}
		case *ast.Alias, *ast.Const:
			publish(base)
		}
	}

	return apply(source, edits)
}

// lineExtent widens [start, end) to the whole line when nothing but
// whitespace surrounds it there; otherwise it swallows trailing blanks.
func lineExtent(source string, start, end int) (int, int) {
	ls := start
	for ls > 0 && (source[ls-1] == ' ' || source[ls-1] == '\t') {
		ls--
	}
	le := end
	for le < len(source) && (source[le] == ' ' || source[le] == '\t') {
		le++
	}
	atLineStart := ls == 0 || source[ls-1] == '\n'
	atLineEnd := le == len(source) || source[le] == '\n' || source[le] == '\r'
	if atLineStart && atLineEnd {
		if le < len(source) && source[le] == '\r' {
			le++
		}
		if le < len(source) && source[le] == '\n' {
			le++
		}
		return ls, le
	}
	return start, le
}

// apply performs non-overlapping edits back to front so earlier offsets stay
// valid.
func apply(source string, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := source
	for _, e := range edits {
		out = out[:e.start] + e.text + out[e.end:]
	}
	return out
}
