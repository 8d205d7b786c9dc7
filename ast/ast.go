// Package ast defines the tagged-variant syntax tree for kernel modules.
//
// Every node reports a NodeKind; traversal helpers in walk.go switch on the
// kind to enumerate children, so adding a variant means touching exactly one
// switch.
package ast

import kerrors "github.com/wippyai/kernelc/errors"

// Span locates a node in the source. Start and End are byte offsets.
type Span = kerrors.Span

// Node is implemented by every tree node.
type Node interface {
	Kind() NodeKind
	Pos() Span
}

// Item is a top-level declaration inside a module.
type Item interface {
	Node
	Base() *ItemBase
}

// Type is an authored type expression.
type Type interface {
	Node
	typeNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Attr is an outer attribute such as #[wgsl_output_array(counter)].
type Attr struct {
	Name string
	Args []string
	Span Span
}

// Visibility of an item or field.
type Visibility uint8

const (
	VisPrivate Visibility = iota
	VisPub
	VisRestricted // pub(crate), pub(super)
)

// ItemBase holds what every item shares.
type ItemBase struct {
	Name     string
	Docs     []string
	Attrs    []Attr
	Vis      Visibility
	VisSpan  Span // zero when private
	NameSpan Span
	// KeywordStart is the offset of the item keyword (struct, fn, ...).
	KeywordStart int
	// Span covers attributes through the closing token, docs excluded.
	Span Span
}

func (b *ItemBase) Base() *ItemBase { return b }

// Attr returns the first attribute with the given name.
func (b *ItemBase) Attr(name string) (Attr, bool) {
	for _, a := range b.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// File holds every module found in one source file.
type File struct {
	Modules []*Module
}

// Module is one kernel module.
type Module struct {
	Name  string
	Attrs []Attr
	Items []Item
	Span  Span
}

func (n *Module) Kind() NodeKind { return KindModule }
func (n *Module) Pos() Span      { return n.Span }

// HasAttr reports whether the module carries the named attribute.
func (n *Module) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

type Struct struct {
	ItemBase
	Fields []*Field
}

func (n *Struct) Kind() NodeKind { return KindStruct }
func (n *Struct) Pos() Span      { return n.Span }

// FieldIndex returns the declaration index of the named field, or -1.
func (n *Struct) FieldIndex(name string) int {
	for i, f := range n.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type Field struct {
	Name    string
	Docs    []string
	Vis     Visibility
	VisSpan Span
	Type    Type
	Span    Span
}

func (n *Field) Kind() NodeKind { return KindField }
func (n *Field) Pos() Span      { return n.Span }

// Alias is `type Name = T;`.
type Alias struct {
	ItemBase
	Type Type
}

func (n *Alias) Kind() NodeKind { return KindAlias }
func (n *Alias) Pos() Span      { return n.Span }

type Const struct {
	ItemBase
	Type  Type
	Value Expr
}

func (n *Const) Kind() NodeKind { return KindConst }
func (n *Const) Pos() Span      { return n.Span }

type Func struct {
	ItemBase
	Params []*Param
	// ParamsSpan covers the text strictly between the parentheses.
	ParamsSpan Span
	Result     Type // nil when absent
	Body       *Block
}

func (n *Func) Kind() NodeKind { return KindFunc }
func (n *Func) Pos() Span      { return n.Span }

type Param struct {
	Name string
	Mut  bool
	Type Type
	Span Span
}

func (n *Param) Kind() NodeKind { return KindParam }
func (n *Param) Pos() Span      { return n.Span }

// Use is an import line; it carries no meaning for the kernel.
type Use struct {
	ItemBase
	Path string
}

func (n *Use) Kind() NodeKind { return KindUse }
func (n *Use) Pos() Span      { return n.Span }

// Types

type PathType struct {
	Name string
	Span Span
}

func (n *PathType) Kind() NodeKind { return KindPathType }
func (n *PathType) Pos() Span      { return n.Span }
func (*PathType) typeNode()        {}

// ArrayType is `[Elem; Len]`.
type ArrayType struct {
	Elem Type
	Len  Expr
	Span Span
}

func (n *ArrayType) Kind() NodeKind { return KindArrayType }
func (n *ArrayType) Pos() Span      { return n.Span }
func (*ArrayType) typeNode()        {}

// UnitType is `()`.
type UnitType struct {
	Span Span
}

func (n *UnitType) Kind() NodeKind { return KindUnitType }
func (n *UnitType) Pos() Span      { return n.Span }
func (*UnitType) typeNode()        {}

// Statements

type Block struct {
	Stmts []Stmt
	Span  Span
}

func (n *Block) Kind() NodeKind { return KindBlock }
func (n *Block) Pos() Span      { return n.Span }
func (*Block) stmtNode()        {}

type Let struct {
	Name  string
	Mut   bool
	Type  Type // nil when inferred
	Value Expr // nil when declared without initializer
	Span  Span
}

func (n *Let) Kind() NodeKind { return KindLet }
func (n *Let) Pos() Span      { return n.Span }
func (*Let) stmtNode()        {}

// Assign covers `=` and the compound operators.
type Assign struct {
	Op     string
	Target Expr
	Value  Expr
	Span   Span
}

func (n *Assign) Kind() NodeKind { return KindAssign }
func (n *Assign) Pos() Span      { return n.Span }
func (*Assign) stmtNode()        {}

type ExprStmt struct {
	X    Expr
	Span Span
}

func (n *ExprStmt) Kind() NodeKind { return KindExprStmt }
func (n *ExprStmt) Pos() Span      { return n.Span }
func (*ExprStmt) stmtNode()        {}

type If struct {
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block or *If
	Span Span
}

func (n *If) Kind() NodeKind { return KindIf }
func (n *If) Pos() Span      { return n.Span }
func (*If) stmtNode()        {}

// For is `for Var in From..To` or `From..=To`.
type For struct {
	Var       string
	From      Expr
	To        Expr
	Inclusive bool
	Body      *Block
	Span      Span
}

func (n *For) Kind() NodeKind { return KindFor }
func (n *For) Pos() Span      { return n.Span }
func (*For) stmtNode()        {}

type While struct {
	Cond Expr
	Body *Block
	Span Span
}

func (n *While) Kind() NodeKind { return KindWhile }
func (n *While) Pos() Span      { return n.Span }
func (*While) stmtNode()        {}

type Loop struct {
	Body *Block
	Span Span
}

func (n *Loop) Kind() NodeKind { return KindLoop }
func (n *Loop) Pos() Span      { return n.Span }
func (*Loop) stmtNode()        {}

type Break struct{ Span Span }

func (n *Break) Kind() NodeKind { return KindBreak }
func (n *Break) Pos() Span      { return n.Span }
func (*Break) stmtNode()        {}

type Continue struct{ Span Span }

func (n *Continue) Kind() NodeKind { return KindContinue }
func (n *Continue) Pos() Span      { return n.Span }
func (*Continue) stmtNode()        {}

type Return struct {
	Value Expr // nil for bare return
	Span  Span
}

func (n *Return) Kind() NodeKind { return KindReturn }
func (n *Return) Pos() Span      { return n.Span }
func (*Return) stmtNode()        {}

// Expressions

// Segment is one `::`-separated path element with optional turbofish
// generics, e.g. `get::<Uniforms>`.
type Segment struct {
	Name     string
	Generics []Type
}

// Path is an identifier or a qualified path.
type Path struct {
	Segments []Segment
	Span     Span
}

func (n *Path) Kind() NodeKind { return KindPath }
func (n *Path) Pos() Span      { return n.Span }
func (*Path) exprNode()        {}

// Ident returns the name when the path is a single plain identifier.
func (n *Path) Ident() (string, bool) {
	if len(n.Segments) == 1 && len(n.Segments[0].Generics) == 0 {
		return n.Segments[0].Name, true
	}
	return "", false
}

// LitKind distinguishes literal tokens.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
)

// Lit is a literal. Value holds the digits without any type suffix.
type Lit struct {
	LitKind LitKind
	Value   string
	Suffix  string // u32, i32, f32, f16 or ""
	Span    Span
}

func (n *Lit) Kind() NodeKind { return KindLit }
func (n *Lit) Pos() Span      { return n.Span }
func (*Lit) exprNode()        {}

type Binary struct {
	Op   string
	X    Expr
	Y    Expr
	Span Span
}

func (n *Binary) Kind() NodeKind { return KindBinary }
func (n *Binary) Pos() Span      { return n.Span }
func (*Binary) exprNode()        {}

type Unary struct {
	Op   string
	X    Expr
	Span Span
}

func (n *Unary) Kind() NodeKind { return KindUnary }
func (n *Unary) Pos() Span      { return n.Span }
func (*Unary) exprNode()        {}

type Call struct {
	Fun  Expr
	Args []Expr
	Span Span
}

func (n *Call) Kind() NodeKind { return KindCall }
func (n *Call) Pos() Span      { return n.Span }
func (*Call) exprNode()        {}

type Index struct {
	X     Expr
	Index Expr
	Span  Span
}

func (n *Index) Kind() NodeKind { return KindIndex }
func (n *Index) Pos() Span      { return n.Span }
func (*Index) exprNode()        {}

// Selector is field access `X.Name`.
type Selector struct {
	X    Expr
	Name string
	Span Span
}

func (n *Selector) Kind() NodeKind { return KindSelector }
func (n *Selector) Pos() Span      { return n.Span }
func (*Selector) exprNode()        {}

// Cast is `X as Type`.
type Cast struct {
	X    Expr
	Type Type
	Span Span
}

func (n *Cast) Kind() NodeKind { return KindCast }
func (n *Cast) Pos() Span      { return n.Span }
func (*Cast) exprNode()        {}

type FieldInit struct {
	Name  string
	Value Expr
	Span  Span
}

// StructLit is `Name { a: x, b: y }`.
type StructLit struct {
	Type   string
	Fields []FieldInit
	Span   Span
}

func (n *StructLit) Kind() NodeKind { return KindStructLit }
func (n *StructLit) Pos() Span      { return n.Span }
func (*StructLit) exprNode()        {}

type Paren struct {
	X    Expr
	Span Span
}

func (n *Paren) Kind() NodeKind { return KindParen }
func (n *Paren) Pos() Span      { return n.Span }
func (*Paren) exprNode()        {}

type ArrayLit struct {
	Elems []Expr
	Span  Span
}

func (n *ArrayLit) Kind() NodeKind { return KindArrayLit }
func (n *ArrayLit) Pos() Span      { return n.Span }
func (*ArrayLit) exprNode()        {}
