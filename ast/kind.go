package ast

import "fmt"

// NodeKind enumerates every node variant. Traversals switch on it rather
// than on dynamic type so that a missing case shows up in one place.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota

	// items
	KindModule
	KindStruct
	KindField
	KindAlias
	KindConst
	KindFunc
	KindParam
	KindUse

	// types
	KindPathType
	KindArrayType
	KindUnitType

	// statements
	KindBlock
	KindLet
	KindAssign
	KindExprStmt
	KindIf
	KindFor
	KindWhile
	KindLoop
	KindBreak
	KindContinue
	KindReturn

	// expressions
	KindPath
	KindLit
	KindBinary
	KindUnary
	KindCall
	KindIndex
	KindSelector
	KindCast
	KindStructLit
	KindParen
	KindArrayLit

	kindCount
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindModule:    "module",
	KindStruct:    "struct",
	KindField:     "field",
	KindAlias:     "alias",
	KindConst:     "const",
	KindFunc:      "func",
	KindParam:     "param",
	KindUse:       "use",
	KindPathType:  "path_type",
	KindArrayType: "array_type",
	KindUnitType:  "unit_type",
	KindBlock:     "block",
	KindLet:       "let",
	KindAssign:    "assign",
	KindExprStmt:  "expr_stmt",
	KindIf:        "if",
	KindFor:       "for",
	KindWhile:     "while",
	KindLoop:      "loop",
	KindBreak:     "break",
	KindContinue:  "continue",
	KindReturn:    "return",
	KindPath:      "path",
	KindLit:       "lit",
	KindBinary:    "binary",
	KindUnary:     "unary",
	KindCall:      "call",
	KindIndex:     "index",
	KindSelector:  "selector",
	KindCast:      "cast",
	KindStructLit: "struct_lit",
	KindParen:     "paren",
	KindArrayLit:  "array_lit",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// IsExpr reports whether k is an expression kind.
func (k NodeKind) IsExpr() bool { return k >= KindPath && k < kindCount }

// IsStmt reports whether k is a statement kind.
func (k NodeKind) IsStmt() bool { return k >= KindBlock && k <= KindReturn }

// IsType reports whether k is a type kind.
func (k NodeKind) IsType() bool { return k >= KindPathType && k <= KindUnitType }
