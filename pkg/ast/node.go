package ast

import "github.com/pb-lang/pbc/pkg/types"

// Node is implemented by every AST node; Pos returns the column of the
// node's first token.
type Node interface {
	Pos() int
}

// Expression is implemented by every expression node. ResolvedType is
// nil until pkg/sema has run; after a successful check it is non-nil
// on every expression node.
type Expression interface {
	Node
	expressionNode()
	ResolvedType() *types.Type
	SetResolvedType(*types.Type)
}

// Declaration is implemented by top-level declarations: FuncDef,
// ClassDef, VarDecl, Import.
type Declaration interface {
	Node
	declarationNode()
}

// Statement is implemented by every statement node; statements are
// also declarations so a function body is simply []Declaration.
type Statement interface {
	Declaration
	stmtNode()
}

// Program is the root node: the ordered list of top-level
// declarations in a single compiled file.
type Program struct {
	Declarations []Declaration
	Position     int
}

func (p *Program) Pos() int { return p.Position }

// typed is embedded by every Expression to carry its resolved type.
type typed struct {
	Type *types.Type
}

func (t *typed) ResolvedType() *types.Type     { return t.Type }
func (t *typed) SetResolvedType(ty *types.Type) { t.Type = ty }
