package ast

// Parameter is one ordered parameter of a FuncDef: a name, required
// type, and an optional default expression.
type Parameter struct {
	Name     string
	Type     *TypeAnnotation
	Default  Expression // nil when the parameter is required
	Position int
}

func (p *Parameter) Pos() int { return p.Position }

// FuncDef is a module-level function or a class method (ClassDef
// embeds FuncDef values directly in Methods).
type FuncDef struct {
	Name       string
	Params     []Parameter
	ReturnType *TypeAnnotation // always set by the parser; "None" when no "->" annotation is given
	Body       []Declaration
	Position   int
}

func (f *FuncDef) declarationNode() {}
func (f *FuncDef) Pos() int         { return f.Position }

// ClassAttr is a typed class-body attribute declaration, distinct
// from an instance attribute discovered from `self.x = ...`.
type ClassAttr struct {
	Name     string
	Type     *TypeAnnotation
	Init     Expression
	Position int
}

// ClassDef is a class with an optional single base. Methods includes
// `__init__` when present.
type ClassDef struct {
	Name       string
	Base       string // "" when the class has no base
	Attrs      []ClassAttr
	Methods    []*FuncDef
	Position   int
}

func (c *ClassDef) declarationNode() {}
func (c *ClassDef) Pos() int         { return c.Position }
