package ast

// IntLit is an integer literal token's decoded value.
type IntLit struct {
	typed
	Value    int64
	Position int
}

func (i *IntLit) expressionNode() {}
func (i *IntLit) Pos() int        { return i.Position }

// FloatLit is a float literal token's decoded value.
type FloatLit struct {
	typed
	Value    float64
	Position int
}

func (f *FloatLit) expressionNode() {}
func (f *FloatLit) Pos() int        { return f.Position }

// StrLit is a single- or double-quoted string literal, already
// escape-decoded by the lexer.
type StrLit struct {
	typed
	Value    string
	Position int
}

func (s *StrLit) expressionNode() {}
func (s *StrLit) Pos() int        { return s.Position }

// BoolLit is the literal True or False.
type BoolLit struct {
	typed
	Value    bool
	Position int
}

func (b *BoolLit) expressionNode() {}
func (b *BoolLit) Pos() int        { return b.Position }

// NoneLit is the literal None.
type NoneLit struct {
	typed
	Position int
}

func (n *NoneLit) expressionNode() {}
func (n *NoneLit) Pos() int        { return n.Position }

// FStrSegment is one element of an f-string's alternating
// text/expression sequence.
type FStrSegment struct {
	Text   string     // set when Expr == nil
	Expr   Expression // set when this segment is a {...} placeholder
}

// FStrLit is an f-string literal, split into segments by pkg/parser,
// which lexes and parses each {...} placeholder as its own expression.
type FStrLit struct {
	typed
	Segments []FStrSegment
	Position int
}

func (f *FStrLit) expressionNode() {}
func (f *FStrLit) Pos() int        { return f.Position }

// Name is a bare identifier reference, resolved against the scope
// chain by pkg/sema.
type Name struct {
	typed
	Ident    string
	Position int
}

func (n *Name) expressionNode() {}
func (n *Name) Pos() int        { return n.Position }

// ListLit is a list literal; Elems is empty for [] (which requires a
// target type annotation to fix its element type).
type ListLit struct {
	typed
	Elems    []Expression
	Position int
}

func (l *ListLit) expressionNode() {}
func (l *ListLit) Pos() int        { return l.Position }

// DictPair is one key/value entry of a dict literal. Key is always a
// string-literal expression in well-formed PB (checked in pkg/sema).
type DictPair struct {
	Key   Expression
	Value Expression
}

// DictLit is a dict literal; string keys only, homogeneous values.
type DictLit struct {
	typed
	Pairs    []DictPair
	Position int
}

func (d *DictLit) expressionNode() {}
func (d *DictLit) Pos() int        { return d.Position }

// Index is base[idx]: list element access (int index) or dict lookup
// (str key).
type Index struct {
	typed
	Base     Expression
	Idx      Expression
	Position int
}

func (i *Index) expressionNode() {}
func (i *Index) Pos() int        { return i.Position }

// Attr is base.Name: field or method access, or a class-level
// attribute/unbound-method access when Base names a class directly.
type Attr struct {
	typed
	Base     Expression
	Name     string
	Position int
	// StaticBase is true when Base names a class directly (a static
	// class-attribute or unbound-method reference) rather than an
	// instance value; set by pkg/sema, consumed by pkg/codegen.
	StaticBase bool
}

func (a *Attr) expressionNode() {}
func (a *Attr) Pos() int        { return a.Position }

// Call is callee(args...): a function call, method call, built-in
// call, or constructor call when Callee names a class.
type Call struct {
	typed
	Callee   Expression
	Args     []Expression
	Position int
	// StaticDispatch is true for an unbound superclass call like
	// `Base.method(self, ...)`, set by pkg/sema when Callee is an
	// Attr whose Base names a class directly.
	StaticDispatch bool
}

func (c *Call) expressionNode() {}
func (c *Call) Pos() int        { return c.Position }

// Unary is a prefix operator: "not" or "-".
type Unary struct {
	typed
	Op       string
	Operand  Expression
	Position int
}

func (u *Unary) expressionNode() {}
func (u *Unary) Pos() int        { return u.Position }

// Binary is a two-operand infix expression: arithmetic, comparison,
// equality, "is"/"is not", or logical "and"/"or".
type Binary struct {
	typed
	Op       string
	Lhs      Expression
	Rhs      Expression
	Position int
}

func (b *Binary) expressionNode() {}
func (b *Binary) Pos() int        { return b.Position }
