// Package types holds the PB type-tag variant shared between the
// checker (pkg/sema) and the code generator (pkg/codegen). Equality
// is structural.
package types

import "fmt"

// Kind enumerates the variant tag of a Type.
type Kind int

const (
	Invalid Kind = iota
	Int
	Float
	Bool
	Str
	None
	List
	Dict
	Class
	Func
)

// Type is the structural type tag. List/Dict carry element types;
// Class carries the class name; Func carries a signature used only
// for typing free-standing function values.
type Type struct {
	Kind     Kind
	Elem     *Type   // List
	Key      *Type   // Dict (always Str, kept explicit for clarity at call sites)
	Value    *Type   // Dict
	Class    string  // Class
	Params   []*Type // Func
	Ret      *Type   // Func
}

func PrimInt() *Type   { return &Type{Kind: Int} }
func PrimFloat() *Type { return &Type{Kind: Float} }
func PrimBool() *Type  { return &Type{Kind: Bool} }
func PrimStr() *Type   { return &Type{Kind: Str} }
func PrimNone() *Type  { return &Type{Kind: None} }

func ListOf(elem *Type) *Type { return &Type{Kind: List, Elem: elem} }
func DictOf(value *Type) *Type {
	return &Type{Kind: Dict, Key: PrimStr(), Value: value}
}
func ClassOf(name string) *Type { return &Type{Kind: Class, Class: name} }

// Equal compares two types structurally.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case List:
		return Equal(a.Elem, b.Elem)
	case Dict:
		return Equal(a.Value, b.Value)
	case Class:
		return a.Class == b.Class
	case Func:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Ret, b.Ret)
	default:
		return true
	}
}

// Numeric reports whether t participates in arithmetic. Per spec
// §4.3 and the Open Questions in §9, bool is deliberately excluded:
// the stricter reading is taken.
func Numeric(t *Type) bool {
	return t != nil && (t.Kind == Int || t.Kind == Float)
}

func IsBool(t *Type) bool  { return t != nil && t.Kind == Bool }
func IsStr(t *Type) bool   { return t != nil && t.Kind == Str }
func IsInt(t *Type) bool   { return t != nil && t.Kind == Int }
func IsFloat(t *Type) bool { return t != nil && t.Kind == Float }
func IsList(t *Type) bool  { return t != nil && t.Kind == List }
func IsDict(t *Type) bool  { return t != nil && t.Kind == Dict }
func IsClass(t *Type) bool { return t != nil && t.Kind == Class }
func IsNone(t *Type) bool  { return t != nil && t.Kind == None }

// Widens reports whether a value of type from may be implicitly used
// where a value of type to is expected: bool -> int -> float, and
// (handled by the caller, which has the class hierarchy) subclass ->
// superclass.
func Widens(from, to *Type) bool {
	if Equal(from, to) {
		return true
	}
	if from == nil || to == nil {
		return false
	}
	switch {
	case from.Kind == Bool && to.Kind == Int:
		return true
	case from.Kind == Bool && to.Kind == Float:
		return true
	case from.Kind == Int && to.Kind == Float:
		return true
	}
	return false
}

// String renders a Type the way PB source and diagnostics spell it:
// list[int], dict[str, float], Class name bare.
func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case None:
		return "None"
	case List:
		return fmt.Sprintf("list[%s]", t.Elem)
	case Dict:
		return fmt.Sprintf("dict[str, %s]", t.Value)
	case Class:
		return t.Class
	case Func:
		return "func"
	default:
		return "<invalid>"
	}
}
