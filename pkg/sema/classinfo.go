package sema

import "github.com/pb-lang/pbc/pkg/types"

// ParamInfo is a resolved function/method parameter.
type ParamInfo struct {
	Name       string
	Type       *types.Type
	HasDefault bool
}

// FuncInfo is a resolved function or method signature.
type FuncInfo struct {
	Name   string
	Params []ParamInfo
	Ret    *types.Type
}

func (f *FuncInfo) requiredCount() int {
	n := 0
	for _, p := range f.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// AttrInfo is one field in a class's own (non-inherited) layout.
type AttrInfo struct {
	Name string
	Type *types.Type
}

// ClassInfo is the flattened per-class layout: class-level
// attributes, the ordered set of instance attributes
// discovered from `self.x = ...` in __init__ (each typed from a
// same-named class-body declaration when there is one), and method
// signatures. A class-body declaration that __init__ never assigns
// stays a class-level attribute only. Base is nil for a root class.
type ClassInfo struct {
	Name         string
	BaseName     string
	Base         *ClassInfo
	OwnAttrs     []AttrInfo          // this class's own instance fields, discovery order
	ClassAttrs   map[string]*types.Type // static/class-level attributes
	Methods      map[string]*FuncInfo
	definedLine  int
}

// ResolveAttr walks the inheritance chain outward-in (self first, then
// base) looking for an instance attribute named n.
func (c *ClassInfo) ResolveAttr(n string) (*types.Type, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		for _, a := range cur.OwnAttrs {
			if a.Name == n {
				return a.Type, true
			}
		}
	}
	return nil, false
}

// ResolveMethod walks the inheritance chain looking for a method
// named n, returning the class that defines it (for mangling) and its
// signature.
func (c *ClassInfo) ResolveMethod(n string) (*ClassInfo, *FuncInfo, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		if m, ok := cur.Methods[n]; ok {
			return cur, m, true
		}
	}
	return nil, nil, false
}

// ResolveClassAttr walks the chain for a class-level (static) attribute.
func (c *ClassInfo) ResolveClassAttr(n string) (*ClassInfo, *types.Type, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		if t, ok := cur.ClassAttrs[n]; ok {
			return cur, t, true
		}
	}
	return nil, nil, false
}

// IsSubclassOf reports whether c is other or descends from it —
// used for the subclass-to-superclass widening rule.
func (c *ClassInfo) IsSubclassOf(other *ClassInfo) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if cur.Name == other.Name {
			return true
		}
	}
	return false
}
