// Package sema implements C5 (symbol & type tables) and C6 (the type
// checker): a two-pass semantic phase over the AST produced by
// pkg/parser. Pass A registers every class and function signature and
// computes flattened class layouts; pass B walks each body, typing
// every expression node and enforcing the assignability and
// inheritance rules.
package sema

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/diag"
	"github.com/pb-lang/pbc/pkg/types"
)

// Checker holds the symbol tables built by pass A and consumed by
// pass B and, afterward, by pkg/codegen.
type Checker struct {
	Classes map[string]*ClassInfo
	Funcs   map[string]*FuncInfo
	Globals map[string]*types.Type

	// GlobalOrder preserves the declaration order of module-level
	// variables, needed by codegen to emit deterministic C globals.
	GlobalOrder []string
	ClassOrder  []string
	FuncOrder   []string

	currentFunc  *FuncInfo
	currentClass *ClassInfo
	scope        map[string]*types.Type
	globalWrites map[string]bool
}

// New constructs an empty Checker.
func New() *Checker {
	return &Checker{
		Classes:      map[string]*ClassInfo{},
		Funcs:        map[string]*FuncInfo{},
		Globals:      map[string]*types.Type{},
		scope:        map[string]*types.Type{},
		globalWrites: map[string]bool{},
	}
}

// Check runs both passes over prog, returning the first TypeError, or
// nil on success. On success every expression node in prog carries a
// resolved type.
func (c *Checker) Check(prog *ast.Program) error {
	if err := c.registerClasses(prog); err != nil {
		return err
	}
	if err := c.resolveClassChains(); err != nil {
		return err
	}
	if err := c.computeLayouts(prog); err != nil {
		return err
	}
	if err := c.registerFunctions(prog); err != nil {
		return err
	}

	for _, decl := range prog.Declarations {
		if err := c.checkTopLevel(decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) registerClasses(prog *ast.Program) error {
	for _, decl := range prog.Declarations {
		cd, ok := decl.(*ast.ClassDef)
		if !ok {
			continue
		}
		if _, exists := c.Classes[cd.Name]; exists {
			return typeErr(cd.Position, "class %q is already defined", cd.Name)
		}
		info := &ClassInfo{
			Name:       cd.Name,
			BaseName:   cd.Base,
			ClassAttrs: map[string]*types.Type{},
			Methods:    map[string]*FuncInfo{},
		}
		c.Classes[cd.Name] = info
		c.ClassOrder = append(c.ClassOrder, cd.Name)
	}
	return nil
}

// resolveClassChains links each ClassInfo.Base and rejects undefined
// bases and inheritance cycles (a chain A->B->A is a type error).
func (c *Checker) resolveClassChains() error {
	for _, name := range c.ClassOrder {
		info := c.Classes[name]
		if info.BaseName == "" {
			continue
		}
		base, ok := c.Classes[info.BaseName]
		if !ok {
			return typeErr(0, "class %q has undefined base %q", info.Name, info.BaseName)
		}
		info.Base = base
	}
	for _, name := range c.ClassOrder {
		seen := map[string]bool{}
		for cur := c.Classes[name]; cur != nil; cur = cur.Base {
			if seen[cur.Name] {
				return typeErr(0, "inheritance cycle detected involving class %q", name)
			}
			seen[cur.Name] = true
		}
	}
	return nil
}

// computeLayouts fills in ClassAttrs and OwnAttrs for every class,
// scanning __init__ for `self.x = ...` assignments.
func (c *Checker) computeLayouts(prog *ast.Program) error {
	for _, decl := range prog.Declarations {
		cd, ok := decl.(*ast.ClassDef)
		if !ok {
			continue
		}
		info := c.Classes[cd.Name]

		for _, a := range cd.Attrs {
			ty, err := c.resolveAnnotation(a.Type)
			if err != nil {
				return err
			}
			info.ClassAttrs[a.Name] = ty
		}

		var init *ast.FuncDef
		for _, m := range cd.Methods {
			if m.Name == "__init__" {
				init = m
			}
		}
		if init != nil {
			order, types_ := scanSelfAssignments(init.Body)
			for _, n := range order {
				ty := types_[n]
				if t, ok := info.ClassAttrs[n]; ok {
					ty = t
				}
				info.OwnAttrs = append(info.OwnAttrs, AttrInfo{Name: n, Type: ty})
			}
		}
	}
	return nil
}

// scanSelfAssignments walks a method body (not descending into nested
// function literals, which PB does not have) collecting the ordered
// set of `self.x = value` targets and a best-effort inferred type
// per name, from the first assignment seen.
func scanSelfAssignments(body []ast.Declaration) ([]string, map[string]*types.Type) {
	order := []string{}
	seen := map[string]bool{}
	result := map[string]*types.Type{}
	var walk func([]ast.Declaration)
	record := func(name string, value ast.Expression) {
		if seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
		result[name] = inferLiteralType(value)
	}
	walk = func(stmts []ast.Declaration) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.Assign:
				if attr, ok := st.Target.(*ast.Attr); ok {
					if _, ok := attr.Base.(*ast.Name); ok && attr.Base.(*ast.Name).Ident == "self" {
						record(attr.Name, st.Value)
					}
				}
			case *ast.If:
				walk(st.Then)
				for _, e := range st.Elifs {
					walk(e.Body)
				}
				walk(st.Else)
			case *ast.While:
				walk(st.Body)
			case *ast.For:
				walk(st.Body)
			case *ast.Try:
				walk(st.Body)
				for _, h := range st.Handlers {
					walk(h.Body)
				}
			}
		}
	}
	walk(body)
	return order, result
}

// inferLiteralType makes a best-effort guess at an instance
// attribute's type from its first assignment's literal shape; a full
// expression typing pass runs later in pass B once the layout exists,
// but the layout itself must exist before pass B can type attribute
// access, hence this shallow pre-pass.
func inferLiteralType(e ast.Expression) *types.Type {
	switch v := e.(type) {
	case *ast.IntLit:
		return types.PrimInt()
	case *ast.FloatLit:
		return types.PrimFloat()
	case *ast.BoolLit:
		return types.PrimBool()
	case *ast.StrLit, *ast.FStrLit:
		return types.PrimStr()
	case *ast.Call:
		if name, ok := v.Callee.(*ast.Name); ok {
			return types.ClassOf(name.Ident)
		}
	}
	return types.PrimNone()
}

func (c *Checker) registerFunctions(prog *ast.Program) error {
	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.FuncDef:
			info, err := c.signatureOf(d)
			if err != nil {
				return err
			}
			if _, exists := c.Funcs[d.Name]; exists {
				return typeErr(d.Position, "function %q is already defined", d.Name)
			}
			c.Funcs[d.Name] = info
			c.FuncOrder = append(c.FuncOrder, d.Name)
		case *ast.ClassDef:
			info := c.Classes[d.Name]
			for _, m := range d.Methods {
				fi, err := c.signatureOf(m)
				if err != nil {
					return err
				}
				if len(fi.Params) > 0 && fi.Params[0].Name == "self" {
					fi.Params[0].Type = types.ClassOf(d.Name)
				}
				info.Methods[m.Name] = fi
			}
		}
	}
	return nil
}

func (c *Checker) signatureOf(f *ast.FuncDef) (*FuncInfo, error) {
	info := &FuncInfo{Name: f.Name}
	for _, p := range f.Params {
		ty, err := c.resolveAnnotation(p.Type)
		if err != nil {
			return nil, err
		}
		info.Params = append(info.Params, ParamInfo{Name: p.Name, Type: ty, HasDefault: p.Default != nil})
	}
	ret, err := c.resolveAnnotation(f.ReturnType)
	if err != nil {
		return nil, err
	}
	info.Ret = ret
	return info, nil
}

// resolveAnnotation turns a parsed ast.TypeAnnotation into a
// types.Type, validating class references against the (already
// registered) class table.
func (c *Checker) resolveAnnotation(a *ast.TypeAnnotation) (*types.Type, error) {
	if a == nil {
		return types.PrimNone(), nil
	}
	switch a.Name {
	case "int":
		return types.PrimInt(), nil
	case "float":
		return types.PrimFloat(), nil
	case "bool":
		return types.PrimBool(), nil
	case "str":
		return types.PrimStr(), nil
	case "None":
		return types.PrimNone(), nil
	case "list":
		elem, err := c.resolveAnnotation(a.Elem)
		if err != nil {
			return nil, err
		}
		return types.ListOf(elem), nil
	case "dict":
		val, err := c.resolveAnnotation(a.Value)
		if err != nil {
			return nil, err
		}
		return types.DictOf(val), nil
	default:
		if _, ok := c.Classes[a.Name]; !ok {
			return nil, typeErr(a.Position, "unknown type %q", a.Name)
		}
		return types.ClassOf(a.Name), nil
	}
}

func (c *Checker) classInfoOf(t *types.Type) *ClassInfo {
	if t == nil || t.Kind != types.Class {
		return nil
	}
	return c.Classes[t.Class]
}

func typeErr(pos int, format string, args ...any) error {
	return diag.NewTypeError(0, pos, 0, format, args...)
}
