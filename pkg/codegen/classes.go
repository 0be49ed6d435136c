package codegen

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/sema"
)

// classOrder returns class names, base classes always emitted before
// their subclasses, so `struct Sub { struct Base base; ... }` always
// sees a complete `struct Base` definition.
func (g *Gen) classOrder() []string {
	emitted := map[string]bool{}
	var order []string
	var visit func(name string)
	visit = func(name string) {
		if emitted[name] {
			return
		}
		info := g.chk.Classes[name]
		if info.Base != nil {
			visit(info.Base.Name)
		}
		emitted[name] = true
		order = append(order, name)
	}
	for _, name := range g.chk.ClassOrder {
		visit(name)
	}
	return order
}

func (g *Gen) genClassStructs(prog *ast.Program) error {
	for _, name := range g.classOrder() {
		info := g.chk.Classes[name]
		g.line("struct %s {", name)
		if info.Base != nil {
			g.line("    struct %s base;", info.Base.Name)
		}
		for _, a := range info.OwnAttrs {
			g.line("    %s%s;", cType(a.Type), a.Name)
		}
		g.line("};")
		g.line("")
	}
	return nil
}

func (g *Gen) genClassAttrGlobals(prog *ast.Program) error {
	for _, d := range prog.Declarations {
		cd, ok := d.(*ast.ClassDef)
		if !ok {
			continue
		}
		for _, a := range cd.Attrs {
			ty := g.chk.Classes[cd.Name].ClassAttrs[a.Name]
			if a.Init != nil {
				init, err := g.constExpr(a.Init)
				if err != nil {
					return err
				}
				g.line("static %s%s = %s;", cType(ty), classAttrName(cd.Name, a.Name), init)
			} else {
				g.line("static %s%s;", cType(ty), classAttrName(cd.Name, a.Name))
			}
		}
	}
	return nil
}

// genClassFactories emits `Class_new(args) -> struct Class` helpers:
// PB constructor calls `Class(args)` lower to a call to this
// function, which stack-allocates the instance, runs __init__ (when
// defined) through a pointer to it, and returns it by value.
func (g *Gen) genClassFactories(prog *ast.Program) error {
	for _, d := range prog.Declarations {
		cd, ok := d.(*ast.ClassDef)
		if !ok {
			continue
		}
		info := g.chk.Classes[cd.Name]
		_, init, hasInit := info.ResolveMethod("__init__")

		params := ""
		args := ""
		if hasInit {
			for i, p := range init.Params[1:] {
				if i > 0 {
					params += ", "
					args += ", "
				}
				params += cParamType(p.Type) + p.Name
				args += p.Name
			}
		}

		g.line("static struct %s %s(%s) {", cd.Name, cd.Name+"_new", orVoid(params))
		g.line("    struct %s __self;", cd.Name)
		g.line("    memset(&__self, 0, sizeof __self);")
		if hasInit {
			owner, _, _ := info.ResolveMethod("__init__")
			g.line("    %s(&__self%s);", mangleMethod(owner.Name, "__init__"), prependComma(args))
		}
		g.line("    return __self;")
		g.line("}")
		g.line("")
	}
	return nil
}

func orVoid(s string) string {
	if s == "" {
		return "void"
	}
	return s
}

func prependComma(s string) string {
	if s == "" {
		return ""
	}
	return ", " + s
}

func (g *Gen) genForwardDecls(prog *ast.Program) error {
	for _, d := range prog.Declarations {
		switch cd := d.(type) {
		case *ast.FuncDef:
			if cd.Name == "main" {
				continue
			}
			g.line("static %s%s(%s);", cType(g.chk.Funcs[cd.Name].Ret), cd.Name, g.paramListC(cd.Params, g.chk.Funcs[cd.Name]))
		case *ast.ClassDef:
			info := g.chk.Classes[cd.Name]
			for _, m := range cd.Methods {
				fi := info.Methods[m.Name]
				g.line("static %s%s(%s);", cType(fi.Ret), mangleMethod(cd.Name, m.Name), g.paramListC(m.Params, fi))
			}
		}
	}
	g.line("")
	return nil
}

func (g *Gen) paramListC(params []ast.Parameter, fi *sema.FuncInfo) string {
	if len(params) == 0 {
		return "void"
	}
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += cParamType(fi.Params[i].Type) + p.Name
	}
	return s
}

func (g *Gen) genClassMethods(cd *ast.ClassDef) error {
	info := g.chk.Classes[cd.Name]
	prev := g.curClass
	g.curClass = info
	defer func() { g.curClass = prev }()

	for _, m := range cd.Methods {
		if err := g.genFunc(m, info); err != nil {
			return err
		}
	}
	return nil
}

// attrPath returns the chain of ".base" accesses (possibly empty)
// needed to reach the struct that declares attribute/method name,
// walking from info outward toward its root ancestor.
func attrPath(info *sema.ClassInfo, name string, isMethod bool) (string, bool) {
	path := ""
	for cur := info; cur != nil; cur = cur.Base {
		if isMethod {
			if _, ok := cur.Methods[name]; ok {
				return path, true
			}
		} else {
			for _, a := range cur.OwnAttrs {
				if a.Name == name {
					return path, true
				}
			}
		}
		path += "base."
	}
	return "", false
}
