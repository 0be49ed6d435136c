package codegen

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/sema"
)

// genFunc emits one C function definition: a free function when owner
// is nil, a method (mangled Class__method) otherwise. Default
// parameter values never appear in the signature itself; C has no
// such feature, so every call site supplies them explicitly (see
// padArgs).
func (g *Gen) genFunc(f *ast.FuncDef, owner *sema.ClassInfo) error {
	var fi *sema.FuncInfo
	var name string
	if owner != nil {
		fi = owner.Methods[f.Name]
		name = mangleMethod(owner.Name, f.Name)
	} else {
		fi = g.chk.Funcs[f.Name]
		name = f.Name
	}

	prevFunc := g.curFunc
	g.curFunc = fi
	defer func() { g.curFunc = prevFunc }()

	g.line("static %s%s(%s) {", cType(fi.Ret), name, g.paramListC(f.Params, fi))
	if err := g.genBlock(f.Body); err != nil {
		return err
	}
	g.line("}")
	g.line("")
	return nil
}

// genGlobalDecls emits a C global variable for every module-level
// name, without an initializer: every initializer, constant or not,
// is assigned in the synthesized top-level runner (genTopLevel).
func (g *Gen) genGlobalDecls() {
	for _, name := range g.chk.GlobalOrder {
		ty := g.chk.Globals[name]
		g.line("static %s%s;", cType(ty), name)
	}
}

// genTopLevel emits the bare module-level statements (VarDecl
// initializers and any other top-level code outside def/class) as a
// single internal runner function, called once from main before the
// user's own main (if any).
func (g *Gen) genTopLevel(stmts []ast.Declaration) error {
	g.line("static void __pb_top_level(void) {")
	for _, d := range stmts {
		if vd, ok := d.(*ast.VarDecl); ok {
			if vd.Init != nil {
				v, err := g.genExpr(vd.Init)
				if err != nil {
					return err
				}
				g.line("%s = %s;", vd.Name, v)
			}
			continue
		}
		if err := g.genStmt(d); err != nil {
			return err
		}
	}
	g.line("}")
	g.line("")
	return nil
}

// genMain emits int main(void). A user-defined top-level function
// named main is renamed pb_main to avoid colliding with the C entry
// point; the synthesized main runs top-level statements first, then
// pb_main when present.
func (g *Gen) genMain(prog *ast.Program) error {
	var userMain *ast.FuncDef
	for _, d := range prog.Declarations {
		if fd, ok := d.(*ast.FuncDef); ok && fd.Name == "main" {
			userMain = fd
		}
	}

	if userMain != nil {
		fi := g.chk.Funcs["main"]
		g.line("static %spb_main(%s) {", cType(fi.Ret), g.paramListC(userMain.Params, fi))
		prevFunc := g.curFunc
		g.curFunc = fi
		if err := g.genBlock(userMain.Body); err != nil {
			return err
		}
		g.curFunc = prevFunc
		g.line("}")
		g.line("")
	}

	g.line("int main(void) {")
	g.line("    __pb_top_level();")
	if userMain != nil {
		g.line("    pb_main();")
	}
	g.line("    return 0;")
	g.line("}")
	return nil
}
