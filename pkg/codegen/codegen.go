// Package codegen implements C7: it lowers a type-checked AST into a
// single self-contained C99 translation unit that #includes
// "pb_runtime.h" and defines int main(void). Classes become C structs
// with an embedded base field for single inheritance; methods mangle
// to Class__method; list/dict values use the monomorphised runtime
// containers; try/except lowers to setjmp/longjmp.
package codegen

import (
	"fmt"
	"strings"

	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/sema"
	"github.com/pb-lang/pbc/pkg/types"
)

// Gen accumulates the generated C text. One Gen is used per
// compilation; it is not safe for concurrent use.
type Gen struct {
	chk      *sema.Checker
	out      strings.Builder
	tmp      int
	label    int
	curClass *sema.ClassInfo
	curFunc  *sema.FuncInfo
	tryDepth int

	// funcParams/methodParams record each parameter's source Default
	// expression (sema.FuncInfo keeps only a HasDefault flag per
	// parameter), needed to pad a call's missing trailing arguments.
	funcParams   map[string][]ast.Parameter
	methodParams map[string]map[string][]ast.Parameter
}

func newGen(chk *sema.Checker) *Gen {
	return &Gen{
		chk:          chk,
		funcParams:   map[string][]ast.Parameter{},
		methodParams: map[string]map[string][]ast.Parameter{},
	}
}

func (g *Gen) line(format string, args ...any) {
	fmt.Fprintf(&g.out, format+"\n", args...)
}

func (g *Gen) comment(format string, args ...any) {
	g.line("/* "+format+" */", args...)
}

func (g *Gen) newTemp(prefix string) string {
	g.tmp++
	return fmt.Sprintf("__pb_%s%d", prefix, g.tmp)
}

func (g *Gen) newLabel() string {
	g.label++
	return fmt.Sprintf("__pb_L%d", g.label)
}

// Generate produces the full C99 translation unit for prog, whose
// declarations have already been checked by chk.
func Generate(chk *sema.Checker, prog *ast.Program) (string, error) {
	g := newGen(chk)

	var topStmts []ast.Declaration
	for _, d := range prog.Declarations {
		switch d.(type) {
		case *ast.ClassDef, *ast.FuncDef, *ast.Import:
		default:
			topStmts = append(topStmts, d)
		}
	}

	for _, d := range prog.Declarations {
		switch cd := d.(type) {
		case *ast.FuncDef:
			g.funcParams[cd.Name] = cd.Params
		case *ast.ClassDef:
			methods := map[string][]ast.Parameter{}
			for _, m := range cd.Methods {
				methods[m.Name] = m.Params
			}
			g.methodParams[cd.Name] = methods
		}
	}

	g.line("#include \"pb_runtime.h\"")
	g.line("")

	if err := g.genClassStructs(prog); err != nil {
		return "", err
	}
	if err := g.genClassAttrGlobals(prog); err != nil {
		return "", err
	}
	g.genGlobalDecls()
	g.line("")

	if err := g.genForwardDecls(prog); err != nil {
		return "", err
	}
	if err := g.genClassFactories(prog); err != nil {
		return "", err
	}

	for _, d := range prog.Declarations {
		switch cd := d.(type) {
		case *ast.ClassDef:
			if err := g.genClassMethods(cd); err != nil {
				return "", err
			}
		case *ast.FuncDef:
			if cd.Name == "main" {
				continue
			}
			if err := g.genFunc(cd, nil); err != nil {
				return "", err
			}
		}
	}

	if err := g.genTopLevel(topStmts); err != nil {
		return "", err
	}

	if err := g.genMain(prog); err != nil {
		return "", err
	}

	return g.out.String(), nil
}

// cType renders the C99 spelling of t as used for locals, fields, and
// parameters. Class values are embedded/returned by value; only
// method/function receivers of class type are pointers, handled by
// the caller (see cParamType).
func cType(t *types.Type) string {
	if t == nil {
		return "void "
	}
	switch t.Kind {
	case types.Int:
		return "int64_t "
	case types.Float:
		return "double "
	case types.Bool:
		return "bool "
	case types.Str:
		return "const char *"
	case types.None:
		return "void "
	case types.List:
		return "List_" + listSuffix(t.Elem) + " "
	case types.Dict:
		return "Dict_str_" + listSuffix(t.Value) + " "
	case types.Class:
		return "struct " + t.Class + " "
	default:
		return "void "
	}
}

func cParamType(t *types.Type) string {
	if t != nil && t.Kind == types.Class {
		return "struct " + t.Class + " *"
	}
	return cType(t)
}

func listSuffix(elem *types.Type) string {
	if elem == nil {
		return "int"
	}
	switch elem.Kind {
	case types.Int:
		return "int"
	case types.Float:
		return "float"
	case types.Bool:
		return "bool"
	case types.Str:
		return "str"
	default:
		return "int"
	}
}

func mangleMethod(className, method string) string {
	return className + "__" + method
}

func classAttrName(className, attr string) string {
	return className + "_" + attr
}
