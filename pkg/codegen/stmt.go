package codegen

import (
	"fmt"
	"strconv"

	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/types"
)

// genBlock emits each declaration of body in order. Every statement
// kind PB allows inside a function/method/loop body is a Declaration
// (spec's grammar folds statements and declarations into one list).
func (g *Gen) genBlock(body []ast.Declaration) error {
	for _, d := range body {
		if err := g.genStmt(d); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gen) genStmt(d ast.Declaration) error {
	switch s := d.(type) {
	case *ast.VarDecl:
		return g.genVarDecl(s)
	case *ast.Assign:
		return g.genAssign(s)
	case *ast.AugAssign:
		return g.genAugAssign(s)
	case *ast.ExprStmt:
		v, err := g.genExpr(s.Expr)
		if err != nil {
			return err
		}
		g.line("%s;", v)
		return nil
	case *ast.If:
		return g.genIf(s)
	case *ast.While:
		return g.genWhile(s)
	case *ast.For:
		return g.genFor(s)
	case *ast.Try:
		return g.genTry(s)
	case *ast.Raise:
		return g.genRaise(s)
	case *ast.Return:
		return g.genReturn(s)
	case *ast.Assert:
		cond, err := g.genExpr(s.Cond)
		if err != nil {
			return err
		}
		g.line("if (!(%s)) { pb_fail(\"Assertion failed\"); }", cond)
		return nil
	case *ast.Break:
		g.line("break;")
		return nil
	case *ast.Continue:
		g.line("continue;")
		return nil
	case *ast.Pass:
		g.line("/* pass */;")
		return nil
	case *ast.Global:
		return nil
	case *ast.ClassDef, *ast.FuncDef, *ast.Import:
		return fmt.Errorf("codegen: %T is not valid inside a function body", d)
	default:
		return fmt.Errorf("codegen: unsupported statement %T", d)
	}
}

func (g *Gen) genVarDecl(s *ast.VarDecl) error {
	if s.Init == nil {
		ty := g.resolveAnnotation(s.Type)
		g.line("%s%s;", cType(ty), s.Name)
		return nil
	}
	v, err := g.genExpr(s.Init)
	if err != nil {
		return err
	}
	g.line("%s%s = %s;", cType(s.Init.ResolvedType()), s.Name, v)
	return nil
}

// resolveAnnotation re-derives a types.Type from a source-level
// TypeAnnotation for the rare VarDecl with no initializer, where
// there is no already-typed expression to read the declared type
// from. Mirrors pkg/sema's own (unexported) annotation resolution.
func (g *Gen) resolveAnnotation(a *ast.TypeAnnotation) *types.Type {
	if a == nil {
		return types.PrimNone()
	}
	switch a.Name {
	case "int":
		return types.PrimInt()
	case "float":
		return types.PrimFloat()
	case "bool":
		return types.PrimBool()
	case "str":
		return types.PrimStr()
	case "None":
		return types.PrimNone()
	case "list":
		return types.ListOf(g.resolveAnnotation(a.Elem))
	case "dict":
		return types.DictOf(g.resolveAnnotation(a.Value))
	default:
		return types.ClassOf(a.Name)
	}
}

func (g *Gen) genAssign(s *ast.Assign) error {
	// list[i] = v and dict[k] = v have no C lvalue form (genIndex's
	// read path calls a getter function); they lower to a setter call
	// instead of a plain assignment.
	if ix, ok := s.Target.(*ast.Index); ok {
		return g.genIndexAssign(ix, s.Value)
	}
	target, err := g.genExpr(s.Target)
	if err != nil {
		return err
	}
	value, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	g.line("%s = %s;", target, value)
	return nil
}

func (g *Gen) genIndexAssign(ix *ast.Index, valueExpr ast.Expression) error {
	base, err := g.genExpr(ix.Base)
	if err != nil {
		return err
	}
	idx, err := g.genExpr(ix.Idx)
	if err != nil {
		return err
	}
	value, err := g.genExpr(valueExpr)
	if err != nil {
		return err
	}
	baseTy := ix.Base.ResolvedType()
	if types.IsList(baseTy) {
		suffix := listSuffix(baseTy.Elem)
		g.line("List_%s_set(&%s, %s, %s);", suffix, base, idx, value)
		return nil
	}
	suffix := listSuffix(baseTy.Value)
	g.line("Dict_str_%s_set(&%s, %s, %s);", suffix, base, idx, value)
	return nil
}

func (g *Gen) genAugAssign(s *ast.AugAssign) error {
	op := map[string]string{"+": "+", "-": "-", "*": "*", "/": "/", "//": "/", "%": "%"}[s.Op]

	if ix, ok := s.Target.(*ast.Index); ok {
		read, err := g.genIndex(ix)
		if err != nil {
			return err
		}
		value, err := g.genExpr(s.Value)
		if err != nil {
			return err
		}
		newValue := fmt.Sprintf("(%s) %s (%s)", read, op, value)
		if s.Op == "/" {
			newValue = fmt.Sprintf("(double)(%s) / (double)(%s)", read, value)
		}
		base, err := g.genExpr(ix.Base)
		if err != nil {
			return err
		}
		idx, err := g.genExpr(ix.Idx)
		if err != nil {
			return err
		}
		baseTy := ix.Base.ResolvedType()
		if types.IsList(baseTy) {
			g.line("List_%s_set(&%s, %s, %s);", listSuffix(baseTy.Elem), base, idx, newValue)
			return nil
		}
		g.line("Dict_str_%s_set(&%s, %s, %s);", listSuffix(baseTy.Value), base, idx, newValue)
		return nil
	}

	target, err := g.genExpr(s.Target)
	if err != nil {
		return err
	}
	value, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	if s.Op == "/" {
		g.line("%s = (double)(%s) / (double)(%s);", target, target, value)
		return nil
	}
	g.line("%s = %s %s (%s);", target, target, op, value)
	return nil
}

func (g *Gen) genIf(s *ast.If) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.line("if (%s) {", cond)
	if err := g.genBlock(s.Then); err != nil {
		return err
	}
	g.line("}")
	for _, e := range s.Elifs {
		ec, err := g.genExpr(e.Cond)
		if err != nil {
			return err
		}
		g.line("else if (%s) {", ec)
		if err := g.genBlock(e.Body); err != nil {
			return err
		}
		g.line("}")
	}
	if len(s.Else) > 0 {
		g.line("else {")
		if err := g.genBlock(s.Else); err != nil {
			return err
		}
		g.line("}")
	}
	return nil
}

func (g *Gen) genWhile(s *ast.While) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.line("while (%s) {", cond)
	if err := g.genBlock(s.Body); err != nil {
		return err
	}
	g.line("}")
	return nil
}

// genFor lowers `for v in range(lo, hi): body` to a plain C for loop;
// range()'s bounds are always int (enforced by pkg/sema).
func (g *Gen) genFor(s *ast.For) error {
	lo := "INT64_C(0)"
	if s.RangeLo != nil {
		v, err := g.genExpr(s.RangeLo)
		if err != nil {
			return err
		}
		lo = v
	}
	hi, err := g.genExpr(s.RangeHi)
	if err != nil {
		return err
	}
	g.line("for (int64_t %s = %s; %s < %s; %s++) {", s.Var, lo, s.Var, hi, s.Var)
	if err := g.genBlock(s.Body); err != nil {
		return err
	}
	g.line("}")
	return nil
}

// genTry lowers try/except to setjmp/longjmp: pb_push_try records a
// jmp_buf on the runtime's exception stack; a thrown exception
// longjmps back here, where setjmp's nonzero return selects the
// matching except clause by name, falling through to pb_reraise when
// none matches.
func (g *Gen) genTry(s *ast.Try) error {
	g.tryDepth++
	g.line("{")
	g.line("pb_push_try();")
	g.line("if (setjmp(pb_current_try->buf) == 0) {")
	if err := g.genBlock(s.Body); err != nil {
		return err
	}
	g.line("    pb_pop_try();")
	g.line("} else {")
	for i, h := range s.Handlers {
		keyword := "if"
		if i > 0 {
			keyword = "else if"
		}
		g.line("    %s (pb_current_exc_matches(\"%s\")) {", keyword, h.ExcName)
		if h.Alias != "" {
			g.line("        const char *%s = pb_current_exc_message();", h.Alias)
		}
		g.line("        pb_pop_try();")
		g.line("        pb_clear_exc();")
		if err := g.genBlock(h.Body); err != nil {
			return err
		}
		g.line("    }")
	}
	g.line("    else {")
	g.line("        pb_pop_try();")
	g.line("        pb_reraise();")
	g.line("    }")
	g.line("}")
	g.line("}")
	g.tryDepth--
	return nil
}

func (g *Gen) genRaise(s *ast.Raise) error {
	if s.Message != nil {
		msg, err := g.genExpr(s.Message)
		if err != nil {
			return err
		}
		g.line("pb_raise_msg(\"%s\", %s);", s.ExcName, msg)
		return nil
	}
	g.line("pb_raise_msg(\"%s\", \"\");", s.ExcName)
	return nil
}

func (g *Gen) genReturn(s *ast.Return) error {
	if s.Value == nil {
		g.line("return;")
		return nil
	}
	v, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	g.line("return %s;", v)
	return nil
}

// constExpr renders a compile-time-constant expression for a static
// class-attribute initializer: literals, and unary minus applied to a
// numeric literal.
func (g *Gen) constExpr(e ast.Expression) (string, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(x.Value, 10), nil
	case *ast.FloatLit:
		return formatFloatLiteral(x.Value), nil
	case *ast.BoolLit:
		if x.Value {
			return "true", nil
		}
		return "false", nil
	case *ast.StrLit:
		return strconv.Quote(x.Value), nil
	case *ast.NoneLit:
		return "0", nil
	case *ast.Unary:
		if x.Op == "-" {
			v, err := g.constExpr(x.Operand)
			if err != nil {
				return "", err
			}
			return "-" + v, nil
		}
	}
	return "", fmt.Errorf("codegen: class attribute initializer must be a compile-time constant, got %T", e)
}
