package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/sema"
	"github.com/pb-lang/pbc/pkg/types"
)

// genExpr renders e as a C99 expression. Some expression forms (f-
// strings, list literals) need
// statements emitted ahead of the expression itself; genExpr emits
// those directly to g.out before returning the expression text, which
// is safe because Go evaluates sub-expression calls before the
// caller assembles its own line.
func (g *Gen) genExpr(e ast.Expression) (string, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("INT64_C(%d)", x.Value), nil
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
	case *ast.FStrLit:
		return g.genFString(x)
	case *ast.Name:
		return g.genName(x)
	case *ast.ListLit:
		return g.genListLit(x)
	case *ast.DictLit:
		return "", fmt.Errorf("codegen: dict literal expressions are not supported")
	case *ast.Index:
		return g.genIndex(x)
	case *ast.Attr:
		return g.genAttr(x)
	case *ast.Call:
		return g.genCall(x)
	case *ast.Unary:
		return g.genUnary(x)
	case *ast.Binary:
		return g.genBinary(x)
	default:
		return "", fmt.Errorf("codegen: unsupported expression %T", e)
	}
}

func formatFloatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (g *Gen) genName(n *ast.Name) (string, error) {
	if n.Ident == "self" {
		return "self", nil
	}
	return n.Ident, nil
}

// genFString lowers an f-string to a snprintf call into a fresh stack
// buffer, choosing a format specifier per segment from its static
// type.
func (g *Gen) genFString(f *ast.FStrLit) (string, error) {
	buf := g.newTemp("fbuf")
	var format strings.Builder
	var args []string
	for _, seg := range f.Segments {
		if seg.Expr == nil {
			format.WriteString(escapeForFormat(seg.Text))
			continue
		}
		exprText, err := g.genExpr(seg.Expr)
		if err != nil {
			return "", err
		}
		ty := seg.Expr.ResolvedType()
		switch {
		case types.IsInt(ty):
			format.WriteString("%lld")
			args = append(args, "(long long)("+exprText+")")
		case types.IsFloat(ty):
			format.WriteString("%s")
			args = append(args, "pb_format_double("+exprText+")")
		case types.IsBool(ty):
			format.WriteString("%s")
			args = append(args, "((" +exprText+ ") ? \"True\" : \"False\")")
		case types.IsStr(ty):
			format.WriteString("%s")
			args = append(args, exprText)
		default:
			format.WriteString("%s")
			args = append(args, exprText)
		}
	}
	g.line("char %s[256];", buf)
	call := fmt.Sprintf("snprintf(%s, sizeof(%s), \"%s\"", buf, buf, format.String())
	for _, a := range args {
		call += ", " + a
	}
	call += ");"
	g.line("%s", call)
	return buf, nil
}

func escapeForFormat(s string) string {
	s = strings.ReplaceAll(s, "%", "%%")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

func (g *Gen) genListLit(l *ast.ListLit) (string, error) {
	ty := l.ResolvedType()
	suffix := listSuffix(ty.Elem)
	tmp := g.newTemp("list")
	g.line("List_%s %s;", suffix, tmp)
	g.line("List_%s_init(&%s);", suffix, tmp)
	for _, el := range l.Elems {
		v, err := g.genExpr(el)
		if err != nil {
			return "", err
		}
		g.line("List_%s_append(&%s, %s);", suffix, tmp, v)
	}
	return tmp, nil
}

func (g *Gen) genIndex(ix *ast.Index) (string, error) {
	base, err := g.genExpr(ix.Base)
	if err != nil {
		return "", err
	}
	idx, err := g.genExpr(ix.Idx)
	if err != nil {
		return "", err
	}
	baseTy := ix.Base.ResolvedType()
	if types.IsList(baseTy) {
		suffix := listSuffix(baseTy.Elem)
		return fmt.Sprintf("List_%s_get(&%s, %s)", suffix, base, idx), nil
	}
	suffix := listSuffix(baseTy.Value)
	return fmt.Sprintf("pb_dict_get_str_%s(&%s, %s)", suffix, base, idx), nil
}

// genAttr lowers base.Name. A Name base naming a class directly (not
// a local/global variable) is a static class-attribute or unbound
// method reference; everything else is instance attribute access
// through the base-chain path computed by attrPath, or, for a name
// that is only a class-level attribute, that attribute's global.
func (g *Gen) genAttr(a *ast.Attr) (string, error) {
	if a.StaticBase {
		name := a.Base.(*ast.Name)
		info := g.chk.Classes[name.Ident]
		if owner, _, ok := info.ResolveClassAttr(a.Name); ok {
			if _, _, isMethod := info.ResolveMethod(a.Name); !isMethod {
				return classAttrName(owner.Name, a.Name), nil
			}
		}
		return mangleMethod(info.Name, a.Name), nil
	}

	baseText, err := g.genExpr(a.Base)
	if err != nil {
		return "", err
	}
	baseTy := a.Base.ResolvedType()
	info := g.chk.Classes[baseTy.Class]
	arrow := "."
	if isPointerExpr(a.Base) {
		arrow = "->"
	}
	path, ok := attrPath(info, a.Name, false)
	if !ok {
		if owner, _, isClassAttr := info.ResolveClassAttr(a.Name); isClassAttr {
			return classAttrName(owner.Name, a.Name), nil
		}
		path, _ = attrPath(info, a.Name, true)
		return fmt.Sprintf("%s%s%s%s", baseText, arrow, path, mangleMethod(attrOwner(info, a.Name, true), a.Name)), nil
	}
	return fmt.Sprintf("%s%s%s%s", baseText, arrow, path, a.Name), nil
}

// isPointerExpr reports whether e is treated as a pointer in the
// generated C: only a bare `self` is; attribute chains rooted at self,
// locals, and factory results are treated as plain struct values.
func isPointerExpr(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Name:
		return x.Ident == "self"
	case *ast.Attr:
		return false
	default:
		return false
	}
}

func attrOwner(info *sema.ClassInfo, name string, isMethod bool) string {
	for cur := info; cur != nil; cur = cur.Base {
		if _, ok := cur.Methods[name]; ok {
			return cur.Name
		}
	}
	return info.Name
}

// padArgs extends a call's already-rendered argument texts with the
// default-value expressions of any trailing parameters the call
// omitted (PB allows omitting trailing default arguments; C has no
// such feature, so every call site must supply them explicitly).
func (g *Gen) padArgs(args []string, params []ast.Parameter, skip int) ([]string, error) {
	full := params
	if skip <= len(params) {
		full = params[skip:]
	}
	if len(args) >= len(full) {
		return args, nil
	}
	out := append([]string{}, args...)
	for i := len(args); i < len(full); i++ {
		if full[i].Default == nil {
			return nil, fmt.Errorf("codegen: missing required argument %q", full[i].Name)
		}
		v, err := g.genExpr(full[i].Default)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (g *Gen) genArgs(args []ast.Expression) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := g.genExpr(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// genCall lowers a call expression: a built-in (print, a conversion),
// a constructor call routed to Class_new, a plain function call, or a
// method call routed through genMethodCall.
func (g *Gen) genCall(call *ast.Call) (string, error) {
	switch callee := call.Callee.(type) {
	case *ast.Name:
		return g.genNamedCall(callee, call)
	case *ast.Attr:
		return g.genMethodCall(callee, call)
	default:
		return "", fmt.Errorf("codegen: unsupported call callee %T", call.Callee)
	}
}

func (g *Gen) genNamedCall(callee *ast.Name, call *ast.Call) (string, error) {
	args, err := g.genArgs(call.Args)
	if err != nil {
		return "", err
	}

	switch callee.Ident {
	case "print":
		return g.genPrintCall(call.Args[0], args[0])
	case "int", "float", "str", "bool":
		return g.genConversionCall(callee.Ident, call.Args[0], args[0])
	}
	if _, ok := g.chk.Classes[callee.Ident]; ok {
		if init, ok := g.methodParams[callee.Ident]["__init__"]; ok {
			padded, err := g.padArgs(args, init, 1)
			if err != nil {
				return "", err
			}
			args = padded
		}
		return fmt.Sprintf("%s_new(%s)", callee.Ident, strings.Join(args, ", ")), nil
	}
	if params, ok := g.funcParams[callee.Ident]; ok {
		padded, err := g.padArgs(args, params, 0)
		if err != nil {
			return "", err
		}
		args = padded
	}
	return fmt.Sprintf("%s(%s)", callee.Ident, strings.Join(args, ", ")), nil
}

// genPrintCall dispatches to the runtime print helper matching the
// argument's static type.
func (g *Gen) genPrintCall(argExpr ast.Expression, argText string) (string, error) {
	ty := argExpr.ResolvedType()
	switch {
	case types.IsInt(ty):
		return fmt.Sprintf("pb_print_int(%s)", argText), nil
	case types.IsFloat(ty):
		return fmt.Sprintf("pb_print_float(%s)", argText), nil
	case types.IsBool(ty):
		return fmt.Sprintf("pb_print_bool(%s)", argText), nil
	case types.IsStr(ty):
		return fmt.Sprintf("pb_print_str(%s)", argText), nil
	case types.IsList(ty):
		return fmt.Sprintf("List_%s_print(&%s)", listSuffix(ty.Elem), argText), nil
	case ty != nil && ty.Kind == types.None:
		return `pb_print_str("None")`, nil
	default:
		return fmt.Sprintf("pb_print_str(%s)", argText), nil
	}
}

func (g *Gen) genConversionCall(target string, argExpr ast.Expression, argText string) (string, error) {
	srcTy := argExpr.ResolvedType()
	switch target {
	case "int":
		switch {
		case types.IsStr(srcTy):
			return fmt.Sprintf("pb_str_to_int(%s)", argText), nil
		case types.IsFloat(srcTy), types.IsBool(srcTy):
			return fmt.Sprintf("(int64_t)(%s)", argText), nil
		default:
			return argText, nil
		}
	case "float":
		switch {
		case types.IsStr(srcTy):
			return fmt.Sprintf("pb_str_to_float(%s)", argText), nil
		case types.IsFloat(srcTy):
			return argText, nil
		default:
			return fmt.Sprintf("(double)(%s)", argText), nil
		}
	case "str":
		switch {
		case types.IsInt(srcTy):
			return fmt.Sprintf("pb_int_to_str(%s)", argText), nil
		case types.IsFloat(srcTy):
			return fmt.Sprintf("pb_format_double(%s)", argText), nil
		case types.IsBool(srcTy):
			return fmt.Sprintf("((%s) ? \"True\" : \"False\")", argText), nil
		default:
			return argText, nil
		}
	case "bool":
		switch {
		case types.IsStr(srcTy):
			return fmt.Sprintf("pb_str_to_bool(%s)", argText), nil
		case types.IsFloat(srcTy):
			return fmt.Sprintf("((%s) != 0.0)", argText), nil
		case types.IsBool(srcTy):
			return argText, nil
		default:
			return fmt.Sprintf("((%s) != 0)", argText), nil
		}
	}
	return "", fmt.Errorf("codegen: unknown conversion %q", target)
}

// genMethodCall lowers obj.method(args) and the unbound superclass
// form Base.method(self, args): static dispatch only, mangled
// directly to the method's defining class (no vtable).
func (g *Gen) genMethodCall(callee *ast.Attr, call *ast.Call) (string, error) {
	args, err := g.genArgs(call.Args)
	if err != nil {
		return "", err
	}

	if call.StaticDispatch {
		name := callee.Base.(*ast.Name)
		owner := g.chk.Classes[name.Ident]
		if params, ok := g.methodParams[owner.Name][callee.Name]; ok {
			padded, err := g.padArgs(args, params, 0)
			if err != nil {
				return "", err
			}
			args = padded
		}
		return fmt.Sprintf("%s(%s)", mangleMethod(owner.Name, callee.Name), strings.Join(args, ", ")), nil
	}

	baseText, err := g.genExpr(callee.Base)
	if err != nil {
		return "", err
	}
	baseTy := callee.Base.ResolvedType()
	info := g.chk.Classes[baseTy.Class]
	path, _ := attrPath(info, callee.Name, true)
	owner := attrOwner(info, callee.Name, true)
	if params, ok := g.methodParams[owner][callee.Name]; ok {
		padded, err := g.padArgs(args, params, 1)
		if err != nil {
			return "", err
		}
		args = padded
	}

	var selfExpr string
	if path == "" {
		if isPointerExpr(callee.Base) {
			selfExpr = baseText
		} else {
			selfExpr = "&" + baseText
		}
	} else {
		arrow := "."
		if isPointerExpr(callee.Base) {
			arrow = "->"
		}
		selfExpr = fmt.Sprintf("&(%s%s%s)", baseText, arrow, strings.TrimSuffix(path, "."))
	}

	allArgs := append([]string{selfExpr}, args...)
	return fmt.Sprintf("%s(%s)", mangleMethod(owner, callee.Name), strings.Join(allArgs, ", ")), nil
}

func (g *Gen) genUnary(u *ast.Unary) (string, error) {
	v, err := g.genExpr(u.Operand)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case "not":
		return fmt.Sprintf("(!(%s))", v), nil
	case "-":
		return fmt.Sprintf("(-(%s))", v), nil
	default:
		return "", fmt.Errorf("codegen: unknown unary operator %q", u.Op)
	}
}

// genBinary lowers a binary expression. String equality/ordering goes
// through strcmp (pointer equality would be wrong for distinct string
// literals with equal contents); "/" always yields a double; "//" and
// "%" follow the static result type sema already computed.
func (g *Gen) genBinary(b *ast.Binary) (string, error) {
	lhs, err := g.genExpr(b.Lhs)
	if err != nil {
		return "", err
	}
	rhs, err := g.genExpr(b.Rhs)
	if err != nil {
		return "", err
	}
	lhsTy := b.Lhs.ResolvedType()
	resTy := b.ResolvedType()

	switch b.Op {
	case "and":
		return fmt.Sprintf("((%s) && (%s))", lhs, rhs), nil
	case "or":
		return fmt.Sprintf("((%s) || (%s))", lhs, rhs), nil
	case "is":
		return fmt.Sprintf("((%s) == (%s))", lhs, rhs), nil
	case "is not":
		return fmt.Sprintf("((%s) != (%s))", lhs, rhs), nil
	case "==":
		if types.IsStr(lhsTy) {
			return fmt.Sprintf("(strcmp(%s, %s) == 0)", lhs, rhs), nil
		}
		return fmt.Sprintf("((%s) == (%s))", lhs, rhs), nil
	case "!=":
		if types.IsStr(lhsTy) {
			return fmt.Sprintf("(strcmp(%s, %s) != 0)", lhs, rhs), nil
		}
		return fmt.Sprintf("((%s) != (%s))", lhs, rhs), nil
	case "<", "<=", ">", ">=":
		if types.IsStr(lhsTy) {
			return fmt.Sprintf("(strcmp(%s, %s) %s 0)", lhs, rhs, b.Op), nil
		}
		return fmt.Sprintf("((%s) %s (%s))", lhs, b.Op, rhs), nil
	case "+":
		if types.IsStr(lhsTy) {
			return fmt.Sprintf("pb_str_concat(%s, %s)", lhs, rhs), nil
		}
		return fmt.Sprintf("((%s) + (%s))", lhs, rhs), nil
	case "-":
		return fmt.Sprintf("((%s) - (%s))", lhs, rhs), nil
	case "*":
		return fmt.Sprintf("((%s) * (%s))", lhs, rhs), nil
	case "/":
		return fmt.Sprintf("((double)(%s) / (double)(%s))", lhs, rhs), nil
	case "//":
		if types.IsFloat(resTy) {
			return fmt.Sprintf("(floor((%s) / (%s)))", lhs, rhs), nil
		}
		return fmt.Sprintf("((int64_t)(%s) / (int64_t)(%s))", lhs, rhs), nil
	case "%":
		if types.IsFloat(resTy) {
			return fmt.Sprintf("fmod(%s, %s)", lhs, rhs), nil
		}
		return fmt.Sprintf("((%s) %% (%s))", lhs, rhs), nil
	default:
		return "", fmt.Errorf("codegen: unknown binary operator %q", b.Op)
	}
}
