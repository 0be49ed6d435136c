package sema

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/types"
)

// checkExpr types e, recording the result on e itself (every
// expression carries exactly one resolved type after a successful
// check) and returning it.
func (c *Checker) checkExpr(e ast.Expression) (*types.Type, error) {
	var ty *types.Type
	var err error

	switch x := e.(type) {
	case *ast.IntLit:
		ty = types.PrimInt()
	case *ast.FloatLit:
		ty = types.PrimFloat()
	case *ast.BoolLit:
		ty = types.PrimBool()
	case *ast.StrLit:
		ty = types.PrimStr()
	case *ast.NoneLit:
		ty = types.PrimNone()
	case *ast.FStrLit:
		ty, err = c.checkFStrLit(x)
	case *ast.Name:
		ty, err = c.checkName(x)
	case *ast.ListLit:
		ty, err = c.checkListLit(x)
	case *ast.DictLit:
		ty, err = c.checkDictLit(x)
	case *ast.Index:
		ty, err = c.checkIndex(x)
	case *ast.Attr:
		ty, err = c.checkAttr(x)
	case *ast.Call:
		ty, err = c.checkCall(x)
	case *ast.Unary:
		ty, err = c.checkUnary(x)
	case *ast.Binary:
		ty, err = c.checkBinary(x)
	default:
		return nil, typeErr(e.Pos(), "unsupported expression")
	}
	if err != nil {
		return nil, err
	}
	e.SetResolvedType(ty)
	return ty, nil
}

func (c *Checker) checkFStrLit(f *ast.FStrLit) (*types.Type, error) {
	for _, seg := range f.Segments {
		if seg.Expr == nil {
			continue
		}
		if _, err := c.checkExpr(seg.Expr); err != nil {
			return nil, err
		}
	}
	return types.PrimStr(), nil
}

func (c *Checker) checkName(n *ast.Name) (*types.Type, error) {
	if ty, ok := c.lookupName(n.Ident); ok {
		return ty, nil
	}
	return nil, typeErr(n.Position, "undeclared name %q", n.Ident)
}

func (c *Checker) checkListLit(l *ast.ListLit) (*types.Type, error) {
	if len(l.Elems) == 0 {
		return types.ListOf(&types.Type{Kind: types.Invalid}), nil
	}
	first, err := c.checkExpr(l.Elems[0])
	if err != nil {
		return nil, err
	}
	for _, el := range l.Elems[1:] {
		ty, err := c.checkExpr(el)
		if err != nil {
			return nil, err
		}
		if !assignableTo(c, ty, first) && !assignableTo(c, first, ty) {
			return nil, typeErr(el.Pos(), "list elements must share a type, got %s and %s", first, ty)
		}
	}
	return types.ListOf(first), nil
}

func (c *Checker) checkDictLit(d *ast.DictLit) (*types.Type, error) {
	if len(d.Pairs) == 0 {
		return types.DictOf(&types.Type{Kind: types.Invalid}), nil
	}
	var valueTy *types.Type
	for i, p := range d.Pairs {
		kt, err := c.checkExpr(p.Key)
		if err != nil {
			return nil, err
		}
		if !types.IsStr(kt) {
			return nil, typeErr(p.Key.Pos(), "dict keys must be str, got %s", kt)
		}
		vt, err := c.checkExpr(p.Value)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			valueTy = vt
			continue
		}
		if !assignableTo(c, vt, valueTy) {
			return nil, typeErr(p.Value.Pos(), "dict values must share a type, got %s and %s", valueTy, vt)
		}
	}
	return types.DictOf(valueTy), nil
}

func (c *Checker) checkIndex(ix *ast.Index) (*types.Type, error) {
	base, err := c.checkExpr(ix.Base)
	if err != nil {
		return nil, err
	}
	idx, err := c.checkExpr(ix.Idx)
	if err != nil {
		return nil, err
	}
	switch {
	case types.IsList(base):
		if !types.IsInt(idx) {
			return nil, typeErr(ix.Position, "list index must be int, got %s", idx)
		}
		return base.Elem, nil
	case types.IsDict(base):
		if !types.IsStr(idx) {
			return nil, typeErr(ix.Position, "dict key must be str, got %s", idx)
		}
		return base.Value, nil
	default:
		return nil, typeErr(ix.Position, "cannot index into %s", base)
	}
}

func (c *Checker) checkAttr(a *ast.Attr) (*types.Type, error) {
	if name, ok := a.Base.(*ast.Name); ok {
		if _, isLocal := c.lookupName(name.Ident); !isLocal {
			if cls, ok := c.Classes[name.Ident]; ok {
				a.StaticBase = true
				name.SetResolvedType(types.ClassOf(name.Ident))
				if _, m, ok := cls.ResolveMethod(a.Name); ok {
					return funcType(m), nil
				}
				if _, t, ok := cls.ResolveClassAttr(a.Name); ok {
					return t, nil
				}
				return nil, typeErr(a.Position, "class %q has no member %q", name.Ident, a.Name)
			}
		}
	}

	base, err := c.checkExpr(a.Base)
	if err != nil {
		return nil, err
	}
	info := c.classInfoOf(base)
	if info == nil {
		return nil, typeErr(a.Position, "cannot access attribute %q on %s", a.Name, base)
	}
	if t, ok := info.ResolveAttr(a.Name); ok {
		return t, nil
	}
	if _, m, ok := info.ResolveMethod(a.Name); ok {
		return funcType(m), nil
	}
	if _, t, ok := info.ResolveClassAttr(a.Name); ok {
		return t, nil
	}
	return nil, typeErr(a.Position, "%s has no attribute %q", base, a.Name)
}

func funcType(f *FuncInfo) *types.Type {
	params := make([]*types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return &types.Type{Kind: types.Func, Params: params, Ret: f.Ret}
}

func (c *Checker) checkCall(call *ast.Call) (*types.Type, error) {
	switch callee := call.Callee.(type) {
	case *ast.Name:
		return c.checkNamedCall(callee, call)
	case *ast.Attr:
		return c.checkMethodCall(callee, call)
	default:
		return nil, typeErr(call.Position, "expression is not callable")
	}
}

func (c *Checker) checkNamedCall(callee *ast.Name, call *ast.Call) (*types.Type, error) {
	if callee.Ident == "print" {
		if len(call.Args) != 1 {
			return nil, typeErr(call.Position, "print() takes exactly 1 argument, got %d", len(call.Args))
		}
		if _, err := c.checkExpr(call.Args[0]); err != nil {
			return nil, err
		}
		callee.SetResolvedType(types.PrimNone())
		return types.PrimNone(), nil
	}
	if conversionBuiltins[callee.Ident] {
		if len(call.Args) != 1 {
			return nil, typeErr(call.Position, "%s() takes exactly 1 argument, got %d", callee.Ident, len(call.Args))
		}
		argTy, err := c.checkExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		ret, err := convertResultType(callee.Ident, argTy)
		if err != nil {
			return nil, err
		}
		callee.SetResolvedType(ret)
		return ret, nil
	}
	if info, ok := c.Classes[callee.Ident]; ok {
		_, init, hasInit := info.ResolveMethod("__init__")
		params := []ParamInfo{}
		if hasInit {
			params = init.Params[1:]
		}
		if err := c.checkArgs(call, params); err != nil {
			return nil, err
		}
		callee.SetResolvedType(types.ClassOf(callee.Ident))
		return types.ClassOf(callee.Ident), nil
	}
	if _, isLocal := c.lookupName(callee.Ident); isLocal {
		return nil, typeErr(call.Position, "%q is not callable", callee.Ident)
	}
	fn, ok := c.Funcs[callee.Ident]
	if !ok {
		return nil, typeErr(call.Position, "undefined function %q", callee.Ident)
	}
	if err := c.checkArgs(call, fn.Params); err != nil {
		return nil, err
	}
	callee.SetResolvedType(funcType(fn))
	return fn.Ret, nil
}

// checkMethodCall handles both an instance method call (obj.m(...))
// and an unbound superclass call (Base.__init__(self, ...)), the
// latter distinguished by the callee's base naming a class directly
// rather than a variable.
func (c *Checker) checkMethodCall(callee *ast.Attr, call *ast.Call) (*types.Type, error) {
	if name, ok := callee.Base.(*ast.Name); ok {
		if _, isLocal := c.lookupName(name.Ident); !isLocal {
			if cls, ok := c.Classes[name.Ident]; ok {
				_, m, ok := cls.ResolveMethod(callee.Name)
				if !ok {
					return nil, typeErr(call.Position, "class %q has no method %q", name.Ident, callee.Name)
				}
				if err := c.checkArgs(call, m.Params); err != nil {
					return nil, err
				}
				callee.StaticBase = true
				call.StaticDispatch = true
				name.SetResolvedType(types.ClassOf(name.Ident))
				callee.SetResolvedType(funcType(m))
				return m.Ret, nil
			}
		}
	}

	baseTy, err := c.checkExpr(callee.Base)
	if err != nil {
		return nil, err
	}
	info := c.classInfoOf(baseTy)
	if info == nil {
		return nil, typeErr(call.Position, "cannot call method %q on %s", callee.Name, baseTy)
	}
	_, m, ok := info.ResolveMethod(callee.Name)
	if !ok {
		return nil, typeErr(call.Position, "%s has no method %q", baseTy, callee.Name)
	}
	if err := c.checkArgs(call, m.Params[1:]); err != nil {
		return nil, err
	}
	callee.SetResolvedType(funcType(m))
	return m.Ret, nil
}

func (c *Checker) checkArgs(call *ast.Call, params []ParamInfo) error {
	required := 0
	for _, p := range params {
		if !p.HasDefault {
			required++
		}
	}
	if len(call.Args) < required || len(call.Args) > len(params) {
		return typeErr(call.Position, "wrong number of arguments: got %d, want %d", len(call.Args), len(params))
	}
	for i, arg := range call.Args {
		got, err := c.checkExpr(arg)
		if err != nil {
			return err
		}
		if !assignableTo(c, got, params[i].Type) {
			return typeErr(arg.Pos(), "argument %d has type %s, want %s", i+1, got, params[i].Type)
		}
	}
	return nil
}

func convertResultType(name string, from *types.Type) (*types.Type, error) {
	switch name {
	case "int":
		return types.PrimInt(), nil
	case "float":
		return types.PrimFloat(), nil
	case "str":
		return types.PrimStr(), nil
	case "bool":
		return types.PrimBool(), nil
	}
	return nil, typeErr(0, "unknown conversion %q", name)
}

func (c *Checker) checkUnary(u *ast.Unary) (*types.Type, error) {
	operand, err := c.checkExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "not":
		if !types.IsBool(operand) {
			return nil, typeErr(u.Position, "'not' requires bool, got %s", operand)
		}
		return types.PrimBool(), nil
	case "-":
		if !types.Numeric(operand) {
			return nil, typeErr(u.Position, "unary '-' requires int or float, got %s", operand)
		}
		return operand, nil
	default:
		return nil, typeErr(u.Position, "unknown unary operator %q", u.Op)
	}
}

func (c *Checker) checkBinary(b *ast.Binary) (*types.Type, error) {
	lhs, err := c.checkExpr(b.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := c.checkExpr(b.Rhs)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case "and", "or":
		if !types.IsBool(lhs) || !types.IsBool(rhs) {
			return nil, typeErr(b.Position, "'%s' requires bool operands, got %s and %s", b.Op, lhs, rhs)
		}
		return types.PrimBool(), nil
	case "is", "is not":
		if !types.IsBool(lhs) || !types.IsBool(rhs) {
			return nil, typeErr(b.Position, "'%s' is only defined between bool operands, got %s and %s", b.Op, lhs, rhs)
		}
		return types.PrimBool(), nil
	case "==", "!=":
		if !types.Equal(lhs, rhs) && !types.Widens(lhs, rhs) && !types.Widens(rhs, lhs) {
			return nil, typeErr(b.Position, "cannot compare %s and %s", lhs, rhs)
		}
		return types.PrimBool(), nil
	case "<", "<=", ">", ">=":
		if types.Numeric(lhs) && types.Numeric(rhs) {
			return types.PrimBool(), nil
		}
		if types.IsStr(lhs) && types.IsStr(rhs) {
			return types.PrimBool(), nil
		}
		return nil, typeErr(b.Position, "'%s' requires matching numeric or str operands, got %s and %s", b.Op, lhs, rhs)
	case "+":
		if types.IsStr(lhs) && types.IsStr(rhs) {
			return types.PrimStr(), nil
		}
		return c.arithmeticResult(b, lhs, rhs)
	case "-", "*", "/", "//", "%":
		return c.arithmeticResult(b, lhs, rhs)
	default:
		return nil, typeErr(b.Position, "unknown binary operator %q", b.Op)
	}
}

// arithmeticResult implements the numeric-promotion rule: int op int
// -> int (except "/" which always yields float), any
// float operand promotes the result to float. bool is deliberately
// excluded from Numeric (see types.Numeric).
func (c *Checker) arithmeticResult(b *ast.Binary, lhs, rhs *types.Type) (*types.Type, error) {
	if !types.Numeric(lhs) || !types.Numeric(rhs) {
		return nil, typeErr(b.Position, "'%s' requires numeric operands, got %s and %s", b.Op, lhs, rhs)
	}
	if b.Op == "/" {
		return types.PrimFloat(), nil
	}
	if types.IsFloat(lhs) || types.IsFloat(rhs) {
		return types.PrimFloat(), nil
	}
	return types.PrimInt(), nil
}
