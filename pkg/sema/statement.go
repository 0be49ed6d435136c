package sema

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/types"
)

// checkTopLevel dispatches a single module-level declaration: class
// bodies and function bodies get their own scope; everything else is
// a bare statement executed in module scope.
func (c *Checker) checkTopLevel(decl ast.Declaration) error {
	switch d := decl.(type) {
	case *ast.ClassDef:
		return c.checkClass(d)
	case *ast.FuncDef:
		return c.checkFunc(d, nil)
	case *ast.Import:
		return nil
	default:
		return c.checkStmt(decl)
	}
}

func (c *Checker) checkClass(cd *ast.ClassDef) error {
	info := c.Classes[cd.Name]
	prevClass := c.currentClass
	c.currentClass = info
	defer func() { c.currentClass = prevClass }()

	for _, m := range cd.Methods {
		if err := c.checkFunc(m, info); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkFunc(f *ast.FuncDef, owner *ClassInfo) error {
	var info *FuncInfo
	if owner != nil {
		info = owner.Methods[f.Name]
	} else {
		info = c.Funcs[f.Name]
	}

	prevFunc, prevScope, prevGlobals := c.currentFunc, c.scope, c.globalWrites
	c.currentFunc = info
	c.scope = map[string]*types.Type{}
	c.globalWrites = map[string]bool{}
	defer func() {
		c.currentFunc, c.scope, c.globalWrites = prevFunc, prevScope, prevGlobals
	}()

	if owner != nil {
		if len(f.Params) == 0 || f.Params[0].Name != "self" {
			return typeErr(f.Position, "method %q must take 'self' as its first parameter", f.Name)
		}
		c.scope["self"] = types.ClassOf(owner.Name)
		for i, p := range f.Params[1:] {
			c.scope[p.Name] = info.Params[i+1].Type
			if err := c.checkDefault(p, info.Params[i+1].Type); err != nil {
				return err
			}
		}
	} else {
		for i, p := range f.Params {
			c.scope[p.Name] = info.Params[i].Type
			if err := c.checkDefault(p, info.Params[i].Type); err != nil {
				return err
			}
		}
	}

	for _, s := range f.Body {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkDefault(p ast.Parameter, want *types.Type) error {
	if p.Default == nil {
		return nil
	}
	got, err := c.checkExpr(p.Default)
	if err != nil {
		return err
	}
	if !assignableTo(c, got, want) {
		return typeErr(p.Position, "default value for %q has type %s, want %s", p.Name, got, want)
	}
	return nil
}

func (c *Checker) checkBlock(stmts []ast.Declaration) error {
	for _, s := range stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(decl ast.Declaration) error {
	switch s := decl.(type) {
	case *ast.VarDecl:
		return c.checkVarDecl(s)
	case *ast.Assign:
		return c.checkAssign(s)
	case *ast.AugAssign:
		return c.checkAugAssign(s)
	case *ast.ExprStmt:
		_, err := c.checkExpr(s.Expr)
		return err
	case *ast.If:
		return c.checkIf(s)
	case *ast.While:
		if _, err := c.checkExpr(s.Cond); err != nil {
			return err
		}
		return c.checkBlock(s.Body)
	case *ast.For:
		return c.checkFor(s)
	case *ast.Try:
		return c.checkTry(s)
	case *ast.Raise:
		return c.checkRaise(s)
	case *ast.Return:
		return c.checkReturn(s)
	case *ast.Assert:
		_, err := c.checkExpr(s.Cond)
		return err
	case *ast.Global:
		for _, n := range s.Names {
			if _, ok := c.Globals[n]; !ok {
				return typeErr(s.Position, "'global %s' refers to an undeclared module-level variable", n)
			}
			c.globalWrites[n] = true
		}
		return nil
	case *ast.Break, *ast.Continue, *ast.Pass:
		return nil
	default:
		return typeErr(decl.Pos(), "unsupported statement")
	}
}

func (c *Checker) checkVarDecl(v *ast.VarDecl) error {
	want, err := c.resolveAnnotation(v.Type)
	if err != nil {
		return err
	}
	if v.Init != nil {
		got, err := c.checkExpr(v.Init)
		if err != nil {
			return err
		}
		if !assignableTo(c, got, want) {
			return typeErr(v.Position, "cannot assign %s to %q of type %s", got, v.Name, want)
		}
	}
	if c.currentFunc == nil {
		c.Globals[v.Name] = want
		c.GlobalOrder = append(c.GlobalOrder, v.Name)
	} else {
		c.scope[v.Name] = want
	}
	return nil
}

func (c *Checker) checkAssign(a *ast.Assign) error {
	got, err := c.checkExpr(a.Value)
	if err != nil {
		return err
	}
	want, err := c.checkAssignTarget(a.Target)
	if err != nil {
		return err
	}
	if !assignableTo(c, got, want) {
		return typeErr(a.Position, "cannot assign %s to target of type %s", got, want)
	}
	return nil
}

func (c *Checker) checkAugAssign(a *ast.AugAssign) error {
	want, err := c.checkAssignTarget(a.Target)
	if err != nil {
		return err
	}
	rhs, err := c.checkExpr(a.Value)
	if err != nil {
		return err
	}
	if a.Op == "+" && types.IsStr(want) {
		if !types.IsStr(rhs) {
			return typeErr(a.Position, "cannot += str with %s", rhs)
		}
		return nil
	}
	if !types.Numeric(want) || !types.Numeric(rhs) {
		return typeErr(a.Position, "compound assignment requires numeric operands, got %s and %s", want, rhs)
	}
	return nil
}

// checkAssignTarget types an assignment target, resolving Name/Attr/
// Index the way the corresponding expression would but permitting a
// write through it. Every name must already carry a declared type
// (via VarDecl or a parameter) — PB is statically typed throughout,
// so a bare `x = 1` to an undeclared name is a type error.
func (c *Checker) checkAssignTarget(target ast.Expression) (*types.Type, error) {
	switch t := target.(type) {
	case *ast.Name:
		if ty, ok := c.scope[t.Ident]; ok {
			t.SetResolvedType(ty)
			return ty, nil
		}
		ty, ok := c.Globals[t.Ident]
		if !ok {
			return nil, typeErr(t.Position, "assignment to undeclared name %q", t.Ident)
		}
		if c.currentFunc != nil && !c.globalWrites[t.Ident] {
			return nil, typeErr(t.Position, "assignment to global %q requires a 'global' declaration", t.Ident)
		}
		t.SetResolvedType(ty)
		return ty, nil
	case *ast.Attr, *ast.Index:
		return c.checkExpr(target)
	default:
		return nil, typeErr(target.Pos(), "invalid assignment target")
	}
}

func (c *Checker) checkIf(s *ast.If) error {
	if _, err := c.checkExpr(s.Cond); err != nil {
		return err
	}
	if err := c.checkBlock(s.Then); err != nil {
		return err
	}
	for _, e := range s.Elifs {
		if _, err := c.checkExpr(e.Cond); err != nil {
			return err
		}
		if err := c.checkBlock(e.Body); err != nil {
			return err
		}
	}
	return c.checkBlock(s.Else)
}

func (c *Checker) checkFor(s *ast.For) error {
	if s.RangeLo != nil {
		if ty, err := c.checkExpr(s.RangeLo); err != nil {
			return err
		} else if !types.IsInt(ty) {
			return typeErr(s.Position, "range() bounds must be int, got %s", ty)
		}
	}
	if ty, err := c.checkExpr(s.RangeHi); err != nil {
		return err
	} else if !types.IsInt(ty) {
		return typeErr(s.Position, "range() bounds must be int, got %s", ty)
	}
	prev, hadPrev := c.scope[s.Var]
	c.scope[s.Var] = types.PrimInt()
	err := c.checkBlock(s.Body)
	if hadPrev {
		c.scope[s.Var] = prev
	} else {
		delete(c.scope, s.Var)
	}
	return err
}

func (c *Checker) checkTry(s *ast.Try) error {
	if err := c.checkBlock(s.Body); err != nil {
		return err
	}
	for _, h := range s.Handlers {
		if !isBuiltinException(h.ExcName) {
			if _, ok := c.Classes[h.ExcName]; !ok {
				return typeErr(h.Position, "unknown exception type %q", h.ExcName)
			}
		}
		if h.Alias != "" {
			prev, had := c.scope[h.Alias]
			c.scope[h.Alias] = types.PrimStr()
			err := c.checkBlock(h.Body)
			if had {
				c.scope[h.Alias] = prev
			} else {
				delete(c.scope, h.Alias)
			}
			if err != nil {
				return err
			}
			continue
		}
		if err := c.checkBlock(h.Body); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkRaise(s *ast.Raise) error {
	if !isBuiltinException(s.ExcName) {
		if _, ok := c.Classes[s.ExcName]; !ok {
			return typeErr(s.Position, "unknown exception type %q", s.ExcName)
		}
	}
	if s.Message != nil {
		ty, err := c.checkExpr(s.Message)
		if err != nil {
			return err
		}
		if !types.IsStr(ty) {
			return typeErr(s.Position, "exception message must be str, got %s", ty)
		}
	}
	return nil
}

func (c *Checker) checkReturn(s *ast.Return) error {
	want := types.PrimNone()
	if c.currentFunc != nil {
		want = c.currentFunc.Ret
	}
	if s.Value == nil {
		if !types.IsNone(want) {
			return typeErr(s.Position, "missing return value, function returns %s", want)
		}
		return nil
	}
	got, err := c.checkExpr(s.Value)
	if err != nil {
		return err
	}
	if !assignableTo(c, got, want) {
		return typeErr(s.Position, "return type %s does not match declared %s", got, want)
	}
	return nil
}

// lookupName resolves a name for reading: the local scope (locals,
// parameters, loop variables, except-aliases) first, then the module
// scope. Reading an enclosing global needs no `global` declaration;
// only writing one does (checked separately in checkAssignTarget).
func (c *Checker) lookupName(name string) (*types.Type, bool) {
	if ty, ok := c.scope[name]; ok {
		return ty, true
	}
	ty, ok := c.Globals[name]
	return ty, ok
}

// assignableTo implements the assignability rule: exact structural
// match, primitive widening (bool->int->float), or subclass-to-
// superclass widening.
func assignableTo(c *Checker, got, want *types.Type) bool {
	if types.Equal(got, want) {
		return true
	}
	if types.Widens(got, want) {
		return true
	}
	if types.IsClass(got) && types.IsClass(want) {
		sub := c.Classes[got.Class]
		sup := c.Classes[want.Class]
		if sub != nil && sup != nil && sub.IsSubclassOf(sup) {
			return true
		}
	}
	return false
}
