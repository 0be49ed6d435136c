package parser

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/lexer"
)

func (p *Parser) statement() (ast.Declaration, error) {
	switch {
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenTry):
		return p.tryStatement()
	case p.match(lexer.TokenRaise):
		return p.raiseStatement()
	case p.match(lexer.TokenReturn):
		return p.returnStatement()
	case p.match(lexer.TokenAssert):
		return p.assertStatement()
	case p.match(lexer.TokenBreak):
		pos := p.previous().Col
		if p.loopDepth == 0 {
			return nil, p.errf("'break' outside a loop")
		}
		p.consumeStmtEnd()
		return &ast.Break{Position: pos}, nil
	case p.match(lexer.TokenContinue):
		pos := p.previous().Col
		if p.loopDepth == 0 {
			return nil, p.errf("'continue' outside a loop")
		}
		p.consumeStmtEnd()
		return &ast.Continue{Position: pos}, nil
	case p.match(lexer.TokenPass):
		pos := p.previous().Col
		p.consumeStmtEnd()
		return &ast.Pass{Position: pos}, nil
	case p.match(lexer.TokenGlobal):
		return p.globalStatement()
	default:
		return p.simpleStatement()
	}
}

func (p *Parser) ifStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after if condition")
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Cond: cond, Then: then, Position: pos}
	for p.match(lexer.TokenElif) {
		epos := p.previous().Col
		econd, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.match(lexer.TokenColon) {
			return nil, p.errf("expected ':' after elif condition")
		}
		ebody, err := p.block()
		if err != nil {
			return nil, err
		}
		node.Elifs = append(node.Elifs, ast.ElifClause{Cond: econd, Body: ebody})
		_ = epos
	}
	if p.match(lexer.TokenElse) {
		if !p.match(lexer.TokenColon) {
			return nil, p.errf("expected ':' after else")
		}
		elseBody, err := p.block()
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	return node, nil
}

func (p *Parser) whileStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after while condition")
	}
	p.loopDepth++
	body, err := p.block()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Position: pos}, nil
}

func (p *Parser) forStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errf("expected loop variable name after 'for'")
	}
	varName := p.advance().Value
	if !p.match(lexer.TokenIn) {
		return nil, p.errf("expected 'in' after for-loop variable")
	}
	if !p.check(lexer.TokenIdentifier) || p.peek().Value != "range" {
		return nil, p.errf("'for' only supports iterating over range(...)")
	}
	p.advance()
	if !p.match(lexer.TokenLeftParen) {
		return nil, p.errf("expected '(' after 'range'")
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	var lo, hi ast.Expression
	if p.match(lexer.TokenComma) {
		lo = first
		hi, err = p.expression()
		if err != nil {
			return nil, err
		}
	} else {
		hi = first
	}
	if !p.match(lexer.TokenRightParen) {
		return nil, p.errf("expected ')' after range arguments")
	}
	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after for-loop header")
	}
	p.loopDepth++
	body, err := p.block()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: varName, RangeLo: lo, RangeHi: hi, Body: body, Position: pos}, nil
}

func (p *Parser) tryStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after 'try'")
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var handlers []ast.ExceptHandler
	for p.match(lexer.TokenExcept) {
		hpos := p.previous().Col
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errf("expected exception name after 'except'")
		}
		excName := p.advance().Value
		alias := ""
		if p.match(lexer.TokenAs) {
			if !p.check(lexer.TokenIdentifier) {
				return nil, p.errf("expected alias name after 'as'")
			}
			alias = p.advance().Value
		}
		if !p.match(lexer.TokenColon) {
			return nil, p.errf("expected ':' after except clause")
		}
		hbody, err := p.block()
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, ast.ExceptHandler{ExcName: excName, Alias: alias, Body: hbody, Position: hpos})
	}
	if len(handlers) == 0 {
		return nil, p.errf("'try' requires at least one 'except' clause")
	}
	return &ast.Try{Body: body, Handlers: handlers, Position: pos}, nil
}

func (p *Parser) raiseStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errf("expected exception name after 'raise'")
	}
	name := p.advance().Value
	var msg ast.Expression
	if p.match(lexer.TokenLeftParen) {
		if !p.check(lexer.TokenRightParen) {
			var err error
			msg, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		if !p.match(lexer.TokenRightParen) {
			return nil, p.errf("expected ')' after raise arguments")
		}
	}
	p.consumeStmtEnd()
	return &ast.Raise{ExcName: name, Message: msg, Position: pos}, nil
}

func (p *Parser) returnStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	if p.funcDepth == 0 {
		return nil, p.errf("'return' outside a function")
	}
	var value ast.Expression
	if !p.check(lexer.TokenNewline) && !p.check(lexer.TokenDedent) && !p.isAtEnd() {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.consumeStmtEnd()
	return &ast.Return{Value: value, Position: pos}, nil
}

func (p *Parser) assertStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeStmtEnd()
	return &ast.Assert{Cond: cond, Position: pos}, nil
}

func (p *Parser) globalStatement() (ast.Declaration, error) {
	pos := p.previous().Col
	names := []string{}
	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errf("expected name after 'global'")
	}
	names = append(names, p.advance().Value)
	for p.match(lexer.TokenComma) {
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errf("expected name after ','")
		}
		names = append(names, p.advance().Value)
	}
	p.consumeStmtEnd()
	return &ast.Global{Names: names, Position: pos}, nil
}

// simpleStatement handles the statement forms that start with an
// expression or a typed variable declaration: `name: Type = expr`,
// `target = expr`, `target op= expr`, or a bare expression statement.
func (p *Parser) simpleStatement() (ast.Declaration, error) {
	pos := p.peek().Col

	if p.check(lexer.TokenIdentifier) && p.checkNext(lexer.TokenColon) {
		name := p.advance().Value
		p.advance() // ':'
		ty, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		var init ast.Expression
		if p.match(lexer.TokenAssign) {
			init, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		p.consumeStmtEnd()
		return &ast.VarDecl{Name: name, Type: ty, Init: init, Position: pos}, nil
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if aug, ok := augOp(p.peek().Type); ok {
		p.advance()
		if !isAssignable(expr) {
			return nil, p.errf("invalid assignment target")
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.consumeStmtEnd()
		return &ast.AugAssign{Op: aug, Target: expr, Value: value, Position: pos}, nil
	}

	if p.match(lexer.TokenAssign) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !isAssignable(expr) {
			return nil, p.errf("invalid assignment target")
		}
		p.consumeStmtEnd()
		return &ast.Assign{Target: expr, Value: value, Position: pos}, nil
	}

	p.consumeStmtEnd()
	return &ast.ExprStmt{Expr: expr, Position: pos}, nil
}

func isAssignable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Name, *ast.Attr, *ast.Index:
		return true
	default:
		return false
	}
}

func augOp(t lexer.TokenType) (string, bool) {
	switch t {
	case lexer.TokenPlusAssign:
		return "+", true
	case lexer.TokenMinusAssign:
		return "-", true
	case lexer.TokenStarAssign:
		return "*", true
	case lexer.TokenSlashAssign:
		return "/", true
	case lexer.TokenSlashSlashAssign:
		return "//", true
	case lexer.TokenPercentAssign:
		return "%", true
	default:
		return "", false
	}
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}
