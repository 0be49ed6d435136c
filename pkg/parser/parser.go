// Package parser implements C4: a recursive-descent parser producing
// the pkg/ast tree and rejecting structural violations (empty bodies,
// break/continue/return misplacement, duplicate parameters, chained
// comparisons, keyword assignment, default-before-required
// parameters).
package parser

import (
	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/diag"
	"github.com/pb-lang/pbc/pkg/lexer"
)

// Parser walks a flat token stream built by pkg/lexer.
type Parser struct {
	tokens    []lexer.Token
	current   int
	loopDepth int
	funcDepth int
}

// New constructs a Parser over a token stream.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the full token stream into a Program, or returns the
// first ParserError encountered.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{Declarations: []ast.Declaration{}}
	p.skipNewlines()
	for !p.isAtEnd() {
		decl, err := p.topLevelDeclaration()
		if err != nil {
			return nil, err
		}
		prog.Declarations = append(prog.Declarations, decl)
		p.skipNewlines()
	}
	return prog, nil
}

// ParseExprString lexes and parses a single standalone expression —
// used by the f-string lowering in primary() to recursively tokenise
// and parse each `{...}` placeholder.
func ParseExprString(s string) (ast.Expression, error) {
	lx := lexer.New(s)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	filtered := make([]lexer.Token, 0, len(toks))
	for _, t := range toks {
		if t.Type == lexer.TokenNewline || t.Type == lexer.TokenIndent || t.Type == lexer.TokenDedent {
			continue
		}
		filtered = append(filtered, t)
	}
	pp := New(filtered)
	return pp.expression()
}

func (p *Parser) topLevelDeclaration() (ast.Declaration, error) {
	switch {
	case p.match(lexer.TokenImport):
		return p.importDecl()
	case p.match(lexer.TokenClass):
		return p.classDef()
	case p.match(lexer.TokenDef):
		return p.funcDef()
	default:
		return p.statement()
	}
}

func (p *Parser) importDecl() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.check(lexer.TokenString) {
		return nil, p.errf("expected string path after 'import'")
	}
	path := p.advance().Value
	alias := ""
	if p.match(lexer.TokenAs) {
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errf("expected alias name after 'as'")
		}
		alias = p.advance().Value
	}
	p.consumeStmtEnd()
	return &ast.Import{Path: path, Alias: alias, Position: pos}, nil
}

func (p *Parser) classDef() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errf("expected class name")
	}
	name := p.advance().Value

	base := ""
	if p.match(lexer.TokenLeftParen) {
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errf("expected base class name")
		}
		base = p.advance().Value
		if !p.match(lexer.TokenRightParen) {
			return nil, p.errf("expected ')' after base class")
		}
	}

	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after class header")
	}

	body, err := p.blockOfClassMembers()
	if err != nil {
		return nil, err
	}
	if len(body.attrs) == 0 && len(body.methods) == 0 {
		return nil, p.errf("class %q has an empty body", name)
	}

	return &ast.ClassDef{Name: name, Base: base, Attrs: body.attrs, Methods: body.methods, Position: pos}, nil
}

type classBody struct {
	attrs   []ast.ClassAttr
	methods []*ast.FuncDef
}

func (p *Parser) blockOfClassMembers() (classBody, error) {
	var out classBody
	if !p.match(lexer.TokenNewline) {
		return out, p.errf("expected newline after class header")
	}
	p.skipNewlines()
	if !p.match(lexer.TokenIndent) {
		return out, p.errf("expected indented class body")
	}
	for !p.check(lexer.TokenDedent) && !p.isAtEnd() {
		if p.check(lexer.TokenPass) {
			p.advance()
			p.consumeStmtEnd()
			continue
		}
		if p.match(lexer.TokenDef) {
			fn, err := p.funcDef()
			if err != nil {
				return out, err
			}
			out.methods = append(out.methods, fn.(*ast.FuncDef))
			continue
		}
		attr, err := p.classAttr()
		if err != nil {
			return out, err
		}
		out.attrs = append(out.attrs, attr)
	}
	if !p.match(lexer.TokenDedent) {
		return out, p.errf("expected dedent at end of class body")
	}
	return out, nil
}

func (p *Parser) classAttr() (ast.ClassAttr, error) {
	pos := p.peek().Col
	if !p.check(lexer.TokenIdentifier) {
		return ast.ClassAttr{}, p.errf("expected attribute, method, or 'pass' in class body")
	}
	name := p.advance().Value
	if !p.match(lexer.TokenColon) {
		return ast.ClassAttr{}, p.errf("expected ':' after class attribute name")
	}
	ty, err := p.typeAnnotation()
	if err != nil {
		return ast.ClassAttr{}, err
	}
	var init ast.Expression
	if p.match(lexer.TokenAssign) {
		init, err = p.expression()
		if err != nil {
			return ast.ClassAttr{}, err
		}
	}
	p.consumeStmtEnd()
	return ast.ClassAttr{Name: name, Type: ty, Init: init, Position: pos}, nil
}

func (p *Parser) funcDef() (ast.Declaration, error) {
	pos := p.previous().Col
	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errf("expected function name after 'def'")
	}
	name := p.advance().Value

	if !p.match(lexer.TokenLeftParen) {
		return nil, p.errf("expected '(' after function name")
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.TokenRightParen) {
		return nil, p.errf("expected ')' after parameters")
	}

	var ret *ast.TypeAnnotation
	if p.match(lexer.TokenArrow) {
		ret, err = p.typeAnnotation()
		if err != nil {
			return nil, err
		}
	} else {
		ret = &ast.TypeAnnotation{Name: "None"}
	}

	if !p.match(lexer.TokenColon) {
		return nil, p.errf("expected ':' after function signature")
	}

	p.funcDepth++
	body, err := p.block()
	p.funcDepth--
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, p.errf("function %q has an empty body", name)
	}

	return &ast.FuncDef{Name: name, Params: params, ReturnType: ret, Body: body, Position: pos}, nil
}

func (p *Parser) paramList() ([]ast.Parameter, error) {
	params := []ast.Parameter{}
	seen := map[string]bool{}
	sawDefault := false
	if p.check(lexer.TokenRightParen) {
		return params, nil
	}
	for {
		pos := p.peek().Col
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errf("expected parameter name")
		}
		name := p.advance().Value
		if seen[name] {
			return nil, p.errf("duplicate parameter name %q", name)
		}
		seen[name] = true

		// `self`, as the first parameter of a method, carries no type
		// annotation: its type is the enclosing class, known only once
		// pkg/sema sees which class owns this function.
		if name == "self" && len(params) == 0 && !p.check(lexer.TokenColon) {
			params = append(params, ast.Parameter{Name: name, Position: pos})
			if !p.match(lexer.TokenComma) {
				break
			}
			continue
		}

		if !p.match(lexer.TokenColon) {
			return nil, p.errf("expected ':' after parameter name %q", name)
		}
		ty, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}

		var def ast.Expression
		if p.match(lexer.TokenAssign) {
			def, err = p.expression()
			if err != nil {
				return nil, err
			}
			sawDefault = true
		} else if sawDefault {
			return nil, p.errf("non-default parameter %q follows a default-valued parameter", name)
		}

		params = append(params, ast.Parameter{Name: name, Type: ty, Default: def, Position: pos})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	return params, nil
}

func (p *Parser) typeAnnotation() (*ast.TypeAnnotation, error) {
	pos := p.peek().Col
	switch {
	case p.match(lexer.TokenTypeInt):
		return &ast.TypeAnnotation{Name: "int", Position: pos}, nil
	case p.match(lexer.TokenTypeFloat):
		return &ast.TypeAnnotation{Name: "float", Position: pos}, nil
	case p.match(lexer.TokenTypeBool):
		return &ast.TypeAnnotation{Name: "bool", Position: pos}, nil
	case p.match(lexer.TokenTypeStr):
		return &ast.TypeAnnotation{Name: "str", Position: pos}, nil
	case p.match(lexer.TokenNone):
		return &ast.TypeAnnotation{Name: "None", Position: pos}, nil
	case p.match(lexer.TokenTypeList):
		if !p.match(lexer.TokenLeftBracket) {
			return nil, p.errf("expected '[' after 'list'")
		}
		elem, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		if !p.match(lexer.TokenRightBracket) {
			return nil, p.errf("expected ']' after list element type")
		}
		return &ast.TypeAnnotation{Name: "list", Elem: elem, Position: pos}, nil
	case p.match(lexer.TokenTypeDict):
		if !p.match(lexer.TokenLeftBracket) {
			return nil, p.errf("expected '[' after 'dict'")
		}
		if !p.match(lexer.TokenTypeStr) {
			return nil, p.errf("dict keys must be 'str'")
		}
		if !p.match(lexer.TokenComma) {
			return nil, p.errf("expected ',' after dict key type")
		}
		val, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		if !p.match(lexer.TokenRightBracket) {
			return nil, p.errf("expected ']' after dict value type")
		}
		return &ast.TypeAnnotation{Name: "dict", Value: val, Position: pos}, nil
	case p.check(lexer.TokenIdentifier):
		name := p.advance().Value
		return &ast.TypeAnnotation{Name: name, Position: pos}, nil
	default:
		return nil, p.errf("expected a type")
	}
}

// block parses an INDENT ... DEDENT body following a ':' header.
func (p *Parser) block() ([]ast.Declaration, error) {
	if !p.match(lexer.TokenNewline) {
		return nil, p.errf("expected newline before indented block")
	}
	p.skipNewlines()
	if !p.match(lexer.TokenIndent) {
		return nil, p.errf("expected an indented block")
	}
	stmts := []ast.Declaration{}
	for !p.check(lexer.TokenDedent) && !p.isAtEnd() {
		d, err := p.topLevelDeclaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, d)
		p.skipNewlines()
	}
	if !p.match(lexer.TokenDedent) {
		return nil, p.errf("expected dedent at end of block")
	}
	return stmts, nil
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TokenNewline) {
		p.advance()
	}
}

func (p *Parser) consumeStmtEnd() {
	p.match(lexer.TokenNewline)
}

// --- cursor helpers ---

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TokenEOF
}

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) errf(format string, args ...any) error {
	t := p.peek()
	return diag.NewParserError(t.Line, t.Col, t.Length, format, args...)
}
