package parser

import (
	"strconv"
	"strings"

	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/lexer"
)

func (p *Parser) expression() (ast.Expression, error) {
	return p.logicalOr()
}

func (p *Parser) logicalOr() (ast.Expression, error) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokenOr) {
		pos := p.previous().Col
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "or", Lhs: left, Rhs: right, Position: pos}
	}
	return left, nil
}

func (p *Parser) logicalAnd() (ast.Expression, error) {
	left, err := p.logicalNot()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokenAnd) {
		pos := p.previous().Col
		right, err := p.logicalNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "and", Lhs: left, Rhs: right, Position: pos}
	}
	return left, nil
}

func (p *Parser) logicalNot() (ast.Expression, error) {
	if p.match(lexer.TokenNot) {
		pos := p.previous().Col
		operand, err := p.logicalNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "not", Operand: operand, Position: pos}, nil
	}
	return p.equality()
}

func (p *Parser) equality() (ast.Expression, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenEqual) || p.check(lexer.TokenNotEqual) || p.check(lexer.TokenIs) {
		op, pos, err := p.equalityOperator()
		if err != nil {
			return nil, err
		}
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Lhs: left, Rhs: right, Position: pos}
		if p.check(lexer.TokenEqual) || p.check(lexer.TokenNotEqual) || p.check(lexer.TokenIs) || isComparisonStart(p) {
			return nil, p.errf("chained comparisons are not allowed")
		}
	}
	return left, nil
}

func (p *Parser) equalityOperator() (string, int, error) {
	pos := p.peek().Col
	if p.match(lexer.TokenEqual) {
		return "==", pos, nil
	}
	if p.match(lexer.TokenNotEqual) {
		return "!=", pos, nil
	}
	p.advance() // 'is'
	if p.match(lexer.TokenNot) {
		return "is not", pos, nil
	}
	return "is", pos, nil
}

func isComparisonStart(p *Parser) bool {
	switch p.peek().Type {
	case lexer.TokenLess, lexer.TokenGreater, lexer.TokenLessEqual, lexer.TokenGreaterEqual:
		return true
	default:
		return false
	}
}

func (p *Parser) comparison() (ast.Expression, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if isComparisonStart(p) {
		pos := p.peek().Col
		op := p.advance().Value
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Lhs: left, Rhs: right, Position: pos}
		if isComparisonStart(p) {
			return nil, p.errf("chained comparisons are not allowed")
		}
	}
	return left, nil
}

func (p *Parser) additive() (ast.Expression, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		pos := p.peek().Col
		op := p.advance().Value
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Lhs: left, Rhs: right, Position: pos}
	}
	return left, nil
}

func (p *Parser) multiplicative() (ast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenSlashSlash) || p.check(lexer.TokenPercent) {
		pos := p.peek().Col
		op := p.advance().Value
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Lhs: left, Rhs: right, Position: pos}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.match(lexer.TokenMinus) {
		pos := p.previous().Col
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "-", Operand: operand, Position: pos}, nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.TokenDot):
			if !p.check(lexer.TokenIdentifier) {
				return nil, p.errf("expected attribute name after '.'")
			}
			name := p.advance().Value
			expr = &ast.Attr{Base: expr, Name: name, Position: p.previous().Col}
		case p.match(lexer.TokenLeftParen):
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args, Position: p.previous().Col}
		case p.match(lexer.TokenLeftBracket):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if !p.match(lexer.TokenRightBracket) {
				return nil, p.errf("expected ']' after index")
			}
			expr = &ast.Index{Base: expr, Idx: idx, Position: p.previous().Col}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) argList() ([]ast.Expression, error) {
	args := []ast.Expression{}
	if p.check(lexer.TokenRightParen) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if !p.match(lexer.TokenRightParen) {
		return nil, p.errf("expected ')' after arguments")
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	pos := p.peek().Col

	switch {
	case p.match(lexer.TokenTrue):
		return &ast.BoolLit{Value: true, Position: pos}, nil
	case p.match(lexer.TokenFalse):
		return &ast.BoolLit{Value: false, Position: pos}, nil
	case p.match(lexer.TokenNone):
		return &ast.NoneLit{Position: pos}, nil
	case p.match(lexer.TokenInt):
		v, err := strconv.ParseInt(p.previous().Value, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q", p.previous().Value)
		}
		return &ast.IntLit{Value: v, Position: pos}, nil
	case p.match(lexer.TokenFloat):
		v, err := strconv.ParseFloat(p.previous().Value, 64)
		if err != nil {
			return nil, p.errf("invalid float literal %q", p.previous().Value)
		}
		return &ast.FloatLit{Value: v, Position: pos}, nil
	case p.match(lexer.TokenString):
		return &ast.StrLit{Value: p.previous().Value, Position: pos}, nil
	case p.match(lexer.TokenFString):
		return p.parseFString(p.previous().Value, pos)
	case p.match(lexer.TokenIdentifier):
		return &ast.Name{Ident: p.previous().Value, Position: pos}, nil
	case p.match(lexer.TokenLeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.match(lexer.TokenRightParen) {
			return nil, p.errf("expected ')' after expression")
		}
		return expr, nil
	case p.match(lexer.TokenLeftBracket):
		return p.listLiteral(pos)
	case p.match(lexer.TokenLeftBrace):
		return p.dictLiteral(pos)
	default:
		return nil, p.errf("expected an expression")
	}
}

func (p *Parser) listLiteral(pos int) (ast.Expression, error) {
	elems := []ast.Expression{}
	if !p.check(lexer.TokenRightBracket) {
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	if !p.match(lexer.TokenRightBracket) {
		return nil, p.errf("expected ']' after list elements")
	}
	return &ast.ListLit{Elems: elems, Position: pos}, nil
}

func (p *Parser) dictLiteral(pos int) (ast.Expression, error) {
	pairs := []ast.DictPair{}
	if !p.check(lexer.TokenRightBrace) {
		for {
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if !p.match(lexer.TokenColon) {
				return nil, p.errf("expected ':' after dict key")
			}
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ast.DictPair{Key: key, Value: val})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	if !p.match(lexer.TokenRightBrace) {
		return nil, p.errf("expected '}' after dict entries")
	}
	return &ast.DictLit{Pairs: pairs, Position: pos}, nil
}

// parseFString splits an f-string's raw inner text into alternating
// literal/placeholder segments and recursively parses each
// placeholder as a standalone expression.
func (p *Parser) parseFString(raw string, pos int) (ast.Expression, error) {
	var segs []ast.FStrSegment
	var text strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			decoded, n := decodeFStringEscape(raw[i:])
			text.WriteString(decoded)
			i += n
			continue
		}
		if c == '{' {
			if text.Len() > 0 {
				segs = append(segs, ast.FStrSegment{Text: text.String()})
				text.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			if depth != 0 {
				return nil, p.errf("unbalanced '{' in f-string placeholder")
			}
			exprSrc := raw[i+1 : j]
			expr, err := ParseExprString(exprSrc)
			if err != nil {
				return nil, err
			}
			segs = append(segs, ast.FStrSegment{Expr: expr})
			i = j + 1
			continue
		}
		text.WriteByte(c)
		i++
	}
	if text.Len() > 0 {
		segs = append(segs, ast.FStrSegment{Text: text.String()})
	}
	return &ast.FStrLit{Segments: segs, Position: pos}, nil
}

func decodeFStringEscape(s string) (string, int) {
	switch s[1] {
	case 'n':
		return "\n", 2
	case 't':
		return "\t", 2
	case '\\':
		return "\\", 2
	case '{':
		return "{", 2
	case '}':
		return "}", 2
	case '"':
		return "\"", 2
	case '\'':
		return "'", 2
	default:
		return s[:1], 1
	}
}
