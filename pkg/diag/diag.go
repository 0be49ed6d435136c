// Package diag defines the span and phased-error types shared by every
// compiler phase (lexer, parser, checker). Each phase halts on its
// first error; the driver stops the pipeline and reports it without
// entering the next phase.
package diag

import "fmt"

// Span is a source location: a line/column pair plus a length in
// runes, measured from the Reader that produced the token or node.
type Span struct {
	Line   int
	Col    int
	Length int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// LexerError is raised by pkg/lexer: bad tokens, mixed indentation,
// unterminated literals, bad numeric underscores.
type LexerError struct {
	Span    Span
	Message string
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("LexerError at %s: %s", e.Span, e.Message)
}

// ParserError is raised by pkg/parser: grammar violations and
// structural rejections (empty bodies, misplaced control statements,
// malformed parameter lists, and the like).
type ParserError struct {
	Span    Span
	Message string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("ParserError at %s: %s", e.Span, e.Message)
}

// TypeError is raised by pkg/sema: undeclared names, mismatches,
// bad attribute access, inheritance cycles, arity mismatches.
type TypeError struct {
	Span    Span
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("TypeError at %s: %s", e.Span, e.Message)
}

// NewLexerError constructs a LexerError at the given position.
func NewLexerError(line, col, length int, format string, args ...any) *LexerError {
	return &LexerError{Span: Span{Line: line, Col: col, Length: length}, Message: fmt.Sprintf(format, args...)}
}

// NewParserError constructs a ParserError at the given position.
func NewParserError(line, col, length int, format string, args ...any) *ParserError {
	return &ParserError{Span: Span{Line: line, Col: col, Length: length}, Message: fmt.Sprintf(format, args...)}
}

// NewTypeError constructs a TypeError at the given position.
func NewTypeError(line, col, length int, format string, args ...any) *TypeError {
	return &TypeError{Span: Span{Line: line, Col: col, Length: length}, Message: fmt.Sprintf(format, args...)}
}
