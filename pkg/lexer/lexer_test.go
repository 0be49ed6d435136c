package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pb-lang/pbc/pkg/lexer"
)

func tokenTypes(t *testing.T, toks []lexer.Token) []lexer.TokenType {
	t.Helper()
	types := make([]lexer.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestIndentDedentSynthesis(t *testing.T) {
	src := "def f() -> int:\n    x: int = 1\n    if x:\n        return x\n    return 0\n"
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)

	var indents, dedents int
	for _, tok := range toks {
		switch tok.Type {
		case lexer.TokenIndent:
			indents++
		case lexer.TokenDedent:
			dedents++
		}
	}
	require.Equal(t, 2, indents, "one INDENT per nested block")
	require.Equal(t, 2, dedents, "every INDENT must be matched by a DEDENT by EOF")
	require.Equal(t, toks[len(toks)-1].Type, lexer.TokenEOF)
}

func TestFStringProducesFStringToken(t *testing.T) {
	src := "x: str = f\"hello {name}\"\n"
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)

	found := false
	for _, tok := range toks {
		if tok.Type == lexer.TokenFString {
			found = true
		}
	}
	require.True(t, found, "f-string literal must lex to a distinct TokenFString")
}

func TestMixedIndentationIsALexerError(t *testing.T) {
	src := "def f():\n\tx: int = 1\n    y: int = 2\n"
	_, err := lexer.New(src).Tokenize()
	require.Error(t, err)
}

func TestAssignmentTokenShapeMatchesExpectedSequence(t *testing.T) {
	src := "x: int = 1\n"
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)

	want := []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenColon, lexer.TokenTypeInt,
		lexer.TokenAssign, lexer.TokenInt, lexer.TokenNewline, lexer.TokenEOF,
	}
	if diff := cmp.Diff(want, tokenTypes(t, toks)); diff != "" {
		t.Errorf("token sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestNumericUnderscores(t *testing.T) {
	src := "x: int = 1_000_000\n"
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)

	var got string
	for _, tok := range toks {
		if tok.Type == lexer.TokenInt {
			got = tok.Value
		}
	}
	require.Equal(t, "1000000", got)
}
