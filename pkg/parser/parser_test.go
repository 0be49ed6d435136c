package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pb-lang/pbc/pkg/ast"
	"github.com/pb-lang/pbc/pkg/lexer"
	"github.com/pb-lang/pbc/pkg/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	prog, err := parser.New(toks).Parse()
	require.NoError(t, err)
	return prog
}

func TestParsesClassWithSingleInheritance(t *testing.T) {
	src := "class Animal:\n    name: str\n    def __init__(self, name: str) -> None:\n        self.name = name\n\n" +
		"class Dog(Animal):\n    def bark(self) -> str:\n        return self.name\n"
	prog := parse(t, src)
	require.Len(t, prog.Declarations, 2)

	dog, ok := prog.Declarations[1].(*ast.ClassDef)
	require.True(t, ok)
	require.Equal(t, "Dog", dog.Name)
	require.Equal(t, "Animal", dog.Base)
	require.Len(t, dog.Methods, 1)
	require.Equal(t, "bark", dog.Methods[0].Name)
}

func TestFStringLowersPlaceholderExpressions(t *testing.T) {
	src := "def greet(name: str) -> str:\n    return f\"hi {name}!\"\n"
	prog := parse(t, src)
	fn := prog.Declarations[0].(*ast.FuncDef)
	ret := fn.Body[0].(*ast.Return)
	fstr, ok := ret.Value.(*ast.FStrLit)
	require.True(t, ok, "f-string literal must parse to ast.FStrLit")
	require.NotEmpty(t, fstr.Segments)
}

func TestEmptyBlockIsAParserError(t *testing.T) {
	toks, err := lexer.New("def f():\n").Tokenize()
	require.NoError(t, err)
	_, err = parser.New(toks).Parse()
	require.Error(t, err, "a function body must contain at least one statement")
}

func TestChainedComparisonIsRejected(t *testing.T) {
	toks, err := lexer.New("def f():\n    x: bool = 1 < 2 < 3\n").Tokenize()
	require.NoError(t, err)
	_, err = parser.New(toks).Parse()
	require.Error(t, err, "PB has no chained comparisons")
}
