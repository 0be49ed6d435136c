package sema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pb-lang/pbc/pkg/lexer"
	"github.com/pb-lang/pbc/pkg/parser"
	"github.com/pb-lang/pbc/pkg/sema"
)

func check(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	prog, err := parser.New(toks).Parse()
	require.NoError(t, err)
	return sema.New().Check(prog)
}

func TestInheritanceCycleIsATypeError(t *testing.T) {
	src := "class A(B):\n    x: int\n\nclass B(A):\n    y: int\n"
	err := check(t, src)
	require.Error(t, err)
}

func TestSingleInheritanceResolvesInstanceAttribute(t *testing.T) {
	src := "class Animal:\n    name: str\n    def __init__(self, name: str) -> None:\n        self.name = name\n\n" +
		"class Dog(Animal):\n    def bark(self) -> str:\n        return self.name\n"
	require.NoError(t, check(t, src))
}

func TestAssigningUndeclaredGlobalInsideFunctionIsAnError(t *testing.T) {
	src := "x: int = 1\n\ndef bump() -> None:\n    x = 2\n"
	err := check(t, src)
	require.Error(t, err, "writing a module global from inside a function needs 'global x'")
}

func TestGlobalDeclarationAllowsWrite(t *testing.T) {
	src := "x: int = 1\n\ndef bump() -> None:\n    global x\n    x = 2\n"
	require.NoError(t, check(t, src))
}

func TestBoolWidensToIntAssignment(t *testing.T) {
	src := "def f() -> None:\n    x: int = True\n"
	require.NoError(t, check(t, src))
}

func TestMismatchedReturnTypeIsATypeError(t *testing.T) {
	src := "def f() -> int:\n    return \"nope\"\n"
	err := check(t, src)
	require.Error(t, err)
}
