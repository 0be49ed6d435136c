package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pb-lang/pbc/pkg/codegen"
	"github.com/pb-lang/pbc/pkg/lexer"
	"github.com/pb-lang/pbc/pkg/parser"
	"github.com/pb-lang/pbc/pkg/sema"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	prog, err := parser.New(toks).Parse()
	require.NoError(t, err)
	chk := sema.New()
	require.NoError(t, chk.Check(prog))
	c, err := codegen.Generate(chk, prog)
	require.NoError(t, err)
	return c
}

func TestFStringLowersToSnprintf(t *testing.T) {
	src := "def greet(name: str) -> str:\n    return f\"hi {name}!\"\n"
	c := generate(t, src)
	require.Contains(t, c, "snprintf(")
}

func TestSingleInheritanceEmitsStructEmbedding(t *testing.T) {
	src := "class Animal:\n    name: str\n    def __init__(self, name: str) -> None:\n        self.name = name\n\n" +
		"class Dog(Animal):\n    def bark(self) -> str:\n        return self.name\n"
	c := generate(t, src)
	require.Contains(t, c, "struct Animal {")
	require.Contains(t, c, "struct Dog {")
	require.Contains(t, c, "struct Animal base;")
	require.Contains(t, c, "Dog__bark")
	require.Contains(t, c, "Dog_new")
}

func TestTryExceptLowersToSetjmp(t *testing.T) {
	src := "def f() -> int:\n    try:\n        raise ValueError(\"bad\")\n    except ValueError as msg:\n        return 1\n    return 0\n"
	c := generate(t, src)
	require.Contains(t, c, "pb_push_try();")
	require.Contains(t, c, "setjmp(pb_current_try->buf)")
	require.Contains(t, c, "pb_current_exc_matches(\"ValueError\")")
	require.Contains(t, c, "pb_raise_msg(\"ValueError\"")
}

func TestListIndexAssignmentUsesSetterNotLvalue(t *testing.T) {
	src := "def f() -> None:\n    xs: list[int] = [1, 2, 3]\n    xs[0] = 9\n"
	c := generate(t, src)
	require.Contains(t, c, "List_int_set(")
}

func TestMainFunctionIsRenamedAroundCEntryPoint(t *testing.T) {
	src := "def main() -> None:\n    print(1)\n"
	c := generate(t, src)
	require.Contains(t, c, "pb_main")
	require.Contains(t, c, "int main(void)")
}
