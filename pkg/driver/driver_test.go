package driver_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pb-lang/pbc/pkg/driver"
)

func TestCompileProducesLinkableC(t *testing.T) {
	src := "def main() -> None:\n    print(1)\n"
	res, err := driver.Compile("hello.pb", src)
	require.NoError(t, err)
	require.True(t, strings.Contains(res.C, "#include \"pb_runtime.h\""))
	require.True(t, strings.Contains(res.C, "int main(void)"))
}

func TestCompileStopsAtFirstDiagnostic(t *testing.T) {
	_, err := driver.Compile("bad.pb", "def f(:\n    pass\n")
	require.Error(t, err)
}

func TestCheckReportsTypeErrorsWithoutCodegen(t *testing.T) {
	err := driver.Check("bad.pb", "def f() -> int:\n    return \"nope\"\n")
	require.Error(t, err)
}

func TestCheckAcceptsWellTypedSource(t *testing.T) {
	err := driver.Check("ok.pb", "def f() -> int:\n    return 1\n")
	require.NoError(t, err)
}
