// Package driver orchestrates C1 through C7: reading source, lexing,
// parsing, checking, and emitting C99. It is deliberately decoupled
// from cmd/pbc's cobra flag parsing so the pipeline is unit testable
// without a cobra.Command or a cc binary in the loop.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pb-lang/pbc/pkg/codegen"
	"github.com/pb-lang/pbc/pkg/lexer"
	"github.com/pb-lang/pbc/pkg/parser"
	"github.com/pb-lang/pbc/pkg/pbclog"
	"github.com/pb-lang/pbc/pkg/runtimeasset"
	"github.com/pb-lang/pbc/pkg/sema"
	"github.com/pb-lang/pbc/pkg/source"
)

func writeRuntime(dir string) error {
	if err := runtimeasset.Write(dir); err != nil {
		return fmt.Errorf("driver: writing runtime assets: %w", err)
	}
	return nil
}

// Result holds what a successful compilation produced: the token
// stream and the generated C text. When any phase fails, Compile
// returns a nil Result together with the error.
type Result struct {
	Tokens []lexer.Token
	C      string
}

// Compile runs C1-C7 over src (named path for diagnostics) and
// returns the generated C99 text. The returned error is one of
// *diag.LexerError, *diag.ParserError, or *diag.TypeError, whichever
// phase failed first; the pipeline always halts on first error per §7.
func Compile(path, src string) (*Result, error) {
	return compile(path, src, pbclog.Default())
}

// CompileWithLog is Compile plus a Logger that receives one Debugf
// line per phase transition.
func CompileWithLog(path, src string, log *pbclog.Logger) (*Result, error) {
	return compile(path, src, log)
}

func compile(path, src string, log *pbclog.Logger) (*Result, error) {
	f := source.New(path, src)
	log.Debugf("source: %s (%d bytes)", f.Name, len(f.Text))

	lx := lexer.New(f.Text)
	tokens, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	log.Debugf("lexer: %d tokens", len(tokens))

	p := parser.New(tokens)
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	log.Debugf("parser: %d top-level declarations", len(prog.Declarations))

	chk := sema.New()
	if err := chk.Check(prog); err != nil {
		return nil, err
	}
	log.Debugf("sema: %d classes, %d functions, %d globals", len(chk.ClassOrder), len(chk.FuncOrder), len(chk.GlobalOrder))

	c, err := codegen.Generate(chk, prog)
	if err != nil {
		return nil, err
	}
	log.Debugf("codegen: %d bytes of C99 emitted", len(c))

	return &Result{Tokens: tokens, C: c}, nil
}

// Check runs C1-C6 only, for `pbc check`: it reports whether src
// type-checks, without generating any C text.
func Check(path, src string) error {
	f := source.New(path, src)
	lx := lexer.New(f.Text)
	tokens, err := lx.Tokenize()
	if err != nil {
		return err
	}
	p := parser.New(tokens)
	prog, err := p.Parse()
	if err != nil {
		return err
	}
	return sema.New().Check(prog)
}

// BuildOptions configures Build's final native-compilation step.
type BuildOptions struct {
	// CC is the C99 compiler binary to shell out to, default "cc".
	CC string
	// OutPath is the resulting executable's path, default the
	// source's basename with its extension stripped.
	OutPath string
	Log     *pbclog.Logger
}

// Build runs Compile, writes the generated .c file plus the embedded
// runtime alongside it, and shells out to cc to link an executable.
func Build(path, src string, opts BuildOptions) (string, error) {
	if opts.Log == nil {
		opts.Log = pbclog.Default()
	}
	res, err := compile(path, src, opts.Log)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "pbc-build-*")
	if err != nil {
		return "", fmt.Errorf("driver: creating build directory: %w", err)
	}

	cPath := filepath.Join(dir, "out.c")
	if err := os.WriteFile(cPath, []byte(res.C), 0o644); err != nil {
		return "", fmt.Errorf("driver: writing generated C: %w", err)
	}
	if err := writeRuntime(dir); err != nil {
		return "", err
	}

	cc := opts.CC
	if cc == "" {
		cc = "cc"
	}
	outPath := opts.OutPath
	if outPath == "" {
		base := filepath.Base(path)
		outPath = strings.TrimSuffix(base, filepath.Ext(base))
	}

	runtimeC := filepath.Join(dir, "pb_runtime.c")
	cmd := exec.Command(cc, "-std=c99", "-I", dir, "-o", outPath, cPath, runtimeC, "-lm")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	opts.Log.Debugf("driver: invoking %s %s", cc, strings.Join(cmd.Args[1:], " "))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("driver: %s failed: %w", cc, err)
	}

	return outPath, nil
}
