// Package pbc is the compiler's command-line surface: a cobra root
// command with three subcommands (build, emit-c, check) wrapping
// pkg/driver.
package pbc

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pb-lang/pbc/pkg/driver"
	"github.com/pb-lang/pbc/pkg/pbclog"
)

// Execute builds and runs the root command against args, writing to
// stdout/stderr, and returns a process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root, err := newRootCmd(stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	var debug bool
	var ccBin string

	root := &cobra.Command{
		Use:           "pbc",
		Short:         "Compile PB source to a native executable",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log one line per compiler phase transition")
	root.PersistentFlags().StringVar(&ccBin, "cc", "cc", "C99 compiler to invoke for the final link step")

	root.AddCommand(buildCmd(stderr, &debug, &ccBin))
	root.AddCommand(emitCCmd(stdout, stderr, &debug))
	root.AddCommand(checkCmd(stderr))

	return root, nil
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("pbc: reading %s: %w", path, err)
	}
	return string(b), nil
}

func buildCmd(stderr io.Writer, debug *bool, ccBin *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "build <file.pb>",
		Short: "Compile a PB file to a native executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			log := pbclog.New(stderr, *debug)
			exe, err := driver.Build(args[0], src, driver.BuildOptions{CC: *ccBin, OutPath: outPath, Log: log})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exe)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output executable path (default: input basename)")
	return cmd
}

func emitCCmd(stdout, stderr io.Writer, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "emit-c <file.pb>",
		Short: "Compile a PB file to C99 and print it, without invoking a C compiler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			log := pbclog.New(stderr, *debug)
			res, err := driver.CompileWithLog(args[0], src, log)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.C)
			return nil
		},
	}
}

func checkCmd(stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.pb>",
		Short: "Run lexing, parsing, and type checking only, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			if err := driver.Check(args[0], src); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
