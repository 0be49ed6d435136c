package main

import (
	"os"

	"github.com/pb-lang/pbc/cmd/pbc"
)

func main() {
	args := os.Args[1:]

	exitCode := pbc.Execute(args, os.Stdout, os.Stderr)

	os.Exit(exitCode)
}
