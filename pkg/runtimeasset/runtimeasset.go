// Package runtimeasset embeds the fixed C runtime that every
// generated translation unit links against: print/conversion helpers,
// the setjmp/longjmp exception mechanism, and the monomorphised
// List_*/Dict_str_* containers.
package runtimeasset

import (
	_ "embed"
	"os"
	"path/filepath"
)

//go:embed pb_runtime.h
var Header string

//go:embed pb_runtime.c
var Source string

// Write places both runtime files into dir, alongside the generated
// .c file, the layout cc needs to compile and link the translation
// unit.
func Write(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, "pb_runtime.h"), []byte(Header), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "pb_runtime.c"), []byte(Source), 0o644)
}
