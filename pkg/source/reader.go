// Package source implements C1: a UTF-8 source reader that tracks byte
// offsets alongside a line/column index so every later phase can
// attach an exact diag.Span to the tokens and nodes it produces.
package source

import "strings"

// File holds the decoded contents of a single PB source file plus a
// precomputed line-start index used to translate a byte offset into a
// line/column pair in O(log n).
type File struct {
	Name       string
	Text       string
	lineStarts []int
}

// New normalises CRLF to LF and indexes line starts.
func New(name, text string) *File {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	f := &File{Name: name, Text: text}
	f.lineStarts = []int{0}
	for i, r := range text {
		if r == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position converts a byte offset into a 1-based (line, column) pair.
func (f *File) Position(offset int) (line, col int) {
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - f.lineStarts[lo] + 1
	return
}

// Line returns the raw text of a 1-based line number, without its
// trailing newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n-1]
	end := len(f.Text)
	if n < len(f.lineStarts) {
		end = f.lineStarts[n] - 1
	}
	if end < start {
		end = start
	}
	return f.Text[start:end]
}
