// Package ast provides the tagged-variant node set produced by
// pkg/parser and consumed by pkg/sema and pkg/codegen.
//
// The package is organized into several logical units:
// - Core types and interfaces (node.go)
// - Expression nodes (expression.go)
// - Statement nodes (statement.go)
// - Declaration nodes: functions and classes (declaration.go)
package ast
