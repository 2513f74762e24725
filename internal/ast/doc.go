// Package ast defines the typed source AST consumed by the translator.
//
// The AST is statement oriented: a Program is an ordered list of Functions,
// each with typed parameters, declared locals, contracts and a body of
// statements. Nodes carry a Pos for diagnostic attribution.
//
// This package contains type definitions and traversal helpers only. It
// imports nothing internal, so compiler, translator and harness can all
// depend on it.
//
// Node identity matters: the translator keys per-loop invariants and call
// results by node pointer, so nodes must not be shared between two places in
// a tree.
package ast
