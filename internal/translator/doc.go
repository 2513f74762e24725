// Package translator rewrites source functions into verification IR.
//
// The SIF translator self-composes every statement: each one is translated
// once for the real execution and once for a shadow execution over the
// prime twins of all variables (x and x_p). A ghost boolean, the
// timelevel (_new_tl), records whether the two executions may have
// diverged observably. The timelevel is only ever OR-ed with new
// divergence causes, never reset.
//
// STRUCTURE:
//
//	Base     plain statement and expression translation (translateStmt,
//	         TranslateExpr); SIF dispatch re-enters through the handler.
//	SIF      overrides assignment, if, while and return.
//	Context  per-function state: prime mode, current timelevel override,
//	         alias substitutions, loop labels, invariant registry.
//
// All IR is built through ir.Builder. Fresh labels come from the
// process-wide Names counter, which the engine resets once per run so that
// translations are reproducible.
//
// Translation is single-threaded. A Context must not be shared between
// goroutines.
package translator
