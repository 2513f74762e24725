// Package ir provides the verification intermediate representation emitted
// by the translator.
//
// The IR is a small structured language in the style of a verifier input:
// methods with typed arguments and returns, pre/postconditions, local
// variables and a body of statements (assignments, method calls,
// conditionals, loops with invariants, labels and gotos, assertions).
//
// All other internal packages import ir; ir imports nothing internal.
//
// Nodes are never constructed directly by the translator. It asks a Builder
// for them, which keeps the translation core independent of the concrete
// node representation. NodeBuilder is the implementation used in production
// and tests.
//
// Key design constraints:
//   - Every node carries a Pos and an Info annotation (possibly empty)
//   - Rendering (Print) and canonical JSON (Encode + MarshalCanonical) are
//     deterministic, so emitted IR can be hashed and compared across runs
//   - No float types anywhere
package ir
