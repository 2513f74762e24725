// Package harness runs translation scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files naming a CUE program and the properties its
// translation must have:
//
//	name: impure_call
//	description: "Impure calls thread the callee timelevel"
//	program: ../programs/impure_call.cue
//	mode: sif
//	golden: true
//	assertions:
//	  - type: contains
//	    member: f
//	    text: "g_1, g_1_p, g_1_tl := g(x, x_p, _new_tl)"
//	  - type: error
//	    member: bad
//	    kind: invalid
//	    tag: purity.violated
//
// The program path is relative to the scenario file.
//
// # Assertion Types
//
//   - translates: the member translated without error
//   - error: the member failed, optionally with a kind and tag
//   - contains, not_contains: substring of the member's output
//   - line_order: whole lines of the member's output, in order
//   - member_count: number of translated members
//   - validation: the program has a validation error with this code
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory store with a fixed run token,
// keeps translating past failing members, and is replayed against its own
// log before assertions run. A scenario whose replay differs fails even if
// every assertion holds.
package harness
