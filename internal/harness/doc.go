// Package harness runs conformance scenarios against a bessel.Evaluator.
//
// A scenario is a YAML table of requests with expected values, fatal
// error codes and warning messages:
//
//	name: iv_batch
//	description: consecutive orders from a single call
//	family: i
//	scaling: unscaled
//	cases:
//	  - nu: 0
//	    z: [1, 1]
//	    n: 3
//	    expect: [[0.9376084768060292, 0.4965299476091221], ...]
//
// Files are decoded strictly (unknown fields are errors) and validated
// against the embedded schema.cue before the Go-side consistency checks.
//
// Every case is evaluated through store.Record, so a run leaves the same
// evaluation log a CLI session would, and can be replayed later.
// Reports are compared against golden files with goldie.
package harness
