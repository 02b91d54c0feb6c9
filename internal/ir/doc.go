// Package ir provides the canonical representation of evaluation records.
//
// Requests and results are reduced to a small sealed value model (string,
// int, bool, array, object) and serialized as RFC 8785 canonical JSON, so
// that identical evaluations always hash to identical ids.
//
// Key design constraints:
//   - No float values in the model. A float64 enters as its IEEE-754 bit
//     pattern (see Float), so -0, NaN payloads and the last ulp all survive.
//   - Ids are SHA-256 over canonical bytes with a versioned domain prefix.
//   - ir imports nothing internal.
package ir
