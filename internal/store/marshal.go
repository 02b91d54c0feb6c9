package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/besselx/internal/ir"
)

// marshalValues converts a result vector to canonical JSON TEXT for storage.
// Each element is a [re, im] pair of float bit patterns, so NaN payloads,
// signed zeros and infinities survive the round trip.
func marshalValues(values []complex128) (string, error) {
	data, err := ir.MarshalCanonical(ir.Complexes(values))
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

// unmarshalValues parses TEXT written by marshalValues.
func unmarshalValues(data string) ([]complex128, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var bits []ir.ComplexBits
	if err := json.Unmarshal([]byte(data), &bits); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	out := make([]complex128, len(bits))
	for i, b := range bits {
		z, err := b.Complex()
		if err != nil {
			return nil, fmt.Errorf("unmarshal values[%d]: %w", i, err)
		}
		out[i] = z
	}
	return out, nil
}

// parseComplexBits rebuilds z from its stored columns.
func parseComplexBits(re, im string) (complex128, error) {
	return ir.ComplexBits{re, im}.Complex()
}

// formatValue renders a value for mismatch reports. The bit patterns
// distinguish values that print alike (NaN payloads, signed zeros).
func formatValue(z complex128) string {
	b := ir.BitsOf([]complex128{z})[0]
	return fmt.Sprintf("%v [%s %s]", z, b[0], b[1])
}
