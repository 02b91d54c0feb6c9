package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed ids.
// The version suffix allows the encoding to change without id collisions.
const (
	DomainEvaluation = "besselx/evaluation/v1"
	DomainValues     = "besselx/values/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EvaluationKey is everything that determines an evaluation's result.
type EvaluationKey struct {
	Family  string
	Scaling int
	Nu      float64
	Z       complex128
	N       int
}

// Object returns the canonical form of k.
func (k EvaluationKey) Object() Object {
	return Object{
		"family":  String(k.Family),
		"scaling": Int(k.Scaling),
		"nu":      Float(k.Nu),
		"z":       Complex(k.Z),
		"n":       Int(k.N),
	}
}

// EvaluationID is the content-addressed id of an evaluation request.
// It is stable across runs, processes and platforms.
func EvaluationID(k EvaluationKey) (string, error) {
	canonical, err := MarshalCanonical(k.Object())
	if err != nil {
		return "", fmt.Errorf("EvaluationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvaluation, canonical), nil
}

// MustEvaluationID is EvaluationID for tests and known-good keys.
func MustEvaluationID(k EvaluationKey) string {
	id, err := EvaluationID(k)
	if err != nil {
		panic(err)
	}
	return id
}

// ValuesDigest hashes a result vector bit-for-bit.
func ValuesDigest(values []complex128) (string, error) {
	canonical, err := MarshalCanonical(Complexes(values))
	if err != nil {
		return "", fmt.Errorf("ValuesDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainValues, canonical), nil
}
