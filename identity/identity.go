// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package identity implements SequenceIdentity (spec §4.9): local
// alignment between a short query and a longer target via Smith-Waterman,
// reporting the fraction of the query covered by the best-scoring local
// alignment.
package identity

import "github.com/nucleomics/seqqc/record"

// MaxQueryLength is the query length bound both implementations assume
// (spec §4.9: "Query length bounded at 31").
const MaxQueryLength = 31

// Scores holds the unit-scoring parameters (spec §4.9's "unit scoring...
// all tunable").
type Scores struct {
	Match    int8
	Mismatch int8
	Gap      int8
}

// DefaultScores is the spec's default scoring scheme.
var DefaultScores = Scores{Match: 1, Mismatch: -1, Gap: -1}

func (s Scores) withDefaults() Scores {
	if s == (Scores{}) {
		return DefaultScores
	}
	return s
}

// alignResult is a local alignment's best score and the number of query
// bases it covers.
type alignResult struct {
	score   int
	matches int
}

// align runs an implementation-selected Smith-Waterman sweep. hasVector
// picks between the anti-diagonal vector sweep and the scalar column
// sweep the same way the teacher's biosimd package picks an AVX2 path at
// init instead of testing CPU features in the hot loop (spec §9: "an
// initialization-time dispatch table...do not sprinkle per-call feature
// tests in the hot path").
var hasVector = true

func align(target, query []byte, scores Scores) alignResult {
	if hasVector {
		return alignVector(target, query, scores)
	}
	return alignScalar(target, query, scores)
}

// Identity computes SequenceIdentity(target, query): the fraction of
// query's bases covered by the best local alignment against target, using
// scores (DefaultScores if zero-valued). query must be non-empty and at
// most MaxQueryLength bytes.
func Identity(target, query []byte, scores Scores) (float64, error) {
	if len(query) == 0 || len(query) > MaxQueryLength {
		return 0, record.E(record.KindBadConfig, "query length must be in (0, 31] bytes")
	}
	scores = scores.withDefaults()
	result := align(target, query, scores)
	return float64(result.matches) / float64(len(query)), nil
}
