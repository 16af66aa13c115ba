// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package phredtab builds the Phred-score <-> error-probability tables
// shared by every metric that needs to convert a Phred+33 quality byte into
// an error rate or bucket it for a histogram.
package phredtab

import "math"

// PhredMax is the highest Phred score this engine accepts (spec §3 invariant 3).
const PhredMax = 93

// PhredOffset is the ASCII offset of Phred+33 encoding.
const PhredOffset = 33

// Buckets is the number of Phred-score buckets BaseQualityTable's
// phred_counts dimension uses: qualities are bucketed by min(q,47)>>2,
// spec §4.2.1.
const Buckets = (47 / 4) + 1

// ErrorRate is a 94-entry table of 10^(-q/10) for q in [0, PhredMax],
// indexed directly by Phred score. Built once at init from the formula
// rather than hard-coded at reduced precision (spec §9).
var ErrorRate = buildErrorRate()

func buildErrorRate() (t [PhredMax + 1]float64) {
	for q := 0; q <= PhredMax; q++ {
		t[q] = math.Pow(10, -float64(q)/10)
	}
	return t
}

// Bucket maps a Phred score to its BaseQualityTable histogram bucket.
func Bucket(q int) int {
	if q > 47 {
		q = 47
	}
	return q >> 2
}

// ToErrorRate converts a Phred+33 quality byte to the validated Phred score
// and its error probability. ok is false if the byte falls outside
// [33, 33+PhredMax] (spec §3 invariant 3, §7 InvalidPhred).
func ToErrorRate(qualByte byte) (q int, errRate float64, ok bool) {
	q = int(qualByte) - PhredOffset
	if q < 0 || q > PhredMax {
		return q, 0, false
	}
	return q, ErrorRate[q], true
}

// FromErrorRate converts a mean error rate back to a Phred score, rounding
// to nearest and clamping to [0, PhredMax] (spec §4.2.2 step 6).
func FromErrorRate(avgErr float64) int {
	if avgErr <= 0 {
		return PhredMax
	}
	q := int(math.Round(-10 * math.Log10(avgErr)))
	if q < 0 {
		return 0
	}
	if q > PhredMax {
		return PhredMax
	}
	return q
}
