// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build !amd64 || appengine

package qcsimd

import "github.com/nucleomics/seqqc/nucleotide"

// CountBases tallies the A/C/G/T/N composition of seq. It is the portable
// fallback for platforms without the 8-byte-word path in
// basecount_amd64.go.
func CountBases(seq []byte) (a, c, g, t, n int) {
	counts := [nucleotide.NumBases]int{}
	for _, b := range seq {
		counts[nucleotide.Index(b)]++
	}
	return counts[nucleotide.A], counts[nucleotide.C], counts[nucleotide.G], counts[nucleotide.T], counts[nucleotide.N]
}
