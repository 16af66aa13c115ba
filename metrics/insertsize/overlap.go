// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package insertsize implements InsertSizeMetrics (spec §4.8): read-pair
// overlap detection via reverse-complement matching, plus adapter-tail
// accumulation for pairs found to overlap.
package insertsize

import (
	"encoding/binary"

	"github.com/nucleomics/seqqc/qcsimd"
)

const windowSize = 16

// complement maps a base byte (either case) to its complement; any byte
// outside A/C/G/T/N folds to itself, which is enough for the
// pigeonhole-heuristic overlap detector -- a stray non-ACGTN byte simply
// never matches, it is never mistaken for a different base.
var complement [256]byte

func init() {
	for i := 0; i < 256; i++ {
		complement[i] = byte(i)
	}
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'}, {'a', 't'}, {'c', 'g'},
		{'N', 'N'}, {'n', 'n'},
	}
	for _, p := range pairs {
		complement[p.a] = p.b
		complement[p.b] = p.a
	}
}

// revcomp returns the reverse complement of window.
func revcomp(window []byte) []byte {
	out := make([]byte, len(window))
	n := len(window)
	for i, b := range window {
		out[n-1-i] = complement[b]
	}
	return out
}

// caseFold case-folds a 16-byte window into dst using qcsimd.CaseFoldMask,
// applied to each of its two constituent 8-byte chunks.
func caseFold(dst, src []byte) {
	binary.LittleEndian.PutUint64(dst, binary.LittleEndian.Uint64(src)&qcsimd.CaseFoldMask)
	binary.LittleEndian.PutUint64(dst[8:], binary.LittleEndian.Uint64(src[8:])&qcsimd.CaseFoldMask)
}

// chunkEqualFolded reports whether the two 8-byte windows starting at
// offset in a and b are equal after case-folding both via
// qcsimd.CaseFoldMask (spec §4.8.1).
func chunkEqualFolded(a, b []byte, offset int) bool {
	va := binary.LittleEndian.Uint64(a[offset:]) & qcsimd.CaseFoldMask
	vb := binary.LittleEndian.Uint64(b[offset:]) & qcsimd.CaseFoldMask
	return va == vb
}

// detectOverlap implements spec §4.8.1: given two mate sequences each at
// least windowSize long, find the position in s1 whose 16-byte window
// matches (within Hamming distance 1, case-insensitively) either the
// reverse complement of s2's first or last windowSize bytes, and return
// the resulting insert size. Returns 0 ("no overlap") if neither matches
// anywhere.
func detectOverlap(s1, s2 []byte) int {
	if len(s1) < windowSize || len(s2) < windowSize {
		return 0
	}

	needleStart := revcomp(s2[:windowSize])
	needleEnd := revcomp(s2[len(s2)-windowSize:])
	foldedStart := make([]byte, windowSize)
	foldedEnd := make([]byte, windowSize)
	caseFold(foldedStart, needleStart)
	caseFold(foldedEnd, needleEnd)

	folded := make([]byte, windowSize)
	for i := 0; i+windowSize <= len(s1); i++ {
		w := s1[i : i+windowSize]
		if chunkEqualFolded(w, needleStart, 0) || chunkEqualFolded(w, needleStart, 8) {
			caseFold(folded, w)
			if qcsimd.Hamming16(folded, foldedStart) <= 1 {
				return i + windowSize
			}
		}
		if chunkEqualFolded(w, needleEnd, 0) || chunkEqualFolded(w, needleEnd, 8) {
			caseFold(folded, w)
			if qcsimd.Hamming16(folded, foldedEnd) <= 1 {
				return i + len(s2)
			}
		}
	}
	return 0
}
