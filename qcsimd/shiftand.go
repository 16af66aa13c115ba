// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcsimd

// ShiftAndStep advances one shift-AND automaton by one input character: r
// is the previous state, initMask re-seeds the bits that start a new match
// window at this position, and classMask is the precomputed bitmask for
// the character just consumed. metrics/adapter uses this for its 64-wide
// matchers, running each matcher's chain over the read in its own loop;
// two matchers' chains are never advanced together in one loop iteration,
// and there is no 128-bit path.
func ShiftAndStep(r, initMask, classMask uint64) uint64 {
	return ((r << 1) | initMask) & classMask
}

// CaseFoldMask clears bit 5 of every byte in a little-endian uint64,
// folding ASCII lowercase letters to uppercase (and vice versa producing a
// harmless non-letter for non-letter bytes). Used by InsertSizeMetrics'
// 8-byte chunk comparison, spec §4.8.1.
const CaseFoldMask = 0xDFDFDFDFDFDFDFDF
