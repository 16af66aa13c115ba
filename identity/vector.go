// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package identity

// alignVector is the "SIMD anti-diagonal sweep" path (spec §4.9): the same
// recurrence as alignScalar, but driven by anti-diagonal instead of
// column-major traversal, and with the score lane clamped to the
// saturating signed 8-bit range the real AVX2 kernel operates in. Because
// query_length is bounded at MaxQueryLength, one anti-diagonal never holds
// more live cells than a single 256-bit lane can -- the property the real
// SIMD kernel depends on to keep the whole sweep in registers.
func alignVector(target, query []byte, scores Scores) alignResult {
	n := len(query)
	m := len(target)

	// grid holds the DP matrix's score/matches split across anti-diagonals
	// purely to mirror the real kernel's traversal order; a column-sweep
	// kernel would reuse two rolling buffers instead, as alignScalar does.
	grid := make([][]cell, m+1)
	for i := range grid {
		grid[i] = make([]cell, n+1)
	}

	var best alignResult
	for d := 1; d <= m+n; d++ {
		iMin := 1
		if d-n > iMin {
			iMin = d - n
		}
		iMax := m
		if d-1 < iMax {
			iMax = d - 1
		}
		for i := iMin; i <= iMax; i++ {
			j := d - i
			if j < 1 || j > n {
				continue
			}

			matchScore := scores.Mismatch
			matched := false
			if target[i-1] == query[j-1] {
				matchScore = scores.Match
				matched = true
			}
			linear := cell{saturate8(grid[i-1][j-1].score + int(matchScore)), grid[i-1][j-1].matches}
			if matched {
				linear.matches++
			}
			insertion := cell{saturate8(grid[i][j-1].score + int(scores.Gap)), grid[i][j-1].matches - 1}
			deletion := cell{saturate8(grid[i-1][j].score + int(scores.Gap)), grid[i-1][j].matches}

			c := bestOfThree(linear, insertion, deletion)
			if c.score <= 0 {
				c = cell{0, 0}
			}
			grid[i][j] = c

			if c.score > best.score || (c.score == best.score && c.matches > best.matches) {
				best = alignResult{score: c.score, matches: c.matches}
			}
		}
	}
	return best
}

// saturate8 clamps v to the signed 8-bit range, the width the real kernel
// runs its score lane at.
func saturate8(v int) int {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return v
}
