// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package identity

// cell is one slot of a DP column: an alignment score and the number of
// query bases its path has matched (spec §4.9).
type cell struct {
	score   int
	matches int
}

// alignScalar is the scalar column-sweep Smith-Waterman implementation
// (spec §4.9): two columns of length len(query)+1, each cell picking the
// max of linear (diagonal), insertion (above, same column) and deletion
// (left, previous column), ties broken linear > insertion > deletion.
func alignScalar(target, query []byte, scores Scores) alignResult {
	n := len(query)
	prev := make([]cell, n+1)
	curr := make([]cell, n+1)

	var best alignResult
	for i := 1; i <= len(target); i++ {
		curr[0] = cell{0, 0}
		for j := 1; j <= n; j++ {
			matchScore := scores.Mismatch
			matched := false
			if target[i-1] == query[j-1] {
				matchScore = scores.Match
				matched = true
			}
			linear := cell{prev[j-1].score + int(matchScore), prev[j-1].matches}
			if matched {
				linear.matches++
			}
			insertion := cell{curr[j-1].score + int(scores.Gap), curr[j-1].matches - 1}
			deletion := cell{prev[j].score + int(scores.Gap), prev[j].matches}

			c := bestOfThree(linear, insertion, deletion)
			if c.score <= 0 {
				c = cell{0, 0}
			}
			curr[j] = c

			if c.score > best.score || (c.score == best.score && c.matches > best.matches) {
				best = alignResult{score: c.score, matches: c.matches}
			}
		}
		prev, curr = curr, prev
	}
	return best
}

// bestOfThree picks among linear, insertion, deletion by score, breaking
// ties in that fixed order (spec §4.9).
func bestOfThree(linear, insertion, deletion cell) cell {
	best := linear
	if insertion.score > best.score {
		best = insertion
	}
	if deletion.score > best.score {
		best = deletion
	}
	return best
}
