// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package insertsize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevcompReversesAndComplements(t *testing.T) {
	require.Equal(t, "ACGT", string(revcomp([]byte("ACGT"))))
	require.Equal(t, "TTTT", string(revcomp([]byte("AAAA"))))
	require.Equal(t, "NNNN", string(revcomp([]byte("NNNN"))))
}

func TestDetectOverlapFullyOverlappingPair(t *testing.T) {
	// s2 is the reverse complement of s1 (fully-overlapping 20nt pair);
	// needle_start = revcomp(s2[0:16]) should equal s1[0:16] so the
	// detector reports insert_size = 16.
	s1 := []byte("ACGTACGTACGTACGTACGT")
	s2 := revcomp(s1)
	size := detectOverlap(s1, s2)
	require.Equal(t, 16, size)
}

func TestDetectOverlapNoMatch(t *testing.T) {
	s1 := []byte("ACGTACGTACGTACGTACGT")
	s2 := []byte("TTTTTTTTTTTTTTTTTTTT")
	require.Equal(t, 0, detectOverlap(s1, s2))
}

func TestDetectOverlapShortReadsReturnZero(t *testing.T) {
	require.Equal(t, 0, detectOverlap([]byte("ACGT"), []byte("ACGTACGTACGTACGTACGT")))
}

func TestDetectOverlapCaseInsensitive(t *testing.T) {
	s1 := []byte("acgtacgtacgtacgtACGT")
	s2 := revcomp([]byte("ACGTACGTACGTACGTACGT"))
	require.Equal(t, 16, detectOverlap(s1, s2))
}

func TestDetectOverlapToleratesOneMismatch(t *testing.T) {
	s1 := []byte("ACGTACGTACGTACGTACGT")
	s2 := revcomp(s1)
	// Flip one base inside s1's matching window; hamming distance 1 must
	// still be accepted.
	s1[3] = 'G'
	require.Equal(t, 16, detectOverlap(s1, s2))
}

func TestAdapterTableTracksCandidatesWithCollisionVerification(t *testing.T) {
	tab := newAdapterTable(10)
	tab.add([]byte("AAAACCCCGGGGTTTT"))
	tab.add([]byte("AAAACCCCGGGGTTTT"))
	tab.add([]byte("TTTTGGGGCCCCAAAA"))

	entries := tab.entries()
	require.Len(t, entries, 2)
	var total uint64
	for _, e := range entries {
		total += e.Count
	}
	require.EqualValues(t, 3, total)
}

func TestAdapterTableTruncatesLongTails(t *testing.T) {
	tab := newAdapterTable(10)
	long := make([]byte, 50)
	for i := range long {
		long[i] = "ACGT"[i%4]
	}
	tab.add(long)
	entries := tab.entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Bytes, maxAdapterTailLength)
}

func TestEstimatorAddRecordsHistogramAndAdapters(t *testing.T) {
	e := New(Options{})
	// 24nt each; needle_start already matches s1 at position 0, so the
	// detector reports insert_size=16 and both tails start at offset 16.
	s1 := []byte("ACGTACGTACGTACGTACGTAAAA")
	s2 := revcomp(s1[:20])
	s2 = append(s2, []byte("GGGG")...)

	e.Add(s1, s2)
	hist := e.InsertSizes()
	require.NotZero(t, hist[16])

	a1 := e.AdaptersRead1()
	require.Len(t, a1, 1)
	require.Equal(t, "ACGTAAAA", string(a1[0].Bytes))
	a2 := e.AdaptersRead2()
	require.Len(t, a2, 1)
	require.Equal(t, "ACGTGGGG", string(a2[0].Bytes))
}

func TestEstimatorNoOverlapCountsZeroBucket(t *testing.T) {
	e := New(Options{})
	e.Add([]byte("ACGTACGTACGTACGTACGT"), []byte("TTTTTTTTTTTTTTTTTTTT"))
	hist := e.InsertSizes()
	require.EqualValues(t, 1, hist[0])
	require.Empty(t, e.AdaptersRead1())
	require.Empty(t, e.AdaptersRead2())
}
