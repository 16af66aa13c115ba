// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintConcatenatesFrontAndBack(t *testing.T) {
	read1 := []byte("AAAACCCCGGGG") // len 12
	read2 := []byte("TTTTGGGGCCCC") // len 12
	opts := Options{FrontLength: 4, BackLength: 4, FrontOffset: 0, BackOffset: 0}

	fp, total, ok := fingerprint(read1, read2, opts)
	require.True(t, ok)
	require.Equal(t, 24, total)
	require.Equal(t, "AAAACCCC", string(fp))
}

func TestFingerprintClampsOffsetToHalfLength(t *testing.T) {
	// (len-frontLength)/2 = (10-4)/2 = 3, smaller than the requested offset
	// of 100, so the clamp kicks in.
	read1 := []byte("ACGTACGTAC") // len 10
	read2 := []byte("ACGTACGTAC")
	opts := Options{FrontLength: 4, BackLength: 4, FrontOffset: 100, BackOffset: 100}

	fp, _, ok := fingerprint(read1, read2, opts)
	require.True(t, ok)
	require.Equal(t, read1[3:7], fp[:4])
	require.Equal(t, read2[3:7], fp[4:])
}

func TestFingerprintRejectsShortReads(t *testing.T) {
	opts := Options{FrontLength: 8, BackLength: 8}
	_, _, ok := fingerprint([]byte("ACGT"), []byte("ACGTACGTACGT"), opts)
	require.False(t, ok)
}

func TestFingerprintTableCountsRepeats(t *testing.T) {
	tab := newFingerprintTable(100)
	tab.add(12345)
	tab.add(12345)
	tab.add(67890)

	counts := tab.duplicationCounts()
	require.Len(t, counts, 2)
	var total uint64
	for _, c := range counts {
		total += c
	}
	require.EqualValues(t, 3, total)
}

func TestFingerprintTableIgnoresZeroHash(t *testing.T) {
	tab := newFingerprintTable(100)
	tab.add(0)
	require.Empty(t, tab.duplicationCounts())
}

func TestFingerprintTableRehashesOnCapacity(t *testing.T) {
	tab := newFingerprintTable(4)
	// Every hash is admitted at modulo_bits=0 (ignore_mask is all-zero);
	// once stored reaches maxStored the table must increment m, which then
	// starts rejecting hashes (and dropping stored entries) that fail the
	// new mask.
	hashes := []uint64{2, 4, 6, 8, 10, 12}
	for _, h := range hashes {
		tab.add(h)
	}
	require.Greater(t, tab.m, uint(0))
	require.Less(t, tab.stored, len(hashes))
	for _, c := range tab.duplicationCounts() {
		require.GreaterOrEqual(t, c, uint64(1))
	}
}

func TestEstimatorAddAccumulatesDuplicates(t *testing.T) {
	e := New(Options{FrontLength: 4, BackLength: 4, FrontOffset: 0, BackOffset: 0})
	read1 := []byte("AAAACCCCGGGG")
	read2 := []byte("TTTTGGGGCCCC")

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Add(read1, read2))
	}
	require.EqualValues(t, 3, e.PairsSeen())
	require.EqualValues(t, 0, e.PairsDropped())

	counts := e.DuplicationCounts()
	require.Len(t, counts, 1)
	require.EqualValues(t, 3, counts[0])
}

func TestEstimatorDropsShortPairs(t *testing.T) {
	e := New(Options{FrontLength: 8, BackLength: 8})
	require.NoError(t, e.Add([]byte("ACGT"), []byte("ACGTACGTACGT")))
	require.EqualValues(t, 1, e.PairsSeen())
	require.EqualValues(t, 1, e.PairsDropped())
	require.Empty(t, e.DuplicationCounts())
}

func TestEstimatorEffectiveSamplingRateStartsAtOne(t *testing.T) {
	e := New(Options{})
	require.Equal(t, 1.0, e.EffectiveSamplingRate())
}
