// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcsimd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountBases(t *testing.T) {
	a, c, g, t_, n := CountBases([]byte("ACGTACGTNNacgtNNNN12345678"))
	// Lowercase acgt folds into A/C/G/T: 2 upper + 1 lower of each.
	require.Equal(t, 3, a)
	require.Equal(t, 3, c)
	require.Equal(t, 3, g)
	require.Equal(t, 3, t_)
	require.Equal(t, 14, n) // 2 N + 4 N + 8 digits = 14
}

func TestUnpackSeq(t *testing.T) {
	dst := make([]byte, 4)
	UnpackSeq(dst, []byte{0x12, 0x34})
	require.Equal(t, []byte{1, 2, 3, 4}, dst)

	dst3 := make([]byte, 3)
	UnpackSeq(dst3, []byte{0x12, 0x30})
	require.Equal(t, []byte{1, 2, 3}, dst3)
}

func TestShiftAndStep(t *testing.T) {
	var r uint64
	r = ShiftAndStep(r, 1, 0xFFFFFFFFFFFFFFFF)
	require.Equal(t, uint64(1), r)
	r = ShiftAndStep(r, 1, 0xFFFFFFFFFFFFFFFF)
	require.Equal(t, uint64(3), r)
}

func TestHamming16(t *testing.T) {
	a := []byte("ACGTACGTACGTACGT")
	b := []byte("ACGTACGTACGTACGT")
	require.Equal(t, 0, Hamming16(a, b))
	c := []byte("ACGTACGTACGTACGA")
	require.Equal(t, 1, Hamming16(a, c))
}
