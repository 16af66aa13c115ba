// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcsimd

// Hamming16 returns the number of mismatching bytes between two 16-byte
// windows. Used by InsertSizeMetrics' overlap detector (spec §4.8.1) after
// an 8-byte chunk compare has flagged a candidate position as promising.
func Hamming16(a, b []byte) int {
	d := 0
	for i := 0; i < 16; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
