// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcsimd

// UnpackSeq expands a .bam packed 4-bit big-endian sequence (two bases per
// byte, high nibble first) into one base code per output byte:
//
//	dst[2*i]   = src[i] >> 4
//	dst[2*i+1] = src[i] & 15
//
// if len(dst) is odd, the final low nibble of src is not consumed. Adapted
// from the teacher's biosimd.UnpackSeq; retargeted to plain byte codes
// (callers map through the .bam nibble->IUPAC table) rather than requiring
// a NibbleLookupTable, since the BAM parser looks the raw nibble values up
// in its own decode table (qcbam's nibbleToBase).
//
// It panics if len(src) != (len(dst)+1)/2.
func UnpackSeq(dst, src []byte) {
	dstLen := len(dst)
	nFullByte := dstLen >> 1
	odd := dstLen & 1
	if len(src) != nFullByte+odd {
		panic("qcsimd.UnpackSeq: len(src) must equal (len(dst)+1)/2")
	}
	for i := 0; i < nFullByte; i++ {
		b := src[i]
		dst[2*i] = b >> 4
		dst[2*i+1] = b & 15
	}
	if odd == 1 {
		dst[2*nFullByte] = src[nFullByte] >> 4
	}
}
