// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcbam

// nibbleToBase is the SAMv1 binary encoding's 4-bit seq nibble -> IUPAC
// ASCII table (index is the nibble value 0-15).
var nibbleToBase = [16]byte{
	'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V',
	'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N',
}

// decodeSeq maps BAM 4-bit nibble codes, already unpacked one per byte by
// qcsimd.UnpackSeq, to ASCII IUPAC bytes, writing into dst (len(dst) must
// be at least len(nibbles)).
func decodeSeq(dst []byte, nibbles []byte) {
	for i, n := range nibbles {
		dst[i] = nibbleToBase[n]
	}
}

// decodeQual adds the Phred+33 ASCII offset to each raw (offset-subtracted)
// BAM quality byte, in place.
func decodeQual(qual []byte) {
	for i, q := range qual {
		qual[i] = q + 33
	}
}
