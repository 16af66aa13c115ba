// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package record

import (
	"encoding/binary"

	"github.com/minio/highwayhash"
)

// zeroKey is the fixed HighwayHash key used for buffer digests. The digest
// is a debugging aid, not a security boundary, so a well-known key (rather
// than a per-process random one) keeps repeated runs over the same input
// reproducible; this mirrors fusion/postprocess.go's zeroSeed pattern in the
// teacher, which hashes grouping keys with an all-zero HighwayHash seed for
// the same reason.
var zeroKey = make([]byte, 32)

// Digest64 returns a cheap, non-cryptographic content digest of the
// buffer's bytes, computing and caching it on first use. The parsers log
// this alongside fatal parse and read errors so an operator can tell
// whether two error reports came from the same input bytes without
// printing the (possibly huge) buffer itself.
func (b *RecordBuffer) Digest64() uint64 {
	if !b.hasDigest {
		sum := highwayhash.Sum(b.Bytes, zeroKey)
		copy(b.digest[:], sum[:8])
		b.hasDigest = true
	}
	return binary.LittleEndian.Uint64(b.digest[:])
}
