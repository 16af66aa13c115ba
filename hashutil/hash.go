// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hashutil

import (
	"github.com/blainsmith/seahash"
	"github.com/spaolacci/murmur3"
)

// Murmur3_64 returns the low 64 bits of the MurmurHash3 x64 128-bit hash of
// data seeded with seed, used by metrics/dedup for fingerprint hashing and
// metrics/insertsize for adapter-candidate keys (spec §4.5.1, §4.8.2).
func Murmur3_64(data []byte, seed uint32) uint64 {
	h1, _ := murmur3.Sum128WithSeed(data, seed)
	return h1
}

// SeaHash64 hashes a string with SeaHash, used by metrics/pertile to shard
// its lazily-allocated per-tile-id table the same way the teacher's
// bamprovider.concurrentMap shards mate lookups by read name.
func SeaHash64(s string) uint64 {
	return seahash.Sum64([]byte(s))
}
