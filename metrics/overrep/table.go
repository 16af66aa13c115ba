// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overrep

// kmerSlot is one entry of KmerTable: (hash, count). A zero hash means the
// slot is empty (spec invariant 8).
type kmerSlot struct {
	hash  uint64
	count uint32
}

// kmerTable is an open-addressed, linear-probed hash table capped at
// maxUnique distinct entries, capacity a power of two sized to roughly
// 1.5x maxUnique (spec §4.4.2).
type kmerTable struct {
	slots     []kmerSlot
	mask      uint64
	maxUnique int
	unique    int
}

func newKmerTable(maxUnique int) *kmerTable {
	capacity := nextPowerOfTwo(uint64(maxUnique) + uint64(maxUnique)/2)
	if capacity < 16 {
		capacity = 16
	}
	return &kmerTable{
		slots:     make([]kmerSlot, capacity),
		mask:      capacity - 1,
		maxUnique: maxUnique,
	}
}

func nextPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// insert admits hash into the table following spec §4.4.2's semantics: on
// an empty slot, store it only if the unique-entry cap hasn't been
// reached; on the matching hash, increment; on collision, linear-probe.
func (t *kmerTable) insert(hash uint64) {
	idx := hash & t.mask
	for {
		s := &t.slots[idx]
		if s.hash == 0 {
			if t.unique >= t.maxUnique {
				return
			}
			s.hash = hash
			s.count = 1
			t.unique++
			return
		}
		if s.hash == hash {
			s.count++
			return
		}
		idx = (idx + 1) & t.mask
	}
}

// forEach calls fn for every occupied slot.
func (t *kmerTable) forEach(fn func(hash uint64, count uint32)) {
	for _, s := range t.slots {
		if s.hash != 0 {
			fn(s.hash, s.count)
		}
	}
}
