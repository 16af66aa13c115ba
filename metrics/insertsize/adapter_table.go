// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package insertsize

import (
	"bytes"

	"github.com/nucleomics/seqqc/hashutil"
)

const maxAdapterTailLength = 31

// adapterSlot is one entry of an adapter table: the candidate bytes, their
// MurmurHash3 key, and an occurrence count. A zero-length bytes slice with
// a zero hash marks an empty slot; since a real adapter candidate always
// has length > 0, this sentinel cannot collide with real data.
type adapterSlot struct {
	hash  uint64
	bytes []byte
	count uint64
}

// adapterTable is a capped, open-addressed table of adapter-tail
// candidates keyed on MurmurHash3, with length+memcmp verification on hash
// collision (spec §4.8.2).
type adapterTable struct {
	slots    []adapterSlot
	mask     uint64
	maxSlots int
	used     int
}

func newAdapterTable(maxAdapters int) *adapterTable {
	capacity := nextPowerOfTwo(uint64(maxAdapters) * 2)
	if capacity < 16 {
		capacity = 16
	}
	return &adapterTable{
		slots:    make([]adapterSlot, capacity),
		mask:     capacity - 1,
		maxSlots: maxAdapters,
	}
}

func nextPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// add increments tail's count, inserting a new entry if table capacity
// allows and the exact bytes aren't already present. tail is copied into
// the table's own storage on first insertion.
func (t *adapterTable) add(tail []byte) {
	if len(tail) == 0 {
		return
	}
	if len(tail) > maxAdapterTailLength {
		tail = tail[:maxAdapterTailLength]
	}
	hash := hashutil.Murmur3_64(tail, 0)

	idx := hash & t.mask
	for {
		s := &t.slots[idx]
		if s.bytes == nil {
			if t.used >= t.maxSlots {
				return
			}
			s.hash = hash
			s.bytes = append([]byte(nil), tail...)
			s.count = 1
			t.used++
			return
		}
		if s.hash == hash && bytes.Equal(s.bytes, tail) {
			s.count++
			return
		}
		idx = (idx + 1) & t.mask
	}
}

// AdapterEntry is one occupied slot's readout (spec §4.8.3).
type AdapterEntry struct {
	Bytes []byte
	Count uint64
}

func (t *adapterTable) entries() []AdapterEntry {
	out := make([]AdapterEntry, 0, t.used)
	for _, s := range t.slots {
		if s.bytes != nil {
			out = append(out, AdapterEntry{Bytes: s.bytes, Count: s.count})
		}
	}
	return out
}
