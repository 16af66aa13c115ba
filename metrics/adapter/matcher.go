// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package adapter implements AdapterCounter (spec §4.3): a bit-parallel,
// multi-pattern exact matcher built on qcsimd.ShiftAndStep, recording the
// earliest start position of each configured adapter per read.
package adapter

import (
	"github.com/nucleomics/seqqc/nucleotide"
	"github.com/nucleomics/seqqc/record"
)

// MatcherCapacity is the number of character positions a single shift-AND
// automaton can track: the width of the uint64 state register (spec
// §4.3.1's "machine-word width").
const MatcherCapacity = 64

// adapterSlot identifies one adapter's termination bit within a matcher.
type adapterSlot struct {
	adapterIndex int
	length       int
	foundBit     uint64
}

// matcher is one shift-AND automaton: a packed run of adapters sharing a
// single 64-bit state register.
type matcher struct {
	initMask  uint64
	foundMask uint64
	bitmask   [nucleotide.NumBases]uint64
	slots     []adapterSlot
}

// buildMatchers packs adapters end-to-end into as few matchers as
// possible, starting a new matcher whenever the next adapter would not fit
// in the remaining bit capacity of the current one (spec §4.3.1). Multiple
// matchers run independently per read; the "pair two into a 128-bit lane"
// detail in the spec is a performance pairing of two otherwise-independent
// 64-bit chains and has no effect on the result, so this implementation
// just runs each matcher's chain in its own loop (see Counter.addOne).
func buildMatchers(adapters []string) ([]matcher, error) {
	var matchers []matcher
	var cur matcher
	var packed []byte
	offset := 0

	finish := func() {
		if offset == 0 {
			return
		}
		for i, ch := range packed {
			idx := nucleotide.Index(ch)
			cur.bitmask[idx] |= uint64(1) << uint(i)
		}
		matchers = append(matchers, cur)
		cur = matcher{}
		packed = nil
		offset = 0
	}

	for idx, a := range adapters {
		if len(a) == 0 || len(a) > MatcherCapacity {
			return nil, record.E(record.KindBadConfig, "adapter length must be in (0, 64] bytes")
		}
		if offset+len(a) > MatcherCapacity {
			finish()
		}
		o := offset
		cur.initMask |= uint64(1) << uint(o)
		foundBit := uint64(1) << uint(o+len(a)-1)
		cur.foundMask |= foundBit
		cur.slots = append(cur.slots, adapterSlot{adapterIndex: idx, length: len(a), foundBit: foundBit})
		packed = append(packed, a...)
		offset += len(a)
	}
	finish()
	return matchers, nil
}
