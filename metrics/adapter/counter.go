// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package adapter

import (
	"github.com/nucleomics/seqqc/nucleotide"
	"github.com/nucleomics/seqqc/qcsimd"
	"github.com/nucleomics/seqqc/record"
)

// Counter is AdapterCounter.
type Counter struct {
	adapters  []string
	matchers  []matcher
	maxLength int
	// counts[adapterIndex] is a per-position hit count, grown to maxLength.
	counts [][]uint64
}

// New builds a Counter from an ordered list of ASCII adapter strings, each
// of length in (0, 64].
func New(adapters []string) (*Counter, error) {
	matchers, err := buildMatchers(adapters)
	if err != nil {
		return nil, err
	}
	c := &Counter{
		adapters: adapters,
		matchers: matchers,
		counts:   make([][]uint64, len(adapters)),
	}
	return c, nil
}

// Add processes every record in batch.
func (c *Counter) Add(batch record.RecordBatch) error {
	for i := range batch.Metas {
		m := &batch.Metas[i]
		seq := m.SequenceBytes(batch.Buffer)
		c.addOne(seq)
	}
	return nil
}

func (c *Counter) addOne(seq []byte) {
	if len(seq) > c.maxLength {
		c.ensureCapacity(len(seq))
	}
	for mi := range c.matchers {
		c.searchOneMatcher(&c.matchers[mi], seq)
	}
}

// searchOneMatcher runs the shift-AND automaton of one matcher over seq,
// crediting each of its adapters only at the earliest start position found
// (spec §4.3.2).
func (c *Counter) searchOneMatcher(m *matcher, seq []byte) {
	var r, alreadyFound uint64
	for j, b := range seq {
		classMask := m.bitmask[nucleotide.Index(b)]
		r = qcsimd.ShiftAndStep(r, m.initMask, classMask)
		if r&m.foundMask == 0 {
			continue
		}
		for _, s := range m.slots {
			if s.foundBit&r == 0 || alreadyFound&s.foundBit != 0 {
				continue
			}
			start := j - s.length + 1
			c.counts[s.adapterIndex][start]++
			alreadyFound |= s.foundBit
		}
	}
}

func (c *Counter) ensureCapacity(length int) {
	for i := range c.counts {
		grown := make([]uint64, length)
		copy(grown, c.counts[i])
		c.counts[i] = grown
	}
	c.maxLength = length
}

// AdapterCount pairs an adapter string with its per-start-position hit
// counts, sized to MaxLength.
type AdapterCount struct {
	Adapter string
	Counts  []uint64
}

// GetCounts returns one AdapterCount per configured adapter, in input
// order (spec §4.3.3).
func (c *Counter) GetCounts() []AdapterCount {
	out := make([]AdapterCount, len(c.adapters))
	for i, a := range c.adapters {
		counts := make([]uint64, c.maxLength)
		copy(counts, c.counts[i])
		out[i] = AdapterCount{Adapter: a, Counts: counts}
	}
	return out
}

// MaxLength returns the longest sequence length observed so far.
func (c *Counter) MaxLength() int { return c.maxLength }
