// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overrep

import (
	"sort"

	"github.com/grailbio/base/log"
	"github.com/nucleomics/seqqc/hashutil"
	"github.com/nucleomics/seqqc/record"
)

// Defaults per spec §4.4.1.
const (
	DefaultMaxUniqueFragments = 5_000_000
	DefaultFragmentLength     = 21
	DefaultSampleEvery        = 8
)

// Options configures a Counter.
type Options struct {
	MaxUniqueFragments int
	FragmentLength     int
	SampleEvery        int
}

func (o Options) withDefaults() Options {
	if o.MaxUniqueFragments <= 0 {
		o.MaxUniqueFragments = DefaultMaxUniqueFragments
	}
	if o.FragmentLength <= 0 {
		o.FragmentLength = DefaultFragmentLength
	}
	if o.SampleEvery <= 0 {
		o.SampleEvery = DefaultSampleEvery
	}
	return o
}

// Counter is OverrepresentedSequences.
type Counter struct {
	opts  Options
	table *kmerTable

	numberOfSequences int64
	sampledSequences  int64
	readIndex         int64
}

// New constructs a Counter. FragmentLength must be odd and in [3, 31].
func New(opts Options) (*Counter, error) {
	opts = opts.withDefaults()
	if opts.FragmentLength < 3 || opts.FragmentLength > 31 || opts.FragmentLength%2 == 0 {
		return nil, record.E(record.KindBadConfig, "fragment_length must be odd and in [3, 31]")
	}
	return &Counter{opts: opts, table: newKmerTable(opts.MaxUniqueFragments)}, nil
}

// Add processes every record in batch (spec §4.4.1).
func (c *Counter) Add(batch record.RecordBatch) error {
	for i := range batch.Metas {
		m := &batch.Metas[i]
		c.numberOfSequences++
		sample := c.readIndex%int64(c.opts.SampleEvery) == 0
		c.readIndex++
		if !sample {
			continue
		}
		c.sampledSequences++
		seq := m.SequenceBytes(batch.Buffer)
		if len(seq) < c.opts.FragmentLength {
			// A sampled read too short to fragment still counts as
			// sampled; it just contributes nothing (spec design notes).
			continue
		}
		c.sampleRead(seq)
	}
	return nil
}

// sampleRead emits front- and back-anchored fragments of a sampled read
// and inserts each into the k-mer table (spec §4.4.1).
func (c *Counter) sampleRead(seq []byte) {
	fragLen := c.opts.FragmentLength
	l := len(seq)
	total := (l + fragLen - 1) / fragLen
	fromMid := total / 2
	mid := l - fromMid*fragLen

	warned := false
	emit := func(frag []byte) {
		v, ok := encodeKmer(frag)
		if !ok {
			if !warned {
				log.Error.Printf("overrep: fragment contains non-ACGT byte, skipping fragment")
				warned = true
			}
			return
		}
		canon := canonicalKmer(v, fragLen)
		hash := hashutil.WangMix64(canon)
		if hash == 0 {
			return // reserved empty-slot sentinel; spec accepts this rare collision
		}
		c.table.insert(hash)
	}

	for pos := 0; pos+fragLen <= mid; pos += fragLen {
		emit(seq[pos : pos+fragLen])
	}
	for i := 0; i < fromMid; i++ {
		pos := mid + i*fragLen
		emit(seq[pos : pos+fragLen])
	}
}

// SequenceCounts returns every observed canonical k-mer (decoded back from
// its invertible hash) mapped to its occurrence count.
func (c *Counter) SequenceCounts() map[string]uint64 {
	out := make(map[string]uint64)
	c.table.forEach(func(hash uint64, count uint32) {
		canon := hashutil.WangUnmix64(hash)
		out[decodeKmer(canon, c.opts.FragmentLength)] = uint64(count)
	})
	return out
}

// Overrepresented is one entry of OverrepresentedSequences (count,
// fraction, sequence).
type Overrepresented struct {
	Count    uint64
	Fraction float64
	Sequence string
}

// OverrepresentedSequences returns every k-mer whose count meets
// clamp(ceil(fraction*sampled_sequences), minThreshold, maxThreshold),
// sorted descending by count, then fraction, then sequence (spec §4.4.3).
func (c *Counter) OverrepresentedSequences(fraction float64, minThreshold, maxThreshold uint64) []Overrepresented {
	threshold := thresholdFor(fraction, c.sampledSequences, minThreshold, maxThreshold)

	var out []Overrepresented
	c.table.forEach(func(hash uint64, count uint32) {
		if uint64(count) < threshold {
			return
		}
		canon := hashutil.WangUnmix64(hash)
		out = append(out, Overrepresented{
			Count:    uint64(count),
			Fraction: float64(count) / float64(c.sampledSequences),
			Sequence: decodeKmer(canon, c.opts.FragmentLength),
		})
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction > out[j].Fraction
		}
		return out[i].Sequence > out[j].Sequence
	})
	return out
}

func thresholdFor(fraction float64, sampled int64, minThreshold, maxThreshold uint64) uint64 {
	raw := uint64(0)
	if sampled > 0 {
		v := fraction * float64(sampled)
		raw = uint64(v)
		if v > float64(raw) {
			raw++ // ceil
		}
	}
	if raw < minThreshold {
		raw = minThreshold
	}
	if raw > maxThreshold {
		raw = maxThreshold
	}
	return raw
}

// NumberOfSequences returns the total number of reads seen.
func (c *Counter) NumberOfSequences() int64 { return c.numberOfSequences }

// SampledSequences returns the number of reads actually sampled for
// fragmentation.
func (c *Counter) SampledSequences() int64 { return c.sampledSequences }
