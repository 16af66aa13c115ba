// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package insertsize

import "github.com/nucleomics/seqqc/record"

// DefaultMaxAdapters is the default cap on distinct adapter-tail
// candidates tracked per mate (spec §4.8.2).
const DefaultMaxAdapters = 10_000

// Options configures an Estimator.
type Options struct {
	MaxAdapters int
}

func (o Options) withDefaults() Options {
	if o.MaxAdapters <= 0 {
		o.MaxAdapters = DefaultMaxAdapters
	}
	return o
}

// Estimator is InsertSizeMetrics: it detects read-pair overlap via
// reverse-complement matching and accumulates an insert-size histogram
// plus per-mate adapter-tail candidate tables (spec §4.8).
type Estimator struct {
	opts Options

	insertSizes map[int]uint64
	adapters1   *adapterTable
	adapters2   *adapterTable
}

// New constructs an Estimator.
func New(opts Options) *Estimator {
	opts = opts.withDefaults()
	return &Estimator{
		opts:        opts,
		insertSizes: make(map[int]uint64),
		adapters1:   newAdapterTable(opts.MaxAdapters),
		adapters2:   newAdapterTable(opts.MaxAdapters),
	}
}

// Add processes one read pair: detects overlap and, if found, records the
// insert size and the adapter-tail candidates beyond it (spec §4.8.1,
// §4.8.2). Pairs shorter than the 16-byte detection window count as
// insert_size 0, same as a detector that found no match.
func (e *Estimator) Add(s1, s2 []byte) {
	size := detectOverlap(s1, s2)
	e.insertSizes[size]++
	if size <= 0 {
		return
	}
	if size < len(s1) {
		e.adapters1.add(s1[size:])
	}
	if size < len(s2) {
		e.adapters2.add(s2[size:])
	}
}

// AddBatch processes consecutive read pairs (2i, 2i+1) drawn from batch,
// for callers that feed InsertSizeMetrics directly from a RecordBatch of
// interleaved mates (mirrors metrics/dedup.Estimator.AddBatch).
func (e *Estimator) AddBatch(batch record.RecordBatch) error {
	for i := 0; i+1 < len(batch.Metas); i += 2 {
		s1 := batch.Metas[i].SequenceBytes(batch.Buffer)
		s2 := batch.Metas[i+1].SequenceBytes(batch.Buffer)
		e.Add(s1, s2)
	}
	return nil
}

// InsertSizes returns the insert-size histogram: insert size -> observed
// count, with 0 meaning "no overlap" (spec §4.8.3).
func (e *Estimator) InsertSizes() map[int]uint64 {
	out := make(map[int]uint64, len(e.insertSizes))
	for k, v := range e.insertSizes {
		out[k] = v
	}
	return out
}

// AdaptersRead1 returns read 1's occupied adapter-tail candidate slots.
func (e *Estimator) AdaptersRead1() []AdapterEntry { return e.adapters1.entries() }

// AdaptersRead2 returns read 2's occupied adapter-tail candidate slots.
func (e *Estimator) AdaptersRead2() []AdapterEntry { return e.adapters2.entries() }
