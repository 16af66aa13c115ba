// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"github.com/nucleomics/seqqc/hashutil"
	"github.com/nucleomics/seqqc/record"
)

// Estimator is DedupEstimator: it fingerprints read pairs, hashes each
// fingerprint, and tracks occurrence counts in a fixed-memory table whose
// sampling rate adapts as the table fills (spec §4.5).
type Estimator struct {
	opts  Options
	table *fingerprintTable

	pairsSeen    int64
	pairsDropped int64
}

// New constructs an Estimator.
func New(opts Options) *Estimator {
	opts = opts.withDefaults()
	return &Estimator{
		opts:  opts,
		table: newFingerprintTable(opts.MaxStoredFingerprints),
	}
}

// Add fingerprints one read pair and feeds it to the table. read1 and read2
// must be long enough to contribute FrontLength/BackLength bytes
// respectively; pairs that are too short are counted as dropped rather
// than erroring, since short reads are a fact of the input, not a defect
// (spec §4.5.1).
func (e *Estimator) Add(read1, read2 []byte) error {
	e.pairsSeen++
	fp, totalLength, ok := fingerprint(read1, read2, e.opts)
	if !ok {
		e.pairsDropped++
		return nil
	}
	seed := uint32(totalLength >> 6)
	hash := hashutil.Murmur3_64(fp, seed)
	e.table.add(hash)
	return nil
}

// AddBatch fingerprints consecutive read pairs (2i, 2i+1) drawn from batch,
// for callers that feed DedupEstimator directly from a RecordBatch of
// interleaved mates.
func (e *Estimator) AddBatch(batch record.RecordBatch) error {
	for i := 0; i+1 < len(batch.Metas); i += 2 {
		read1 := batch.Metas[i].SequenceBytes(batch.Buffer)
		read2 := batch.Metas[i+1].SequenceBytes(batch.Buffer)
		if err := e.Add(read1, read2); err != nil {
			return err
		}
	}
	return nil
}

// DuplicationCounts returns the unsorted per-fingerprint occupied counts
// currently stored in the table.
func (e *Estimator) DuplicationCounts() []uint64 { return e.table.duplicationCounts() }

// EffectiveSamplingRate returns 2^-modulo_bits, the fraction of fingerprints
// currently admitted into the table (spec §4.5.2).
func (e *Estimator) EffectiveSamplingRate() float64 {
	return 1.0 / float64(uint64(1)<<e.table.m)
}

// PairsSeen returns the total number of read pairs passed to Add.
func (e *Estimator) PairsSeen() int64 { return e.pairsSeen }

// PairsDropped returns the number of pairs too short to fingerprint.
func (e *Estimator) PairsDropped() int64 { return e.pairsDropped }

// StoredFingerprints returns the number of entries currently stored in the
// table.
func (e *Estimator) StoredFingerprints() int { return e.table.stored }
