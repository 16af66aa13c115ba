// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package basequality implements BaseQualityTable (spec §4.2): per-position
// base and Phred-quality count tables, a GC-content distribution and a
// per-read average-Phred distribution.
//
// The dense 2-D tables are flattened into row-major []uint64 slices rather
// than [][]uint64, the same layout choice the teacher's encoding/bam column
// stores make for predictable cache behavior over a monotonically growing
// row count.
package basequality

import (
	"math"

	"github.com/nucleomics/seqqc/nucleotide"
	"github.com/nucleomics/seqqc/phredtab"
	"github.com/nucleomics/seqqc/qcsimd"
	"github.com/nucleomics/seqqc/record"
)

// NumBaseClasses is the width of the base-count table (N,A,C,G,T).
const NumBaseClasses = nucleotide.NumBases

// PhredBuckets is the width of the Phred-count table (spec §4.2.1:
// (PHRED_LIMIT/4)+1 with PHRED_LIMIT=44, giving 12 buckets covering q in
// [0,47] after clamping).
const PhredBuckets = phredtab.Buckets

// stagingOverflow is the point at which a staging lane must be flushed:
// the staging tables are uint16, so the counter tracking "how many adds
// have touched this table since the last flush" saturates at 65535.
const stagingOverflow = math.MaxUint16

// Table is BaseQualityTable. Not safe for concurrent use.
type Table struct {
	maxLength int

	// committed counts, row-major: committed[pos*width + class].
	baseCounts  []uint64
	phredCounts []uint64

	// staging counts of identical shape, flushed into the committed
	// tables when stagingCount would overflow uint16, or on readout.
	baseStaging  []uint16
	phredStaging []uint16
	stagingCount int

	gcDistribution    [101]uint64
	phredDistribution [phredtab.PhredMax + 1]uint64

	numberOfReads int64
}

// New creates an empty Table.
func New() *Table {
	return &Table{}
}

// NumberOfReads returns the number of reads seen so far.
func (t *Table) NumberOfReads() int64 { return t.numberOfReads }

// MaxLength returns the longest sequence length observed so far.
func (t *Table) MaxLength() int { return t.maxLength }

// Add processes every record in batch, per spec §4.2.2. Reads count toward
// NumberOfReads exactly once, even if a later step in the same read fails.
func (t *Table) Add(batch record.RecordBatch) error {
	for i := range batch.Metas {
		m := &batch.Metas[i]
		t.numberOfReads++
		if err := t.addOne(m, batch.Buffer); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) addOne(m *record.RecordMeta, buf *record.RecordBuffer) error {
	seq := m.SequenceBytes(buf)
	qual := m.QualitiesBytes(buf)
	length := len(seq)
	if length == 0 {
		return nil
	}
	t.ensureCapacity(length)

	a, c, g, tt, _ := countACGT(seq)

	for pos, b := range seq {
		idx := nucleotide.Index(b)
		t.baseStaging[pos*NumBaseClasses+int(idx)]++
	}

	var accErr float64
	for pos := 0; pos < length; pos++ {
		q, errRate, ok := phredtab.ToErrorRate(qual[pos])
		if !ok {
			return record.E(record.KindInvalidPhred, "quality byte out of range")
		}
		accErr += errRate
		bucket := phredtab.Bucket(q)
		t.phredStaging[pos*PhredBuckets+bucket]++
	}

	t.stagingCount++
	if t.stagingCount >= stagingOverflow {
		t.flush()
	}

	// spec §4.2.2 step 5: the denominator is A+C+G+T, not the full read
	// length, so N bases don't dilute the GC fraction (scenario S1:
	// GGGGNNNN must land in gc_distribution[100], not [50]).
	gcPct := 0
	if acgt := a + c + g + tt; acgt > 0 {
		gcPct = int(math.Round(100 * float64(c+g) / float64(acgt)))
	}
	if gcPct > 100 {
		gcPct = 100
	}
	t.gcDistribution[gcPct]++

	avgErr := accErr / float64(length)
	phred := int(math.Round(-10 * math.Log10(avgErr)))
	if phred < 0 {
		phred = 0
	}
	if phred > phredtab.PhredMax {
		phred = phredtab.PhredMax
	}
	t.phredDistribution[phred]++
	m.AccumulatedErrorRate = accErr

	return nil
}

// countACGT counts A/C/G/T occurrences using the word-parallel scan when
// available (spec §4.2.2 step 2); N is implicit (length minus the other
// four).
func countACGT(seq []byte) (a, c, g, t, n int) {
	return qcsimd.CountBases(seq)
}

// ensureCapacity grows the committed and staging tables to cover length
// positions, zero-filling the new rows (spec invariant 5).
func (t *Table) ensureCapacity(length int) {
	if length <= t.maxLength {
		return
	}
	oldLen := t.maxLength
	t.maxLength = length

	t.baseCounts = growRows(t.baseCounts, oldLen, length, NumBaseClasses)
	t.phredCounts = growRows(t.phredCounts, oldLen, length, PhredBuckets)
	t.baseStaging = growRowsU16(t.baseStaging, oldLen, length, NumBaseClasses)
	t.phredStaging = growRowsU16(t.phredStaging, oldLen, length, PhredBuckets)
}

func growRows(old []uint64, oldLen, newLen, width int) []uint64 {
	grown := make([]uint64, newLen*width)
	copy(grown, old[:oldLen*width])
	return grown
}

func growRowsU16(old []uint16, oldLen, newLen, width int) []uint16 {
	grown := make([]uint16, newLen*width)
	copy(grown, old[:oldLen*width])
	return grown
}

// flush folds every staging lane into its committed counterpart and zeros
// the staging tables (spec invariant 6).
func (t *Table) flush() {
	for i, v := range t.baseStaging {
		if v != 0 {
			t.baseCounts[i] += uint64(v)
			t.baseStaging[i] = 0
		}
	}
	for i, v := range t.phredStaging {
		if v != 0 {
			t.phredCounts[i] += uint64(v)
			t.phredStaging[i] = 0
		}
	}
	t.stagingCount = 0
}

// BaseCounts returns a snapshot of base_counts[pos][nuc_idx], flushing
// staging first.
func (t *Table) BaseCounts() [][]uint64 {
	t.flush()
	return unflattenU64(t.baseCounts, t.maxLength, NumBaseClasses)
}

// PhredCounts returns a snapshot of phred_counts[pos][bucket], flushing
// staging first.
func (t *Table) PhredCounts() [][]uint64 {
	t.flush()
	return unflattenU64(t.phredCounts, t.maxLength, PhredBuckets)
}

// GCDistribution returns a snapshot of gc_distribution[0..100].
func (t *Table) GCDistribution() [101]uint64 { return t.gcDistribution }

// PhredScoreDistribution returns a snapshot of phred_score_distribution.
func (t *Table) PhredScoreDistribution() [phredtab.PhredMax + 1]uint64 {
	return t.phredDistribution
}

func unflattenU64(flat []uint64, rows, width int) [][]uint64 {
	out := make([][]uint64, rows)
	for i := range out {
		row := make([]uint64, width)
		copy(row, flat[i*width:(i+1)*width])
		out[i] = row
	}
	return out
}
