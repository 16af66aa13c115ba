// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcpipeline

import (
	"testing"

	"github.com/nucleomics/seqqc/metrics/basequality"
	"github.com/nucleomics/seqqc/metrics/nanostats"
	"github.com/nucleomics/seqqc/record"
	"github.com/stretchr/testify/require"
)

// fakeSource replays a fixed sequence of batches, then an empty
// terminal batch, mimicking a real Parser's Next contract.
type fakeSource struct {
	batches []record.RecordBatch
	i       int
}

func (f *fakeSource) Next() (record.RecordBatch, error) {
	if f.i >= len(f.batches) {
		return record.RecordBatch{}, nil
	}
	b := f.batches[f.i]
	f.i++
	return b, nil
}

func oneBatch(name, seq, qual string) record.RecordBatch {
	buf := []byte(name + seq + qual)
	return record.RecordBatch{
		Buffer: &record.RecordBuffer{Bytes: buf},
		Metas: []record.RecordMeta{{
			NameOffset:      0,
			NameLength:      uint32(len(name)),
			SequenceOffset:  uint32(len(name)),
			SequenceLength:  uint32(len(seq)),
			QualitiesOffset: uint32(len(name) + len(seq)),
		}},
	}
}

func TestEngineRunAppliesBaseQualityBeforeNanoStats(t *testing.T) {
	bq := basequality.New()
	ns := nanostats.New()
	e := &Engine{Source: SourceFASTQ, BaseQuality: bq, NanoStats: ns}

	name := "read1 ch=1 start_time=2021-03-01T12:00:00Z"
	src := &fakeSource{batches: []record.RecordBatch{oneBatch(name, "ACGT", "IIII")}}

	require.NoError(t, e.Run(src))
	require.EqualValues(t, 1, bq.NumberOfReads())

	infos := ns.Infos()
	require.Len(t, infos, 1)
	// NanoStats' CumulativeErrorRate is only meaningful if it ran after
	// BaseQualityTable populated RecordMeta.AccumulatedErrorRate; an all-Q40
	// 4nt read has a small positive accumulated error, not the untouched
	// zero value.
	require.Greater(t, infos[0].CumulativeErrorRate, 0.0)
}

func TestEngineRunStopsOnEmptyBatch(t *testing.T) {
	e := &Engine{BaseQuality: basequality.New()}
	src := &fakeSource{}
	require.NoError(t, e.Run(src))
	require.EqualValues(t, 0, e.BaseQuality.NumberOfReads())
}

func TestEngineRunSkipsNilMetrics(t *testing.T) {
	e := &Engine{}
	src := &fakeSource{batches: []record.RecordBatch{oneBatch("read1", "ACGT", "IIII")}}
	require.NoError(t, e.Run(src))
}
