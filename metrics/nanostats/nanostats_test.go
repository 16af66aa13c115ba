// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package nanostats

import (
	"testing"

	"github.com/nucleomics/seqqc/record"
	"github.com/stretchr/testify/require"
)

func fastqBatch(names ...string) record.RecordBatch {
	var buf []byte
	var metas []record.RecordMeta
	for _, name := range names {
		off := len(buf)
		buf = append(buf, name...)
		seq := "ACGT"
		seqOff := len(buf)
		buf = append(buf, seq...)
		metas = append(metas, record.RecordMeta{
			NameOffset:     uint32(off),
			NameLength:     uint32(len(name)),
			SequenceOffset: uint32(seqOff),
			SequenceLength: uint32(len(seq)),
		})
	}
	return record.RecordBatch{Buffer: &record.RecordBuffer{Bytes: buf}, Metas: metas}
}

func TestParseHeaderFieldsExtractsChannelAndTime(t *testing.T) {
	ch, ts, ok := parseHeaderFields("read1 ch=42 start_time=2021-03-01T12:00:00Z other=ignored")
	require.True(t, ok)
	require.EqualValues(t, 42, ch)
	require.Greater(t, ts, int64(0))
}

func TestParseHeaderFieldsRejectsMissingField(t *testing.T) {
	_, _, ok := parseHeaderFields("read1 ch=42")
	require.False(t, ok)
}

func TestParseHeaderFieldsRejectsNoSpace(t *testing.T) {
	_, _, ok := parseHeaderFields("read1")
	require.False(t, ok)
}

func TestParseHeaderFieldsAcceptsUnzonedStartTime(t *testing.T) {
	_, ts, ok := parseHeaderFields("read1 ch=1 start_time=2021-03-01T12:00:00")
	require.True(t, ok)
	require.Greater(t, ts, int64(0))
}

func TestParseHeaderFieldsRejectsPre1970StartTime(t *testing.T) {
	_, _, ok := parseHeaderFields("read1 ch=1 start_time=1969-12-31T23:59:59Z")
	require.False(t, ok)
}

func TestAddFASTQAccumulatesAndTracksTimeRange(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddFASTQ(fastqBatch(
		"read1 ch=1 start_time=2021-03-01T12:00:00Z",
		"read2 ch=2 start_time=2021-03-01T13:00:00Z",
	)))
	disabled, _ := tbl.Disabled()
	require.False(t, disabled)
	require.Len(t, tbl.Infos(), 2)

	min, max, ok := tbl.TimeRange()
	require.True(t, ok)
	require.Less(t, min, max)
}

func TestAddFASTQSelfDisablesOnBadHeader(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddFASTQ(fastqBatch("read1 no-fields-here")))
	disabled, reason := tbl.Disabled()
	require.True(t, disabled)
	require.Equal(t, "read1 no-fields-here", reason)

	require.NoError(t, tbl.AddFASTQ(fastqBatch("read2 ch=1 start_time=2021-03-01T12:00:00Z")))
	require.Empty(t, tbl.Infos())
}

func TestAddBAMUsesPrepopulatedMeta(t *testing.T) {
	tbl := New()
	batch := record.RecordBatch{
		Buffer: &record.RecordBuffer{Bytes: []byte("ACGT")},
		Metas: []record.RecordMeta{{
			SequenceOffset:       0,
			SequenceLength:       4,
			Channel:              7,
			StartTime:            1614600000,
			Duration:             1.5,
			AccumulatedErrorRate: 0.01,
		}},
	}
	require.NoError(t, tbl.AddBAM(batch))
	infos := tbl.Infos()
	require.Len(t, infos, 1)
	require.EqualValues(t, 7, infos[0].ChannelID)
	require.EqualValues(t, 1614600000, infos[0].StartTime)
	require.InDelta(t, 1.5, infos[0].Duration, 1e-6)
}
