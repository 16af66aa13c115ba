// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package nanostats implements NanoStats (spec §4.7): a header-field parser
// and time-range aggregator over Nanopore read metadata, fed either from
// FASTQ headers or from RecordMeta fields the BAM tag parser already
// populated.
package nanostats

import (
	"strconv"
	"strings"
	"time"

	"github.com/nucleomics/seqqc/record"
)

const initialBufferCapacity = 16 * 1024

// NanoInfo is one accepted read's aggregated metadata (spec §4.7.3).
type NanoInfo struct {
	StartTime           int64
	ChannelID           int32
	Length              int
	CumulativeErrorRate float64
	Duration            float32
}

// Table is NanoStats. It self-disables on the first unparseable FASTQ
// header, per spec §4.7.1/§7; BAM-sourced input never disables it: AddBAM
// takes channel, start_time and duration as the BAM tag parser left them,
// without checking them.
type Table struct {
	infos []NanoInfo

	minTime int64
	maxTime int64
	haveAny bool

	disabled      bool
	skippedReason string
}

// New constructs an empty Table with the spec's 16 Ki initial capacity.
func New() *Table {
	return &Table{infos: make([]NanoInfo, 0, initialBufferCapacity)}
}

// AddFASTQ processes a batch whose RecordMeta.Channel/StartTime have not
// been populated by a BAM tag parser, parsing `key=value` fields out of
// each read's FASTQ header instead (spec §4.7.1).
func (t *Table) AddFASTQ(batch record.RecordBatch) error {
	if t.disabled {
		return nil
	}
	for i := range batch.Metas {
		m := &batch.Metas[i]
		name := m.Name(batch.Buffer)
		channel, startTime, ok := parseHeaderFields(name)
		if !ok {
			t.disabled = true
			t.skippedReason = name
			return nil
		}
		t.append(startTime, channel, int(m.SequenceLength), m.AccumulatedErrorRate, 0)
	}
	return nil
}

// AddBAM processes a batch whose RecordMeta fields were already populated
// by the BAM tag parser (spec §4.7.2): channel, start_time, and duration
// are read straight off the meta, with no header parsing at all.
func (t *Table) AddBAM(batch record.RecordBatch) error {
	if t.disabled {
		return nil
	}
	for i := range batch.Metas {
		m := &batch.Metas[i]
		t.append(m.StartTime, m.Channel, int(m.SequenceLength), m.AccumulatedErrorRate, m.Duration)
	}
	return nil
}

func (t *Table) append(startTime int64, channel int32, length int, cumErr float64, duration float32) {
	t.infos = append(t.infos, NanoInfo{
		StartTime:           startTime,
		ChannelID:           channel,
		Length:              length,
		CumulativeErrorRate: cumErr,
		Duration:            duration,
	})
	if !t.haveAny || startTime < t.minTime {
		t.minTime = startTime
	}
	if !t.haveAny || startTime > t.maxTime {
		t.maxTime = startTime
	}
	t.haveAny = true
}

// parseHeaderFields parses the whitespace-separated `key=value` fields
// after the first space in name, extracting `ch=<int>` and
// `start_time=<ISO8601>` (spec §4.7.1). Either field missing or invalid is
// a parse failure.
func parseHeaderFields(name string) (channel int32, startTime int64, ok bool) {
	sp := strings.IndexByte(name, ' ')
	if sp < 0 {
		return 0, 0, false
	}
	haveCh, haveStart := false, false
	for _, field := range strings.Fields(name[sp+1:]) {
		k, v, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		switch k {
		case "ch":
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return 0, 0, false
			}
			channel = int32(n)
			haveCh = true
		case "start_time":
			ts, parsed := parseISO8601(v)
			if !parsed {
				return 0, 0, false
			}
			startTime = ts
			haveStart = true
		}
	}
	if !haveCh || !haveStart {
		return 0, 0, false
	}
	return channel, startTime, true
}

// iso8601Layouts covers "YYYY-MM-DDTHH:MM:SS[.fractional][Z|+-HH:MM]" with
// the timezone bracket taken literally: the zone is optional (spec §4.7.1),
// and a timestamp with no zone is interpreted as UTC, time.Parse's default
// when the layout itself carries no zone specifier.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseISO8601 parses an ISO-8601 timestamp into a Unix epoch, matching the
// BAM-path parser in encoding/qcbam so both input paths agree on the same
// timestamps. A pre-1970 timestamp is rejected (spec §4.7.1: "pre-1970
// returns failure"), not returned as a negative epoch.
func parseISO8601(s string) (int64, bool) {
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			epoch := t.Unix()
			if epoch < 0 {
				return 0, false
			}
			return epoch, true
		}
	}
	return 0, false
}

// Disabled reports whether NanoStats has self-disabled, and why.
func (t *Table) Disabled() (bool, string) { return t.disabled, t.skippedReason }

// Infos returns every accepted read's aggregated metadata, in arrival
// order.
func (t *Table) Infos() []NanoInfo { return t.infos }

// TimeRange returns the minimum and maximum start_time observed. ok is
// false if no reads have been accepted yet.
func (t *Table) TimeRange() (min, max int64, ok bool) {
	return t.minTime, t.maxTime, t.haveAny
}
