// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pertile implements PerTileQuality (spec §4.6): per-Illumina-tile,
// per-position accumulated error, keyed by the tile id parsed from the
// fifth colon-delimited field of the read name.
package pertile

import (
	"strconv"
	"strings"

	"github.com/nucleomics/seqqc/hashutil"
	"github.com/nucleomics/seqqc/phredtab"
	"github.com/nucleomics/seqqc/record"
)

const numShards = 64

// tileStats is one tile's lazily-grown per-position arrays.
type tileStats struct {
	lengthCounts []uint64
	totalErrors  []float64
}

func (s *tileStats) ensureCapacity(n int) {
	for len(s.lengthCounts) < n {
		s.lengthCounts = append(s.lengthCounts, 0)
		s.totalErrors = append(s.totalErrors, 0)
	}
}

// tileShard is one shard of Table's tile map, sharded by SeaHash of the
// tile id the same way the teacher's bamprovider.concurrentMap shards mate
// lookups by read name; Table.Add is called from a single goroutine so no
// locking is needed here, but the sharded layout keeps any one shard's map
// small as the number of observed tiles grows.
type tileShard struct {
	tiles map[int64]*tileStats
}

// Table is PerTileQuality. It self-disables on the first unparseable read
// name, per spec §4.6.
type Table struct {
	shards  [numShards]tileShard
	tileIDs []int64 // insertion order, for deterministic Tiles() output

	disabled      bool
	skippedReason string
}

// New constructs an empty Table.
func New() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].tiles = make(map[int64]*tileStats)
	}
	return t
}

// Add processes every record in batch. It never returns an error:
// unparseable headers self-disable the module (spec §4.6, §7) rather than
// aborting the read.
func (t *Table) Add(batch record.RecordBatch) error {
	if t.disabled {
		return nil
	}
	for i := range batch.Metas {
		m := &batch.Metas[i]
		name := m.Name(batch.Buffer)
		tileID, ok := parseTileID(name)
		if !ok {
			t.disabled = true
			t.skippedReason = name
			return nil
		}

		shard := t.shard(tileID)
		stats, ok := shard.tiles[tileID]
		if !ok {
			stats = &tileStats{}
			shard.tiles[tileID] = stats
			t.tileIDs = append(t.tileIDs, tileID)
		}

		seq := m.SequenceBytes(batch.Buffer)
		if len(seq) == 0 {
			continue
		}
		qual := m.QualitiesBytes(batch.Buffer)

		stats.ensureCapacity(len(seq))
		stats.lengthCounts[len(seq)-1]++
		for pos, q := range qual {
			_, errRate, ok := phredtab.ToErrorRate(q)
			if !ok {
				continue // BaseQualityTable already surfaces InvalidPhred for this read
			}
			stats.totalErrors[pos] += errRate
		}
	}
	return nil
}

func (t *Table) shard(tileID int64) *tileShard {
	h := hashutil.SeaHash64(strconv.FormatInt(tileID, 10))
	return &t.shards[h%uint64(numShards)]
}

// parseTileID extracts the fifth colon-delimited field of an Illumina read
// name (`instrument:run:flowcell:lane:tile:x:y[:UMI]`).
func parseTileID(name string) (int64, bool) {
	fields := strings.SplitN(name, ":", 6)
	if len(fields) < 5 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Disabled reports whether PerTileQuality has self-disabled, and why.
func (t *Table) Disabled() (bool, string) { return t.disabled, t.skippedReason }

// TileCounts is one tile's readout: cumulative base counts per position
// (reverse-cumulative sum of length_counts) paired with total_errors.
type TileCounts struct {
	TileID      int64
	BaseCounts  []uint64
	TotalErrors []float64
}

// Tiles returns, per observed tile (in first-seen order), the cumulative
// base counts per position and the accumulated error sums (spec §4.6).
func (t *Table) Tiles() []TileCounts {
	out := make([]TileCounts, 0, len(t.tileIDs))
	for _, id := range t.tileIDs {
		stats := t.shard(id).tiles[id]
		out = append(out, TileCounts{
			TileID:      id,
			BaseCounts:  cumulativeCounts(stats.lengthCounts),
			TotalErrors: append([]float64(nil), stats.totalErrors...),
		})
	}
	return out
}

// cumulativeCounts turns length_counts (reads whose length is exactly pos+1)
// into per-position base counts (reads whose length is at least pos+1) via
// a reverse-cumulative sum.
func cumulativeCounts(lengthCounts []uint64) []uint64 {
	out := make([]uint64, len(lengthCounts))
	var running uint64
	for pos := len(lengthCounts) - 1; pos >= 0; pos-- {
		running += lengthCounts[pos]
		out[pos] = running
	}
	return out
}
