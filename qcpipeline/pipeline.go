// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package qcpipeline is a thin driver composing a Parser with the metric
// accumulators in the pull-iterator shape spec §5 describes: the driver
// calls Parser.Next and then applies each metric's Add in sequence, in the
// same order for every batch. It carries no CLI or report-rendering
// surface; that layer is explicitly out of scope (spec §1 Non-goals).
package qcpipeline

import (
	"github.com/nucleomics/seqqc/metrics/adapter"
	"github.com/nucleomics/seqqc/metrics/basequality"
	"github.com/nucleomics/seqqc/metrics/dedup"
	"github.com/nucleomics/seqqc/metrics/insertsize"
	"github.com/nucleomics/seqqc/metrics/nanostats"
	"github.com/nucleomics/seqqc/metrics/overrep"
	"github.com/nucleomics/seqqc/metrics/pertile"
	"github.com/nucleomics/seqqc/record"
)

// BatchSource is the single operation qcpipeline needs of a parser: both
// encoding/qcfastq.Parser and encoding/qcbam.Parser satisfy it.
type BatchSource interface {
	Next() (record.RecordBatch, error)
}

// Source identifies which header format Engine.Run should use for
// NanoStats: FASTQ headers are parsed field-by-field, while BAM headers
// arrive pre-decoded into RecordMeta by the BAM tag parser (spec §4.7.1,
// §4.7.2).
type Source int

const (
	// SourceFASTQ drives NanoStats off the FASTQ read-name grammar.
	SourceFASTQ Source = iota
	// SourceBAM drives NanoStats off RecordMeta fields the BAM parser
	// already populated.
	SourceBAM
)

// Engine owns one of each metric accumulator and drives them from a
// BatchSource batch by batch. Metrics are optional: a nil field is simply
// skipped, so callers can assemble only the metrics they need.
type Engine struct {
	Source Source

	BaseQuality *basequality.Table
	Adapter     *adapter.Counter
	Overrep     *overrep.Counter
	PerTile     *pertile.Table
	NanoStats   *nanostats.Table

	// Dedup and InsertSize assume batches of interleaved mate pairs
	// (record 2i paired with record 2i+1); they have no meaningful
	// per-read semantics of their own, unlike the metrics above.
	Dedup      *dedup.Estimator
	InsertSize *insertsize.Estimator
}

// Run pulls batches from src until exhaustion (Next returning an empty
// batch with a nil error), applying every configured metric to each batch
// in a fixed order: BaseQualityTable runs before NanoStats within a batch,
// since NanoStats reads RecordMeta.AccumulatedErrorRate, a field only
// BaseQualityTable.Add populates (spec §5 "Shared-resource policy").
//
// A parser error aborts the run immediately, per spec §7 ("the Parser
// stops at the first error; a partial batch preceding the error is not
// returned"). A metric error also aborts the run; the caller who needs the
// "skip this read and continue" policy spec §7 permits should not use Run
// and instead drive the loop itself.
func (e *Engine) Run(src BatchSource) error {
	for {
		batch, err := src.Next()
		if err != nil {
			return err
		}
		if batch.Empty() {
			return nil
		}
		if err := e.addBatch(batch); err != nil {
			return err
		}
	}
}

func (e *Engine) addBatch(batch record.RecordBatch) error {
	if e.BaseQuality != nil {
		if err := e.BaseQuality.Add(batch); err != nil {
			return err
		}
	}
	if e.Adapter != nil {
		if err := e.Adapter.Add(batch); err != nil {
			return err
		}
	}
	if e.Overrep != nil {
		if err := e.Overrep.Add(batch); err != nil {
			return err
		}
	}
	if e.PerTile != nil {
		if err := e.PerTile.Add(batch); err != nil {
			return err
		}
	}
	if e.Dedup != nil {
		if err := e.Dedup.AddBatch(batch); err != nil {
			return err
		}
	}
	if e.InsertSize != nil {
		if err := e.InsertSize.AddBatch(batch); err != nil {
			return err
		}
	}
	if e.NanoStats != nil {
		var err error
		switch e.Source {
		case SourceBAM:
			err = e.NanoStats.AddBAM(batch)
		default:
			err = e.NanoStats.AddFASTQ(batch)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
