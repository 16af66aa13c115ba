// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package record defines the shared, zero-copy record representation every
// parser and metric in this module operates on: a RecordBuffer of owned
// bytes, and RecordMeta views into it collected into a RecordBatch.
package record

import (
	"math"

	gunsafe "github.com/grailbio/base/unsafe"
)

// ByteSource is the single operation the engine requires of an input
// stream. It never opens files, decompresses, or interprets paths; all of
// that lives above this package.
type ByteSource interface {
	// ReadInto fills buf and returns the number of bytes read. Zero bytes
	// with a nil error indicates EOF.
	ReadInto(buf []byte) (int, error)
}

// RecordBuffer holds the raw bytes of one or more records. The FASTQ parser
// stores records as read (`@name\nseq\n+\nqual\n`), with the meta offsets
// skipping the '@' and the delimiters; the BAM parser stores each record's
// name, sequence and qualities back to back with no delimiters.
//
// Copying a RecordBuffer value just copies the slice header; there is no
// reference counting. Both parsers recycle the backing slice of the batch
// they returned last through a record.BufferPool when Next is called again,
// so a batch's bytes (and every RecordMeta view into them) are valid only
// until the following Next call.
type RecordBuffer struct {
	Bytes []byte

	// digest is a content checksum of Bytes, computed lazily by Digest64
	// and cached here. It has no role in the metrics themselves; the
	// parsers log the digest of their buffered bytes when they hit a fatal
	// parse or read error, without re-logging the (potentially huge) raw
	// bytes.
	digest    [8]byte
	hasDigest bool
}

// RecordMeta is a view into a RecordBuffer: offsets and lengths of one
// record's name/sequence/qualities, plus scratch fields filled in by
// downstream metrics and by BAM tag extraction. Field order is fixed and
// covered by TestRecordMetaSize: the struct is tuned to the 64-byte cache
// line so a RecordBatch's meta slice is densely packed.
type RecordMeta struct {
	NameOffset      uint32
	NameLength      uint32
	SequenceOffset  uint32
	SequenceLength  uint32
	QualitiesOffset uint32

	// Channel is the Nanopore channel id, or -1 if unknown. The FASTQ
	// parser always leaves it at -1; the BAM parser sets it only from a
	// ch tag.
	Channel int32
	// Duration is the Nanopore read duration in seconds ("du:f" BAM tag).
	Duration float32

	// AccumulatedErrorRate is filled by BaseQualityTable.Add and reused by
	// NanoStats so the per-base error sum is computed exactly once. It must
	// only be written by BaseQualityTable and only before NanoStats
	// consumes it; see qcpipeline for the ordering guarantee.
	AccumulatedErrorRate float64
	// StartTime is the Nanopore read start time as Unix epoch seconds, or
	// 0 if unavailable.
	StartTime int64

	_ [16]byte // pad to 64 bytes; reserved for future per-record scratch
}

// Name returns meta's name as a string view into buf, without copying.
func (m *RecordMeta) Name(buf *RecordBuffer) string {
	b := buf.Bytes[m.NameOffset : m.NameOffset+m.NameLength]
	return gunsafe.BytesToString(b)
}

// Sequence returns meta's sequence as a string view into buf, without
// copying.
func (m *RecordMeta) Sequence(buf *RecordBuffer) string {
	b := buf.Bytes[m.SequenceOffset : m.SequenceOffset+m.SequenceLength]
	return gunsafe.BytesToString(b)
}

// Qualities returns meta's Phred+33 qualities as a string view into buf,
// without copying.
func (m *RecordMeta) Qualities(buf *RecordBuffer) string {
	b := buf.Bytes[m.QualitiesOffset : m.QualitiesOffset+m.SequenceLength]
	return gunsafe.BytesToString(b)
}

// SequenceBytes returns meta's sequence as a []byte view into buf.
func (m *RecordMeta) SequenceBytes(buf *RecordBuffer) []byte {
	return buf.Bytes[m.SequenceOffset : m.SequenceOffset+m.SequenceLength]
}

// QualitiesBytes returns meta's Phred+33 qualities as a []byte view into buf.
func (m *RecordMeta) QualitiesBytes(buf *RecordBuffer) []byte {
	return buf.Bytes[m.QualitiesOffset : m.QualitiesOffset+m.SequenceLength]
}

// RecordBatch is a RecordBuffer plus an ordered sequence of RecordMeta
// pointing into it. A batch always contains at least one record, except
// the terminal empty batch a Parser emits to signal end-of-stream.
type RecordBatch struct {
	Buffer *RecordBuffer
	Metas  []RecordMeta
}

// Len returns the number of records in the batch.
func (b *RecordBatch) Len() int { return len(b.Metas) }

// Empty reports whether this is the terminal end-of-stream batch.
func (b *RecordBatch) Empty() bool { return len(b.Metas) == 0 }

// RecordMetaSize is asserted against unsafe.Sizeof(RecordMeta{}) by
// TestRecordMetaSize; kept as a named constant so the invariant reads as
// a single number instead of a magic literal scattered across tests.
const RecordMetaSize = 64

// CheckFieldFits returns a KindCapacityExceeded error if n cannot be
// represented in a RecordMeta offset/length field (uint32), per spec §7's
// CapacityExceeded kind. Parsers call this before storing any offset or
// length derived from buffer growth, so a record (or run of records) that
// would overflow a uint32 field is rejected instead of silently wrapping.
func CheckFieldFits(n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return E(KindCapacityExceeded, "record field exceeds uint32 capacity")
	}
	return nil
}
