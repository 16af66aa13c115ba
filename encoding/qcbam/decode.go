// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcbam

import (
	"encoding/binary"

	"github.com/nucleomics/seqqc/qcsimd"
	"github.com/nucleomics/seqqc/record"
)

// batchBuilder accumulates decoded records into FASTQ in-memory layout
// (name, then sequence, then qualities, back to back, with RecordMeta
// offsets into the growing byte slice) across one scan() pass.
type batchBuilder struct {
	buf   []byte
	metas []record.RecordMeta

	// scratch is reused across decodeRecord calls for the unpacked-nibble
	// intermediate, the way the teacher's bam.Record.Scratch arena avoids
	// a fresh allocation per record.
	scratch []byte
}

// newBatchBuilder starts buf from pool, recycling the backing array of a
// buffer an earlier batch returned (record.BufferPool.Put) instead of
// always allocating fresh.
func newBatchBuilder(pool *record.BufferPool) *batchBuilder {
	return &batchBuilder{buf: pool.Get()}
}

func (b *batchBuilder) len() int { return len(b.metas) }

func (b *batchBuilder) batch() record.RecordBatch {
	return record.RecordBatch{Buffer: &record.RecordBuffer{Bytes: b.buf}, Metas: b.metas}
}

// appendField grows buf by n zero bytes and returns (offset, slice) for
// the caller to fill in. Offsets accumulate across every record appended
// to this batch, so the check is against the running buffer length, not
// just one record's fields (spec §7 CapacityExceeded).
func (b *batchBuilder) appendField(n int) (offset uint32, dst []byte, err error) {
	if err := record.CheckFieldFits(len(b.buf) + n); err != nil {
		return 0, nil, err
	}
	offset = uint32(len(b.buf))
	b.buf = append(b.buf, make([]byte, n)...)
	return offset, b.buf[offset : offset+uint32(n)], nil
}

// decodeRecord decodes one complete BAM record (rec, including its leading
// u32 block_size) into b, per spec §4.1.3.
func decodeRecord(rec []byte, b *batchBuilder) error {
	lReadName := int(rec[4+8])
	// rec[4+9] is mapq, rec[4+10:4+12] is bin: neither is consumed by any
	// metric (spec §4.1.3 only needs l_read_name, n_cigar_op and l_seq
	// from the fixed header).
	nCigarOp := int(binary.LittleEndian.Uint16(rec[4+12:]))
	lSeq := int(binary.LittleEndian.Uint32(rec[4+16:]))

	off := 4 + recordFixedBytes
	if off+lReadName > len(rec) {
		return record.E(record.KindBadFormat, "truncated BAM read name")
	}
	nameField := rec[off : off+lReadName]
	off += lReadName

	cigarBytes := nCigarOp * 4
	off += cigarBytes // cigar is discarded per spec §4.1.3

	nDoubletBytes := (lSeq + 1) / 2
	if off+nDoubletBytes > len(rec) {
		return record.E(record.KindBadFormat, "truncated BAM packed sequence")
	}
	packedSeq := rec[off : off+nDoubletBytes]
	off += nDoubletBytes

	if off+lSeq > len(rec) {
		return record.E(record.KindBadFormat, "truncated BAM qualities")
	}
	rawQual := rec[off : off+lSeq]
	off += lSeq

	tags := rec[off:]

	meta := record.RecordMeta{Channel: -1}

	nameLen := lReadName
	if nameLen > 0 && nameField[nameLen-1] == 0 {
		nameLen-- // drop the NUL terminator
	}
	nameOff, nameDst, err := b.appendField(nameLen)
	if err != nil {
		return err
	}
	copy(nameDst, nameField[:nameLen])
	meta.NameOffset = nameOff
	meta.NameLength = uint32(nameLen)

	seqOff, seqDst, err := b.appendField(lSeq)
	if err != nil {
		return err
	}
	if cap(b.scratch) < lSeq {
		b.scratch = make([]byte, lSeq)
	}
	unpacked := b.scratch[:lSeq]
	qcsimd.UnpackSeq(unpacked, packedSeq)
	decodeSeq(seqDst, unpacked)
	meta.SequenceOffset = seqOff
	meta.SequenceLength = uint32(lSeq)

	qualOff, qualDst, err := b.appendField(lSeq)
	if err != nil {
		return err
	}
	copy(qualDst, rawQual)
	decodeQual(qualDst)
	meta.QualitiesOffset = qualOff

	if err := parseTags(tags, &meta); err != nil {
		return err
	}

	b.metas = append(b.metas, meta)
	return nil
}
