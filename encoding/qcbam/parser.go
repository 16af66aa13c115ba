// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package qcbam implements the streaming (uncompressed) BAM grammar parser
// (spec §4.1.3-§4.1.4): header/reference-table skip, then per-record field
// decode, emitting the same zero-copy record.RecordBatch the FASTQ parser
// produces so downstream metrics are format-agnostic.
//
// This package intentionally does not decompress bgzf blocks (spec's
// Non-goals exclude compressed I/O): the ByteSource it reads from is
// expected to already yield the raw BAM byte stream, the same contract the
// teacher's encoding/bam package assumes of its io.Reader inputs one layer
// up from bgzf.
//
// Field offsets and the aux-skipping table are adapted from the teacher's
// encoding/bam/unmarshal.go, which decodes the identical on-disk layout
// into a *bam.Record; this parser decodes the same bytes directly into the
// engine's RecordMeta/RecordBuffer shape instead, since none of the
// teacher's indexing, shard, or PAM-conversion machinery is needed here.
package qcbam

import (
	"encoding/binary"

	"github.com/grailbio/base/log"
	"github.com/nucleomics/seqqc/record"
)

// DefaultInitialBufferSize is the default read-in size for BAM input
// (spec §6).
const DefaultInitialBufferSize = 48 << 10

const bamMagic = "BAM\x01"

// recordFixedBytes is the size of a BAM alignment record's fixed header,
// following the u32 block_size field: ref_id, pos, l_read_name, mapq, bin,
// n_cigar_op, flag, l_seq, next_ref_id, next_pos, tlen.
const recordFixedBytes = 32

// Options configures a Parser.
type Options struct {
	// InitialBufferSize is the size of the first read from Source. Zero
	// means DefaultInitialBufferSize.
	InitialBufferSize int
}

func (o Options) withDefaults() Options {
	if o.InitialBufferSize <= 0 {
		o.InitialBufferSize = DefaultInitialBufferSize
	}
	return o
}

// Parser reads unaligned-BAM records from a record.ByteSource and emits
// record.RecordBatch values. Parser is not safe for concurrent use.
type Parser struct {
	src    record.ByteSource
	opts   Options
	work   []byte
	filled int
	err    error
	done   bool

	// HeaderText is the opaque SAM header text block preceding the
	// reference table (spec §4.1.3 stores it verbatim; this engine
	// neither parses nor needs its contents).
	HeaderText []byte

	// bufPool recycles the decoded-batch byte slice across batches, the
	// same cross-batch recycling qcfastq.Parser does; prevBuf is the
	// slice handed out last time.
	bufPool *record.BufferPool
	prevBuf []byte
}

// New constructs a Parser, consuming the magic, header text and reference
// table from src before returning.
func New(src record.ByteSource, opts Options) (*Parser, error) {
	opts = opts.withDefaults()
	p := &Parser{
		src:     src,
		opts:    opts,
		work:    make([]byte, opts.InitialBufferSize),
		bufPool: record.NewBufferPool(4096),
	}
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) readHeader() error {
	magic, err := p.readExact(4)
	if err != nil {
		return err
	}
	if string(magic) != bamMagic {
		return record.E(record.KindBadFormat, "bad BAM magic")
	}

	lTextBuf, err := p.readExact(4)
	if err != nil {
		return err
	}
	lText := int(binary.LittleEndian.Uint32(lTextBuf))
	headerText, err := p.readExact(lText)
	if err != nil {
		return err
	}
	p.HeaderText = headerText

	nRefBuf, err := p.readExact(4)
	if err != nil {
		return err
	}
	nRef := int(binary.LittleEndian.Uint32(nRefBuf))
	for i := 0; i < nRef; i++ {
		lNameBuf, err := p.readExact(4)
		if err != nil {
			return err
		}
		lName := int(binary.LittleEndian.Uint32(lNameBuf))
		if _, err := p.readExact(lName); err != nil { // name, incl. NUL
			return err
		}
		if _, err := p.readExact(4); err != nil { // l_ref
			return err
		}
	}
	return nil
}

// Err returns the first error encountered, if any.
func (p *Parser) Err() error { return p.err }

// Next reads and returns the next batch of complete records, following the
// same empty-batch-means-EOF contract as qcfastq.Parser.Next.
func (p *Parser) Next() (record.RecordBatch, error) {
	if p.err != nil || p.done {
		return record.RecordBatch{}, p.err
	}
	for {
		batch, consumed, parseErr := p.scan()
		if parseErr != nil {
			p.err = parseErr
			p.logBufferDigest("parse error", parseErr)
			return record.RecordBatch{}, p.err
		}
		if len(batch.Metas) > 0 {
			// Reclaim the previous batch's buffer: spec §5's
			// single-threaded pull-iterator model guarantees the
			// caller finished applying every metric to it before
			// calling Next again.
			p.bufPool.Put(p.prevBuf)
			p.prevBuf = batch.Buffer.Bytes
			p.consume(consumed)
			return batch, nil
		}
		n, err := p.fill()
		if err != nil {
			p.err = record.E(record.KindIO, "bam read", err)
			p.logBufferDigest("read error", err)
			return record.RecordBatch{}, p.err
		}
		if n == 0 {
			if p.filled > 0 {
				p.err = record.E(record.KindEOF, "truncated BAM record at end of stream")
				p.logBufferDigest("truncated stream", p.err)
				return record.RecordBatch{}, p.err
			}
			p.done = true
			return record.RecordBatch{}, nil
		}
	}
}

// logBufferDigest logs a stable content digest of the bytes buffered when a
// fatal error occurred, so an operator can tell whether two error reports
// came from the same input without the (possibly huge) buffer being
// printed.
func (p *Parser) logBufferDigest(what string, err error) {
	digest := (&record.RecordBuffer{Bytes: p.work[:p.filled]}).Digest64()
	log.Error.Printf("qcbam: %s (buffer digest %016x): %v", what, digest, err)
}

func (p *Parser) fill() (int, error) {
	if p.filled == len(p.work) {
		grown := make([]byte, len(p.work)*2)
		copy(grown, p.work[:p.filled])
		p.work = grown
	}
	n, err := p.src.ReadInto(p.work[p.filled:])
	p.filled += n
	return n, err
}

func (p *Parser) consume(n int) {
	remaining := p.filled - n
	copy(p.work[:remaining], p.work[n:p.filled])
	p.filled = remaining
}

// readExact blocks (growing the buffer as needed) until n bytes are
// available, then returns a copy of them and consumes them from work. Used
// only during header parsing, where fields are small and sequential.
func (p *Parser) readExact(n int) ([]byte, error) {
	for p.filled < n {
		if n > len(p.work) {
			grown := make([]byte, n)
			copy(grown, p.work[:p.filled])
			p.work = grown
		}
		r, err := p.src.ReadInto(p.work[p.filled:])
		if err != nil {
			return nil, record.E(record.KindIO, "bam header read", err)
		}
		if r == 0 {
			return nil, record.E(record.KindEOF, "truncated BAM header")
		}
		p.filled += r
	}
	out := make([]byte, n)
	copy(out, p.work[:n])
	p.consume(n)
	return out, nil
}

// scan decodes as many complete records as possible from p.work[:p.filled]
// into a freshly built record.RecordBatch, and reports how many input
// bytes they occupied (for the caller to consume). Unlike qcfastq's scan,
// the batch's RecordBuffer is not a copy of the input bytes: BAM's packed
// seq and offset-subtracted quals must be transcoded, so decodeRecord
// writes FASTQ-layout output into a builder as it goes.
func (p *Parser) scan() (record.RecordBatch, int, error) {
	buf := p.work[:p.filled]
	b := newBatchBuilder(p.bufPool)
	pos := 0
	consumed := 0
	for {
		n, ok, err := peekRecordSize(buf, pos)
		if err != nil {
			return record.RecordBatch{}, 0, err
		}
		if !ok {
			break
		}
		if err := decodeRecord(buf[pos:pos+n], b); err != nil {
			return record.RecordBatch{}, 0, err
		}
		pos += n
		consumed = pos
	}
	if b.len() == 0 {
		return record.RecordBatch{}, 0, nil
	}
	return b.batch(), consumed, nil
}

// peekRecordSize reports the total byte length (including the leading u32
// block_size field) of the record starting at buf[start], or ok=false if
// buf doesn't yet hold that many bytes.
func peekRecordSize(buf []byte, start int) (n int, ok bool, err error) {
	if start+4 > len(buf) {
		return 0, false, nil
	}
	blockSize := int(binary.LittleEndian.Uint32(buf[start:]))
	total := 4 + blockSize
	if start+total > len(buf) {
		return 0, false, nil
	}
	if blockSize < recordFixedBytes {
		return 0, false, record.E(record.KindBadFormat, "truncated BAM record")
	}
	return total, true, nil
}
