// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package qcfastq implements the streaming FASTQ grammar parser (spec
// §4.1.1-§4.1.2, §4.1.4): four ASCII lines per record, emitted as batches of
// zero-copy record.RecordMeta views over an owned record.RecordBuffer.
//
// The buffering protocol is adapted from the teacher's
// encoding/fastq.Scanner, which wraps bufio.Scanner for a simpler,
// single-read-at-a-time API. This parser instead owns its buffer directly
// so it can batch many records per read, memmove the trailing partial
// record to the front instead of re-scanning from byte 0, and hand batches
// a copy of exactly the bytes they reference. The copy lives in a slice
// taken from a record.BufferPool, and the previous batch's slice goes back
// to the pool on the next call to Next, so a batch's bytes stay valid only
// until then.
package qcfastq

import (
	"bytes"

	"github.com/grailbio/base/log"
	"github.com/nucleomics/seqqc/record"
)

// DefaultInitialBufferSize is the default read-in size for FASTQ input
// (spec §6).
const DefaultInitialBufferSize = 128 << 10

// Options configures a Parser.
type Options struct {
	// InitialBufferSize is the size of the first read from Source. The
	// buffer grows (doubling) when a record doesn't fit. Zero means
	// DefaultInitialBufferSize.
	InitialBufferSize int
}

func (o Options) withDefaults() Options {
	if o.InitialBufferSize <= 0 {
		o.InitialBufferSize = DefaultInitialBufferSize
	}
	return o
}

// Parser reads FASTQ records from a record.ByteSource and emits
// record.RecordBatch values. Parser is not safe for concurrent use.
type Parser struct {
	src    record.ByteSource
	opts   Options
	work   []byte // owned scratch buffer; leftover bytes always start at index 0
	filled int    // bytes of work actually holding data
	err    error
	done   bool

	// bufPool recycles the byte slice backing each returned RecordBatch's
	// RecordBuffer across batches. prevBuf is the slice handed out last
	// time; it is safe to reclaim once Next is called again because
	// spec §5's single-threaded pull-iterator model guarantees the
	// caller has finished applying every metric to a batch before
	// requesting the next one.
	bufPool *record.BufferPool
	prevBuf []byte
}

// New creates a Parser reading from src.
func New(src record.ByteSource, opts Options) *Parser {
	opts = opts.withDefaults()
	return &Parser{
		src:     src,
		opts:    opts,
		work:    make([]byte, opts.InitialBufferSize),
		bufPool: record.NewBufferPool(opts.InitialBufferSize),
	}
}

// Err returns the first error encountered, if any. Once Next returns an
// error, it returns the same error on every subsequent call.
func (p *Parser) Err() error { return p.err }

// Next reads and returns the next batch of complete records. A batch always
// has at least one record unless the stream has ended, in which case Next
// returns a batch with Empty() true and a nil error. Once Next returns an
// error or the terminal empty batch, every further call returns the same
// error, or another empty batch with a nil error.
func (p *Parser) Next() (record.RecordBatch, error) {
	if p.err != nil || p.done {
		return record.RecordBatch{}, p.err
	}
	for {
		consumed, metas, parseErr := p.scan()
		if parseErr != nil {
			p.err = parseErr
			p.logBufferDigest("parse error", parseErr)
			return record.RecordBatch{}, p.err
		}
		if len(metas) > 0 {
			p.bufPool.Put(p.prevBuf)
			batchBytes := append(p.bufPool.Get(), p.work[:consumed]...)
			p.prevBuf = batchBytes
			p.consume(consumed)
			return record.RecordBatch{Buffer: &record.RecordBuffer{Bytes: batchBytes}, Metas: metas}, nil
		}
		// No complete record yet: pull more bytes in.
		n, err := p.fill()
		if err != nil {
			p.err = record.E(record.KindIO, "fastq read", err)
			p.logBufferDigest("read error", err)
			return record.RecordBatch{}, p.err
		}
		if n == 0 {
			if p.filled > 0 {
				p.err = record.E(record.KindEOF, "truncated record at end of stream")
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
	log.Error.Printf("qcfastq: %s (buffer digest %016x): %v", what, digest, err)
}

// fill grows work if it is already full, then reads as many new bytes as
// fit after the leftover prefix.
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

// consume removes the first n bytes of work (a whole number of records),
// sliding any trailing partial record down to index 0.
func (p *Parser) consume(n int) {
	remaining := p.filled - n
	copy(p.work[:remaining], p.work[n:p.filled])
	p.filled = remaining
}

// scan parses as many complete 4-line records as possible from
// p.work[:p.filled] in one pass, returning the number of bytes consumed and
// the metas (offsets relative to the start of the scanned region, so they
// remain valid once the caller copies work[:consumed] into a fresh buffer).
func (p *Parser) scan() (consumed int, metas []record.RecordMeta, err error) {
	buf := p.work[:p.filled]
	pos := 0
	for {
		rec, next, ok, scanErr := scanOneRecord(buf, pos)
		if scanErr != nil {
			return 0, nil, scanErr
		}
		if !ok {
			break
		}
		metas = append(metas, rec)
		pos = next
		consumed = pos
	}
	return consumed, metas, nil
}

// scanOneRecord attempts to parse one 4-line record starting at buf[start].
// ok is false if buf doesn't contain a complete record yet (not an error:
// the caller should read more bytes and retry).
func scanOneRecord(buf []byte, start int) (meta record.RecordMeta, next int, ok bool, err error) {
	// Every one of the four lines is checked for non-ASCII bytes as it is
	// extracted, so the name, sequence, '+' delimiter and quality lines
	// are all covered -- matching spec §4.1.1's "reject any byte with bit
	// 7 set" and §4.1.4's NonAsciiByte for the whole record, not just the
	// name line.

	nameLine, pos1, ok1 := nextLine(buf, start)
	if !ok1 {
		return meta, 0, false, nil
	}
	if err := checkASCII(nameLine); err != nil {
		return meta, 0, false, err
	}
	if len(nameLine) == 0 || nameLine[0] != '@' {
		return meta, 0, false, record.E(record.KindBadFormat, "missing '@' prefix")
	}

	seqLine, pos2, ok2 := nextLine(buf, pos1)
	if !ok2 {
		return meta, 0, false, nil
	}
	if err := checkASCII(seqLine); err != nil {
		return meta, 0, false, err
	}

	plusLine, pos3, ok3 := nextLine(buf, pos2)
	if !ok3 {
		return meta, 0, false, nil
	}
	if err := checkASCII(plusLine); err != nil {
		return meta, 0, false, err
	}
	if len(plusLine) == 0 || plusLine[0] != '+' {
		return meta, 0, false, record.E(record.KindBadFormat, "missing '+' delimiter")
	}

	qualLine, pos4, ok4 := nextLine(buf, pos3)
	if !ok4 {
		return meta, 0, false, nil
	}
	if err := checkASCII(qualLine); err != nil {
		return meta, 0, false, err
	}
	if len(qualLine) != len(seqLine) {
		return meta, 0, false, record.E(record.KindBadFormat, "sequence/quality length mismatch")
	}

	// Every offset/length below must fit in RecordMeta's uint32 fields
	// (spec §7 CapacityExceeded); reject rather than silently truncate.
	for _, n := range []int{start + 1, len(nameLine) - 1, pos1, len(seqLine), pos3} {
		if err := record.CheckFieldFits(n); err != nil {
			return meta, 0, false, err
		}
	}

	meta = record.RecordMeta{
		NameOffset:      uint32(start + 1), // skip '@'
		NameLength:      uint32(len(nameLine) - 1),
		SequenceOffset:  uint32(pos1),
		SequenceLength:  uint32(len(seqLine)),
		QualitiesOffset: uint32(pos3),
		Channel:         -1,
	}
	return meta, pos4, true, nil
}

// nextLine returns buf[start:end] (end exclusive of the '\n') and the
// offset just past the '\n', or ok=false if no '\n' was found yet.
func nextLine(buf []byte, start int) (line []byte, next int, ok bool) {
	if start > len(buf) {
		return nil, 0, false
	}
	idx := bytes.IndexByte(buf[start:], '\n')
	if idx < 0 {
		return nil, 0, false
	}
	return buf[start : start+idx], start + idx + 1, true
}

// checkASCII rejects any byte in line with the high bit set (spec §4.1.1).
// line is one already-delimited record line (name, sequence, '+', or
// quality), with its trailing '\n' already stripped by nextLine.
func checkASCII(line []byte) error {
	for i, b := range line {
		if b&0x80 != 0 {
			log.Error.Printf("qcfastq: non-ASCII byte 0x%02x at offset %d", b, i)
			return record.E(record.KindBadFormat, "non-ASCII byte")
		}
	}
	return nil
}
