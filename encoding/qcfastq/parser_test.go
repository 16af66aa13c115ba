// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcfastq

import (
	"bytes"
	"testing"

	"github.com/nucleomics/seqqc/record"
	"github.com/stretchr/testify/require"
)

// sliceSource is a record.ByteSource over an in-memory byte slice, handing
// out chunkSize bytes per ReadInto call so tests can exercise the
// multi-read buffering protocol instead of always satisfying a whole batch
// in one read.
type sliceSource struct {
	data      []byte
	pos       int
	chunkSize int
}

func (s *sliceSource) ReadInto(buf []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, nil
	}
	n := s.chunkSize
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	if s.pos+n > len(s.data) {
		n = len(s.data) - s.pos
	}
	copy(buf, s.data[s.pos:s.pos+n])
	s.pos += n
	return n, nil
}

func readAll(t *testing.T, p *Parser) []record.RecordBatch {
	t.Helper()
	var batches []record.RecordBatch
	for {
		b, err := p.Next()
		require.NoError(t, err)
		if b.Empty() {
			break
		}
		batches = append(batches, b)
	}
	return batches
}

func TestParserSingleRecord(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\n+\nIIII\n")}
	p := New(src, Options{})
	batches := readAll(t, p)
	require.Len(t, batches, 1)
	require.Equal(t, 1, batches[0].Len())
	m := batches[0].Metas[0]
	buf := batches[0].Buffer
	require.Equal(t, "read1", m.Name(buf))
	require.Equal(t, "ACGT", m.Sequence(buf))
	require.Equal(t, "IIII", m.Qualities(buf))
}

func TestParserMultipleRecordsSmallChunks(t *testing.T) {
	var data bytes.Buffer
	for i := 0; i < 50; i++ {
		data.WriteString("@r\nACGTACGTAC\n+\nIIIIIIIIII\n")
	}
	src := &sliceSource{data: data.Bytes(), chunkSize: 7}
	p := New(src, Options{InitialBufferSize: 16})
	var total int
	for {
		b, err := p.Next()
		require.NoError(t, err)
		if b.Empty() {
			break
		}
		for _, m := range b.Metas {
			require.Equal(t, "ACGTACGTAC", m.Sequence(b.Buffer))
		}
		total += b.Len()
	}
	require.Equal(t, 50, total)
}

func TestParserMissingAtPrefix(t *testing.T) {
	src := &sliceSource{data: []byte("read1\nACGT\n+\nIIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserMissingPlusDelimiter(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\nX\nIIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserLengthMismatch(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\n+\nIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserTruncatedAtEOF(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\n+\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindEOF, err))
}

func TestParserNonASCIIByte(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\xffextra\nACGT\n+\nIIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserNonASCIIByteInSequenceLine(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nAC\xffT\n+\nIIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserNonASCIIByteInQualityLine(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\n+\nII\xffI\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserNonASCIIByteInPlusLine(t *testing.T) {
	src := &sliceSource{data: []byte("@read1\nACGT\n+\xff\nIIII\n")}
	p := New(src, Options{})
	_, err := p.Next()
	require.Error(t, err)
	require.True(t, record.Is(record.KindBadFormat, err))
}

func TestParserEmptyStream(t *testing.T) {
	src := &sliceSource{data: nil}
	p := New(src, Options{})
	b, err := p.Next()
	require.NoError(t, err)
	require.True(t, b.Empty())
}
