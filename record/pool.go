// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package record

import (
	"log"
	"sync"
)

// BufferPool recycles the owned byte slices backing RecordBuffers across
// parser batches. The teacher's encoding/bam.FreePool solves a related
// problem (pooling *Record objects) with a hand-rolled, GOMAXPROCS-sharded
// pool and go:linkname access to the runtime's per-P queues; that degree of
// machinery earns its keep when many goroutines hammer the pool
// concurrently. This engine's concurrency model caps out at two threads (one
// decompression producer, one parser/metrics consumer, spec §5), so a plain
// sync.Pool gives the same amortized-allocation benefit without the
// unexported-runtime-symbol risk. We keep the teacher's warning-on-misuse
// style (plain log package, not the structured logger) since this is the
// same kind of low-level, allocation-sensitive internal.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool of byte slices. minCap sizes the slices
// allocated when the pool is empty.
func NewBufferPool(minCap int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, 0, minCap)
			},
		},
	}
}

// Get returns a byte slice of length 0 with at least the pool's minCap
// capacity.
func (p *BufferPool) Get() []byte {
	buf, ok := p.pool.Get().([]byte)
	if !ok || buf == nil {
		log.Printf("record: BufferPool.Get returned unexpected type, allocating fresh buffer")
		return nil
	}
	return buf[:0]
}

// Put returns buf to the pool. The caller must not use buf after this call.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	p.pool.Put(buf) //nolint:staticcheck // deliberately pooling a slice value
}
