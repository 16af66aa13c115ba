// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dedup implements DedupEstimator (spec §4.5): a content-sampled
// fingerprint hash table with adaptive modulo eviction, estimating
// duplication rates in fixed memory.
package dedup

// Defaults per spec §4.5.1/§4.5.2.
const (
	DefaultFrontLength           = 8
	DefaultBackLength            = 8
	DefaultFrontOffset           = 64
	DefaultBackOffset            = 64
	DefaultMaxStoredFingerprints = 1_000_000
)

// Options configures an Estimator.
type Options struct {
	FrontLength           int
	BackLength            int
	FrontOffset           int
	BackOffset            int
	MaxStoredFingerprints int
}

func (o Options) withDefaults() Options {
	if o.FrontLength <= 0 {
		o.FrontLength = DefaultFrontLength
	}
	if o.BackLength <= 0 {
		o.BackLength = DefaultBackLength
	}
	if o.FrontOffset <= 0 {
		o.FrontOffset = DefaultFrontOffset
	}
	if o.BackOffset <= 0 {
		o.BackOffset = DefaultBackOffset
	}
	if o.MaxStoredFingerprints <= 0 {
		o.MaxStoredFingerprints = DefaultMaxStoredFingerprints
	}
	return o
}

// fingerprint concatenates the front bytes of read1 and the back bytes of
// read2 at the offsets spec §4.5.1 defines, along with the combined
// length. ok is false if either read is shorter than the slice it must
// contribute.
func fingerprint(read1, read2 []byte, opts Options) (fp []byte, totalLength int, ok bool) {
	l1 := len(read1)
	l2 := len(read2)
	if l1 < opts.FrontLength || l2 < opts.BackLength {
		return nil, 0, false
	}

	frontOff := opts.FrontOffset
	if m := (l1 - opts.FrontLength) / 2; m < frontOff {
		frontOff = m
	}
	if frontOff < 0 {
		frontOff = 0
	}

	backOff := opts.BackOffset
	if m := (l2 - opts.BackLength) / 2; m < backOff {
		backOff = m
	}
	if backOff < 0 {
		backOff = 0
	}
	backStart := l2 - backOff - opts.BackLength

	fp = make([]byte, 0, opts.FrontLength+opts.BackLength)
	fp = append(fp, read1[frontOff:frontOff+opts.FrontLength]...)
	fp = append(fp, read2[backStart:backStart+opts.BackLength]...)
	return fp, l1 + l2, true
}
