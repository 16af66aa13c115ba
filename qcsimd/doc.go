// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package qcsimd provides the bit-parallel and word-parallel byte-array
// operations the metrics rely on, in the spirit of the teacher's biosimd
// package: generic portable fallbacks plus an amd64 path that loads 8 bytes
// at a time as one uint64 word and classifies each byte through the same
// lookup table, selected at compile time through the usual Go build-tag
// mechanism rather than per-call CPU-feature branching in the hot path
// (spec §9, "Re-architecture notes").
package qcsimd
