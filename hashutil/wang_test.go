// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hashutil

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWangMixRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 2, 42, 0xFFFFFFFFFFFFFFFF, 0x0123456789ABCDEF}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		cases = append(cases, r.Uint64())
	}
	for _, k := range cases {
		h := WangMix64(k)
		require.Equal(t, k, WangUnmix64(h), "round trip failed for key %x", k)
	}
}

func TestWangMixDistinct(t *testing.T) {
	require.NotEqual(t, WangMix64(1), WangMix64(2))
}
