// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package phredtab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToErrorRate(t *testing.T) {
	q, e, ok := ToErrorRate('I') // 'I' - 33 = 40
	require.True(t, ok)
	require.Equal(t, 40, q)
	require.InDelta(t, math.Pow(10, -4), e, 1e-12)

	_, _, ok = ToErrorRate(32)
	require.False(t, ok)
	_, _, ok = ToErrorRate(33 + PhredMax + 1)
	require.False(t, ok)
}

func TestBucket(t *testing.T) {
	require.Equal(t, 0, Bucket(0))
	require.Equal(t, 10, Bucket(40))
	require.Equal(t, 11, Bucket(47))
	require.Equal(t, 11, Bucket(93)) // clamped at 47 before shifting
}

func TestFromErrorRate(t *testing.T) {
	require.Equal(t, PhredMax, FromErrorRate(0))
	require.Equal(t, 40, FromErrorRate(math.Pow(10, -4)))
	require.Equal(t, PhredMax, FromErrorRate(1e-20))
}
