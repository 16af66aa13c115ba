// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hashutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMurmur3_64Deterministic(t *testing.T) {
	h1 := Murmur3_64([]byte("ACGTACGT"), 0)
	h2 := Murmur3_64([]byte("ACGTACGT"), 0)
	require.Equal(t, h1, h2)
	h3 := Murmur3_64([]byte("ACGTACGT"), 1)
	require.NotEqual(t, h1, h3)
}

func TestSeaHash64Deterministic(t *testing.T) {
	require.Equal(t, SeaHash64("tile-42"), SeaHash64("tile-42"))
	require.NotEqual(t, SeaHash64("tile-42"), SeaHash64("tile-43"))
}
