// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcbam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseISO8601AcceptsUnzonedTimestamp(t *testing.T) {
	epoch, ok := parseISO8601("2021-03-01T12:00:00")
	require.True(t, ok)
	require.Greater(t, epoch, int64(0))
}

func TestParseISO8601AcceptsZonedTimestamp(t *testing.T) {
	epoch, ok := parseISO8601("2021-03-01T12:00:00Z")
	require.True(t, ok)
	require.Greater(t, epoch, int64(0))
}

func TestParseISO8601RejectsPre1970(t *testing.T) {
	_, ok := parseISO8601("1969-12-31T23:59:59Z")
	require.False(t, ok)
}
