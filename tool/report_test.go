// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	rows := []typeRow{
		{pkg: "example.org/m/p", name: "Big", size: 128, align: 8, declared: 128, asserted: true},
		{pkg: "example.org/m/p", name: "Bad", size: 24, align: 8, declared: 16, asserted: true},
		{pkg: "example.org/m/q", name: "Plain", size: 16, align: 8},
	}

	var buf strings.Builder
	writeReport(&buf, rows, 2)
	out := buf.String()

	require.Contains(t, out, "types: 3")
	require.Contains(t, out, "total: 168")
	require.Contains(t, out, "size quantiles: p50=24 p90=128 p99=128 max=128")
	require.Contains(t, out, "largest 2 types:")
	require.Contains(t, out, "Big")
	require.Contains(t, out, "128 (ok)")
	require.Contains(t, out, "16 (mismatch)")
	// top=2 cuts the smallest type from the table.
	require.NotContains(t, out, "Plain")

	// A top value past the row count lists everything; the undirected type
	// shows a blank directive cell.
	buf.Reset()
	writeReport(&buf, rows, 99)
	out = buf.String()
	require.Contains(t, out, "largest 3 types:")
	require.Contains(t, out, "Plain")
}

func TestWriteReportEmpty(t *testing.T) {
	var buf strings.Builder
	writeReport(&buf, nil, 20)
	require.Equal(t, "no defined types found\n", buf.String())
}
