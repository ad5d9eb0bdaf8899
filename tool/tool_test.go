// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tl := New()
	names := make([]string, len(tl.Commands))
	for i, c := range tl.Commands {
		names[i] = c.Name()
	}
	require.Equal(t, []string{"check", "gen", "report"}, names)

	for _, c := range tl.Commands {
		require.NotNil(t, c.Flags().Lookup("directive"), c.Name())
	}
	require.NotNil(t, tl.check.Root.Flags().Lookup("list"))
	require.NotNil(t, tl.check.Root.Flags().Lookup("goos"))
	require.NotNil(t, tl.gen.Root.Flags().Lookup("check"))
	require.NotNil(t, tl.gen.Root.Flags().Lookup("output"))
	require.NotNil(t, tl.report.Root.Flags().Lookup("top"))
}

// TestCheckBadPattern verifies the load-failure exit code.
func TestCheckBadPattern(t *testing.T) {
	defer func(prev func(int)) { osExit = prev }(osExit)
	code := 0
	osExit = func(c int) { code = c }

	tl := New()
	tl.check.Root.SetArgs([]string{"./doesnotexist"})
	tl.check.Root.SetOut(io.Discard)
	tl.check.Root.SetErr(io.Discard)
	require.NoError(t, tl.check.Root.Execute())
	require.Equal(t, 2, code)
}
