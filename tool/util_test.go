// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"go/token"
	"testing"

	"github.com/cockroachdb/sizecheck"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// TestDedupe feeds the variants a test-inclusive load produces: the plain
// package, the test-augmented variant with the same path, the external test
// package, and the synthesized test main.
func TestDedupe(t *testing.T) {
	plain := &packages.Package{
		PkgPath: "example.org/m/a", Name: "a",
		CompiledGoFiles: []string{"a.go"},
	}
	augmented := &packages.Package{
		PkgPath: "example.org/m/a", Name: "a",
		CompiledGoFiles: []string{"a.go", "a_internal_test.go"},
	}
	external := &packages.Package{
		PkgPath: "example.org/m/a_test", Name: "a_test",
		CompiledGoFiles: []string{"a_test.go"},
	}
	testMain := &packages.Package{
		PkgPath: "example.org/m/a.test", Name: "main",
		CompiledGoFiles: []string{"_testmain.go"},
	}
	other := &packages.Package{
		PkgPath: "example.org/m/b", Name: "b",
		CompiledGoFiles: []string{"b.go"},
	}

	got := dedupe([]*packages.Package{other, plain, testMain, augmented, external})
	require.Equal(t, []*packages.Package{augmented, external, other}, got)
}

func TestDiagLines(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("a.go", -1, 100)
	d := sizecheck.Diagnostic{
		Pos:      f.Pos(10),
		Category: sizecheck.Misplaced,
		Message:  "out of place",
	}
	lines := diagLines(fset, []sizecheck.Diagnostic{d})
	require.Len(t, lines, 1)
	require.Equal(t, "a.go:1:11: out of place", lines[0].String())
}

func TestSortDiagLines(t *testing.T) {
	mk := func(file string, offset, line, col int, msg string) diagLine {
		return diagLine{
			pos:  token.Position{Filename: file, Offset: offset, Line: line, Column: col},
			diag: sizecheck.Diagnostic{Category: sizecheck.Malformed, Message: msg},
		}
	}
	lines := []diagLine{
		mk("b.go", 10, 2, 1, "zzz"),
		mk("a.go", 50, 9, 3, "mmm"),
		mk("a.go", 10, 3, 1, "nnn"),
		mk("a.go", 10, 3, 1, "aaa"),
	}
	sortDiagLines(lines)
	got := make([]string, len(lines))
	for i, l := range lines {
		got[i] = l.String()
	}
	require.Equal(t, []string{
		"a.go:3:1: aaa",
		"a.go:3:1: nnn",
		"a.go:9:3: mmm",
		"b.go:2:1: zzz",
	}, got)
}
