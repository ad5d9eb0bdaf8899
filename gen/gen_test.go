// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/sizecheck"
	"github.com/stretchr/testify/require"
)

// fingerprintRE matches the fingerprint header line; golden outputs mask the
// hash digits so they pin the file structure, not the hash function.
var fingerprintRE = regexp.MustCompile(`(?m)^// Fingerprint: [0-9a-f]{16}$`)

// TestRender renders generated files from directive lists.
//
// Commands:
//
//	render pkg=<name>
//	<type name> <declared size>, one per line
//	----
//	----
//	<the generated file, fingerprint masked>
//	----
//	----
func TestRender(t *testing.T) {
	datadriven.RunTest(t, "testdata/render", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "render":
			var pkg string
			td.ScanArgs(t, "pkg", &pkg)
			out, err := Render(pkg, parseDirectives(t, td))
			if err != nil {
				return err.Error()
			}
			return string(fingerprintRE.ReplaceAll(out, []byte("// Fingerprint: <fingerprint>")))

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}

func parseDirectives(t *testing.T, td *datadriven.TestData) []sizecheck.Directive {
	var directives []sizecheck.Directive
	for _, line := range crstrings.Lines(td.Input) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			td.Fatalf(t, "expected \"<type> <size>\", got %q", line)
		}
		size, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			td.Fatalf(t, "%v", err)
		}
		directives = append(directives, sizecheck.Directive{TypeName: fields[0], Size: size})
	}
	return directives
}

func TestRenderZeroDirectives(t *testing.T) {
	_, err := Render("p", nil)
	require.Error(t, err)
}

// TestRenderedFileIsInert verifies that a generated file parses and that
// scanning it yields neither directives nor diagnostics: regenerating a
// package must not start diagnosing the generator's own output.
func TestRenderedFileIsInert(t *testing.T) {
	out, err := Render("p", []sizecheck.Directive{
		{TypeName: "A", Size: 8},
		{TypeName: "B", Size: 0},
	})
	require.NoError(t, err)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "sizecheck_gen.go", out, parser.ParseComments|parser.SkipObjectResolution)
	require.NoError(t, err)
	require.True(t, isGenerated(out))

	res := sizecheck.Scan(fset, []*ast.File{f}, nil)
	require.Empty(t, res.Directives)
	require.Empty(t, res.Diagnostics)
}

func TestFingerprint(t *testing.T) {
	d := func(name string, size uint64) sizecheck.Directive {
		return sizecheck.Directive{TypeName: name, Size: size}
	}
	base := []sizecheck.Directive{d("A", 8), d("B", 16)}

	require.Equal(t, Fingerprint("p", base), Fingerprint("p", base))
	require.NotEqual(t, Fingerprint("p", base), Fingerprint("q", base))
	require.NotEqual(t, Fingerprint("p", base),
		Fingerprint("p", []sizecheck.Directive{d("A", 8), d("B", 24)}))
	require.NotEqual(t, Fingerprint("p", base),
		Fingerprint("p", []sizecheck.Directive{d("B", 16), d("A", 8)}))
	require.NotEqual(t, Fingerprint("p", base),
		Fingerprint("p", []sizecheck.Directive{d("A", 8)}))

	// The fingerprint embedded in a rendered file is the fingerprint of the
	// directives it was rendered from.
	out, err := Render("p", base)
	require.NoError(t, err)
	fp, ok := parseFingerprint(out)
	require.True(t, ok)
	require.Equal(t, Fingerprint("p", base), fp)
}

func TestParseFingerprintAbsent(t *testing.T) {
	_, ok := parseFingerprint([]byte("package p\n"))
	require.False(t, ok)
	_, ok = parseFingerprint([]byte(Header + "\n\npackage p\n"))
	require.False(t, ok)
}

func BenchmarkRender(b *testing.B) {
	directives := make([]sizecheck.Directive, 50)
	for i := range directives {
		directives[i] = sizecheck.Directive{
			TypeName: fmt.Sprintf("T%d", i),
			Size:     uint64(i * 8),
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Render("p", directives); err != nil {
			b.Fatal(err)
		}
	}
}
