// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"cmp"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sizecheck"
	"golang.org/x/tools/go/packages"
)

var osExit = os.Exit

// loadMode requests everything the tools need: syntax with comments for the
// scanner, and type information with sizes for the checker.
const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedTypesSizes

// loadPackages loads the packages matching the go build patterns (default
// "."). A non-empty goos or goarch overrides the build target, so size
// checks can audit layouts for other platforms.
func loadPackages(goos, goarch string, tests bool, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode:  loadMode,
		Tests: tests,
	}
	if goos != "" || goarch != "" {
		env := os.Environ()
		if goos != "" {
			env = append(env, "GOOS="+goos)
		}
		if goarch != "" {
			env = append(env, "GOARCH="+goarch)
		}
		// Cross-platform loads cannot run cgo.
		env = append(env, "CGO_ENABLED=0")
		cfg.Env = env
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "loading packages")
	}
	return pkgs, nil
}

// dedupe returns one instance per package path, sorted by path. Loading with
// tests produces up to three variants of a package; the test-augmented
// variant is preferred because its file set is a superset, and synthesized
// test mains are dropped.
func dedupe(pkgs []*packages.Package) []*packages.Package {
	byPath := make(map[string]*packages.Package)
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, ".test") {
			continue
		}
		if prev, ok := byPath[pkg.PkgPath]; !ok || len(pkg.CompiledGoFiles) > len(prev.CompiledGoFiles) {
			byPath[pkg.PkgPath] = pkg
		}
	}
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	out := make([]*packages.Package, 0, len(paths))
	for _, path := range paths {
		out = append(out, byPath[path])
	}
	return out
}

// pkgDir returns the directory holding the package's sources, or "" for a
// package with no Go files.
func pkgDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		return ""
	}
	return filepath.Dir(pkg.GoFiles[0])
}

// printPackageErrors prints the packages' load and type errors, filtered by
// keep, and reports whether it printed any.
func printPackageErrors(w io.Writer, pkgs []*packages.Package, keep func(packages.Error) bool) bool {
	n := 0
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			if keep != nil && !keep(err) {
				continue
			}
			fmt.Fprintf(w, "%s\n", err)
			n++
		}
	})
	return n > 0
}

// A diagLine is a diagnostic with its position resolved, ready for printing:
// each loaded package carries its own FileSet, so positions cannot be
// resolved after the packages are merged.
type diagLine struct {
	pos  token.Position
	diag sizecheck.Diagnostic
}

// String implements fmt.Stringer.
func (l diagLine) String() string {
	return fmt.Sprintf("%s: %s", l.pos, l.diag.Message)
}

// diagLines resolves positions for a package's diagnostics.
func diagLines(fset *token.FileSet, diags []sizecheck.Diagnostic) []diagLine {
	lines := make([]diagLine, len(diags))
	for i, d := range diags {
		lines[i] = diagLine{pos: fset.Position(d.Pos), diag: d}
	}
	return lines
}

// sortDiagLines orders diagnostics by file, offset, and message, so output
// does not depend on package processing order.
func sortDiagLines(lines []diagLine) {
	slices.SortFunc(lines, func(a, b diagLine) int {
		if c := cmp.Compare(a.pos.Filename, b.pos.Filename); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pos.Offset, b.pos.Offset); c != 0 {
			return c
		}
		return cmp.Compare(a.diag.Message, b.diag.Message)
	})
}
