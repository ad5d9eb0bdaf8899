// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
	"github.com/cockroachdb/sizecheck"
	"github.com/cockroachdb/sizecheck/internal/invariants"
	"github.com/pmezard/go-difflib/difflib"
)

// Result reports what Write did to the generated file.
type Result int

const (
	// Unchanged means the on-disk state already matched the directives.
	Unchanged Result = iota
	// Wrote means the generated file was created or rewritten.
	Wrote
	// Removed means a stale generated file was deleted because the package
	// no longer has directives.
	Removed
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Wrote:
		return "wrote"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Status describes the state of a package's generated file relative to its
// directives, as determined by Check.
type Status int

const (
	// UpToDate means the on-disk state matches the directives.
	UpToDate Status = iota
	// Stale means the generated file exists but must be regenerated.
	Stale
	// Missing means directives exist but the generated file does not.
	Missing
	// Orphaned means a generated file exists but the package has no
	// directives.
	Orphaned
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case Stale:
		return "stale"
	case Missing:
		return "missing"
	case Orphaned:
		return "orphaned"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Write brings the generated file for a package in dir in sync with its
// directives: it writes the rendered file when its content changed, leaves
// it alone when already current, and removes it when the package no longer
// has directives. Write refuses to touch a file at the target name that was
// not generated by this package.
func Write(pkgName, dir string, directives []sizecheck.Directive, opts *sizecheck.Options) (Result, error) {
	opts = opts.EnsureDefaults()
	path := filepath.Join(dir, opts.GeneratedFile)
	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !oserror.IsNotExist(err) {
		return Unchanged, errors.Wrapf(err, "reading %s", path)
	}
	if exists && !isGenerated(existing) {
		return Unchanged, errors.Errorf("refusing to write %s: not a generated file", path)
	}
	if len(directives) == 0 {
		// Only the owning package's regeneration removes its file: an
		// external test package shares the directory.
		if !exists || !generatedForPackage(existing, pkgName) {
			return Unchanged, nil
		}
		if err := os.Remove(path); err != nil {
			return Unchanged, errors.Wrapf(err, "removing %s", path)
		}
		return Removed, nil
	}
	out, err := Render(pkgName, directives)
	if err != nil {
		return Unchanged, err
	}
	if invariants.Enabled {
		again, err := Render(pkgName, directives)
		if err != nil || !bytes.Equal(out, again) {
			panic(errors.AssertionFailedf("non-deterministic render for package %s", pkgName))
		}
	}
	if exists && bytes.Equal(existing, out) {
		return Unchanged, nil
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return Unchanged, errors.Wrapf(err, "writing %s", path)
	}
	return Wrote, nil
}

// Check is the read-only twin of Write, for CI: it reports whether the
// generated file in dir is in sync with the directives, without writing.
// When the file is stale, diff holds a unified diff from the on-disk content
// to the expected content. The embedded fingerprint short-circuits the
// common up-to-date case without rendering.
func Check(
	pkgName, dir string, directives []sizecheck.Directive, opts *sizecheck.Options,
) (_ Status, diff string, _ error) {
	opts = opts.EnsureDefaults()
	path := filepath.Join(dir, opts.GeneratedFile)
	existing, err := os.ReadFile(path)
	if err != nil {
		if !oserror.IsNotExist(err) {
			return UpToDate, "", errors.Wrapf(err, "reading %s", path)
		}
		if len(directives) == 0 {
			return UpToDate, "", nil
		}
		return Missing, "", nil
	}
	if !isGenerated(existing) {
		return UpToDate, "", errors.Errorf("%s exists but is not a generated file", path)
	}
	if len(directives) == 0 {
		if !generatedForPackage(existing, pkgName) {
			return UpToDate, "", nil
		}
		return Orphaned, "", nil
	}
	if fp, ok := parseFingerprint(existing); ok && fp == Fingerprint(pkgName, directives) {
		return UpToDate, "", nil
	}
	want, err := Render(pkgName, directives)
	if err != nil {
		return UpToDate, "", err
	}
	if bytes.Equal(existing, want) {
		return UpToDate, "", nil
	}
	diff, err = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path,
		ToFile:   path + " (expected)",
		Context:  3,
	})
	if err != nil {
		return UpToDate, "", err
	}
	return Stale, diff, nil
}

// Partition splits directives into those generation can serve and
// diagnostics for those it must refuse. A generated sibling file is compiled
// in every configuration of its package, so a directive in a test file or a
// build-constrained file cannot be enforced by generation: the asserted type
// does not exist in every configuration the generated file builds in.
func Partition(
	fset *token.FileSet, files []*ast.File, directives []sizecheck.Directive,
) ([]sizecheck.Directive, []sizecheck.Diagnostic) {
	byName := make(map[string]*ast.File, len(files))
	for _, f := range files {
		byName[fset.Position(f.Package).Filename] = f
	}
	var kept []sizecheck.Directive
	var diags []sizecheck.Diagnostic
	refuse := func(d *sizecheck.Directive, reason string) {
		diags = append(diags, sizecheck.Diagnostic{
			Pos:      d.Pos,
			Category: sizecheck.Unsupported,
			Message:  fmt.Sprintf("cannot generate an assertion for %s: %s", d.TypeName, reason),
		})
	}
	for i := range directives {
		d := &directives[i]
		filename := fset.Position(d.Pos).Filename
		base := filepath.Base(filename)
		switch {
		case strings.HasSuffix(base, "_test.go"):
			refuse(d, "directive in a test file (the analyzer covers test files)")
		case nameHasBuildConstraint(base):
			refuse(d, "file name implies a build constraint (the analyzer covers constrained files)")
		case hasBuildConstraint(byName[filename]):
			refuse(d, "file has build constraints (the analyzer covers constrained files)")
		default:
			kept = append(kept, *d)
		}
	}
	return kept, diags
}

// Apply scans the package's files and brings the generated file in dir in
// sync with the directives. If scanning or partitioning produced any
// diagnostic, the generated file is left untouched and the diagnostics are
// returned: a package with rejected directives gets no partial update.
func Apply(
	fset *token.FileSet, pkgName, dir string, files []*ast.File, opts *sizecheck.Options,
) (Result, []sizecheck.Diagnostic, error) {
	res := sizecheck.Scan(fset, files, opts)
	kept, refused := Partition(fset, files, res.Directives)
	if diags := append(res.Diagnostics, refused...); len(diags) > 0 {
		return Unchanged, diags, nil
	}
	result, err := Write(pkgName, dir, kept, opts)
	return result, nil, err
}

// Verify is the read-only twin of Apply.
func Verify(
	fset *token.FileSet, pkgName, dir string, files []*ast.File, opts *sizecheck.Options,
) (Status, string, []sizecheck.Diagnostic, error) {
	res := sizecheck.Scan(fset, files, opts)
	kept, refused := Partition(fset, files, res.Directives)
	if diags := append(res.Diagnostics, refused...); len(diags) > 0 {
		return UpToDate, "", diags, nil
	}
	status, diff, err := Check(pkgName, dir, kept, opts)
	return status, diff, nil, err
}

// generatedForPackage reports whether the generated content declares the
// given package.
func generatedForPackage(content []byte, pkgName string) bool {
	for _, line := range strings.Split(string(content), "\n") {
		if rest, ok := strings.CutPrefix(line, "package "); ok {
			return strings.TrimSpace(rest) == pkgName
		}
	}
	return false
}

// hasBuildConstraint reports whether the file carries a //go:build or
// legacy // +build line before its package clause.
func hasBuildConstraint(f *ast.File) bool {
	if f == nil {
		return false
	}
	for _, cg := range f.Comments {
		if cg.Pos() >= f.Package {
			break
		}
		for _, c := range cg.List {
			if constraint.IsGoBuild(c.Text) || constraint.IsPlusBuild(c.Text) {
				return true
			}
		}
	}
	return false
}

// knownOS and knownArch mirror the names the go tool recognizes as implicit
// build constraints in file name suffixes (per go tool dist list; the
// toolchain does not export its own lists).
var (
	knownOS = map[string]bool{
		"aix": true, "android": true, "darwin": true, "dragonfly": true,
		"freebsd": true, "hurd": true, "illumos": true, "ios": true,
		"js": true, "linux": true, "netbsd": true, "openbsd": true,
		"plan9": true, "solaris": true, "wasip1": true, "windows": true,
		"zos": true,
	}
	knownArch = map[string]bool{
		"386": true, "amd64": true, "arm": true, "arm64": true,
		"loong64": true, "mips": true, "mips64": true, "mips64le": true,
		"mipsle": true, "ppc64": true, "ppc64le": true, "riscv64": true,
		"s390x": true, "sparc64": true, "wasm": true,
	}
)

// nameHasBuildConstraint reports whether a file name like foo_linux.go,
// foo_amd64.go, or foo_linux_amd64.go implies a build constraint.
func nameHasBuildConstraint(base string) bool {
	name := strings.TrimSuffix(base, ".go")
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return false
	}
	last := parts[len(parts)-1]
	if knownArch[last] {
		return true
	}
	return knownOS[last]
}
