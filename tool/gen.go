// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/sizecheck"
	"github.com/cockroachdb/sizecheck/gen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
)

// genT implements the gen command, which maintains the per-package generated
// assertion files.
type genT struct {
	Root *cobra.Command

	opts    *sizecheck.Options
	check   bool
	verbose bool
}

func newGen(opts *sizecheck.Options) *genT {
	g := &genT{opts: opts}
	g.Root = &cobra.Command{
		Use:   "gen [packages]",
		Short: "write compile-time size assertions",
		Long: `
Maintain a generated file per package (sizecheck_gen.go by default) whose
constant declarations fail to compile when a directive's declared size
diverges from the type's actual size, so plain "go build" enforces the
directives. Stale files are rewritten, and a package's file is removed when
the package no longer has directives.

Directives in test files or build-constrained files cannot be served by a
generated sibling file and are reported as errors; use the analyzer for
those sites. A package with any rejected directive is left untouched.
`,
		Args: cobra.ArbitraryArgs,
		Run:  g.runGen,
	}
	g.Root.Flags().BoolVar(&g.check, "check", false,
		"verify that generated files are in sync without writing; print a diff for stale files")
	g.Root.Flags().StringVar(&g.opts.GeneratedFile, "output", g.opts.GeneratedFile,
		"base name of the generated file maintained in each package")
	g.Root.Flags().BoolVarP(&g.verbose, "verbose", "v", false, "log per-package results")
	return g
}

type genResult struct {
	pkgPath string
	dir     string
	result  gen.Result
	status  gen.Status
	diff    string
	lines   []diagLine
}

func (g *genT) runGen(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	if g.verbose {
		g.opts.Logger = sizecheck.DefaultLogger{}
	}
	pkgs, err := loadPackages("", "", true /* tests */, args)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(2)
		return
	}
	pkgs = dedupe(pkgs)
	// Generation is syntactic; type errors in the packages do not block it.
	notTypeError := func(e packages.Error) bool { return e.Kind != packages.TypeError }
	if printPackageErrors(stderr, pkgs, notTypeError) {
		osExit(2)
		return
	}

	results := make([]genResult, len(pkgs))
	var eg errgroup.Group
	for i, pkg := range pkgs {
		eg.Go(func() error {
			res, err := g.genPackage(pkg)
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(2)
		return
	}

	var lines []diagLine
	failed := false
	for _, res := range results {
		if res.pkgPath == "" {
			continue
		}
		lines = append(lines, res.lines...)
		if g.check {
			if res.status != gen.UpToDate {
				failed = true
				path := filepath.Join(res.dir, g.opts.GeneratedFile)
				fmt.Fprintf(stdout, "%s: %s (run \"sizecheck gen\")\n", path, res.status)
				if res.diff != "" {
					fmt.Fprint(stdout, res.diff)
				}
			}
			continue
		}
		g.opts.Logger.Infof("%s: %s", res.pkgPath, res.result)
	}
	sortDiagLines(lines)
	for _, l := range lines {
		fmt.Fprintf(stderr, "%s\n", l)
	}
	if len(lines) > 0 || failed {
		osExit(1)
	}
}

// genPackage applies or verifies generation for a single package. Packages
// without Go files (and the all-test external variants, whose directives are
// all refused by partitioning) produce diagnostics but never a file.
func (g *genT) genPackage(pkg *packages.Package) (genResult, error) {
	dir := pkgDir(pkg)
	if dir == "" {
		return genResult{}, nil
	}
	res := genResult{pkgPath: pkg.PkgPath, dir: dir}
	var diags []sizecheck.Diagnostic
	var err error
	if g.check {
		res.status, res.diff, diags, err = gen.Verify(pkg.Fset, pkg.Name, dir, pkg.Syntax, g.opts)
	} else {
		res.result, diags, err = gen.Apply(pkg.Fset, pkg.Name, dir, pkg.Syntax, g.opts)
	}
	if err != nil {
		return genResult{}, err
	}
	res.lines = diagLines(pkg.Fset, diags)
	return res, nil
}
