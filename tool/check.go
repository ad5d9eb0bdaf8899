// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"fmt"
	"go/token"
	"go/types"
	"strconv"

	"github.com/cockroachdb/sizecheck"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
)

// checkT implements the check command, which scans packages for size
// directives and verifies them against the target's actual sizes.
type checkT struct {
	Root *cobra.Command

	opts    *sizecheck.Options
	goos    string
	goarch  string
	list    bool
	verbose bool
}

func newCheck(opts *sizecheck.Options) *checkT {
	c := &checkT{opts: opts}
	c.Root = &cobra.Command{
		Use:   "check [packages]",
		Short: "verify declared type sizes",
		Long: `
Scan the named packages (go build syntax, default ".") for size directives,
including test files, and report every directive whose declared size differs
from the size the compiler assigns the type, along with malformed and
misplaced directives. Exits 1 when anything is reported and 2 when the
packages cannot be loaded.
`,
		Args: cobra.ArbitraryArgs,
		Run:  c.runCheck,
	}
	c.Root.Flags().StringVar(&c.goos, "goos", "", "check sizes for this GOOS instead of the host's")
	c.Root.Flags().StringVar(&c.goarch, "goarch", "", "check sizes for this GOARCH instead of the host's")
	c.Root.Flags().BoolVar(&c.list, "list", false, "print a table of every directive and its status")
	c.Root.Flags().BoolVarP(&c.verbose, "verbose", "v", false, "log per-package progress")
	return c
}

// directiveRow is one directive's resolved state, for --list output.
type directiveRow struct {
	pos      token.Position
	name     string
	declared uint64
	actual   int64
	ok       bool
}

type checkResult struct {
	lines []diagLine
	rows  []directiveRow
}

func (c *checkT) runCheck(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	if c.verbose {
		c.opts.Logger = sizecheck.DefaultLogger{}
	}
	pkgs, err := loadPackages(c.goos, c.goarch, true /* tests */, args)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(2)
		return
	}
	pkgs = dedupe(pkgs)
	if printPackageErrors(stderr, pkgs, nil) {
		osExit(2)
		return
	}

	results := make([]checkResult, len(pkgs))
	var g errgroup.Group
	for i, pkg := range pkgs {
		g.Go(func() error {
			res, err := c.checkPackage(pkg)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(2)
		return
	}

	var lines []diagLine
	var rows []directiveRow
	for _, res := range results {
		lines = append(lines, res.lines...)
		rows = append(rows, res.rows...)
	}
	sortDiagLines(lines)
	for _, l := range lines {
		fmt.Fprintf(stderr, "%s\n", l)
	}
	if c.list {
		tw := tablewriter.NewWriter(stdout)
		tw.SetHeader([]string{"TYPE", "DECLARED", "ACTUAL", "STATUS", "LOCATION"})
		for _, r := range rows {
			status := "ok"
			if !r.ok {
				status = "mismatch"
			}
			tw.Append([]string{
				r.name,
				strconv.FormatUint(r.declared, 10),
				strconv.FormatInt(r.actual, 10),
				status,
				r.pos.String(),
			})
		}
		tw.Render()
	}
	if len(lines) > 0 {
		osExit(1)
	}
}

// checkPackage scans and checks a single package.
func (c *checkT) checkPackage(pkg *packages.Package) (checkResult, error) {
	res := sizecheck.Scan(pkg.Fset, pkg.Syntax, c.opts)
	checker := sizecheck.NewChecker(pkg.TypesSizes)
	mismatches, err := checker.Check(res.Directives, pkg.TypesInfo)
	if err != nil {
		return checkResult{}, err
	}
	out := checkResult{
		lines: append(diagLines(pkg.Fset, res.Diagnostics), diagLines(pkg.Fset, mismatches)...),
	}
	if c.list {
		for i := range res.Directives {
			d := &res.Directives[i]
			obj, ok := pkg.TypesInfo.Defs[d.Spec.Name].(*types.TypeName)
			if !ok {
				continue
			}
			actual := checker.Sizeof(obj.Type())
			out.rows = append(out.rows, directiveRow{
				pos:      pkg.Fset.Position(d.Pos),
				name:     d.TypeName,
				declared: d.Size,
				actual:   actual,
				ok:       actual >= 0 && uint64(actual) == d.Size,
			})
		}
	}
	c.opts.Logger.Infof("checked %s: %d directives, %d diagnostics",
		pkg.PkgPath, len(res.Directives), len(out.lines))
	return out, nil
}
