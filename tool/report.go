// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package tool

import (
	"cmp"
	"fmt"
	"go/types"
	"io"
	"math"
	"math/bits"
	"slices"
	"strconv"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/sizecheck"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// reportT implements the report command, a survey of the sizes of the
// defined types in a set of packages.
type reportT struct {
	Root *cobra.Command

	opts   *sizecheck.Options
	goos   string
	goarch string
	top    int
}

func newReport(opts *sizecheck.Options) *reportT {
	r := &reportT{opts: opts}
	r.Root = &cobra.Command{
		Use:   "report [packages]",
		Short: "survey type sizes",
		Long: `
Print size statistics for the defined types in the named packages: counts,
quantiles, a distribution plot, and the largest types together with their
directive status. The survey is type-level only; it does not inspect
field-by-field layout.
`,
		Args: cobra.ArbitraryArgs,
		Run:  r.runReport,
	}
	r.Root.Flags().StringVar(&r.goos, "goos", "", "report sizes for this GOOS instead of the host's")
	r.Root.Flags().StringVar(&r.goarch, "goarch", "", "report sizes for this GOARCH instead of the host's")
	r.Root.Flags().IntVar(&r.top, "top", 20, "number of largest types to list")
	return r
}

// typeRow is one defined type's entry in the survey.
type typeRow struct {
	pkg      string
	name     string
	size     int64
	align    int64
	declared uint64
	asserted bool
}

func (r *reportT) runReport(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	pkgs, err := loadPackages(r.goos, r.goarch, false /* tests */, args)
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

	var rows []typeRow
	for _, pkg := range pkgs {
		checker := sizecheck.NewChecker(pkg.TypesSizes)
		res := sizecheck.Scan(pkg.Fset, pkg.Syntax, r.opts)
		declared := make(map[string]uint64, len(res.Directives))
		for i := range res.Directives {
			declared[res.Directives[i].TypeName] = res.Directives[i].Size
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			size, asserted := declared[name]
			rows = append(rows, typeRow{
				pkg:      pkg.PkgPath,
				name:     name,
				size:     checker.Sizeof(named),
				align:    checker.Alignof(named),
				declared: size,
				asserted: asserted,
			})
		}
	}
	writeReport(stdout, rows, r.top)
}

// maxRecordedSize caps the sizes recorded in the quantile histogram; types
// beyond 1GB are clamped rather than dropped.
const maxRecordedSize = 1 << 30

// writeReport renders the survey: summary line, quantiles, a log2 size
// distribution, and the top largest types.
func writeReport(w io.Writer, rows []typeRow, top int) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no defined types found")
		return
	}

	hist := hdrhistogram.New(0, maxRecordedSize, 3)
	var total, sumsq float64
	var totalBytes int64
	var buckets []float64
	for i := range rows {
		sz := rows[i].size
		total += float64(sz)
		sumsq += float64(sz) * float64(sz)
		totalBytes += sz
		_ = hist.RecordValue(min(sz, maxRecordedSize))
		b := bits.Len64(uint64(sz))
		for len(buckets) <= b {
			buckets = append(buckets, 0)
		}
		buckets[b]++
	}
	n := float64(len(rows))
	mean := total / n
	stddev := math.Sqrt(max(sumsq/n-mean*mean, 0))

	fmt.Fprintf(w, "types: %s   total: %s   mean: %sB ± %s\n",
		crhumanize.Count(int64(len(rows)), crhumanize.Compact),
		string(crhumanize.Bytes(totalBytes, crhumanize.Compact, crhumanize.OmitI)),
		string(crhumanize.Float(mean, 2)),
		crhumanize.Percent(stddev, mean))
	fmt.Fprintf(w, "size quantiles: p50=%d p90=%d p99=%d max=%d\n",
		hist.ValueAtPercentile(50), hist.ValueAtPercentile(90),
		hist.ValueAtPercentile(99), hist.Max())

	fmt.Fprintf(w, "\ntypes by size (bucket b holds sizes in [2^(b-1), 2^b)):\n%s\n",
		asciigraph.Plot(buckets, asciigraph.Height(8)))

	slices.SortFunc(rows, func(a, b typeRow) int {
		if c := cmp.Compare(b.size, a.size); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pkg, b.pkg); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if top > len(rows) {
		top = len(rows)
	}
	fmt.Fprintf(w, "\nlargest %d types:\n", top)
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"PACKAGE", "TYPE", "SIZE", "ALIGN", "DIRECTIVE"})
	for _, r := range rows[:top] {
		directive := "-"
		if r.asserted {
			status := "ok"
			if r.size < 0 || uint64(r.size) != r.declared {
				status = "mismatch"
			}
			directive = fmt.Sprintf("%d (%s)", r.declared, status)
		}
		tw.Append([]string{
			r.pkg,
			r.name,
			strconv.FormatInt(r.size, 10),
			strconv.FormatInt(r.align, 10),
			directive,
		})
	}
	tw.Render()
}
