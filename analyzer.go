// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizecheck

import (
	"golang.org/x/tools/go/analysis"
)

// Analyzer is a go/analysis pass that reports size directives whose declared
// size differs from the type's actual size on the build target, along with
// malformed and misplaced directives. Because the pass runs with the build's
// own type information, it covers test files and build-constrained files
// that the generator refuses.
//
// Run it under vet with cmd/sizecheckvet, or add it to any multichecker.
var Analyzer = NewAnalyzer(nil)

// NewAnalyzer returns an analyzer equivalent to Analyzer that scans for the
// directive named by opts. The options' Sizes are ignored: each pass checks
// with the size operator of the build being analyzed.
func NewAnalyzer(opts *Options) *analysis.Analyzer {
	opts = opts.EnsureDefaults()
	return &analysis.Analyzer{
		Name: "sizecheck",
		Doc:  "check that declared type sizes match the sizes computed by the compiler",
		URL:  "https://github.com/cockroachdb/sizecheck",
		Run: func(pass *analysis.Pass) (interface{}, error) {
			return runAnalyzer(pass, opts)
		},
	}
}

func runAnalyzer(pass *analysis.Pass, opts *Options) (interface{}, error) {
	res := Scan(pass.Fset, pass.Files, opts)
	if len(res.Directives) == 0 && len(res.Diagnostics) == 0 {
		return nil, nil
	}
	checker := NewChecker(pass.TypesSizes)
	mismatches, err := checker.Check(res.Directives, pass.TypesInfo)
	if err != nil {
		return nil, err
	}
	for _, diags := range [][]Diagnostic{res.Diagnostics, mismatches} {
		for _, d := range diags {
			pass.Report(analysis.Diagnostic{
				Pos:      d.Pos,
				Category: string(d.Category),
				Message:  d.Message,
			})
		}
	}
	return nil, nil
}
