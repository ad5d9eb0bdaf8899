// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizecheck_test

import (
	"testing"

	"github.com/cockroachdb/sizecheck"
	"golang.org/x/tools/go/analysis/analysistest"
)

// TestAnalyzer runs the analyzer over testdata/src/a. The fixture sticks to
// fixed-width field types so the expected sizes hold on every architecture.
func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), sizecheck.Analyzer, "a")
}

// TestAnalyzerCustomDirective runs an analyzer configured with a non-default
// directive name.
func TestAnalyzerCustomDirective(t *testing.T) {
	a := sizecheck.NewAnalyzer(&sizecheck.Options{Directive: "asize"})
	analysistest.Run(t, analysistest.TestData(), a, "b")
}
