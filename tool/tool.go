// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package tool builds the sizecheck command line tools.
package tool

import (
	"github.com/cockroachdb/sizecheck"
	"github.com/spf13/cobra"
)

// T is the container for all of the sizecheck tools.
type T struct {
	Commands []*cobra.Command
	check    *checkT
	gen      *genT
	report   *reportT
	opts     sizecheck.Options
}

// New creates a new tool container.
func New() *T {
	t := &T{}
	t.opts.EnsureDefaults()
	t.check = newCheck(&t.opts)
	t.gen = newGen(&t.opts)
	t.report = newReport(&t.opts)
	t.Commands = []*cobra.Command{
		t.check.Root,
		t.gen.Root,
		t.report.Root,
	}
	for _, cmd := range t.Commands {
		cmd.Flags().StringVar(&t.opts.Directive, "directive", t.opts.Directive,
			"name of the directive comment to scan for")
	}
	return t
}
