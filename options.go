// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizecheck

import (
	"go/types"
	"runtime"
)

// DefaultDirective is the name of the directive comment scanned for in type
// doc comments, without the leading "//" or trailing ":".
const DefaultDirective = "sizecheck"

// DefaultGeneratedFile is the base name of the per-package file the
// generator maintains.
const DefaultGeneratedFile = "sizecheck_gen.go"

// Options holds the configuration shared by the scanner, checker, and
// generator. The zero value is usable; EnsureDefaults fills in unset fields.
type Options struct {
	// Directive is the name of the directive comment. A type opts in to
	// size checking with "//<Directive>:<size>" in its doc comment.
	//
	// The default is "sizecheck".
	Directive string

	// GeneratedFile is the base name of the assertions file the generator
	// maintains in each annotated package.
	//
	// The default is "sizecheck_gen.go".
	GeneratedFile string

	// Sizes is the size operator used to compute actual type sizes. Checks
	// for a different target platform substitute that platform's operator.
	//
	// The default is the gc operator for the host's GOARCH.
	Sizes types.Sizes

	// Logger is used for verbose progress output.
	//
	// The default is NopLogger: the tools report through diagnostics.
	Logger Logger
}

// EnsureDefaults ensures that the default values for all options are set if
// a valid value was not already specified. Returns the receiver for chaining.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.Directive == "" {
		o.Directive = DefaultDirective
	}
	if o.GeneratedFile == "" {
		o.GeneratedFile = DefaultGeneratedFile
	}
	if o.Sizes == nil {
		o.Sizes = types.SizesFor("gc", runtime.GOARCH)
	}
	if o.Logger == nil {
		o.Logger = NopLogger{}
	}
	return o
}
