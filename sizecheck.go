// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package sizecheck verifies that the in-memory size of a type matches a
// size declared next to it in the source.
//
// A type declaration opts in with a directive comment in its doc comment:
//
//	//sizecheck:24
//	type readerMeta struct {
//		off   int64
//		buf   []byte
//		valid bool
//	}
//
// The directive takes a single integer literal (any base Go accepts,
// including underscores) naming the expected size in bytes, as reported by
// the compiler's size operator for the target platform. The declaration
// itself is never rewritten or reinterpreted; the only thing read from it is
// the type's name.
//
// Two enforcement modes share the same scanner:
//
//   - Analyzer is a golang.org/x/tools/go/analysis pass that reports a
//     diagnostic when a declared size diverges from the actual size. It runs
//     under "go vet -vettool", in multicheckers, and in editors.
//   - The gen package writes a sibling sizecheck_gen.go per package whose
//     constant declarations fail to compile when a size diverges, so plain
//     "go build" enforces the declarations with no extra tooling.
//
// Directives on type aliases, generic types, or anything other than the doc
// comment of a single type definition are rejected; a directive never goes
// silently unenforced.
package sizecheck // import "github.com/cockroachdb/sizecheck"

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/cockroachdb/redact"
)

// Directive records one accepted size annotation: the declared size and the
// type definition it is attached to.
type Directive struct {
	// TypeName is the name of the annotated type.
	TypeName string
	// Size is the declared size in bytes.
	Size uint64
	// Pos is the position of the directive comment.
	Pos token.Pos
	// Spec is the annotated type declaration.
	Spec *ast.TypeSpec
}

// SafeFormat implements redact.SafeFormatter.
func (d Directive) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s declared %d bytes", d.TypeName, d.Size)
}

// String implements fmt.Stringer.
func (d Directive) String() string {
	return redact.StringWithoutMarkers(d)
}

// Category classifies a Diagnostic.
type Category string

const (
	// Malformed indicates a directive whose argument is not a single
	// integer literal.
	Malformed Category = "malformed"
	// Misplaced indicates a directive that is not in the doc comment of a
	// type definition.
	Misplaced Category = "misplaced"
	// Unsupported indicates a directive on a type that cannot carry a size
	// assertion (an alias or a generic type), or one the generator cannot
	// serve.
	Unsupported Category = "unsupported"
	// Mismatch indicates a declared size that differs from the actual size.
	Mismatch Category = "mismatch"
)

// SafeValue implements redact.SafeValue.
func (Category) SafeValue() {}

// Diagnostic reports a rejected directive or a failed size check.
type Diagnostic struct {
	// Pos locates the problem: the directive comment for Malformed and
	// Misplaced, the type name for Unsupported and Mismatch.
	Pos      token.Pos
	Category Category
	Message  string
}

// SafeFormat implements redact.SafeFormatter. The category is safe; the
// message embeds type names and argument text from user source.
func (d Diagnostic) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%v: %s", d.Category, d.Message)
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return redact.StringWithoutMarkers(d)
}

var (
	_ redact.SafeFormatter = Directive{}
	_ redact.SafeFormatter = Diagnostic{}
	_ fmt.Stringer         = Directive{}
	_ fmt.Stringer         = Diagnostic{}
)
