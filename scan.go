// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizecheck

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sizecheck/internal/invariants"
)

// ScanResult holds the directives and diagnostics extracted from one
// package's files, each sorted by file name and offset.
type ScanResult struct {
	Directives  []Directive
	Diagnostics []Diagnostic
}

// Scan extracts size directives from the files of a single package. It is a
// purely syntactic pass: the files must have been parsed with comments
// attached, and need not be type checked. The ASTs are never modified.
//
// Every directive comment in the files lands in exactly one bucket: an
// accepted Directive, or a Diagnostic naming why the site was rejected. A
// directive is accepted only from the doc comment of a declaration defining
// a single non-generic, non-alias type; its argument must be a single
// integer literal.
//
// Scanning is stateless and deterministic: the same files produce the same
// result, and files may be scanned in any order.
func Scan(fset *token.FileSet, files []*ast.File, opts *Options) ScanResult {
	opts = opts.EnsureDefaults()
	s := scanner{
		fset:     fset,
		name:     opts.Directive,
		prefix:   "//" + opts.Directive + ":",
		consumed: make(map[token.Pos]struct{}),
	}
	for _, f := range files {
		s.scanDecls(f)
	}
	for _, f := range files {
		s.sweepComments(f)
	}
	s.sort()
	if invariants.Enabled {
		for i := range s.directives {
			if s.directives[i].Spec == nil || !s.directives[i].Pos.IsValid() {
				panic(errors.AssertionFailedf("scan produced directive without a source site: %v", s.directives[i]))
			}
		}
	}
	return ScanResult{Directives: s.directives, Diagnostics: s.diags}
}

type scanner struct {
	fset   *token.FileSet
	name   string
	prefix string
	// consumed records the positions of directive comments handled by the
	// declaration walk (accepted or diagnosed), so that the misplaced sweep
	// reports each comment at most once.
	consumed map[token.Pos]struct{}

	directives []Directive
	diags      []Diagnostic
}

// scanDecls visits every type declaration in the file and processes the
// directives in its doc comments.
func (s *scanner) scanDecls(f *ast.File) {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		if gd.Doc != nil {
			if len(gd.Specs) == 1 {
				s.scanTypeSpec(gd.Doc, gd.Specs[0].(*ast.TypeSpec))
			} else {
				s.scanGroupDoc(gd.Doc)
			}
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Doc != nil {
				s.scanTypeSpec(ts.Doc, ts)
			}
		}
	}
}

// scanGroupDoc rejects directives on the doc comment of a declaration group
// that declares more than one type: there is no single type to attach the
// declared size to.
func (s *scanner) scanGroupDoc(doc *ast.CommentGroup) {
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, s.prefix) {
			continue
		}
		s.consumed[c.Slash] = struct{}{}
		s.diags = append(s.diags, Diagnostic{
			Pos:      c.Slash,
			Category: Misplaced,
			Message: fmt.Sprintf(
				"misplaced //%s directive: cannot apply to a declaration group; attach it to a single type", s.name),
		})
	}
}

// scanTypeSpec processes the directives in the doc comment attached to a
// single type spec.
func (s *scanner) scanTypeSpec(doc *ast.CommentGroup, ts *ast.TypeSpec) {
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, s.prefix) {
			continue
		}
		s.consumed[c.Slash] = struct{}{}
		switch {
		case ts.Assign.IsValid():
			s.diags = append(s.diags, Diagnostic{
				Pos:      ts.Name.Pos(),
				Category: Unsupported,
				Message:  fmt.Sprintf("cannot assert the size of %s: type aliases are not supported", ts.Name.Name),
			})
		case ts.TypeParams != nil:
			s.diags = append(s.diags, Diagnostic{
				Pos:      ts.Name.Pos(),
				Category: Unsupported,
				Message:  fmt.Sprintf("cannot assert the size of %s: generic types are not supported", ts.Name.Name),
			})
		default:
			size, diag := s.parseArg(c)
			if diag != nil {
				s.diags = append(s.diags, *diag)
				break
			}
			s.directives = append(s.directives, Directive{
				TypeName: ts.Name.Name,
				Size:     size,
				Pos:      c.Slash,
				Spec:     ts,
			})
		}
	}
}

// parseArg parses the directive's argument: everything after the colon,
// which must hold exactly one integer literal in any base Go accepts.
func (s *scanner) parseArg(c *ast.Comment) (uint64, *Diagnostic) {
	malformed := func(format string, args ...interface{}) *Diagnostic {
		return &Diagnostic{
			Pos:      c.Slash,
			Category: Malformed,
			Message:  fmt.Sprintf("malformed //%s directive: %s", s.name, fmt.Sprintf(format, args...)),
		}
	}
	payload := strings.TrimPrefix(c.Text, s.prefix)
	args := strings.Fields(payload)
	switch {
	case len(args) == 0:
		return 0, malformed("missing size argument")
	case len(args) > 1:
		return 0, malformed("expected 1 argument, found %d", len(args))
	}
	size, err := strconv.ParseUint(args[0], 0, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, malformed("size %s out of range", args[0])
	case err != nil:
		return 0, malformed("%q is not an integer literal", args[0])
	}
	return size, nil
}

// sweepComments reports every directive comment the declaration walk did not
// reach: directives on functions, variables, constants, or imports, inside
// bodies, trailing a declaration, or detached from any declaration.
func (s *scanner) sweepComments(f *ast.File) {
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, s.prefix) {
				continue
			}
			if _, ok := s.consumed[c.Slash]; ok {
				continue
			}
			s.diags = append(s.diags, Diagnostic{
				Pos:      c.Slash,
				Category: Misplaced,
				Message: fmt.Sprintf(
					"misplaced //%s directive: must appear in the doc comment of a package-level type definition", s.name),
			})
		}
	}
}

// sort orders directives and diagnostics by file name and offset so that
// results do not depend on the order files were parsed in.
func (s *scanner) sort() {
	byPos := func(p, q token.Pos) int {
		pp, qp := s.fset.Position(p), s.fset.Position(q)
		if c := cmp.Compare(pp.Filename, qp.Filename); c != 0 {
			return c
		}
		return cmp.Compare(pp.Offset, qp.Offset)
	}
	slices.SortFunc(s.directives, func(a, b Directive) int { return byPos(a.Pos, b.Pos) })
	slices.SortFunc(s.diags, func(a, b Diagnostic) int { return byPos(a.Pos, b.Pos) })
}
