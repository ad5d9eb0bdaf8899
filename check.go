// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizecheck

import (
	"fmt"
	"go/types"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sizecheck/internal/invariants"
	"github.com/cockroachdb/swiss"
)

// A Checker computes actual type sizes and compares them against declared
// sizes. Sizes of named types are memoized: surveys recompute the same
// underlying types over and over, and the operator walks the full struct
// layout each time. The cache is keyed on *types.Named because swiss.Map
// needs a strictly comparable key; every directive resolves to a named
// type, so in practice every lookup hits the cache path.
type Checker struct {
	sizes types.Sizes
	cache swiss.Map[*types.Named, int64]
}

// checkerInitialCapacity is sized for a typical package's worth of types.
const checkerInitialCapacity = 64

// NewChecker returns a Checker that computes sizes with the given operator.
func NewChecker(sizes types.Sizes) *Checker {
	c := &Checker{sizes: sizes}
	c.cache.Init(checkerInitialCapacity)
	return c
}

// Sizeof returns the size of t in bytes under the checker's size operator,
// including any trailing padding.
func (c *Checker) Sizeof(t types.Type) int64 {
	named, ok := t.(*types.Named)
	if !ok {
		return c.sizes.Sizeof(t)
	}
	if sz, ok := c.cache.Get(named); ok {
		if invariants.Sometimes(10) {
			if again := c.sizes.Sizeof(t); again != sz {
				panic(errors.AssertionFailedf("cached sizeof(%s) = %d, recomputed %d", t, sz, again))
			}
		}
		return sz
	}
	sz := c.sizes.Sizeof(t)
	c.cache.Put(named, sz)
	return sz
}

// Alignof returns the alignment of t in bytes under the checker's size
// operator.
func (c *Checker) Alignof(t types.Type) int64 {
	return c.sizes.Alignof(t)
}

// Check resolves each directive's type through info and compares the
// declared size against the actual size, returning one Mismatch diagnostic
// per diverging directive. The directives must come from the files info was
// produced for; a directive whose type has no entry in info is reported as
// an error.
func (c *Checker) Check(directives []Directive, info *types.Info) ([]Diagnostic, error) {
	var diags []Diagnostic
	for i := range directives {
		d := &directives[i]
		obj, ok := info.Defs[d.Spec.Name].(*types.TypeName)
		if !ok {
			return nil, errors.AssertionFailedf("no type information for %s", d.TypeName)
		}
		actual := c.Sizeof(obj.Type())
		if actual < 0 || uint64(actual) != d.Size {
			diags = append(diags, Diagnostic{
				Pos:      d.Spec.Name.Pos(),
				Category: Mismatch,
				Message:  fmt.Sprintf("sizeof(%s) = %d, want %d", d.TypeName, actual, d.Size),
			})
		}
	}
	return diags, nil
}
