// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package gen maintains the per-package generated file that turns size
// directives into compile-time assertions.
//
// For each directive the generated file carries a pair of constant
// declarations:
//
//	_ = unsafe.Sizeof(*(*T)(nil)) - N
//	_ = N - unsafe.Sizeof(*(*T)(nil))
//
// unsafe.Sizeof of a value of a non-generic type is a uintptr constant, and
// a uintptr constant cannot be negative: the first declaration fails to
// compile when sizeof(T) < N and the second when sizeof(T) > N. The compiler
// enforces the declared sizes on every ordinary build of the package, with
// no tool in the loop. The constants bind only the blank identifier, so
// generation cannot collide with user code no matter how often it runs.
//
// A generated sibling file is compiled in every configuration of its
// package. Directives in test files or build-constrained files therefore
// cannot be served by generation and are refused; the analyzer covers those
// sites.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sizecheck"
)

// Header is the first line of every generated file, in the form the Go
// toolchain and ast.IsGenerated recognize.
const Header = `// Code generated by "sizecheck"; DO NOT EDIT.`

// fingerprintPrefix introduces the comment recording the hash of the
// directive list a generated file was rendered from. Staleness checks
// compare fingerprints to skip rendering in the common up-to-date case.
const fingerprintPrefix = "// Fingerprint: "

// Render produces the generated file for a package from its directives, in
// the directives' order. It requires at least one directive; a package
// without directives has no generated file at all.
func Render(pkgName string, directives []sizecheck.Directive) ([]byte, error) {
	if len(directives) == 0 {
		return nil, errors.AssertionFailedf("rendering a generated file for zero directives")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n//\n%s%016x\n\n", Header, fingerprintPrefix, Fingerprint(pkgName, directives))
	fmt.Fprintf(&buf, "package %s\n\nimport \"unsafe\"\n\n", pkgName)
	buf.WriteString("// Each pair of constants fails to compile when the named type's size\n")
	buf.WriteString("// diverges from its declared size: unsafe.Sizeof yields a uintptr\n")
	buf.WriteString("// constant, and a uintptr constant cannot be negative.\n")
	buf.WriteString("const (\n")
	for i := range directives {
		if i > 0 {
			buf.WriteByte('\n')
		}
		d := &directives[i]
		fmt.Fprintf(&buf, "\t_ = unsafe.Sizeof(*(*%s)(nil)) - %d\n", d.TypeName, d.Size)
		fmt.Fprintf(&buf, "\t_ = %d - unsafe.Sizeof(*(*%s)(nil))\n", d.Size, d.TypeName)
	}
	buf.WriteString(")\n")
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "formatting generated file for package %s", pkgName)
	}
	return out, nil
}

// Fingerprint hashes the identity of a package's directive list: the package
// name and each directive's type name and declared size, in order.
func Fingerprint(pkgName string, directives []sizecheck.Directive) uint64 {
	h := xxhash.New()
	_, _ = io.WriteString(h, pkgName)
	for i := range directives {
		_, _ = io.WriteString(h, "\x00")
		_, _ = io.WriteString(h, directives[i].TypeName)
		_, _ = io.WriteString(h, "\x00")
		_, _ = h.Write(strconv.AppendUint(nil, directives[i].Size, 10))
	}
	return h.Sum64()
}

// isGenerated reports whether content is a file written by this package:
// removal and overwriting are restricted to files bearing our header.
func isGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(Header))
}

// parseFingerprint extracts the fingerprint from a generated file's header
// comment.
func parseFingerprint(content []byte) (uint64, bool) {
	for _, line := range strings.SplitN(string(content), "\n", 8) {
		if rest, ok := strings.CutPrefix(line, fingerprintPrefix); ok {
			fp, err := strconv.ParseUint(strings.TrimSpace(rest), 16, 64)
			return fp, err == nil
		}
		if strings.HasPrefix(line, "package ") {
			break
		}
	}
	return 0, false
}
