// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// sizecheckvet is a vet-compatible driver for the sizecheck analyzer. It is
// intended to be invoked through the go command:
//
//	go vet -vettool=$(which sizecheckvet) ./...
package main

import (
	"github.com/cockroachdb/sizecheck"
	"golang.org/x/tools/go/analysis/unitchecker"
)

func main() {
	unitchecker.Main(
		sizecheck.Analyzer,
	)
}
