// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

//go:build invariants || race

package invariants

import "math/rand/v2"

// Enabled is true if we were built with the "invariants" or "race" build
// tags.
const Enabled = true

// Sometimes returns true percent% of the time if we were built with the
// "invariants" or "race" build tags.
func Sometimes(percent int) bool {
	return rand.Uint32N(100) < uint32(percent)
}
