// Copyright 2026 The Sizecheck Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/sizecheck/tool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "sizecheck [command] (flags)",
	Short:   "sizecheck verification/introspection tool",
	Long:    ``,
	Version: version,
}

// version is overridden at build time via -ldflags.
var version = "devel"

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	t := tool.New()
	rootCmd.AddCommand(t.Commands...)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
