// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

// Command crashlogctl dumps and extracts Intel Crash Log records and
// their CPER container encoding.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is the crashlogctl release string, printed by the version
// subcommand.
const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "crashlogctl",
		Short: "Decode Intel Crash Log records and their CPER container",
		Long:  "crashlogctl dumps Crash Log and CPER files and extracts Crash Logs from a raw byte source.",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the crashlogctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("crashlogctl %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newExtractCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
