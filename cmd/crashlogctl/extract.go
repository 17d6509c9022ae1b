// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	crashlog "github.com/intel/crashlog-go"
)

// newExtractCmd stands in for the platform acquisition collaborator
// (spec.md §6): instead of reading Windows event logs or Linux
// ACPI/PMT sysfs entries, it reads raw Crash Log bytes from --from or
// stdin, then applies the same output-naming and error-reporting
// contract the platform extractor would.
func newExtractCmd() *cobra.Command {
	var (
		out  string
		from string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a Crash Log from a raw byte source",
		Long: "extract reads raw Crash Log bytes from --from (or stdin when omitted) and writes " +
			"the Crash Log, wrapped as a CPER record, to <metadata>.crashlog in the output " +
			"directory, or to --out directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runExtract(out, from)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output directory or file path")
	cmd.Flags().StringVar(&from, "from", "", "Read raw Crash Log bytes from this file instead of stdin")

	return cmd
}

func runExtract(out, from string) {
	data, err := readExtractInput(from)
	if err != nil {
		logExtractError(err)
		return
	}

	cl, err := crashlog.CrashLogFromSlice(data, nil)
	if err != nil {
		logExtractError(err)
		return
	}

	path := extractOutputPath(out, cl.Metadata)
	if err := os.WriteFile(path, cl.ToBytes(), 0o644); err != nil {
		logExtractError(err)
		return
	}

	fmt.Println(path)
}

func readExtractInput(from string) ([]byte, error) {
	if from == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(from)
}

func extractOutputPath(out string, metadata crashlog.Metadata) string {
	name := fmt.Sprintf("%s.crashlog", metadata.String())
	if out == "" {
		return name
	}

	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}

func logExtractError(err error) {
	fmt.Fprintf(os.Stderr, "Failed to extract Crash Log: %v\n", err)
}
