// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"

	crashlog "github.com/intel/crashlog-go"
	"github.com/intel/crashlog-go/internal/logging"
)

func newDumpCmd() *cobra.Command {
	var (
		wantHeader  bool
		wantRegions bool
		wantCper    bool
		decodeDir   string
		wantJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump a .crashlog or .cper file",
		Long:  "dump parses a Crash Log or CPER file (detected by the \"CPER\" magic) and prints the requested views.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0], wantHeader, wantRegions, wantCper, decodeDir, wantJSON)
		},
	}

	cmd.Flags().BoolVar(&wantHeader, "header", false, "Dump every record's header")
	cmd.Flags().BoolVar(&wantRegions, "regions", false, "Dump region/record counts")
	cmd.Flags().BoolVar(&wantCper, "cper", false, "Dump the CPER record header and section descriptors")
	cmd.Flags().StringVar(&decodeDir, "decode", "", "Decode records against a file-system collateral tree rooted at this directory")
	cmd.Flags().BoolVar(&wantJSON, "json", false, "Render --decode output as JSON instead of a plain node listing")

	return cmd
}

// readFile mmaps path the way the teacher's File type maps its input
// binary, copying the mapped bytes out so the mapping can be
// unmapped before the data is used.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)
	return data, nil
}

func isCper(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "CPER"
}

func runDump(path string, wantHeader, wantRegions, wantCper bool, decodeDir string, wantJSON bool) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	logger := logging.NewHelper(logging.NewStdLogger(os.Stderr))

	var cl crashlog.CrashLog
	var cper *crashlog.Cper

	if isCper(data) {
		c, err := crashlog.CperFromSlice(data, logger)
		if err != nil {
			return fmt.Errorf("parsing CPER: %w", err)
		}
		cper = &c

		cl, err = crashlog.CrashLogFromCper(c, logger)
		if err != nil {
			return fmt.Errorf("unwrapping CPER: %w", err)
		}
	} else {
		cl, err = crashlog.CrashLogFromSlice(data, &crashlog.Options{Logger: logging.NewStdLogger(os.Stderr)})
		if err != nil {
			return fmt.Errorf("parsing Crash Log: %w", err)
		}
	}

	if wantRegions {
		for i, region := range cl.Regions {
			fmt.Printf("region %d: %d records\n", i, len(region.Records))
		}
	}

	if wantHeader {
		for i, region := range cl.Regions {
			for j := range region.Records {
				fmt.Printf("region %d record %d: %s\n", i, j, region.Records[j].Header.String())
			}
		}
	}

	if wantCper {
		if cper == nil {
			c := crashlog.CperFromRawCrashLog(cl)
			cper = &c
		}
		dumpCper(cper)
	}

	if decodeDir != "" {
		if err := dumpDecoded(cl, decodeDir, wantJSON, logger); err != nil {
			return err
		}
	}

	return nil
}

func dumpCper(cper *crashlog.Cper) {
	fmt.Printf("section_count=%d record_length=%d severity=%d notification_type=%s\n",
		cper.RecordHeader.SectionCount, cper.RecordHeader.RecordLength,
		cper.RecordHeader.ErrorSeverity, cper.RecordHeader.NotificationType)
	for i, section := range cper.Sections {
		fmt.Printf("  section %d: type=%s length=%d severity=%d\n",
			i, section.Descriptor.SectionType, section.Descriptor.SectionLength, section.Descriptor.SectionSeverity)
	}
}

func dumpDecoded(cl crashlog.CrashLog, decodeDir string, wantJSON bool, logger *logging.Helper) error {
	tree, err := crashlog.NewFileSystemCollateralTree(decodeDir, &crashlog.FileSystemCollateralTreeOptions{
		Logger: logging.NewStdLogger(os.Stderr),
	})
	if err != nil {
		return fmt.Errorf("opening collateral tree: %w", err)
	}

	root := cl.Decode(tree, logger)

	if wantJSON {
		out, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printNode(root, 0)
	return nil
}

func printNode(n *crashlog.Node, depth int) {
	if n.Name != "" {
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}
		if n.Kind == crashlog.NodeField {
			fmt.Printf("%s%s = 0x%x\n", indent, n.Name, n.Value)
		} else {
			fmt.Printf("%s%s\n", indent, n.Name)
		}
	}
	for _, child := range n.Children() {
		printNode(child, depth+1)
	}
}
