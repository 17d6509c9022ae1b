// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	crashlog "github.com/intel/crashlog-go"
)

func TestExtractOutputPath(t *testing.T) {
	computer := "testhost"
	metadata := crashlog.Metadata{Computer: &computer}

	dir := t.TempDir()

	tests := []struct {
		name string
		out  string
		want string
	}{
		{"no out flag", "", "testhost.crashlog"},
		{"out is a directory", dir, filepath.Join(dir, "testhost.crashlog")},
		{"out is a direct file path", filepath.Join(dir, "custom.crashlog"), filepath.Join(dir, "custom.crashlog")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractOutputPath(tt.out, metadata)
			if got != tt.want {
				t.Errorf("extractOutputPath(%q, %+v) = %q, want %q", tt.out, metadata, got, tt.want)
			}
		})
	}
}

func TestReadExtractInputFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.crashlog")
	want := []byte{0x01, 0x02, 0x03}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile failed, reason: %v", err)
	}

	got, err := readExtractInput(path)
	if err != nil {
		t.Fatalf("readExtractInput(%q) failed, reason: %v", path, err)
	}
	if len(got) != len(want) {
		t.Fatalf("readExtractInput(%q) = %x, want %x", path, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("readExtractInput(%q)[%d] = 0x%x, want 0x%x", path, i, got[i], want[i])
		}
	}
}
