// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/intel/crashlog-go/internal/logging"
)

func TestDecodeWithCSV(t *testing.T) {
	// The payload starts at byteOffset 0 within Data; offsets below are
	// bit offsets relative to it. Byte 0 = 0x2A (0b00101010).
	r := Record{Data: []byte{0x2A, 0x00, 0x00, 0x00}}

	// Each extra leading dot pops one level off the running path before
	// the remaining segments are appended: "..code" pops "valid" back
	// to "status" then descends into "code"; "...addr" pops twice more,
	// back past "status" to "mca", then descends into "addr".
	layout := []byte("name;offset;size;description\n" +
		"mca.status.valid;0;1;valid bit\n" +
		"..code;1;7;error code\n" +
		"...addr;8;8;address byte\n")

	root, err := r.DecodeWithCSV(layout, 0)
	if err != nil {
		t.Fatalf("DecodeWithCSV failed, reason: %v", err)
	}

	valid, ok := root.GetValueByPath("mca.status.valid")
	if !ok || valid != 0 {
		t.Errorf("mca.status.valid = %d, %v, want 0, true", valid, ok)
	}
	code, ok := root.GetValueByPath("mca.status.code")
	if !ok || code != 0x15 {
		t.Errorf("mca.status.code = 0x%x, %v, want 0x15, true", code, ok)
	}
	addr, ok := root.GetValueByPath("mca.addr")
	if !ok || addr != 0 {
		t.Errorf("mca.addr = %d, %v, want 0, true (popped back up to mca)", addr, ok)
	}
}

func TestDecodeWithCSVShortRowsDegradeSilently(t *testing.T) {
	r := Record{Data: []byte{0xFF}}
	// The second row omits the description column entirely.
	layout := []byte("name;offset;size;description\n" +
		"mca.status;0;8;full status byte\n" +
		"mca.extra;0;4\n")

	root, err := r.DecodeWithCSV(layout, 0)
	if err != nil {
		t.Fatalf("DecodeWithCSV failed, reason: %v", err)
	}

	status, ok := root.GetValueByPath("mca.status")
	if !ok || status != 0xFF {
		t.Errorf("mca.status = 0x%x, %v, want 0xff, true", status, ok)
	}
	extra, ok := root.GetValueByPath("mca.extra")
	if !ok || extra != 0xF {
		t.Errorf("mca.extra = 0x%x, %v, want 0xf, true", extra, ok)
	}
}

// TestDecodeScenarioType0LegacyServerDieRouting covers the Type0
// legacy-server die-id-derivation/root-path-routing scenario: a
// product_id 0x2F record with revision bit 7 set derives die_id 10
// (dieIdx=1, +9 branch) and, decoded against a collateral tree whose
// target_info names that die "die10", nests under
// processors.cpu1.die10.
func TestDecodeScenarioType0LegacyServerDieRouting(t *testing.T) {
	root := t.TempDir()
	targets := "product_id;product;variant;die_ids\n0x2f;wolfpass;a0;10=die10\n"
	if err := os.WriteFile(filepath.Join(root, "targets.csv"), []byte(targets), 0o644); err != nil {
		t.Fatalf("WriteFile failed, reason: %v", err)
	}

	data := buildType0LegacyServerRecord(0x81, RecordTypeMCA, 1, 8)
	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	r := Record{Header: *h, Data: data}

	tree, err := NewFileSystemCollateralTree(root, nil)
	if err != nil {
		t.Fatalf("NewFileSystemCollateralTree failed, reason: %v", err)
	}

	// No decode-defs are published, so Decode degrades to the header
	// fallback, which is enough to demonstrate the die-routed path.
	decoded := r.Decode(tree, logging.NewHelper(nil))

	headerType, ok := decoded.GetValueByPath("processors.cpu1.die10.MCA.hdr.version.header_type")
	if !ok || headerType != 0 {
		t.Errorf("processors.cpu1.die10.MCA.hdr.version.header_type = %d, %v, want 0, true", headerType, ok)
	}
}

// TestDecodeScenarioType6DieNameLookup covers the Type6 die-name
// lookup scenario: a record with die_id 1/socket_id 0, decoded against
// a collateral tree that names die 1 "io1", nests under
// processors.cpu0.io1.
func TestDecodeScenarioType6DieNameLookup(t *testing.T) {
	root := t.TempDir()
	targets := "product_id;product;variant;die_ids\n0x10;dummy;a0;1=io1\n"
	if err := os.WriteFile(filepath.Join(root, "targets.csv"), []byte(targets), 0o644); err != nil {
		t.Fatalf("WriteFile failed, reason: %v", err)
	}

	data := buildType6Record(0x10, 2, 1, 0, 0, false, nil, 7)
	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	r := Record{Header: *h, Data: data}

	tree, err := NewFileSystemCollateralTree(root, nil)
	if err != nil {
		t.Fatalf("NewFileSystemCollateralTree failed, reason: %v", err)
	}

	decoded := r.Decode(tree, logging.NewHelper(nil))

	revision, ok := decoded.GetValueByPath("processors.cpu0.io1.MCA.hdr.version.revision")
	if !ok || revision != 2 {
		t.Errorf("processors.cpu0.io1.MCA.hdr.version.revision = %d, %v, want 2, true", revision, ok)
	}
	dieID, ok := decoded.GetValueByPath("processors.cpu0.io1.MCA.hdr.die_skt_info.die_id")
	if !ok || dieID != 1 {
		t.Errorf("processors.cpu0.io1.MCA.hdr.die_skt_info.die_id = %d, %v, want 1, true", dieID, ok)
	}
}

func TestDecodeHeaderFallback(t *testing.T) {
	data := buildType2Record(0x7a, RecordTypeMCA, 6)
	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	r := Record{Header: *h, Data: data}

	root := r.DecodeHeader()
	recordTypeName, _ := h.RecordType()

	got, ok := root.GetValueByPath(recordTypeName + ".hdr.version.revision")
	if !ok || got != uint64(h.Version.Revision) {
		t.Errorf("%s.hdr.version.revision = %d, %v, want %d, true", recordTypeName, got, ok, h.Version.Revision)
	}
}
