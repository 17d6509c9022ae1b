// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "testing"

func TestGUIDRoundTrip(t *testing.T) {
	g := GUID{Data1: 0x81212a96, Data2: 0x09ed, Data3: 0x4996, Data4: [8]byte{0x94, 0x71, 0x8d, 0x72, 0x9c, 0x8e, 0x69, 0xed}}

	got, ok := GUIDFromBytes(g.ToBytes())
	if !ok {
		t.Fatalf("GUIDFromBytes(%x) failed", g.ToBytes())
	}
	if got != g {
		t.Errorf("GUIDFromBytes(ToBytes(%+v)) = %+v, want %+v", g, got, g)
	}
}

func TestGUIDString(t *testing.T) {
	g := GUID{Data1: 0x81212a96, Data2: 0x09ed, Data3: 0x4996, Data4: [8]byte{0x94, 0x71, 0x8d, 0x72, 0x9c, 0x8e, 0x69, 0xed}}
	want := "81212a96-09ed-4996-9471-8d729c8e69ed"
	if got := g.String(); got != want {
		t.Errorf("GUID.String() = %q, want %q", got, want)
	}
}

func TestMustGUIDMatchesString(t *testing.T) {
	want := "81212a96-09ed-4996-9471-8d729c8e69ed"
	g := mustGUID(want)
	if got := g.String(); got != want {
		t.Errorf("mustGUID(%q).String() = %q, want %q", want, got, want)
	}
}

func TestGUIDFromBytesShort(t *testing.T) {
	if _, ok := GUIDFromBytes(make([]byte, 15)); ok {
		t.Errorf("GUIDFromBytes of a 15-byte slice reported ok")
	}
}
