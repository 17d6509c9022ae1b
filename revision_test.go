// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "testing"

func TestRevisionRoundTrip(t *testing.T) {
	r := NewRevision(1, 1)
	got, ok := RevisionFromSlice(r.ToBytes())
	if !ok {
		t.Fatalf("RevisionFromSlice(%x) failed", r.ToBytes())
	}
	if got != r {
		t.Errorf("RevisionFromSlice(ToBytes(%+v)) = %+v, want %+v", r, got, r)
	}
}

func TestRevisionString(t *testing.T) {
	got := NewRevision(1, 2).String()
	want := "1.2"
	if got != want {
		t.Errorf("Revision.String() = %q, want %q", got, want)
	}
}

func TestRevisionFromSliceShort(t *testing.T) {
	if _, ok := RevisionFromSlice([]byte{0x01}); ok {
		t.Errorf("RevisionFromSlice of a 1-byte slice reported ok")
	}
}
