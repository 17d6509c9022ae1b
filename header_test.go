// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/binary"
	"testing"
)

// buildType2Record assembles a minimal, self-consistent Type2 header
// record: a Version word naming header_type 2, a RecordSize word, and
// the Type2 body (timestamp/agent_version/reason).
func buildType2Record(productID uint32, recordType uint8, recordSizeDwords uint16) []byte {
	v := Version{Revision: 0x2a, HeaderType: 2, ProductID: productID, RecordType: recordType}
	raw := v.AsUint32()

	b := make([]byte, 24)
	binary.LittleEndian.PutUint32(b[0:4], raw)
	binary.LittleEndian.PutUint16(b[4:6], recordSizeDwords)
	binary.LittleEndian.PutUint16(b[6:8], 0)
	binary.LittleEndian.PutUint64(b[8:16], 1234567890123)
	binary.LittleEndian.PutUint32(b[16:20], 1)
	binary.LittleEndian.PutUint32(b[20:24], 2)
	return b
}

// buildType6Record assembles a Type6 header record: a Version word
// naming header_type 6, a RecordSize word, the fixed Type6 body
// (timestamp/agent_version/reason/die_skt_info), and one trailing
// dword per completionStatus entry. csSizeByte is written verbatim
// and is not checked against len(completionStatus), so callers can
// exercise the cs_size & 0x7F mask with a value that carries a stray
// high bit.
func buildType6Record(productID uint32, revision uint32, dieID, socketID, csSizeByte uint8, collectionComplete bool, completionStatus []uint32, recordSizeDwords uint16) []byte {
	v := Version{Revision: revision, HeaderType: 6, ProductID: productID, RecordType: RecordTypeMCA}
	raw := v.AsUint32()

	b := make([]byte, 28+len(completionStatus)*4)
	binary.LittleEndian.PutUint32(b[0:4], raw)
	binary.LittleEndian.PutUint16(b[4:6], recordSizeDwords)
	binary.LittleEndian.PutUint16(b[6:8], 0)
	binary.LittleEndian.PutUint64(b[8:16], 42)
	binary.LittleEndian.PutUint32(b[16:20], 1)
	binary.LittleEndian.PutUint32(b[20:24], 2)
	b[24] = dieID
	b[25] = socketID
	b[26] = csSizeByte
	if collectionComplete {
		b[27] = 0x80
	}
	for i, cs := range completionStatus {
		binary.LittleEndian.PutUint32(b[28+i*4:32+i*4], cs)
	}
	return b
}

// buildType0LegacyServerRecord assembles a Type0LegacyServer header
// record: product_id 0x2F forces the errata so HeaderFromSlice routes
// through type0LegacyServerFromSlice and reads record_size from offset
// 16..18 rather than 4..8.
func buildType0LegacyServerRecord(revision uint32, recordType uint8, socketID uint8, recordSizeDwords uint16) []byte {
	v := Version{Revision: revision, HeaderType: 0, ProductID: 0x2F, RecordType: recordType}
	raw := v.AsUint32()

	b := make([]byte, 32)
	binary.LittleEndian.PutUint32(b[0:4], raw)
	binary.LittleEndian.PutUint32(b[4:8], 0x1111) // reason
	binary.LittleEndian.PutUint64(b[8:16], 99)     // timestamp
	binary.LittleEndian.PutUint16(b[16:18], recordSizeDwords)
	binary.LittleEndian.PutUint16(b[18:20], 0)
	binary.LittleEndian.PutUint32(b[20:24], 7) // agent version
	b[24] = socketID
	binary.LittleEndian.PutUint32(b[28:32], 0x80000005) // collection_complete=1, completion_status=5
	return b
}

func TestHeaderFromSliceType6(t *testing.T) {
	data := buildType6Record(0x10, 2, 1, 0, 2, true, []uint32{0xAAAA, 0xBBBB}, 7)

	h, err := HeaderFromSlice(data)
	if err != nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	if h == nil {
		t.Fatal("HeaderFromSlice returned nil, want a header")
	}

	ht, ok := h.HeaderType.(Type6)
	if !ok {
		t.Fatalf("HeaderType = %T, want Type6", h.HeaderType)
	}
	if ht.DieID != 1 || ht.SocketID != 0 {
		t.Errorf("DieID/SocketID = %d/%d, want 1/0", ht.DieID, ht.SocketID)
	}
	if ht.CompletionStatusSize != 2 || len(ht.CompletionStatus) != 2 {
		t.Fatalf("CompletionStatusSize/len(CompletionStatus) = %d/%d, want 2/2", ht.CompletionStatusSize, len(ht.CompletionStatus))
	}
	if ht.CompletionStatus[0] != 0xAAAA || ht.CompletionStatus[1] != 0xBBBB {
		t.Errorf("CompletionStatus = %#x, want [0xaaaa 0xbbbb]", ht.CompletionStatus)
	}
	if !ht.CollectionComplete {
		t.Error("CollectionComplete = false, want true")
	}

	if got := h.HeaderSize(); got != 36 {
		t.Errorf("HeaderSize() = %d, want 36 (28 + 2*4)", got)
	}
	if dieID, ok := h.DieID(); !ok || dieID != 1 {
		t.Errorf("Header.DieID() = %d, %v, want 1, true", dieID, ok)
	}
	if h.SocketID() != 0 {
		t.Errorf("Header.SocketID() = %d, want 0", h.SocketID())
	}
}

func TestHeaderFromSliceType6MasksCompletionStatusSize(t *testing.T) {
	// csSizeByte 0x83 carries a stray high bit (0x80); only the low 7
	// bits (0x03) should surface as CompletionStatusSize.
	data := buildType6Record(0x10, 1, 4, 1, 0x83, false, []uint32{1, 2, 3}, 10)

	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	ht, ok := h.HeaderType.(Type6)
	if !ok {
		t.Fatalf("HeaderType = %T, want Type6", h.HeaderType)
	}
	if ht.CompletionStatusSize != 3 {
		t.Errorf("CompletionStatusSize = %d, want 3 (0x83 & 0x7f)", ht.CompletionStatusSize)
	}
	if ht.CollectionComplete {
		t.Error("CollectionComplete = true, want false")
	}
}

func TestHeaderFromSliceType6ShortCompletionStatusArray(t *testing.T) {
	data := buildType6Record(0x10, 1, 4, 1, 2, false, []uint32{1, 2}, 10)
	// Declare a completion_status_size of 3 but only provide room for 2.
	data = data[:len(data)-4]
	data[26] = 3

	if _, err := HeaderFromSlice(data); err == nil {
		t.Error("HeaderFromSlice with a truncated completion_status array succeeded, want an error")
	}
}

func TestHeaderFromSliceType0LegacyServer(t *testing.T) {
	// revision bit 7 set selects the "+9" die_id branch: dieIdx=1 -> dieID=10.
	data := buildType0LegacyServerRecord(0x81, RecordTypeMCA, 1, 8)

	h, err := HeaderFromSlice(data)
	if err != nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	if h == nil {
		t.Fatal("HeaderFromSlice returned nil, want a header")
	}

	ht, ok := h.HeaderType.(Type0LegacyServer)
	if !ok {
		t.Fatalf("HeaderType = %T, want Type0LegacyServer", h.HeaderType)
	}
	if ht.DieID != 10 {
		t.Errorf("DieID = %d, want 10 (dieIdx=1, +9 branch)", ht.DieID)
	}
	if ht.SocketID != 1 {
		t.Errorf("SocketID = %d, want 1", ht.SocketID)
	}
	if ht.Reason != 0x1111 {
		t.Errorf("Reason = 0x%x, want 0x1111", ht.Reason)
	}
	if ht.AgentVersion != 7 {
		t.Errorf("AgentVersion = %d, want 7", ht.AgentVersion)
	}
	if ht.CompletionStatus != 5 || !ht.CollectionComplete {
		t.Errorf("CompletionStatus/CollectionComplete = %d/%v, want 5/true", ht.CompletionStatus, ht.CollectionComplete)
	}

	if got := h.RecordSize(); got != 32 {
		t.Errorf("RecordSize() = %d, want 32 (record_size=8, granularity=4, read from offset 16..18)", got)
	}
	if got := h.HeaderSize(); got != 32 {
		t.Errorf("HeaderSize() = %d, want 32", got)
	}
	if dieID, ok := h.DieID(); !ok || dieID != 10 {
		t.Errorf("Header.DieID() = %d, %v, want 10, true", dieID, ok)
	}
}

func TestHeaderFromSliceType0LegacyServerDieIDShiftBranch(t *testing.T) {
	// revision bit 7 clear selects the "<<2" die_id branch: dieIdx=3 -> dieID=12.
	data := buildType0LegacyServerRecord(0x03, RecordTypeMCA, 0, 8)

	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	dieID, ok := h.DieID()
	if !ok || dieID != 12 {
		t.Errorf("Header.DieID() = %d, %v, want 12 (dieIdx=3, <<2 branch)", dieID, ok)
	}
}

func TestHeaderFromSliceType0LegacyServerUsesBoxErrata(t *testing.T) {
	// The legacy-server BOX erratum keys off record_type 0x4, the
	// legacy numbering for BOX records (distinct from the modern
	// RecordTypePCORE/RecordTypeBox symbolic table).
	data := buildType0LegacyServerRecord(0x81, 0x4, 1, 8)

	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	errata := ComputeErrata(h.Version)
	if !errata.Type0LegacyServer || !errata.Type0LegacyServerBox {
		t.Errorf("Errata = %+v, want Type0LegacyServer and Type0LegacyServerBox both true", errata)
	}
}

func TestHeaderFromSliceType2(t *testing.T) {
	data := buildType2Record(0x7a, RecordTypeMCA, 6)

	h, err := HeaderFromSlice(data)
	if err != nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}
	if h == nil {
		t.Fatal("HeaderFromSlice returned nil, want a header")
	}

	ht, ok := h.HeaderType.(Type2)
	if !ok {
		t.Fatalf("HeaderType = %T, want Type2", h.HeaderType)
	}
	if ht.Timestamp != 1234567890123 || ht.AgentVersion != 1 || ht.Reason != 2 {
		t.Errorf("Type2 fields = %+v, want timestamp=1234567890123 agent_version=1 reason=2", ht)
	}

	if got := h.RecordSize(); got != 24 {
		t.Errorf("RecordSize() = %d, want 24", got)
	}
	if got := h.HeaderSize(); got != 24 {
		t.Errorf("HeaderSize() = %d, want 24", got)
	}

	recordType, err := h.RecordType()
	if err != nil || recordType != "MCA" {
		t.Errorf("RecordType() = %q, %v, want \"MCA\", nil", recordType, err)
	}

	if _, ok := h.DieID(); ok {
		t.Errorf("DieID() reported a die id for a Type2 header")
	}
}

func TestHeaderFromSliceTerminator(t *testing.T) {
	h, err := HeaderFromSlice([]byte{0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("HeaderFromSlice(terminator) failed, reason: %v", err)
	}
	if h != nil {
		t.Errorf("HeaderFromSlice(terminator) = %+v, want nil", h)
	}
}

func TestHeaderFromSliceTooShort(t *testing.T) {
	data := buildType2Record(0x7a, RecordTypeMCA, 6)

	if _, err := HeaderFromSlice(data[:10]); err == nil {
		t.Errorf("HeaderFromSlice of a truncated Type2 record succeeded, want an error")
	}
}

func TestHeaderString(t *testing.T) {
	data := buildType2Record(0x7a, RecordTypeMCA, 6)
	h, err := HeaderFromSlice(data)
	if err != nil || h == nil {
		t.Fatalf("HeaderFromSlice failed, reason: %v", err)
	}

	want := "MCA - (product_id=0x7a, record_type=0x3e, revision=0x2a, ..)"
	if got := h.String(); got != want {
		t.Errorf("Header.String() = %q, want %q", got, want)
	}
}

func TestHeaderFromSliceInvalidHeaderType(t *testing.T) {
	v := Version{Revision: 1, HeaderType: 7, ProductID: 1, RecordType: RecordTypeMCA}
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], v.AsUint32())

	if _, err := HeaderFromSlice(b); err == nil {
		t.Errorf("HeaderFromSlice with header_type 7 succeeded, want InvalidHeaderTypeError")
	} else if _, ok := err.(*InvalidHeaderTypeError); !ok {
		t.Errorf("HeaderFromSlice with header_type 7 returned %T, want *InvalidHeaderTypeError", err)
	}
}
