// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "encoding/binary"

// FER header sizes, depending on revision.
const (
	FERHeaderRev1Size = 16
	FERHeaderRev2Size = 32
)

// RecordIDCrashLog identifies a Firmware Error Record payload as a
// wrapped Crash Log region.
var RecordIDCrashLog = mustGUID("8f87f311-c998-4d9e-a0c4-6065518c4f6d")

// FirmwareErrorRecordHeader is the UEFI 2.10 N.2.10 Firmware Error
// Record Reference header.
type FirmwareErrorRecordHeader struct {
	ErrorType        uint8
	Revision         uint8
	RecordIdentifier uint64
	GUID             GUID
}

// FirmwareErrorRecordHeaderFromSlice parses the header from a slice.
func FirmwareErrorRecordHeaderFromSlice(s []byte) (FirmwareErrorRecordHeader, bool) {
	if len(s) < 16 {
		return FirmwareErrorRecordHeader{}, false
	}
	revision := s[1]

	h := FirmwareErrorRecordHeader{
		ErrorType:        s[0],
		Revision:         revision,
		RecordIdentifier: binary.LittleEndian.Uint64(s[8:16]),
	}

	if revision >= 2 {
		if len(s) < 32 {
			return FirmwareErrorRecordHeader{}, false
		}
		guid, ok := GUIDFromBytes(s[16:32])
		if !ok {
			return FirmwareErrorRecordHeader{}, false
		}
		h.GUID = guid
	}

	return h, true
}

// Len returns the header's wire size, which depends on Revision.
func (h FirmwareErrorRecordHeader) Len() int {
	if h.Revision >= 2 {
		return FERHeaderRev2Size
	}
	return FERHeaderRev1Size
}

// ToBytes serializes the header.
func (h FirmwareErrorRecordHeader) ToBytes() []byte {
	b := make([]byte, 0, h.Len())
	b = append(b, h.ErrorType, h.Revision)
	b = append(b, make([]byte, 6)...)

	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], h.RecordIdentifier)
	b = append(b, u64[:]...)

	if h.Revision >= 2 {
		b = append(b, h.GUID.ToBytes()...)
	}

	return b
}

// FirmwareErrorRecord is the UEFI 2.10 N.2.10 section body: a header
// plus an opaque payload.
type FirmwareErrorRecord struct {
	Header  FirmwareErrorRecordHeader
	Payload []byte
}

// FirmwareErrorRecordFromSlice parses a FER from a slice.
func FirmwareErrorRecordFromSlice(s []byte) (FirmwareErrorRecord, bool) {
	header, ok := FirmwareErrorRecordHeaderFromSlice(s)
	if !ok {
		return FirmwareErrorRecord{}, false
	}
	if len(s) < header.Len() {
		return FirmwareErrorRecord{}, false
	}
	payload := make([]byte, len(s)-header.Len())
	copy(payload, s[header.Len():])
	return FirmwareErrorRecord{Header: header, Payload: payload}, true
}

// FirmwareErrorRecordFromCrashLogRegion wraps a Crash Log region as a
// revision-2 Firmware Error Record.
func FirmwareErrorRecordFromCrashLogRegion(region Region) FirmwareErrorRecord {
	return FirmwareErrorRecord{
		Header: FirmwareErrorRecordHeader{
			ErrorType: 2,
			Revision:  2,
			GUID:      RecordIDCrashLog,
		},
		Payload: region.ToBytes(),
	}
}

// ToBytes serializes the FER.
func (f FirmwareErrorRecord) ToBytes() []byte {
	b := f.Header.ToBytes()
	b = append(b, f.Payload...)
	return b
}
