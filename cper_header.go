// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/binary"

	"github.com/intel/crashlog-go/internal/logging"
)

// RecordHeaderSize is the fixed wire size of a CperHeader.
const RecordHeaderSize = 128

var lcfGUID = mustGUID("eba67344-b876-4237-b80d-27e1297fa2ff")

// NotificationTypeBoot is the notification_type GUID used for Crash
// Log CPER records produced from a boot-time error.
var NotificationTypeBoot = mustGUID("3d61a466-ab40-409a-a698-f362d464b38f")

// CPER header validation-bit flags.
const (
	validationPlatformID  uint32 = 1
	validationTimestamp   uint32 = 2
	validationPartitionID uint32 = 4
)

// CPER header flag bits.
const (
	FlagRecovered uint32 = 1 << 0
	FlagPreverr   uint32 = 1 << 1
	FlagSimulated uint32 = 1 << 2
)

// ErrorSeverity is the severity carried in a CperHeader.
type ErrorSeverity uint32

const (
	ErrorSeverityRecoverable  ErrorSeverity = 0
	ErrorSeverityFatal        ErrorSeverity = 1
	ErrorSeverityCorrected    ErrorSeverity = 2
	ErrorSeverityInformational ErrorSeverity = 3
)

func errorSeverityFromUint32(v uint32) ErrorSeverity {
	switch v {
	case 0:
		return ErrorSeverityRecoverable
	case 1:
		return ErrorSeverityFatal
	case 2:
		return ErrorSeverityCorrected
	default:
		return ErrorSeverityInformational
	}
}

// Timestamp is the BCD-encoded record header timestamp (UEFI 2.10
// N.2.1).
type Timestamp struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Precise bool
	Day     uint8
	Month   uint8
	Year    uint8
	Century uint8
}

// TimestampFromCrashLogMetadata converts a domain Time into its BCD
// wire form. Seconds and Precise are always zero: Crash Log
// extraction times carry no sub-minute resolution.
func TimestampFromCrashLogMetadata(t Time) Timestamp {
	return Timestamp{
		Century: binToBCD(uint8(t.Year / 100)),
		Year:    binToBCD(uint8(t.Year % 100)),
		Month:   binToBCD(t.Month),
		Day:     binToBCD(t.Day),
		Hours:   binToBCD(t.Hour),
		Minutes: binToBCD(t.Minute),
	}
}

// TimestampFromSlice parses a Timestamp from its 8-byte wire encoding.
func TimestampFromSlice(s []byte) (Timestamp, bool) {
	if len(s) < 8 {
		return Timestamp{}, false
	}
	return Timestamp{
		Seconds: s[0],
		Minutes: s[1],
		Hours:   s[2],
		Precise: s[3]&1 != 0,
		Day:     s[4],
		Month:   s[5],
		Year:    s[6],
		Century: s[7],
	}, true
}

// ToBytes serializes the Timestamp to its 8-byte wire encoding.
func (t Timestamp) ToBytes() []byte {
	precise := uint8(0)
	if t.Precise {
		precise = 1
	}
	return []byte{t.Seconds, t.Minutes, t.Hours, precise, t.Day, t.Month, t.Year, t.Century}
}

// CperHeader is the UEFI 2.10 N.2.1 Record Header.
type CperHeader struct {
	Revision             Revision
	SectionCount         uint16
	ErrorSeverity        ErrorSeverity
	ValidationBits       uint32
	RecordLength         uint32
	Timestamp            *Timestamp
	PlatformID           *GUID
	PartitionID          *GUID
	CreatorID            GUID
	NotificationType     GUID
	RecordID             uint64
	Flags                uint32
	PersistenceInformation uint64
}

// NewCperHeader returns a CperHeader with the defaults the emitter
// uses: revision {1,1}, creator_id = LCF, severity Informational.
func NewCperHeader() CperHeader {
	return CperHeader{
		Revision:      NewRevision(1, 1),
		ErrorSeverity: ErrorSeverityInformational,
		RecordLength:  RecordHeaderSize,
		CreatorID:     lcfGUID,
	}
}

// CperHeaderFromSlice parses a CperHeader from its 128-byte wire
// encoding. A major revision other than 1 is logged, not rejected.
func CperHeaderFromSlice(s []byte, logger *logging.Helper) (CperHeader, bool) {
	if len(s) < RecordHeaderSize {
		return CperHeader{}, false
	}
	if string(s[0:4]) != "CPER" {
		return CperHeader{}, false
	}
	signatureEnd := binary.LittleEndian.Uint32(s[6:10])
	if signatureEnd != 0xFFFFFFFF {
		return CperHeader{}, false
	}

	revision, ok := RevisionFromSlice(s[4:6])
	if !ok {
		return CperHeader{}, false
	}
	if revision.Major != 1 {
		logger.Warnf("unsupported CPER record header revision: %s", revision)
	}

	validationBits := binary.LittleEndian.Uint32(s[16:20])

	h := CperHeader{
		SectionCount:   binary.LittleEndian.Uint16(s[10:12]),
		ErrorSeverity:  errorSeverityFromUint32(binary.LittleEndian.Uint32(s[12:16])),
		Revision:       revision,
		ValidationBits: validationBits,
		RecordLength:   binary.LittleEndian.Uint32(s[20:24]),
		RecordID:       binary.LittleEndian.Uint64(s[96:104]),
		Flags:          binary.LittleEndian.Uint32(s[104:108]),
		PersistenceInformation: binary.LittleEndian.Uint64(s[108:116]),
	}

	if validationBits&validationTimestamp != 0 {
		if ts, ok := TimestampFromSlice(s[24:32]); ok {
			h.Timestamp = &ts
		}
	}
	if validationBits&validationPlatformID != 0 {
		if g, ok := GUIDFromBytes(s[32:48]); ok {
			h.PlatformID = &g
		}
	}
	if validationBits&validationPartitionID != 0 {
		if g, ok := GUIDFromBytes(s[48:64]); ok {
			h.PartitionID = &g
		}
	}

	creatorID, _ := GUIDFromBytes(s[64:80])
	notificationType, _ := GUIDFromBytes(s[80:96])
	h.CreatorID = creatorID
	h.NotificationType = notificationType

	return h, true
}

// Normalize recomputes ValidationBits from the presence of the
// optional fields.
func (h *CperHeader) Normalize() {
	h.ValidationBits = 0
	if h.Timestamp != nil {
		h.ValidationBits |= validationTimestamp
	}
	if h.PlatformID != nil {
		h.ValidationBits |= validationPlatformID
	}
	if h.PartitionID != nil {
		h.ValidationBits |= validationPartitionID
	}
}

// ToBytes serializes the CperHeader to its 128-byte wire encoding.
func (h *CperHeader) ToBytes() []byte {
	b := make([]byte, 0, RecordHeaderSize)
	b = append(b, "CPER"...)
	b = append(b, h.Revision.ToBytes()...)
	b = append(b, 0xFF, 0xFF, 0xFF, 0xFF)

	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], h.SectionCount)
	b = append(b, u16[:]...)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(h.ErrorSeverity))
	b = append(b, u32[:]...)

	binary.LittleEndian.PutUint32(u32[:], h.ValidationBits)
	b = append(b, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], h.RecordLength)
	b = append(b, u32[:]...)

	if h.Timestamp != nil {
		b = append(b, h.Timestamp.ToBytes()...)
	} else {
		b = append(b, make([]byte, 8)...)
	}
	if h.PlatformID != nil {
		b = append(b, h.PlatformID.ToBytes()...)
	} else {
		b = append(b, make([]byte, GUIDSize)...)
	}
	if h.PartitionID != nil {
		b = append(b, h.PartitionID.ToBytes()...)
	} else {
		b = append(b, make([]byte, GUIDSize)...)
	}

	b = append(b, h.CreatorID.ToBytes()...)
	b = append(b, h.NotificationType.ToBytes()...)

	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], h.RecordID)
	b = append(b, u64[:]...)
	binary.LittleEndian.PutUint32(u32[:], h.Flags)
	b = append(b, u32[:]...)
	binary.LittleEndian.PutUint64(u64[:], h.PersistenceInformation)
	b = append(b, u64[:]...)

	b = append(b, make([]byte, 12)...)

	return b
}
