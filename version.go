// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "fmt"

// Record type constants. These are the only values the low six bits
// of a Version's record_type field may validly hold.
const (
	RecordTypePMC          uint8 = 0x1
	RecordTypePMCFWTrace   uint8 = 0x2
	RecordTypePunit        uint8 = 0x3
	RecordTypePCORE        uint8 = 0x4
	RecordTypeECORE        uint8 = 0x6
	RecordTypeUncore       uint8 = 0x8
	RecordTypePMCTrace     uint8 = 0x11
	RecordTypeTCSS         uint8 = 0x16
	RecordTypePMCRst       uint8 = 0x17
	RecordTypePCode        uint8 = 0x19
	RecordTypeCrashlogAgnt uint8 = 0x1C
	RecordTypeBox          uint8 = 0x3D
	RecordTypeMCA          uint8 = 0x3E
)

var recordTypeNames = map[uint8]string{
	RecordTypePMC:          "PMC",
	RecordTypePMCFWTrace:   "PMC_FW_Trace",
	RecordTypePunit:        "Punit",
	RecordTypePCORE:        "PCORE",
	RecordTypeECORE:        "ECORE",
	RecordTypeUncore:       "UNCORE",
	RecordTypePMCTrace:     "PMC_TRACE",
	RecordTypeTCSS:         "TCSS",
	RecordTypePMCRst:       "PMC_RST",
	RecordTypePCode:        "PCODE",
	RecordTypeCrashlogAgnt: "CRASHLOG_AGENT",
	RecordTypeBox:          "BOX",
	RecordTypeMCA:          "MCA",
}

// The two Version-word values that mark the end of a Region instead
// of introducing another record.
const (
	versionTerminator0        uint32 = 0x00000000
	versionTerminatorDeadbeef uint32 = 0xDEADBEEF
)

// Version is the 32-bit packed header word present at the start of
// every Crash Log record.
type Version struct {
	Revision   uint32
	HeaderType uint16
	ProductID  uint32
	RecordType uint8
	Consumed   bool
	CLDIC      bool
}

// VersionFromSlice decodes the leading 4-byte Version word. It returns
// (Version{}, false) when the word is a termination sentinel.
func VersionFromSlice(s []byte) (Version, bool) {
	if len(s) < 4 {
		return Version{}, false
	}
	raw := uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
	if raw == versionTerminator0 || raw == versionTerminatorDeadbeef {
		return Version{}, false
	}

	return Version{
		Revision:   raw & 0xFF,
		HeaderType: uint16((raw >> 8) & 0xF),
		ProductID:  (raw >> 12) & 0xFFF,
		RecordType: uint8((raw >> 24) & 0x3F),
		CLDIC:      (raw>>30)&1 == 1,
		Consumed:   (raw>>31)&1 == 1,
	}, true
}

// AsUint32 packs the Version back into its wire representation.
func (v Version) AsUint32() uint32 {
	var raw uint32
	if v.Consumed {
		raw |= 1 << 31
	}
	if v.CLDIC {
		raw |= 1 << 30
	}
	raw |= uint32(v.RecordType) << 24
	raw |= v.ProductID << 12
	raw |= uint32(v.HeaderType) << 8
	raw |= v.Revision & 0xFF
	return raw
}

// RecordTypeName returns the symbolic name of the record type, or
// InvalidRecordTypeError if it is not among the known set.
func (v Version) RecordTypeName() (string, error) {
	name, ok := recordTypeNames[v.RecordType]
	if !ok {
		return "", &InvalidRecordTypeError{RecordType: v.RecordType}
	}
	return name, nil
}

func (v Version) String() string {
	name, err := v.RecordTypeName()
	if err != nil {
		name = "UNKNOWN"
	}
	return fmt.Sprintf("%s revision %d", name, v.Revision)
}

// Errata captures the small set of per-product quirks that Header and
// Record decoding need to account for. It is derived purely from a
// Version's header_type/product_id/record_type fields.
type Errata struct {
	// Type0LegacyServer is set for Intel server products that emit
	// Type0 headers using a legacy, larger layout.
	Type0LegacyServer bool
	// Type0LegacyServerBox additionally marks the legacy-server BOX
	// record type, which skips the normal core-record decode routing.
	Type0LegacyServerBox bool
	// CoreRecordSizeBytes is set when record-size fields for this
	// record are expressed in bytes rather than 32-bit dwords.
	CoreRecordSizeBytes bool
}

// ComputeErrata derives the Errata matrix from a Version.
func ComputeErrata(v Version) Errata {
	type0LegacyServer := v.HeaderType == 0 && v.ProductID == 0x2F
	type0LegacyServerBox := type0LegacyServer && v.RecordType == 0x4
	coreRecordSizeBytes := !type0LegacyServer &&
		((v.RecordType == RecordTypeECORE && v.ProductID < 0x96) ||
			(v.RecordType == RecordTypePCORE && v.ProductID < 0x71))

	return Errata{
		Type0LegacyServer:    type0LegacyServer,
		Type0LegacyServerBox: type0LegacyServerBox,
		CoreRecordSizeBytes:  coreRecordSizeBytes,
	}
}

// RecordSize carries the two record-size fields present at header
// offset 4..8 (or 16..18 for the legacy-server layout).
type RecordSize struct {
	RecordSize         uint16
	ExtendedRecordSize uint16
}

// RecordSizeFromSlice parses a RecordSize from header offsets 4..8.
func RecordSizeFromSlice(s []byte) (RecordSize, bool) {
	if len(s) < 8 {
		return RecordSize{}, false
	}
	return RecordSize{
		RecordSize:         uint16(s[4]) | uint16(s[5])<<8,
		ExtendedRecordSize: uint16(s[6]) | uint16(s[7])<<8,
	}, true
}

// RecordSizeFromSliceType0LegacyServer parses a RecordSize from header
// offset 16..18 for the legacy-server Type0 layout. The extended
// record size is always zero for this layout.
func RecordSizeFromSliceType0LegacyServer(s []byte) (RecordSize, bool) {
	if len(s) < 18 {
		return RecordSize{}, false
	}
	return RecordSize{RecordSize: uint16(s[16]) | uint16(s[17])<<8}, true
}
