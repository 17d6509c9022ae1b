// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

// FWErrorRecordGUID identifies a CPER section body as a Firmware
// Error Record Reference.
var FWErrorRecordGUID = mustGUID("81212a96-09ed-4996-9471-8d729c8e69ed")

// CperSectionBody is one of the CPER section bodies defined in UEFI
// 2.10 N.2: a known FirmwareErrorRecord, or an Unknown body that
// round-trips unchanged.
type CperSectionBody struct {
	FER     *FirmwareErrorRecord
	Unknown *UnknownSectionBody
}

// UnknownSectionBody holds a section body whose GUID this package
// doesn't interpret; its bytes are carried through unchanged.
type UnknownSectionBody struct {
	GUID GUID
	Data []byte
}

// CperSectionBodyFromSlice parses a section body given its declared
// section_type GUID.
func CperSectionBodyFromSlice(guid GUID, s []byte) (CperSectionBody, bool) {
	if guid == FWErrorRecordGUID {
		fer, ok := FirmwareErrorRecordFromSlice(s)
		if !ok {
			return CperSectionBody{}, false
		}
		return CperSectionBody{FER: &fer}, true
	}

	data := make([]byte, len(s))
	copy(data, s)
	return CperSectionBody{Unknown: &UnknownSectionBody{GUID: guid, Data: data}}, true
}

// GUID returns the section_type GUID associated with this body.
func (b CperSectionBody) GUID() GUID {
	if b.FER != nil {
		return FWErrorRecordGUID
	}
	return b.Unknown.GUID
}

// Len returns the expected wire size of the section body.
func (b CperSectionBody) Len() int {
	if b.FER != nil {
		return b.FER.Header.Len() + len(b.FER.Payload)
	}
	return len(b.Unknown.Data)
}

// ToBytes serializes the section body.
func (b CperSectionBody) ToBytes() []byte {
	if b.FER != nil {
		return b.FER.ToBytes()
	}
	return b.Unknown.Data
}

// CperSection is a CPER section's descriptor and body together.
type CperSection struct {
	Descriptor CperSectionDescriptor
	Body       CperSectionBody
}

// CperSectionFromCrashLogRegion wraps a Crash Log region as a CPER
// section carrying a revision-2 Firmware Error Record.
func CperSectionFromCrashLogRegion(region Region) CperSection {
	fer := FirmwareErrorRecordFromCrashLogRegion(region)
	section := CperSectionFromBody(CperSectionBody{FER: &fer})
	section.Descriptor.SectionSeverity = SectionSeverityFatal
	return section
}

// CperSectionFromBody builds a section from a body, populating the
// descriptor's section_type/section_length from it.
func CperSectionFromBody(body CperSectionBody) CperSection {
	descriptor := NewCperSectionDescriptor()
	descriptor.SectionType = body.GUID()
	descriptor.SectionLength = uint32(body.Len())
	return CperSection{Descriptor: descriptor, Body: body}
}

// BodyBytes serializes the section body, zero-padded to the
// descriptor's declared section_length.
func (s CperSection) BodyBytes() []byte {
	bytes := s.Body.ToBytes()
	if len(bytes) < int(s.Descriptor.SectionLength) {
		padded := make([]byte, s.Descriptor.SectionLength)
		copy(padded, bytes)
		return padded
	}
	return bytes[:s.Descriptor.SectionLength]
}
