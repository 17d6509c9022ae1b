// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/binary"

	"github.com/intel/crashlog-go/internal/logging"
)

// SectionDescriptorSize is the fixed wire size of a
// CperSectionDescriptor.
const SectionDescriptorSize = 72

const (
	validationFRUID     uint8 = 1
	validationFRUString uint8 = 2
)

// CPER section descriptor flag bits.
const (
	SectionFlagPrimary                 uint32 = 1 << 0
	SectionFlagContainmentWarning      uint32 = 1 << 1
	SectionFlagReset                   uint32 = 1 << 2
	SectionFlagErrorThresholdExceeded  uint32 = 1 << 3
	SectionFlagResourceNotAccessible   uint32 = 1 << 4
	SectionFlagLatentError             uint32 = 1 << 5
	SectionFlagPropagated              uint32 = 1 << 6
	SectionFlagOverflow                uint32 = 1 << 7
)

// SectionSeverity is the severity carried in a CperSectionDescriptor.
type SectionSeverity uint32

const (
	SectionSeverityRecoverable   SectionSeverity = 0
	SectionSeverityFatal         SectionSeverity = 1
	SectionSeverityCorrected     SectionSeverity = 2
	SectionSeverityInformational SectionSeverity = 3
)

func sectionSeverityFromUint32(v uint32) SectionSeverity {
	switch v {
	case 0:
		return SectionSeverityRecoverable
	case 1:
		return SectionSeverityFatal
	case 2:
		return SectionSeverityCorrected
	default:
		return SectionSeverityInformational
	}
}

// CperSectionDescriptor is the UEFI 2.10 N.2.2 Section Descriptor.
type CperSectionDescriptor struct {
	SectionOffset   uint32
	SectionLength   uint32
	Revision        Revision
	ValidationBits  uint8
	Flags           uint32
	SectionType     GUID
	FRUID           *GUID
	SectionSeverity SectionSeverity
	FRUText         *[20]byte
}

// NewCperSectionDescriptor returns a CperSectionDescriptor with the
// emitter defaults: revision {1,0}, severity Informational.
func NewCperSectionDescriptor() CperSectionDescriptor {
	return CperSectionDescriptor{
		Revision:        NewRevision(1, 0),
		SectionSeverity: SectionSeverityInformational,
	}
}

// CperSectionDescriptorFromSlice parses a descriptor from its 72-byte
// wire encoding.
func CperSectionDescriptorFromSlice(s []byte, logger *logging.Helper) (CperSectionDescriptor, bool) {
	if len(s) < SectionDescriptorSize {
		return CperSectionDescriptor{}, false
	}

	revision, ok := RevisionFromSlice(s[8:10])
	if !ok {
		return CperSectionDescriptor{}, false
	}
	if revision.Major != 1 {
		logger.Warnf("unsupported CPER section descriptor revision: %s", revision)
	}

	validationBits := s[10]
	sectionType, ok := GUIDFromBytes(s[16:32])
	if !ok {
		return CperSectionDescriptor{}, false
	}

	d := CperSectionDescriptor{
		SectionOffset:   binary.LittleEndian.Uint32(s[0:4]),
		SectionLength:   binary.LittleEndian.Uint32(s[4:8]),
		Revision:        revision,
		ValidationBits:  validationBits,
		Flags:           binary.LittleEndian.Uint32(s[12:16]),
		SectionType:     sectionType,
		SectionSeverity: sectionSeverityFromUint32(binary.LittleEndian.Uint32(s[48:52])),
	}

	if validationBits&validationFRUID != 0 {
		if g, ok := GUIDFromBytes(s[32:48]); ok {
			d.FRUID = &g
		}
	}
	if validationBits&validationFRUString != 0 {
		var text [20]byte
		copy(text[:], s[52:72])
		d.FRUText = &text
	}

	return d, true
}

// Normalize recomputes ValidationBits from the presence of the
// optional fields.
func (d *CperSectionDescriptor) Normalize() {
	d.ValidationBits = 0
	if d.FRUID != nil {
		d.ValidationBits |= validationFRUID
	}
	if d.FRUText != nil {
		d.ValidationBits |= validationFRUString
	}
}

// ToBytes serializes the descriptor to its 72-byte wire encoding.
func (d *CperSectionDescriptor) ToBytes() []byte {
	b := make([]byte, 0, SectionDescriptorSize)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], d.SectionOffset)
	b = append(b, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], d.SectionLength)
	b = append(b, u32[:]...)
	b = append(b, d.Revision.ToBytes()...)

	b = append(b, d.ValidationBits, 0)
	binary.LittleEndian.PutUint32(u32[:], d.Flags)
	b = append(b, u32[:]...)
	b = append(b, d.SectionType.ToBytes()...)

	if d.FRUID != nil {
		b = append(b, d.FRUID.ToBytes()...)
	} else {
		b = append(b, make([]byte, GUIDSize)...)
	}

	binary.LittleEndian.PutUint32(u32[:], uint32(d.SectionSeverity))
	b = append(b, u32[:]...)

	if d.FRUText != nil {
		b = append(b, d.FRUText[:]...)
	} else {
		b = append(b, make([]byte, 20)...)
	}

	return b
}
