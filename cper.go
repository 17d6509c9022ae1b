// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "github.com/intel/crashlog-go/internal/logging"

// Cper is a complete UEFI Common Platform Error Record: one record
// header followed by a section descriptor and body for each section.
type Cper struct {
	RecordHeader CperHeader
	Sections     []CperSection
}

// CperFromSlice parses a complete CPER buffer: the 128-byte record
// header, SectionCount section descriptors, then each descriptor's
// section body at its declared SectionOffset.
func CperFromSlice(s []byte, logger *logging.Helper) (Cper, error) {
	header, ok := CperHeaderFromSlice(s, logger)
	if !ok {
		return Cper{}, ErrInvalidCperSignature
	}

	cursor := RecordHeaderSize
	descriptors := make([]CperSectionDescriptor, 0, header.SectionCount)
	for i := uint16(0); i < header.SectionCount; i++ {
		if cursor+SectionDescriptorSize > len(s) {
			return Cper{}, ErrOutsideBoundary
		}
		d, ok := CperSectionDescriptorFromSlice(s[cursor:cursor+SectionDescriptorSize], logger)
		if !ok {
			return Cper{}, ErrInvalidHeader
		}
		descriptors = append(descriptors, d)
		cursor += SectionDescriptorSize
	}

	sections := make([]CperSection, 0, len(descriptors))
	for _, d := range descriptors {
		start := int(d.SectionOffset)
		end := start + int(d.SectionLength)
		if start < 0 || end > len(s) || end < start {
			return Cper{}, ErrOutsideBoundary
		}
		body, ok := CperSectionBodyFromSlice(d.SectionType, s[start:end])
		if !ok {
			return Cper{}, ErrInvalidHeader
		}
		sections = append(sections, CperSection{Descriptor: d, Body: body})
	}

	return Cper{RecordHeader: header, Sections: sections}, nil
}

// CperFromRawCrashLog wraps a CrashLog's regions and extra sections
// into a fresh Cper, with a header built from NewCperHeader.
func CperFromRawCrashLog(cl CrashLog) Cper {
	cper := Cper{RecordHeader: NewCperHeader()}
	cper.RecordHeader.NotificationType = NotificationTypeBoot
	cper.RecordHeader.ErrorSeverity = ErrorSeverityFatal

	if cl.Metadata.Time != nil {
		ts := TimestampFromCrashLogMetadata(*cl.Metadata.Time)
		cper.RecordHeader.Timestamp = &ts
	}

	for _, region := range cl.Regions {
		cper.AppendSection(CperSectionFromCrashLogRegion(region))
	}
	for _, body := range cl.Metadata.ExtraCperSections {
		cper.AppendSection(CperSectionFromBody(body))
	}

	cper.normalize()
	return cper
}

// AppendSection adds a section to the record.
func (c *Cper) AppendSection(section CperSection) {
	c.Sections = append(c.Sections, section)
}

// normalize recomputes SectionCount, every descriptor's SectionOffset,
// and RecordLength from the current Sections slice.
func (c *Cper) normalize() {
	c.RecordHeader.SectionCount = uint16(len(c.Sections))
	c.RecordHeader.Normalize()

	cursor := RecordHeaderSize + SectionDescriptorSize*len(c.Sections)
	for i := range c.Sections {
		c.Sections[i].Descriptor.Normalize()
		c.Sections[i].Descriptor.SectionOffset = uint32(cursor)
		cursor += int(c.Sections[i].Descriptor.SectionLength)
	}
	c.RecordHeader.RecordLength = uint32(cursor)
}

// ToBytes serializes the complete CPER record: header, descriptors,
// then section bodies, in that order. It normalizes offsets and
// lengths first.
func (c *Cper) ToBytes() []byte {
	c.normalize()

	out := make([]byte, 0, c.RecordHeader.RecordLength)
	out = append(out, c.RecordHeader.ToBytes()...)
	for i := range c.Sections {
		out = append(out, c.Sections[i].Descriptor.ToBytes()...)
	}
	for i := range c.Sections {
		out = append(out, c.Sections[i].BodyBytes()...)
	}
	return out
}
