// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "fmt"

// Time is the extraction timestamp carried in Metadata.
type Time struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
}

func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02d-%02d-%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// Metadata is extraction-time information carried alongside a
// CrashLog's regions: the computer it was pulled from, when, and any
// CPER sections that weren't Crash Log FER payloads.
type Metadata struct {
	Computer          *string
	Time              *Time
	ExtraCperSections []CperSectionBody
}

// String implements the "<computer>-<time>" / "<computer>" / "<time>"
// / "unnamed" display rule.
func (m Metadata) String() string {
	switch {
	case m.Computer != nil && m.Time != nil:
		return fmt.Sprintf("%s-%s", *m.Computer, m.Time.String())
	case m.Time != nil:
		return m.Time.String()
	case m.Computer != nil:
		return *m.Computer
	default:
		return "unnamed"
	}
}
