// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "fmt"

// Revision is a major/minor version pair used by several CPER
// structures. It is serialized little-endian as [minor, major].
type Revision struct {
	Major uint8
	Minor uint8
}

// NewRevision builds a Revision from its components.
func NewRevision(major, minor uint8) Revision {
	return Revision{Major: major, Minor: minor}
}

// RevisionFromSlice parses a Revision from its 2-byte wire encoding.
func RevisionFromSlice(s []byte) (Revision, bool) {
	if len(s) < 2 {
		return Revision{}, false
	}
	return Revision{Minor: s[0], Major: s[1]}, true
}

// ToBytes serializes the Revision to its 2-byte wire encoding.
func (r Revision) ToBytes() []byte {
	return []byte{r.Minor, r.Major}
}

func (r Revision) String() string {
	return fmt.Sprintf("%d.%d", r.Major, r.Minor)
}
