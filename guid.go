// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// GUID is a 128-bit value consisting of one group of 8 hexadecimal
// digits, followed by three groups of 4 hexadecimal digits each,
// followed by one group of 12 hexadecimal digits. Unlike a plain
// RFC 4122 UUID, the first three fields are stored little-endian on
// the wire (the Microsoft mixed-endian GUID layout used throughout
// UEFI and PE/PDB structures).
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// GUIDSize is the wire size of a GUID in bytes.
const GUIDSize = 16

// GUIDFromBytes parses a GUID from its 16-byte wire encoding.
func GUIDFromBytes(s []byte) (GUID, bool) {
	if len(s) < GUIDSize {
		return GUID{}, false
	}
	var g GUID
	g.Data1 = binary.LittleEndian.Uint32(s[0:4])
	g.Data2 = binary.LittleEndian.Uint16(s[4:6])
	g.Data3 = binary.LittleEndian.Uint16(s[6:8])
	copy(g.Data4[:], s[8:16])
	return g, true
}

// ToBytes serializes the GUID to its 16-byte wire encoding.
func (g GUID) ToBytes() []byte {
	b := make([]byte, GUIDSize)
	binary.LittleEndian.PutUint32(b[0:4], g.Data1)
	binary.LittleEndian.PutUint16(b[4:6], g.Data2)
	binary.LittleEndian.PutUint16(b[6:8], g.Data3)
	copy(b[8:16], g.Data4[:])
	return b
}

// String returns the canonical lowercase GUID string, e.g.
// "81212a96-09ed-4996-9471-8d729c8e69ed".
func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%x",
		g.Data1, g.Data2, g.Data3, g.Data4[0], g.Data4[1], g.Data4[2:])
}

// MarshalJSON renders the GUID as its canonical string form, for CLI
// JSON dumps.
func (g GUID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(g.String())), nil
}

// mustGUID parses a canonical GUID string (with or without surrounding
// braces) into its mixed-endian wire representation. It panics on
// malformed input, which is only ever a package-level literal here.
func mustGUID(s string) GUID {
	s = strings.Trim(s, "{}")
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		panic("crashlog: malformed GUID literal: " + s)
	}

	data1, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		panic(err)
	}
	data2, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		panic(err)
	}
	data3, err := strconv.ParseUint(parts[2], 16, 16)
	if err != nil {
		panic(err)
	}

	tail := parts[3] + parts[4]
	if len(tail) != 16 {
		panic("crashlog: malformed GUID literal: " + s)
	}

	var data4 [8]byte
	for i := 0; i < 8; i++ {
		b, err := strconv.ParseUint(tail[i*2:i*2+2], 16, 8)
		if err != nil {
			panic(err)
		}
		data4[i] = byte(b)
	}

	return GUID{
		Data1: uint32(data1),
		Data2: uint16(data2),
		Data3: uint16(data3),
		Data4: data4,
	}
}
