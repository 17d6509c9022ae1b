// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "encoding/binary"

// Context carries information supplied to a Record from outside its
// own bytes: the header of an enclosing parent record, and an
// explicit socket/die pair used to route decoded output when the
// header itself doesn't carry one (Type0..Type5 records nested inside
// a CPER section whose placement is known only to the caller).
type Context struct {
	ParentHeader *Header
	SocketID     *uint8
	DieID        *uint8
}

// Record is a single Crash Log datum: a typed Header plus its raw
// bytes, including the header itself.
type Record struct {
	Header  Header
	Data    []byte
	Context Context
}

// Payload returns the record's data excluding the header and, if
// CLDIC is set, the trailing 4-byte checksum.
func (r *Record) Payload() []byte {
	begin := r.Header.HeaderSize()
	end := len(r.Data)
	if r.Header.Version.CLDIC {
		end -= 4
	}
	if begin > end || begin > len(r.Data) {
		return nil
	}
	return r.Data[begin:end]
}

// Checksum reports whether the CLDIC checksum is valid. It returns
// nil when CLDIC is not set.
func (r *Record) Checksum() *bool {
	if !r.Header.Version.CLDIC {
		return nil
	}

	var sum uint32
	for i := 0; i < len(r.Data); i += 4 {
		var dword [4]byte
		copy(dword[:], r.Data[i:min(i+4, len(r.Data))])
		sum += binary.LittleEndian.Uint32(dword[:])
	}

	ok := sum == 0
	return &ok
}

// ReadField reads a size_bits-wide bit field starting at offset_bits
// into the record's raw data. Bit 0 is the least significant bit of
// byte 0; fields are assembled little-endian across byte boundaries,
// 8 bits at a time. It returns false if size exceeds 64 bits or the
// span reaches past the buffer.
func (r *Record) ReadField(offsetBits, sizeBits int) (uint64, bool) {
	if sizeBits > 64 {
		return 0, false
	}

	var value uint64
	bit := 0
	for bit < sizeBits {
		const chunkSize = 8
		chunk := (offsetBits + bit) / chunkSize
		if chunk >= len(r.Data) {
			return 0, false
		}

		bitOffset := (offsetBits + bit) % chunkSize
		width := chunkSize - bitOffset
		if remaining := sizeBits - bit; remaining < width {
			width = remaining
		}
		mask := uint64(1)<<uint(width) - 1

		value |= ((uint64(r.Data[chunk]) >> uint(bitOffset)) & mask) << uint(bit)
		bit += width
	}

	return value, true
}
