// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/binary"
	"fmt"
)

// Type0 and Type1 headers carry no fields beyond Version/RecordSize.
type Type0 struct{}
type Type1 struct{}

// Type2 is the header shape used by agents that report only a
// timestamp, an agent version and a reason code.
type Type2 struct {
	Timestamp     uint64
	AgentVersion  uint32
	Reason        uint32
}

// Type3 adds a packed completion-status word to Type2.
type Type3 struct {
	Timestamp           uint64
	AgentVersion        uint32
	Reason              uint32
	CompletionStatus    uint32
	CollectionComplete  bool
}

// Type4 replaces the completion status with a raw whoami/misc pair,
// used by core records to encode their module/core/thread position.
type Type4 struct {
	Timestamp    uint64
	AgentVersion uint32
	Reason       uint32
	Whoami       uint32
	Misc         uint32
}

// Type5 is Type3 plus an independent error-status word.
type Type5 struct {
	Timestamp          uint64
	AgentVersion       uint32
	Reason             uint32
	CompletionStatus   uint32
	CollectionComplete bool
	ErrorStatus        uint32
}

// Type6 is the multi-die header shape: it carries an explicit
// socket/die pair and a variable-length completion-status array.
type Type6 struct {
	Timestamp          uint64
	AgentVersion       uint32
	Reason             uint32
	DieID              uint8
	SocketID           uint8
	CompletionStatusSize uint16
	CompletionStatus   []uint32
	CollectionComplete bool
}

// Type0LegacyServer is the legacy, larger Type0 layout emitted by
// server-segment products (Errata.Type0LegacyServer).
type Type0LegacyServer struct {
	Timestamp          uint64
	AgentVersion        uint32
	Reason              uint32
	DieID               uint8
	SocketID            uint8
	CompletionStatus    uint32
	CollectionComplete  bool
}

func headerTypeFromSlice(headerType uint16, s []byte) (interface{}, error) {
	switch headerType {
	case 0:
		return Type0{}, nil
	case 1:
		return Type1{}, nil
	case 2:
		return type2FromSlice(s)
	case 3:
		return type3FromSlice(s)
	case 4:
		return type4FromSlice(s)
	case 5:
		return type5FromSlice(s)
	case 6:
		return type6FromSlice(s)
	default:
		return nil, &InvalidHeaderTypeError{HeaderType: headerType}
	}
}

func type2FromSlice(s []byte) (interface{}, error) {
	if len(s) < 24 {
		return nil, ErrInvalidHeader
	}
	return Type2{
		Timestamp:    binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion: binary.LittleEndian.Uint32(s[16:20]),
		Reason:       binary.LittleEndian.Uint32(s[20:24]),
	}, nil
}

func type3FromSlice(s []byte) (interface{}, error) {
	if len(s) < 28 {
		return nil, ErrInvalidHeader
	}
	csData := binary.LittleEndian.Uint32(s[24:28])
	return Type3{
		Timestamp:          binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion:       binary.LittleEndian.Uint32(s[16:20]),
		Reason:             binary.LittleEndian.Uint32(s[20:24]),
		CompletionStatus:   csData & 0x7FFFFFFF,
		CollectionComplete: csData>>31 != 0,
	}, nil
}

func type4FromSlice(s []byte) (interface{}, error) {
	if len(s) < 32 {
		return nil, ErrInvalidHeader
	}
	return Type4{
		Timestamp:    binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion: binary.LittleEndian.Uint32(s[16:20]),
		Reason:       binary.LittleEndian.Uint32(s[20:24]),
		Whoami:       binary.LittleEndian.Uint32(s[24:28]),
		Misc:         binary.LittleEndian.Uint32(s[28:32]),
	}, nil
}

func type5FromSlice(s []byte) (interface{}, error) {
	if len(s) < 32 {
		return nil, ErrInvalidHeader
	}
	csData := binary.LittleEndian.Uint32(s[24:28])
	return Type5{
		Timestamp:          binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion:       binary.LittleEndian.Uint32(s[16:20]),
		Reason:             binary.LittleEndian.Uint32(s[20:24]),
		CompletionStatus:   csData & 0x7FFFFFFF,
		CollectionComplete: csData>>31 != 0,
		ErrorStatus:        binary.LittleEndian.Uint32(s[28:32]),
	}, nil
}

func type6FromSlice(s []byte) (interface{}, error) {
	if len(s) < 28 {
		return nil, ErrInvalidHeader
	}
	dieSktInfo := s[24:28]
	dieID := dieSktInfo[0]
	socketID := dieSktInfo[1]
	csSize := binary.LittleEndian.Uint16(dieSktInfo[2:4]) & 0x7F
	collectionComplete := dieSktInfo[3]&0x80 != 0

	if len(s) < 28+int(csSize)*4 {
		return nil, ErrInvalidHeader
	}
	cs := make([]uint32, csSize)
	for i := range cs {
		index := 28 + i*4
		cs[i] = binary.LittleEndian.Uint32(s[index : index+4])
	}

	return Type6{
		Timestamp:            binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion:         binary.LittleEndian.Uint32(s[16:20]),
		Reason:               binary.LittleEndian.Uint32(s[20:24]),
		DieID:                dieID,
		SocketID:             socketID,
		CompletionStatusSize: csSize,
		CompletionStatus:     cs,
		CollectionComplete:   collectionComplete,
	}, nil
}

func type0LegacyServerFromSlice(s []byte) (interface{}, error) {
	if len(s) < 32 {
		return nil, ErrInvalidHeader
	}
	csData := binary.LittleEndian.Uint32(s[28:32])

	revision := s[0]
	dieIdx := revision & 0x3
	var dieID uint8
	if (revision>>7)&1 == 1 {
		dieID = dieIdx + 9
	} else {
		dieID = dieIdx << 2
	}

	return Type0LegacyServer{
		Timestamp:          binary.LittleEndian.Uint64(s[8:16]),
		AgentVersion:       binary.LittleEndian.Uint32(s[20:24]),
		Reason:             binary.LittleEndian.Uint32(s[4:8]),
		DieID:              dieID,
		SocketID:           s[24],
		CompletionStatus:   csData & 0x7FFFFFFF,
		CollectionComplete: csData>>31 != 0,
	}, nil
}

// Header is the decoded form of a Crash Log record header. HeaderType
// holds one of Type0 .. Type6 or Type0LegacyServer, mirroring the
// interface{}-as-sum-type idiom used throughout this package.
type Header struct {
	Version    Version
	Size       RecordSize
	HeaderType interface{}
}

// HeaderFromSlice decodes a record header from the start of data. It
// returns (nil, nil) when the leading Version word is a termination
// sentinel.
func HeaderFromSlice(data []byte) (*Header, error) {
	version, ok := VersionFromSlice(data)
	if !ok {
		return nil, nil
	}
	errata := ComputeErrata(version)

	var size RecordSize
	var headerType interface{}
	var err error

	if errata.Type0LegacyServer {
		size, ok = RecordSizeFromSliceType0LegacyServer(data)
		if !ok {
			return nil, ErrInvalidHeader
		}
		headerType, err = type0LegacyServerFromSlice(data)
	} else {
		size, ok = RecordSizeFromSlice(data)
		if !ok {
			return nil, ErrInvalidHeader
		}
		headerType, err = headerTypeFromSlice(version.HeaderType, data)
	}
	if err != nil {
		return nil, err
	}

	return &Header{Version: version, Size: size, HeaderType: headerType}, nil
}

func (h *Header) recordSizeGranularity() int {
	if ComputeErrata(h.Version).CoreRecordSizeBytes {
		return 1
	}
	return 4
}

// RecordSize returns the size of the record in bytes.
func (h *Header) RecordSize() int {
	return (int(h.Size.RecordSize) + int(h.Size.ExtendedRecordSize)) * h.recordSizeGranularity()
}

// ExtendedRecordOffset returns the byte offset of the extended record
// section, if the header declares one.
func (h *Header) ExtendedRecordOffset() (int, bool) {
	if h.Size.ExtendedRecordSize == 0 {
		return 0, false
	}
	return int(h.Size.RecordSize) * h.recordSizeGranularity(), true
}

// HeaderSize returns the fixed size of the header variant in bytes.
func (h *Header) HeaderSize() int {
	switch ht := h.HeaderType.(type) {
	case Type0, Type1:
		return 8
	case Type2:
		return 24
	case Type3:
		return 28
	case Type4:
		return 32
	case Type5:
		return 32
	case Type6:
		return 28 + len(ht.CompletionStatus)*4
	case Type0LegacyServer:
		return 32
	default:
		return 8
	}
}

// SocketID returns the socket that generated the record; only Type6
// and Type0LegacyServer carry one, others report 0.
func (h *Header) SocketID() uint8 {
	switch ht := h.HeaderType.(type) {
	case Type6:
		return ht.SocketID
	case Type0LegacyServer:
		return ht.SocketID
	default:
		return 0
	}
}

// DieID returns the die that generated the record, if the header
// shape carries one.
func (h *Header) DieID() (uint8, bool) {
	switch ht := h.HeaderType.(type) {
	case Type6:
		return ht.DieID, true
	case Type0LegacyServer:
		return ht.DieID, true
	default:
		return 0, false
	}
}

// RecordType maps the header's record_type field to its symbolic
// name.
func (h *Header) RecordType() (string, error) {
	return h.Version.RecordTypeName()
}

// getRootPath returns the plain "processors.cpu<socket>.die<id>" root
// for header shapes that carry an explicit die id, without consulting
// a collateral tree.
func (h *Header) getRootPath() (string, bool) {
	dieID, ok := h.DieID()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("processors.cpu%d.die%d", h.SocketID(), dieID), true
}

// String renders a one-line summary of the header, e.g.
// "MCA - (product_id=0x7a, record_type=0x3e, revision=0x2a, die_id=1, socket_id=0)".
func (h *Header) String() string {
	recordType, err := h.RecordType()
	if err != nil {
		recordType = "RECORD"
	}

	version := fmt.Sprintf("product_id=0x%x, record_type=0x%x, revision=0x%x",
		h.Version.ProductID, h.Version.RecordType, h.Version.Revision)

	details := ".."
	if dieID, ok := h.DieID(); ok {
		details = fmt.Sprintf("die_id=%d, socket_id=%d", dieID, h.SocketID())
	}

	return fmt.Sprintf("%s - (%s, %s)", recordType, version, details)
}
