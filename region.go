// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "github.com/intel/crashlog-go/internal/logging"

// Region is an ordered sequence of back-to-back Crash Log records,
// terminated by a Version sentinel word or the end of the buffer.
type Region struct {
	Records []Record
}

// RegionFromSlice walks data, decoding one Header/Record pair at a
// time until HeaderFromSlice reports a terminator or the remaining
// buffer is too small for another record. logger may be nil.
func RegionFromSlice(data []byte, logger *logging.Helper) (Region, error) {
	var region Region
	offset := 0

	for offset < len(data) {
		header, err := HeaderFromSlice(data[offset:])
		if err != nil {
			return Region{}, err
		}
		if header == nil {
			break
		}

		recordSize := header.RecordSize()
		if offset+recordSize > len(data) {
			logger.Warnf("record at offset %d declares size %d, only %d bytes remain: stopping region scan", offset, recordSize, len(data)-offset)
			break
		}

		region.Records = append(region.Records, Record{
			Header: *header,
			Data:   data[offset : offset+recordSize],
		})
		offset += recordSize
	}

	return region, nil
}

// ToBytes concatenates the raw bytes of every record, without
// appending a terminator.
func (r Region) ToBytes() []byte {
	var out []byte
	for _, record := range r.Records {
		out = append(out, record.Data...)
	}
	return out
}
