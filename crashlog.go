// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "github.com/intel/crashlog-go/internal/logging"

// CrashLog is the in-memory representation of one extraction: the
// ordered Crash Log regions it carries, and the metadata describing
// where and when it was pulled.
type CrashLog struct {
	Regions  []Region
	Metadata Metadata
}

// Options configures CrashLogFromSlice. A nil *Options is equivalent
// to the zero value.
type Options struct {
	// Logger receives warnings raised while walking a raw Crash Log
	// buffer, such as a record declaring a size larger than the
	// remaining data. A nil Logger disables logging.
	Logger logging.Logger
}

// CrashLogFromSlice decodes a raw Crash Log dump (the concatenation of
// one or more regions, with no CPER wrapping) as a single region.
func CrashLogFromSlice(data []byte, opts *Options) (CrashLog, error) {
	if opts == nil {
		opts = &Options{}
	}

	region, err := RegionFromSlice(data, logging.NewHelper(opts.Logger))
	if err != nil {
		return CrashLog{}, err
	}
	return CrashLog{Regions: []Region{region}}, nil
}

// CrashLogFromCper extracts a CrashLog from a parsed Cper: every
// section whose body is a FirmwareErrorRecord wrapping RecordIDCrashLog
// is decoded as a region, in section order; every other section body
// is carried through unchanged as an extra CPER section.
func CrashLogFromCper(cper Cper, logger *logging.Helper) (CrashLog, error) {
	var cl CrashLog

	for _, section := range cper.Sections {
		if section.Body.FER != nil && section.Body.FER.Header.GUID == RecordIDCrashLog {
			region, err := RegionFromSlice(section.Body.FER.Payload, logger)
			if err != nil {
				return CrashLog{}, err
			}
			cl.Regions = append(cl.Regions, region)
			continue
		}
		cl.Metadata.ExtraCperSections = append(cl.Metadata.ExtraCperSections, section.Body)
	}

	if cper.RecordHeader.Timestamp != nil {
		ts := *cper.RecordHeader.Timestamp
		t := Time{
			Year:   uint16(bcdToBin(ts.Century))*100 + uint16(bcdToBin(ts.Year)),
			Month:  bcdToBin(ts.Month),
			Day:    bcdToBin(ts.Day),
			Hour:   bcdToBin(ts.Hours),
			Minute: bcdToBin(ts.Minutes),
		}
		cl.Metadata.Time = &t
	}

	return cl, nil
}

// ToBytes serializes the CrashLog as a complete CPER record, in the
// same shape CperFromRawCrashLog/Cper.ToBytes produce.
func (c CrashLog) ToBytes() []byte {
	cper := CperFromRawCrashLog(c)
	return cper.ToBytes()
}

// Decode walks every record of every region and merges each record's
// decoded Node tree into a single root, in region then record order.
func (c CrashLog) Decode(cm CollateralTree, logger *logging.Helper) *Node {
	root := NewRoot()
	for _, region := range c.Regions {
		for i := range region.Records {
			root.Merge(region.Records[i].Decode(cm, logger))
		}
	}
	return root
}
