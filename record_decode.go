// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/intel/crashlog-go/internal/logging"
)

const decodeDefDelimiter = ';'

type decodeDefinitionEntry struct {
	name        string
	offset      int
	size        int
	description string
}

// DecodeWithCSV decodes the section of the record located at
// byteOffset into a Node tree, using an arbitrary decode definition.
//
// The decode definition is semicolon-delimited CSV. Its header row
// lists column names in any order; unrecognized columns are ignored
// and a data row may omit trailing columns entirely (both degrade
// silently rather than failing the decode). Recognized columns:
//
//	name        dot-separated path to the field, relative paths allowed
//	offset      bit offset of the field, relative to byteOffset
//	size        bit width of the field
//	description human-readable description
func (r *Record) DecodeWithCSV(layout []byte, byteOffset int) (*Node, error) {
	root := NewRoot()

	reader := csv.NewReader(strings.NewReader(string(layout)))
	reader.Comma = decodeDefDelimiter
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing decode definition: %w", err)
	}
	if len(rows) == 0 {
		return root, nil
	}

	columns := rows[0]
	var currentPath []string

	for _, row := range rows[1:] {
		entry, err := parseDecodeDefinitionEntry(columns, row)
		if err != nil {
			return nil, err
		}
		if entry.name == "" {
			continue
		}

		segments := strings.Split(entry.name, ".")
		top := segments[0]
		if top != "" {
			currentPath = currentPath[:0]
			currentPath = append(currentPath, top)

			if root.Get(top) == nil {
				root.Add(NewRecord(top))
			}
		}

		for _, segment := range segments[1:] {
			if segment == "" {
				if len(currentPath) > 0 {
					currentPath = currentPath[:len(currentPath)-1]
				}
			} else {
				currentPath = append(currentPath, segment)
			}
		}

		node := root.CreateHierarchyFromSegments(currentPath)
		node.Description = entry.description
		if value, ok := r.ReadField(byteOffset*8+entry.offset, entry.size); ok {
			node.Kind = NodeField
			node.Value = value
		}
	}

	return root, nil
}

func parseDecodeDefinitionEntry(columns, row []string) (decodeDefinitionEntry, error) {
	var entry decodeDefinitionEntry

	for i, field := range row {
		if i >= len(columns) {
			break
		}
		switch columns[i] {
		case "name":
			entry.name = field
		case "offset":
			if field == "" {
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				return entry, fmt.Errorf("parsing %q column %q: %w", field, "offset", err)
			}
			entry.offset = v
		case "size":
			if field == "" {
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				return entry, fmt.Errorf("parsing %q column %q: %w", field, "size", err)
			}
			entry.size = v
		case "description":
			entry.description = field
		}
	}

	return entry, nil
}

// DecodeHeader decodes only the record's header fields into a Node
// tree, the fallback used when a full field decode is unavailable.
func (r *Record) DecodeHeader() *Node {
	recordType, err := r.Header.RecordType()
	if err != nil {
		recordType = "record"
	}

	record := NewRecord(recordType)
	record.Add(headerNode(&r.Header))

	root := NewRoot()
	root.Add(record)
	return root
}

// getRootPath returns the hierarchy root path for this record without
// consulting a collateral tree, preferring the header's own root path
// and falling back to the Context-supplied socket/die pair.
func (r *Record) getRootPath() (string, bool) {
	if path, ok := r.Header.getRootPath(); ok {
		return path, true
	}
	if r.Context.SocketID != nil && r.Context.DieID != nil {
		return fmt.Sprintf("processors.cpu%d.die%d", *r.Context.SocketID, *r.Context.DieID), true
	}
	return "", false
}

// getRootPathUsingCM is getRootPath, but resolving die names through a
// collateral tree when possible.
func (r *Record) getRootPathUsingCM(cm CollateralTree) (string, bool) {
	if path, ok := r.Header.getRootPathUsingCM(cm); ok {
		return path, true
	}
	if r.Context.SocketID != nil && r.Context.DieID != nil {
		die := fmt.Sprintf("die%d", *r.Context.DieID)
		if name, ok := r.Header.getDieName(*r.Context.DieID, cm); ok {
			die = name
		}
		return fmt.Sprintf("processors.cpu%d.%s", *r.Context.SocketID, die), true
	}
	return "", false
}

// DecodeWithoutCM decodes only the record's header, nested under its
// plain (collateral-tree-free) root path if it has one.
func (r *Record) DecodeWithoutCM() *Node {
	header := r.DecodeHeader()

	root := NewRoot()
	recordRoot := root
	if path, ok := r.getRootPath(); ok {
		recordRoot = root.CreateHierarchy(path)
	}
	recordRoot.Merge(header)
	return root
}

// DecodeWithDecodeDef decodes the section of the record at byteOffset
// using the named decode definition (e.g. "layout.csv"), resolving it
// against the collateral tree via the header's decode-definition
// search paths. The first path that resolves wins.
func (r *Record) DecodeWithDecodeDef(cm CollateralTree, decodeDef string, byteOffset int) (*Node, error) {
	paths, err := r.Header.decodeDefinitionPaths(cm)
	if err != nil {
		return nil, err
	}

	root := NewRoot()
	for _, path := range paths {
		fullPath := append(append(ItemPath{}, path...), decodeDef)
		layout, err := cm.GetItem(fullPath)
		if err != nil {
			continue
		}

		decoded, err := r.DecodeWithCSV(layout, byteOffset)
		if err != nil {
			return nil, err
		}
		root.Merge(decoded)
		return root, nil
	}

	return nil, &MissingDecodeDefinitionsError{Version: r.Header.Version}
}

// Decode decodes the whole record into a Node tree using the decode
// definitions found in cm. Core records (PCORE/ECORE, excluding the
// legacy-server BOX erratum) are routed through decodeAsCoreRecord;
// others resolve a flat "layout.csv". On any decode failure, this
// degrades to DecodeHeader and logs a warning rather than failing.
func (r *Record) Decode(cm CollateralTree, logger *logging.Helper) *Node {
	errata := ComputeErrata(r.Header.Version)
	isCore := (r.Header.Version.RecordType == RecordTypePCORE || r.Header.Version.RecordType == RecordTypeECORE) &&
		!errata.Type0LegacyServerBox

	var recordNode *Node
	var err error
	if isCore {
		recordNode, err = r.decodeAsCoreRecord(cm)
	} else {
		recordNode, err = r.DecodeWithDecodeDef(cm, "layout.csv", 0)
	}

	if err != nil {
		logger.Warnf("cannot decode record: %v. Only the header fields will be decoded.", err)
		recordNode = r.DecodeHeader()
	}

	root := NewRoot()
	recordRoot := root
	if path, ok := r.getRootPathUsingCM(cm); ok {
		recordRoot = root.CreateHierarchy(path)
	}
	recordRoot.Merge(recordNode)
	return root
}

// decodeAsCoreRecord implements the core-record subsection strategy:
// try "thread" then "core" decode definitions, optionally merging an
// extended section at the header's extended record offset, then
// relocate the result under a moduleN.coreM.threadK hierarchy derived
// from the decoded hdr.whoami.<level>_id fields.
func (r *Record) decodeAsCoreRecord(cm CollateralTree) (*Node, error) {
	recordType, err := r.Header.RecordType()
	if err != nil {
		return nil, err
	}
	section := NewSection(recordType)

	for _, subsectionName := range []string{"thread", "core"} {
		decodeDef := fmt.Sprintf("layout_%s.csv", subsectionName)
		root, err := r.DecodeWithDecodeDef(cm, decodeDef, 0)
		if err != nil {
			continue
		}

		if offset, ok := r.Header.ExtendedRecordOffset(); ok {
			for _, extDecodeDef := range []string{"layout_sq.csv", "layout_module.csv"} {
				extension, err := r.DecodeWithDecodeDef(cm, extDecodeDef, offset)
				if err != nil {
					continue
				}
				root.Merge(extension)
				break
			}
		}

		subsection := root.Get(subsectionName)
		if subsection == nil {
			continue
		}

		var hierarchy []string
		for _, level := range []string{"module", "core", "thread"} {
			id, ok := subsection.GetValueByPath(fmt.Sprintf("hdr.whoami.%s_id", level))
			if !ok {
				continue
			}
			hierarchy = append(hierarchy, fmt.Sprintf("%s%d", level, id))
		}

		section.CreateHierarchyFromSegments(hierarchy).Merge(root)

		out := NewRoot()
		out.Add(section)
		return out, nil
	}

	return nil, &MissingDecodeDefinitionsError{Version: r.Header.Version}
}
