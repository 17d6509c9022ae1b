// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetInfo describes a product known to a collateral tree: its
// symbolic name, variant, and the die names known for it, keyed by
// die id.
type TargetInfo struct {
	Product string
	Variant string
	DieID   map[uint8]string
}

// PVSS is the product/variant/silicon/stepping key used to select
// collateral items. Silicon and Stepping are left for richer backends
// to interpret; this package only ever populates Product/Variant.
type PVSS struct {
	Product  string
	Variant  string
	Silicon  string
	Stepping string
}

// ItemPath is a sequence of path segments identifying a collateral
// item, e.g. ["decode-defs", "MCA", "42", "layout.csv"].
type ItemPath []string

// Join renders the path the way a file-system-backed tree would.
func (p ItemPath) Join(sep string) string {
	return strings.Join(p, sep)
}

// CollateralTree is the capability interface a collateral backend
// must implement: resolving a path to bytes, and reporting the set of
// products it knows about. Decoders depend only on this interface,
// never on a concrete storage backend.
type CollateralTree interface {
	GetItem(path ItemPath) ([]byte, error)
	TargetInfo() map[uint32]TargetInfo
}

// product returns the symbolic product name for the header, or
// InvalidProductIDError if the tree has no entry for it.
func (h *Header) product(cm CollateralTree) (string, error) {
	info, ok := cm.TargetInfo()[h.Version.ProductID]
	if !ok {
		return "", &InvalidProductIDError{ProductID: h.Version.ProductID}
	}
	return info.Product, nil
}

// variant returns the product variant, if known.
func (h *Header) variant(cm CollateralTree) (string, bool) {
	info, ok := cm.TargetInfo()[h.Version.ProductID]
	if !ok {
		return "", false
	}
	return info.Variant, true
}

// die returns the name of the die that generated the record, if a
// die id is present and the collateral tree knows its name.
func (h *Header) die(cm CollateralTree) (string, bool) {
	dieID, ok := h.DieID()
	if !ok {
		return "", false
	}
	return h.getDieName(dieID, cm)
}

func (h *Header) getDieName(dieID uint8, cm CollateralTree) (string, bool) {
	info, ok := cm.TargetInfo()[h.Version.ProductID]
	if !ok {
		return "", false
	}
	name, ok := info.DieID[dieID]
	return name, ok
}

// pvss returns the PVSS key for this header. The product defaults to
// "all" only when the header's product ID is 0; any other product ID
// unknown to the tree yields InvalidProductIDError. The variant
// defaults to "all" whenever the product is unknown.
func (h *Header) pvss(cm CollateralTree) (PVSS, error) {
	product, err := h.product(cm)
	if err != nil {
		if invalidProductID, ok := err.(*InvalidProductIDError); ok && invalidProductID.ProductID == 0 {
			product = "all"
		} else {
			return PVSS{}, err
		}
	}
	variant, ok := h.variant(cm)
	if !ok {
		variant = "all"
	}
	return PVSS{Product: product, Variant: variant}, nil
}

// getRootPathUsingCM returns the hierarchy root path for this header,
// preferring the collateral tree's die name and falling back to the
// plain die-id form.
func (h *Header) getRootPathUsingCM(cm CollateralTree) (string, bool) {
	switch h.HeaderType.(type) {
	case Type6, Type0LegacyServer:
		if die, ok := h.die(cm); ok {
			return fmt.Sprintf("processors.cpu%d.%s", h.SocketID(), die), true
		}
		return h.getRootPath()
	default:
		return "", false
	}
}

// decodeDefinitionPaths produces the candidate collateral paths for
// this header's decode definitions, in resolution order.
func (h *Header) decodeDefinitionPaths(cm CollateralTree) ([]ItemPath, error) {
	recordType, err := h.RecordType()
	if err != nil {
		return nil, err
	}
	revision := strconv.Itoa(int(h.Version.Revision))

	if die, ok := h.die(cm); ok {
		dieRoot := strings.TrimRight(die, "0123456789")
		return []ItemPath{{"decode-defs", recordType, dieRoot, revision}}, nil
	}

	return []ItemPath{
		{"decode-defs", recordType, revision},
		{"decode-defs", recordType, "all"},
	}, nil
}
