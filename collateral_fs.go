// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/intel/crashlog-go/internal/logging"
)

// FileSystemCollateralTree is a reference CollateralTree backend
// rooted at a directory on disk. Layout:
//
//	<root>/targets.csv                       product_id;product;variant;die_ids
//	<root>/decode-defs/<record_type>/...csv  decode definitions, per decodeDefinitionPaths
//
// die_ids is a comma-separated list of "<id>=<name>" pairs.
//
// CSV reads are mmapped the way the teacher's File type maps its
// input binary, and cached by joined path since the same decode
// definition is often requested by several records in one decode
// pass.
type FileSystemCollateralTree struct {
	root       string
	targetInfo map[uint32]TargetInfo
	logger     *logging.Helper

	cache map[string][]byte
}

// FileSystemCollateralTreeOptions configures NewFileSystemCollateralTree.
type FileSystemCollateralTreeOptions struct {
	// Logger receives warnings about malformed targets.csv rows. A nil
	// Logger disables logging.
	Logger logging.Logger
}

// NewFileSystemCollateralTree opens a directory-backed collateral
// tree, loading its targets.csv target-info table eagerly.
func NewFileSystemCollateralTree(root string, opts *FileSystemCollateralTreeOptions) (*FileSystemCollateralTree, error) {
	if opts == nil {
		opts = &FileSystemCollateralTreeOptions{}
	}

	tree := &FileSystemCollateralTree{
		root:       root,
		targetInfo: make(map[uint32]TargetInfo),
		logger:     logging.NewHelper(opts.Logger),
		cache:      make(map[string][]byte),
	}

	if err := tree.loadTargetInfo(); err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *FileSystemCollateralTree) loadTargetInfo() error {
	path := filepath.Join(t.root, "targets.csv")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if len(row) < 3 {
			t.logger.Warnf("targets.csv: skipping short row %d", i)
			continue
		}

		productID, err := strconv.ParseUint(row[0], 0, 32)
		if err != nil {
			t.logger.Warnf("targets.csv: row %d: invalid product_id %q: %v", i, row[0], err)
			continue
		}

		info := TargetInfo{Product: row[1], Variant: row[2], DieID: make(map[uint8]string)}
		if len(row) >= 4 && row[3] != "" {
			for _, pair := range strings.Split(row[3], ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) != 2 {
					continue
				}
				id, err := strconv.ParseUint(kv[0], 0, 8)
				if err != nil {
					continue
				}
				info.DieID[uint8(id)] = kv[1]
			}
		}

		t.targetInfo[uint32(productID)] = info
	}

	return nil
}

// TargetInfo implements CollateralTree.
func (t *FileSystemCollateralTree) TargetInfo() map[uint32]TargetInfo {
	return t.targetInfo
}

// GetItem implements CollateralTree, reading the file addressed by
// path joined under the tree's root.
func (t *FileSystemCollateralTree) GetItem(path ItemPath) ([]byte, error) {
	key := path.Join("/")
	if data, ok := t.cache[key]; ok {
		return data, nil
	}

	fullPath := filepath.Join(append([]string{t.root}, path...)...)
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fullPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", fullPath, err)
	}
	if info.Size() == 0 {
		t.cache[key] = []byte{}
		return t.cache[key], nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", fullPath, err)
	}
	data := make([]byte, len(m))
	copy(data, m)
	_ = m.Unmap()

	t.cache[key] = data
	return data, nil
}
