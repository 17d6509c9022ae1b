// Copyright (C) 2025 Intel Corporation
// SPDX-License-Identifier: MIT

package crashlog

import "fmt"

// versionNode builds the "version" field node and its revision/
// header_type/product_id/record_type children.
func versionNode(v Version) *Node {
	node := NewField("version", uint64(v.AsUint32()))
	node.Add(NewField("revision", uint64(v.Revision)))
	node.Add(NewField("header_type", uint64(v.HeaderType)))
	node.Add(NewField("product_id", uint64(v.ProductID)))
	node.Add(NewField("record_type", uint64(v.RecordType)))
	return node
}

// recordSizeNode builds the "record_size" section node.
func recordSizeNode(size RecordSize) *Node {
	node := NewSection("record_size")
	node.Add(NewField("record_size", uint64(size.RecordSize)))
	node.Add(NewField("extended_record_size", uint64(size.ExtendedRecordSize)))
	return node
}

func boolField(name string, v bool) *Node {
	value := uint64(0)
	if v {
		value = 1
	}
	return NewField(name, value)
}

// headerNode decodes a Header into its "hdr" Node tree, exactly as
// the teacher's decode_header emits: version, record_size, and then
// the per-variant fields.
func headerNode(h *Header) *Node {
	node := NewSection("hdr")
	node.Add(versionNode(h.Version))
	node.Add(recordSizeNode(h.Size))

	switch ht := h.HeaderType.(type) {
	case Type2:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))

	case Type3:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))

		cs := NewSection("completion_status")
		cs.Add(NewField("completion_status", uint64(ht.CompletionStatus)))
		cs.Add(boolField("record_collection_completed", ht.CollectionComplete))
		node.Add(cs)

	case Type4:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))
		node.Add(NewField("whoami", uint64(ht.Whoami)))
		node.Add(NewField("misc", uint64(ht.Misc)))

	case Type5:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))
		node.Add(NewField("error_status", uint64(ht.ErrorStatus)))

		cs := NewSection("completion_status")
		cs.Add(NewField("completion_status", uint64(ht.CompletionStatus)))
		cs.Add(boolField("record_collection_completed", ht.CollectionComplete))
		node.Add(cs)

	case Type6:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))

		dieSktInfo := NewSection("die_skt_info")
		dieSktInfo.Add(NewField("die_id", uint64(ht.DieID)))
		dieSktInfo.Add(NewField("socket_id", uint64(ht.SocketID)))
		dieSktInfo.Add(NewField("completion_status_size", uint64(ht.CompletionStatusSize)))
		dieSktInfo.Add(boolField("record_collection_completed", ht.CollectionComplete))
		node.Add(dieSktInfo)

		for i, cs := range ht.CompletionStatus {
			node.Add(NewField(fmt.Sprintf("completion_status%d", i), uint64(cs)))
		}

	case Type0LegacyServer:
		node.Add(NewField("timestamp", ht.Timestamp))
		node.Add(NewField("agent_version", uint64(ht.AgentVersion)))
		node.Add(NewField("reason", uint64(ht.Reason)))
		node.Add(NewField("die_id", uint64(ht.DieID)))
		node.Add(NewField("socket_id", uint64(ht.SocketID)))
		node.Add(NewField("completion_status", uint64(ht.CompletionStatus)))
		node.Add(boolField("record_collection_completed", ht.CollectionComplete))
	}

	return node
}
