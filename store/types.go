// Copyright 2026 The Blendvcs Authors
// This file is part of Blendvcs.
//
// Blendvcs is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Blendvcs is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Blendvcs. If not, see <http://www.gnu.org/licenses/>.

// Package store holds the value types shared between store/blockstore,
// store/commitstore, and engine: the data model of spec §3, independent of
// any particular storage backend.
package store

// InitialCommitHash is the sentinel parent hash of the very first commit in
// a repository.
const InitialCommitHash = "initial"

// PointerValue is one (offset, value) pair recovered from a block's payload
// before scrubbing.
type PointerValue struct {
	Offset uint32
	Value  uint64
}

// BlockMetadata is the per-commit, per-block record needed to restore a
// block's original bytes: its content hash, its original memory address,
// and every pointer field it carried before scrubbing.
type BlockMetadata struct {
	Hash            string
	OriginalAddress uint64
	Pointers        []PointerValue
}

// Commit is an immutable record naming a full ordered list of block hashes
// (via BlocksAndPointers) and its parent commit.
type Commit struct {
	Hash              string
	PrevCommitHash    string
	ProjectID         string
	Branch            string
	Message           string
	Author            string
	Date              int64
	HeaderBytes       []byte
	BlocksAndPointers []byte
}

// Branch is a named pointer at the latest commit on that branch.
type Branch struct {
	Name string
	Tip  string
}

// BlockRecord is the sole payload of the Block Store: a content hash and its
// compressed canonical bytes.
type BlockRecord struct {
	ContentHash     string
	CompressedBytes []byte
}

// AncestorEntry is one row of a ReadAncestors projection.
type AncestorEntry struct {
	Hash    string
	Branch  string
	Message string
	Date    int64
}
