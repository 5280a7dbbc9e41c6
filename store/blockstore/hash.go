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

// Package blockstore is the keyed, content-addressed, write-once blob store
// mapping content_hash -> compressed(canonical_block_bytes). It is a thin
// typed wrapper over the commit store's "blocks" table so that the whole
// repository lives in one SQLite file.
package blockstore

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash returns the lowercase-hex BLAKE2b-512 digest of data, used uniformly
// as the content hash for scrubbed canonical block bytes and for the
// serialized block-metadata vector that identifies a commit.
func Hash(data []byte) string {
	sum := blake2b.Sum512(data)
	return hex.EncodeToString(sum[:])
}
