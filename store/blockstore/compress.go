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

package blockstore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// compress gzips data at the default compression level. Each block is one
// compressed blob; there is no chunking.
func compress(data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write(data) // gzip.Writer never fails writing to an in-memory buffer
	_ = w.Close()
	return buf.Bytes()
}

// decompress inverts compress.
func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("blockstore: gzip open: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("blockstore: gzip read: %w", err)
	}
	return out, nil
}
