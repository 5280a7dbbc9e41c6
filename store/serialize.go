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

package store

import (
	"encoding/binary"
	"fmt"
)

// SerializeBlockMetadata produces the deterministic binary encoding of a
// []BlockMetadata vector. This encoding's bytes are hashed to produce a
// commit's identity and are stored verbatim in the commits.blocks_and_pointers
// column, so its format must never change without also changing how commit
// hashes are computed.
func SerializeBlockMetadata(metas []BlockMetadata) []byte {
	buf := make([]byte, 0, 64*len(metas))
	buf = appendUvarint(buf, uint64(len(metas)))
	for _, m := range metas {
		buf = appendString(buf, m.Hash)
		buf = appendUvarint(buf, m.OriginalAddress)
		buf = appendUvarint(buf, uint64(len(m.Pointers)))
		for _, p := range m.Pointers {
			buf = appendUvarint(buf, uint64(p.Offset))
			buf = appendUvarint(buf, p.Value)
		}
	}
	return buf
}

// DeserializeBlockMetadata inverts SerializeBlockMetadata.
func DeserializeBlockMetadata(buf []byte) ([]BlockMetadata, error) {
	r := &reader{buf: buf}
	count, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	metas := make([]BlockMetadata, 0, count)
	for i := uint64(0); i < count; i++ {
		hash, err := r.string()
		if err != nil {
			return nil, err
		}
		addr, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		ptrCount, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		pointers := make([]PointerValue, 0, ptrCount)
		for j := uint64(0); j < ptrCount; j++ {
			off, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			val, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			pointers = append(pointers, PointerValue{Offset: uint32(off), Value: val})
		}
		metas = append(metas, BlockMetadata{Hash: hash, OriginalAddress: addr, Pointers: pointers})
	}
	return metas, nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("store: truncated varint at offset %d", r.off)
	}
	r.off += n
	return v, nil
}

func (r *reader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", fmt.Errorf("store: truncated string at offset %d", r.off)
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
