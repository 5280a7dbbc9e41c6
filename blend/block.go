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

package blend

import (
	"fmt"
)

// SimpleBlock is one contiguous parsed unit of the file: the atomic element of
// parsing, hashing, and storage.
type SimpleBlock struct {
	Code      [4]byte
	Size      int32
	Address   uint64 // widened; only the low 32 bits are meaningful under Ptr32
	SDNAIndex uint32
	Count     uint32
	Data      []byte
}

func (b SimpleBlock) CodeString() string {
	n := 4
	for n > 0 && b.Code[n-1] == 0 {
		n--
	}
	return string(b.Code[:n])
}

// blockHeaderSize is code(4) + size(4) + addr(ptrSize) + sdna(4) + count(4).
func blockHeaderSize(ptr PointerSize) int {
	return 4 + 4 + int(ptr) + 4 + 4
}

// parseBlock reads one block at the front of buf, using h's pointer size and
// endianness. It returns the block and the number of bytes consumed.
func parseBlock(buf []byte, h Header) (SimpleBlock, int, error) {
	hdrSize := blockHeaderSize(h.PointerSize)
	if len(buf) < hdrSize {
		return SimpleBlock{}, 0, fmt.Errorf("blend: %w: block header truncated", ErrMalformedInput)
	}
	order := h.Endian.order()
	var b SimpleBlock
	copy(b.Code[:], buf[0:4])
	b.Size = int32(order.Uint32(buf[4:8]))
	if b.Size < 0 {
		return SimpleBlock{}, 0, fmt.Errorf("blend: %w: negative block size %d", ErrMalformedInput, b.Size)
	}
	off := 8
	if h.PointerSize == Ptr32 {
		b.Address = uint64(order.Uint32(buf[off : off+4]))
		off += 4
	} else {
		b.Address = order.Uint64(buf[off : off+8])
		off += 8
	}
	b.SDNAIndex = order.Uint32(buf[off : off+4])
	off += 4
	b.Count = order.Uint32(buf[off : off+4])
	off += 4

	total := off + int(b.Size)
	if len(buf) < total {
		return SimpleBlock{}, 0, fmt.Errorf("blend: %w: block %q payload truncated", ErrMalformedInput, b.CodeString())
	}
	b.Data = append([]byte(nil), buf[off:total]...)
	return b, total, nil
}

// printBlock appends the encoded form of b to buf using h's pointer size and
// endianness.
func printBlock(buf []byte, h Header, b SimpleBlock) []byte {
	order := h.Endian.order()
	buf = append(buf, b.Code[:]...)

	var sizeBuf [4]byte
	order.PutUint32(sizeBuf[:], uint32(b.Size))
	buf = append(buf, sizeBuf[:]...)

	if h.PointerSize == Ptr32 {
		var addrBuf [4]byte
		order.PutUint32(addrBuf[:], uint32(b.Address))
		buf = append(buf, addrBuf[:]...)
	} else {
		var addrBuf [8]byte
		order.PutUint64(addrBuf[:], b.Address)
		buf = append(buf, addrBuf[:]...)
	}

	var sdnaBuf, countBuf [4]byte
	order.PutUint32(sdnaBuf[:], b.SDNAIndex)
	buf = append(buf, sdnaBuf[:]...)
	order.PutUint32(countBuf[:], b.Count)
	buf = append(buf, countBuf[:]...)

	return append(buf, b.Data...)
}
