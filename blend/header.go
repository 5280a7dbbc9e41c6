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

// Package blend implements the binary codec for the monolithic, pointer-bearing
// document format this project checkpoints: a short fixed header followed by a
// sequence of self-describing blocks, terminated by a sentinel block.
package blend

import (
	"encoding/binary"
	"fmt"
)

// magicBytes identifies an uncompressed file in this format.
var magicBytes = [7]byte{'B', 'L', 'E', 'N', 'D', 'E', 'R'}

// endSentinel is the 4-byte code that terminates the block sequence.
var endSentinel = [4]byte{'E', 'N', 'D', 'B'}

// dnaBlockCode is the code of the one block carrying the embedded type schema.
var dnaBlockCode = [4]byte{'D', 'N', 'A', '1'}

// PointerSize is the width of memory addresses and pointer fields in the file.
type PointerSize int

const (
	Ptr32 PointerSize = 4
	Ptr64 PointerSize = 8
)

// Endianness selects how multi-byte integers in the file are encoded.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Header is the fixed-width descriptor at the start of every file.
type Header struct {
	PointerSize PointerSize
	Endian      Endianness
	Version     [3]byte
}

// headerSize is magic(7) + pointer-size(1) + endian(1) + version(3).
const headerSize = 7 + 1 + 1 + 3

// parseHeader reads the fixed header from the front of buf.
func parseHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("blend: %w: header truncated, got %d bytes", ErrMalformedInput, len(buf))
	}
	if [7]byte(buf[:7]) != magicBytes {
		return Header{}, fmt.Errorf("blend: %w: bad magic", ErrMalformedInput)
	}
	var h Header
	switch buf[7] {
	case '_':
		h.PointerSize = Ptr32
	case '-':
		h.PointerSize = Ptr64
	default:
		return Header{}, fmt.Errorf("blend: %w: unknown pointer-size byte %q", ErrMalformedInput, buf[7])
	}
	if buf[8] == 'v' {
		h.Endian = LittleEndian
	} else {
		h.Endian = BigEndian
	}
	copy(h.Version[:], buf[9:12])
	return h, nil
}

// writeHeader appends the fixed header to buf.
func writeHeader(buf []byte, h Header) []byte {
	buf = append(buf, magicBytes[:]...)
	if h.PointerSize == Ptr32 {
		buf = append(buf, '_')
	} else {
		buf = append(buf, '-')
	}
	if h.Endian == LittleEndian {
		buf = append(buf, 'v')
	} else {
		buf = append(buf, 'V')
	}
	return append(buf, h.Version[:]...)
}
