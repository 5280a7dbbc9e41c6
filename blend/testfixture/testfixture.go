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

// Package testfixture builds small, synthetic files in this project's binary
// format for use in tests, without needing a real input file on disk. It
// mirrors the in-process fixture builder the original implementation used
// for its own test suite.
package testfixture

import "encoding/binary"

// Builder accumulates blocks for a synthetic file.
type Builder struct {
	littleEndian bool
	ptr32        bool
	blocks       [][]byte
}

// New returns a Builder for a little-endian, 64-bit-pointer file, the most
// common real-world configuration.
func New() *Builder {
	return &Builder{littleEndian: true, ptr32: false}
}

func (bld *Builder) order() binary.ByteOrder {
	if bld.littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (bld *Builder) ptrSize() int {
	if bld.ptr32 {
		return 4
	}
	return 8
}

// AddBlock appends a raw block with the given 4-byte code, memory address,
// sdna index, count, and payload.
func (bld *Builder) AddBlock(code string, address uint64, sdnaIndex, count uint32, payload []byte) *Builder {
	order := bld.order()
	buf := make([]byte, 0, 16+bld.ptrSize()+len(payload))
	buf = append(buf, []byte(code)[:4]...)

	var sizeBuf [4]byte
	order.PutUint32(sizeBuf[:], uint32(len(payload)))
	buf = append(buf, sizeBuf[:]...)

	if bld.ptr32 {
		var a [4]byte
		order.PutUint32(a[:], uint32(address))
		buf = append(buf, a[:]...)
	} else {
		var a [8]byte
		order.PutUint64(a[:], address)
		buf = append(buf, a[:]...)
	}

	var sdnaBuf, countBuf [4]byte
	order.PutUint32(sdnaBuf[:], sdnaIndex)
	buf = append(buf, sdnaBuf[:]...)
	order.PutUint32(countBuf[:], count)
	buf = append(buf, countBuf[:]...)

	buf = append(buf, payload...)
	bld.blocks = append(bld.blocks, buf)
	return bld
}

// nullPad pads s with a trailing NUL and then zero-bytes up to the next
// 4-byte boundary, matching the DNA1 NAME/TYPE section convention.
func nullPad(strs []string) []byte {
	var buf []byte
	for _, s := range strs {
		buf = append(buf, []byte(s)...)
		buf = append(buf, 0)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// DNAOptions describes one struct to embed in a synthetic DNA1 block.
type DNAOptions struct {
	TypeName string
	TypeLen  uint16
	Fields   []DNAField
}

// DNAField is one field in a synthetic struct: a DNA-syntax name (e.g.
// "*next", "co[3]", "id") and the underlying type it refers to.
type DNAField struct {
	Name     string
	TypeName string
	TypeLen  uint16
}

// AddDNA builds a minimal DNA1 block (SDNA/NAME/TYPE/TLEN/STRC sections)
// describing the given structs, and appends it as a block with sdna index 0
// (DNA1 itself is schema-less).
func (bld *Builder) AddDNA(structs []DNAOptions) *Builder {
	order := bld.order()

	var names []string
	nameIndex := map[string]int{}
	nameIdx := func(n string) int {
		if i, ok := nameIndex[n]; ok {
			return i
		}
		i := len(names)
		names = append(names, n)
		nameIndex[n] = i
		return i
	}

	var types []string
	var typeLens []uint16
	typeIndex := map[string]int{}
	typeIdx := func(t string, l uint16) int {
		if i, ok := typeIndex[t]; ok {
			return i
		}
		i := len(types)
		types = append(types, t)
		typeLens = append(typeLens, l)
		typeIndex[t] = i
		return i
	}

	var payload []byte
	payload = append(payload, []byte("SDNA")...)
	payload = append(payload, []byte("NAME")...)

	type fieldRef struct{ typeI, nameI int }
	structFields := make([][]fieldRef, len(structs))
	for si, s := range structs {
		typeIdx(s.TypeName, s.TypeLen)
		for _, f := range s.Fields {
			ni := nameIdx(f.Name)
			ti := typeIdx(f.TypeName, f.TypeLen)
			structFields[si] = append(structFields[si], fieldRef{typeI: ti, nameI: ni})
		}
	}

	var nameCount [4]byte
	order.PutUint32(nameCount[:], uint32(len(names)))
	payload = append(payload, nameCount[:]...)
	payload = append(payload, nullPad(names)...)

	payload = append(payload, []byte("TYPE")...)
	var typeCount [4]byte
	order.PutUint32(typeCount[:], uint32(len(types)))
	payload = append(payload, typeCount[:]...)
	payload = append(payload, nullPad(types)...)

	payload = append(payload, []byte("TLEN")...)
	for _, l := range typeLens {
		var b [2]byte
		order.PutUint16(b[:], l)
		payload = append(payload, b[:]...)
	}
	for len(payload)%4 != 0 {
		payload = append(payload, 0)
	}

	payload = append(payload, []byte("STRC")...)
	var strcCount [4]byte
	order.PutUint32(strcCount[:], uint32(len(structs)))
	payload = append(payload, strcCount[:]...)
	for si, s := range structs {
		var tIdx, fCount [2]byte
		order.PutUint16(tIdx[:], uint16(typeIndex[s.TypeName]))
		order.PutUint16(fCount[:], uint16(len(s.Fields)))
		payload = append(payload, tIdx[:]...)
		payload = append(payload, fCount[:]...)
		for _, fr := range structFields[si] {
			var ti, ni [2]byte
			order.PutUint16(ti[:], uint16(fr.typeI))
			order.PutUint16(ni[:], uint16(fr.nameI))
			payload = append(payload, ti[:]...)
			payload = append(payload, ni[:]...)
		}
	}

	return bld.AddBlock("DNA1", 0, 0, 0, payload)
}

// Build assembles the header, all added blocks, and the ENDB sentinel into a
// complete uncompressed file.
func (bld *Builder) Build() []byte {
	order := bld.order()
	var buf []byte
	buf = append(buf, []byte("BLENDER")...)
	if bld.ptr32 {
		buf = append(buf, '_')
	} else {
		buf = append(buf, '-')
	}
	if bld.littleEndian {
		buf = append(buf, 'v')
	} else {
		buf = append(buf, 'V')
	}
	buf = append(buf, '3', '0', '0')
	_ = order

	for _, b := range bld.blocks {
		buf = append(buf, b...)
	}
	buf = append(buf, []byte("ENDB")...)
	return buf
}
