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
	"strings"

	"github.com/blendvcs/blendvcs/internal/mathutil"
)

// fieldKind classifies a struct field by its DNA name syntax.
type fieldKind int

const (
	fieldValue fieldKind = iota
	fieldPointer
	fieldFuncPointer
	fieldValueArray
)

// classifyField inspects a field's declared name (e.g. "*data", "(*func)()",
// "co[3][4]") and returns its kind plus, for value/value-array fields, the
// byte size it occupies.
func classifyField(name string, typeLen uint16) (fieldKind, int) {
	trimmed := strings.TrimLeft(name, " ")
	switch {
	case strings.HasPrefix(trimmed, "**") || strings.HasPrefix(trimmed, "*"):
		return fieldPointer, 0 // size filled in by caller from header pointer width
	case strings.HasPrefix(trimmed, "(*"):
		return fieldFuncPointer, 0
	case strings.ContainsRune(trimmed, '['):
		size, overflowed := mathutil.SafeMul(uint64(typeLen), arrayDims(trimmed))
		if overflowed || size > uint64(^uint32(0)) {
			// A declared size this large cannot describe a real field in a
			// file small enough to have been read into memory; treat it as
			// zero-length so scrub/restore simply skip it rather than
			// panicking on a bogus offset later.
			return fieldValueArray, 0
		}
		return fieldValueArray, int(size)
	default:
		return fieldValue, int(typeLen)
	}
}

// arrayDims returns the product of every bracketed dimension in a field name
// like "co[3][4]", returning zero on overflow rather than wrapping. A
// dimension that is empty, zero, or non-numeric is skipped (counts as 1).
func arrayDims(name string) uint64 {
	var product uint64 = 1
	for {
		start := strings.IndexByte(name, '[')
		if start < 0 {
			break
		}
		end := strings.IndexByte(name[start:], ']')
		if end < 0 {
			break
		}
		end += start
		var n uint64
		for _, r := range name[start+1 : end] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + uint64(r-'0')
		}
		if n > 0 {
			next, overflowed := mathutil.SafeMul(product, n)
			if overflowed {
				return 0
			}
			product = next
		}
		name = name[end+1:]
	}
	return product
}

// FieldMetaLookup maps a struct's schema index to the ordered byte offsets,
// within an instance of that struct, of every pointer-typed field ("*"
// prefixed, not function pointers). Only struct indices with at least one
// pointer field appear.
type FieldMetaLookup map[int][]uint32

// buildFieldMetaLookup walks every struct descriptor once, computing running
// field offsets, and records the offsets of data-pointer fields.
func buildFieldMetaLookup(s Schema, ptr PointerSize) FieldMetaLookup {
	lookup := make(FieldMetaLookup)
	for i, strc := range s.Structs {
		var offsets []uint32
		var offset uint32
		for _, f := range strc.Fields {
			name := s.Names[f.NameIndex]
			typeLen := uint16(0)
			if f.TypeIndex < len(s.TypeLen) {
				typeLen = s.TypeLen[f.TypeIndex]
			}
			kind, size := classifyField(name, typeLen)
			switch kind {
			case fieldPointer:
				offsets = append(offsets, offset)
				size = int(ptr)
			case fieldFuncPointer:
				size = int(ptr)
			case fieldValue, fieldValueArray:
				// size already computed
			}
			offset += uint32(size)
		}
		if len(offsets) > 0 {
			lookup[i] = offsets
		}
	}
	return lookup
}

// PointerValue is one (offset, value) pair recovered from a block's payload
// before scrubbing.
type PointerValue struct {
	Offset uint32
	Value  uint64
}

// ParsedBlockWithPointers pairs a scrubbed block with the information needed
// to reverse the scrub: the block's original memory address and every
// pointer field's original value.
type ParsedBlockWithPointers struct {
	Block           SimpleBlock
	OriginalAddress uint64
	Pointers        []PointerValue
}

// scrubBlock zeroes b's memory address and every pointer field named by
// offsets (looked up by b's SDNA index), recording their original values.
// Offsets that would read past the end of the payload are skipped, per
// spec. scrubBlock does not mutate its input; it returns a new block.
func scrubBlock(b SimpleBlock, lookup FieldMetaLookup, ptr PointerSize, order endianOrder) ParsedBlockWithPointers {
	origAddr := b.Address
	data := append([]byte(nil), b.Data...)

	var pointers []PointerValue
	for _, off := range lookup[int(b.SDNAIndex)] {
		end := int(off) + int(ptr)
		if end > len(data) {
			continue
		}
		var val uint64
		if ptr == Ptr32 {
			val = uint64(order.Uint32(data[off:end]))
			order.PutUint32(data[off:end], 0)
		} else {
			val = order.Uint64(data[off:end])
			order.PutUint64(data[off:end], 0)
		}
		pointers = append(pointers, PointerValue{Offset: off, Value: val})
	}

	scrubbed := b
	scrubbed.Address = 0
	scrubbed.Data = data
	return ParsedBlockWithPointers{Block: scrubbed, OriginalAddress: origAddr, Pointers: pointers}
}

// unscrubBlock is the exact inverse of scrubBlock: it reinjects the original
// memory address and every recorded pointer value.
func unscrubBlock(p ParsedBlockWithPointers, ptr PointerSize, order endianOrder) SimpleBlock {
	b := p.Block
	b.Address = p.OriginalAddress
	data := append([]byte(nil), b.Data...)
	for _, pv := range p.Pointers {
		end := int(pv.Offset) + int(ptr)
		if end > len(data) {
			continue
		}
		if ptr == Ptr32 {
			order.PutUint32(data[pv.Offset:end], uint32(pv.Value))
		} else {
			order.PutUint64(data[pv.Offset:end], pv.Value)
		}
	}
	b.Data = data
	return b
}

// endianOrder is the subset of binary.ByteOrder used by the scrub/restore
// path; aliased so callers don't need to import encoding/binary directly.
type endianOrder interface {
	Uint32([]byte) uint32
	Uint64([]byte) uint64
	PutUint32([]byte, uint32)
	PutUint64([]byte, uint64)
}
