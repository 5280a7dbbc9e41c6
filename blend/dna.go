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
	"bytes"
	"fmt"
)

// StructField is one field of a struct descriptor in the DNA1 schema: the
// index into the type table, and the index into the name table.
type StructField struct {
	TypeIndex int
	NameIndex int
}

// StructDescriptor is one STRC entry: a struct's type and its ordered fields.
type StructDescriptor struct {
	TypeIndex int
	Fields    []StructField
}

// Schema is the parsed DNA1 payload: the self-description of every struct
// type that can appear as a block's contents in this file.
type Schema struct {
	Names   []string
	Types   []string
	TypeLen []uint16
	Structs []StructDescriptor
}

// parseSchema parses the payload of the DNA1 block.
func parseSchema(payload []byte, h Header) (Schema, error) {
	order := h.Endian.order()
	var s Schema

	off := 0
	readTag := func(want string) error {
		if off+4 > len(payload) {
			return fmt.Errorf("blend: %w: DNA1 truncated before %q", ErrMalformedInput, want)
		}
		got := string(payload[off : off+4])
		if got != want {
			return fmt.Errorf("blend: %w: expected DNA1 tag %q, got %q", ErrMalformedInput, want, got)
		}
		off += 4
		return nil
	}
	align4 := func() {
		if m := off % 4; m != 0 {
			off += 4 - m
		}
	}

	if err := readTag("SDNA"); err != nil {
		return Schema{}, err
	}
	if err := readTag("NAME"); err != nil {
		return Schema{}, err
	}
	if off+4 > len(payload) {
		return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated at NAME count", ErrMalformedInput)
	}
	nameCount := order.Uint32(payload[off : off+4])
	off += 4
	s.Names = make([]string, nameCount)
	for i := range s.Names {
		end := bytes.IndexByte(payload[off:], 0)
		if end < 0 {
			return Schema{}, fmt.Errorf("blend: %w: unterminated name string", ErrMalformedInput)
		}
		s.Names[i] = string(payload[off : off+end])
		off += end + 1
	}
	align4()

	if err := readTag("TYPE"); err != nil {
		return Schema{}, err
	}
	if off+4 > len(payload) {
		return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated at TYPE count", ErrMalformedInput)
	}
	typeCount := order.Uint32(payload[off : off+4])
	off += 4
	s.Types = make([]string, typeCount)
	for i := range s.Types {
		end := bytes.IndexByte(payload[off:], 0)
		if end < 0 {
			return Schema{}, fmt.Errorf("blend: %w: unterminated type string", ErrMalformedInput)
		}
		s.Types[i] = string(payload[off : off+end])
		off += end + 1
	}
	align4()

	if err := readTag("TLEN"); err != nil {
		return Schema{}, err
	}
	s.TypeLen = make([]uint16, typeCount)
	for i := range s.TypeLen {
		if off+2 > len(payload) {
			return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated in TLEN", ErrMalformedInput)
		}
		s.TypeLen[i] = order.Uint16(payload[off : off+2])
		off += 2
	}
	align4()

	if err := readTag("STRC"); err != nil {
		return Schema{}, err
	}
	if off+4 > len(payload) {
		return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated at STRC count", ErrMalformedInput)
	}
	structCount := order.Uint32(payload[off : off+4])
	off += 4
	s.Structs = make([]StructDescriptor, structCount)
	for i := range s.Structs {
		if off+4 > len(payload) {
			return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated in STRC entry", ErrMalformedInput)
		}
		typeIdx := order.Uint16(payload[off : off+2])
		fieldCount := order.Uint16(payload[off+2 : off+4])
		off += 4
		fields := make([]StructField, fieldCount)
		for j := range fields {
			if off+4 > len(payload) {
				return Schema{}, fmt.Errorf("blend: %w: DNA1 truncated in STRC field", ErrMalformedInput)
			}
			fields[j] = StructField{
				TypeIndex: int(order.Uint16(payload[off : off+2])),
				NameIndex: int(order.Uint16(payload[off+2 : off+4])),
			}
			off += 4
		}
		s.Structs[i] = StructDescriptor{TypeIndex: int(typeIdx), Fields: fields}
	}

	return s, nil
}
