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
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ParsedFile is the fully decoded, pointer-annotated representation of an
// input file: a header and the ordered blocks with their scrub metadata
// still attached (not yet scrubbed).
type ParsedFile struct {
	Header Header
	Blocks []SimpleBlock
	Schema Schema
	Lookup FieldMetaLookup
}

// Decode accepts raw, gzip-compressed, or zstd-compressed input and returns
// the parsed file. Compression is auto-detected from the first 7 bytes.
func Decode(input []byte) (ParsedFile, error) {
	raw, err := unwrapCompression(input)
	if err != nil {
		return ParsedFile{}, err
	}
	return decodeRaw(raw)
}

// unwrapCompression returns the uncompressed bytes of input, trying the
// literal magic first, then gzip, then zstd.
func unwrapCompression(input []byte) ([]byte, error) {
	if len(input) >= 7 && [7]byte(input[:7]) == magicBytes {
		return input, nil
	}
	if gr, err := gzip.NewReader(bytes.NewReader(input)); err == nil {
		defer gr.Close()
		raw, err := io.ReadAll(gr)
		if err == nil {
			return raw, nil
		}
	}
	if zr, err := zstd.NewReader(bytes.NewReader(input)); err == nil {
		defer zr.Close()
		raw, err := io.ReadAll(zr)
		if err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("blend: %w: not raw, gzip, or zstd framed", ErrMalformedInput)
}

// decodeRaw parses an already-uncompressed buffer.
func decodeRaw(buf []byte) (ParsedFile, error) {
	h, err := parseHeader(buf)
	if err != nil {
		return ParsedFile{}, err
	}
	rest := buf[headerSize:]

	var blocks []SimpleBlock
	var dnaPayload []byte
	for {
		if len(rest) >= 4 && [4]byte(rest[:4]) == endSentinel {
			break
		}
		b, n, err := parseBlock(rest, h)
		if err != nil {
			return ParsedFile{}, err
		}
		if b.Code == dnaBlockCode {
			dnaPayload = b.Data
		}
		blocks = append(blocks, b)
		rest = rest[n:]
		if len(rest) == 0 {
			return ParsedFile{}, fmt.Errorf("blend: %w: missing ENDB sentinel", ErrMalformedInput)
		}
	}
	if dnaPayload == nil {
		return ParsedFile{}, fmt.Errorf("blend: %w: no DNA1 block present", ErrMalformedInput)
	}

	schema, err := parseSchema(dnaPayload, h)
	if err != nil {
		return ParsedFile{}, err
	}
	lookup := buildFieldMetaLookup(schema, h.PointerSize)

	return ParsedFile{Header: h, Blocks: blocks, Schema: schema, Lookup: lookup}, nil
}

// Encode prints header, blocks, and the ENDB sentinel into a single
// uncompressed byte slice. It does not re-apply any compression; callers
// that need a compressed file (e.g. the Restore Engine) gzip the result
// themselves.
func Encode(h Header, blocks []SimpleBlock) []byte {
	buf := writeHeader(make([]byte, 0, headerSize), h)
	for _, b := range blocks {
		buf = printBlock(buf, h, b)
	}
	buf = append(buf, endSentinel[:]...)
	return buf
}

// ScrubBlock zeroes a block's memory address and every pointer field
// described by the file's schema, returning the canonical scrubbed form
// plus the information needed to invert the scrub. It is a pure function of
// its arguments and is safe to call concurrently across blocks.
func ScrubBlock(b SimpleBlock, lookup FieldMetaLookup, h Header) ParsedBlockWithPointers {
	return scrubBlock(b, lookup, h.PointerSize, h.Endian.order())
}

// UnscrubBlock is the exact inverse of ScrubBlock.
func UnscrubBlock(p ParsedBlockWithPointers, h Header) SimpleBlock {
	return unscrubBlock(p, h.PointerSize, h.Endian.order())
}

// EncodeBlock prints a single block's own bytes (code/size/address/sdna
// index/count/payload), with no file header or ENDB sentinel attached. This
// is the canonical form that gets hashed and stored by the Block Store.
func EncodeBlock(h Header, b SimpleBlock) []byte {
	return printBlock(nil, h, b)
}

// ParseBlock parses a single block's canonical bytes (as produced by
// EncodeBlock), using h's pointer size and endianness. Used by the Restore
// Engine, which stores blocks individually rather than as one file.
func ParseBlock(data []byte, h Header) (SimpleBlock, error) {
	b, _, err := parseBlock(data, h)
	return b, err
}
