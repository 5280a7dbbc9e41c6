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
	"testing"

	"github.com/blendvcs/blendvcs/blend/testfixture"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func synthFile() []byte {
	return testfixture.New().
		AddDNA([]testfixture.DNAOptions{
			{TypeName: "Object", TypeLen: 24, Fields: []testfixture.DNAField{
				{Name: "*next", TypeName: "Object", TypeLen: 8},
				{Name: "*data", TypeName: "void", TypeLen: 8},
				{Name: "id", TypeName: "int", TypeLen: 4},
				{Name: "co[3]", TypeName: "float", TypeLen: 4},
			}},
		}).
		AddBlock("OB01", 0xdeadbeef, 0, 1, make([]byte, 24)).
		Build()
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	raw := synthFile()

	parsed, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, Ptr64, parsed.Header.PointerSize)
	require.Equal(t, LittleEndian, parsed.Header.Endian)

	encoded := Encode(parsed.Header, parsed.Blocks)
	require.True(t, bytes.Equal(raw, encoded), "encode(decode(bytes)) must equal bytes")
}

func TestDecodeRoundTripFromStruct(t *testing.T) {
	raw := synthFile()
	parsed, err := Decode(raw)
	require.NoError(t, err)

	again, err := decodeRaw(Encode(parsed.Header, parsed.Blocks))
	require.NoError(t, err)
	require.Equal(t, parsed.Header, again.Header)
	require.Equal(t, parsed.Blocks, again.Blocks)
}

func TestScrubUnscrubInverts(t *testing.T) {
	raw := synthFile()
	parsed, err := Decode(raw)
	require.NoError(t, err)

	var objBlock SimpleBlock
	for _, b := range parsed.Blocks {
		if b.CodeString() == "OB01" {
			objBlock = b
		}
	}
	require.NotZero(t, objBlock.Code)

	// The object struct's SDNA index is 0 (the only struct in this fixture).
	objBlock.SDNAIndex = 0
	pwp := ScrubBlock(objBlock, parsed.Lookup, parsed.Header)
	require.Equal(t, uint64(0xdeadbeef), pwp.OriginalAddress)
	require.Zero(t, pwp.Block.Address)
	require.NotEmpty(t, pwp.Pointers)

	restored := UnscrubBlock(pwp, parsed.Header)
	require.Equal(t, objBlock, restored)
}

func TestDecodeGzip(t *testing.T) {
	raw := synthFile()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	parsed, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, Encode(parsed.Header, parsed.Blocks), raw)
}

func TestDecodeMalformedInput(t *testing.T) {
	_, err := Decode([]byte("not a blend file at all, and not gzip or zstd either"))
	require.ErrorIs(t, err, ErrMalformedInput)
}
