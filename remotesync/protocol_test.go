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

package remotesync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blendvcs/blendvcs/store"
)

func sampleExchange() Exchange {
	return Exchange{
		Commits: []store.Commit{
			{
				Hash:              "deadbeef",
				PrevCommitHash:    store.InitialCommitHash,
				ProjectID:         "proj-1",
				Branch:            "main",
				Message:           "first",
				Author:            "alice",
				Date:              1234567,
				HeaderBytes:       []byte{1, 2, 3},
				BlocksAndPointers: []byte{4, 5, 6, 7},
			},
		},
		Blocks: []store.BlockRecord{
			{ContentHash: "abc123", CompressedBytes: []byte{9, 9, 9}},
		},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	req := SyncRequest{LocalTips: []string{"tip1", "tip2"}, Outgoing: sampleExchange()}

	encoded, err := encodeSyncRequest(req)
	require.NoError(t, err)

	// The server side of the protocol decodes a SyncRequest the same way a
	// client decodes an Exchange response: read local tips, then the
	// embedded exchange.
	r := &envelopeReader{buf: encoded}
	n, err := r.uvarint()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	for i := 0; i < int(n); i++ {
		tip, err := r.string()
		require.NoError(t, err)
		require.Equal(t, req.LocalTips[i], tip)
	}

	decoded, err := decodeExchange(encoded[r.off:])
	require.NoError(t, err)
	require.Equal(t, req.Outgoing, decoded)
}

type fakePeer struct {
	response []byte
	calls    int
	failN    int
}

func (p *fakePeer) RoundTrip(_ context.Context, _ string, _ []byte) ([]byte, error) {
	p.calls++
	if p.calls <= p.failN {
		return nil, errTransient
	}
	return p.response, nil
}

var errTransient = errors.New("transient peer failure")

func TestCloneAllRetriesTransientFailures(t *testing.T) {
	ex := sampleExchange()
	body, err := encodeSyncRequest(SyncRequest{Outgoing: ex})
	require.NoError(t, err)
	// encodeSyncRequest prefixes local tip count; clone's response is a bare
	// Exchange, so strip that one leading varint byte (zero tips -> 0x00).
	respBody := body[1:]

	peer := &fakePeer{response: respBody, failN: 1}
	got, err := CloneAll(context.Background(), peer, "proj-1")
	require.NoError(t, err)
	require.Equal(t, ex, got)
	require.Equal(t, 2, peer.calls)
}
