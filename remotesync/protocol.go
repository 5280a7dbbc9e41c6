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

// Package remotesync implements the wire-level contract for exchanging
// commits and blocks with a remote peer: a length-prefixed binary envelope
// plus the two round trips a peer can serve (an incremental exchange from
// known tips, and a full clone of every commit under a project). It defines
// only the Peer interface and envelope codec; transports (HTTP, a direct
// socket) are out of scope and supplied by the caller.
package remotesync

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
)

// Exchange is the set of commits and blocks carried in one round trip.
type Exchange struct {
	Commits []store.Commit
	Blocks  []store.BlockRecord
}

// SyncRequest is what a client sends to request an incremental exchange: its
// own tip hashes (one per branch) plus everything it has learned locally
// since the last sync, so the peer can merge it in before replying.
type SyncRequest struct {
	LocalTips []string
	Outgoing  Exchange
}

// Peer is the transport a caller supplies to reach a remote blendvcs
// server; it knows nothing about commits or blocks, only how to round-trip
// an opaque length-prefixed envelope.
type Peer interface {
	RoundTrip(ctx context.Context, path string, body []byte) ([]byte, error)
}

// ExchangeWithPeer posts local knowledge to peer and returns the decoded
// Exchange the peer sends back; merging it into local storage is left to
// the caller. It retries failed round trips with exponential backoff.
func ExchangeWithPeer(ctx context.Context, peer Peer, req SyncRequest) (Exchange, error) {
	body, err := encodeSyncRequest(req)
	if err != nil {
		return Exchange{}, err
	}

	var respBody []byte
	op := func() error {
		b, err := peer.RoundTrip(ctx, "/v1/sync", body)
		if err != nil {
			return err
		}
		respBody = b
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return Exchange{}, errkind.Errorf("remotesync: exchange with peer: %v", err)
	}

	return decodeExchange(respBody)
}

// CloneAll fetches every commit (and the blocks they reference) belonging
// to projectID from peer, for first contact with a repository that has no
// local history yet.
func CloneAll(ctx context.Context, peer Peer, projectID string) (Exchange, error) {
	var respBody []byte
	op := func() error {
		b, err := peer.RoundTrip(ctx, "/v1/clone/"+projectID, nil)
		if err != nil {
			return err
		}
		respBody = b
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return Exchange{}, errkind.Errorf("remotesync: clone from peer: %v", err)
	}
	return decodeExchange(respBody)
}

// EnvelopeTimeout is the recommended per-round-trip deadline a caller should
// apply to the context passed into ExchangeWithPeer/CloneAll; retries happen
// inside that single call, not across repeated caller-level timeouts.
const EnvelopeTimeout = 30 * time.Second

func encodeSyncRequest(req SyncRequest) ([]byte, error) {
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(len(req.LocalTips)))
	for _, tip := range req.LocalTips {
		writeString(&buf, tip)
	}
	writeExchange(&buf, req.Outgoing)
	return buf.Bytes(), nil
}

func writeExchange(buf *bytes.Buffer, ex Exchange) {
	writeUvarint(buf, uint64(len(ex.Commits)))
	for _, c := range ex.Commits {
		writeCommit(buf, c)
	}
	writeUvarint(buf, uint64(len(ex.Blocks)))
	for _, b := range ex.Blocks {
		writeString(buf, b.ContentHash)
		writeBytes(buf, b.CompressedBytes)
	}
}

func writeCommit(buf *bytes.Buffer, c store.Commit) {
	writeString(buf, c.Hash)
	writeString(buf, c.PrevCommitHash)
	writeString(buf, c.ProjectID)
	writeString(buf, c.Branch)
	writeString(buf, c.Message)
	writeString(buf, c.Author)
	writeUvarint(buf, uint64(c.Date))
	writeBytes(buf, c.HeaderBytes)
	writeBytes(buf, c.BlocksAndPointers)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) { writeBytes(buf, []byte(s)) }

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

type envelopeReader struct {
	buf []byte
	off int
}

func (r *envelopeReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, errkind.Fundamentalf("remotesync: malformed envelope: bad varint")
	}
	r.off += n
	return v, nil
}

func (r *envelopeReader) bytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	end := r.off + int(n)
	if end > len(r.buf) {
		return nil, errkind.Fundamentalf("remotesync: malformed envelope: field runs past end")
	}
	b := r.buf[r.off:end]
	r.off = end
	return b, nil
}

func (r *envelopeReader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeExchange(buf []byte) (Exchange, error) {
	r := &envelopeReader{buf: buf}
	nCommits, err := r.uvarint()
	if err != nil {
		return Exchange{}, err
	}
	commits := make([]store.Commit, nCommits)
	for i := range commits {
		c, err := readCommit(r)
		if err != nil {
			return Exchange{}, err
		}
		commits[i] = c
	}
	nBlocks, err := r.uvarint()
	if err != nil {
		return Exchange{}, err
	}
	blocks := make([]store.BlockRecord, nBlocks)
	for i := range blocks {
		hash, err := r.string()
		if err != nil {
			return Exchange{}, err
		}
		data, err := r.bytes()
		if err != nil {
			return Exchange{}, err
		}
		blocks[i] = store.BlockRecord{ContentHash: hash, CompressedBytes: append([]byte(nil), data...)}
	}
	return Exchange{Commits: commits, Blocks: blocks}, nil
}

func readCommit(r *envelopeReader) (store.Commit, error) {
	var c store.Commit
	var err error
	if c.Hash, err = r.string(); err != nil {
		return c, err
	}
	if c.PrevCommitHash, err = r.string(); err != nil {
		return c, err
	}
	if c.ProjectID, err = r.string(); err != nil {
		return c, err
	}
	if c.Branch, err = r.string(); err != nil {
		return c, err
	}
	if c.Message, err = r.string(); err != nil {
		return c, err
	}
	if c.Author, err = r.string(); err != nil {
		return c, err
	}
	date, err := r.uvarint()
	if err != nil {
		return c, err
	}
	c.Date = int64(date)
	if c.HeaderBytes, err = r.bytes(); err != nil {
		return c, err
	}
	hb, err := r.bytes()
	if err != nil {
		return c, err
	}
	c.HeaderBytes = append([]byte(nil), c.HeaderBytes...)
	c.BlocksAndPointers = append([]byte(nil), hb...)
	return c, nil
}
