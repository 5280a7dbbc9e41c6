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

package blockstore

import (
	"context"
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
)

// defaultCacheSize bounds the in-process decompressed-block cache.
const defaultCacheSize = 4096

// Querier is the subset of *sql.DB / *sql.Tx this package needs, letting
// callers route block writes through an ongoing commit-store transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store is the content-addressed block store: a keyed blob map with
// write-once semantics per key, backed by the shared repository SQLite file.
type Store struct {
	cache *lru.Cache[string, []byte]
}

// New returns a Store with a bounded read cache.
func New() *Store {
	c, _ := lru.New[string, []byte](defaultCacheSize)
	return &Store{cache: c}
}

// PutMany inserts records into q's blocks table. Inserting a hash that
// already exists is a silent no-op (write-once semantics).
func (s *Store) PutMany(ctx context.Context, q Querier, records []store.BlockRecord) error {
	for _, r := range records {
		_, err := q.ExecContext(ctx,
			`INSERT INTO blocks (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
			r.ContentHash, r.CompressedBytes)
		if err != nil {
			return errkind.Fundamentalf("blockstore: put block %s: %v", r.ContentHash, err)
		}
	}
	return nil
}

// GetMany reads the compressed records for the given hashes, in the order
// requested. A missing hash is a Consistency error: every hash referenced by
// a live commit's metadata must exist in the block store.
func (s *Store) GetMany(ctx context.Context, q Querier, hashes []string) ([]store.BlockRecord, error) {
	out := make([]store.BlockRecord, len(hashes))
	for i, h := range hashes {
		rows, err := q.QueryContext(ctx, `SELECT value FROM blocks WHERE key = ?`, h)
		if err != nil {
			return nil, errkind.Fundamentalf("blockstore: get block %s: %v", h, err)
		}
		var value []byte
		found := false
		if rows.Next() {
			if err := rows.Scan(&value); err != nil {
				rows.Close()
				return nil, errkind.Fundamentalf("blockstore: scan block %s: %v", h, err)
			}
			found = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, errkind.Fundamentalf("blockstore: iterate block %s: %v", h, err)
		}
		rows.Close()
		if !found {
			return nil, errkind.Consistencyf("blockstore: block %s referenced but not found", h)
		}
		out[i] = store.BlockRecord{ContentHash: h, CompressedBytes: value}
	}
	return out, nil
}

// Pack compresses canonical (uncompressed) block bytes into a BlockRecord
// keyed by their content hash.
func Pack(canonical []byte) store.BlockRecord {
	return store.BlockRecord{ContentHash: Hash(canonical), CompressedBytes: compress(canonical)}
}

// Unpack decompresses a BlockRecord's bytes back into canonical form,
// consulting and populating the read cache.
func (s *Store) Unpack(r store.BlockRecord) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(r.ContentHash); ok {
			return v, nil
		}
	}
	out, err := decompress(r.CompressedBytes)
	if err != nil {
		return nil, fmt.Errorf("blockstore: unpack %s: %w", r.ContentHash, err)
	}
	if s.cache != nil {
		s.cache.Add(r.ContentHash, out)
	}
	return out, nil
}
