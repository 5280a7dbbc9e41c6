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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

func openTestDB(t *testing.T) *commitstore.Store {
	t.Helper()
	s, err := commitstore.Open(context.Background(), filepath.Join(t.TempDir(), "repo.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPackUnpackRoundTrip(t *testing.T) {
	canonical := []byte("some canonical block bytes")
	rec := Pack(canonical)
	require.Len(t, rec.ContentHash, 128, "BLAKE2b-512 lower-hex is 128 chars")

	bs := New()
	got, err := bs.Unpack(rec)
	require.NoError(t, err)
	require.Equal(t, canonical, got)
}

func TestPutManyIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	bs := New()

	rec := Pack([]byte("content"))
	require.NoError(t, bs.PutMany(ctx, db.DB(), []store.BlockRecord{rec}))
	// Re-inserting the same hash is a silent no-op.
	require.NoError(t, bs.PutMany(ctx, db.DB(), []store.BlockRecord{rec}))

	got, err := bs.GetMany(ctx, db.DB(), []string{rec.ContentHash})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rec.CompressedBytes, got[0].CompressedBytes)
}

func TestGetManyMissingIsConsistencyError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	bs := New()

	_, err := bs.GetMany(ctx, db.DB(), []string{"does-not-exist"})
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Consistency))
}

func TestDedupAcrossTwoCheckpoints(t *testing.T) {
	// Two "files" sharing blocks 1 and 2, differing only in block 3 (K=1
	// differing block). The store must end up with |file1| + K entries.
	ctx := context.Background()
	db := openTestDB(t)
	bs := New()

	shared1 := Pack([]byte("block-one"))
	shared2 := Pack([]byte("block-two"))
	file1Block3 := Pack([]byte("block-three-v1"))
	file2Block3 := Pack([]byte("block-three-v2"))

	require.NoError(t, bs.PutMany(ctx, db.DB(), []store.BlockRecord{shared1, shared2, file1Block3}))
	require.NoError(t, bs.PutMany(ctx, db.DB(), []store.BlockRecord{shared1, shared2, file2Block3}))

	row := db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`)
	var count int
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 4, count, "|blocks(file1)|=3 plus K=1 differing block")
}
