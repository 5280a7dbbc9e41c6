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

package commitstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.sqlite")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWriteReadCommit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := store.Commit{
		Hash:           "abc123",
		PrevCommitHash: store.InitialCommitHash,
		ProjectID:      "proj",
		Branch:         "main",
		Message:        "first",
		Author:         "tester",
		Date:           100,
		HeaderBytes:    []byte("hdr"),
	}
	require.NoError(t, WriteCommit(ctx, s.DB(), c))

	got, err := ReadCommit(ctx, s.DB(), "abc123")
	require.NoError(t, err)
	require.Equal(t, c.Message, got.Message)

	exists, err := CheckCommitExists(ctx, s.DB(), "abc123")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = ReadCommit(ctx, s.DB(), "missing")
	require.True(t, errkind.Is(err, errkind.Consistency))
}

func TestBranchTipsAndConfig(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, WriteBranchTip(ctx, s.DB(), "main", "c1"))
	tip, err := ReadBranchTip(ctx, s.DB(), "main")
	require.NoError(t, err)
	require.Equal(t, "c1", tip)

	require.NoError(t, WriteBranchTip(ctx, s.DB(), "main", "c2"))
	tip, err = ReadBranchTip(ctx, s.DB(), "main")
	require.NoError(t, err)
	require.Equal(t, "c2", tip, "write_branch_tip upserts")

	_, err = ReadBranchTip(ctx, s.DB(), "dev")
	require.True(t, errkind.Is(err, errkind.Consistency))

	require.NoError(t, WriteConfig(ctx, s.DB(), ConfigCurrentBranchName, "main"))
	val, ok, err := ReadConfig(ctx, s.DB(), ConfigCurrentBranchName)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "main", val)

	_, ok, err = ReadConfig(ctx, s.DB(), "NOT_SET")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteBranchWithCommits(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, WriteBranchTip(ctx, s.DB(), "dev", "c1"))
	require.NoError(t, WriteCommit(ctx, s.DB(), store.Commit{
		Hash: "c1", PrevCommitHash: store.InitialCommitHash, Branch: "dev", ProjectID: "p",
	}))

	require.NoError(t, s.DeleteBranchWithCommits(ctx, "dev"))

	_, err := ReadBranchTip(ctx, s.DB(), "dev")
	require.True(t, errkind.Is(err, errkind.Consistency))
	exists, err := CheckCommitExists(ctx, s.DB(), "c1")
	require.NoError(t, err)
	require.False(t, exists)

	err = s.DeleteBranchWithCommits(ctx, "nonexistent")
	require.True(t, errkind.Is(err, errkind.Consistency))
}

func TestAncestryWalks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	commits := []store.Commit{
		{Hash: "c1", PrevCommitHash: store.InitialCommitHash, Branch: "main", Message: "m1", Date: 1, ProjectID: "p"},
		{Hash: "c2", PrevCommitHash: "c1", Branch: "main", Message: "m2", Date: 2, ProjectID: "p"},
		{Hash: "c3", PrevCommitHash: "c2", Branch: "dev", Message: "m3", Date: 3, ProjectID: "p"},
	}
	for _, c := range commits {
		require.NoError(t, WriteCommit(ctx, s.DB(), c))
	}

	ancestors, err := ReadAncestors(ctx, s.DB(), "c3")
	require.NoError(t, err)
	require.Len(t, ancestors, 3)
	require.Equal(t, "c3", ancestors[0].Hash, "newest first")
	require.Equal(t, "c1", ancestors[2].Hash)

	descendants, err := ReadDescendants(ctx, s.DB(), "c1")
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	require.Equal(t, "c2", descendants[0].Hash, "oldest first")
	require.Equal(t, "c3", descendants[1].Hash)
}

func TestBlockStoreOverSameDB(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.DB().ExecContext(ctx, `INSERT INTO blocks (key, value) VALUES (?, ?)`, "h1", []byte("payload"))
	require.NoError(t, err)

	// Write-once: re-inserting the same key must not error and must not
	// change the stored value.
	_, err = s.DB().ExecContext(ctx,
		`INSERT INTO blocks (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`, "h1", []byte("different"))
	require.NoError(t, err)

	row := s.DB().QueryRowContext(ctx, `SELECT value FROM blocks WHERE key = ?`, "h1")
	var got []byte
	require.NoError(t, row.Scan(&got))
	require.Equal(t, "payload", string(got))
}
