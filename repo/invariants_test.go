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

package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blendvcs/blendvcs/repo/errkind"
)

func TestInvariantMainCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	f, filePath := openFacade(t)
	writeFile(t, filePath, synthBlend(1))
	_, err := f.Init(ctx, filePath, "", "alice")
	require.NoError(t, err)

	_, err = f.DeleteBranch(ctx, mainBranch)
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Error))
}

func TestInvariantCurrentBranchCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	f, filePath := openFacade(t)
	writeFile(t, filePath, synthBlend(1))
	_, err := f.Init(ctx, filePath, "", "alice")
	require.NoError(t, err)

	_, err = f.CreateBranch(ctx, "wip")
	require.NoError(t, err)

	_, err = f.DeleteBranch(ctx, "wip")
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Error))
}

func TestInvariantBranchesOnlyForkFromMain(t *testing.T) {
	ctx := context.Background()
	f, filePath := openFacade(t)
	writeFile(t, filePath, synthBlend(1))
	_, err := f.Init(ctx, filePath, "", "alice")
	require.NoError(t, err)

	_, err = f.CreateBranch(ctx, "wip")
	require.NoError(t, err)

	// Current branch is now "wip"; a second branch cannot fork from it.
	_, err = f.CreateBranch(ctx, "wip-2")
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Consistency))
}

func TestInvariantDetachedHeadBlocksCheckpoint(t *testing.T) {
	ctx := context.Background()
	f, filePath := openFacade(t)
	writeFile(t, filePath, synthBlend(1))
	init, err := f.Init(ctx, filePath, "", "alice")
	require.NoError(t, err)

	writeFile(t, filePath, synthBlend(2))
	after, err := f.CreateCheckpoint(ctx, filePath, "second", "alice")
	require.NoError(t, err)

	// Restore to the first (non-tip) commit: this detaches HEAD from main's
	// tip, which now sits at the "second" commit.
	_, err = f.RestoreCheckpoint(ctx, filePath, init.CurrentCheckpointHash)
	require.NoError(t, err)
	require.NotEqual(t, init.CurrentCheckpointHash, after.CurrentCheckpointHash)

	writeFile(t, filePath, synthBlend(3))
	_, err = f.CreateCheckpoint(ctx, filePath, "from detached head", "alice")
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Consistency))
}

func TestInvariantCannotCheckpointUnchangedFile(t *testing.T) {
	ctx := context.Background()
	f, filePath := openFacade(t)
	writeFile(t, filePath, synthBlend(1))
	_, err := f.Init(ctx, filePath, "", "alice")
	require.NoError(t, err)

	writeFile(t, filePath, synthBlend(2))
	_, err = f.CreateCheckpoint(ctx, filePath, "first change", "alice")
	require.NoError(t, err)

	// Same bytes as the immediately prior checkpoint, file untouched since:
	// this is the mandatory rejection, not a silent no-op.
	_, err = f.CreateCheckpoint(ctx, filePath, "repeat", "alice")
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Error))
}
