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

package engine

import (
	"context"
	"database/sql"
	"os"
	"strconv"

	"github.com/blendvcs/blendvcs/blend"
	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
	"github.com/blendvcs/blendvcs/store/blockstore"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

// CreateInitialCheckpoint emits the magic first commit of a fresh
// repository: parsed's blocks are scrubbed, hashed, and stored in full (no
// parent to dedup against), the PROJECT_ID/USER_NAME/CURRENT_BRANCH_NAME/
// CURRENT_LATEST_COMMIT/LAST_MOD_TIME config rows are seeded, and branch is
// pointed at the new commit. Callers (the Repository Facade) are
// responsible for rejecting a second call against an already-initialized
// repository.
func (e *Engine) CreateInitialCheckpoint(ctx context.Context, parsed blend.ParsedFile, filePath, projectID, userName, branch string) (CheckpointResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return CheckpointResult{}, errkind.Fundamentalf("engine: stat %s: %v", filePath, err)
	}

	metas, records, err := e.scrubAndHash(ctx, parsed)
	if err != nil {
		return CheckpointResult{}, err
	}
	serialized := store.SerializeBlockMetadata(metas)
	commitHash := blockstore.Hash(serialized)

	commit := store.Commit{
		Hash:              commitHash,
		PrevCommitHash:    store.InitialCommitHash,
		ProjectID:         projectID,
		Branch:            branch,
		Message:           "initial checkpoint",
		Author:            userName,
		Date:              e.now(),
		HeaderBytes:       encodeHeader(parsed.Header),
		BlocksAndPointers: serialized,
	}

	err = e.Commits.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		if err := e.Blocks.PutMany(ctx, tx, records); err != nil {
			return err
		}
		if err := commitstore.WriteBranchTip(ctx, tx, branch, commitHash); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigProjectID, projectID); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigUserName, userName); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigCurrentBranchName, branch); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigCurrentLatestCommit, commitHash); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigLastModTime, strconv.FormatInt(info.ModTime().Unix(), 10)); err != nil {
			return err
		}
		return commitstore.WriteCommit(ctx, tx, commit)
	})
	if err != nil {
		return CheckpointResult{}, err
	}

	e.Log.Infow("initial checkpoint created", "hash", commitHash, "branch", branch, "project_id", projectID)
	return CheckpointResult{CommitHash: commitHash, Created: true}, nil
}
