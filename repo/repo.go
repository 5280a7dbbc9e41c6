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

// Package repo is the Repository Facade: it opens and initializes storage,
// enforces the detached-HEAD and main-branch invariants, and exposes the
// operations consumed by adapters (a CLI, a command dispatcher, a remote
// sync service).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blendvcs/blendvcs/blend"
	"github.com/blendvcs/blendvcs/engine"
	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
	"github.com/blendvcs/blendvcs/store/blockstore"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

const lockRetryInterval = 50 * time.Millisecond

// mainBranch is the always-present root branch; a star topology of other
// branches hangs off it.
const mainBranch = "main"

// Facade is the sole API surface consumed by external adapters.
type Facade struct {
	repoPath string
	commits  *commitstore.Store
	blocks   *blockstore.Store
	engine   *engine.Engine
	log      *zap.SugaredLogger
}

// Checkpoint is one row of a branch's checkpoint list.
type Checkpoint struct {
	Hash    string
	Branch  string
	Message string
	Date    int64
}

// ConnectResult is returned by Connect and, as a common projection, by
// several other facade operations.
type ConnectResult struct {
	Branches              []store.Branch
	CurrentBranchName     string
	CheckpointsOnCurrent  []Checkpoint
	CurrentCheckpointHash string
}

// Open opens an existing repository file at repoPath without touching the
// working file. Use Init to create a brand-new repository.
func Open(ctx context.Context, repoPath string) (*Facade, error) {
	commits, err := commitstore.Open(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	blocks := blockstore.New()
	eng := engine.New(commits, blocks)
	log := zap.NewNop().Sugar()
	eng.Log = log
	return &Facade{repoPath: repoPath, commits: commits, blocks: blocks, engine: eng, log: log}, nil
}

// SetLogger installs a structured logger used for all subsequent
// operations; by default Open installs a no-op logger.
func (f *Facade) SetLogger(l *zap.SugaredLogger) {
	f.log = l
	f.engine.Log = l
}

func (f *Facade) Close() error { return f.commits.Close() }

// Init creates a brand-new repository at repoPath (if one does not already
// exist there) and emits the magic initial commit for filePath's current
// contents on main. projectID may be empty, in which case one is generated.
func (f *Facade) Init(ctx context.Context, filePath, projectID, userName string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		db := f.commits.DB()

		if _, ok, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentBranchName); err != nil {
			return err
		} else if ok {
			return errkind.Errorf("repo: already initialized")
		}

		if projectID == "" {
			projectID = uuid.NewString()
		}

		raw, err := readFile(filePath)
		if err != nil {
			return err
		}
		parsed, err := blend.Decode(raw)
		if err != nil {
			return errkind.Errorf("repo: decode %s: %v", filePath, err)
		}

		res, err := f.engine.CreateInitialCheckpoint(ctx, parsed, filePath, projectID, userName, mainBranch)
		if err != nil {
			return err
		}

		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		_ = res
		return innerErr
	})
	return result, err
}

// Connect reports the current repository state: every branch, the current
// branch, its checkpoint list, and HEAD.
func (f *Facade) Connect(ctx context.Context) (ConnectResult, error) {
	return f.connectLocked(ctx)
}

func (f *Facade) connectLocked(ctx context.Context) (ConnectResult, error) {
	db := f.commits.DB()
	branches, err := commitstore.ReadAllBranches(ctx, db)
	if err != nil {
		return ConnectResult{}, err
	}
	branchName, ok, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentBranchName)
	if err != nil {
		return ConnectResult{}, err
	}
	if !ok {
		return ConnectResult{}, errkind.Consistencyf("repo: CURRENT_BRANCH_NAME not set; run Init first")
	}
	head, _, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentLatestCommit)
	if err != nil {
		return ConnectResult{}, err
	}
	checkpoints, err := f.listCheckpoints(ctx, branchName)
	if err != nil {
		return ConnectResult{}, err
	}
	return ConnectResult{
		Branches:              branches,
		CurrentBranchName:     branchName,
		CheckpointsOnCurrent:  checkpoints,
		CurrentCheckpointHash: head,
	}, nil
}

// listCheckpoints returns the ancestry of branch's tip, newest first.
func (f *Facade) listCheckpoints(ctx context.Context, branch string) ([]Checkpoint, error) {
	db := f.commits.DB()
	tip, err := commitstore.ReadBranchTip(ctx, db, branch)
	if err != nil {
		return nil, err
	}
	entries, err := commitstore.ReadAncestors(ctx, db, tip)
	if err != nil {
		return nil, err
	}
	out := make([]Checkpoint, len(entries))
	for i, e := range entries {
		out[i] = Checkpoint{Hash: e.Hash, Branch: e.Branch, Message: e.Message, Date: e.Date}
	}
	return out, nil
}

// CreateCheckpoint checkpoints filePath's current contents onto the current
// branch, then returns the updated checkpoint list and HEAD.
func (f *Facade) CreateCheckpoint(ctx context.Context, filePath, message, author string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		if _, err := f.engine.CreateCheckpoint(ctx, filePath, message, author); err != nil {
			return err
		}
		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		return innerErr
	})
	return result, err
}

// RestoreCheckpoint restores commitHash's contents into filePath and moves
// HEAD (and the current branch) to that commit. If commitHash is not the
// tip of its branch, the repository enters the detached-HEAD state and
// CreateCheckpoint will refuse until the caller branches.
func (f *Facade) RestoreCheckpoint(ctx context.Context, filePath, commitHash string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		if _, err := f.engine.RestoreCheckpoint(ctx, filePath, commitHash, true); err != nil {
			return err
		}
		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		return innerErr
	})
	return result, err
}

// BlendFileFromTimeline restores main's tip into a sibling file next to
// filePath (never the live working file) without touching HEAD or branch
// config. Supplemented feature from the original implementation's
// blend_file_from_timeline_command.
func (f *Facade) BlendFileFromTimeline(ctx context.Context, filePath string) (string, error) {
	sibling := siblingTimelinePath(filePath)
	err := f.withWriteLock(ctx, func() error {
		tip, err := commitstore.ReadBranchTip(ctx, f.commits.DB(), mainBranch)
		if err != nil {
			return err
		}
		_, err = f.engine.RestoreCheckpoint(ctx, sibling, tip, false)
		return err
	})
	if err != nil {
		return "", err
	}
	return sibling, nil
}

// readFile reads filePath, wrapping any error as a Fundamental RepoError.
func readFile(path string) ([]byte, error) {
	data, err := readFileRaw(path)
	if err != nil {
		return nil, errkind.Fundamentalf("repo: read %s: %v", path, err)
	}
	return data, nil
}
