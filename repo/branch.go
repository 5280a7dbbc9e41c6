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

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

// CreateBranch implements the star-topology rule of spec §4.7: a new branch
// may only be created from main, and it starts at main's current tip. It
// only updates branch/config bookkeeping; the working file is untouched
// until the caller explicitly switches to the new branch.
func (f *Facade) CreateBranch(ctx context.Context, name string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		db := f.commits.DB()

		branchName, ok, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentBranchName)
		if err != nil {
			return err
		}
		if !ok || branchName != mainBranch {
			return errkind.Consistencyf("repo: new branches can only be created from %s", mainBranch)
		}
		if name == mainBranch {
			return errkind.Errorf("repo: branch %s already exists", mainBranch)
		}
		if _, err := commitstore.ReadBranchTip(ctx, db, name); err == nil {
			return errkind.Errorf("repo: branch %s already exists", name)
		}

		tip, err := commitstore.ReadBranchTip(ctx, db, mainBranch)
		if err != nil {
			return err
		}

		if err := commitstore.WriteBranchTip(ctx, db, name, tip); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, db, commitstore.ConfigCurrentBranchName, name); err != nil {
			return err
		}

		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		return innerErr
	})
	return result, err
}

// SwitchToBranch makes an existing branch current and restores the working
// file to that branch's tip.
func (f *Facade) SwitchToBranch(ctx context.Context, filePath, name string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		db := f.commits.DB()
		tip, err := commitstore.ReadBranchTip(ctx, db, name)
		if err != nil {
			return err
		}
		if _, err := f.engine.RestoreCheckpoint(ctx, filePath, tip, true); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, db, commitstore.ConfigCurrentBranchName, name); err != nil {
			return err
		}
		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		return innerErr
	})
	return result, err
}

// DeleteBranch removes a branch and every commit recorded on it. main can
// never be deleted, nor can the branch currently checked out.
func (f *Facade) DeleteBranch(ctx context.Context, name string) (ConnectResult, error) {
	var result ConnectResult
	err := f.withWriteLock(ctx, func() error {
		if name == mainBranch {
			return errkind.Errorf("repo: cannot delete %s", mainBranch)
		}
		db := f.commits.DB()
		current, ok, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentBranchName)
		if err != nil {
			return err
		}
		if ok && current == name {
			return errkind.Errorf("repo: cannot delete the current branch %s", name)
		}
		if err := f.commits.DeleteBranchWithCommits(ctx, name); err != nil {
			return err
		}
		var innerErr error
		result, innerErr = f.connectLocked(ctx)
		return innerErr
	})
	return result, err
}
