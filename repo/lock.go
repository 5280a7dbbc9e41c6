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

	"github.com/gofrs/flock"

	"github.com/blendvcs/blendvcs/repo/errkind"
)

// withWriteLock acquires an advisory lock on the repository's sidecar lock
// file for the duration of fn, serializing mutating operations against
// other blendvcs processes on the same repository (spec §5's single logical
// writer model). Read-only operations do not take this lock.
func (f *Facade) withWriteLock(ctx context.Context, fn func() error) error {
	lock := flock.New(f.repoPath + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return errkind.Fundamentalf("repo: acquire write lock: %v", err)
	}
	if !locked {
		return errkind.Errorf("repo: another process holds the write lock on %s", f.repoPath)
	}
	defer lock.Unlock()
	return fn()
}
