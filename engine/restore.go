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
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/blendvcs/blendvcs/blend"
	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

// RestoreResult is returned by RestoreCheckpoint.
type RestoreResult struct {
	CommitHash string
}

// RestoreCheckpoint implements spec §4.5: look up the commit, fetch and
// invert every block in parallel, print the file, and atomically replace
// filePath's contents. If updateHead is true (the normal case), HEAD and the
// current branch config are updated to the restored commit's identity; a
// read-only projection like BlendFileFromTimeline passes false.
func (e *Engine) RestoreCheckpoint(ctx context.Context, filePath, commitHash string, updateHead bool) (RestoreResult, error) {
	db := e.Commits.DB()

	commit, err := commitstore.ReadCommit(ctx, db, commitHash)
	if err != nil {
		return RestoreResult{}, err
	}
	header, err := decodeHeader(commit.HeaderBytes)
	if err != nil {
		return RestoreResult{}, err
	}
	metas, err := store.DeserializeBlockMetadata(commit.BlocksAndPointers)
	if err != nil {
		return RestoreResult{}, errkind.Fundamentalf("engine: deserialize commit metadata: %v", err)
	}

	hashes := make([]string, len(metas))
	for i, m := range metas {
		hashes[i] = m.Hash
	}
	records, err := e.Blocks.GetMany(ctx, db, hashes)
	if err != nil {
		return RestoreResult{}, err
	}

	blocks, err := MapParallel(ctx, metas, e.Workers, func(_ context.Context, i int, m store.BlockMetadata) (blend.SimpleBlock, error) {
		canonical, err := e.Blocks.Unpack(records[i])
		if err != nil {
			return blend.SimpleBlock{}, errkind.Fundamentalf("engine: unpack block %s: %v", m.Hash, err)
		}
		b, err := blend.ParseBlock(canonical, header)
		if err != nil {
			return blend.SimpleBlock{}, errkind.Fundamentalf("engine: parse block %s: %v", m.Hash, err)
		}
		pointers := make([]blend.PointerValue, len(m.Pointers))
		for j, p := range m.Pointers {
			pointers[j] = blend.PointerValue{Offset: p.Offset, Value: p.Value}
		}
		pwp := blend.ParsedBlockWithPointers{
			Block:           b,
			OriginalAddress: m.OriginalAddress,
			Pointers:        pointers,
		}
		return blend.UnscrubBlock(pwp, header), nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	printed := blend.Encode(header, blocks)
	if err := writeCompressedAtomic(filePath, printed); err != nil {
		return RestoreResult{}, err
	}

	if updateHead {
		err = e.Commits.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
			if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigCurrentBranchName, commit.Branch); err != nil {
				return err
			}
			return commitstore.WriteConfig(ctx, tx, commitstore.ConfigCurrentLatestCommit, commit.Hash)
		})
		if err != nil {
			return RestoreResult{}, err
		}
	}

	e.Log.Infow("checkpoint restored", "hash", commit.Hash, "branch", commit.Branch, "file", filePath, "update_head", updateHead)
	return RestoreResult{CommitHash: commit.Hash}, nil
}

// writeCompressedAtomic gzip-encodes data into a temporary file in the same
// directory as path, then atomically renames it over path.
func writeCompressedAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".blendvcs-restore-*")
	if err != nil {
		return errkind.Fundamentalf("engine: create temp file in %s: %v", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		tmp.Close()
		return errkind.Fundamentalf("engine: gzip-encode restored file: %v", err)
	}
	if err := gw.Close(); err != nil {
		tmp.Close()
		return errkind.Fundamentalf("engine: finalize gzip stream: %v", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errkind.Fundamentalf("engine: write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return errkind.Fundamentalf("engine: close temp file: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errkind.Fundamentalf("engine: rename %s to %s: %v", tmpPath, path, err)
	}
	return nil
}
