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
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/blendvcs/blendvcs/blend"
	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
	"github.com/blendvcs/blendvcs/store/blockstore"
	"github.com/blendvcs/blendvcs/store/commitstore"
)

// Engine orchestrates the Checkpoint and Restore pipelines over a single
// repository's commit store and block store.
type Engine struct {
	Commits *commitstore.Store
	Blocks  *blockstore.Store
	Workers int
	Now     func() int64 // overridable for tests; defaults to time.Now().Unix()
	Log     *zap.SugaredLogger
}

// New returns an Engine bound to the given stores, using GOMAXPROCS workers
// and a no-op logger unless overridden on the returned value.
func New(commits *commitstore.Store, blocks *blockstore.Store) *Engine {
	return &Engine{Commits: commits, Blocks: blocks, Log: zap.NewNop().Sugar()}
}

func (e *Engine) now() int64 {
	if e.Now != nil {
		return e.Now()
	}
	return nowUnix()
}

// CheckpointResult is returned by CreateCheckpoint.
type CheckpointResult struct {
	CommitHash string
	Created    bool // false when the checkpoint was a no-op (already up to date)
}

// CreateCheckpoint implements spec §4.4: parse the file, scrub and hash its
// blocks in parallel, compute the commit identity, enforce the detached-HEAD
// rule, and atomically persist the dedup delta, the commit row, and the
// updated branch tip / HEAD / LAST_MOD_TIME.
func (e *Engine) CreateCheckpoint(ctx context.Context, filePath, message, author string) (CheckpointResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return CheckpointResult{}, errkind.Fundamentalf("engine: stat %s: %v", filePath, err)
	}
	fileMTime := info.ModTime().Unix()

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return CheckpointResult{}, errkind.Fundamentalf("engine: read %s: %v", filePath, err)
	}
	parsed, err := blend.Decode(raw)
	if err != nil {
		return CheckpointResult{}, errkind.Errorf("engine: decode %s: %v", filePath, err)
	}

	metas, records, err := e.scrubAndHash(ctx, parsed)
	if err != nil {
		return CheckpointResult{}, err
	}
	serialized := store.SerializeBlockMetadata(metas)
	commitHash := blockstore.Hash(serialized)

	db := e.Commits.DB()

	headHash, headOK, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentLatestCommit)
	if err != nil {
		return CheckpointResult{}, err
	}

	lastModStr, lastModOK, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigLastModTime)
	if err != nil {
		return CheckpointResult{}, err
	}
	mtimeLooksUnchanged := false
	if lastModOK {
		lastMod, convErr := strconv.ParseInt(lastModStr, 10, 64)
		mtimeLooksUnchanged = convErr == nil && fileMTime <= lastMod
	}

	if mtimeLooksUnchanged {
		if headOK && headHash == commitHash {
			// mtime bookkeeping and content both say nothing changed: the
			// mandatory rejection from spec §8.
			return CheckpointResult{}, errkind.Errorf("file not modified since the last change")
		}
		// mtime looks stale but the content hash actually differs from
		// HEAD; fall through and checkpoint anyway (resolves the
		// non-monotonic mtime Open Question from spec §9 without
		// bypassing the rejection above for genuinely unchanged content).
	} else if headOK && headHash == commitHash {
		// mtime advanced but content is identical to HEAD: idempotent
		// no-op, not an error.
		return CheckpointResult{CommitHash: commitHash, Created: false}, nil
	}

	exists, err := commitstore.CheckCommitExists(ctx, db, commitHash)
	if err != nil {
		return CheckpointResult{}, err
	}
	if exists {
		return CheckpointResult{CommitHash: commitHash, Created: false}, nil
	}

	branchName, ok, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigCurrentBranchName)
	if err != nil {
		return CheckpointResult{}, err
	}
	if !ok {
		return CheckpointResult{}, errkind.Consistencyf("engine: CURRENT_BRANCH_NAME not set")
	}
	branchTip, err := commitstore.ReadBranchTip(ctx, db, branchName)
	if err != nil {
		return CheckpointResult{}, err
	}
	if headOK && headHash != branchTip {
		return CheckpointResult{}, errkind.Consistencyf("create a new branch to create a checkpoint")
	}

	projectID, _, err := commitstore.ReadConfig(ctx, db, commitstore.ConfigProjectID)
	if err != nil {
		return CheckpointResult{}, err
	}

	prevHash := store.InitialCommitHash
	if headOK {
		prevHash = headHash
	}
	newBlocks, err := e.dedupDelta(ctx, prevHash, records)
	if err != nil {
		return CheckpointResult{}, err
	}

	commit := store.Commit{
		Hash:              commitHash,
		PrevCommitHash:    prevHash,
		ProjectID:         projectID,
		Branch:            branchName,
		Message:           message,
		Author:            author,
		Date:              e.now(),
		HeaderBytes:       encodeHeader(parsed.Header),
		BlocksAndPointers: serialized,
	}

	err = e.Commits.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		if err := e.Blocks.PutMany(ctx, tx, newBlocks); err != nil {
			return err
		}
		if err := commitstore.WriteBranchTip(ctx, tx, branchName, commitHash); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigLastModTime, strconv.FormatInt(fileMTime, 10)); err != nil {
			return err
		}
		if err := commitstore.WriteConfig(ctx, tx, commitstore.ConfigCurrentLatestCommit, commitHash); err != nil {
			return err
		}
		return commitstore.WriteCommit(ctx, tx, commit)
	})
	if err != nil {
		return CheckpointResult{}, err
	}

	e.Log.Infow("checkpoint created", "hash", commitHash, "branch", branchName, "new_blocks", len(newBlocks))
	return CheckpointResult{CommitHash: commitHash, Created: true}, nil
}

// scrubAndHash scrubs and hashes every block of parsed in parallel,
// preserving block order, then packs each into a compressed BlockRecord.
func (e *Engine) scrubAndHash(ctx context.Context, parsed blend.ParsedFile) ([]store.BlockMetadata, []store.BlockRecord, error) {
	type pair struct {
		meta   store.BlockMetadata
		record store.BlockRecord
	}
	pairs, err := MapParallel(ctx, parsed.Blocks, e.Workers, func(_ context.Context, _ int, b blend.SimpleBlock) (pair, error) {
		pwp := blend.ScrubBlock(b, parsed.Lookup, parsed.Header)
		canonical := blend.EncodeBlock(parsed.Header, pwp.Block)
		record := blockstore.Pack(canonical)
		pointers := make([]store.PointerValue, len(pwp.Pointers))
		for i, pv := range pwp.Pointers {
			pointers[i] = store.PointerValue{Offset: pv.Offset, Value: pv.Value}
		}
		return pair{
			meta: store.BlockMetadata{
				Hash:            record.ContentHash,
				OriginalAddress: pwp.OriginalAddress,
				Pointers:        pointers,
			},
			record: record,
		}, nil
	})
	if err != nil {
		return nil, nil, errkind.Fundamentalf("engine: scrub/hash blocks: %v", err)
	}
	metas := make([]store.BlockMetadata, len(pairs))
	records := make([]store.BlockRecord, len(pairs))
	for i, p := range pairs {
		metas[i] = p.meta
		records[i] = p.record
	}
	return metas, records, nil
}

// dedupDelta returns the subset of records whose hashes are not present in
// the parent commit's metadata vector. If there is no parent (prevHash is
// the initial sentinel), every record is new.
func (e *Engine) dedupDelta(ctx context.Context, prevHash string, records []store.BlockRecord) ([]store.BlockRecord, error) {
	if prevHash == store.InitialCommitHash {
		return records, nil
	}
	parent, err := commitstore.ReadCommit(ctx, e.Commits.DB(), prevHash)
	if err != nil {
		return nil, err
	}
	parentMetas, err := store.DeserializeBlockMetadata(parent.BlocksAndPointers)
	if err != nil {
		return nil, errkind.Fundamentalf("engine: deserialize parent metadata: %v", err)
	}
	known := make(map[string]bool, len(parentMetas))
	for _, m := range parentMetas {
		known[m.Hash] = true
	}
	var delta []store.BlockRecord
	for _, r := range records {
		if !known[r.ContentHash] {
			delta = append(delta, r)
		}
	}
	return delta, nil
}

// encodeHeader serializes a blend.Header into the fixed bytes stored on the
// commit row, so Restore can reconstruct pointer size and endianness without
// re-parsing a file.
func encodeHeader(h blend.Header) []byte {
	ptr := byte('-')
	if h.PointerSize == blend.Ptr32 {
		ptr = '_'
	}
	endian := byte('V')
	if h.Endian == blend.LittleEndian {
		endian = 'v'
	}
	return []byte(fmt.Sprintf("%c%c%s", ptr, endian, h.Version[:]))
}

// decodeHeader inverts encodeHeader.
func decodeHeader(buf []byte) (blend.Header, error) {
	if len(buf) < 5 {
		return blend.Header{}, errkind.Fundamentalf("engine: malformed stored header")
	}
	h := blend.Header{}
	if buf[0] == '_' {
		h.PointerSize = blend.Ptr32
	} else {
		h.PointerSize = blend.Ptr64
	}
	if buf[1] == 'v' {
		h.Endian = blend.LittleEndian
	} else {
		h.Endian = blend.BigEndian
	}
	copy(h.Version[:], buf[2:5])
	return h, nil
}
