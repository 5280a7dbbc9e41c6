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
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
)

// Store is the relational Commit Store: commits, branch tips, blocks, and
// config, all in one SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the repository database at path and
// ensures its schema exists. Idempotent.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errkind.Fundamentalf("commitstore: open %s: %v", path, err)
	}
	db.SetMaxOpenConns(1) // single logical writer; avoids SQLITE_BUSY under modernc's driver
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, errkind.Fundamentalf("commitstore: set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, errkind.Fundamentalf("commitstore: enable foreign keys: %v", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle so store/blockstore can share the same
// SQLite file and transaction.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// ExecuteInTransaction runs fn inside a deferred-mode transaction: commits on
// success, rolls back on error (including a panic, which is re-raised after
// rollback).
func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, txErr := s.db.BeginTx(ctx, nil)
	if txErr != nil {
		return errkind.Fundamentalf("commitstore: begin transaction: %v", txErr)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errkind.Fundamentalf("commitstore: commit transaction: %v", err)
	}
	return nil
}

// WriteCommit inserts a commit row. Commits are immutable; this is never
// called twice for the same hash by well-behaved callers (the Checkpoint
// Engine checks CheckCommitExists first).
func WriteCommit(ctx context.Context, q Querier, c store.Commit) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO commits (hash, prev_commit_hash, project_id, branch, message, author, date, header, blocks_and_pointers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Hash, c.PrevCommitHash, c.ProjectID, c.Branch, c.Message, c.Author, c.Date, c.HeaderBytes, c.BlocksAndPointers)
	if err != nil {
		return errkind.Fundamentalf("commitstore: write commit %s: %v", c.Hash, err)
	}
	return nil
}

// ReadCommit returns the commit with the given hash, or a Consistency error
// if it does not exist.
func ReadCommit(ctx context.Context, q Querier, hash string) (store.Commit, error) {
	row := q.QueryRowContext(ctx,
		`SELECT hash, prev_commit_hash, project_id, branch, message, author, date, header, blocks_and_pointers
		 FROM commits WHERE hash = ?`, hash)
	var c store.Commit
	err := row.Scan(&c.Hash, &c.PrevCommitHash, &c.ProjectID, &c.Branch, &c.Message, &c.Author, &c.Date, &c.HeaderBytes, &c.BlocksAndPointers)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Commit{}, errkind.Consistencyf("commitstore: commit %s not found", hash)
	}
	if err != nil {
		return store.Commit{}, errkind.Fundamentalf("commitstore: read commit %s: %v", hash, err)
	}
	return c, nil
}

// CheckCommitExists reports whether a commit with the given hash exists.
func CheckCommitExists(ctx context.Context, q Querier, hash string) (bool, error) {
	row := q.QueryRowContext(ctx, `SELECT 1 FROM commits WHERE hash = ?`, hash)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errkind.Fundamentalf("commitstore: check commit %s: %v", hash, err)
	}
	return true, nil
}

// WriteBranchTip upserts a branch's tip hash.
func WriteBranchTip(ctx context.Context, q Querier, name, hash string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO branches (name, tip) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET tip = excluded.tip`,
		name, hash)
	if err != nil {
		return errkind.Fundamentalf("commitstore: write branch tip %s: %v", name, err)
	}
	return nil
}

// ReadBranchTip returns the tip hash of the named branch, or a Consistency
// error if the branch does not exist.
func ReadBranchTip(ctx context.Context, q Querier, name string) (string, error) {
	row := q.QueryRowContext(ctx, `SELECT tip FROM branches WHERE name = ?`, name)
	var tip string
	err := row.Scan(&tip)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errkind.Consistencyf("commitstore: branch %s not found", name)
	}
	if err != nil {
		return "", errkind.Fundamentalf("commitstore: read branch tip %s: %v", name, err)
	}
	return tip, nil
}

// ReadAllBranches returns every branch, ordered by name.
func ReadAllBranches(ctx context.Context, q Querier) ([]store.Branch, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, tip FROM branches ORDER BY name`)
	if err != nil {
		return nil, errkind.Fundamentalf("commitstore: read all branches: %v", err)
	}
	defer rows.Close()
	var out []store.Branch
	for rows.Next() {
		var b store.Branch
		if err := rows.Scan(&b.Name, &b.Tip); err != nil {
			return nil, errkind.Fundamentalf("commitstore: scan branch: %v", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errkind.Fundamentalf("commitstore: iterate branches: %v", err)
	}
	return out, nil
}

// DeleteBranchWithCommits deletes every commit on branch = name and the
// branch row itself, inside one transaction.
func (s *Store) DeleteBranchWithCommits(ctx context.Context, name string) error {
	return s.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM commits WHERE branch = ?`, name); err != nil {
			return errkind.Fundamentalf("commitstore: delete commits on branch %s: %v", name, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM branches WHERE name = ?`, name)
		if err != nil {
			return errkind.Fundamentalf("commitstore: delete branch %s: %v", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errkind.Fundamentalf("commitstore: rows affected for branch delete %s: %v", name, err)
		}
		if n == 0 {
			return errkind.Consistencyf("commitstore: branch %s not found", name)
		}
		return nil
	})
}

// Recognized config keys (spec §3).
const (
	ConfigCurrentBranchName   = "CURRENT_BRANCH_NAME"
	ConfigCurrentLatestCommit = "CURRENT_LATEST_COMMIT"
	ConfigProjectID           = "PROJECT_ID"
	ConfigLastModTime         = "LAST_MOD_TIME"
	ConfigUserName            = "USER_NAME"
)

// ReadConfig returns the value of key, or "" with ok=false if unset.
func ReadConfig(ctx context.Context, q Querier, key string) (string, bool, error) {
	row := q.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key)
	var val string
	err := row.Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errkind.Fundamentalf("commitstore: read config %s: %v", key, err)
	}
	return val, true, nil
}

// WriteConfig upserts key=value.
func WriteConfig(ctx context.Context, q Querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO config (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return errkind.Fundamentalf("commitstore: write config %s: %v", key, err)
	}
	return nil
}

// Querier is the subset of *sql.DB / *sql.Tx the package-level helpers need,
// so callers can route either a bare connection or an in-flight transaction
// through the same functions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ Querier = (*sql.DB)(nil)
var _ Querier = (*sql.Tx)(nil)
