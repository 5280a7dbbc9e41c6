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

// Package commitstore is the relational store holding commits, branch tips,
// the repository's blocks, and a small key-value config namespace. It is
// backed by modernc.org/sqlite so the whole repository lives in one
// cgo-free, single-file SQLite database.
package commitstore

import (
	"context"
	"database/sql"

	"github.com/blendvcs/blendvcs/repo/errkind"
)

// schemaDDL creates the four tables of spec §6 if they do not already
// exist. Applying it more than once is a no-op, matching the teacher's
// idempotent-migration idiom (see migrations.Migrator in the reference
// corpus) without needing a version-tracked migration log, since this
// schema has exactly one version.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS commits (
		hash TEXT PRIMARY KEY,
		prev_commit_hash TEXT NOT NULL,
		project_id TEXT NOT NULL,
		branch TEXT NOT NULL,
		message TEXT NOT NULL,
		author TEXT NOT NULL,
		date INTEGER NOT NULL,
		header BLOB NOT NULL,
		blocks_and_pointers BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_commits_branch ON commits(branch)`,
	`CREATE INDEX IF NOT EXISTS idx_commits_prev ON commits(prev_commit_hash)`,
	`CREATE TABLE IF NOT EXISTS branches (
		name TEXT PRIMARY KEY,
		tip TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blocks (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// ensureSchema applies schemaDDL inside the open database handle.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errkind.Fundamentalf("commitstore: schema creation failed: %v", err)
		}
	}
	return nil
}
