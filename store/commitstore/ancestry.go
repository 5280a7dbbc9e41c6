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

	"github.com/blendvcs/blendvcs/repo/errkind"
	"github.com/blendvcs/blendvcs/store"
)

// ReadAncestors walks prev_commit_hash backward from hash (hash included),
// newest first. Used for the "log" projection.
func ReadAncestors(ctx context.Context, q Querier, hash string) ([]store.AncestorEntry, error) {
	const query = `
		WITH RECURSIVE ancestors(hash, prev_commit_hash, branch, message, date) AS (
			SELECT hash, prev_commit_hash, branch, message, date FROM commits WHERE hash = ?
			UNION ALL
			SELECT c.hash, c.prev_commit_hash, c.branch, c.message, c.date
			FROM commits c
			JOIN ancestors a ON c.hash = a.prev_commit_hash
		)
		SELECT hash, branch, message, date FROM ancestors ORDER BY date DESC`
	rows, err := q.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, errkind.Fundamentalf("commitstore: read ancestors of %s: %v", hash, err)
	}
	defer rows.Close()
	var out []store.AncestorEntry
	for rows.Next() {
		var e store.AncestorEntry
		if err := rows.Scan(&e.Hash, &e.Branch, &e.Message, &e.Date); err != nil {
			return nil, errkind.Fundamentalf("commitstore: scan ancestor: %v", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errkind.Fundamentalf("commitstore: iterate ancestors: %v", err)
	}
	return out, nil
}

// ReadDescendants walks forward from hash via prev_commit_hash = hash
// (hash excluded), oldest first. Used by remote sync to select everything
// derived from a known ancestor.
func ReadDescendants(ctx context.Context, q Querier, hash string) ([]store.AncestorEntry, error) {
	const query = `
		WITH RECURSIVE descendants(hash, prev_commit_hash, branch, message, date) AS (
			SELECT hash, prev_commit_hash, branch, message, date FROM commits WHERE prev_commit_hash = ?
			UNION ALL
			SELECT c.hash, c.prev_commit_hash, c.branch, c.message, c.date
			FROM commits c
			JOIN descendants d ON c.prev_commit_hash = d.hash
		)
		SELECT hash, branch, message, date FROM descendants ORDER BY date ASC`
	rows, err := q.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, errkind.Fundamentalf("commitstore: read descendants of %s: %v", hash, err)
	}
	defer rows.Close()
	var out []store.AncestorEntry
	for rows.Next() {
		var e store.AncestorEntry
		if err := rows.Scan(&e.Hash, &e.Branch, &e.Message, &e.Date); err != nil {
			return nil, errkind.Fundamentalf("commitstore: scan descendant: %v", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errkind.Fundamentalf("commitstore: iterate descendants: %v", err)
	}
	return out, nil
}
