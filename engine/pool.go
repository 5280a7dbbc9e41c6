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

// Package engine orchestrates the Checkpoint and Restore pipelines that
// connect the binary codec to the block and commit stores.
package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MapParallel applies fn to every item of items using a bounded pool of
// workers (0 means runtime.GOMAXPROCS(0)). Results are returned in the same
// order as items, regardless of completion order — only scheduling is
// parallel, not the result order. The first error observed from any worker
// aborts the remaining work and is returned; results are undefined in that
// case.
func MapParallel[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, idx int, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
