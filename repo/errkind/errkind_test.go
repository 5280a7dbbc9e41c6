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

package errkind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := Consistencyf("branch %s not found", "wip")
	require.True(t, Is(err, Consistency))
	require.False(t, Is(err, Fundamental))
	require.False(t, Is(err, Error))
}

func TestIsRejectsPlainErrors(t *testing.T) {
	require.False(t, Is(errors.New("not a RepoError"), Fundamental))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Fundamental, "write commit", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "Fundamental")
	require.Contains(t, err.Error(), "write commit")
	require.Contains(t, err.Error(), "disk full")
}
