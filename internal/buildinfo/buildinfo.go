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

// Package buildinfo holds version metadata the CLI reports via its version
// subcommand.
// Version and Commit are overridden at release build time with
// -ldflags "-X .../buildinfo.Version=... -X .../buildinfo.Commit=...".
package buildinfo

import "runtime"

var (
	Version = "dev"
	Commit  = "unknown"
)

// String formats a one-line version report for the CLI's version subcommand.
func String() string {
	return Version + " (" + Commit + ", " + runtime.Version() + ")"
}
