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

// Package errkind defines the three-way error taxonomy every storage and
// engine call site in this project uses: Fundamental, Consistency, and
// Error, per the error handling design.
package errkind

import "fmt"

// Kind classifies a RepoError by how a caller should react to it.
type Kind int

const (
	// Fundamental errors mean storage is unreachable or schema creation
	// failed; unrecoverable by the caller.
	Fundamental Kind = iota
	// Consistency errors mean an invariant was violated (a missing block
	// for a known hash, a missing branch tip or unknown branch, a HEAD
	// that names no commit, a restore target that doesn't exist, a
	// checkpoint refused on a detached HEAD). Safe to retry after
	// operator action.
	Consistency
	// Error is an ordinary recoverable failure surfaced as a
	// user-visible message (file not modified, deleting main, deleting
	// the current branch).
	Error
)

func (k Kind) String() string {
	switch k {
	case Fundamental:
		return "Fundamental"
	case Consistency:
		return "Consistency"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// RepoError is the concrete error type returned across package boundaries in
// this project. Its Kind tells the caller whether the failure is
// unrecoverable, an invariant violation, or an ordinary user-facing error.
type RepoError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *RepoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *RepoError) Unwrap() error { return e.Err }

// New builds a RepoError without a wrapped cause.
func New(kind Kind, msg string) *RepoError {
	return &RepoError{Kind: kind, Msg: msg}
}

// Wrap builds a RepoError around an existing error.
func Wrap(kind Kind, msg string, err error) *RepoError {
	return &RepoError{Kind: kind, Msg: msg, Err: err}
}

// Fundamentalf, Consistencyf, and Errorf are fmt.Errorf-style constructors
// for each kind.
func Fundamentalf(format string, args ...any) *RepoError {
	return &RepoError{Kind: Fundamental, Msg: fmt.Sprintf(format, args...)}
}

func Consistencyf(format string, args ...any) *RepoError {
	return &RepoError{Kind: Consistency, Msg: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) *RepoError {
	return &RepoError{Kind: Error, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *RepoError of the given kind.
func Is(err error, kind Kind) bool {
	var re *RepoError
	if e, ok := err.(*RepoError); ok {
		re = e
	} else {
		return false
	}
	return re.Kind == kind
}
