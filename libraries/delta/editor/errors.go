// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package editor

import (
	"context"
	goerrors "errors"

	"gopkg.in/src-d/go-errors.v1"
)

// ErrBackend is returned when a consumer's backing store fails. Args are the path and the underlying error.
var ErrBackend = errors.NewKind("backend failure at '%s': %v")

// ErrNotFound is returned when an entry a call depends on does not exist.
var ErrNotFound = errors.NewKind("'%s' not found")

// ErrChecksumMismatch is returned when text does not match the checksum the driver supplied.
var ErrChecksumMismatch = errors.NewKind("checksum mismatch for '%s': expected %s, actual %s")

// ErrProtocolViolation is returned when a driver breaks the calling contract.
var ErrProtocolViolation = errors.NewKind("editor protocol violation: %s")

// ErrCancelled is returned when a cancellation check fires.
var ErrCancelled = errors.NewKind("edit cancelled: %v")

// IsKind returns true if err, or any error it wraps or joins, is of the given kind. Kind.Is only looks at err itself.
func IsKind(err error, kind *errors.Kind) bool {
	if err == nil {
		return false
	}

	if kind.Is(err) {
		return true
	}

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsKind(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsKind(e.Unwrap(), kind)
	case interface{ Cause() error }:
		return IsKind(e.Cause(), kind)
	}

	return false
}

// AbortAfter aborts the edit after cause ended it. cause is always returned. An abort failure is joined to it, never
// reported in its place.
func AbortAfter(ctx context.Context, e *Editor, eb Baton, cause error) error {
	abortErr := e.DoAbortEdit(context.WithoutCancel(ctx), eb)
	if abortErr == nil {
		return cause
	}

	return goerrors.Join(cause, abortErr)
}
