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

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// CancelFunc returns an error, normally of kind ErrCancelled, once the edit should stop.
type CancelFunc func() error

// ContextCancelFunc returns a CancelFunc that fails with ErrCancelled once ctx is done.
func ContextCancelFunc(ctx context.Context) CancelFunc {
	return func() error {
		if err := ctx.Err(); err != nil {
			return ErrCancelled.Wrap(err, err)
		}
		return nil
	}
}

// Cancellation returns an editor that calls check before every callback of wrapped, including CloseEdit and
// AbortEdit, and returns check's error without calling wrapped when it fails. If check is nil, wrapped and wb are
// returned as they are. Callbacks absent from wrapped stay absent. Batons are passed through untouched.
//
// Window handlers are not checked. A delta stream that has started runs to its end.
func Cancellation(check CancelFunc, wrapped *Editor, wb Baton) (*Editor, Baton) {
	if check == nil {
		return wrapped, wb
	}

	w := orEmpty(wrapped)
	ce := &Editor{}

	if w.SetTargetRevision != nil {
		ce.SetTargetRevision = func(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error {
			if err := check(); err != nil {
				return err
			}
			return w.SetTargetRevision(ctx, eb, rev, sc)
		}
	}

	if w.OpenRoot != nil {
		ce.OpenRoot = func(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
			if err := check(); err != nil {
				return nil, err
			}
			return w.OpenRoot(ctx, eb, baseRev, sc)
		}
	}

	if w.DeleteEntry != nil {
		ce.DeleteEntry = func(ctx context.Context, path string, rev Revision, parent Baton, sc *scope.Scope) error {
			if err := check(); err != nil {
				return err
			}
			return w.DeleteEntry(ctx, path, rev, parent, sc)
		}
	}

	ce.AddDirectory = cancelAdd(check, w.AddDirectory)
	ce.OpenDirectory = cancelOpen(check, w.OpenDirectory)
	ce.ChangeDirProp = cancelChangeProp(check, w.ChangeDirProp)

	if w.CloseDirectory != nil {
		ce.CloseDirectory = func(ctx context.Context, dir Baton, sc *scope.Scope) error {
			if err := check(); err != nil {
				return err
			}
			return w.CloseDirectory(ctx, dir, sc)
		}
	}

	ce.AbsentDirectory = cancelAbsent(check, w.AbsentDirectory)
	ce.AddFile = cancelAdd(check, w.AddFile)
	ce.OpenFile = cancelOpen(check, w.OpenFile)

	if w.ApplyTextDelta != nil {
		ce.ApplyTextDelta = func(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
			if err := check(); err != nil {
				return nil, err
			}
			return w.ApplyTextDelta(ctx, file, baseChecksum, sc)
		}
	}

	ce.ChangeFileProp = cancelChangeProp(check, w.ChangeFileProp)

	if w.CloseFile != nil {
		ce.CloseFile = func(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error {
			if err := check(); err != nil {
				return err
			}
			return w.CloseFile(ctx, file, textChecksum, sc)
		}
	}

	ce.AbsentFile = cancelAbsent(check, w.AbsentFile)
	ce.CloseEdit = cancelEnd(check, w.CloseEdit)
	ce.AbortEdit = cancelEnd(check, w.AbortEdit)

	return ce, wb
}

func cancelAdd(check CancelFunc, f AddNodeFunc) AddNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
		if err := check(); err != nil {
			return nil, err
		}
		return f(ctx, path, parent, copyFrom, sc)
	}
}

func cancelOpen(check CancelFunc, f OpenNodeFunc) OpenNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
		if err := check(); err != nil {
			return nil, err
		}
		return f(ctx, path, parent, baseRev, sc)
	}
}

func cancelChangeProp(check CancelFunc, f ChangePropFunc) ChangePropFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, node Baton, name string, value []byte, sc *scope.Scope) error {
		if err := check(); err != nil {
			return err
		}
		return f(ctx, node, name, value, sc)
	}
}

func cancelAbsent(check CancelFunc, f AbsentNodeFunc) AbsentNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, sc *scope.Scope) error {
		if err := check(); err != nil {
			return err
		}
		return f(ctx, path, parent, sc)
	}
}

func cancelEnd(check CancelFunc, f EndEditFunc) EndEditFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, eb Baton) error {
		if err := check(); err != nil {
			return err
		}
		return f(ctx, eb)
	}
}
