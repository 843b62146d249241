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

// The Do methods call a callback if it is present and otherwise return zero values, so that drivers do not need to
// check for absent callbacks themselves.

func (e *Editor) DoSetTargetRevision(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error {
	if !e.Has(OpSetTargetRevision) {
		return nil
	}
	return e.SetTargetRevision(ctx, eb, rev, sc)
}

func (e *Editor) DoOpenRoot(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	if !e.Has(OpOpenRoot) {
		return nil, nil
	}
	return e.OpenRoot(ctx, eb, baseRev, sc)
}

func (e *Editor) DoDeleteEntry(ctx context.Context, path string, rev Revision, parent Baton, sc *scope.Scope) error {
	if !e.Has(OpDeleteEntry) {
		return nil
	}
	return e.DeleteEntry(ctx, path, rev, parent, sc)
}

func (e *Editor) DoAddDirectory(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
	if !e.Has(OpAddDirectory) {
		return nil, nil
	}
	return e.AddDirectory(ctx, path, parent, copyFrom, sc)
}

func (e *Editor) DoOpenDirectory(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	if !e.Has(OpOpenDirectory) {
		return nil, nil
	}
	return e.OpenDirectory(ctx, path, parent, baseRev, sc)
}

func (e *Editor) DoChangeDirProp(ctx context.Context, dir Baton, name string, value []byte, sc *scope.Scope) error {
	if !e.Has(OpChangeDirProp) {
		return nil
	}
	return e.ChangeDirProp(ctx, dir, name, value, sc)
}

func (e *Editor) DoCloseDirectory(ctx context.Context, dir Baton, sc *scope.Scope) error {
	if !e.Has(OpCloseDirectory) {
		return nil
	}
	return e.CloseDirectory(ctx, dir, sc)
}

func (e *Editor) DoAbsentDirectory(ctx context.Context, path string, parent Baton, sc *scope.Scope) error {
	if !e.Has(OpAbsentDirectory) {
		return nil
	}
	return e.AbsentDirectory(ctx, path, parent, sc)
}

func (e *Editor) DoAddFile(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
	if !e.Has(OpAddFile) {
		return nil, nil
	}
	return e.AddFile(ctx, path, parent, copyFrom, sc)
}

func (e *Editor) DoOpenFile(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	if !e.Has(OpOpenFile) {
		return nil, nil
	}
	return e.OpenFile(ctx, path, parent, baseRev, sc)
}

func (e *Editor) DoApplyTextDelta(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
	if !e.Has(OpApplyTextDelta) {
		return nil, nil
	}
	return e.ApplyTextDelta(ctx, file, baseChecksum, sc)
}

func (e *Editor) DoChangeFileProp(ctx context.Context, file Baton, name string, value []byte, sc *scope.Scope) error {
	if !e.Has(OpChangeFileProp) {
		return nil
	}
	return e.ChangeFileProp(ctx, file, name, value, sc)
}

func (e *Editor) DoCloseFile(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error {
	if !e.Has(OpCloseFile) {
		return nil
	}
	return e.CloseFile(ctx, file, textChecksum, sc)
}

func (e *Editor) DoAbsentFile(ctx context.Context, path string, parent Baton, sc *scope.Scope) error {
	if !e.Has(OpAbsentFile) {
		return nil
	}
	return e.AbsentFile(ctx, path, parent, sc)
}

func (e *Editor) DoCloseEdit(ctx context.Context, eb Baton) error {
	if !e.Has(OpCloseEdit) {
		return nil
	}
	return e.CloseEdit(ctx, eb)
}

func (e *Editor) DoAbortEdit(ctx context.Context, eb Baton) error {
	if !e.Has(OpAbortEdit) {
		return nil
	}
	return e.AbortEdit(ctx, eb)
}
