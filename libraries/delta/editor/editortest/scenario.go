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

package editortest

import (
	"context"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// FishOps is the sequence of callbacks DriveFish makes.
var FishOps = []editor.Op{
	editor.OpOpenRoot,
	editor.OpOpenDirectory,
	editor.OpOpenDirectory,
	editor.OpAddFile,
	editor.OpApplyTextDelta,
	editor.OpCloseFile,
	editor.OpCloseDirectory,
	editor.OpCloseDirectory,
	editor.OpCloseEdit,
}

// DriveFish adds the empty file A/fish/tuna under the existing directories A and A/fish. The delta sent for the file
// has no windows. The first failure is returned and no further calls are made. DriveFish does not abort the edit.
//
// The root baton is left open, as a hand written driver of the same sequence would.
func DriveFish(ctx context.Context, e *editor.Editor, eb editor.Baton) error {
	sc := scope.New(nil)
	defer sc.Release()

	root, err := e.DoOpenRoot(ctx, eb, editor.InvalidRevision, sc)
	if err != nil {
		return err
	}

	a, err := e.DoOpenDirectory(ctx, "A", root, editor.InvalidRevision, sc)
	if err != nil {
		return err
	}

	fish, err := e.DoOpenDirectory(ctx, "A/fish", a, editor.InvalidRevision, sc)
	if err != nil {
		return err
	}

	tuna, err := e.DoAddFile(ctx, "A/fish/tuna", fish, nil, sc)
	if err != nil {
		return err
	}

	h, err := e.DoApplyTextDelta(ctx, tuna, "", sc)
	if err != nil {
		return err
	}

	if err := txdelta.Send(ctx, nil, h); err != nil {
		return err
	}

	if err := e.DoCloseFile(ctx, tuna, "", sc); err != nil {
		return err
	}

	if err := e.DoCloseDirectory(ctx, fish, sc); err != nil {
		return err
	}

	if err := e.DoCloseDirectory(ctx, a, sc); err != nil {
		return err
	}

	return e.DoCloseEdit(ctx, eb)
}

// EveryOp is the sequence of callbacks DriveEveryOp makes.
var EveryOp = []editor.Op{
	editor.OpSetTargetRevision,
	editor.OpOpenRoot,
	editor.OpDeleteEntry,
	editor.OpAddDirectory,
	editor.OpChangeDirProp,
	editor.OpAbsentDirectory,
	editor.OpCloseDirectory,
	editor.OpOpenDirectory,
	editor.OpAbsentFile,
	editor.OpOpenFile,
	editor.OpChangeFileProp,
	editor.OpApplyTextDelta,
	editor.OpCloseFile,
	editor.OpCloseDirectory,
	editor.OpCloseDirectory,
	editor.OpCloseEdit,
}

// DriveEveryOp makes a valid edit that uses every callback except AbortEdit. The file A/fish receives the text
// "tuna". The first failure is returned and no further calls are made.
func DriveEveryOp(ctx context.Context, e *editor.Editor, eb editor.Baton) error {
	sc := scope.New(nil)
	defer sc.Release()

	if err := e.DoSetTargetRevision(ctx, eb, 2, sc); err != nil {
		return err
	}

	root, err := e.DoOpenRoot(ctx, eb, 1, sc)
	if err != nil {
		return err
	}

	if err := e.DoDeleteEntry(ctx, "gone", 1, root, sc); err != nil {
		return err
	}

	added, err := e.DoAddDirectory(ctx, "new", root, &editor.CopyFrom{Path: "old", Rev: 1}, sc)
	if err != nil {
		return err
	}

	if err := e.DoChangeDirProp(ctx, added, "owner", []byte("tuna"), sc); err != nil {
		return err
	}

	if err := e.DoAbsentDirectory(ctx, "new/hidden", added, sc); err != nil {
		return err
	}

	if err := e.DoCloseDirectory(ctx, added, sc); err != nil {
		return err
	}

	a, err := e.DoOpenDirectory(ctx, "A", root, 1, sc)
	if err != nil {
		return err
	}

	if err := e.DoAbsentFile(ctx, "A/secret", a, sc); err != nil {
		return err
	}

	fish, err := e.DoOpenFile(ctx, "A/fish", a, 1, sc)
	if err != nil {
		return err
	}

	if err := e.DoChangeFileProp(ctx, fish, "mime-type", []byte("text/plain"), sc); err != nil {
		return err
	}

	h, err := e.DoApplyTextDelta(ctx, fish, "", sc)
	if err != nil {
		return err
	}

	if err := txdelta.SendBytes(ctx, []byte("tuna"), 0, h); err != nil {
		return err
	}

	if err := e.DoCloseFile(ctx, fish, "", sc); err != nil {
		return err
	}

	if err := e.DoCloseDirectory(ctx, a, sc); err != nil {
		return err
	}

	if err := e.DoCloseDirectory(ctx, root, sc); err != nil {
		return err
	}

	return e.DoCloseEdit(ctx, eb)
}

// Invoke makes a single call of op on e with placeholder arguments. node is passed wherever the callback takes a
// directory or file baton, and a window handler returned by ApplyTextDelta receives only the final nil window.
func Invoke(ctx context.Context, e *editor.Editor, op editor.Op, eb, node editor.Baton) error {
	sc := scope.New(nil)
	defer sc.Release()

	var err error
	switch op {
	case editor.OpSetTargetRevision:
		err = e.DoSetTargetRevision(ctx, eb, 1, sc)
	case editor.OpOpenRoot:
		_, err = e.DoOpenRoot(ctx, eb, 1, sc)
	case editor.OpDeleteEntry:
		err = e.DoDeleteEntry(ctx, "x", 1, node, sc)
	case editor.OpAddDirectory:
		_, err = e.DoAddDirectory(ctx, "x", node, nil, sc)
	case editor.OpOpenDirectory:
		_, err = e.DoOpenDirectory(ctx, "x", node, 1, sc)
	case editor.OpChangeDirProp:
		err = e.DoChangeDirProp(ctx, node, "p", nil, sc)
	case editor.OpCloseDirectory:
		err = e.DoCloseDirectory(ctx, node, sc)
	case editor.OpAbsentDirectory:
		err = e.DoAbsentDirectory(ctx, "x", node, sc)
	case editor.OpAddFile:
		_, err = e.DoAddFile(ctx, "x", node, nil, sc)
	case editor.OpOpenFile:
		_, err = e.DoOpenFile(ctx, "x", node, 1, sc)
	case editor.OpApplyTextDelta:
		var h txdelta.WindowHandler
		if h, err = e.DoApplyTextDelta(ctx, node, "", sc); err == nil && h != nil {
			err = h(nil)
		}
	case editor.OpChangeFileProp:
		err = e.DoChangeFileProp(ctx, node, "p", nil, sc)
	case editor.OpCloseFile:
		err = e.DoCloseFile(ctx, node, "", sc)
	case editor.OpAbsentFile:
		err = e.DoAbsentFile(ctx, "x", node, sc)
	case editor.OpCloseEdit:
		err = e.DoCloseEdit(ctx, eb)
	case editor.OpAbortEdit:
		err = e.DoAbortEdit(ctx, eb)
	}

	return err
}
