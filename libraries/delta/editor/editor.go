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

// Package editor defines the tree delta editor: the set of callbacks a driver invokes to describe a change to a tree
// of directories and files, one node at a time, without either side holding the whole tree or the whole change.
//
// The consumer hands out batons. OpenRoot turns the edit baton into a directory baton for the root of the edit,
// AddDirectory and OpenDirectory turn a directory baton into a child directory baton, and AddFile and OpenFile turn a
// directory baton into a file baton. Every baton is closed exactly once with CloseDirectory or CloseFile, and the edit
// ends with CloseEdit or, when the driver cannot finish, AbortEdit.
//
// Drivers must issue calls as a single depth first traversal:
//
//  1. DeleteEntry is called at most once on an entry and may be followed by AddDirectory or AddFile on the same entry.
//     It is never called on an entry after OpenDirectory, AddDirectory, OpenFile or AddFile targeted it.
//  2. A directory baton is closed only after all the batons created under it are closed.
//  3. The parent of OpenDirectory and AddDirectory is the most recently opened directory baton that is still open.
//  4. OpenFile and AddFile are followed by at most one ApplyTextDelta and then CloseFile before any other file or
//     directory call.
//  5. Once ApplyTextDelta returns a window handler, every window including the final nil window is sent before any
//     other editor call.
//
// Paths are relative to the root of the edit and use '/' as the only separator.
//
// Any callback may be nil. A nil callback does nothing and is not an error.
package editor

import (
	"context"

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// Baton is an opaque handle created by an editor for the whole edit or for one open node.
type Baton interface{}

// Revision identifies a version of the tree.
type Revision int64

// InvalidRevision is passed when no revision applies.
const InvalidRevision Revision = -1

// IsValid returns true for non-negative revisions.
func (r Revision) IsValid() bool {
	return r >= 0
}

// CopyFrom names the node an added directory or file was copied from. Consumers may ignore it.
type CopyFrom struct {
	Path string
	Rev  Revision
}

type (
	SetTargetRevisionFunc func(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error
	OpenRootFunc          func(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error)
	DeleteEntryFunc       func(ctx context.Context, path string, rev Revision, parent Baton, sc *scope.Scope) error
	AddNodeFunc           func(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error)
	OpenNodeFunc          func(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error)
	ChangePropFunc        func(ctx context.Context, node Baton, name string, value []byte, sc *scope.Scope) error
	CloseDirectoryFunc    func(ctx context.Context, dir Baton, sc *scope.Scope) error
	AbsentNodeFunc        func(ctx context.Context, path string, parent Baton, sc *scope.Scope) error
	ApplyTextDeltaFunc    func(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error)
	CloseFileFunc         func(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error
	EndEditFunc           func(ctx context.Context, eb Baton) error
)

// Editor is a set of optional callbacks. See the package documentation for the calling contract.
type Editor struct {
	// SetTargetRevision records the revision the edit brings the tree to.
	SetTargetRevision SetTargetRevisionFunc

	// OpenRoot returns the baton for the top directory of the edit. It is called at most once.
	OpenRoot OpenRootFunc

	// DeleteEntry removes the entry at path from the directory parent.
	DeleteEntry DeleteEntryFunc

	// AddDirectory creates the directory path in parent, optionally as a copy of CopyFrom.
	AddDirectory AddNodeFunc

	// OpenDirectory returns a baton for the existing directory path in parent.
	OpenDirectory OpenNodeFunc

	// ChangeDirProp sets the property name on a directory. A nil value deletes the property.
	ChangeDirProp ChangePropFunc

	// CloseDirectory releases a directory baton after any deferred work for it is done.
	CloseDirectory CloseDirectoryFunc

	// AbsentDirectory reports a directory the driver knows about but cannot describe.
	AbsentDirectory AbsentNodeFunc

	// AddFile creates the file path in parent, optionally as a copy of CopyFrom.
	AddFile AddNodeFunc

	// OpenFile returns a baton for the existing file path in parent.
	OpenFile OpenNodeFunc

	// ApplyTextDelta starts a content change. If baseChecksum is not empty the consumer may verify that it is
	// patching the expected text. The returned handler may be nil if the consumer does not need the windows.
	ApplyTextDelta ApplyTextDeltaFunc

	// ChangeFileProp sets the property name on a file. A nil value deletes the property.
	ChangeFileProp ChangePropFunc

	// CloseFile releases a file baton. If textChecksum is not empty it is the checksum of the file's final text.
	CloseFile CloseFileFunc

	// AbsentFile reports a file the driver knows about but cannot describe.
	AbsentFile AbsentNodeFunc

	// CloseEdit completes the edit.
	CloseEdit EndEditFunc

	// AbortEdit ends an edit that cannot be completed. The consumer discards all partial state.
	AbortEdit EndEditFunc
}

// Op names one editor callback.
type Op int

const (
	OpSetTargetRevision Op = iota
	OpOpenRoot
	OpDeleteEntry
	OpAddDirectory
	OpOpenDirectory
	OpChangeDirProp
	OpCloseDirectory
	OpAbsentDirectory
	OpAddFile
	OpOpenFile
	OpApplyTextDelta
	OpChangeFileProp
	OpCloseFile
	OpAbsentFile
	OpCloseEdit
	OpAbortEdit
)

// AllOps lists every editor callback in declaration order.
var AllOps = []Op{
	OpSetTargetRevision, OpOpenRoot, OpDeleteEntry, OpAddDirectory, OpOpenDirectory, OpChangeDirProp,
	OpCloseDirectory, OpAbsentDirectory, OpAddFile, OpOpenFile, OpApplyTextDelta, OpChangeFileProp, OpCloseFile,
	OpAbsentFile, OpCloseEdit, OpAbortEdit,
}

var opNames = map[Op]string{
	OpSetTargetRevision: "set_target_revision",
	OpOpenRoot:          "open_root",
	OpDeleteEntry:       "delete_entry",
	OpAddDirectory:      "add_directory",
	OpOpenDirectory:     "open_directory",
	OpChangeDirProp:     "change_dir_prop",
	OpCloseDirectory:    "close_directory",
	OpAbsentDirectory:   "absent_directory",
	OpAddFile:           "add_file",
	OpOpenFile:          "open_file",
	OpApplyTextDelta:    "apply_text_delta",
	OpChangeFileProp:    "change_file_prop",
	OpCloseFile:         "close_file",
	OpAbsentFile:        "absent_file",
	OpCloseEdit:         "close_edit",
	OpAbortEdit:         "abort_edit",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return "unknown_op"
}

// Has returns true if the callback for op is present. A nil editor has no callbacks.
func (e *Editor) Has(op Op) bool {
	if e == nil {
		return false
	}

	switch op {
	case OpSetTargetRevision:
		return e.SetTargetRevision != nil
	case OpOpenRoot:
		return e.OpenRoot != nil
	case OpDeleteEntry:
		return e.DeleteEntry != nil
	case OpAddDirectory:
		return e.AddDirectory != nil
	case OpOpenDirectory:
		return e.OpenDirectory != nil
	case OpChangeDirProp:
		return e.ChangeDirProp != nil
	case OpCloseDirectory:
		return e.CloseDirectory != nil
	case OpAbsentDirectory:
		return e.AbsentDirectory != nil
	case OpAddFile:
		return e.AddFile != nil
	case OpOpenFile:
		return e.OpenFile != nil
	case OpApplyTextDelta:
		return e.ApplyTextDelta != nil
	case OpChangeFileProp:
		return e.ChangeFileProp != nil
	case OpCloseFile:
		return e.CloseFile != nil
	case OpAbsentFile:
		return e.AbsentFile != nil
	case OpCloseEdit:
		return e.CloseEdit != nil
	case OpAbortEdit:
		return e.AbortEdit != nil
	}

	return false
}

// orEmpty lets decorators treat a nil *Editor as an editor with no callbacks.
func orEmpty(e *Editor) *Editor {
	if e == nil {
		return &Editor{}
	}

	return e
}
