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
	"fmt"
	"path"
	"strings"

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

type entryState int

const (
	entryDeleted entryState = iota + 1
	entryVisited
)

type validatedNode handle

type vnode struct {
	path    string
	dir     bool
	inner   Baton
	entries map[string]entryState
	applied bool
}

// validator tracks the open batons of one edit. Directories form a stack, and at most one file is open at a time.
type validator struct {
	w         *Editor
	wb        Baton
	rootSeen  bool
	ended     bool
	failed    bool
	streaming bool
	dirs      []handle
	file      handle
	nodes     arena[*vnode]
}

// violation fails the edit. Only AbortEdit is accepted afterwards.
func (v *validator) violation(format string, args ...interface{}) error {
	v.failed = true
	return ErrProtocolViolation.New(fmt.Sprintf(format, args...))
}

// NewValidatingEditor returns an editor that checks every call against the calling contract before passing it to
// wrapped, and fails with ErrProtocolViolation instead of passing on a call that breaks it. Closing a directory that
// still has an open child is an error, and so is naming a child of any directory but the innermost open one. After
// any call fails, whether in wrapped or in these checks, only AbortEdit is accepted, and AbortEdit is accepted once
// at any point before the edit ends.
//
// Every callback of the returned editor is present so that the whole sequence is observed. Calls whose callback is
// absent from wrapped are checked and then skipped.
func NewValidatingEditor(wrapped *Editor, wb Baton) (*Editor, Baton) {
	v := &validator{w: orEmpty(wrapped), wb: wb}

	return &Editor{
		SetTargetRevision: v.setTargetRevision,
		OpenRoot:          v.openRoot,
		DeleteEntry:       v.deleteEntry,
		AddDirectory:      v.addDirectory,
		OpenDirectory:     v.openDirectory,
		ChangeDirProp:     v.changeDirProp,
		CloseDirectory:    v.closeDirectory,
		AbsentDirectory:   v.absentDirectory,
		AddFile:           v.addFile,
		OpenFile:          v.openFile,
		ApplyTextDelta:    v.applyTextDelta,
		ChangeFileProp:    v.changeFileProp,
		CloseFile:         v.closeFile,
		AbsentFile:        v.absentFile,
		CloseEdit:         v.closeEdit,
		AbortEdit:         v.abortEdit,
	}, v
}

// enter checks the state every call except AbortEdit requires.
func (v *validator) enter(op Op) error {
	switch {
	case v.ended:
		return v.violation("%s after the edit ended", op)
	case v.failed:
		return v.violation("%s after a failed call; the edit must be aborted", op)
	case v.streaming:
		return v.violation("%s while a text delta is still being sent", op)
	}

	return nil
}

// result records a delegated failure so that only AbortEdit is accepted afterwards.
func (v *validator) result(err error) error {
	if err != nil {
		v.failed = true
	}

	return err
}

func (v *validator) checkEdit(op Op, eb Baton) error {
	if eb != Baton(v) {
		return v.violation("%s called with a foreign edit baton", op)
	}

	return nil
}

func (v *validator) node(op Op, b Baton) (*vnode, handle, error) {
	vb, ok := b.(validatedNode)
	if !ok {
		return nil, 0, v.violation("%s called with a baton that is not a node of this edit", op)
	}

	n, ok := v.nodes.get(handle(vb))
	if !ok {
		return nil, 0, v.violation("%s called with a closed baton", op)
	}

	return n, handle(vb), nil
}

// openDir resolves b to an open directory. No file may be open, since a file must be closed before any other
// directory call.
func (v *validator) openDir(op Op, b Baton) (*vnode, handle, error) {
	n, h, err := v.node(op, b)
	if err != nil {
		return nil, 0, err
	}

	if !n.dir {
		return nil, 0, v.violation("%s called with file baton '%s' where a directory is required", op, n.path)
	}

	if v.file != 0 {
		f, _ := v.nodes.get(v.file)
		return nil, 0, v.violation("%s in '%s' while file '%s' is open", op, n.path, f.path)
	}

	return n, h, nil
}

// currentFile resolves b to the file currently open.
func (v *validator) currentFile(op Op, b Baton) (*vnode, error) {
	n, h, err := v.node(op, b)
	if err != nil {
		return nil, err
	}

	if n.dir {
		return nil, v.violation("%s called with directory baton '%s' where a file is required", op, n.path)
	}

	if h != v.file {
		return nil, v.violation("%s on '%s' which is not the open file", op, n.path)
	}

	return n, nil
}

// entryName checks that p names a direct child of the directory at parent and returns the child's name.
func (v *validator) entryName(op Op, parent, p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return "", v.violation("%s path '%s' is not a relative path", op, p)
	}

	for _, elem := range strings.Split(p, "/") {
		if elem == "" || elem == "." || elem == ".." {
			return "", v.violation("%s path '%s' has an invalid element '%s'", op, p, elem)
		}
	}

	dir, name := path.Split(p)
	if strings.TrimSuffix(dir, "/") != parent {
		return "", v.violation("%s path '%s' is not a child of '%s'", op, p, parent)
	}

	return name, nil
}

func (v *validator) push(n *vnode) Baton {
	h := v.nodes.put(n)
	if n.dir {
		v.dirs = append(v.dirs, h)
	} else {
		v.file = h
	}

	return validatedNode(h)
}

func (v *validator) setTargetRevision(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error {
	if err := v.enter(OpSetTargetRevision); err != nil {
		return err
	}
	if err := v.checkEdit(OpSetTargetRevision, eb); err != nil {
		return err
	}
	if v.file != 0 {
		return v.violation("%s while a file is open", OpSetTargetRevision)
	}

	return v.result(v.w.DoSetTargetRevision(ctx, v.wb, rev, sc))
}

func (v *validator) openRoot(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	if err := v.enter(OpOpenRoot); err != nil {
		return nil, err
	}
	if err := v.checkEdit(OpOpenRoot, eb); err != nil {
		return nil, err
	}
	if v.rootSeen {
		return nil, v.violation("%s called more than once", OpOpenRoot)
	}

	inner, err := v.w.DoOpenRoot(ctx, v.wb, baseRev, sc)
	if err != nil {
		return nil, v.result(err)
	}

	v.rootSeen = true
	return v.push(&vnode{dir: true, inner: inner, entries: map[string]entryState{}}), nil
}

func (v *validator) deleteEntry(ctx context.Context, p string, rev Revision, parent Baton, sc *scope.Scope) error {
	if err := v.enter(OpDeleteEntry); err != nil {
		return err
	}

	dir, h, err := v.openDir(OpDeleteEntry, parent)
	if err != nil {
		return err
	}

	if err := v.innermost(OpDeleteEntry, p, dir, h); err != nil {
		return err
	}

	name, err := v.entryName(OpDeleteEntry, dir.path, p)
	if err != nil {
		return err
	}

	switch dir.entries[name] {
	case entryDeleted:
		return v.violation("%s '%s' called twice", OpDeleteEntry, p)
	case entryVisited:
		return v.violation("%s '%s' after the entry was added or opened", OpDeleteEntry, p)
	}

	if err := v.w.DoDeleteEntry(ctx, p, rev, dir.inner, sc); err != nil {
		return v.result(err)
	}

	dir.entries[name] = entryDeleted
	return nil
}

// innermost checks that the directory at h is the most recently opened one still open. Every call naming a child
// of a directory requires this, so the calls follow a single depth-first walk.
func (v *validator) innermost(op Op, p string, dir *vnode, h handle) error {
	if top := v.dirs[len(v.dirs)-1]; top != h {
		n, _ := v.nodes.get(top)
		return v.violation("%s '%s' in '%s' while '%s' is the innermost open directory", op, p, dir.path, n.path)
	}

	return nil
}

// visit runs the checks shared by every call that adds, opens or declares a child of a directory.
func (v *validator) visit(op Op, p string, parent Baton, allowDeleted bool) (*vnode, string, error) {
	if err := v.enter(op); err != nil {
		return nil, "", err
	}

	dir, h, err := v.openDir(op, parent)
	if err != nil {
		return nil, "", err
	}

	if err := v.innermost(op, p, dir, h); err != nil {
		return nil, "", err
	}

	name, err := v.entryName(op, dir.path, p)
	if err != nil {
		return nil, "", err
	}

	switch dir.entries[name] {
	case entryVisited:
		return nil, "", v.violation("%s '%s' after the entry was already visited", op, p)
	case entryDeleted:
		if !allowDeleted {
			return nil, "", v.violation("%s '%s' after the entry was deleted", op, p)
		}
	}

	return dir, name, nil
}

func (v *validator) add(op Op, dirNode bool, f AddNodeFunc) AddNodeFunc {
	return func(ctx context.Context, p string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
		dir, name, err := v.visit(op, p, parent, true)
		if err != nil {
			return nil, err
		}

		var inner Baton
		if f != nil {
			if inner, err = f(ctx, p, dir.inner, copyFrom, sc); err != nil {
				return nil, v.result(err)
			}
		}

		dir.entries[name] = entryVisited
		return v.push(newVNode(p, dirNode, inner)), nil
	}
}

func (v *validator) open(op Op, dirNode bool, f OpenNodeFunc) OpenNodeFunc {
	return func(ctx context.Context, p string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
		dir, name, err := v.visit(op, p, parent, false)
		if err != nil {
			return nil, err
		}

		var inner Baton
		if f != nil {
			if inner, err = f(ctx, p, dir.inner, baseRev, sc); err != nil {
				return nil, v.result(err)
			}
		}

		dir.entries[name] = entryVisited
		return v.push(newVNode(p, dirNode, inner)), nil
	}
}

func (v *validator) absent(op Op, f AbsentNodeFunc) AbsentNodeFunc {
	return func(ctx context.Context, p string, parent Baton, sc *scope.Scope) error {
		dir, name, err := v.visit(op, p, parent, false)
		if err != nil {
			return err
		}

		if f != nil {
			if err := f(ctx, p, dir.inner, sc); err != nil {
				return v.result(err)
			}
		}

		dir.entries[name] = entryVisited
		return nil
	}
}

func newVNode(p string, dir bool, inner Baton) *vnode {
	n := &vnode{path: p, dir: dir, inner: inner}
	if dir {
		n.entries = map[string]entryState{}
	}

	return n
}

func (v *validator) addDirectory(ctx context.Context, p string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
	return v.add(OpAddDirectory, true, v.w.AddDirectory)(ctx, p, parent, copyFrom, sc)
}

func (v *validator) openDirectory(ctx context.Context, p string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	return v.open(OpOpenDirectory, true, v.w.OpenDirectory)(ctx, p, parent, baseRev, sc)
}

func (v *validator) addFile(ctx context.Context, p string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
	return v.add(OpAddFile, false, v.w.AddFile)(ctx, p, parent, copyFrom, sc)
}

func (v *validator) openFile(ctx context.Context, p string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
	return v.open(OpOpenFile, false, v.w.OpenFile)(ctx, p, parent, baseRev, sc)
}

func (v *validator) absentDirectory(ctx context.Context, p string, parent Baton, sc *scope.Scope) error {
	return v.absent(OpAbsentDirectory, v.w.AbsentDirectory)(ctx, p, parent, sc)
}

func (v *validator) absentFile(ctx context.Context, p string, parent Baton, sc *scope.Scope) error {
	return v.absent(OpAbsentFile, v.w.AbsentFile)(ctx, p, parent, sc)
}

func (v *validator) changeDirProp(ctx context.Context, dir Baton, name string, value []byte, sc *scope.Scope) error {
	if err := v.enter(OpChangeDirProp); err != nil {
		return err
	}

	n, _, err := v.openDir(OpChangeDirProp, dir)
	if err != nil {
		return err
	}

	return v.result(v.w.DoChangeDirProp(ctx, n.inner, name, value, sc))
}

func (v *validator) closeDirectory(ctx context.Context, dir Baton, sc *scope.Scope) error {
	if err := v.enter(OpCloseDirectory); err != nil {
		return err
	}

	n, h, err := v.openDir(OpCloseDirectory, dir)
	if err != nil {
		return err
	}

	if top := v.dirs[len(v.dirs)-1]; top != h {
		child, _ := v.nodes.get(top)
		return v.violation("%s '%s' while '%s' is still open", OpCloseDirectory, n.path, child.path)
	}

	if err := v.w.DoCloseDirectory(ctx, n.inner, sc); err != nil {
		return v.result(err)
	}

	v.dirs = v.dirs[:len(v.dirs)-1]
	v.nodes.release(h)
	return nil
}

func (v *validator) applyTextDelta(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
	if err := v.enter(OpApplyTextDelta); err != nil {
		return nil, err
	}

	n, err := v.currentFile(OpApplyTextDelta, file)
	if err != nil {
		return nil, err
	}

	if n.applied {
		return nil, v.violation("%s called twice on '%s'", OpApplyTextDelta, n.path)
	}

	inner, err := v.w.DoApplyTextDelta(ctx, n.inner, baseChecksum, sc)
	if err != nil {
		return nil, v.result(err)
	}

	n.applied = true
	if inner == nil {
		return nil, nil
	}

	v.streaming = true
	return func(w *txdelta.Window) error {
		switch {
		case v.failed:
			return v.violation("delta window for '%s' after a failed call; the edit must be aborted", n.path)
		case !v.streaming:
			return v.violation("delta window for '%s' sent after the end of the stream", n.path)
		}

		if w == nil {
			v.streaming = false
		}

		if err := inner(w); err != nil {
			v.streaming = false
			return v.result(err)
		}

		return nil
	}, nil
}

func (v *validator) changeFileProp(ctx context.Context, file Baton, name string, value []byte, sc *scope.Scope) error {
	if err := v.enter(OpChangeFileProp); err != nil {
		return err
	}

	n, err := v.currentFile(OpChangeFileProp, file)
	if err != nil {
		return err
	}

	return v.result(v.w.DoChangeFileProp(ctx, n.inner, name, value, sc))
}

func (v *validator) closeFile(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error {
	if err := v.enter(OpCloseFile); err != nil {
		return err
	}

	n, err := v.currentFile(OpCloseFile, file)
	if err != nil {
		return err
	}

	if err := v.w.DoCloseFile(ctx, n.inner, textChecksum, sc); err != nil {
		return v.result(err)
	}

	v.nodes.release(v.file)
	v.file = 0
	return nil
}

func (v *validator) closeEdit(ctx context.Context, eb Baton) error {
	if err := v.enter(OpCloseEdit); err != nil {
		return err
	}
	if err := v.checkEdit(OpCloseEdit, eb); err != nil {
		return err
	}

	if v.file != 0 || len(v.dirs) > 0 {
		return v.violation("%s with %d batons still open", OpCloseEdit, v.nodes.live())
	}

	if err := v.w.DoCloseEdit(ctx, v.wb); err != nil {
		return v.result(err)
	}

	v.ended = true
	return nil
}

func (v *validator) abortEdit(ctx context.Context, eb Baton) error {
	if v.ended {
		return v.violation("%s after the edit ended", OpAbortEdit)
	}
	if err := v.checkEdit(OpAbortEdit, eb); err != nil {
		return err
	}

	v.ended = true
	v.streaming = false
	return v.w.DoAbortEdit(ctx, v.wb)
}
