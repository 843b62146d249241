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

// Package apply provides an editor that applies an edit to a Tree. The whole edit is one transaction of the tree:
// CloseEdit commits it and AbortEdit rolls it back.
package apply

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/treedelta/libraries/delta/checksum"
	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// Options configure an applier.
type Options struct {
	// VerifyChecksums checks base and result checksums supplied by the driver.
	VerifyChecksums bool
	// Logger receives trace output. Defaults to the standard logger.
	Logger *logrus.Entry
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{VerifyChecksums: true}
}

type edit struct {
	tree Tree
	opts Options
	lgr  *logrus.Entry
	txn  Txn
}

type dirBaton struct {
	path string
}

type fileBaton struct {
	path    string
	text    []byte
	changed bool
}

// NewEditor returns an editor that applies an edit to tree, and its edit baton.
func NewEditor(tree Tree, opts Options) (*editor.Editor, editor.Baton) {
	lgr := opts.Logger
	if lgr == nil {
		lgr = logrus.NewEntry(logrus.StandardLogger())
	}

	e := &edit{tree: tree, opts: opts, lgr: lgr.WithField("component", "apply")}

	return &editor.Editor{
		OpenRoot:        e.openRoot,
		DeleteEntry:     e.deleteEntry,
		AddDirectory:    e.addDirectory,
		OpenDirectory:   e.openDirectory,
		ChangeDirProp:   e.changeDirProp,
		CloseDirectory:  e.closeDirectory,
		AbsentDirectory: e.absent,
		AddFile:         e.addFile,
		OpenFile:        e.openFile,
		ApplyTextDelta:  e.applyTextDelta,
		ChangeFileProp:  e.changeFileProp,
		CloseFile:       e.closeFile,
		AbsentFile:      e.absent,
		CloseEdit:       e.closeEdit,
		AbortEdit:       e.abortEdit,
	}, e
}

func backendErr(path string, err error) error {
	if path == "" {
		path = "/"
	}
	return editor.ErrBackend.Wrap(err, path, err)
}

func (e *edit) dir(b editor.Baton) (*dirBaton, error) {
	if e.txn == nil {
		return nil, editor.ErrProtocolViolation.New("no open transaction")
	}

	d, ok := b.(*dirBaton)
	if !ok {
		return nil, editor.ErrProtocolViolation.New(fmt.Sprintf("%v is not a directory baton", b))
	}
	return d, nil
}

func (e *edit) file(b editor.Baton) (*fileBaton, error) {
	if e.txn == nil {
		return nil, editor.ErrProtocolViolation.New("no open transaction")
	}

	f, ok := b.(*fileBaton)
	if !ok {
		return nil, editor.ErrProtocolViolation.New(fmt.Sprintf("%v is not a file baton", b))
	}
	return f, nil
}

func (e *edit) openRoot(ctx context.Context, eb editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
	if e.txn != nil {
		return nil, editor.ErrProtocolViolation.New("open_root called twice")
	}

	txn, err := e.tree.Begin(ctx)
	if err != nil {
		return nil, backendErr("", err)
	}

	e.txn = txn
	e.lgr.Trace("transaction started")
	return &dirBaton{}, nil
}

func (e *edit) deleteEntry(_ context.Context, path string, _ editor.Revision, parent editor.Baton, _ *scope.Scope) error {
	if _, err := e.dir(parent); err != nil {
		return err
	}

	exists, _, err := e.txn.Stat(path)
	if err != nil {
		return backendErr(path, err)
	}
	if !exists {
		return editor.ErrNotFound.New(path)
	}

	e.lgr.Tracef("delete %s", path)
	if err := e.txn.Delete(path); err != nil {
		return backendErr(path, err)
	}

	return nil
}

// checkNew fails if path exists. An entry deleted earlier in the edit no longer exists in the transaction.
func (e *edit) checkNew(path string) error {
	exists, _, err := e.txn.Stat(path)
	if err != nil {
		return backendErr(path, err)
	}
	if exists {
		return backendErr(path, errExists)
	}
	return nil
}

// copySource returns the path to copy a new node from, or "" if the hint cannot be used.
func (e *edit) copySource(path string, copyFrom *editor.CopyFrom, wantDir bool) string {
	if copyFrom == nil || copyFrom.Path == "" || isUnder(path, copyFrom.Path) {
		return ""
	}

	exists, isDir, err := e.txn.Stat(copyFrom.Path)
	if err != nil || !exists || isDir != wantDir {
		e.lgr.Tracef("ignoring copy source %s for %s", copyFrom.Path, path)
		return ""
	}

	return copyFrom.Path
}

func (e *edit) addDirectory(_ context.Context, path string, parent editor.Baton, copyFrom *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
	if _, err := e.dir(parent); err != nil {
		return nil, err
	}
	if err := e.checkNew(path); err != nil {
		return nil, err
	}

	var err error
	if src := e.copySource(path, copyFrom, true); src != "" {
		e.lgr.Tracef("add directory %s as a copy of %s", path, src)
		err = copyNode(e.txn, src, path)
	} else {
		e.lgr.Tracef("add directory %s", path)
		err = e.txn.MkDir(path)
	}

	if err != nil {
		return nil, backendErr(path, err)
	}

	return &dirBaton{path: path}, nil
}

func (e *edit) openDirectory(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
	if _, err := e.dir(parent); err != nil {
		return nil, err
	}

	exists, isDir, err := e.txn.Stat(path)
	if err != nil {
		return nil, backendErr(path, err)
	}
	if !exists || !isDir {
		return nil, editor.ErrNotFound.New(path)
	}

	return &dirBaton{path: path}, nil
}

func (e *edit) changeDirProp(_ context.Context, dir editor.Baton, name string, value []byte, _ *scope.Scope) error {
	d, err := e.dir(dir)
	if err != nil {
		return err
	}

	if err := e.txn.SetProp(d.path, name, value); err != nil {
		return backendErr(d.path, err)
	}
	return nil
}

func (e *edit) closeDirectory(_ context.Context, dir editor.Baton, _ *scope.Scope) error {
	_, err := e.dir(dir)
	return err
}

func (e *edit) absent(_ context.Context, path string, _ editor.Baton, _ *scope.Scope) error {
	e.lgr.Warnf("%s could not be described by the driver and was left unchanged", path)
	return nil
}

func (e *edit) addFile(_ context.Context, path string, parent editor.Baton, copyFrom *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
	if _, err := e.dir(parent); err != nil {
		return nil, err
	}
	if err := e.checkNew(path); err != nil {
		return nil, err
	}

	f := &fileBaton{path: path, changed: true}
	if src := e.copySource(path, copyFrom, false); src != "" {
		text, err := e.txn.ReadFile(src)
		if err != nil {
			return nil, backendErr(src, err)
		}
		f.text = text
	}

	e.lgr.Tracef("add file %s", path)
	return f, nil
}

func (e *edit) openFile(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
	if _, err := e.dir(parent); err != nil {
		return nil, err
	}

	exists, isDir, err := e.txn.Stat(path)
	if err != nil {
		return nil, backendErr(path, err)
	}
	if !exists || isDir {
		return nil, editor.ErrNotFound.New(path)
	}

	text, err := e.txn.ReadFile(path)
	if err != nil {
		return nil, backendErr(path, err)
	}

	return &fileBaton{path: path, text: text}, nil
}

// verify compares text to the checksum the driver sent. An empty checksum is not checked.
func (e *edit) verify(path, expected string, text []byte) error {
	if !e.opts.VerifyChecksums || expected == "" {
		return nil
	}

	want, ok := checksum.MaybeParse(expected)
	if !ok {
		return editor.ErrProtocolViolation.New(fmt.Sprintf("malformed checksum %q for '%s'", expected, path))
	}

	if actual := checksum.Of(text); actual != want {
		return editor.ErrChecksumMismatch.New(path, want.String(), actual.String())
	}

	return nil
}

func (e *edit) applyTextDelta(_ context.Context, file editor.Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
	f, err := e.file(file)
	if err != nil {
		return nil, err
	}

	if err := e.verify(f.path, baseChecksum, f.text); err != nil {
		return nil, err
	}

	base := f.text
	buf := bytes.NewBuffer(sc.Bytes(len(base)))
	apply := txdelta.Apply(base, buf)

	return func(w *txdelta.Window) error {
		if err := apply(w); err != nil {
			return backendErr(f.path, err)
		}

		if w == nil {
			f.text = append([]byte{}, buf.Bytes()...)
			f.changed = true
		}

		return nil
	}, nil
}

func (e *edit) changeFileProp(_ context.Context, file editor.Baton, name string, value []byte, _ *scope.Scope) error {
	f, err := e.file(file)
	if err != nil {
		return err
	}

	if err := e.txn.SetProp(f.path, name, value); err != nil {
		return backendErr(f.path, err)
	}
	return nil
}

func (e *edit) closeFile(_ context.Context, file editor.Baton, textChecksum string, _ *scope.Scope) error {
	f, err := e.file(file)
	if err != nil {
		return err
	}

	if err := e.verify(f.path, textChecksum, f.text); err != nil {
		return err
	}

	if !f.changed {
		return nil
	}

	e.lgr.Tracef("write %s (%d bytes)", f.path, len(f.text))
	if err := e.txn.WriteFile(f.path, f.text); err != nil {
		return backendErr(f.path, err)
	}

	return nil
}

func (e *edit) closeEdit(_ context.Context, _ editor.Baton) error {
	if e.txn == nil {
		return nil
	}

	txn := e.txn
	e.txn = nil
	if err := txn.Commit(); err != nil {
		return backendErr("", err)
	}

	e.lgr.Trace("transaction committed")
	return nil
}

func (e *edit) abortEdit(_ context.Context, _ editor.Baton) error {
	if e.txn == nil {
		return nil
	}

	txn := e.txn
	e.txn = nil
	if err := txn.Rollback(); err != nil {
		return backendErr("", err)
	}

	e.lgr.Trace("transaction rolled back")
	return nil
}
