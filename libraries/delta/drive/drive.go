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

// Package drive walks the difference between two trees and describes it to an editor.
package drive

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// Options control how DirDeltas drives an edit.
type Options struct {
	// BaseRevision is passed to OpenRoot and the open callbacks.
	BaseRevision editor.Revision
	// TargetRevision is sent with SetTargetRevision when it is valid.
	TargetRevision editor.Revision
	// MaxWindow bounds the target bytes of each delta window. Zero means txdelta.DefaultWindowSize.
	MaxWindow int
	// Root is the parent of every scope the driver creates. It must not be shared by concurrent edits.
	Root *scope.Scope
	// Abort, if set, is called instead of the editor's AbortEdit when the edit fails. It lets a caller abort the
	// editor under a cancellation decorator, which would otherwise refuse the abort once cancelled.
	Abort func(ctx context.Context) error
	// Logger receives trace output. Defaults to the standard logger.
	Logger *logrus.Entry
}

// DefaultOptions returns options with no revisions.
func DefaultOptions() Options {
	return Options{BaseRevision: editor.InvalidRevision, TargetRevision: editor.InvalidRevision}
}

type driver struct {
	from, to Source
	e        *editor.Editor
	eb       editor.Baton
	opts     Options
	lgr      *logrus.Entry
}

// DirDeltas describes the changes that turn from into to as a single edit on e. The walk is depth first with the
// entries of each directory in name order. Deletions in a directory come before additions and changes, and an entry
// that changed between file and directory is deleted and added again. Unchanged files are skipped. Every baton gets
// its own scope, released as soon as its close call returns.
//
// If any call fails the edit is aborted and the failure is returned, joined with the abort's error if that fails too.
func DirDeltas(ctx context.Context, from, to Source, e *editor.Editor, eb editor.Baton, opts Options) error {
	lgr := opts.Logger
	if lgr == nil {
		lgr = logrus.NewEntry(logrus.StandardLogger())
	}

	d := &driver{from: from, to: to, e: e, eb: eb, opts: opts, lgr: lgr.WithField("component", "drive")}
	if err := d.run(ctx); err != nil {
		return d.abort(ctx, err)
	}

	return nil
}

func (d *driver) abort(ctx context.Context, cause error) error {
	d.lgr.Tracef("aborting edit: %v", cause)

	if d.opts.Abort == nil {
		return editor.AbortAfter(ctx, d.e, d.eb, cause)
	}

	if err := d.opts.Abort(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

func (d *driver) run(ctx context.Context) error {
	editScope := scope.New(d.opts.Root)
	defer editScope.Release()

	if d.opts.TargetRevision.IsValid() {
		if err := d.e.DoSetTargetRevision(ctx, d.eb, d.opts.TargetRevision, editScope); err != nil {
			return err
		}
	}

	rootScope := editScope.NewChild()
	root, err := d.e.DoOpenRoot(ctx, d.eb, d.opts.BaseRevision, rootScope)
	if err != nil {
		return err
	}

	if err := d.dir(ctx, "", root, rootScope, true); err != nil {
		return err
	}

	if err := d.e.DoCloseDirectory(ctx, root, rootScope); err != nil {
		return err
	}
	if err := rootScope.Release(); err != nil {
		return err
	}

	return d.e.DoCloseEdit(ctx, d.eb)
}

// dir describes the changes inside the open directory path. inFrom is false for a directory that is being added, which
// has no entries to compare against.
func (d *driver) dir(ctx context.Context, path string, baton editor.Baton, sc *scope.Scope, inFrom bool) error {
	var fromEntries []Entry
	if inFrom {
		var err error
		if fromEntries, err = d.from.List(ctx, path); err != nil {
			return err
		}
	}

	toEntries, err := d.to.List(ctx, path)
	if err != nil {
		return err
	}

	toByName := make(map[string]Entry, len(toEntries))
	for _, te := range toEntries {
		toByName[te.Name] = te
	}

	fromByName := make(map[string]Entry, len(fromEntries))
	for _, fe := range fromEntries {
		te, ok := toByName[fe.Name]
		if ok && te.IsDir == fe.IsDir {
			fromByName[fe.Name] = fe
			continue
		}

		d.lgr.Tracef("delete %s", joinPath(path, fe.Name))
		if err := d.e.DoDeleteEntry(ctx, joinPath(path, fe.Name), d.opts.BaseRevision, baton, sc); err != nil {
			return err
		}
	}

	for _, te := range toEntries {
		fe, existed := fromByName[te.Name]
		childPath := joinPath(path, te.Name)

		if te.IsDir {
			err = d.childDir(ctx, childPath, baton, sc, existed)
		} else if !existed || fe.Checksum != te.Checksum {
			err = d.file(ctx, childPath, baton, sc, fe, existed, te)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *driver) childDir(ctx context.Context, path string, parent editor.Baton, parentScope *scope.Scope, existed bool) error {
	sc := parentScope.NewChild()

	var baton editor.Baton
	var err error
	if existed {
		baton, err = d.e.DoOpenDirectory(ctx, path, parent, d.opts.BaseRevision, sc)
	} else {
		d.lgr.Tracef("add directory %s", path)
		baton, err = d.e.DoAddDirectory(ctx, path, parent, nil, sc)
	}
	if err != nil {
		return err
	}

	if err := d.dir(ctx, path, baton, sc, existed); err != nil {
		return err
	}

	if err := d.e.DoCloseDirectory(ctx, baton, sc); err != nil {
		return err
	}

	return sc.Release()
}

func (d *driver) file(ctx context.Context, path string, parent editor.Baton, parentScope *scope.Scope, fe Entry, existed bool, te Entry) error {
	sc := parentScope.NewChild()

	var source []byte
	var baseChecksum string
	var baton editor.Baton
	var err error
	if existed {
		if source, err = d.from.ReadFile(ctx, path); err != nil {
			return err
		}
		baseChecksum = fe.Checksum.String()

		d.lgr.Tracef("change file %s", path)
		baton, err = d.e.DoOpenFile(ctx, path, parent, d.opts.BaseRevision, sc)
	} else {
		d.lgr.Tracef("add file %s", path)
		baton, err = d.e.DoAddFile(ctx, path, parent, nil, sc)
	}
	if err != nil {
		return err
	}

	target, err := d.to.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	h, err := d.e.DoApplyTextDelta(ctx, baton, baseChecksum, sc)
	if err != nil {
		return err
	}

	if h != nil {
		if err := txdelta.Send(ctx, txdelta.Compute(source, target, d.opts.MaxWindow), h); err != nil {
			return err
		}
	}

	if err := d.e.DoCloseFile(ctx, baton, te.Checksum.String(), sc); err != nil {
		return err
	}

	return sc.Release()
}

// Edit is one edit for DriveAll.
type Edit struct {
	From, To Source
	Editor   *editor.Editor
	Baton    editor.Baton
	Options  Options
}

// DriveAll drives independent edits concurrently, one goroutine per edit. Each editor is wrapped in a cancellation
// editor, so the first failure stops the other edits at their next callback and aborts them. The first failure is
// returned once every edit has finished.
func DriveAll(ctx context.Context, edits []Edit) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, ed := range edits {
		opts := ed.Options
		if opts.Abort == nil {
			inner, innerBaton := ed.Editor, ed.Baton
			opts.Abort = func(ctx context.Context) error {
				return inner.DoAbortEdit(ctx, innerBaton)
			}
		}

		e, eb := editor.Cancellation(editor.ContextCancelFunc(egCtx), ed.Editor, ed.Baton)
		eg.Go(func() error {
			return DirDeltas(egCtx, ed.From, ed.To, e, eb, opts)
		})
	}

	return eg.Wait()
}
