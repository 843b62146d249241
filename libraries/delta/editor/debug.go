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
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

const (
	logFieldEditID = "edit_id"
	logFieldOp     = "op"
)

type debugEditor struct {
	lgr   *logrus.Entry
	depth int
}

func (d *debugEditor) indent() string {
	return strings.Repeat("  ", d.depth)
}

func (d *debugEditor) log(op Op, format string, args ...interface{}) {
	d.lgr.WithField(logFieldOp, op.String()).Debugf(d.indent()+format, args...)
}

func (d *debugEditor) done(op Op, err error) error {
	if err != nil {
		d.lgr.WithField(logFieldOp, op.String()).Warnf("%s failed: %v", op, err)
	}

	return err
}

// NewDebugEditor returns an editor that logs every call to wrapped at debug level, indented by tree depth, and every
// failure at warn level. Entries carry an edit_id field unique to this edit. Callbacks absent from wrapped stay
// absent. Batons are passed through.
func NewDebugEditor(wrapped *Editor, wb Baton, lgr *logrus.Entry) (*Editor, Baton) {
	if lgr == nil {
		lgr = logrus.NewEntry(logrus.StandardLogger())
	}

	w := orEmpty(wrapped)
	d := &debugEditor{lgr: lgr.WithField(logFieldEditID, uuid.New().String())}
	de := &Editor{}

	if w.SetTargetRevision != nil {
		de.SetTargetRevision = func(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error {
			d.log(OpSetTargetRevision, "set_target_revision %d", rev)
			return d.done(OpSetTargetRevision, w.SetTargetRevision(ctx, eb, rev, sc))
		}
	}

	if w.OpenRoot != nil {
		de.OpenRoot = func(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
			d.log(OpOpenRoot, "open_root %d", baseRev)
			b, err := w.OpenRoot(ctx, eb, baseRev, sc)
			if err == nil {
				d.depth++
			}
			return b, d.done(OpOpenRoot, err)
		}
	}

	if w.DeleteEntry != nil {
		de.DeleteEntry = func(ctx context.Context, path string, rev Revision, parent Baton, sc *scope.Scope) error {
			d.log(OpDeleteEntry, "delete_entry %s", path)
			return d.done(OpDeleteEntry, w.DeleteEntry(ctx, path, rev, parent, sc))
		}
	}

	de.AddDirectory = d.add(OpAddDirectory, w.AddDirectory)
	de.OpenDirectory = d.open(OpOpenDirectory, w.OpenDirectory)
	de.ChangeDirProp = d.changeProp(OpChangeDirProp, w.ChangeDirProp)

	if w.CloseDirectory != nil {
		de.CloseDirectory = func(ctx context.Context, dir Baton, sc *scope.Scope) error {
			err := w.CloseDirectory(ctx, dir, sc)
			if err == nil && d.depth > 0 {
				d.depth--
			}
			d.log(OpCloseDirectory, "close_directory")
			return d.done(OpCloseDirectory, err)
		}
	}

	de.AbsentDirectory = d.absent(OpAbsentDirectory, w.AbsentDirectory)
	de.AddFile = d.add(OpAddFile, w.AddFile)
	de.OpenFile = d.open(OpOpenFile, w.OpenFile)

	if w.ApplyTextDelta != nil {
		de.ApplyTextDelta = func(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
			d.log(OpApplyTextDelta, "apply_text_delta base=%q", baseChecksum)
			h, err := w.ApplyTextDelta(ctx, file, baseChecksum, sc)
			if err != nil || h == nil {
				return h, d.done(OpApplyTextDelta, err)
			}

			return func(win *txdelta.Window) error {
				if win == nil {
					d.lgr.Tracef("%send of delta", d.indent())
				} else {
					d.lgr.Tracef("%swindow source=%d+%d target=%d ops=%d new=%d", d.indent(), win.SourceOffset, win.SourceLen, win.TargetLen, len(win.Ops), len(win.NewData))
				}
				return d.done(OpApplyTextDelta, h(win))
			}, nil
		}
	}

	de.ChangeFileProp = d.changeProp(OpChangeFileProp, w.ChangeFileProp)

	if w.CloseFile != nil {
		de.CloseFile = func(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error {
			err := w.CloseFile(ctx, file, textChecksum, sc)
			if err == nil && d.depth > 0 {
				d.depth--
			}
			d.log(OpCloseFile, "close_file %s", textChecksum)
			return d.done(OpCloseFile, err)
		}
	}

	de.AbsentFile = d.absent(OpAbsentFile, w.AbsentFile)

	if w.CloseEdit != nil {
		de.CloseEdit = func(ctx context.Context, eb Baton) error {
			d.log(OpCloseEdit, "close_edit")
			return d.done(OpCloseEdit, w.CloseEdit(ctx, eb))
		}
	}

	if w.AbortEdit != nil {
		de.AbortEdit = func(ctx context.Context, eb Baton) error {
			d.depth = 0
			d.log(OpAbortEdit, "abort_edit")
			return d.done(OpAbortEdit, w.AbortEdit(ctx, eb))
		}
	}

	return de, wb
}

func (d *debugEditor) add(op Op, f AddNodeFunc) AddNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
		if copyFrom != nil {
			d.log(op, "%s %s (from %s@%d)", op, path, copyFrom.Path, copyFrom.Rev)
		} else {
			d.log(op, "%s %s", op, path)
		}

		b, err := f(ctx, path, parent, copyFrom, sc)
		if err == nil {
			d.depth++
		}
		return b, d.done(op, err)
	}
}

func (d *debugEditor) open(op Op, f OpenNodeFunc) OpenNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
		d.log(op, "%s %s", op, path)
		b, err := f(ctx, path, parent, baseRev, sc)
		if err == nil {
			d.depth++
		}
		return b, d.done(op, err)
	}
}

func (d *debugEditor) changeProp(op Op, f ChangePropFunc) ChangePropFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, node Baton, name string, value []byte, sc *scope.Scope) error {
		if value == nil {
			d.log(op, "%s %s deleted", op, name)
		} else {
			d.log(op, "%s %s=%q", op, name, value)
		}
		return d.done(op, f(ctx, node, name, value, sc))
	}
}

func (d *debugEditor) absent(op Op, f AbsentNodeFunc) AbsentNodeFunc {
	if f == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, sc *scope.Scope) error {
		d.log(op, "%s %s", op, path)
		return d.done(op, f(ctx, path, parent, sc))
	}
}
