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

package editor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/editor/editortest"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

type validated struct {
	t   *testing.T
	ctx context.Context
	sc  *scope.Scope
	r   *editortest.Recorder
	e   *editor.Editor
	eb  editor.Baton
}

func newValidated(t *testing.T) *validated {
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()
	ve, vb := editor.NewValidatingEditor(e, b)

	sc := scope.New(nil)
	t.Cleanup(func() { sc.Release() })

	return &validated{t: t, ctx: context.Background(), sc: sc, r: r, e: ve, eb: vb}
}

func (v *validated) root() editor.Baton {
	root, err := v.e.DoOpenRoot(v.ctx, v.eb, editor.InvalidRevision, v.sc)
	require.NoError(v.t, err)
	return root
}

func (v *validated) openDir(path string, parent editor.Baton) editor.Baton {
	dir, err := v.e.DoOpenDirectory(v.ctx, path, parent, editor.InvalidRevision, v.sc)
	require.NoError(v.t, err)
	return dir
}

func (v *validated) openFile(path string, parent editor.Baton) editor.Baton {
	file, err := v.e.DoOpenFile(v.ctx, path, parent, editor.InvalidRevision, v.sc)
	require.NoError(v.t, err)
	return file
}

func requireViolation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, editor.ErrProtocolViolation.Is(err), "expected a protocol violation, got %v", err)
}

func TestValidatingEditorAcceptsValidEdits(t *testing.T) {
	v := newValidated(t)
	require.NoError(t, editortest.DriveEveryOp(v.ctx, v.e, v.eb))
	assert.Equal(t, editortest.EveryOp, v.r.Ops())
	assert.Equal(t, "tuna", string(v.r.Text["A/fish"]))

	for _, op := range editor.AllOps {
		assert.True(t, v.e.Has(op), op.String())
	}
}

func TestValidatingEditorOverAbsentCallbacks(t *testing.T) {
	ve, vb := editor.NewValidatingEditor(nil, nil)
	require.NoError(t, editortest.DriveEveryOp(context.Background(), ve, vb))
}

func TestCloseDirectoryWithOpenChild(t *testing.T) {
	v := newValidated(t)
	root := v.root()
	a := v.openDir("A", root)
	v.openDir("A/fish", a)

	err := v.e.DoCloseDirectory(v.ctx, a, v.sc)
	requireViolation(t, err)
	assert.Contains(t, err.Error(), "'A/fish' is still open")
	assert.Zero(t, v.r.Count(editor.OpCloseDirectory))

	requireViolation(t, v.e.DoCloseDirectory(v.ctx, root, v.sc))
}

func TestViolationFailsTheEdit(t *testing.T) {
	v := newValidated(t)
	root := v.root()
	a := v.openDir("A", root)

	requireViolation(t, v.e.DoCloseDirectory(v.ctx, root, v.sc))

	err := v.e.DoCloseDirectory(v.ctx, a, v.sc)
	requireViolation(t, err)
	assert.Contains(t, err.Error(), "must be aborted")
	_, err = v.e.DoAddFile(v.ctx, "A/tuna", a, nil, v.sc)
	requireViolation(t, err)
	assert.Zero(t, v.r.Count(editor.OpCloseDirectory))
	assert.Zero(t, v.r.Count(editor.OpAddFile))

	require.NoError(t, v.e.DoAbortEdit(v.ctx, v.eb))
	assert.Equal(t, 1, v.r.Count(editor.OpAbortEdit))
}

func TestCloseDirectoryWithOpenFile(t *testing.T) {
	v := newValidated(t)
	root := v.root()
	v.openFile("tuna", root)

	requireViolation(t, v.e.DoCloseDirectory(v.ctx, root, v.sc))
	assert.Zero(t, v.r.Count(editor.OpCloseDirectory))
}

func TestDeleteEntryOrdering(t *testing.T) {
	t.Run("delete then add", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()

		require.NoError(t, v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc))
		file, err := v.e.DoAddFile(v.ctx, "tuna", root, nil, v.sc)
		require.NoError(t, err)
		require.NoError(t, v.e.DoCloseFile(v.ctx, file, "", v.sc))

		requireViolation(t, v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc))
	})

	t.Run("delete after open", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		file := v.openFile("tuna", root)
		require.NoError(t, v.e.DoCloseFile(v.ctx, file, "", v.sc))

		requireViolation(t, v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc))
		assert.Zero(t, v.r.Count(editor.OpDeleteEntry))
	})

	t.Run("delete twice", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()

		require.NoError(t, v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc))
		requireViolation(t, v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc))
		assert.Equal(t, 1, v.r.Count(editor.OpDeleteEntry))
	})

	t.Run("open after delete", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()

		require.NoError(t, v.e.DoDeleteEntry(v.ctx, "A", editor.InvalidRevision, root, v.sc))
		_, err := v.e.DoOpenDirectory(v.ctx, "A", root, editor.InvalidRevision, v.sc)
		requireViolation(t, err)
	})

	t.Run("add twice", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()

		dir, err := v.e.DoAddDirectory(v.ctx, "A", root, nil, v.sc)
		require.NoError(t, err)
		require.NoError(t, v.e.DoCloseDirectory(v.ctx, dir, v.sc))

		_, err = v.e.DoAddDirectory(v.ctx, "A", root, nil, v.sc)
		requireViolation(t, err)
	})
}

func TestParentMustBeInnermostDirectory(t *testing.T) {
	tests := []struct {
		name string
		op   editor.Op
		call func(v *validated, root editor.Baton) error
	}{
		{"open directory", editor.OpOpenDirectory, func(v *validated, root editor.Baton) error {
			_, err := v.e.DoOpenDirectory(v.ctx, "B", root, editor.InvalidRevision, v.sc)
			return err
		}},
		{"add directory", editor.OpAddDirectory, func(v *validated, root editor.Baton) error {
			_, err := v.e.DoAddDirectory(v.ctx, "B", root, nil, v.sc)
			return err
		}},
		{"open file", editor.OpOpenFile, func(v *validated, root editor.Baton) error {
			_, err := v.e.DoOpenFile(v.ctx, "tuna", root, editor.InvalidRevision, v.sc)
			return err
		}},
		{"add file", editor.OpAddFile, func(v *validated, root editor.Baton) error {
			_, err := v.e.DoAddFile(v.ctx, "tuna", root, nil, v.sc)
			return err
		}},
		{"delete entry", editor.OpDeleteEntry, func(v *validated, root editor.Baton) error {
			return v.e.DoDeleteEntry(v.ctx, "tuna", editor.InvalidRevision, root, v.sc)
		}},
		{"absent directory", editor.OpAbsentDirectory, func(v *validated, root editor.Baton) error {
			return v.e.DoAbsentDirectory(v.ctx, "B", root, v.sc)
		}},
		{"absent file", editor.OpAbsentFile, func(v *validated, root editor.Baton) error {
			return v.e.DoAbsentFile(v.ctx, "tuna", root, v.sc)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := newValidated(t)
			root := v.root()
			v.openDir("A", root)

			err := test.call(v, root)
			requireViolation(t, err)
			assert.Contains(t, err.Error(), "'A' is the innermost open directory")
			assert.Zero(t, v.r.Count(test.op))
		})
	}

	t.Run("after the child closes", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		a := v.openDir("A", root)
		require.NoError(t, v.e.DoCloseDirectory(v.ctx, a, v.sc))

		file := v.openFile("tuna", root)
		require.NoError(t, v.e.DoCloseFile(v.ctx, file, "", v.sc))
		v.openDir("B", root)
	})
}

func TestFileMustBeClosedFirst(t *testing.T) {
	tests := []struct {
		name string
		call func(v *validated, root, file editor.Baton) error
	}{
		{"open directory", func(v *validated, root, file editor.Baton) error {
			_, err := v.e.DoOpenDirectory(v.ctx, "A", root, editor.InvalidRevision, v.sc)
			return err
		}},
		{"add file", func(v *validated, root, file editor.Baton) error {
			_, err := v.e.DoAddFile(v.ctx, "salmon", root, nil, v.sc)
			return err
		}},
		{"delete entry", func(v *validated, root, file editor.Baton) error {
			return v.e.DoDeleteEntry(v.ctx, "cod", editor.InvalidRevision, root, v.sc)
		}},
		{"change dir prop", func(v *validated, root, file editor.Baton) error {
			return v.e.DoChangeDirProp(v.ctx, root, "p", nil, v.sc)
		}},
		{"second text delta", func(v *validated, root, file editor.Baton) error {
			h, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
			if err != nil {
				return err
			}
			if err := h(nil); err != nil {
				return err
			}
			_, err = v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
			return err
		}},
		{"close twice", func(v *validated, root, file editor.Baton) error {
			if err := v.e.DoCloseFile(v.ctx, file, "", v.sc); err != nil {
				return err
			}
			return v.e.DoCloseFile(v.ctx, file, "", v.sc)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := newValidated(t)
			root := v.root()
			file := v.openFile("tuna", root)
			requireViolation(t, test.call(v, root, file))
		})
	}

	t.Run("text delta then props then close", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		file := v.openFile("tuna", root)

		h, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
		require.NoError(t, err)
		require.NoError(t, h(nil))
		require.NoError(t, v.e.DoChangeFileProp(v.ctx, file, "p", []byte("v"), v.sc))
		require.NoError(t, v.e.DoCloseFile(v.ctx, file, "", v.sc))
		assert.Equal(t, 1, v.r.Count(editor.OpCloseFile))
	})
}

func TestWindowsMustFinishFirst(t *testing.T) {
	windows := txdelta.Compute(nil, []byte("tuna"), 0)

	t.Run("calls while streaming", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		file := v.openFile("tuna", root)

		h, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
		require.NoError(t, err)
		require.NotNil(t, h)
		require.NoError(t, h(windows[0]))

		err = v.e.DoCloseFile(v.ctx, file, "", v.sc)
		requireViolation(t, err)
		assert.Contains(t, err.Error(), "still being sent")
		assert.Zero(t, v.r.Count(editor.OpCloseFile))

		requireViolation(t, h(nil))
		require.NoError(t, v.e.DoAbortEdit(v.ctx, v.eb))
	})

	t.Run("window after the stream ends", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		file := v.openFile("tuna", root)

		h, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
		require.NoError(t, err)
		require.NoError(t, h(windows[0]))
		require.NoError(t, h(nil))

		requireViolation(t, h(windows[0]))
	})

	t.Run("close after the stream ends", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		file := v.openFile("tuna", root)

		h, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
		require.NoError(t, err)
		require.NoError(t, h(windows[0]))
		require.NoError(t, h(nil))

		require.NoError(t, v.e.DoCloseFile(v.ctx, file, "", v.sc))
		assert.Equal(t, "tuna", string(v.r.Text["tuna"]))
	})
}

func TestEditLevelOrdering(t *testing.T) {
	t.Run("open root twice", func(t *testing.T) {
		v := newValidated(t)
		v.root()
		_, err := v.e.DoOpenRoot(v.ctx, v.eb, editor.InvalidRevision, v.sc)
		requireViolation(t, err)
	})

	t.Run("close edit with open batons", func(t *testing.T) {
		v := newValidated(t)
		v.root()
		requireViolation(t, v.e.DoCloseEdit(v.ctx, v.eb))
		assert.Zero(t, v.r.Count(editor.OpCloseEdit))
	})

	t.Run("calls after close edit", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		require.NoError(t, v.e.DoCloseDirectory(v.ctx, root, v.sc))
		require.NoError(t, v.e.DoCloseEdit(v.ctx, v.eb))

		_, err := v.e.DoOpenRoot(v.ctx, v.eb, editor.InvalidRevision, v.sc)
		requireViolation(t, err)
		requireViolation(t, v.e.DoCloseEdit(v.ctx, v.eb))
		requireViolation(t, v.e.DoAbortEdit(v.ctx, v.eb))
	})

	t.Run("foreign edit baton", func(t *testing.T) {
		v := newValidated(t)
		_, err := v.e.DoOpenRoot(v.ctx, "other", editor.InvalidRevision, v.sc)
		requireViolation(t, err)
	})

	t.Run("stale node baton", func(t *testing.T) {
		v := newValidated(t)
		root := v.root()
		a := v.openDir("A", root)
		require.NoError(t, v.e.DoCloseDirectory(v.ctx, a, v.sc))

		requireViolation(t, v.e.DoChangeDirProp(v.ctx, a, "p", nil, v.sc))
		_, err := v.e.DoOpenDirectory(v.ctx, "A/fish", a, editor.InvalidRevision, v.sc)
		requireViolation(t, err)
	})
}

func TestAbortAfterFailure(t *testing.T) {
	v := newValidated(t)
	errBoom := errors.New("boom")
	v.r.Fail[editor.OpOpenDirectory] = errBoom

	root := v.root()
	_, err := v.e.DoOpenDirectory(v.ctx, "A", root, editor.InvalidRevision, v.sc)
	assert.Equal(t, errBoom, err)

	requireViolation(t, v.e.DoCloseDirectory(v.ctx, root, v.sc))
	require.NoError(t, v.e.DoAbortEdit(v.ctx, v.eb))
	assert.Equal(t, 1, v.r.Count(editor.OpAbortEdit))
	requireViolation(t, v.e.DoAbortEdit(v.ctx, v.eb))
}

func TestAbortMidStream(t *testing.T) {
	v := newValidated(t)
	root := v.root()
	file := v.openFile("tuna", root)
	_, err := v.e.DoApplyTextDelta(v.ctx, file, "", v.sc)
	require.NoError(t, err)

	require.NoError(t, v.e.DoAbortEdit(v.ctx, v.eb))
}

func TestPathShape(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		path   string
	}{
		{"empty", "", ""},
		{"absolute", "", "/A"},
		{"trailing slash", "", "A/"},
		{"dot", "", "."},
		{"dot dot", "A", "A/.."},
		{"double slash", "A", "A//fish"},
		{"wrong parent", "A", "B/fish"},
		{"grandchild", "", "A/fish"},
		{"missing parent prefix", "A", "fish"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := newValidated(t)
			parent := v.root()
			if test.parent != "" {
				parent = v.openDir(test.parent, parent)
			}

			_, err := v.e.DoAddFile(v.ctx, test.path, parent, nil, v.sc)
			requireViolation(t, err)
			assert.Zero(t, v.r.Count(editor.OpAddFile))
		})
	}
}
