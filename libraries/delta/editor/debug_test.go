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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/editor/editortest"
)

func newTestLogger() (*logrus.Entry, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	lgr := logrus.New()
	lgr.SetOutput(buf)
	lgr.SetLevel(logrus.TraceLevel)
	lgr.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	return logrus.NewEntry(lgr), buf
}

func TestDebugEditorLogsCalls(t *testing.T) {
	lgr, buf := newTestLogger()
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()

	de, db := editor.NewDebugEditor(e, b, lgr)
	require.NoError(t, editortest.DriveEveryOp(context.Background(), de, db))
	assert.Equal(t, editortest.EveryOp, r.Ops())

	out := buf.String()
	for _, op := range editortest.EveryOp {
		assert.Contains(t, out, "op="+op.String())
	}
	assert.Contains(t, out, "edit_id=")
	assert.Contains(t, out, "open_file A/fish")
	assert.Contains(t, out, "add_directory new (from old@1)")
	assert.Contains(t, out, "end of delta")
	assert.NotContains(t, out, "level=warning")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Greater(t, len(lines), len(editortest.EveryOp))
}

func TestDebugEditorLogsFailures(t *testing.T) {
	lgr, buf := newTestLogger()
	r := editortest.NewRecorder("wrapped", nil)
	r.Fail[editor.OpAddFile] = errors.New("disk full")
	e, b := r.Editor()

	de, db := editor.NewDebugEditor(e, b, lgr)
	err := editortest.DriveFish(context.Background(), de, db)
	assert.EqualError(t, err, "disk full")
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "add_file failed: disk full")
}

func TestDebugEditorKeepsAbsence(t *testing.T) {
	e := &editor.Editor{
		AbortEdit: func(context.Context, editor.Baton) error { return nil },
	}

	de, db := editor.NewDebugEditor(e, "baton", nil)
	assert.Equal(t, "baton", db)
	for _, op := range editor.AllOps {
		assert.Equal(t, op == editor.OpAbortEdit, de.Has(op), op.String())
	}
}
