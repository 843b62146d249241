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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/editor/editortest"
	"github.com/dolthub/treedelta/libraries/delta/scope"
)

// failOnCall returns a check that fails on the nth call and every call after it.
func failOnCall(n int) (editor.CancelFunc, *int) {
	calls := 0
	return func() error {
		calls++
		if calls >= n {
			return editor.ErrCancelled.New("stop requested")
		}
		return nil
	}, &calls
}

func TestCancellationFishScenario(t *testing.T) {
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()
	check, calls := failOnCall(3)

	ce, cb := editor.Cancellation(check, e, b)
	err := editortest.DriveFish(context.Background(), ce, cb)

	require.Error(t, err)
	assert.True(t, editor.ErrCancelled.Is(err))
	assert.Equal(t, 3, *calls)
	assert.Equal(t, []editor.Op{editor.OpOpenRoot, editor.OpOpenDirectory}, r.Ops())
}

func TestCancellationCoversEveryOp(t *testing.T) {
	for _, op := range editor.AllOps {
		t.Run(op.String(), func(t *testing.T) {
			r := editortest.NewRecorder("wrapped", nil)
			e, b := r.Editor()
			ce, cb := editor.Cancellation(func() error { return editor.ErrCancelled.New("now") }, e, b)

			err := editortest.Invoke(context.Background(), ce, op, cb, nil)
			assert.True(t, editor.ErrCancelled.Is(err))
			assert.Empty(t, r.Calls)
		})
	}
}

func TestCancellationDelegatesWhenNotCancelled(t *testing.T) {
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()
	checks := 0
	ce, cb := editor.Cancellation(func() error {
		checks++
		return nil
	}, e, b)

	require.NoError(t, editortest.DriveEveryOp(context.Background(), ce, cb))
	assert.Equal(t, editortest.EveryOp, r.Ops())
	assert.Equal(t, len(editortest.EveryOp), checks)
	assert.Equal(t, "tuna", string(r.Text["A/fish"]))
}

func TestCancellationNilCheckIsTransparent(t *testing.T) {
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()

	ce, cb := editor.Cancellation(nil, e, b)
	assert.Same(t, e, ce)
	assert.Equal(t, b, cb)

	var nilEditor *editor.Editor
	ce, cb = editor.Cancellation(nil, nilEditor, "baton")
	assert.Nil(t, ce)
	assert.Equal(t, "baton", cb)
}

func TestCancellationKeepsAbsence(t *testing.T) {
	e := &editor.Editor{
		CloseEdit: func(context.Context, editor.Baton) error { return nil },
	}

	ce, _ := editor.Cancellation(func() error { return nil }, e, nil)
	for _, op := range editor.AllOps {
		assert.Equal(t, op == editor.OpCloseEdit, ce.Has(op), op.String())
	}
}

func TestCancellationAtCloseEdit(t *testing.T) {
	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()
	check, _ := failOnCall(len(editortest.FishOps))

	ce, cb := editor.Cancellation(check, e, b)
	err := editortest.DriveFish(context.Background(), ce, cb)

	assert.True(t, editor.ErrCancelled.Is(err))
	assert.Equal(t, editortest.FishOps[:len(editortest.FishOps)-1], r.Ops())
	assert.Zero(t, r.Count(editor.OpCloseEdit))
}

func TestContextCancelFunc(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	check := editor.ContextCancelFunc(ctx)
	require.NoError(t, check())

	cancel()
	err := check()
	require.Error(t, err)
	assert.True(t, editor.ErrCancelled.Is(err))
	assert.Contains(t, err.Error(), context.Canceled.Error())

	r := editortest.NewRecorder("wrapped", nil)
	e, b := r.Editor()
	ce, cb := editor.Cancellation(check, e, b)

	sc := scope.New(nil)
	defer sc.Release()
	_, err = ce.DoOpenRoot(ctx, cb, editor.InvalidRevision, sc)
	assert.True(t, editor.IsKind(err, editor.ErrCancelled))
	assert.Empty(t, r.Calls)
}
