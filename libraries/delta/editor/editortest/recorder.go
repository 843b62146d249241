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

// Package editortest provides editors and drivers for testing code built on the editor package.
package editortest

import (
	"context"
	"fmt"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// Call is one callback a Recorder received.
type Call struct {
	Op   editor.Op
	Path string
}

func (c Call) String() string {
	if c.Path == "" {
		return c.Op.String()
	}
	return c.Op.String() + " " + c.Path
}

type node struct {
	owner *Recorder
	path  string
}

// Recorder is an editor that records every call it receives. Its node batons carry the node's path, and a call
// made with a baton the Recorder did not issue fails.
type Recorder struct {
	// Name prefixes the entries this Recorder adds to Journal.
	Name string
	// Journal, if set, is shared between recorders to observe the order of calls across editors.
	Journal *[]string
	// Fail makes the named callbacks return the given error after recording the call.
	Fail map[editor.Op]error

	Calls   []Call
	Windows int
	Text    map[string][]byte
}

// NewRecorder returns a Recorder that writes into journal, which may be nil.
func NewRecorder(name string, journal *[]string) *Recorder {
	return &Recorder{Name: name, Journal: journal, Fail: map[editor.Op]error{}, Text: map[string][]byte{}}
}

// Count returns the number of calls received for op.
func (r *Recorder) Count(op editor.Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the callbacks received, in order.
func (r *Recorder) Ops() []editor.Op {
	ops := make([]editor.Op, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (r *Recorder) record(op editor.Op, path string) error {
	r.Calls = append(r.Calls, Call{Op: op, Path: path})
	if r.Journal != nil {
		*r.Journal = append(*r.Journal, r.Name+":"+op.String())
	}
	return r.Fail[op]
}

func (r *Recorder) pathOf(b editor.Baton) (string, error) {
	if b == nil {
		return "", fmt.Errorf("%s: nil baton", r.Name)
	}

	n, ok := b.(*node)
	if !ok || n.owner != r {
		return "", fmt.Errorf("%s: baton %v was not issued by this editor", r.Name, b)
	}

	return n.path, nil
}

func (r *Recorder) child(op editor.Op, path string, parent editor.Baton) (editor.Baton, error) {
	if _, err := r.pathOf(parent); err != nil {
		return nil, err
	}
	if err := r.record(op, path); err != nil {
		return nil, err
	}
	return &node{owner: r, path: path}, nil
}

func (r *Recorder) onNode(op editor.Op, b editor.Baton) error {
	path, err := r.pathOf(b)
	if err != nil {
		return err
	}
	return r.record(op, path)
}

// Editor returns an editor with every callback present and the Recorder's edit baton.
func (r *Recorder) Editor() (*editor.Editor, editor.Baton) {
	return &editor.Editor{
		SetTargetRevision: func(_ context.Context, _ editor.Baton, _ editor.Revision, _ *scope.Scope) error {
			return r.record(editor.OpSetTargetRevision, "")
		},
		OpenRoot: func(_ context.Context, _ editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
			if err := r.record(editor.OpOpenRoot, ""); err != nil {
				return nil, err
			}
			return &node{owner: r}, nil
		},
		DeleteEntry: func(_ context.Context, path string, _ editor.Revision, parent editor.Baton, _ *scope.Scope) error {
			if _, err := r.pathOf(parent); err != nil {
				return err
			}
			return r.record(editor.OpDeleteEntry, path)
		},
		AddDirectory: func(_ context.Context, path string, parent editor.Baton, _ *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
			return r.child(editor.OpAddDirectory, path, parent)
		},
		OpenDirectory: func(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
			return r.child(editor.OpOpenDirectory, path, parent)
		},
		ChangeDirProp: func(_ context.Context, dir editor.Baton, _ string, _ []byte, _ *scope.Scope) error {
			return r.onNode(editor.OpChangeDirProp, dir)
		},
		CloseDirectory: func(_ context.Context, dir editor.Baton, _ *scope.Scope) error {
			return r.onNode(editor.OpCloseDirectory, dir)
		},
		AbsentDirectory: func(_ context.Context, path string, parent editor.Baton, _ *scope.Scope) error {
			if _, err := r.pathOf(parent); err != nil {
				return err
			}
			return r.record(editor.OpAbsentDirectory, path)
		},
		AddFile: func(_ context.Context, path string, parent editor.Baton, _ *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
			return r.child(editor.OpAddFile, path, parent)
		},
		OpenFile: func(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
			return r.child(editor.OpOpenFile, path, parent)
		},
		ApplyTextDelta: func(_ context.Context, file editor.Baton, _ string, _ *scope.Scope) (txdelta.WindowHandler, error) {
			path, err := r.pathOf(file)
			if err != nil {
				return nil, err
			}
			if err := r.record(editor.OpApplyTextDelta, path); err != nil {
				return nil, err
			}

			var text []byte
			return func(w *txdelta.Window) error {
				r.Windows++
				if w == nil {
					r.Text[path] = text
					return nil
				}
				for _, op := range w.Ops {
					if op.Kind == txdelta.CopyNew {
						text = append(text, w.NewData[op.Offset:op.Offset+op.Length]...)
					}
				}
				return nil
			}, nil
		},
		ChangeFileProp: func(_ context.Context, file editor.Baton, _ string, _ []byte, _ *scope.Scope) error {
			return r.onNode(editor.OpChangeFileProp, file)
		},
		CloseFile: func(_ context.Context, file editor.Baton, _ string, _ *scope.Scope) error {
			return r.onNode(editor.OpCloseFile, file)
		},
		AbsentFile: func(_ context.Context, path string, parent editor.Baton, _ *scope.Scope) error {
			if _, err := r.pathOf(parent); err != nil {
				return err
			}
			return r.record(editor.OpAbsentFile, path)
		},
		CloseEdit: func(_ context.Context, _ editor.Baton) error {
			return r.record(editor.OpCloseEdit, "")
		},
		AbortEdit: func(_ context.Context, _ editor.Baton) error {
			return r.record(editor.OpAbortEdit, "")
		},
	}, r
}
