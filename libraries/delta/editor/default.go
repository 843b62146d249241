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

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// DefaultEditor returns an editor with every callback present and doing nothing. Consumers that only care about a
// few calls can start from it and replace the rest. Decorators never substitute it for an absent callback.
func DefaultEditor() *Editor {
	return &Editor{
		SetTargetRevision: func(context.Context, Baton, Revision, *scope.Scope) error {
			return nil
		},
		OpenRoot: func(_ context.Context, eb Baton, _ Revision, _ *scope.Scope) (Baton, error) {
			return eb, nil
		},
		DeleteEntry: func(context.Context, string, Revision, Baton, *scope.Scope) error {
			return nil
		},
		AddDirectory: func(_ context.Context, _ string, parent Baton, _ *CopyFrom, _ *scope.Scope) (Baton, error) {
			return parent, nil
		},
		OpenDirectory: func(_ context.Context, _ string, parent Baton, _ Revision, _ *scope.Scope) (Baton, error) {
			return parent, nil
		},
		ChangeDirProp: func(context.Context, Baton, string, []byte, *scope.Scope) error {
			return nil
		},
		CloseDirectory: func(context.Context, Baton, *scope.Scope) error {
			return nil
		},
		AbsentDirectory: func(context.Context, string, Baton, *scope.Scope) error {
			return nil
		},
		AddFile: func(_ context.Context, _ string, parent Baton, _ *CopyFrom, _ *scope.Scope) (Baton, error) {
			return parent, nil
		},
		OpenFile: func(_ context.Context, _ string, parent Baton, _ Revision, _ *scope.Scope) (Baton, error) {
			return parent, nil
		},
		ApplyTextDelta: func(context.Context, Baton, string, *scope.Scope) (txdelta.WindowHandler, error) {
			return nil, nil
		},
		ChangeFileProp: func(context.Context, Baton, string, []byte, *scope.Scope) error {
			return nil
		},
		CloseFile: func(context.Context, Baton, string, *scope.Scope) error {
			return nil
		},
		AbsentFile: func(context.Context, string, Baton, *scope.Scope) error {
			return nil
		},
		CloseEdit: func(context.Context, Baton) error {
			return nil
		},
		AbortEdit: func(context.Context, Baton) error {
			return nil
		},
	}
}
