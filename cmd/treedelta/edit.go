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

package main

import (
	"context"

	"github.com/dolthub/treedelta/cmd/treedelta/util"
	"github.com/dolthub/treedelta/libraries/delta/drive"
	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/errhand"
)

// emptyTreeArg names the empty tree on the command line.
const emptyTreeArg = "-"

// sourceFor returns the tree named by a <from-dir> or <to-dir> argument.
func sourceFor(env *util.Env, dir string) (drive.Source, errhand.VerboseError) {
	if dir == emptyTreeArg {
		return drive.EmptySource(), nil
	}

	abs, err := env.FS.Abs(dir)
	if err != nil {
		return nil, errhand.BuildDError("error: invalid path '%s'", dir).AddCause(err).Build()
	}

	if exists, isDir := env.FS.Exists(abs); !exists || !isDir {
		return nil, errhand.BuildDError("error: '%s' is not a directory", dir).Build()
	}

	return drive.FSSource(env.FS, abs), nil
}

// editChain wraps e in the decorators every command drives through: the debug editor when verbose, the validating
// editor, and a cancellation editor that stops the edit once ctx is done. The returned options abort the edit below
// the cancellation editor, which would refuse the abort after a cancellation.
func editChain(ctx context.Context, env *util.Env, e *editor.Editor, eb editor.Baton) (*editor.Editor, editor.Baton, drive.Options) {
	if env.Verbose {
		e, eb = editor.NewDebugEditor(e, eb, env.Logger)
	}

	e, eb = editor.NewValidatingEditor(e, eb)
	inner, innerBaton := e, eb

	opts := drive.DefaultOptions()
	opts.MaxWindow = env.Config.WindowSize()
	opts.Logger = env.Logger
	opts.Abort = func(ctx context.Context) error {
		return inner.DoAbortEdit(ctx, innerBaton)
	}

	e, eb = editor.Cancellation(editor.ContextCancelFunc(ctx), e, eb)
	return e, eb, opts
}

// editFailure describes a failed edit to the user.
func editFailure(err error, dispFmt string, args ...interface{}) errhand.VerboseError {
	bdr := errhand.BuildDError(dispFmt, args...)

	switch {
	case editor.IsKind(err, editor.ErrCancelled):
		bdr.AddDetails("the edit was cancelled and nothing was changed")
	case editor.IsKind(err, editor.ErrChecksumMismatch):
		bdr.AddDetails("a target does not hold the <from-dir> tree")
	case editor.IsKind(err, editor.ErrNotFound):
		bdr.AddDetails("a target is missing entries of the <from-dir> tree")
	case editor.IsKind(err, editor.ErrProtocolViolation):
		bdr.AddDetails("the edit was malformed, this is a bug")
	}

	return bdr.AddCause(err).Build()
}
