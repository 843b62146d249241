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
	"fmt"
	"time"

	flag "github.com/juju/gnuflag"

	"github.com/dolthub/treedelta/cmd/treedelta/cli"
	"github.com/dolthub/treedelta/cmd/treedelta/util"
	"github.com/dolthub/treedelta/libraries/delta/apply"
	"github.com/dolthub/treedelta/libraries/delta/drive"
	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/status"
	"github.com/dolthub/treedelta/libraries/errhand"
)

var treedeltaApply = &util.Command{
	Run:       runApply,
	UsageLine: "apply [--parallel] [--timeout <duration>] [--bolt] [--quiet] <from-dir> <to-dir> <target>...",
	Short:     "Applies the changes between two directories to targets",
	Long: `Every target must hold the same tree as <from-dir>. After a successful apply it holds the tree of <to-dir>. A target is a directory, or a bolt database file with --bolt.
All targets are changed by one edit unless --parallel is given, in which case each target gets its own edit and the edits run concurrently. A target is only changed when its edit closes, so a failure before that point leaves it untouched.
Use - for <from-dir> to fill empty targets with <to-dir>.`,
	Flags: setupApplyFlags,
	Nargs: 3,
}

var (
	applyParallel bool
	applyBolt     bool
	applyQuiet    bool
	applyTimeout  time.Duration
)

func setupApplyFlags() *flag.FlagSet {
	flagSet := flag.NewFlagSet("apply", flag.ContinueOnError)
	flagSet.BoolVar(&applyParallel, "parallel", false, "drive one edit per target concurrently")
	flagSet.BoolVar(&applyBolt, "bolt", false, "targets are bolt database files")
	flagSet.BoolVar(&applyQuiet, "quiet", false, "print only the summary")
	flagSet.DurationVar(&applyTimeout, "timeout", 0, "cancel the edit after this long")
	return flagSet
}

func runApply(ctx context.Context, env *util.Env, args []string) int {
	if verr := applyTargets(ctx, env, args[0], args[1], args[2:]); verr != nil {
		cli.PrintVError(env.Err, verr)
		return 1
	}
	return 0
}

type target struct {
	name  string
	tree  apply.Tree
	close func() error
}

func openTarget(env *util.Env, name string) (target, errhand.VerboseError) {
	abs, err := env.FS.Abs(name)
	if err != nil {
		return target{}, errhand.BuildDError("error: invalid path '%s'", name).AddCause(err).Build()
	}

	if applyBolt {
		tree, err := apply.OpenBoltTree(abs)
		if err != nil {
			return target{}, errhand.BuildDError("error: failed to open bolt tree %s", name).AddCause(err).Build()
		}
		return target{name: name, tree: tree, close: tree.Close}, nil
	}

	if err := env.FS.MkDirs(abs); err != nil {
		return target{}, errhand.BuildDError("error: failed to create %s", name).AddCause(err).Build()
	}

	tree, err := apply.NewFSTree(env.FS, abs)
	if err != nil {
		return target{}, errhand.BuildDError("error: failed to open %s", name).AddCause(err).Build()
	}
	return target{name: name, tree: tree, close: func() error { return nil }}, nil
}

func applyTargets(ctx context.Context, env *util.Env, fromDir, toDir string, names []string) errhand.VerboseError {
	from, verr := sourceFor(env, fromDir)
	if verr != nil {
		return verr
	}

	to, verr := sourceFor(env, toDir)
	if verr != nil {
		return verr
	}

	var targets []target
	defer func() {
		for _, t := range targets {
			if err := t.close(); err != nil {
				env.Logger.Warnf("failed to close %s: %v", t.name, err)
			}
		}
	}()

	for _, name := range names {
		t, verr := openTarget(env, name)
		if verr != nil {
			return verr
		}
		targets = append(targets, t)
	}

	timeout := env.Config.Timeout()
	if applyTimeout > 0 {
		timeout = applyTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	applyOpts := func(t target) apply.Options {
		return apply.Options{VerifyChecksums: env.Config.VerifyChecksum(), Logger: env.Logger.WithField("target", t.name)}
	}

	p := status.NewPrinter(env.Out, status.Options{StatOnly: applyQuiet, Color: env.Color})

	var err error
	if applyParallel || env.Config.Parallel() {
		var edits []drive.Edit
		for _, t := range targets {
			ae, ab := apply.NewEditor(t.tree, applyOpts(t))
			edits = append(edits, newEdit(ctx, env, from, to, ae, ab))
		}

		pe, pb := p.Editor()
		edits = append(edits, newEdit(ctx, env, from, to, pe, pb))

		err = drive.DriveAll(ctx, edits)
	} else {
		// appliers come first so nothing is printed for a change a target rejects
		e, eb := p.Editor()
		for i := len(targets) - 1; i >= 0; i-- {
			ae, ab := apply.NewEditor(targets[i].tree, applyOpts(targets[i]))
			e, eb = editor.Compose(ae, ab, e, eb)
		}

		ed := newEdit(ctx, env, from, to, e, eb)
		err = drive.DirDeltas(ctx, ed.From, ed.To, ed.Editor, ed.Baton, ed.Options)
	}

	if err != nil {
		return editFailure(err, "error: failed to apply the changes from %s to %s", fromDir, toDir)
	}

	fmt.Fprintln(env.Out, p.Summary())
	return nil
}

func newEdit(ctx context.Context, env *util.Env, from, to drive.Source, e *editor.Editor, eb editor.Baton) drive.Edit {
	e, eb, opts := editChain(ctx, env, e, eb)
	return drive.Edit{From: from, To: to, Editor: e, Baton: eb, Options: opts}
}
