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

	flag "github.com/juju/gnuflag"

	"github.com/dolthub/treedelta/cmd/treedelta/cli"
	"github.com/dolthub/treedelta/cmd/treedelta/util"
	"github.com/dolthub/treedelta/libraries/delta/drive"
	"github.com/dolthub/treedelta/libraries/delta/status"
	"github.com/dolthub/treedelta/libraries/errhand"
)

var treedeltaDiff = &util.Command{
	Run:       runDiff,
	UsageLine: "diff [--stat] <from-dir> <to-dir>",
	Short:     "Shows the changes between two directories",
	Long: `Prints one line per changed entry: A for added, D for deleted, M for modified and R for an entry replaced by one of the other kind.
Use - for <from-dir> to describe <to-dir> as a tree of additions.`,
	Flags: setupDiffFlags,
	Nargs: 2,
}

var diffStat bool

func setupDiffFlags() *flag.FlagSet {
	flagSet := flag.NewFlagSet("diff", flag.ContinueOnError)
	flagSet.BoolVar(&diffStat, "stat", false, "Writes a summary of the changes instead")
	return flagSet
}

func runDiff(ctx context.Context, env *util.Env, args []string) int {
	if verr := diff(ctx, env, args[0], args[1]); verr != nil {
		cli.PrintVError(env.Err, verr)
		return 1
	}
	return 0
}

func diff(ctx context.Context, env *util.Env, fromDir, toDir string) errhand.VerboseError {
	from, verr := sourceFor(env, fromDir)
	if verr != nil {
		return verr
	}

	to, verr := sourceFor(env, toDir)
	if verr != nil {
		return verr
	}

	p := status.NewPrinter(env.Out, status.Options{StatOnly: diffStat, Color: env.Color})
	e, eb := p.Editor()
	e, eb, opts := editChain(ctx, env, e, eb)

	if err := drive.DirDeltas(ctx, from, to, e, eb, opts); err != nil {
		return editFailure(err, "error: failed to compare %s and %s", fromDir, toDir)
	}

	if diffStat {
		fmt.Fprintln(env.Out, p.Summary())
	}
	return nil
}
