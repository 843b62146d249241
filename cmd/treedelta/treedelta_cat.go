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

	flag "github.com/juju/gnuflag"

	"github.com/dolthub/treedelta/cmd/treedelta/cli"
	"github.com/dolthub/treedelta/cmd/treedelta/util"
	"github.com/dolthub/treedelta/libraries/delta/apply"
	"github.com/dolthub/treedelta/libraries/delta/drive"
	"github.com/dolthub/treedelta/libraries/errhand"
)

var treedeltaCat = &util.Command{
	Run:       runCat,
	UsageLine: "cat [--bolt] <tree> <path>",
	Short:     "Prints a file of a tree",
	Long:      "<tree> is a directory, or a bolt database file written by apply --bolt. <path> is '/' separated and relative to the root of the tree.",
	Flags:     setupCatFlags,
	Nargs:     2,
}

var catBolt bool

func setupCatFlags() *flag.FlagSet {
	flagSet := flag.NewFlagSet("cat", flag.ContinueOnError)
	flagSet.BoolVar(&catBolt, "bolt", false, "<tree> is a bolt database file")
	return flagSet
}

func runCat(ctx context.Context, env *util.Env, args []string) int {
	data, verr := readTreeFile(ctx, env, args[0], args[1])
	if verr != nil {
		cli.PrintVError(env.Err, verr)
		return 1
	}

	if _, err := env.Out.Write(data); err != nil {
		cli.PrintVError(env.Err, errhand.BuildDError("error: failed to write output").AddCause(err).Build())
		return 1
	}
	return 0
}

func readTreeFile(ctx context.Context, env *util.Env, treeArg, path string) ([]byte, errhand.VerboseError) {
	if !catBolt {
		src, verr := sourceFor(env, treeArg)
		if verr != nil {
			return nil, verr
		}

		data, err := src.ReadFile(ctx, path)
		if err != nil {
			return nil, errhand.BuildDError("error: failed to read %s", path).AddCause(err).Build()
		}
		return data, nil
	}

	abs, err := env.FS.Abs(treeArg)
	if err != nil {
		return nil, errhand.BuildDError("error: invalid path '%s'", treeArg).AddCause(err).Build()
	}

	// opening a missing file would create an empty database
	if exists, isDir := env.FS.Exists(abs); !exists || isDir {
		return nil, errhand.BuildDError("error: '%s' is not a bolt database file", treeArg).Build()
	}

	tree, err := apply.OpenBoltTree(abs)
	if err != nil {
		return nil, errhand.BuildDError("error: failed to open bolt tree %s", treeArg).AddCause(err).Build()
	}
	defer tree.Close()

	var data []byte
	err = tree.View(func(txn apply.Txn) error {
		var err error
		data, err = drive.TxnSource(txn).ReadFile(ctx, path)
		return err
	})
	if err != nil {
		return nil, errhand.BuildDError("error: failed to read %s", path).AddCause(err).Build()
	}

	return data, nil
}
