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

// Package util holds the command plumbing of the treedelta tool.
package util

import (
	"context"
	"fmt"
	"io"
	"strings"

	flag "github.com/juju/gnuflag"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/treedelta/libraries/utils/config"
	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

// Env is what a command runs against: the loaded configuration and where to read and write.
type Env struct {
	Config  config.YAMLConfig
	Logger  *logrus.Entry
	FS      filesys.Filesys
	Verbose bool
	Color   bool
	Out     io.Writer
	Err     io.Writer
}

type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(ctx context.Context, env *Env, args []string) int
	// Flags returns a new set of flags specific to this command.
	Flags func() *flag.FlagSet
	// UsageLine is the one-line usage message.
	// The first word in the line is taken to be the command name.
	UsageLine string
	// Short is the short description shown in the 'help' output.
	Short string
	// Long is the long message shown in the 'help <this-command>' output.
	Long string
	// Nargs is the minimum number of arguments expected after flags, specific to this command.
	Nargs int
}

// Name returns the command's name: the first word in the usage line.
func (nc *Command) Name() string {
	name := nc.UsageLine
	i := strings.Index(name, " ")
	if i >= 0 {
		name = name[:i]
	}
	return name
}

func countFlags(flags *flag.FlagSet) int {
	if flags == nil {
		return 0
	}

	n := 0
	flags.VisitAll(func(f *flag.Flag) {
		n++
	})
	return n
}

// Usage writes the command's usage and flags to w.
func (nc *Command) Usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s\n\n", nc.UsageLine)
	fmt.Fprintf(w, "%s\n", strings.TrimSpace(nc.Long))

	flags := nc.Flags()
	if countFlags(flags) > 0 {
		fmt.Fprintf(w, "\noptions:\n")
		flags.SetOutput(w)
		flags.PrintDefaults()
	}
}

// Exec parses args with the command's flags and runs it. It returns 1 without running the command when the
// arguments are invalid.
func (nc *Command) Exec(ctx context.Context, env *Env, args []string) int {
	flags := nc.Flags()
	flags.SetOutput(env.Err)
	flags.Usage = func() { nc.Usage(env.Err) }

	if err := flags.Parse(true, args); err != nil {
		return 1
	}

	args = flags.Args()
	if nc.Nargs != 0 && len(args) < nc.Nargs {
		nc.Usage(env.Err)
		return 1
	}

	return nc.Run(ctx, env, args)
}
