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
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/juju/gnuflag"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/treedelta/cmd/treedelta/cli"
	"github.com/dolthub/treedelta/cmd/treedelta/util"
	"github.com/dolthub/treedelta/libraries/errhand"
	"github.com/dolthub/treedelta/libraries/utils/config"
	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

var commands = []*util.Command{
	treedeltaDiff,
	treedeltaApply,
	treedeltaCat,
}

var help = util.Help{
	ProgName:  "treedelta",
	UsageLine: "treedelta describes the difference between two directory trees as an edit, and applies it.",
	Commands:  commands,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], cli.CliOut, cli.CliErr)
	stop()
	os.Exit(code)
}

type globalFlags struct {
	configPath    string
	cpuProfileDir string
	verbose       bool
	colorMode     int
}

func (gf *globalFlags) flagSet(errOut io.Writer) *flag.FlagSet {
	flags := flag.NewFlagSet("treedelta", flag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.StringVar(&gf.configPath, "config", "", "read settings from this YAML file")
	flags.StringVar(&gf.cpuProfileDir, "cpuprofile", "", "write a cpu profile into this directory")
	flags.BoolVar(&gf.verbose, "v", false, "log every editor call")
	flags.IntVar(&gf.colorMode, "color", int(cli.ColorAuto), "value of 1 forces color on, 0 forces color off")
	flags.Usage = func() { help.PrintUsage(errOut) }
	return flags
}

// run executes the command line args and returns the exit code.
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	gf := &globalFlags{}
	flags := gf.flagSet(errOut)
	if err := flags.Parse(false, args); err != nil {
		return 1
	}

	args = flags.Args()
	if len(args) == 0 {
		help.PrintUsage(errOut)
		return 1
	}

	if args[0] == "help" {
		return help.Run(out, errOut, args[1:])
	}

	cmd := help.Find(args[0])
	if cmd == nil {
		fmt.Fprintf(errOut, "treedelta: unknown command %#q\n", args[0])
		help.PrintUsage(errOut)
		return 1
	}

	cfg, verr := loadConfig(filesys.LocalFS, gf)
	if verr != nil {
		cli.PrintVError(errOut, verr)
		return 1
	}

	if gf.cpuProfileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(gf.cpuProfileDir), profile.Quiet).Stop()
	}

	useColor := cli.UseColor(cli.ColorMode(gf.colorMode), os.Stdout)
	cli.SetColor(useColor)

	lgr := logrus.StandardLogger()
	lgr.SetOutput(errOut)
	lgr.SetLevel(cfg.LogLevel())
	lgr.SetFormatter(&logrus.TextFormatter{DisableColors: !useColor, FullTimestamp: true})

	env := &util.Env{
		Config:  cfg,
		Logger:  logrus.NewEntry(lgr).WithField("command", cmd.Name()),
		FS:      filesys.LocalFS,
		Verbose: gf.verbose,
		Color:   useColor,
		Out:     out,
		Err:     errOut,
	}

	var code int
	verr = errhand.PanicToVError("error: treedelta failed unexpectedly", func() errhand.VerboseError {
		code = cmd.Exec(ctx, env, args[1:])
		return nil
	})

	if verr != nil {
		cli.PrintVError(errOut, verr)
		return 1
	}

	return code
}

func loadConfig(fs filesys.ReadableFS, gf *globalFlags) (config.YAMLConfig, errhand.VerboseError) {
	cfg := config.YAMLConfig{}
	if gf.configPath != "" {
		loaded, err := config.YamlConfigFromFile(fs, gf.configPath)
		if err != nil {
			return cfg, errhand.BuildDError("error: invalid configuration").AddCause(err).Build()
		}
		cfg = *loaded
	}

	if gf.verbose && cfg.LogLevel() < logrus.DebugLevel {
		cfg.SetLogLevel(logrus.DebugLevel)
	}

	return cfg, nil
}
