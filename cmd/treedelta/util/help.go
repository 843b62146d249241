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

package util

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/template"
)

var usageTemplate = `{{.UsageLine}}

Usage:

	{{.ProgName}} [global options] command [arguments]

The commands are:
{{range .Commands}}
	{{.Name | printf "%-11s"}} {{.Short}}{{end}}

Use "{{.ProgName}} help [command]" for more information about a command.

`

var helpTemplate = `usage: {{.ProgName}} {{.Cmd.UsageLine}}

{{.Cmd.Long | trim}}
`

// Help describes a set of commands.
type Help struct {
	ProgName  string
	UsageLine string
	Commands  []*Command
}

// tmpl executes the given template text on data, writing the result to w.
func tmpl(w io.Writer, text string, data interface{}) {
	t := template.New("top")
	t.Funcs(template.FuncMap{"trim": strings.TrimSpace})
	template.Must(t.Parse(text))
	if err := t.Execute(w, data); err != nil {
		panic(err)
	}
}

// PrintUsage writes the list of commands to w.
func (h Help) PrintUsage(w io.Writer) {
	bw := bufio.NewWriter(w)
	tmpl(bw, usageTemplate, h)
	bw.Flush()
}

// Run implements the 'help' command. It returns the exit code.
func (h Help) Run(out, errOut io.Writer, args []string) int {
	if len(args) == 0 {
		h.PrintUsage(out)
		return 0
	}
	if len(args) != 1 {
		fmt.Fprintf(errOut, "usage: %s help command\n\nToo many arguments given.\n", h.ProgName)
		return 1
	}

	if cmd := h.Find(args[0]); cmd != nil {
		tmpl(out, helpTemplate, struct {
			ProgName string
			Cmd      *Command
		}{h.ProgName, cmd})

		flags := cmd.Flags()
		if countFlags(flags) > 0 {
			fmt.Fprintf(out, "\noptions:\n")
			flags.SetOutput(out)
			flags.PrintDefaults()
		}
		return 0
	}

	fmt.Fprintf(errOut, "Unknown help topic %#q\n", args[0])
	h.PrintUsage(errOut)
	return 1
}

// Find returns the command called name, or nil.
func (h Help) Find(name string) *Command {
	for _, cmd := range h.Commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}
