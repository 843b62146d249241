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

// Package cli holds the output helpers of the treedelta tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dolthub/treedelta/libraries/errhand"
)

var CliOut = color.Output
var CliErr = color.Error

// ColorMode is the value of the -color flag: 1 forces color on, 0 forces it off, and anything else detects a
// terminal.
type ColorMode int

const (
	ColorAuto ColorMode = -1
	ColorOff  ColorMode = 0
	ColorOn   ColorMode = 1
)

// UseColor decides whether output to f is colored.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}

	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor turns colored output on or off for every fatih/color printer in the process.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// PrintVError writes err to w, with details and cause when it is a VerboseError.
func PrintVError(w io.Writer, err error) {
	if err == nil {
		return
	}

	if verr, ok := err.(errhand.VerboseError); ok {
		fmt.Fprintln(w, verr.Verbose())
		return
	}

	fmt.Fprintln(w, color.RedString("error: %s", err.Error()))
}
