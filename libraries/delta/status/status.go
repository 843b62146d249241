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

// Package status implements an editor that prints the changes an edit makes, one line per entry.
package status

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// ChangeKind is the letter printed in front of a changed entry.
type ChangeKind byte

const (
	Added    ChangeKind = 'A'
	Deleted  ChangeKind = 'D'
	Modified ChangeKind = 'M'
	Replaced ChangeKind = 'R'
)

// Summary totals the changes of an edit. Bytes counts the new data carried by delta windows.
type Summary struct {
	Adds, Deletes, Modifies, Replaces uint64
	Bytes                             uint64
}

// Changes returns the number of changed entries.
func (s Summary) Changes() uint64 {
	return s.Adds + s.Deletes + s.Modifies + s.Replaces
}

func (s Summary) String() string {
	pluralize := func(singular, plural string, n uint64) string {
		noun := plural
		if n == 1 {
			noun = singular
		}
		return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), noun)
	}

	return fmt.Sprintf("%s, %s, %s, %s (%s of new text)",
		pluralize("addition", "additions", s.Adds),
		pluralize("deletion", "deletions", s.Deletes),
		pluralize("modification", "modifications", s.Modifies),
		pluralize("replacement", "replacements", s.Replaces),
		humanize.Bytes(s.Bytes))
}

// Options control the output of a Printer.
type Options struct {
	// StatOnly suppresses the per entry lines. Only the Summary is collected.
	StatOnly bool
	// Color enables colored output.
	Color bool
}

// Printer collects the changes of one edit and prints them to its writer. It is not safe for concurrent use.
type Printer struct {
	w       io.Writer
	opts    Options
	colors  map[ChangeKind]*color.Color
	summary Summary
	err     error
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	colors := map[ChangeKind]*color.Color{
		Added:    color.New(color.FgGreen),
		Deleted:  color.New(color.FgRed),
		Modified: color.New(color.FgYellow),
		Replaced: color.New(color.FgCyan),
	}

	for _, c := range colors {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Printer{w: w, opts: opts, colors: colors}
}

// Summary returns the totals collected so far.
func (p *Printer) Summary() Summary {
	return p.summary
}

func (p *Printer) count(kind ChangeKind) {
	switch kind {
	case Added:
		p.summary.Adds++
	case Deleted:
		p.summary.Deletes++
	case Modified:
		p.summary.Modifies++
	case Replaced:
		p.summary.Replaces++
	}
}

func (p *Printer) line(kind ChangeKind, path string, isDir bool) error {
	p.count(kind)
	if p.opts.StatOnly || p.err != nil {
		return p.err
	}

	if isDir {
		path += "/"
	}

	_, p.err = p.colors[kind].Fprintf(p.w, "%c   %s\n", kind, path)
	return p.err
}

type dirState struct {
	path    string
	deleted map[string]bool
	changed bool
	kind    ChangeKind
}

type fileState struct {
	path    string
	kind    ChangeKind
	changed bool
}

// Editor returns an editor that prints the changes it is told about. Deleted entries are printed when their
// directory closes, unless the entry is added again, which prints a single replacement line. Added files and
// modified files and directories are printed when they close.
func (p *Printer) Editor() (*editor.Editor, editor.Baton) {
	return &editor.Editor{
		OpenRoot: func(context.Context, editor.Baton, editor.Revision, *scope.Scope) (editor.Baton, error) {
			return &dirState{deleted: map[string]bool{}, kind: Modified}, nil
		},
		DeleteEntry: func(_ context.Context, path string, _ editor.Revision, parent editor.Baton, _ *scope.Scope) error {
			d, err := p.dir(parent)
			if err != nil {
				return err
			}
			d.deleted[path] = true
			return nil
		},
		AddDirectory: func(_ context.Context, path string, parent editor.Baton, _ *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
			d, err := p.dir(parent)
			if err != nil {
				return nil, err
			}

			kind := d.addKind(path)
			if err := p.line(kind, path, true); err != nil {
				return nil, err
			}
			return &dirState{path: path, deleted: map[string]bool{}, kind: kind}, nil
		},
		OpenDirectory: func(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
			if _, err := p.dir(parent); err != nil {
				return nil, err
			}
			return &dirState{path: path, deleted: map[string]bool{}, kind: Modified}, nil
		},
		ChangeDirProp: func(_ context.Context, dir editor.Baton, _ string, _ []byte, _ *scope.Scope) error {
			d, err := p.dir(dir)
			if err != nil {
				return err
			}
			d.changed = true
			return nil
		},
		CloseDirectory: func(_ context.Context, dir editor.Baton, _ *scope.Scope) error {
			d, err := p.dir(dir)
			if err != nil {
				return err
			}

			deleted := make([]string, 0, len(d.deleted))
			for path := range d.deleted {
				deleted = append(deleted, path)
			}
			sort.Strings(deleted)

			for _, path := range deleted {
				if err := p.line(Deleted, path, false); err != nil {
					return err
				}
			}

			if d.changed && d.kind == Modified && d.path != "" {
				return p.line(Modified, d.path, true)
			}
			return nil
		},
		AddFile: func(_ context.Context, path string, parent editor.Baton, _ *editor.CopyFrom, _ *scope.Scope) (editor.Baton, error) {
			d, err := p.dir(parent)
			if err != nil {
				return nil, err
			}
			return &fileState{path: path, kind: d.addKind(path)}, nil
		},
		OpenFile: func(_ context.Context, path string, parent editor.Baton, _ editor.Revision, _ *scope.Scope) (editor.Baton, error) {
			if _, err := p.dir(parent); err != nil {
				return nil, err
			}
			return &fileState{path: path, kind: Modified}, nil
		},
		ApplyTextDelta: func(_ context.Context, file editor.Baton, _ string, _ *scope.Scope) (txdelta.WindowHandler, error) {
			f, err := p.file(file)
			if err != nil {
				return nil, err
			}

			f.changed = true
			return func(w *txdelta.Window) error {
				if w != nil {
					p.summary.Bytes += uint64(len(w.NewData))
				}
				return nil
			}, nil
		},
		ChangeFileProp: func(_ context.Context, file editor.Baton, _ string, _ []byte, _ *scope.Scope) error {
			f, err := p.file(file)
			if err != nil {
				return err
			}
			f.changed = true
			return nil
		},
		CloseFile: func(_ context.Context, file editor.Baton, _ string, _ *scope.Scope) error {
			f, err := p.file(file)
			if err != nil {
				return err
			}

			if f.kind != Modified || f.changed {
				return p.line(f.kind, f.path, false)
			}
			return nil
		},
		CloseEdit: func(context.Context, editor.Baton) error {
			return p.err
		},
		AbortEdit: func(context.Context, editor.Baton) error {
			return nil
		},
	}, p
}

// addKind reports whether adding path replaces an entry deleted earlier in d.
func (d *dirState) addKind(path string) ChangeKind {
	if d.deleted[path] {
		delete(d.deleted, path)
		return Replaced
	}
	return Added
}

func (p *Printer) dir(b editor.Baton) (*dirState, error) {
	d, ok := b.(*dirState)
	if !ok {
		return nil, editor.ErrProtocolViolation.New(fmt.Sprintf("%v is not a status directory baton", b))
	}
	return d, nil
}

func (p *Printer) file(b editor.Baton) (*fileState, error) {
	f, ok := b.(*fileState)
	if !ok {
		return nil, editor.ErrProtocolViolation.New(fmt.Sprintf("%v is not a status file baton", b))
	}
	return f, nil
}
