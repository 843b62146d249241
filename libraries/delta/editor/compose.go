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
	"fmt"

	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/txdelta"
)

// composedEdit is the edit baton of a composed editor. It owns the arena of node batons for the edit.
type composedEdit struct {
	b1, b2 Baton
	nodes  arena[batonPair]
}

type batonPair struct {
	b1, b2 Baton
}

// composedNode is the baton a composed editor hands out for a directory or file.
type composedNode handle

// OpenNodes returns the number of node batons the composed edit is still tracking. It is zero once every opened
// node has been closed.
func OpenNodes(eb Baton) int {
	if c, ok := eb.(*composedEdit); ok {
		return c.nodes.live()
	}

	return 0
}

func (c *composedEdit) check(eb Baton) error {
	if eb != Baton(c) {
		return ErrProtocolViolation.New(fmt.Sprintf("edit baton %v does not belong to this composed edit", eb))
	}

	return nil
}

func (c *composedEdit) pair(b Baton) (batonPair, error) {
	if b == nil {
		return batonPair{}, nil
	}

	node, ok := b.(composedNode)
	if !ok {
		return batonPair{}, ErrProtocolViolation.New(fmt.Sprintf("baton %v was not issued by this composed edit", b))
	}

	p, ok := c.nodes.get(handle(node))
	if !ok {
		return batonPair{}, ErrProtocolViolation.New(fmt.Sprintf("baton %d is closed or unknown", node))
	}

	return p, nil
}

func (c *composedEdit) issue(p batonPair) Baton {
	return composedNode(c.nodes.put(p))
}

func (c *composedEdit) retire(b Baton) {
	if node, ok := b.(composedNode); ok {
		c.nodes.release(handle(node))
	}
}

// Compose returns an editor that forwards every call to e1 and then to e2, along with its edit baton. If e1 fails
// the call returns that error and e2 is not called. A callback absent from both editors is absent from the result,
// and a nil editor has no callbacks. Node batons pair the batons of both editors and are freed when the node is
// closed. Window handlers from both editors are combined with txdelta.Tee.
func Compose(e1 *Editor, b1 Baton, e2 *Editor, b2 Baton) (*Editor, Baton) {
	e1, e2 = orEmpty(e1), orEmpty(e2)
	c := &composedEdit{b1: b1, b2: b2}
	ce := &Editor{}

	if e1.SetTargetRevision != nil || e2.SetTargetRevision != nil {
		ce.SetTargetRevision = func(ctx context.Context, eb Baton, rev Revision, sc *scope.Scope) error {
			if err := c.check(eb); err != nil {
				return err
			}
			if err := e1.DoSetTargetRevision(ctx, c.b1, rev, sc); err != nil {
				return err
			}
			return e2.DoSetTargetRevision(ctx, c.b2, rev, sc)
		}
	}

	if e1.OpenRoot != nil || e2.OpenRoot != nil {
		ce.OpenRoot = func(ctx context.Context, eb Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
			if err := c.check(eb); err != nil {
				return nil, err
			}

			var p batonPair
			var err error
			if p.b1, err = e1.DoOpenRoot(ctx, c.b1, baseRev, sc); err != nil {
				return nil, err
			}
			if p.b2, err = e2.DoOpenRoot(ctx, c.b2, baseRev, sc); err != nil {
				return nil, err
			}

			return c.issue(p), nil
		}
	}

	if e1.DeleteEntry != nil || e2.DeleteEntry != nil {
		ce.DeleteEntry = func(ctx context.Context, path string, rev Revision, parent Baton, sc *scope.Scope) error {
			pp, err := c.pair(parent)
			if err != nil {
				return err
			}
			if err := e1.DoDeleteEntry(ctx, path, rev, pp.b1, sc); err != nil {
				return err
			}
			return e2.DoDeleteEntry(ctx, path, rev, pp.b2, sc)
		}
	}

	ce.AddDirectory = composeAdd(c, e1.AddDirectory, e2.AddDirectory)
	ce.OpenDirectory = composeOpen(c, e1.OpenDirectory, e2.OpenDirectory)
	ce.ChangeDirProp = composeChangeProp(c, e1.ChangeDirProp, e2.ChangeDirProp)

	if e1.CloseDirectory != nil || e2.CloseDirectory != nil {
		ce.CloseDirectory = func(ctx context.Context, dir Baton, sc *scope.Scope) error {
			p, err := c.pair(dir)
			if err != nil {
				return err
			}
			if err := e1.DoCloseDirectory(ctx, p.b1, sc); err != nil {
				return err
			}
			if err := e2.DoCloseDirectory(ctx, p.b2, sc); err != nil {
				return err
			}

			c.retire(dir)
			return nil
		}
	}

	ce.AbsentDirectory = composeAbsent(c, e1.AbsentDirectory, e2.AbsentDirectory)
	ce.AddFile = composeAdd(c, e1.AddFile, e2.AddFile)
	ce.OpenFile = composeOpen(c, e1.OpenFile, e2.OpenFile)

	if e1.ApplyTextDelta != nil || e2.ApplyTextDelta != nil {
		ce.ApplyTextDelta = func(ctx context.Context, file Baton, baseChecksum string, sc *scope.Scope) (txdelta.WindowHandler, error) {
			p, err := c.pair(file)
			if err != nil {
				return nil, err
			}

			h1, err := e1.DoApplyTextDelta(ctx, p.b1, baseChecksum, sc)
			if err != nil {
				return nil, err
			}
			h2, err := e2.DoApplyTextDelta(ctx, p.b2, baseChecksum, sc)
			if err != nil {
				return nil, err
			}

			return txdelta.Tee(h1, h2), nil
		}
	}

	ce.ChangeFileProp = composeChangeProp(c, e1.ChangeFileProp, e2.ChangeFileProp)

	if e1.CloseFile != nil || e2.CloseFile != nil {
		ce.CloseFile = func(ctx context.Context, file Baton, textChecksum string, sc *scope.Scope) error {
			p, err := c.pair(file)
			if err != nil {
				return err
			}
			if err := e1.DoCloseFile(ctx, p.b1, textChecksum, sc); err != nil {
				return err
			}
			if err := e2.DoCloseFile(ctx, p.b2, textChecksum, sc); err != nil {
				return err
			}

			c.retire(file)
			return nil
		}
	}

	ce.AbsentFile = composeAbsent(c, e1.AbsentFile, e2.AbsentFile)
	ce.CloseEdit = composeEnd(c, e1.CloseEdit, e2.CloseEdit)
	ce.AbortEdit = composeEnd(c, e1.AbortEdit, e2.AbortEdit)

	return ce, c
}

func composeAdd(c *composedEdit, f1, f2 AddNodeFunc) AddNodeFunc {
	if f1 == nil && f2 == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, copyFrom *CopyFrom, sc *scope.Scope) (Baton, error) {
		pp, err := c.pair(parent)
		if err != nil {
			return nil, err
		}

		var child batonPair
		if f1 != nil {
			if child.b1, err = f1(ctx, path, pp.b1, copyFrom, sc); err != nil {
				return nil, err
			}
		}
		if f2 != nil {
			if child.b2, err = f2(ctx, path, pp.b2, copyFrom, sc); err != nil {
				return nil, err
			}
		}

		return c.issue(child), nil
	}
}

func composeOpen(c *composedEdit, f1, f2 OpenNodeFunc) OpenNodeFunc {
	if f1 == nil && f2 == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, baseRev Revision, sc *scope.Scope) (Baton, error) {
		pp, err := c.pair(parent)
		if err != nil {
			return nil, err
		}

		var child batonPair
		if f1 != nil {
			if child.b1, err = f1(ctx, path, pp.b1, baseRev, sc); err != nil {
				return nil, err
			}
		}
		if f2 != nil {
			if child.b2, err = f2(ctx, path, pp.b2, baseRev, sc); err != nil {
				return nil, err
			}
		}

		return c.issue(child), nil
	}
}

func composeChangeProp(c *composedEdit, f1, f2 ChangePropFunc) ChangePropFunc {
	if f1 == nil && f2 == nil {
		return nil
	}

	return func(ctx context.Context, node Baton, name string, value []byte, sc *scope.Scope) error {
		p, err := c.pair(node)
		if err != nil {
			return err
		}
		if f1 != nil {
			if err := f1(ctx, p.b1, name, value, sc); err != nil {
				return err
			}
		}
		if f2 != nil {
			return f2(ctx, p.b2, name, value, sc)
		}
		return nil
	}
}

func composeAbsent(c *composedEdit, f1, f2 AbsentNodeFunc) AbsentNodeFunc {
	if f1 == nil && f2 == nil {
		return nil
	}

	return func(ctx context.Context, path string, parent Baton, sc *scope.Scope) error {
		pp, err := c.pair(parent)
		if err != nil {
			return err
		}
		if f1 != nil {
			if err := f1(ctx, path, pp.b1, sc); err != nil {
				return err
			}
		}
		if f2 != nil {
			return f2(ctx, path, pp.b2, sc)
		}
		return nil
	}
}

func composeEnd(c *composedEdit, f1, f2 EndEditFunc) EndEditFunc {
	if f1 == nil && f2 == nil {
		return nil
	}

	return func(ctx context.Context, eb Baton) error {
		if err := c.check(eb); err != nil {
			return err
		}
		if f1 != nil {
			if err := f1(ctx, c.b1); err != nil {
				return err
			}
		}
		if f2 != nil {
			if err := f2(ctx, c.b2); err != nil {
				return err
			}
		}

		c.nodes = arena[batonPair]{}
		return nil
	}
}
