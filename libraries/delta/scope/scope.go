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

// Package scope provides nestable resource lifetime regions. A driver creates one scope per open baton and releases
// it right after the matching close callback returns. Everything registered with a scope, including buffers handed
// out by Bytes, is released with it.
package scope

import (
	"errors"

	pool "github.com/libp2p/go-buffer-pool"
)

// ErrReleased is returned by Release when a scope has already been released.
var ErrReleased = errors.New("scope already released")

// Scope is a nested allocation and cleanup region. A Scope is not safe for concurrent use; like the editor calls it
// is passed to, it belongs to a single driver goroutine.
type Scope struct {
	parent   *Scope
	children []*Scope
	cleanups []func() error
	released bool
}

// New creates a scope nested in parent. A nil parent creates a root scope.
func New(parent *Scope) *Scope {
	if parent == nil {
		return &Scope{}
	}

	return parent.NewChild()
}

// NewChild creates a scope that is released no later than s.
func (s *Scope) NewChild() *Scope {
	s.mustBeLive("NewChild")

	child := &Scope{parent: s}
	s.children = append(s.children, child)

	return child
}

// OnRelease registers fn to run when the scope is released. Cleanups run in reverse registration order.
func (s *Scope) OnRelease(fn func() error) {
	s.mustBeLive("OnRelease")
	s.cleanups = append(s.cleanups, fn)
}

// Bytes returns a zero length buffer with capacity for at least n bytes. The buffer goes back to the shared pool
// when the scope is released, so it must not be retained past that point.
func (s *Scope) Bytes(n int) []byte {
	s.mustBeLive("Bytes")

	buf := pool.Get(n)
	s.cleanups = append(s.cleanups, func() error {
		pool.Put(buf)
		return nil
	})

	return buf[:0]
}

// Released returns true once Release has been called.
func (s *Scope) Released() bool {
	return s.released
}

// Release releases all live child scopes, deepest first, and then runs this scope's cleanups. A scope is released
// exactly once; further calls return ErrReleased.
func (s *Scope) Release() error {
	if s.released {
		return ErrReleased
	}

	err := s.release()

	if s.parent != nil {
		s.parent.forget(s)
	}

	return err
}

func (s *Scope) release() error {
	var errs []error
	for i := len(s.children) - 1; i >= 0; i-- {
		if !s.children[i].released {
			errs = append(errs, s.children[i].release())
		}
	}

	for i := len(s.cleanups) - 1; i >= 0; i-- {
		if err := s.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}

	s.children = nil
	s.cleanups = nil
	s.released = true

	return errors.Join(errs...)
}

func (s *Scope) forget(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

func (s *Scope) mustBeLive(op string) {
	if s.released {
		panic("scope: " + op + " called on a released scope")
	}
}
