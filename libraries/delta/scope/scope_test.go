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

package scope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseOrder(t *testing.T) {
	var order []string
	record := func(name string) func() error {
		return func() error {
			order = append(order, name)
			return nil
		}
	}

	root := New(nil)
	root.OnRelease(record("root-1"))
	child := root.NewChild()
	child.OnRelease(record("child-1"))
	child.OnRelease(record("child-2"))
	grandchild := child.NewChild()
	grandchild.OnRelease(record("grandchild"))
	root.OnRelease(record("root-2"))

	require.NoError(t, root.Release())
	assert.Equal(t, []string{"grandchild", "child-2", "child-1", "root-2", "root-1"}, order)
	assert.True(t, child.Released())
	assert.True(t, grandchild.Released())
}

func TestReleaseExactlyOnce(t *testing.T) {
	calls := 0
	s := New(nil)
	s.OnRelease(func() error {
		calls++
		return nil
	})

	require.NoError(t, s.Release())
	assert.Equal(t, ErrReleased, s.Release())
	assert.Equal(t, 1, calls)
}

func TestChildReleasedBeforeParent(t *testing.T) {
	calls := 0
	parent := New(nil)
	child := New(parent)
	child.OnRelease(func() error {
		calls++
		return nil
	})

	require.NoError(t, child.Release())
	require.NoError(t, parent.Release())
	assert.Equal(t, 1, calls)
	assert.Empty(t, parent.children)
}

func TestReleaseJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	s := New(nil)
	s.OnRelease(func() error { return errA })
	s.NewChild().OnRelease(func() error { return errB })

	err := s.Release()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestBytes(t *testing.T) {
	s := New(nil)
	buf := s.Bytes(1024)
	assert.Len(t, buf, 0)
	assert.GreaterOrEqual(t, cap(buf), 1024)

	buf = append(buf, "tuna"...)
	assert.Equal(t, "tuna", string(buf))
	require.NoError(t, s.Release())
}

func TestUseAfterRelease(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Release())

	assert.Panics(t, func() { s.NewChild() })
	assert.Panics(t, func() { s.OnRelease(func() error { return nil }) })
	assert.Panics(t, func() { s.Bytes(8) })
}
