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

// handle is an index into an arena. The zero handle is never issued, so a zero value is never mistaken for a live
// entry.
type handle uint32

// arena stores per node state for a decorator and hands out small integer handles in place of pointers. Freed slots
// are reused.
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []handle
	count int
}

type arenaSlot[T any] struct {
	val  T
	live bool
}

func (a *arena[T]) put(val T) handle {
	a.count++

	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h-1] = arenaSlot[T]{val: val, live: true}
		return h
	}

	a.slots = append(a.slots, arenaSlot[T]{val: val, live: true})
	return handle(len(a.slots))
}

func (a *arena[T]) get(h handle) (T, bool) {
	if h == 0 || int(h) > len(a.slots) || !a.slots[h-1].live {
		var zero T
		return zero, false
	}

	return a.slots[h-1].val, true
}

func (a *arena[T]) release(h handle) {
	if _, ok := a.get(h); !ok {
		return
	}

	a.slots[h-1] = arenaSlot[T]{}
	a.free = append(a.free, h)
	a.count--
}

// live returns the number of handles that have been issued and not released.
func (a *arena[T]) live() int {
	return a.count
}
