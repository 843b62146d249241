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

// Package txdelta models the stream of delta windows that apply_text_delta consumers receive. A window describes how
// to build the next stretch of target text out of a view of the source text, the target text built so far, and
// literal new data.
package txdelta

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

// DefaultWindowSize is the largest number of target bytes Compute puts in one window.
const DefaultWindowSize = 100 * 1024

var ErrMalformedWindow = errors.NewKind("malformed delta window: %s")
var ErrStreamClosed = errors.NewKind("delta window received after the end of the stream")

// OpKind identifies where a window instruction copies its bytes from.
type OpKind uint8

const (
	// CopySource copies from the window's view of the source text.
	CopySource OpKind = iota
	// CopyTarget copies from the target text already produced by this window. The ranges may overlap, which makes
	// repeated patterns cheap to express.
	CopyTarget
	// CopyNew copies from the window's new data.
	CopyNew
)

func (k OpKind) String() string {
	switch k {
	case CopySource:
		return "source"
	case CopyTarget:
		return "target"
	case CopyNew:
		return "new"
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// Op is a single window instruction.
type Op struct {
	Kind   OpKind
	Offset int
	Length int
}

// Window is one delta record. Ops offsets for CopySource are relative to SourceOffset.
type Window struct {
	SourceOffset int64
	SourceLen    int
	TargetLen    int
	Ops          []Op
	NewData      []byte
}

// WindowHandler consumes windows. A nil *Window marks the end of the stream. A nil WindowHandler means the consumer
// is not interested in the text, and producers must not send anything to it.
type WindowHandler func(w *Window) error

// Validate checks that every instruction stays inside its view and that the instructions produce exactly TargetLen
// bytes.
func (w *Window) Validate() error {
	if w.SourceOffset < 0 || w.SourceLen < 0 || w.TargetLen < 0 {
		return ErrMalformedWindow.New("negative view")
	}

	produced := 0
	for i, op := range w.Ops {
		if op.Offset < 0 || op.Length <= 0 {
			return ErrMalformedWindow.New(fmt.Sprintf("op %d has an empty or negative range", i))
		}

		switch op.Kind {
		case CopySource:
			if op.Offset+op.Length > w.SourceLen {
				return ErrMalformedWindow.New(fmt.Sprintf("op %d reads past the source view", i))
			}
		case CopyTarget:
			if op.Offset >= produced {
				return ErrMalformedWindow.New(fmt.Sprintf("op %d reads target bytes not yet produced", i))
			}
		case CopyNew:
			if op.Offset+op.Length > len(w.NewData) {
				return ErrMalformedWindow.New(fmt.Sprintf("op %d reads past the new data", i))
			}
		default:
			return ErrMalformedWindow.New(fmt.Sprintf("op %d has unknown kind %v", i, op.Kind))
		}

		produced += op.Length
	}

	if produced != w.TargetLen {
		return ErrMalformedWindow.New(fmt.Sprintf("ops produce %d bytes, target length is %d", produced, w.TargetLen))
	}

	return nil
}

// Tee returns a handler feeding every window to h1 and then h2. If h1 fails, h2 does not see the window. If both
// handlers are nil the result is nil, so consumers further up can still tell nobody wants the text.
func Tee(h1, h2 WindowHandler) WindowHandler {
	switch {
	case h1 == nil:
		return h2
	case h2 == nil:
		return h1
	}

	return func(w *Window) error {
		if err := h1(w); err != nil {
			return err
		}

		return h2(w)
	}
}
