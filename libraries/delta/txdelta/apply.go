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

package txdelta

import (
	"fmt"
	"io"

	"github.com/dolthub/treedelta/libraries/utils/iohelp"
)

// Apply returns a handler that rebuilds target text from source and writes it to sink one window at a time.
func Apply(source []byte, sink io.Writer) WindowHandler {
	a := &applier{source: source, sink: sink}
	return a.handle
}

type applier struct {
	source []byte
	sink   io.Writer
	buf    []byte
	closed bool
}

func (a *applier) handle(w *Window) error {
	if a.closed {
		return ErrStreamClosed.New()
	}

	if w == nil {
		a.closed = true
		return nil
	}

	if err := w.Validate(); err != nil {
		return err
	}

	if w.SourceOffset+int64(w.SourceLen) > int64(len(a.source)) {
		return ErrMalformedWindow.New(fmt.Sprintf("source view [%d, %d) is outside a source of %d bytes",
			w.SourceOffset, w.SourceOffset+int64(w.SourceLen), len(a.source)))
	}

	view := a.source[w.SourceOffset : w.SourceOffset+int64(w.SourceLen)]

	a.buf = a.buf[:0]
	for _, op := range w.Ops {
		switch op.Kind {
		case CopySource:
			a.buf = append(a.buf, view[op.Offset:op.Offset+op.Length]...)
		case CopyNew:
			a.buf = append(a.buf, w.NewData[op.Offset:op.Offset+op.Length]...)
		case CopyTarget:
			// byte at a time, the range may overlap what is being written
			for i := 0; i < op.Length; i++ {
				a.buf = append(a.buf, a.buf[op.Offset+i])
			}
		}
	}

	return iohelp.WriteAll(a.sink, a.buf)
}
