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
	"context"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// piece is a run of target text, either copied from the source at an absolute offset or taken literally.
type piece struct {
	fromSource bool
	offset     int
	data       []byte
	length     int
}

// Compute returns the windows that turn source into target. Valid UTF-8 texts are diffed with diff-match-patch so
// unchanged runs become source copies; anything else is sent as new data. Each window produces at most maxWindow
// target bytes; a non-positive maxWindow means DefaultWindowSize.
func Compute(source, target []byte, maxWindow int) []*Window {
	if maxWindow <= 0 {
		maxWindow = DefaultWindowSize
	}

	if len(target) == 0 {
		return nil
	}

	var pieces []piece
	if len(source) > 0 && utf8.Valid(source) && utf8.Valid(target) {
		pieces = diffPieces(source, target)
	} else {
		pieces = []piece{{data: target, length: len(target)}}
	}

	wb := &windowBuilder{max: maxWindow}
	for _, p := range pieces {
		wb.add(p)
	}

	return wb.finish()
}

func diffPieces(source, target []byte) []piece {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(source), string(target), false)
	diffs = dmp.DiffCleanupEfficiency(diffs)

	var pieces []piece
	srcPos := 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pieces = append(pieces, piece{fromSource: true, offset: srcPos, length: n})
			srcPos += n
		case diffmatchpatch.DiffDelete:
			srcPos += n
		case diffmatchpatch.DiffInsert:
			pieces = append(pieces, piece{data: []byte(d.Text), length: n})
		}
	}

	return pieces
}

type windowBuilder struct {
	max     int
	windows []*Window

	ops     []Op
	newData []byte
	tgtLen  int
	srcMin  int
	srcMax  int
	hasSrc  bool
}

func (wb *windowBuilder) add(p piece) {
	for p.length > 0 {
		room := wb.max - wb.tgtLen
		if room == 0 {
			wb.flush()
			continue
		}

		n := p.length
		if n > room {
			n = room
		}

		if p.fromSource {
			wb.ops = append(wb.ops, Op{Kind: CopySource, Offset: p.offset, Length: n})
			if !wb.hasSrc || p.offset < wb.srcMin {
				wb.srcMin = p.offset
			}
			if !wb.hasSrc || p.offset+n > wb.srcMax {
				wb.srcMax = p.offset + n
			}
			wb.hasSrc = true
			p.offset += n
		} else {
			wb.ops = append(wb.ops, Op{Kind: CopyNew, Offset: len(wb.newData), Length: n})
			wb.newData = append(wb.newData, p.data[:n]...)
			p.data = p.data[n:]
		}

		wb.tgtLen += n
		p.length -= n
	}
}

func (wb *windowBuilder) flush() {
	if wb.tgtLen == 0 {
		return
	}

	w := &Window{TargetLen: wb.tgtLen, Ops: wb.ops, NewData: wb.newData}
	if wb.hasSrc {
		w.SourceOffset = int64(wb.srcMin)
		w.SourceLen = wb.srcMax - wb.srcMin
		for i := range w.Ops {
			if w.Ops[i].Kind == CopySource {
				w.Ops[i].Offset -= wb.srcMin
			}
		}
	}

	wb.windows = append(wb.windows, w)
	wb.ops = nil
	wb.newData = nil
	wb.tgtLen = 0
	wb.hasSrc = false
}

func (wb *windowBuilder) finish() []*Window {
	wb.flush()
	return wb.windows
}

// Send feeds windows to h followed by the end of stream marker. The context is checked between windows. Nothing is
// sent to a nil handler.
func Send(ctx context.Context, windows []*Window, h WindowHandler) error {
	if h == nil {
		return nil
	}

	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := h(w); err != nil {
			return err
		}
	}

	return h(nil)
}

// SendBytes sends data to h as the full text of a new file.
func SendBytes(ctx context.Context, data []byte, maxWindow int, h WindowHandler) error {
	if h == nil {
		return nil
	}

	return Send(ctx, Compute(nil, data, maxWindow), h)
}
