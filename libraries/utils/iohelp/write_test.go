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

package iohelp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trickleWriter struct {
	buf   bytes.Buffer
	limit int
}

func (tw *trickleWriter) Write(p []byte) (int, error) {
	if len(p) > tw.limit {
		p = p[:tw.limit]
	}

	return tw.buf.Write(p)
}

type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) {
	return 0, nil
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

func TestWriteAll(t *testing.T) {
	tw := &trickleWriter{limit: 3}
	data := []byte("open_root open_directory close_edit")

	require.NoError(t, WriteAll(tw, data))
	assert.Equal(t, data, tw.buf.Bytes())

	assert.Equal(t, io.ErrShortWrite, WriteAll(stuckWriter{}, data))
	assert.Equal(t, errWrite, WriteAll(failingWriter{}, data))
	assert.NoError(t, WriteAll(failingWriter{}, nil))
}
