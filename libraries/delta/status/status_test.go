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

package status_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/treedelta/libraries/delta/drive"
	"github.com/dolthub/treedelta/libraries/delta/editor"
	"github.com/dolthub/treedelta/libraries/delta/editor/editortest"
	"github.com/dolthub/treedelta/libraries/delta/scope"
	"github.com/dolthub/treedelta/libraries/delta/status"
	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

func newTestFS() *filesys.InMemFS {
	return filesys.NewInMemFS([]string{"/from/A/fish", "/to/A/fish", "/to/C"}, map[string][]byte{
		"/from/iota":        []byte("iota"),
		"/from/A/mu":        []byte("This is the file 'mu'.\n"),
		"/from/A/fish/tuna": []byte("tuna"),
		"/from/B/lambda":    []byte("lambda"),
		"/from/D":           []byte("d"),

		"/to/iota":        []byte("iota"),
		"/to/A/mu":        []byte("This is the changed file 'mu'.\n"),
		"/to/A/fish/tuna": []byte("tuna"),
		"/to/A/zeta":      []byte("zeta"),
		"/to/D/x":         []byte("x"),
	}, "/")
}

func TestPrinterLines(t *testing.T) {
	fs := newTestFS()
	out := &bytes.Buffer{}
	p := status.NewPrinter(out, status.Options{})
	e, eb := p.Editor()

	err := drive.DirDeltas(context.Background(), drive.FSSource(fs, "/from"), drive.FSSource(fs, "/to"), e, eb, drive.DefaultOptions())
	require.NoError(t, err)

	expected := "" +
		"M   A/mu\n" +
		"A   A/zeta\n" +
		"A   C/\n" +
		"R   D/\n" +
		"A   D/x\n" +
		"D   B\n"
	assert.Equal(t, expected, out.String())

	sum := p.Summary()
	assert.Equal(t, uint64(3), sum.Adds)
	assert.Equal(t, uint64(1), sum.Deletes)
	assert.Equal(t, uint64(1), sum.Modifies)
	assert.Equal(t, uint64(1), sum.Replaces)
	assert.Equal(t, uint64(6), sum.Changes())
	assert.GreaterOrEqual(t, sum.Bytes, uint64(len("zeta")+len("x")))
}

func TestPrinterStatOnly(t *testing.T) {
	fs := newTestFS()
	out := &bytes.Buffer{}
	p := status.NewPrinter(out, status.Options{StatOnly: true})
	e, eb := p.Editor()

	err := drive.DirDeltas(context.Background(), drive.FSSource(fs, "/from"), drive.FSSource(fs, "/to"), e, eb, drive.DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, out.String())
	assert.Equal(t, uint64(6), p.Summary().Changes())
}

func TestPrinterColor(t *testing.T) {
	ctx := context.Background()
	out := &bytes.Buffer{}
	p := status.NewPrinter(out, status.Options{Color: true})
	e, eb := p.Editor()

	sc := scope.New(nil)
	defer sc.Release()

	root, err := e.DoOpenRoot(ctx, eb, editor.InvalidRevision, sc)
	require.NoError(t, err)
	_, err = e.DoAddDirectory(ctx, "A", root, nil, sc)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "\x1b[32m")
	assert.Contains(t, out.String(), "A/")
}

func TestPrinterUntouchedFile(t *testing.T) {
	ctx := context.Background()
	out := &bytes.Buffer{}
	p := status.NewPrinter(out, status.Options{})
	e, eb := p.Editor()

	require.NoError(t, editortest.DriveFish(ctx, e, eb))
	assert.Equal(t, "A   A/fish/tuna\n", out.String())

	out.Reset()
	sc := scope.New(nil)
	defer sc.Release()

	root, err := e.DoOpenRoot(ctx, eb, editor.InvalidRevision, sc)
	require.NoError(t, err)
	f, err := e.DoOpenFile(ctx, "iota", root, editor.InvalidRevision, sc)
	require.NoError(t, err)
	require.NoError(t, e.DoCloseFile(ctx, f, "", sc))

	a, err := e.DoOpenDirectory(ctx, "A", root, editor.InvalidRevision, sc)
	require.NoError(t, err)
	require.NoError(t, e.DoChangeDirProp(ctx, a, "svn:ignore", []byte("*.o"), sc))
	require.NoError(t, e.DoCloseDirectory(ctx, a, sc))

	assert.Equal(t, "M   A/\n", out.String())
}

func TestPrinterRejectsForeignBatons(t *testing.T) {
	p := status.NewPrinter(&bytes.Buffer{}, status.Options{})
	e, _ := p.Editor()

	err := e.DoCloseFile(context.Background(), "nope", "", scope.New(nil))
	assert.True(t, editor.ErrProtocolViolation.Is(err))
}

func TestSummaryString(t *testing.T) {
	tests := []struct {
		name     string
		sum      status.Summary
		expected string
	}{
		{
			name:     "empty",
			expected: "0 additions, 0 deletions, 0 modifications, 0 replacements (0 B of new text)",
		},
		{
			name:     "singular",
			sum:      status.Summary{Adds: 1, Deletes: 1, Modifies: 1, Replaces: 1, Bytes: 1500},
			expected: "1 addition, 1 deletion, 1 modification, 1 replacement (1.5 kB of new text)",
		},
		{
			name:     "large",
			sum:      status.Summary{Adds: 1234, Deletes: 2},
			expected: "1,234 additions, 2 deletions, 0 modifications, 0 replacements (0 B of new text)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.sum.String())
		})
	}
}
