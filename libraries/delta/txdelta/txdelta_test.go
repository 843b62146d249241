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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rebuild(t *testing.T, source []byte, windows []*Window) []byte {
	var out bytes.Buffer
	h := Apply(source, &out)
	require.NoError(t, Send(context.Background(), windows, h))
	return out.Bytes()
}

func TestComputeApply(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		max    int
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 0},
		{"insert", "the quick fox", "the quick brown fox", 0},
		{"delete", "the quick brown fox", "the fox", 0},
		{"replace", "tuna salad", "tuna melt", 0},
		{"from empty", "", "a brand new file\n", 0},
		{"unicode", "héllo wörld", "hello wörld, héllo", 0},
		{"small windows", strings.Repeat("abcdefgh", 20), strings.Repeat("abcdXfgh", 20), 7},
		{"binary", "\xff\xfe\x00\x01", "\xff\x00\x01\x02", 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			windows := Compute([]byte(test.source), []byte(test.target), test.max)
			for _, w := range windows {
				require.NoError(t, w.Validate())
				if test.max > 0 {
					assert.LessOrEqual(t, w.TargetLen, test.max)
				}
			}

			assert.Equal(t, test.target, string(rebuild(t, []byte(test.source), windows)))
		})
	}
}

func TestComputeEmptyTarget(t *testing.T) {
	assert.Empty(t, Compute([]byte("something"), nil, 0))
	assert.Empty(t, rebuild(t, []byte("something"), nil))
}

func TestCopyTargetOverlap(t *testing.T) {
	w := &Window{
		TargetLen: 8,
		Ops: []Op{
			{Kind: CopyNew, Offset: 0, Length: 2},
			{Kind: CopyTarget, Offset: 0, Length: 6},
		},
		NewData: []byte("ab"),
	}

	assert.Equal(t, "abababab", string(rebuild(t, nil, []*Window{w})))
}

func TestMalformedWindows(t *testing.T) {
	tests := []struct {
		name string
		w    *Window
	}{
		{"target length mismatch", &Window{TargetLen: 3, Ops: []Op{{Kind: CopyNew, Length: 2}}, NewData: []byte("ab")}},
		{"past new data", &Window{TargetLen: 3, Ops: []Op{{Kind: CopyNew, Length: 3}}, NewData: []byte("ab")}},
		{"past source view", &Window{SourceLen: 1, TargetLen: 2, Ops: []Op{{Kind: CopySource, Length: 2}}}},
		{"target not produced", &Window{TargetLen: 1, Ops: []Op{{Kind: CopyTarget, Length: 1}}}},
		{"unknown kind", &Window{TargetLen: 1, Ops: []Op{{Kind: OpKind(9), Length: 1}}}},
		{"empty op", &Window{Ops: []Op{{Kind: CopyNew}}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.w.Validate()
			require.Error(t, err)
			assert.True(t, ErrMalformedWindow.Is(err))
		})
	}
}

func TestSourceViewOutOfRange(t *testing.T) {
	h := Apply([]byte("ab"), &bytes.Buffer{})
	err := h(&Window{SourceOffset: 1, SourceLen: 2, TargetLen: 2, Ops: []Op{{Kind: CopySource, Length: 2}}})
	require.Error(t, err)
	assert.True(t, ErrMalformedWindow.Is(err))
}

func TestWindowAfterSentinel(t *testing.T) {
	h := Apply(nil, &bytes.Buffer{})
	require.NoError(t, h(nil))

	err := h(nil)
	require.Error(t, err)
	assert.True(t, ErrStreamClosed.Is(err))
}

func TestSendHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Send(ctx, Compute(nil, []byte("data"), 0), func(w *Window) error {
		calls++
		return nil
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, calls)
}

func TestSendToNilHandler(t *testing.T) {
	assert.NoError(t, SendBytes(context.Background(), []byte("ignored"), 0, nil))
}

func TestTee(t *testing.T) {
	assert.Nil(t, Tee(nil, nil))

	var first, second []*Window
	h1 := func(w *Window) error {
		first = append(first, w)
		return nil
	}
	h2 := func(w *Window) error {
		second = append(second, w)
		return nil
	}

	require.NoError(t, SendBytes(context.Background(), []byte("tuna"), 0, Tee(h1, h2)))
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)

	boom := errors.New("boom")
	second = nil
	failing := func(w *Window) error { return boom }
	assert.Equal(t, boom, SendBytes(context.Background(), []byte("tuna"), 0, Tee(failing, h2)))
	assert.Empty(t, second)

	assert.NotNil(t, Tee(h1, nil))
	assert.NotNil(t, Tee(nil, h2))
}
