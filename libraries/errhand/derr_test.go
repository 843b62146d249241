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

package errhand

import (
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestDErrorVerbose(t *testing.T) {
	cause := errors.New("disk on fire")
	verr := BuildDError("error: failed to apply %s", "A/mu").
		AddDetails("target: %s", "/tmp/t").
		AddDetails("revision 7").
		AddCause(cause).
		Build()

	assert.Equal(t, "error: failed to apply A/mu", verr.Error())
	assert.Equal(t, "error: failed to apply A/mu\ntarget: /tmp/t\nrevision 7\ncause:\n\t\tdisk on fire", verr.Verbose())
	assert.ErrorIs(t, verr, cause)
}

func TestDErrorNestedCause(t *testing.T) {
	inner := BuildDError("inner").AddDetails("line 1\nline 2").Build()
	outer := BuildDError("outer").AddCause(inner).Build()

	assert.Equal(t, "outer\ncause:\n\t\tinner\n\t\tline 1\n\t\tline 2", outer.Verbose())
}

func TestBuildIf(t *testing.T) {
	assert.Nil(t, BuildIf(nil, "never").AddDetails("x").AddCause(errors.New("y")).Build())

	verr := BuildIf(errors.New("boom"), "error: %d", 1).Build()
	require.NotNil(t, verr)
	assert.Equal(t, "error: 1", verr.Error())
}

func TestPanicToVError(t *testing.T) {
	errPanic := errors.New("panicked")

	tests := []struct {
		name    string
		f       func() VerboseError
		verbose string
	}{
		{
			name:    "no panic",
			f:       func() VerboseError { return nil },
			verbose: "",
		},
		{
			name:    "error panic",
			f:       func() VerboseError { panic(errPanic) },
			verbose: "error: unexpected failure\ncause:\n\t\tpanicked",
		},
		{
			name:    "value panic",
			f:       func() VerboseError { panic(42) },
			verbose: "error: unexpected failure\n42",
		},
		{
			name:    "value panic with verbs",
			f:       func() VerboseError { panic("100% broken %d") },
			verbose: "error: unexpected failure\n100% broken %d",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			verr := PanicToVError("error: unexpected failure", test.f)
			if test.verbose == "" {
				assert.Nil(t, verr)
				return
			}

			require.NotNil(t, verr)
			assert.Equal(t, test.verbose, verr.Verbose())
		})
	}
}

func TestPanicToVErrorKeepsPercentSigns(t *testing.T) {
	verr := PanicToVError("error: 100% unexpected", func() VerboseError { panic("50% done") })
	require.NotNil(t, verr)
	assert.Equal(t, "error: 100% unexpected", verr.Error())
	assert.Equal(t, "error: 100% unexpected\n50% done", verr.Verbose())
}
