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
	"io"
)

// WriteAll will write the entirety of the byte slice to an io.Writer, retrying short writes.
func WriteAll(wr io.Writer, data []byte) error {
	dataSize := len(data)
	for written := 0; written < dataSize; {
		n, err := wr.Write(data[written:])

		if err != nil {
			return err
		}

		if n == 0 {
			return io.ErrShortWrite
		}

		written += n
	}

	return nil
}
