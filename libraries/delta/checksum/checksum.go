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

// Package checksum implements the content checksums exchanged by apply_text_delta and close_file. A checksum is a
// BLAKE3-256 digest rendered in the same base32 alphabet noms uses for hashes.
package checksum

import (
	"fmt"
	"regexp"

	"github.com/zeebo/blake3"
)

const (
	// ByteLen is the number of bytes in a Checksum.
	ByteLen = 32

	// StringLen is the number of characters needed to represent a Checksum in base32.
	StringLen = 52
)

var pattern = regexp.MustCompile("^[0-9a-v]{" + fmt.Sprintf("%d", StringLen) + "}$")

// Checksum is a digest of a file's full text.
type Checksum [ByteLen]byte

var emptyChecksum = Checksum{}

// Of returns the checksum of data.
func Of(data []byte) Checksum {
	return Checksum(blake3.Sum256(data))
}

// IsEmpty determines if this Checksum is equal to the empty checksum (all zeroes).
func (c Checksum) IsEmpty() bool {
	return c == emptyChecksum
}

// String returns a string representation of the checksum using base32 encoding.
func (c Checksum) String() string {
	return encode(c[:])
}

// Parse parses a string representing a checksum as a Checksum.
func Parse(s string) (Checksum, error) {
	c, ok := MaybeParse(s)
	if !ok {
		return emptyChecksum, fmt.Errorf("could not parse checksum: %q", s)
	}

	return c, nil
}

// MaybeParse parses a string representing a checksum as a Checksum. Returns false if the string is not a valid
// checksum.
func MaybeParse(s string) (Checksum, bool) {
	if !pattern.MatchString(s) {
		return emptyChecksum, false
	}

	data, err := decode(s)
	if err != nil || len(data) != ByteLen {
		return emptyChecksum, false
	}

	var c Checksum
	copy(c[:], data)

	return c, true
}

// Hasher computes a Checksum incrementally. It implements io.Writer.
type Hasher struct {
	h *blake3.Hasher
	n int64
}

// New returns a Hasher with nothing written to it.
func New() *Hasher {
	return &Hasher{h: blake3.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	n, err := h.h.Write(p)
	h.n += int64(n)
	return n, err
}

// Size returns the number of bytes written so far.
func (h *Hasher) Size() int64 {
	return h.n
}

// Sum returns the checksum of everything written so far.
func (h *Hasher) Sum() Checksum {
	var c Checksum
	copy(c[:], h.h.Sum(nil))
	return c
}
