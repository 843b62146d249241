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

package apply

import (
	"context"
	"errors"
	"path"
	"strings"
)

// LockFileName is the name of the lock file an FSTree keeps in its root while a transaction is open.
const LockFileName = ".treedelta.lock"

var errNoEntry = errors.New("no such entry")
var errExists = errors.New("entry already exists")
var errNotDir = errors.New("not a directory")
var errTxnDone = errors.New("transaction already committed or rolled back")

// Tree is a store that an edit can be applied to.
type Tree interface {
	// Begin starts a transaction. Nothing written through it is visible in the tree until Commit.
	Begin(ctx context.Context) (Txn, error)
}

// Txn is a transaction on a Tree. Paths are '/' separated and relative to the root of the tree, with "" naming the
// root. A Txn sees its own writes.
type Txn interface {
	// Stat reports whether path exists and whether it is a directory.
	Stat(path string) (exists bool, isDir bool, err error)
	// List returns the names of the entries of the directory at path in name order.
	List(path string) ([]string, error)
	// ReadFile returns the contents of the file at path.
	ReadFile(path string) ([]byte, error)
	// MkDir creates the directory path. Its parent must exist.
	MkDir(path string) error
	// WriteFile creates or replaces the file at path. Its parent must exist. data is copied.
	WriteFile(path string, data []byte) error
	// Delete removes path and everything under it.
	Delete(path string) error
	// SetProp sets a property of the node at path. A nil value removes it.
	SetProp(path, name string, value []byte) error
	// Props returns the properties of the node at path.
	Props(path string) (map[string][]byte, error)
	Commit() error
	Rollback() error
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func parentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

func isUnder(p, dir string) bool {
	return dir == "" || p == dir || strings.HasPrefix(p, dir+"/")
}

// copyNode copies the node at src to dest within txn.
func copyNode(txn Txn, src, dest string) error {
	exists, isDir, err := txn.Stat(src)
	if err != nil {
		return err
	}
	if !exists {
		return errNoEntry
	}

	if !isDir {
		data, err := txn.ReadFile(src)
		if err != nil {
			return err
		}
		return txn.WriteFile(dest, data)
	}

	if err := txn.MkDir(dest); err != nil {
		return err
	}

	names, err := txn.List(src)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := copyNode(txn, joinPath(src, name), joinPath(dest, name)); err != nil {
			return err
		}
	}

	return nil
}
