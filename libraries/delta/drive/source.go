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

package drive

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/dolthub/treedelta/libraries/delta/apply"
	"github.com/dolthub/treedelta/libraries/delta/checksum"
	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

// Entry is one child of a directory in a Source.
type Entry struct {
	Name  string
	IsDir bool
	// Checksum is the checksum of a file's contents. It is empty for directories.
	Checksum checksum.Checksum
}

// Source is a read only snapshot of a tree. Paths are '/' separated and relative to the root, which is "".
type Source interface {
	// List returns the entries of the directory at dir, sorted by name.
	List(ctx context.Context, dir string) ([]Entry, error)
	// ReadFile returns the contents of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

type emptySource struct{}

// EmptySource returns a Source with an empty root directory.
func EmptySource() Source {
	return emptySource{}
}

func (emptySource) List(_ context.Context, dir string) ([]Entry, error) {
	if dir != "" {
		return nil, errors.Errorf("'%s' does not exist", dir)
	}
	return nil, nil
}

func (emptySource) ReadFile(_ context.Context, path string) ([]byte, error) {
	return nil, errors.Errorf("'%s' does not exist", path)
}

type fsSource struct {
	fs   filesys.Filesys
	root string
}

// FSSource returns a Source for the directory root of fs. The lock file of an apply.FSTree is not listed.
func FSSource(fs filesys.Filesys, root string) Source {
	return &fsSource{fs: fs, root: root}
}

func (s *fsSource) abs(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

func (s *fsSource) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if exists, isDir := s.fs.Exists(s.abs(dir)); !exists || !isDir {
		return nil, errors.Errorf("'%s' is not a directory of %s", dir, s.root)
	}

	var entries []Entry
	var readErr error
	err := s.fs.Iter(s.abs(dir), false, func(path string, _ int64, isDir bool) bool {
		e := Entry{Name: filepath.Base(path), IsDir: isDir}
		if dir == "" && e.Name == apply.LockFileName {
			return false
		}

		if !isDir {
			data, err := s.fs.ReadFile(path)
			if err != nil {
				readErr = err
				return true
			}
			e.Checksum = checksum.Of(data)
		}

		entries = append(entries, e)
		return false
	})

	if err == nil {
		err = readErr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", s.abs(dir))
	}

	sortEntries(entries)
	return entries, nil
}

func (s *fsSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(s.abs(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.abs(path))
	}
	return data, nil
}

type txnSource struct {
	txn apply.Txn
}

// TxnSource returns a Source that reads from a transaction of an apply.Tree.
func TxnSource(txn apply.Txn) Source {
	return &txnSource{txn: txn}
}

func (s *txnSource) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.txn.List(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing '%s'", dir)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		path := joinPath(dir, name)
		_, isDir, err := s.txn.Stat(path)
		if err != nil {
			return nil, err
		}

		e := Entry{Name: name, IsDir: isDir}
		if !isDir {
			data, err := s.txn.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "reading '%s'", path)
			}
			e.Checksum = checksum.Of(data)
		}

		entries = append(entries, e)
	}

	sortEntries(entries)
	return entries, nil
}

func (s *txnSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.txn.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading '%s'", path)
	}
	return data, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
