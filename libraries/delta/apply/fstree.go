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
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

// FSTree is a Tree stored as a directory of a filesys.Filesys. Writes are staged in memory and replayed on commit.
// Only one transaction may be open on a root at a time; the root is locked with a lock file for its duration.
// Properties are not written to the filesystem and are only available through Props.
type FSTree struct {
	fs   filesys.Filesys
	root string

	mu    *sync.Mutex
	props map[string]map[string][]byte
}

var _ Tree = (*FSTree)(nil)

// NewFSTree returns a tree rooted at root, creating the directory if needed.
func NewFSTree(fs filesys.Filesys, root string) (*FSTree, error) {
	if err := fs.MkDirs(root); err != nil {
		return nil, err
	}

	return &FSTree{fs: fs, root: root, mu: &sync.Mutex{}, props: map[string]map[string][]byte{}}, nil
}

// Props returns the committed properties of the node at path.
func (t *FSTree) Props(path string) map[string][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	props := map[string][]byte{}
	for name, val := range t.props[path] {
		props[name] = val
	}

	return props
}

func (t *FSTree) Begin(ctx context.Context) (Txn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(t.root, LockFileName)
	lck := filesys.CreateFilesysLock(t.fs, lockPath)
	if err := filesys.Lock(lck, lockPath); err != nil {
		return nil, err
	}

	return &fsTxn{
		tree:    t,
		lck:     lck,
		overlay: map[string]*staged{},
		props:   map[string]map[string][]byte{},
	}, nil
}

type stagedKind int

const (
	stagedDelete stagedKind = iota
	stagedDir
	stagedFile
)

type staged struct {
	kind stagedKind
	path string
	data []byte
}

type fsTxn struct {
	tree    *FSTree
	lck     filesys.FilesysLock
	overlay map[string]*staged
	log     []*staged
	props   map[string]map[string][]byte
	done    bool
}

func (txn *fsTxn) abs(p string) string {
	return filepath.Join(txn.tree.root, filepath.FromSlash(p))
}

// lookup returns the staged state of p, or onDisk if the filesystem decides whether p exists. A staged directory
// hides whatever the filesystem has under the same path.
func (txn *fsTxn) lookup(p string) (st *staged, onDisk bool) {
	if st, ok := txn.overlay[p]; ok {
		return st, false
	}

	for anc := p; anc != ""; {
		anc = parentPath(anc)
		if _, ok := txn.overlay[anc]; ok {
			return nil, false
		}
	}

	return nil, true
}

func (txn *fsTxn) Stat(p string) (bool, bool, error) {
	if txn.done {
		return false, false, errTxnDone
	}

	if p == "" {
		return true, true, nil
	}

	st, onDisk := txn.lookup(p)
	switch {
	case st != nil:
		return st.kind != stagedDelete, st.kind == stagedDir, nil
	case !onDisk:
		return false, false, nil
	case p == LockFileName:
		return false, false, nil
	}

	exists, isDir := txn.tree.fs.Exists(txn.abs(p))
	return exists, isDir, nil
}

func (txn *fsTxn) List(p string) ([]string, error) {
	exists, isDir, err := txn.Stat(p)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errNoEntry
	}
	if !isDir {
		return nil, errNotDir
	}

	names := map[string]bool{}
	if st, onDisk := txn.lookup(p); st == nil && onDisk {
		err := txn.tree.fs.Iter(txn.abs(p), false, func(path string, _ int64, _ bool) bool {
			names[filepath.Base(path)] = true
			return false
		})
		if err != nil {
			return nil, err
		}

		if p == "" {
			delete(names, LockFileName)
		}
	}

	for k, st := range txn.overlay {
		if k == "" || parentPath(k) != p {
			continue
		}

		if st.kind == stagedDelete {
			delete(names, filepath.Base(k))
		} else {
			names[filepath.Base(k)] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	return sorted, nil
}

func (txn *fsTxn) ReadFile(p string) ([]byte, error) {
	exists, isDir, err := txn.Stat(p)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errNoEntry
	}
	if isDir {
		return nil, filesys.ErrIsDir
	}

	if st, _ := txn.lookup(p); st != nil {
		data := make([]byte, len(st.data))
		copy(data, st.data)
		return data, nil
	}

	return txn.tree.fs.ReadFile(txn.abs(p))
}

func (txn *fsTxn) checkParent(p string) error {
	exists, isDir, err := txn.Stat(parentPath(p))
	if err != nil {
		return err
	}
	if !exists || !isDir {
		return errNotDir
	}

	return nil
}

func (txn *fsTxn) stage(st *staged) {
	txn.overlay[st.path] = st
	txn.log = append(txn.log, st)
}

func (txn *fsTxn) MkDir(p string) error {
	if err := txn.checkParent(p); err != nil {
		return err
	}

	txn.stage(&staged{kind: stagedDir, path: p})
	return nil
}

func (txn *fsTxn) WriteFile(p string, data []byte) error {
	if err := txn.checkParent(p); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	txn.stage(&staged{kind: stagedFile, path: p, data: stored})

	return nil
}

func (txn *fsTxn) Delete(p string) error {
	exists, _, err := txn.Stat(p)
	if err != nil {
		return err
	}
	if !exists || p == "" {
		return errNoEntry
	}

	for k := range txn.overlay {
		if k != p && isUnder(k, p) {
			delete(txn.overlay, k)
		}
	}

	for k := range txn.props {
		if isUnder(k, p) {
			delete(txn.props, k)
		}
	}

	txn.stage(&staged{kind: stagedDelete, path: p})
	return nil
}

func (txn *fsTxn) SetProp(p, name string, value []byte) error {
	if txn.done {
		return errTxnDone
	}

	if txn.props[p] == nil {
		txn.props[p] = map[string][]byte{}
	}

	if value != nil {
		value = append([]byte{}, value...)
	}
	txn.props[p][name] = value

	return nil
}

func (txn *fsTxn) Props(p string) (map[string][]byte, error) {
	if txn.done {
		return nil, errTxnDone
	}

	props := txn.tree.Props(p)
	for name, val := range txn.props[p] {
		if val == nil {
			delete(props, name)
		} else {
			props[name] = val
		}
	}

	return props, nil
}

func (txn *fsTxn) Commit() error {
	if txn.done {
		return errTxnDone
	}
	txn.done = true
	defer txn.lck.Unlock()

	fs := txn.tree.fs
	for _, st := range txn.log {
		var err error
		switch st.kind {
		case stagedDelete:
			if err = fs.Delete(txn.abs(st.path), true); os.IsNotExist(err) {
				err = nil
			}
		case stagedDir:
			err = fs.MkDirs(txn.abs(st.path))
		case stagedFile:
			err = fs.WriteFile(txn.abs(st.path), st.data, os.ModePerm)
		}

		if err != nil {
			return err
		}
	}

	txn.tree.mu.Lock()
	defer txn.tree.mu.Unlock()

	for _, st := range txn.log {
		if st.kind == stagedDelete {
			for k := range txn.tree.props {
				if isUnder(k, st.path) {
					delete(txn.tree.props, k)
				}
			}
		}
	}

	for p, changes := range txn.props {
		props := txn.tree.props[p]
		if props == nil {
			props = map[string][]byte{}
			txn.tree.props[p] = props
		}

		for name, val := range changes {
			if val == nil {
				delete(props, name)
			} else {
				props[name] = val
			}
		}
	}

	return nil
}

func (txn *fsTxn) Rollback() error {
	if txn.done {
		return errTxnDone
	}
	txn.done = true

	return txn.lck.Unlock()
}
