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
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var (
	nodesBucket = []byte("nodes")
	propsBucket = []byte("props")
)

const (
	dirTag  byte = 'd'
	fileTag byte = 'f'
	propSep byte = 0
)

// BoltTree is a Tree stored in a bbolt database. Each node is a key in the nodes bucket holding a one byte tag followed
// by the file contents, and each property is a key in the props bucket. Every transaction is a bolt transaction, so
// writers are serialized by bolt.
type BoltTree struct {
	db    *bbolt.DB
	owned bool
}

var _ Tree = (*BoltTree)(nil)

// OpenBoltTree opens or creates the bolt database at path. The returned tree must be closed.
func OpenBoltTree(path string) (*BoltTree, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	t, err := NewBoltTree(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	t.owned = true
	return t, nil
}

// NewBoltTree stores a tree in db, creating its buckets if needed.
func NewBoltTree(db *bbolt.DB) (*BoltTree, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		nodes, err := tx.CreateBucketIfNotExists(nodesBucket)
		if err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists(propsBucket); err != nil {
			return err
		}

		if nodes.Get(nodeKey("")) == nil {
			return nodes.Put(nodeKey(""), []byte{dirTag})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BoltTree{db: db}, nil
}

// Close closes the database if the tree opened it.
func (t *BoltTree) Close() error {
	if t.owned {
		return t.db.Close()
	}
	return nil
}

// Begin starts a read-write transaction. It blocks while another transaction is writing.
func (t *BoltTree) Begin(ctx context.Context) (Txn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := t.db.Begin(true)
	if err != nil {
		return nil, err
	}

	return newBoltTxn(tx), nil
}

// View calls fn with a read only transaction. Writes through it fail.
func (t *BoltTree) View(fn func(txn Txn) error) error {
	return t.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTxn{tx: tx, nodes: tx.Bucket(nodesBucket), props: tx.Bucket(propsBucket), managed: true})
	})
}

type boltTxn struct {
	tx      *bbolt.Tx
	nodes   *bbolt.Bucket
	props   *bbolt.Bucket
	managed bool
}

func newBoltTxn(tx *bbolt.Tx) *boltTxn {
	return &boltTxn{tx: tx, nodes: tx.Bucket(nodesBucket), props: tx.Bucket(propsBucket)}
}

func nodeKey(p string) []byte {
	return []byte("/" + p)
}

func childPrefix(p string) []byte {
	if p == "" {
		return []byte("/")
	}
	return []byte("/" + p + "/")
}

func propPrefix(p string) []byte {
	return append(nodeKey(p), propSep)
}

func (txn *boltTxn) Stat(p string) (bool, bool, error) {
	v := txn.nodes.Get(nodeKey(p))
	if v == nil {
		return false, false, nil
	}

	return true, v[0] == dirTag, nil
}

func (txn *boltTxn) List(p string) ([]string, error) {
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

	var names []string
	prefix := childPrefix(p)
	c := txn.nodes.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		rest := k[len(prefix):]
		if len(rest) > 0 && bytes.IndexByte(rest, '/') < 0 {
			names = append(names, string(rest))
		}
	}

	return names, nil
}

func (txn *boltTxn) ReadFile(p string) ([]byte, error) {
	v := txn.nodes.Get(nodeKey(p))
	if v == nil {
		return nil, errNoEntry
	}
	if v[0] != fileTag {
		return nil, errors.Errorf("'%s' is a directory", p)
	}

	data := make([]byte, len(v)-1)
	copy(data, v[1:])
	return data, nil
}

func (txn *boltTxn) checkParent(p string) error {
	if v := txn.nodes.Get(nodeKey(parentPath(p))); v == nil || v[0] != dirTag {
		return errNotDir
	}
	return nil
}

func (txn *boltTxn) MkDir(p string) error {
	if err := txn.checkParent(p); err != nil {
		return err
	}

	return txn.nodes.Put(nodeKey(p), []byte{dirTag})
}

func (txn *boltTxn) WriteFile(p string, data []byte) error {
	if err := txn.checkParent(p); err != nil {
		return err
	}

	v := make([]byte, 0, len(data)+1)
	v = append(v, fileTag)
	v = append(v, data...)

	return txn.nodes.Put(nodeKey(p), v)
}

// deleteWithPrefix deletes the keys of b that start with one of prefixes.
func deleteWithPrefix(b *bbolt.Bucket, prefixes ...[]byte) error {
	var keys [][]byte
	c := b.Cursor()
	for _, prefix := range prefixes {
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte{}, k...))
		}
	}

	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}

	return nil
}

func (txn *boltTxn) Delete(p string) error {
	if p == "" || txn.nodes.Get(nodeKey(p)) == nil {
		return errNoEntry
	}

	if err := txn.nodes.Delete(nodeKey(p)); err != nil {
		return err
	}

	if err := deleteWithPrefix(txn.nodes, childPrefix(p)); err != nil {
		return err
	}

	return deleteWithPrefix(txn.props, propPrefix(p), childPrefix(p))
}

func (txn *boltTxn) SetProp(p, name string, value []byte) error {
	key := append(propPrefix(p), name...)
	if value == nil {
		return txn.props.Delete(key)
	}

	return txn.props.Put(key, value)
}

func (txn *boltTxn) Props(p string) (map[string][]byte, error) {
	props := map[string][]byte{}
	prefix := propPrefix(p)
	c := txn.props.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		props[string(k[len(prefix):])] = append([]byte{}, v...)
	}

	return props, nil
}

func (txn *boltTxn) Commit() error {
	if txn.managed {
		return errTxnDone
	}
	return txn.tx.Commit()
}

func (txn *boltTxn) Rollback() error {
	if txn.managed {
		return errTxnDone
	}
	return txn.tx.Rollback()
}
