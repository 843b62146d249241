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

package filesys

import (
	"sync/atomic"

	"github.com/dolthub/fslock"
	"github.com/pkg/errors"
)

const unlockedStateValue int32 = 0
const lockedStateValue int32 = 1

// errLockUnlock occurs if there is an error unlocking the lock
var errLockUnlock = errors.New("unable to unlock the lock")

// ErrLocked is returned by Lock when another holder has the lock.
var ErrLocked = errors.New("lock is held by another process")

// FilesysLock is an interface for locking and unlocking filesystems
type FilesysLock interface {
	TryLock() (bool, error)
	Unlock() error
}

// CreateFilesysLock creates a new FilesysLock for the file filename. Locks on the same InMemFS and filename are shared,
// so they contend with each other the way file locks do.
func CreateFilesysLock(fs Filesys, filename string) FilesysLock {
	switch fs := fs.(type) {
	case *InMemFS:
		return fs.lockFor(filename)
	case *localFS:
		return NewLocalFileLock(fs.absPath(filename))
	default:
		panic("Unsupported file system")
	}
}

// Lock takes lck without waiting. It fails with ErrLocked if the lock is already held.
func Lock(lck FilesysLock, filename string) error {
	ok, err := lck.TryLock()
	if err != nil {
		if err == fslock.ErrLocked {
			return errors.Wrap(ErrLocked, filename)
		}
		return errors.Wrapf(err, "locking %s", filename)
	}

	if !ok {
		return errors.Wrap(ErrLocked, filename)
	}

	return nil
}

// InMemFileLock is a lock for the InMemFS
type InMemFileLock struct {
	state int32
}

// TryLock attempts to lock the lock or fails if it is already locked
func (memLock *InMemFileLock) TryLock() (bool, error) {
	if atomic.CompareAndSwapInt32(&memLock.state, unlockedStateValue, lockedStateValue) {
		return true, nil
	}
	return false, nil
}

// Unlock unlocks the lock
func (memLock *InMemFileLock) Unlock() error {
	if atomic.LoadInt32(&memLock.state) == unlockedStateValue {
		return nil
	}

	if !atomic.CompareAndSwapInt32(&memLock.state, lockedStateValue, unlockedStateValue) {
		return errLockUnlock
	}

	return nil
}

// LocalFileLock is the lock for the localFS
type LocalFileLock struct {
	lck *fslock.Lock
}

// NewLocalFileLock creates a new LocalFileLock
func NewLocalFileLock(filename string) *LocalFileLock {
	return &LocalFileLock{lck: fslock.New(filename)}
}

// TryLock attempts to lock the lock or fails if it is already locked
func (locLock *LocalFileLock) TryLock() (bool, error) {
	if err := locLock.lck.TryLock(); err != nil {
		if err == fslock.ErrLocked {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Unlock unlocks the lock
func (locLock *LocalFileLock) Unlock() error {
	return locLock.lck.Unlock()
}
