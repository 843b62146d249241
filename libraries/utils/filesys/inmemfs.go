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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemNowFunc is a func() time.Time that can be used to supply the current time. The default value gets the current
// time from the system clock, but it can be set to something else in order to support reproducible tests.
var InMemNowFunc = time.Now

type memObj interface {
	isDir() bool
	modTime() time.Time
}

type memFile struct {
	absPath string
	data    []byte
	time    time.Time
}

func (mf *memFile) isDir() bool {
	return false
}

func (mf *memFile) modTime() time.Time {
	return mf.time
}

type memDir struct {
	absPath string
	objs    map[string]memObj
	time    time.Time
}

func newEmptyDir(path string) *memDir {
	return &memDir{path, make(map[string]memObj), InMemNowFunc()}
}

func (md *memDir) isDir() bool {
	return true
}

func (md *memDir) modTime() time.Time {
	return md.time
}

// InMemFS is an in memory filesystem implementation that is primarily intended for testing
type InMemFS struct {
	rwLock *sync.RWMutex
	cwd    string
	objs   map[string]memObj
	locks  map[string]*InMemFileLock
}

var _ Filesys = (*InMemFS)(nil)

// EmptyInMemFS creates an empty InMemFS instance
func EmptyInMemFS(workingDir string) *InMemFS {
	return NewInMemFS([]string{}, map[string][]byte{}, workingDir)
}

// NewInMemFS creates an InMemFS with directories and folders provided.
func NewInMemFS(dirs []string, files map[string][]byte, cwd string) *InMemFS {
	if cwd == "" {
		cwd = string(filepath.Separator)
	}
	cwd = filepath.Clean(cwd)

	fs := &InMemFS{&sync.RWMutex{}, cwd, map[string]memObj{}, map[string]*InMemFileLock{}}
	fs.objs[string(filepath.Separator)] = newEmptyDir(string(filepath.Separator))

	if _, err := fs.mkDirs(cwd); err != nil {
		panic("failed to create working directory " + cwd)
	}

	for _, dir := range dirs {
		if _, err := fs.mkDirs(fs.getAbsPath(dir)); err != nil {
			panic("failed to create initial directory " + dir)
		}
	}

	for path, data := range files {
		if err := fs.writeFile(fs.getAbsPath(path), data); err != nil {
			panic("failed to create initial file " + path)
		}
	}

	return fs
}

// WithWorkingDir returns a copy of this filesystem with a new working directory. Both share the same contents.
func (fs *InMemFS) WithWorkingDir(path string) (Filesys, error) {
	abs := fs.getAbsPath(path)

	if exists, isDir := fs.Exists(abs); !exists {
		return nil, os.ErrNotExist
	} else if !isDir {
		return nil, ErrIsFile
	}

	return &InMemFS{fs.rwLock, abs, fs.objs, fs.locks}, nil
}

func (fs *InMemFS) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(fs.cwd, path)
}

// Exists will tell you if a file or directory with a given path already exists, and if it does is it a directory
func (fs *InMemFS) Exists(path string) (exists bool, isDir bool) {
	fs.rwLock.RLock()
	defer fs.rwLock.RUnlock()

	obj, ok := fs.objs[fs.getAbsPath(path)]
	if !ok {
		return false, false
	}

	return true, obj.isDir()
}

// Iter iterates over the files and subdirectories within a given directory (Optionally recursively). Entries of a
// directory are visited in name order.
func (fs *InMemFS) Iter(path string, recursive bool, cb FSIterCB) error {
	fs.rwLock.RLock()
	defer fs.rwLock.RUnlock()

	obj, ok := fs.objs[fs.getAbsPath(path)]
	if !ok {
		return os.ErrNotExist
	}

	dir, ok := obj.(*memDir)
	if !ok {
		return ErrIsFile
	}

	_, err := fs.iter(dir, recursive, cb)
	return err
}

func (fs *InMemFS) iter(dir *memDir, recursive bool, cb FSIterCB) (bool, error) {
	names := make([]string, 0, len(dir.objs))
	for name := range dir.objs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch obj := dir.objs[name].(type) {
		case *memFile:
			if cb(obj.absPath, int64(len(obj.data)), false) {
				return true, nil
			}
		case *memDir:
			if cb(obj.absPath, 0, true) {
				return true, nil
			}

			if recursive {
				if stop, err := fs.iter(obj, true, cb); stop || err != nil {
					return stop, err
				}
			}
		}
	}

	return false, nil
}

// ReadFile reads the entire contents of a file
func (fs *InMemFS) ReadFile(fp string) ([]byte, error) {
	fs.rwLock.RLock()
	defer fs.rwLock.RUnlock()

	obj, ok := fs.objs[fs.getAbsPath(fp)]
	if !ok {
		return nil, os.ErrNotExist
	}

	file, ok := obj.(*memFile)
	if !ok {
		return nil, ErrIsDir
	}

	data := make([]byte, len(file.data))
	copy(data, file.data)
	return data, nil
}

// WriteFile writes the entire data buffer to a given file, creating missing parent directories.
func (fs *InMemFS) WriteFile(fp string, data []byte, _ os.FileMode) error {
	fs.rwLock.Lock()
	defer fs.rwLock.Unlock()

	return fs.writeFile(fs.getAbsPath(fp), data)
}

func (fs *InMemFS) writeFile(absPath string, data []byte) error {
	if obj, ok := fs.objs[absPath]; ok && obj.isDir() {
		return ErrIsDir
	}

	parent, err := fs.mkDirs(filepath.Dir(absPath))
	if err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	now := InMemNowFunc()
	file := &memFile{absPath: absPath, data: stored, time: now}
	parent.objs[filepath.Base(absPath)] = file
	parent.time = now
	fs.objs[absPath] = file

	return nil
}

// MkDirs creates a folder and all the parent folders that are necessary to create it.
func (fs *InMemFS) MkDirs(path string) error {
	fs.rwLock.Lock()
	defer fs.rwLock.Unlock()

	_, err := fs.mkDirs(fs.getAbsPath(path))
	return err
}

func (fs *InMemFS) mkDirs(absPath string) (*memDir, error) {
	if obj, ok := fs.objs[absPath]; ok {
		if dir, ok := obj.(*memDir); ok {
			return dir, nil
		}
		return nil, ErrIsFile
	}

	parent, err := fs.mkDirs(filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}

	dir := newEmptyDir(absPath)
	parent.objs[filepath.Base(absPath)] = dir
	parent.time = dir.time
	fs.objs[absPath] = dir

	return dir, nil
}

// Delete will delete an empty directory, or a file. If trying delete a directory that is not empty you can set
// force to true in order to delete the dir and all of it's contents
func (fs *InMemFS) Delete(path string, force bool) error {
	fs.rwLock.Lock()
	defer fs.rwLock.Unlock()

	absPath := fs.getAbsPath(path)
	obj, ok := fs.objs[absPath]
	if !ok {
		return os.ErrNotExist
	}

	if dir, ok := obj.(*memDir); ok {
		if len(dir.objs) > 0 && !force {
			return ErrDirNotEmpty
		}

		for p := range fs.objs {
			if strings.HasPrefix(p, absPath+string(filepath.Separator)) {
				delete(fs.objs, p)
			}
		}
	}

	parent := fs.objs[filepath.Dir(absPath)].(*memDir)
	delete(parent.objs, filepath.Base(absPath))
	parent.time = InMemNowFunc()
	delete(fs.objs, absPath)

	return nil
}

// MoveFile will move a file from the srcPath in the filesystem to the destPath
func (fs *InMemFS) MoveFile(srcPath, destPath string) error {
	fs.rwLock.Lock()
	defer fs.rwLock.Unlock()

	srcPath = fs.getAbsPath(srcPath)
	obj, ok := fs.objs[srcPath]
	if !ok {
		return os.ErrNotExist
	}

	file, ok := obj.(*memFile)
	if !ok {
		return ErrIsDir
	}

	if err := fs.writeFile(fs.getAbsPath(destPath), file.data); err != nil {
		return err
	}

	parent := fs.objs[filepath.Dir(srcPath)].(*memDir)
	delete(parent.objs, filepath.Base(srcPath))
	delete(fs.objs, srcPath)

	return nil
}

// Abs converts a path to an absolute path. If it's already an absolute path the input path will be returned
// unaltered
func (fs *InMemFS) Abs(path string) (string, error) {
	return fs.getAbsPath(path), nil
}

// LastModified gets the last modified timestamp for a file or directory at a given path
func (fs *InMemFS) LastModified(path string) (t time.Time, exists bool) {
	fs.rwLock.RLock()
	defer fs.rwLock.RUnlock()

	if obj, ok := fs.objs[fs.getAbsPath(path)]; ok {
		return obj.modTime(), true
	}

	return time.Time{}, false
}

// lockFor returns the lock shared by every user of this filesystem for the given path.
func (fs *InMemFS) lockFor(path string) *InMemFileLock {
	fs.rwLock.Lock()
	defer fs.rwLock.Unlock()

	absPath := fs.getAbsPath(path)
	if lck, ok := fs.locks[absPath]; ok {
		return lck
	}

	lck := &InMemFileLock{}
	fs.locks[absPath] = lck
	return lck
}
