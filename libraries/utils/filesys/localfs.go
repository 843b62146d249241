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
	"errors"
	"os"
	"path/filepath"
	"time"
)

// LocalFS is the machines local filesystem
var LocalFS Filesys = &localFS{}

type localFS struct {
	cwd string
}

// LocalFilesysWithWorkingDir returns a new Filesys implementation backed by the local filesystem with the supplied
// working directory. Path relative operations occur relative to this directory.
func LocalFilesysWithWorkingDir(cwd string) (Filesys, error) {
	absCWD, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(absCWD)
	if err != nil {
		return nil, err
	} else if !stat.IsDir() {
		return nil, ErrIsFile
	}

	return &localFS{absCWD}, nil
}

func (fs *localFS) WithWorkingDir(path string) (Filesys, error) {
	return LocalFilesysWithWorkingDir(fs.absPath(path))
}

func (fs *localFS) absPath(path string) string {
	if filepath.IsAbs(path) || fs.cwd == "" {
		return path
	}

	return filepath.Join(fs.cwd, path)
}

// Exists will tell you if a file or directory with a given path already exists, and if it does is it a directory
func (fs *localFS) Exists(path string) (exists bool, isDir bool) {
	stat, err := os.Stat(fs.absPath(path))

	if err != nil {
		return false, false
	}

	return true, stat.IsDir()
}

var errStopMarker = errors.New("stop")

// Iter iterates over the files and subdirectories within a given directory (Optionally recursively). Entries of a
// directory are visited in name order.
func (fs *localFS) Iter(path string, recursive bool, cb FSIterCB) error {
	path = fs.absPath(path)

	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}

		for _, curr := range entries {
			info, err := curr.Info()
			if err != nil {
				return err
			}

			if cb(filepath.Join(path, curr.Name()), info.Size(), curr.IsDir()) {
				return nil
			}
		}

		return nil
	}

	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if p != path && cb(p, info.Size(), info.IsDir()) {
			return errStopMarker
		}

		return nil
	})

	if err == errStopMarker {
		return nil
	}

	return err
}

// ReadFile reads the entire contents of a file
func (fs *localFS) ReadFile(fp string) ([]byte, error) {
	return os.ReadFile(fs.absPath(fp))
}

// WriteFile writes the entire data buffer to a given file, creating missing parent directories.
func (fs *localFS) WriteFile(fp string, data []byte, perm os.FileMode) error {
	fp = fs.absPath(fp)
	if err := os.MkdirAll(filepath.Dir(fp), os.ModePerm); err != nil {
		return err
	}

	return os.WriteFile(fp, data, perm)
}

// MkDirs creates a folder and all the parent folders that are necessary to create it.
func (fs *localFS) MkDirs(path string) error {
	return os.MkdirAll(fs.absPath(path), os.ModePerm)
}

// Delete will delete an empty directory, or a file. If trying delete a directory that is not empty you can set
// force to true in order to delete the dir and all of it's contents
func (fs *localFS) Delete(path string, force bool) error {
	path = fs.absPath(path)
	if exists, _ := fs.Exists(path); !exists {
		return os.ErrNotExist
	}

	if !force {
		return os.Remove(path)
	}

	return os.RemoveAll(path)
}

// MoveFile will move a file from the srcPath in the filesystem to the destPath
func (fs *localFS) MoveFile(srcPath, destPath string) error {
	destPath = fs.absPath(destPath)
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	return os.Rename(fs.absPath(srcPath), destPath)
}

// Abs converts a path to an absolute path. If it's already an absolute path the input path will be returned
// unaltered
func (fs *localFS) Abs(path string) (string, error) {
	return filepath.Abs(fs.absPath(path))
}

// LastModified gets the last modified timestamp for a file or directory at a given path
func (fs *localFS) LastModified(path string) (t time.Time, exists bool) {
	stat, err := os.Stat(fs.absPath(path))
	if err != nil {
		return time.Time{}, false
	}

	return stat.ModTime(), true
}
