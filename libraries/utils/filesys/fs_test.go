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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDir        = "test_dir"
	testSubdir     = "subdir"
	testFile       = "file.txt"
	testSubdirFile = "subdir/tuna"
)

func getTestEnv(t *testing.T) map[string]Filesys {
	lfs, err := LocalFilesysWithWorkingDir(t.TempDir())
	require.NoError(t, err)

	return map[string]Filesys{
		"inmem": EmptyInMemFS("/home/fish"),
		"local": lfs,
	}
}

func TestFilesystems(t *testing.T) {
	for name, fs := range getTestEnv(t) {
		t.Run(name, func(t *testing.T) {
			dir := testDir
			require.NoError(t, fs.MkDirs(filepath.Join(dir, testSubdir)))

			exists, isDir := fs.Exists(filepath.Join(dir, testSubdir))
			assert.True(t, exists)
			assert.True(t, isDir)

			fp := filepath.Join(dir, testFile)
			require.NoError(t, fs.WriteFile(fp, []byte("tuna"), os.ModePerm))
			data, err := fs.ReadFile(fp)
			require.NoError(t, err)
			assert.Equal(t, "tuna", string(data))

			_, exists = fs.LastModified(fp)
			assert.True(t, exists)

			require.NoError(t, fs.WriteFile(filepath.Join(dir, testSubdirFile), []byte("salmon"), os.ModePerm))

			var names []string
			require.NoError(t, fs.Iter(dir, false, func(path string, _ int64, _ bool) bool {
				names = append(names, filepath.Base(path))
				return false
			}))
			assert.Equal(t, []string{testFile, testSubdir}, names)

			var all []string
			require.NoError(t, fs.Iter(dir, true, func(path string, _ int64, _ bool) bool {
				all = append(all, filepath.Base(path))
				return false
			}))
			assert.ElementsMatch(t, []string{testFile, testSubdir, "tuna"}, all)

			moved := filepath.Join(dir, "moved", "file.txt")
			require.NoError(t, fs.MoveFile(fp, moved))
			exists, _ = fs.Exists(fp)
			assert.False(t, exists)
			data, err = fs.ReadFile(moved)
			require.NoError(t, err)
			assert.Equal(t, "tuna", string(data))

			assert.Error(t, fs.Delete(filepath.Join(dir, testSubdir), false))
			require.NoError(t, fs.Delete(filepath.Join(dir, testSubdir), true))
			exists, _ = fs.Exists(filepath.Join(dir, testSubdirFile))
			assert.False(t, exists)

			assert.Error(t, fs.Delete(filepath.Join(dir, "missing"), false))

			sub, err := fs.WithWorkingDir(dir)
			require.NoError(t, err)
			data, err = sub.ReadFile(filepath.Join("moved", "file.txt"))
			require.NoError(t, err)
			assert.Equal(t, "tuna", string(data))
		})
	}
}

func TestCopyTree(t *testing.T) {
	src := NewInMemFS([]string{"/src/empty"}, map[string][]byte{
		"/src/A/fish/tuna": []byte("tuna"),
		"/src/iota":        []byte("iota"),
	}, "/")
	dest := EmptyInMemFS("/")

	require.NoError(t, CopyTree(src, "/src", dest, "/dest"))

	data, err := dest.ReadFile("/dest/A/fish/tuna")
	require.NoError(t, err)
	assert.Equal(t, "tuna", string(data))

	exists, isDir := dest.Exists("/dest/empty")
	assert.True(t, exists)
	assert.True(t, isDir)
}

func TestInMemReadFileErrors(t *testing.T) {
	fs := NewInMemFS([]string{"/a"}, nil, "/")

	_, err := fs.ReadFile("/missing")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = fs.ReadFile("/a")
	assert.Equal(t, ErrIsDir, err)

	assert.Equal(t, ErrIsDir, fs.WriteFile("/a", nil, os.ModePerm))
}

func TestLocks(t *testing.T) {
	for name, fs := range getTestEnv(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.MkDirs(testDir))
			lockFile := filepath.Join(testDir, "LOCK")

			first := CreateFilesysLock(fs, lockFile)
			second := CreateFilesysLock(fs, lockFile)

			require.NoError(t, Lock(first, lockFile))
			err := Lock(second, lockFile)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLocked))

			require.NoError(t, first.Unlock())
			require.NoError(t, Lock(second, lockFile))
			require.NoError(t, second.Unlock())
		})
	}
}
