// Copyright 2026 The SNFS Authors.
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

package fsengine

import (
	"testing"

	"github.com/snfs-project/snfs/internal/fsconst"
	"github.com/stretchr/testify/require"
)

func TestResolvePathRoot(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.ResolvePath("/")
	require.NoError(t, err)
	require.Equal(t, uint32(fsconst.RootInodeID), id)
}

func TestResolvePathMultiComponent(t *testing.T) {
	fs := newFormatted(t, 64)
	dirID, err := fs.Mkdir(fsconst.RootInodeID, "sub")
	require.NoError(t, err)
	fileID, err := fs.Create(dirID, "f.txt")
	require.NoError(t, err)

	got, err := fs.ResolvePath("/sub/f.txt")
	require.NoError(t, err)
	require.Equal(t, fileID, got)
}

func TestResolvePathMissingComponent(t *testing.T) {
	fs := newFormatted(t, 64)
	_, err := fs.ResolvePath("/nope/inside")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePathMustStartWithSlash(t *testing.T) {
	fs := newFormatted(t, 64)
	_, err := fs.ResolvePath("relative")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSplitParentPath(t *testing.T) {
	parent, name, err := SplitParentPath("/a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, "/a/b", parent)
	require.Equal(t, "c.txt", name)

	parent, name, err = SplitParentPath("/top.txt")
	require.NoError(t, err)
	require.Equal(t, "/", parent)
	require.Equal(t, "top.txt", name)

	_, _, err = SplitParentPath("noslash")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = SplitParentPath("/trailing/")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
