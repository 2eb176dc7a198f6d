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

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestAsyncLoggerWriteAndClose(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "test.log")
	lj := &lumberjack.Logger{Filename: logPath}
	async := NewAsyncLogger(lj, 10)

	fmt.Fprintln(async, "message 1")
	fmt.Fprintln(async, "message 2")
	fmt.Fprintln(async, "message 3")
	require.NoError(t, async.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Equal(t, "message 1\nmessage 2\nmessage 3\n", string(content))
}

func TestAsyncLoggerCloseIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	lj := &lumberjack.Logger{Filename: filepath.Join(tempDir, "test.log")}
	async := NewAsyncLogger(lj, 4)

	require.NoError(t, async.Close())
	require.NoError(t, async.Close())
}
