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

package cfg

import "time"

// DefaultConfig returns a Config holding the same default values that
// BindFlags registers for each flag. ExampleYAML renders it.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			SocketPath: "/tmp/snfsd.sock",
			NumBlocks:  1024,
			DiskDelay:  0,
			Format:     false,
		},
		Cache: CacheConfig{
			BlockCacheSize:          10,
			InodeCacheSize:          4,
			DirCacheSize:            4,
			InvalidateDirOnMutation: true,
		},
		Logging: LoggingConfig{
			Severity: InfoLogSeverity,
			Format:   LogFormatText,
			FilePath: "",
		},
		Debug: DebugConfig{
			ExitOnInvariantViolation: false,
		},
	}
}

// DefaultDiskDelay is the default simulated per-access device latency,
// equal to the --disk-delay flag's default and DefaultConfig's DiskDelay.
const DefaultDiskDelay = 0 * time.Millisecond
