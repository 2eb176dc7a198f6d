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

import "fmt"

// Validate returns a non-nil error if config cannot be used to start the
// server: one small per-group checker function composed in a
// single entry point.
func Validate(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("error parsing server config: %w", err)
	}
	if err := validateCache(&config.Cache); err != nil {
		return fmt.Errorf("error parsing cache config: %w", err)
	}
	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}
	return nil
}

func validateServer(s *ServerConfig) error {
	if s.SocketPath == "" {
		return fmt.Errorf("socket-path must not be empty")
	}
	if s.NumBlocks == 0 {
		return fmt.Errorf("num-blocks must be at least 1")
	}
	if s.DiskDelay < 0 {
		return fmt.Errorf("disk-delay must not be negative")
	}
	return nil
}

func validateCache(c *CacheConfig) error {
	if c.BlockCacheSize <= 0 {
		return fmt.Errorf("block-cache-size must be at least 1")
	}
	if c.InodeCacheSize <= 0 {
		return fmt.Errorf("inode-cache-size must be at least 1")
	}
	if c.DirCacheSize <= 0 {
		return fmt.Errorf("dir-cache-size must be at least 1")
	}
	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Severity.Rank() < 0 {
		return fmt.Errorf("invalid log severity %q", l.Severity)
	}
	if l.Format != LogFormatText && l.Format != LogFormatJSON {
		return fmt.Errorf("invalid log format %q", l.Format)
	}
	return nil
}
