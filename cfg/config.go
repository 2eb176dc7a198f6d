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

// Package cfg is the server's configuration layer: a Config
// struct with nested groups, bound to spf13/pflag flags through BindFlags
// and spf13/viper, with a Validate step (cfg/validate.go) and a YAML
// config-file override.
package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for snfsd (the server).
// snfsctl does not use it; it registers its own flags.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Debug   DebugConfig   `yaml:"debug"`
}

// ServerConfig names the transport endpoint and the simulated device's
// geometry and latency.
type ServerConfig struct {
	SocketPath string        `yaml:"socket-path"`
	NumBlocks  uint32        `yaml:"num-blocks"`
	DiskDelay  time.Duration `yaml:"disk-delay"`
	Format     bool          `yaml:"format"`
}

// CacheConfig sizes the three LRU caches and selects whether directory
// mutations invalidate matching cached directory pages.
type CacheConfig struct {
	BlockCacheSize          int  `yaml:"block-cache-size"`
	InodeCacheSize          int  `yaml:"inode-cache-size"`
	DirCacheSize            int  `yaml:"dir-cache-size"`
	InvalidateDirOnMutation bool `yaml:"invalidate-dir-on-mutation"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`
	Format   LogFormat   `yaml:"format"`
	FilePath string      `yaml:"file-path"`
}

// DebugConfig toggles the engine's metadata invariant checks, which run
// on every lock and unlock of the engine mutex when enabled.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

// BindFlags registers every flag snfsd accepts and binds each to
// its viper key: one flagSet registration plus one viper.BindPFlag call
// per field.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("socket-path", "s", "/tmp/snfsd.sock", "Unix datagram socket path the server binds.")
	err = viper.BindPFlag("server.socket-path", flagSet.Lookup("socket-path"))
	if err != nil {
		return err
	}

	flagSet.Uint32P("num-blocks", "n", 1024, "Number of blocks in the simulated device.")
	err = viper.BindPFlag("server.num-blocks", flagSet.Lookup("num-blocks"))
	if err != nil {
		return err
	}

	flagSet.Duration("disk-delay", 0, "Simulated per-access device latency.")
	err = viper.BindPFlag("server.disk-delay", flagSet.Lookup("disk-delay"))
	if err != nil {
		return err
	}

	flagSet.Bool("format", false, "Format the device before serving.")
	err = viper.BindPFlag("server.format", flagSet.Lookup("format"))
	if err != nil {
		return err
	}

	flagSet.Int("block-cache-size", 10, "Block cache capacity.")
	err = viper.BindPFlag("cache.block-cache-size", flagSet.Lookup("block-cache-size"))
	if err != nil {
		return err
	}

	flagSet.Int("inode-cache-size", 4, "Inode cache capacity.")
	err = viper.BindPFlag("cache.inode-cache-size", flagSet.Lookup("inode-cache-size"))
	if err != nil {
		return err
	}

	flagSet.Int("dir-cache-size", 4, "Directory-page cache capacity.")
	err = viper.BindPFlag("cache.dir-cache-size", flagSet.Lookup("dir-cache-size"))
	if err != nil {
		return err
	}

	flagSet.Bool("invalidate-dir-on-mutation", true, "Invalidate matching dir-cache pages on create/mkdir (disabling may serve stale directory listings until the page is evicted).")
	err = viper.BindPFlag("cache.invalidate-dir-on-mutation", flagSet.Lookup("invalidate-dir-on-mutation"))
	if err != nil {
		return err
	}

	flagSet.String("log-severity", "INFO", "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity"))
	if err != nil {
		return err
	}

	flagSet.String("log-format", "text", "Logging output format: text or json.")
	err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format"))
	if err != nil {
		return err
	}

	flagSet.String("log-file", "", "Log file path; empty logs to stderr.")
	err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file"))
	if err != nil {
		return err
	}

	flagSet.Bool("debug-invariants", false, "Exit when internal invariants are violated.")
	return viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants"))
}
