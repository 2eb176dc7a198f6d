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

// Package cmd is snfsd's cobra command tree: a persistent flag set bound
// through cfg.BindFlags, an optional --config-file overlay read through
// viper, and a RunE that validates the resolved cfg.Config before doing
// any work.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/snfs-project/snfs/cfg"
	"github.com/snfs-project/snfs/internal/fsengine"
	"github.com/snfs-project/snfs/internal/logger"
	"github.com/snfs-project/snfs/internal/server"
	"github.com/snfs-project/snfs/internal/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	Config        cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "snfsd",
	Short: "Run the snfs server",
	Long: `snfsd serves a simulated block device over a small remote
filesystem protocol, accepting requests from snfsctl or any internal/client
stub over a Unix datagram socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if err := viper.Unmarshal(&Config, func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "yaml"
		}); err != nil {
			return fmt.Errorf("error unmarshalling config: %w", err)
		}
		if err := cfg.Validate(&Config); err != nil {
			return err
		}
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Severity: logger.Severity(Config.Logging.Severity),
		Format:   logger.Format(Config.Logging.Format),
		FilePath: Config.Logging.FilePath,
	}); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	opts := fsengine.DefaultOptions()
	opts.BlockCacheSize = Config.Cache.BlockCacheSize
	opts.InodeCacheSize = Config.Cache.InodeCacheSize
	opts.DirCacheSize = Config.Cache.DirCacheSize
	opts.InvalidateDirOnMutation = Config.Cache.InvalidateDirOnMutation
	opts.ExitOnInvariantViolation = Config.Debug.ExitOnInvariantViolation

	fs, err := fsengine.New(Config.Server.NumBlocks, Config.Server.DiskDelay, opts)
	if err != nil {
		return fmt.Errorf("error initializing filesystem engine: %w", err)
	}
	if Config.Server.Format {
		if err := fs.Format(); err != nil {
			return fmt.Errorf("error formatting device: %w", err)
		}
		logger.Infof("formatted device with %d blocks", Config.Server.NumBlocks)
	}

	tr, err := transport.Listen(Config.Server.SocketPath)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", Config.Server.SocketPath, err)
	}
	defer tr.Close()

	srv := server.New(fs, tr)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go watchDumpSignal(fs)

	logger.Infof("snfsd listening on %s", Config.Server.SocketPath)
	return srv.Serve(sigCtx)
}

// watchDumpSignal logs a bitmap/inode dump whenever the process receives
// SIGUSR1.
func watchDumpSignal(fs *fsengine.FS) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	for range ch {
		var b strings.Builder
		if err := fs.Dump(&b); err != nil {
			logger.Errorf("debug dump failed: %v", err)
			continue
		}
		logger.Infof("debug dump:\n%s", b.String())
	}
}

var configExampleCmd = &cobra.Command{
	Use:   "config-example",
	Short: "Print a YAML config file populated with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.ExampleYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file overlaying flags.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(configExampleCmd)
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
	}
}
