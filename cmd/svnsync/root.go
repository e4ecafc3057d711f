// Copyright 2025 walteh LLC
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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/cmd/svnsync/commands"
	"github.com/walteh/svnsync/cmd/svnsync/opts"
	"github.com/walteh/svnsync/pkg/config"
	"github.com/walteh/svnsync/pkg/log"
)

var (
	// Flags
	configFile string
	dir        string
	debug      bool
	verbose    bool
)

func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "svnsync",
		Short: "Keep a cached view of svn working copy status",
		Long: `svnsync runs svn on behalf of tools that need the status of many assets.
Requests are queued and answered in batches, operations are filtered by the
cached status before svn is invoked, and failures are classified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			cmd.SetContext(ctx)
			return initRootOpts(ctx, o)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewStatusCmd(o),
		commands.NewAddCmd(o),
		commands.NewRevertCmd(o),
		commands.NewDeleteCmd(o),
		commands.NewCommitCmd(o),
		commands.NewLockCmd(o),
		commands.NewUnlockCmd(o),
		commands.NewMoveCmd(o),
		commands.NewChangelistCmd(o),
		commands.NewResolveCmd(o),
		commands.NewCleanupCmd(o),
		commands.NewUpdateCmd(o),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	return rootCmd, o
}

// initRootOpts loads the config and creates the console loggers
func initRootOpts(ctx context.Context, o *opts.RootOpts) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	o.Console = log.New(os.Stdout, level)
	o.User = log.NewUserLogger(ctx, os.Stdout)
	o.Verbose = verbose

	cfg, err := config.LoadOrDefault(ctx, configFile, dir)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: .svnsync.{yaml,json,hcl,toml} in --dir)")
	cmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "directory holding the config and working copy")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo svn output")
}

// setupLogging puts a zerolog logger on ctx based on flags
func setupLogging(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
