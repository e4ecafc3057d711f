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

package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/cmd/svnsync/opts"
	"github.com/walteh/svnsync/pkg/operation"
	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

type opFunc func(ctx context.Context, ops operation.Operations, paths []string) (bool, error)

// runOperation opens a session, reads the local status of paths so the
// filters see fresh records, runs fn through the pipeline and prints the
// records it left behind
func runOperation(cmd *cobra.Command, o *opts.RootOpts, name string, args []string, fn opFunc) (err error) {
	ctx := cmd.Context()

	s, err := o.Open(ctx, opts.SessionOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	paths, err := s.Paths(args)
	if err != nil {
		return err
	}

	if len(paths) > 0 {
		if _, err := s.Ops.Status(ctx, paths, status.ScopeLocal); err != nil {
			return errors.Errorf("reading status: %w", err)
		}
	}

	ok, err := fn(ctx, s.Ops, paths)
	o.User.LogOperation(name, paths, ok, err)
	if err != nil {
		return err
	}

	if err := s.Engine.Refresh(ctx); err != nil {
		o.Console.Warningf("refreshing status: %v", err)
	}
	for _, p := range paths {
		o.Console.LogRecord(ctx, s.Ops.GetAssetStatus(p))
	}
	return nil
}

func pathsCmd(o *opts.RootOpts, use, short string, fn opFunc) *cobra.Command {
	name, _, _ := strings.Cut(use, " ")
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, o, name, args, fn)
		},
	}
}

// NewAddCmd creates the add command
func NewAddCmd(o *opts.RootOpts) *cobra.Command {
	return pathsCmd(o, "add PATH...", "Schedule unversioned paths for addition",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.Add(ctx, paths)
		})
}

// NewRevertCmd creates the revert command
func NewRevertCmd(o *opts.RootOpts) *cobra.Command {
	return pathsCmd(o, "revert PATH...", "Drop local changes",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.Revert(ctx, paths)
		})
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd(o *opts.RootOpts) *cobra.Command {
	return pathsCmd(o, "delete PATH...", "Schedule versioned paths for deletion",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.Delete(ctx, paths)
		})
}

// NewUnlockCmd creates the unlock command
func NewUnlockCmd(o *opts.RootOpts) *cobra.Command {
	return pathsCmd(o, "unlock PATH...", "Release locks held by this working copy",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.ReleaseLock(ctx, paths)
		})
}

// NewCommitCmd creates the commit command
func NewCommitCmd(o *opts.RootOpts) *cobra.Command {
	var message string
	cmd := pathsCmd(o, "commit PATH...", "Commit paths as one revision",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.Commit(ctx, paths, message)
		})
	cmd.Long = `Commit sends the given paths to the repository as a single revision.
Unversioned paths are added and missing paths deleted first.`
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

// NewLockCmd creates the lock command
func NewLockCmd(o *opts.RootOpts) *cobra.Command {
	var force bool
	cmd := pathsCmd(o, "lock PATH...", "Lock paths in the repository",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			mode := svn.LockNormal
			if force {
				mode = svn.LockForce
			}
			ok, err := ops.GetLock(ctx, paths, mode)
			if ok {
				for _, p := range paths {
					o.User.LogLock(true, p)
				}
			}
			return ok, err
		})
	cmd.Flags().BoolVar(&force, "force", false, "steal locks held by other users")
	return cmd
}

// NewMoveCmd creates the move command
func NewMoveCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "move FROM TO",
		Short: "Rename a versioned path keeping its history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, o, "move", args, func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
				return ops.Move(ctx, paths[0], paths[1])
			})
		},
	}
}

// NewResolveCmd creates the resolve command
func NewResolveCmd(o *opts.RootOpts) *cobra.Command {
	var accept string
	cmd := pathsCmd(o, "resolve PATH...", "Mark conflicts resolved",
		func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
			return ops.Resolve(ctx, paths, svn.Resolution(accept))
		})
	cmd.Flags().StringVar(&accept, "accept", "working", "resolution: working, base, mine-full, theirs-full, mine-conflict, theirs-conflict")
	return cmd
}

// NewCleanupCmd creates the cleanup command
func NewCleanupCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Recover a working copy left locked by an interrupted operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, o, "cleanup", nil, func(ctx context.Context, ops operation.Operations, _ []string) (bool, error) {
				return ops.Cleanup(ctx)
			})
		},
	}
}

// NewUpdateCmd creates the update command
func NewUpdateCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "update [PATH...]",
		Short: "Bring paths, or the whole working copy, up to HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, o, "update", args, func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
				return ops.Update(ctx, paths)
			})
		},
	}
}
