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

	"github.com/spf13/cobra"

	"github.com/walteh/svnsync/cmd/svnsync/opts"
	"github.com/walteh/svnsync/pkg/operation"
)

// NewChangelistCmd creates the changelist command and its add/remove children
func NewChangelistCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "changelist",
		Aliases: []string{"cl"},
		Short:   "Group paths into named changelists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME PATH...",
		Short: "Move paths into the named changelist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runOperation(cmd, o, "changelist "+name, args[1:], func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
				return ops.ChangeListAdd(ctx, paths, name)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove PATH...",
		Short: "Take paths out of their changelist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, o, "changelist remove", args, func(ctx context.Context, ops operation.Operations, paths []string) (bool, error) {
				return ops.ChangeListRemove(ctx, paths)
			})
		},
	})

	return cmd
}
