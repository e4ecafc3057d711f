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
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/cmd/svnsync/opts"
	"github.com/walteh/svnsync/pkg/status"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(o *opts.RootOpts) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status [PATH...]",
		Short: "Show the svn status of paths",
		Long: `Status lists every path below the arguments, or the whole working copy,
with its file status, lock and how fresh the information is.
With --show-updates the repository is asked as well.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			paths, err := s.Expand(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				o.Console.Info("nothing to check")
				return nil
			}

			scope := status.ScopeLocal
			if remote {
				scope = status.ScopeRemote
			}
			o.Console.Header("status of " + s.Root)

			ok, err := s.Ops.Status(ctx, paths, scope)
			if err != nil {
				return errors.Errorf("reading status: %w", err)
			}
			if !ok {
				o.Console.Warning("svn reported nothing for these paths")
			}

			wanted := make(map[string]bool, len(paths))
			for _, p := range paths {
				wanted[strings.ToLower(p)] = true
			}
			records := s.Ops.GetFilteredAssets(func(r status.Record) bool {
				return wanted[strings.ToLower(r.Path)]
			})
			for _, r := range records {
				o.Console.LogRecord(ctx, r)
			}
			o.Console.LogSummary(status.Summarize(records))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&remote, "show-updates", "u", false, "also ask the repository for newer versions and locks")
	return cmd
}
