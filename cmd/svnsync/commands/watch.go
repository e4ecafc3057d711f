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
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/svnsync/cmd/svnsync/opts"
	"github.com/walteh/svnsync/pkg/metrics"
	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/watcher"
)

// NewWatchCmd creates the long-running watch command
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		metricsAddr    string
		fsWatch        bool
		remoteInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Keep the status cache fresh until interrupted",
		Long: `Watch runs the background refresh loop over the working copy.
Filesystem changes queue status requests when the watcher is enabled,
and --remote-interval periodically asks the repository about every known path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := zerolog.Ctx(ctx)

			if metricsAddr == "" {
				metricsAddr = o.Config.MetricsAddr
			}
			fsWatch = fsWatch || o.Config.Watch

			var completed atomic.Int64
			s, err := o.Open(ctx, opts.SessionOptions{
				Background:        true,
				OnStatusCompleted: func() { completed.Add(1) },
			})
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			paths, err := s.Expand(args)
			if err != nil {
				return err
			}
			s.Ops.RequestStatus(paths, status.ScopeLocal)
			o.Console.Infof("watching %d paths in %s", len(paths), s.Root)

			g, gctx := errgroup.WithContext(ctx)

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           mux,
					ReadHeaderTimeout: 10 * time.Second,
				}
				g.Go(func() error {
					logger.Info().Str("addr", metricsAddr).Msg("serving metrics")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return errors.Errorf("serving metrics: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdown, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdown)
				})
			}

			if fsWatch {
				w, err := watcher.New(s.Root, s.Ops, watcher.WithIgnore(o.Config.Ignore))
				if err != nil {
					return err
				}
				g.Go(func() error { return w.Run(gctx) })
			}

			if remoteInterval > 0 {
				g.Go(func() error {
					ticker := time.NewTicker(remoteInterval)
					defer ticker.Stop()
					for {
						select {
						case <-gctx.Done():
							return nil
						case <-ticker.C:
							known := s.Ops.GetFilteredAssets(nil)
							all := make([]string, len(known))
							for i, r := range known {
								all[i] = r.Path
							}
							s.Ops.RequestStatus(all, status.ScopeRemote)
						}
					}
				})
			}

			g.Go(func() error {
				<-gctx.Done()
				return nil
			})

			err = g.Wait()
			logger.Debug().Int64("status_calls", completed.Load()).Msg("watch stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().BoolVar(&fsWatch, "fs", false, "queue status requests on filesystem changes")
	cmd.Flags().DurationVar(&remoteInterval, "remote-interval", 0, "ask the repository about every known path this often")
	return cmd
}
