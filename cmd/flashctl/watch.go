// cmd/flashctl/watch.go
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/norflash/internal/poller"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sample the status register until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				p, err := poller.New(poller.Config{Interval: interval}, e.dev)
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				out := make(chan poller.PollResult)
				go p.Run(ctx, out)

				var (
					seen     int
					failures int
				)
				for res := range out {
					if count > 0 && seen >= count {
						continue // drain until Run observes cancel
					}
					seen++
					if res.Err != nil {
						failures++
						e.log.Warn("status sample failed", zap.Error(res.Err))
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s status=0x%02X busy=%t wel=%t\n",
							res.At.Format(time.RFC3339Nano), res.Status, res.Busy(), res.WriteEnabled())
					}
					if count > 0 && seen >= count {
						cancel()
					}
				}

				if failures > 0 {
					return fmt.Errorf("watch: %d of %d samples failed", failures, seen)
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "sampling interval")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many samples (0 = until interrupted)")
	return cmd
}
